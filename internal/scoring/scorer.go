// internal/scoring/scorer.go
package scoring

import (
	"time"

	"cardwise/internal/domain"
	"cardwise/internal/limits"
)

// Component weights are an output-parity contract: 10% base, 60%
// category multiplier, 20% point-system preference, 10% limit headroom.
const (
	WeightBase       = 0.10
	WeightCategory   = 0.60
	WeightPreference = 0.20
	WeightLimit      = 0.10
)

const (
	preferenceMatchScore = 1.0
	preferenceMissScore  = 0.5
)

// CardScore carries the four component scores and the weighted total
// for one card against one category.
type CardScore struct {
	CardID          string
	BaseScore       float64
	CategoryScore   float64
	PreferenceScore float64
	LimitScore      float64
	TotalScore      float64
}

// Score rates a single card for a category. Pure over its inputs: the
// card, the user's preferences, and the as-of date used for lazy limit
// resets.
func Score(card domain.Card, category domain.Category, prefs domain.UserPreferences, asOf time.Time) CardScore {
	multiplier, pointType := EffectiveReward(card, category, asOf)

	score := CardScore{
		CardID:          card.ID,
		BaseScore:       1.0,
		CategoryScore:   multiplier,
		PreferenceScore: preferenceMissScore,
		LimitScore:      limitScore(card, category, asOf),
	}
	if pointType == prefs.PreferredPointSystem {
		score.PreferenceScore = preferenceMatchScore
	}

	score.TotalScore = score.BaseScore*WeightBase +
		score.CategoryScore*WeightCategory +
		score.PreferenceScore*WeightPreference +
		score.LimitScore*WeightLimit
	return score
}

// EffectiveReward resolves the multiplier and point type the card earns
// on a category: the best active category-specific rate, raised by the
// quarterly bonus when one applies and its spend cap has headroom,
// falling back to the card's general rate (1.0 cash back if none).
func EffectiveReward(card domain.Card, category domain.Category, asOf time.Time) (float64, domain.PointType) {
	multiplier := 0.0
	pointType := domain.PointsCashBack

	for _, reward := range card.RewardCategories {
		if !reward.IsActive || reward.Category != category {
			continue
		}
		if reward.Multiplier > multiplier {
			multiplier = reward.Multiplier
			pointType = reward.PointType
		}
	}

	if card.QuarterlyBonus != nil && card.QuarterlyBonus.Category == category {
		bonus := limits.RefreshQuarterlyBonus(*card.QuarterlyBonus, asOf)
		if bonus.CurrentSpending < bonus.SpendLimit && bonus.Multiplier > multiplier {
			multiplier = bonus.Multiplier
			pointType = bonus.PointType
		}
	}

	if multiplier > 0 {
		return multiplier, pointType
	}

	// No category-specific rate: fall back to the card's general rate.
	for _, reward := range card.RewardCategories {
		if reward.IsActive && reward.Category == domain.CategoryGeneral {
			return reward.Multiplier, reward.PointType
		}
	}
	return 1.0, domain.PointsCashBack
}

// limitScore reads the card's spending limit for the category: no limit
// is unconstrained (1.0), a reached limit scores 0, and usage past the
// warning threshold scores 0.5.
func limitScore(card domain.Card, category domain.Category, asOf time.Time) float64 {
	limit := limits.FindLimit(card, category, asOf)
	switch {
	case limit == nil:
		return 1.0
	case limit.IsLimitReached():
		return 0.0
	case limit.IsWarningThreshold():
		return 0.5
	default:
		return 1.0
	}
}
