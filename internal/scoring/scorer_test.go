// internal/scoring/scorer_test.go
package scoring

import (
	"testing"
	"time"

	"cardwise/internal/domain"

	"github.com/stretchr/testify/assert"
)

var asOf = time.Date(2026, time.August, 15, 0, 0, 0, 0, time.UTC)

func amexGold(spent float64) domain.Card {
	return domain.Card{
		ID:       "amex-gold",
		Name:     "Amex Gold",
		IsActive: true,
		RewardCategories: []domain.RewardCategory{
			{Category: domain.CategoryGroceries, Multiplier: 4, PointType: domain.PointsMembershipRewards, IsActive: true},
			{Category: domain.CategoryDining, Multiplier: 4, PointType: domain.PointsMembershipRewards, IsActive: true},
		},
		SpendingLimits: []domain.SpendingLimit{
			{
				Category:        domain.CategoryGroceries,
				Limit:           25000,
				CurrentSpending: spent,
				ResetDate:       time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC),
				ResetType:       domain.ResetAnnually,
			},
		},
	}
}

func TestWeightsSumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, WeightBase+WeightCategory+WeightPreference+WeightLimit, 1e-12)
}

func TestScoreComponents(t *testing.T) {
	prefs := domain.DefaultPreferences() // prefers cash back

	tests := []struct {
		name           string
		card           domain.Card
		category       domain.Category
		prefs          domain.UserPreferences
		wantCategory   float64
		wantPreference float64
		wantLimit      float64
		wantTotal      float64
	}{
		{
			name:           "category multiplier with headroom",
			card:           amexGold(8000),
			category:       domain.CategoryGroceries,
			prefs:          prefs,
			wantCategory:   4.0,
			wantPreference: 0.5,
			wantLimit:      1.0,
			wantTotal:      0.10*1.0 + 0.60*4.0 + 0.20*0.5 + 0.10*1.0,
		},
		{
			name:           "preferred point system earns the full preference score",
			card:           amexGold(8000),
			category:       domain.CategoryGroceries,
			prefs:          domain.UserPreferences{PreferredPointSystem: domain.PointsMembershipRewards},
			wantCategory:   4.0,
			wantPreference: 1.0,
			wantLimit:      1.0,
			wantTotal:      0.10*1.0 + 0.60*4.0 + 0.20*1.0 + 0.10*1.0,
		},
		{
			name:           "no limit for category is unconstrained",
			card:           amexGold(8000),
			category:       domain.CategoryDining,
			prefs:          prefs,
			wantCategory:   4.0,
			wantPreference: 0.5,
			wantLimit:      1.0,
			wantTotal:      0.10*1.0 + 0.60*4.0 + 0.20*0.5 + 0.10*1.0,
		},
		{
			name:           "warning threshold halves the limit score",
			card:           amexGold(22000),
			category:       domain.CategoryGroceries,
			prefs:          prefs,
			wantCategory:   4.0,
			wantPreference: 0.5,
			wantLimit:      0.5,
			wantTotal:      0.10*1.0 + 0.60*4.0 + 0.20*0.5 + 0.10*0.5,
		},
		{
			name:           "reached limit zeroes the limit score",
			card:           amexGold(25000),
			category:       domain.CategoryGroceries,
			prefs:          prefs,
			wantCategory:   4.0,
			wantPreference: 0.5,
			wantLimit:      0.0,
			wantTotal:      0.10*1.0 + 0.60*4.0 + 0.20*0.5 + 0.10*0.0,
		},
		{
			name: "fallback to general rate when category has no entry",
			card: domain.Card{
				ID: "flat", Name: "Flat Card", IsActive: true,
				RewardCategories: []domain.RewardCategory{
					{Category: domain.CategoryGeneral, Multiplier: 1.5, PointType: domain.PointsCashBack, IsActive: true},
				},
			},
			category:       domain.CategoryTravel,
			prefs:          prefs,
			wantCategory:   1.5,
			wantPreference: 1.0,
			wantLimit:      1.0,
			wantTotal:      0.10*1.0 + 0.60*1.5 + 0.20*1.0 + 0.10*1.0,
		},
		{
			name:           "no entries at all falls back to 1.0 cash back",
			card:           domain.Card{ID: "bare", Name: "Bare Card", IsActive: true},
			category:       domain.CategoryGas,
			prefs:          prefs,
			wantCategory:   1.0,
			wantPreference: 1.0,
			wantLimit:      1.0,
			wantTotal:      0.10*1.0 + 0.60*1.0 + 0.20*1.0 + 0.10*1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := Score(tt.card, tt.category, tt.prefs, asOf)
			assert.InDelta(t, 1.0, score.BaseScore, 1e-9)
			assert.InDelta(t, tt.wantCategory, score.CategoryScore, 1e-9)
			assert.InDelta(t, tt.wantPreference, score.PreferenceScore, 1e-9)
			assert.InDelta(t, tt.wantLimit, score.LimitScore, 1e-9)
			assert.InDelta(t, tt.wantTotal, score.TotalScore, 1e-9)
		})
	}
}

func TestQuarterlyBonusRaisesCategoryScore(t *testing.T) {
	card := amexGold(8000)
	card.QuarterlyBonus = &domain.QuarterlyBonus{
		Category:        domain.CategoryGroceries,
		Multiplier:      5,
		PointType:       domain.PointsMembershipRewards,
		SpendLimit:      1500,
		CurrentSpending: 200,
		Quarter:         3,
		Year:            2026,
	}

	score := Score(card, domain.CategoryGroceries, domain.DefaultPreferences(), asOf)
	assert.InDelta(t, 5.0, score.CategoryScore, 1e-9)
}

func TestQuarterlyBonusIgnoredWhenCapReached(t *testing.T) {
	card := amexGold(8000)
	card.QuarterlyBonus = &domain.QuarterlyBonus{
		Category:        domain.CategoryGroceries,
		Multiplier:      5,
		PointType:       domain.PointsMembershipRewards,
		SpendLimit:      1500,
		CurrentSpending: 1500,
		Quarter:         3,
		Year:            2026,
	}

	score := Score(card, domain.CategoryGroceries, domain.DefaultPreferences(), asOf)
	assert.InDelta(t, 4.0, score.CategoryScore, 1e-9)
}

func TestStaleQuarterlyBonusCountsAgainAfterRollover(t *testing.T) {
	card := amexGold(8000)
	card.QuarterlyBonus = &domain.QuarterlyBonus{
		Category:        domain.CategoryGroceries,
		Multiplier:      5,
		PointType:       domain.PointsMembershipRewards,
		SpendLimit:      1500,
		CurrentSpending: 1500,
		Quarter:         1,
		Year:            2026,
	}

	// The cap belonged to Q1; by Q3 the bonus applies again.
	score := Score(card, domain.CategoryGroceries, domain.DefaultPreferences(), asOf)
	assert.InDelta(t, 5.0, score.CategoryScore, 1e-9)
}

func TestInactiveRewardCategoryIgnored(t *testing.T) {
	card := amexGold(8000)
	card.RewardCategories[0].IsActive = false

	score := Score(card, domain.CategoryGroceries, domain.DefaultPreferences(), asOf)
	assert.InDelta(t, 1.0, score.CategoryScore, 1e-9)
}

func TestTotalScoreMonotonicInCategoryScore(t *testing.T) {
	prefs := domain.DefaultPreferences()
	previous := -1.0
	for _, multiplier := range []float64{1, 1.5, 2, 3, 4, 5, 10} {
		card := domain.Card{
			ID: "m", Name: "M", IsActive: true,
			RewardCategories: []domain.RewardCategory{
				{Category: domain.CategoryTravel, Multiplier: multiplier, PointType: domain.PointsMiles, IsActive: true},
			},
		}
		total := Score(card, domain.CategoryTravel, prefs, asOf).TotalScore
		assert.Greater(t, total, previous)
		previous = total
	}
}
