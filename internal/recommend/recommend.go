// internal/recommend/recommend.go
package recommend

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"cardwise/internal/domain"
	"cardwise/internal/limits"
	"cardwise/internal/query"
	"cardwise/internal/scoring"
)

const (
	confidenceResolved   = 1.0
	confidenceUnresolved = 0.3
)

// Recommend interprets a free-text purchase query and ranks the user's
// active cards for the resolved category. It never mutates its inputs;
// callers pass a consistent snapshot of cards and preferences per call.
func Recommend(queryText string, cards []domain.Card, prefs domain.UserPreferences, asOf time.Time) domain.RecommendationResponse {
	parsed := query.Parse(queryText)

	if parsed.Category == nil {
		return domain.RecommendationResponse{
			Reasoning:  "I couldn't tell what you're purchasing.",
			Confidence: confidenceUnresolved,
			Suggestions: []string{
				"Can you specify what you're purchasing? For example: \"buying groceries\" or \"booking a flight\".",
			},
		}
	}
	category := *parsed.Category

	active := make([]domain.Card, 0, len(cards))
	for _, card := range cards {
		if card.IsActive {
			active = append(active, card)
		}
	}
	if len(active) == 0 {
		return domain.RecommendationResponse{
			Reasoning:  fmt.Sprintf("You have no active cards to use for %s.", category.DisplayName()),
			Confidence: confidenceResolved,
			Suggestions: []string{
				"Add a card to get recommendations.",
			},
		}
	}

	ranked := rank(active, category, prefs, asOf)

	primary := buildRecommendation(ranked[0], category, asOf, 1)
	response := domain.RecommendationResponse{
		Primary:    &primary,
		Reasoning:  primary.Reasoning,
		Confidence: confidenceResolved,
	}

	if len(ranked) > 1 {
		secondary := buildRecommendation(ranked[1], category, asOf, 2)
		response.Secondary = &secondary
	}

	response.Warnings = buildWarnings(primary, response.Secondary, category)
	return response
}

// rank scores every card and sorts by total score descending. Ties
// break on card name, case-insensitive ascending, so identical inputs
// always produce identical ordering.
func rank(cards []domain.Card, category domain.Category, prefs domain.UserPreferences, asOf time.Time) []domain.Card {
	ranked := make([]domain.Card, len(cards))
	copy(ranked, cards)

	scores := make(map[string]float64, len(ranked))
	for _, card := range ranked {
		scores[card.ID] = scoring.Score(card, category, prefs, asOf).TotalScore
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := scores[ranked[i].ID], scores[ranked[j].ID]
		if si != sj {
			return si > sj
		}
		return strings.ToLower(ranked[i].Name) < strings.ToLower(ranked[j].Name)
	})
	return ranked
}

func buildRecommendation(card domain.Card, category domain.Category, asOf time.Time, position int) domain.CardRecommendation {
	multiplier, pointType := scoring.EffectiveReward(card, category, asOf)

	rec := domain.CardRecommendation{
		CardID:     card.ID,
		CardName:   card.Name,
		Category:   category,
		Multiplier: multiplier,
		PointType:  pointType,
		Rank:       position,
	}

	limit := limits.FindLimit(card, category, asOf)
	if limit != nil {
		rec.CurrentSpending = limit.CurrentSpending
		rec.SpendingLimit = limit.Limit
		rec.IsLimitReached = limit.IsLimitReached()
		rec.Reasoning = fmt.Sprintf(
			"%s offers %.1fx %s points on %s, and you have $%.2f remaining in your limit.",
			card.Name, multiplier, pointType.DisplayName(), category.DisplayName(), limit.RemainingAmount(),
		)
	} else {
		rec.Reasoning = fmt.Sprintf(
			"%s offers %.1fx %s points on %s with no spending cap.",
			card.Name, multiplier, pointType.DisplayName(), category.DisplayName(),
		)
	}
	return rec
}

func buildWarnings(primary domain.CardRecommendation, secondary *domain.CardRecommendation, category domain.Category) []string {
	var warnings []string

	if primary.IsLimitReached {
		warning := fmt.Sprintf("%s has reached its %s spending limit.", primary.CardName, category.DisplayName())
		if secondary != nil {
			warning += fmt.Sprintf(" Consider using %s instead.", secondary.CardName)
		}
		warnings = append(warnings, warning)
		return warnings
	}

	if primary.SpendingLimit > 0 {
		limit := domain.SpendingLimit{
			Category:        category,
			Limit:           primary.SpendingLimit,
			CurrentSpending: primary.CurrentSpending,
		}
		if limit.IsWarningThreshold() {
			warnings = append(warnings, fmt.Sprintf(
				"%s is at %.0f%% of its %s spending limit.",
				primary.CardName, limit.UsagePercentage()*100, category.DisplayName(),
			))
		}
	}
	return warnings
}
