// internal/limits/tracker_test.go
package limits

import (
	"testing"
	"time"

	"cardwise/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func groceryCard(spent float64) domain.Card {
	return domain.Card{
		ID:       "amex-gold",
		Name:     "Amex Gold",
		IsActive: true,
		SpendingLimits: []domain.SpendingLimit{
			{
				Category:        domain.CategoryGroceries,
				Limit:           25000,
				CurrentSpending: spent,
				ResetDate:       date(2027, time.January, 1),
				ResetType:       domain.ResetAnnually,
			},
		},
	}
}

func TestCheckAndResetIfExpired(t *testing.T) {
	tests := []struct {
		name          string
		limit         domain.SpendingLimit
		asOf          time.Time
		wantSpending  float64
		wantResetDate time.Time
	}{
		{
			name: "not yet expired",
			limit: domain.SpendingLimit{
				CurrentSpending: 500,
				ResetDate:       date(2026, time.October, 1),
				ResetType:       domain.ResetQuarterly,
			},
			asOf:          date(2026, time.August, 15),
			wantSpending:  500,
			wantResetDate: date(2026, time.October, 1),
		},
		{
			name: "quarterly reset on the reset date",
			limit: domain.SpendingLimit{
				CurrentSpending: 500,
				ResetDate:       date(2026, time.July, 1),
				ResetType:       domain.ResetQuarterly,
			},
			asOf:          date(2026, time.July, 1),
			wantSpending:  0,
			wantResetDate: date(2026, time.October, 1),
		},
		{
			name: "monthly reset",
			limit: domain.SpendingLimit{
				CurrentSpending: 120,
				ResetDate:       date(2026, time.August, 1),
				ResetType:       domain.ResetMonthly,
			},
			asOf:          date(2026, time.August, 20),
			wantSpending:  0,
			wantResetDate: date(2026, time.September, 1),
		},
		{
			name: "annual reset",
			limit: domain.SpendingLimit{
				CurrentSpending: 9000,
				ResetDate:       date(2026, time.January, 1),
				ResetType:       domain.ResetAnnually,
			},
			asOf:          date(2026, time.March, 3),
			wantSpending:  0,
			wantResetDate: date(2027, time.January, 1),
		},
		{
			name: "advances past several missed periods",
			limit: domain.SpendingLimit{
				CurrentSpending: 80,
				ResetDate:       date(2026, time.January, 1),
				ResetType:       domain.ResetMonthly,
			},
			asOf:          date(2026, time.August, 15),
			wantSpending:  0,
			wantResetDate: date(2026, time.September, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckAndResetIfExpired(tt.limit, tt.asOf)
			assert.InDelta(t, tt.wantSpending, got.CurrentSpending, 1e-9)
			assert.True(t, got.ResetDate.Equal(tt.wantResetDate),
				"reset date %v, want %v", got.ResetDate, tt.wantResetDate)
		})
	}
}

func TestRecordSpend(t *testing.T) {
	asOf := date(2026, time.August, 15)

	t.Run("adds to current spending exactly once", func(t *testing.T) {
		card := groceryCard(8000)
		updated, err := RecordSpend(card, domain.CategoryGroceries, 250, asOf)
		require.NoError(t, err)
		assert.InDelta(t, 8250.0, updated.SpendingLimits[0].CurrentSpending, 1e-9)

		// Input card untouched.
		assert.InDelta(t, 8000.0, card.SpendingLimits[0].CurrentSpending, 1e-9)
	})

	t.Run("unknown category is an error", func(t *testing.T) {
		card := groceryCard(8000)
		_, err := RecordSpend(card, domain.CategoryTravel, 100, asOf)
		assert.ErrorIs(t, err, ErrCategoryLimitNotFound)
	})

	t.Run("resets an expired limit before recording", func(t *testing.T) {
		card := groceryCard(24000)
		card.SpendingLimits[0].ResetDate = date(2026, time.July, 1)
		card.SpendingLimits[0].ResetType = domain.ResetQuarterly

		updated, err := RecordSpend(card, domain.CategoryGroceries, 300, asOf)
		require.NoError(t, err)
		assert.InDelta(t, 300.0, updated.SpendingLimits[0].CurrentSpending, 1e-9)
		assert.True(t, updated.SpendingLimits[0].ResetDate.Equal(date(2026, time.October, 1)))
	})

	t.Run("quarterly bonus accrues for the same category", func(t *testing.T) {
		card := groceryCard(8000)
		card.QuarterlyBonus = &domain.QuarterlyBonus{
			Category:        domain.CategoryGroceries,
			Multiplier:      5,
			PointType:       domain.PointsCashBack,
			SpendLimit:      1500,
			CurrentSpending: 400,
			Quarter:         3,
			Year:            2026,
		}

		updated, err := RecordSpend(card, domain.CategoryGroceries, 100, asOf)
		require.NoError(t, err)
		assert.InDelta(t, 500.0, updated.QuarterlyBonus.CurrentSpending, 1e-9)
	})

	t.Run("stale quarterly bonus is re-keyed before accruing", func(t *testing.T) {
		card := groceryCard(8000)
		card.QuarterlyBonus = &domain.QuarterlyBonus{
			Category:        domain.CategoryGroceries,
			SpendLimit:      1500,
			CurrentSpending: 1200,
			Quarter:         1,
			Year:            2026,
		}

		updated, err := RecordSpend(card, domain.CategoryGroceries, 100, asOf)
		require.NoError(t, err)
		assert.InDelta(t, 100.0, updated.QuarterlyBonus.CurrentSpending, 1e-9)
		assert.Equal(t, 3, updated.QuarterlyBonus.Quarter)
		assert.Equal(t, 2026, updated.QuarterlyBonus.Year)
	})
}

func TestRecordSpendForCard(t *testing.T) {
	asOf := date(2026, time.August, 15)
	cards := []domain.Card{groceryCard(100)}

	updated, err := RecordSpendForCard(cards, "amex-gold", domain.CategoryGroceries, 50, asOf)
	require.NoError(t, err)
	assert.InDelta(t, 150.0, updated.SpendingLimits[0].CurrentSpending, 1e-9)

	_, err = RecordSpendForCard(cards, "missing", domain.CategoryGroceries, 50, asOf)
	assert.ErrorIs(t, err, ErrCardNotFound)
}

func TestRefreshQuarterlyBonus(t *testing.T) {
	bonus := domain.QuarterlyBonus{CurrentSpending: 900, Quarter: 2, Year: 2026}

	refreshed := RefreshQuarterlyBonus(bonus, date(2026, time.August, 15))
	assert.Zero(t, refreshed.CurrentSpending)
	assert.Equal(t, 3, refreshed.Quarter)
	assert.Equal(t, 2026, refreshed.Year)

	// Current period is untouched.
	same := RefreshQuarterlyBonus(refreshed, date(2026, time.September, 1))
	assert.Equal(t, refreshed, same)
}

func TestFindLimit(t *testing.T) {
	asOf := date(2026, time.August, 15)
	card := groceryCard(8000)

	limit := FindLimit(card, domain.CategoryGroceries, asOf)
	require.NotNil(t, limit)
	assert.InDelta(t, 8000.0, limit.CurrentSpending, 1e-9)

	assert.Nil(t, FindLimit(card, domain.CategoryTravel, asOf))
}
