// internal/limits/tracker.go

// Package limits holds the spending-limit state transitions. Every
// function takes and returns value copies; callers decide when and
// where the updated state is persisted.
package limits

import (
	"errors"
	"time"

	"cardwise/internal/domain"
)

var (
	ErrCardNotFound          = errors.New("card not found")
	ErrCategoryLimitNotFound = errors.New("no spending limit configured for category")
)

// CheckAndResetIfExpired rolls a limit over when asOf has crossed its
// reset date: spending goes to zero and the reset date advances by the
// configured cadence until it is in the future again. Runs lazily on
// every read and write, never from a timer.
func CheckAndResetIfExpired(limit domain.SpendingLimit, asOf time.Time) domain.SpendingLimit {
	if asOf.Before(limit.ResetDate) {
		return limit
	}
	limit.CurrentSpending = 0
	for !limit.ResetDate.After(asOf) {
		limit.ResetDate = advance(limit.ResetDate, limit.ResetType)
	}
	return limit
}

// RefreshQuarterlyBonus zeroes bonus spending when the bonus period is
// no longer the current (quarter, year) and re-keys it to the current
// one.
func RefreshQuarterlyBonus(bonus domain.QuarterlyBonus, asOf time.Time) domain.QuarterlyBonus {
	quarter := int(asOf.Month()-1)/3 + 1
	if bonus.Quarter == quarter && bonus.Year == asOf.Year() {
		return bonus
	}
	bonus.CurrentSpending = 0
	bonus.Quarter = quarter
	bonus.Year = asOf.Year()
	return bonus
}

// FindLimit returns the card's limit for category after lazy reset, or
// nil when the card has no limit for that category.
func FindLimit(card domain.Card, category domain.Category, asOf time.Time) *domain.SpendingLimit {
	for _, limit := range card.SpendingLimits {
		if limit.Category == category {
			refreshed := CheckAndResetIfExpired(limit, asOf)
			return &refreshed
		}
	}
	return nil
}

// RecordSpend adds amount to the card's spending limit for category and
// returns the updated card. The limit must already exist; spending
// against an untracked category is ErrCategoryLimitNotFound. The
// quarterly bonus for the same category, if any, accrues too.
func RecordSpend(card domain.Card, category domain.Category, amount float64, asOf time.Time) (domain.Card, error) {
	updated := card
	updated.SpendingLimits = make([]domain.SpendingLimit, len(card.SpendingLimits))
	copy(updated.SpendingLimits, card.SpendingLimits)

	found := false
	for i, limit := range updated.SpendingLimits {
		if limit.Category != category {
			continue
		}
		limit = CheckAndResetIfExpired(limit, asOf)
		limit.CurrentSpending += amount
		updated.SpendingLimits[i] = limit
		found = true
		break
	}
	if !found {
		return card, ErrCategoryLimitNotFound
	}

	if card.QuarterlyBonus != nil && card.QuarterlyBonus.Category == category {
		bonus := RefreshQuarterlyBonus(*card.QuarterlyBonus, asOf)
		bonus.CurrentSpending += amount
		updated.QuarterlyBonus = &bonus
	}

	return updated, nil
}

// RecordSpendForCard applies RecordSpend to the card with the given id
// inside the provided set.
func RecordSpendForCard(cards []domain.Card, cardID string, category domain.Category, amount float64, asOf time.Time) (domain.Card, error) {
	for _, card := range cards {
		if card.ID == cardID {
			return RecordSpend(card, category, amount, asOf)
		}
	}
	return domain.Card{}, ErrCardNotFound
}

func advance(t time.Time, cadence domain.ResetCadence) time.Time {
	switch cadence {
	case domain.ResetMonthly:
		return t.AddDate(0, 1, 0)
	case domain.ResetQuarterly:
		return t.AddDate(0, 3, 0)
	case domain.ResetAnnually:
		return t.AddDate(1, 0, 0)
	default:
		return t.AddDate(0, 3, 0)
	}
}
