// internal/storage/storage.go
package storage

import (
	"context"
	"time"

	"cardwise/internal/domain"
)

type CardStorage interface {
	ListActiveCards(ctx context.Context, userID int64) ([]domain.Card, error)
	ListCards(ctx context.Context, userID int64) ([]domain.Card, error)
	GetCard(ctx context.Context, userID int64, cardID string) (*domain.Card, error)
	SaveCard(ctx context.Context, userID int64, card domain.Card) error
	DeleteCard(ctx context.Context, userID int64, cardID string) error
	// RecordSpend applies a category spend to the stored card and
	// returns the updated card. Implementations must serialize
	// updates per card so concurrent spends are not lost.
	RecordSpend(ctx context.Context, userID int64, cardID string, category domain.Category, amount float64, asOf time.Time) (*domain.Card, error)
}

type PreferenceStorage interface {
	GetPreferences(ctx context.Context, userID int64) (*domain.UserPreferences, error)
	SavePreferences(ctx context.Context, userID int64, prefs domain.UserPreferences) error
}
