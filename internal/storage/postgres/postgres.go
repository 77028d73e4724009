// internal/storage/postgres/postgres.go
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cardwise/internal/domain"
	"cardwise/internal/limits"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Storage struct {
	db *pgxpool.Pool
}

func NewStorage(db *pgxpool.Pool) *Storage {
	return &Storage{db: db}
}

// === CardStorage ===

func (s *Storage) ListActiveCards(ctx context.Context, userID int64) ([]domain.Card, error) {
	return s.listCards(ctx, userID, true)
}

func (s *Storage) ListCards(ctx context.Context, userID int64) ([]domain.Card, error) {
	return s.listCards(ctx, userID, false)
}

func (s *Storage) listCards(ctx context.Context, userID int64, activeOnly bool) ([]domain.Card, error) {
	query := `
		SELECT id, name, issuer, reward_categories, quarterly_bonus, spending_limits, is_active
		FROM cards
		WHERE user_id = $1
	`
	if activeOnly {
		query += " AND is_active"
	}
	query += " ORDER BY name"

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

func (s *Storage) GetCard(ctx context.Context, userID int64, cardID string) (*domain.Card, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, name, issuer, reward_categories, quarterly_bonus, spending_limits, is_active
		FROM cards
		WHERE user_id = $1 AND id = $2
	`, userID, cardID)

	card, err := scanCard(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

func (s *Storage) SaveCard(ctx context.Context, userID int64, card domain.Card) error {
	rewards, bonus, spendLimits, err := marshalCard(card)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO cards (id, user_id, name, issuer, reward_categories, quarterly_bonus, spending_limits, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			issuer = EXCLUDED.issuer,
			reward_categories = EXCLUDED.reward_categories,
			quarterly_bonus = EXCLUDED.quarterly_bonus,
			spending_limits = EXCLUDED.spending_limits,
			is_active = EXCLUDED.is_active,
			updated_at = now()
	`, card.ID, userID, card.Name, card.Issuer, rewards, bonus, spendLimits, card.IsActive)
	if err != nil {
		return fmt.Errorf("save card: %w", err)
	}
	return nil
}

func (s *Storage) DeleteCard(ctx context.Context, userID int64, cardID string) error {
	tag, err := s.db.Exec(ctx, "DELETE FROM cards WHERE user_id = $1 AND id = $2", userID, cardID)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return limits.ErrCardNotFound
	}
	return nil
}

// RecordSpend loads the card row FOR UPDATE, applies the limit
// transition in memory, and writes the result back in one transaction,
// so spend updates for the same card serialize at the row lock.
func (s *Storage) RecordSpend(ctx context.Context, userID int64, cardID string, category domain.Category, amount float64, asOf time.Time) (*domain.Card, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin record spend: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT id, name, issuer, reward_categories, quarterly_bonus, spending_limits, is_active
		FROM cards
		WHERE user_id = $1 AND id = $2
		FOR UPDATE
	`, userID, cardID)

	card, err := scanCard(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, limits.ErrCardNotFound
		}
		return nil, err
	}

	updated, err := limits.RecordSpend(card, category, amount, asOf)
	if err != nil {
		return nil, err
	}

	_, bonus, spendLimits, err := marshalCard(updated)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE cards
		SET spending_limits = $1, quarterly_bonus = $2, updated_at = now()
		WHERE user_id = $3 AND id = $4
	`, spendLimits, bonus, userID, cardID); err != nil {
		return nil, fmt.Errorf("record spend: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit record spend: %w", err)
	}
	return &updated, nil
}

// === PreferenceStorage ===

func (s *Storage) GetPreferences(ctx context.Context, userID int64) (*domain.UserPreferences, error) {
	var prefs domain.UserPreferences
	err := s.db.QueryRow(ctx, `
		SELECT preferred_point_system, alert_threshold, language, notifications_enabled, auto_update_enabled
		FROM preferences
		WHERE user_id = $1
	`, userID).Scan(
		&prefs.PreferredPointSystem,
		&prefs.AlertThreshold,
		&prefs.Language,
		&prefs.NotificationsEnabled,
		&prefs.AutoUpdateEnabled,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	return &prefs, nil
}

func (s *Storage) SavePreferences(ctx context.Context, userID int64, prefs domain.UserPreferences) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO preferences (user_id, preferred_point_system, alert_threshold, language, notifications_enabled, auto_update_enabled)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			preferred_point_system = EXCLUDED.preferred_point_system,
			alert_threshold = EXCLUDED.alert_threshold,
			language = EXCLUDED.language,
			notifications_enabled = EXCLUDED.notifications_enabled,
			auto_update_enabled = EXCLUDED.auto_update_enabled,
			updated_at = now()
	`, userID, prefs.PreferredPointSystem, prefs.AlertThreshold, prefs.Language, prefs.NotificationsEnabled, prefs.AutoUpdateEnabled)
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// === helpers ===

func marshalCard(card domain.Card) (rewards, bonus, spendLimits []byte, err error) {
	rewards, err = json.Marshal(card.RewardCategories)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal reward categories: %w", err)
	}
	if card.QuarterlyBonus != nil {
		bonus, err = json.Marshal(card.QuarterlyBonus)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("marshal quarterly bonus: %w", err)
		}
	}
	spendLimits, err = json.Marshal(card.SpendingLimits)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshal spending limits: %w", err)
	}
	return rewards, bonus, spendLimits, nil
}

func scanCard(row pgx.Row) (domain.Card, error) {
	var (
		card        domain.Card
		rewards     []byte
		bonus       []byte
		spendLimits []byte
	)
	err := row.Scan(&card.ID, &card.Name, &card.Issuer, &rewards, &bonus, &spendLimits, &card.IsActive)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.Card{}, err
		}
		return domain.Card{}, fmt.Errorf("scan card: %w", err)
	}

	if len(rewards) > 0 {
		if err := json.Unmarshal(rewards, &card.RewardCategories); err != nil {
			return domain.Card{}, fmt.Errorf("unmarshal reward categories: %w", err)
		}
	}
	if len(bonus) > 0 {
		card.QuarterlyBonus = &domain.QuarterlyBonus{}
		if err := json.Unmarshal(bonus, card.QuarterlyBonus); err != nil {
			return domain.Card{}, fmt.Errorf("unmarshal quarterly bonus: %w", err)
		}
	}
	if len(spendLimits) > 0 {
		if err := json.Unmarshal(spendLimits, &card.SpendingLimits); err != nil {
			return domain.Card{}, fmt.Errorf("unmarshal spending limits: %w", err)
		}
	}
	return card, nil
}
