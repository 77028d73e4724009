// internal/bot/bot.go

// Package bot turns free-text chat messages into engine calls. It is
// the chat front end over the same recommendation core the HTTP API
// uses; both the webhook route and the long-polling binary dispatch
// through HandleMessage.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cardwise/internal/domain"
	"cardwise/internal/limits"
	"cardwise/internal/query"
	"cardwise/internal/recommend"
	"cardwise/internal/storage"
)

type Store interface {
	storage.CardStorage
	storage.PreferenceStorage
}

const helpText = "💳 *Cardwise*\n\n" +
	"Just tell me what you're buying and I'll pick the best card:\n" +
	"`buying groceries at Whole Foods`\n" +
	"`booking a flight to Europe`\n\n" +
	"Other things I understand:\n" +
	"`I spent $50 on groceries`: record spending against your limit\n" +
	"`how much left on groceries`: check limit usage\n" +
	"`/cards`: list your cards"

// HandleMessage routes one chat message: commands first, then query
// validation, then intent dispatch into the engine.
func HandleMessage(ctx context.Context, store Store, userID int64, text string, maxQueryLength int) string {
	text = strings.TrimSpace(text)

	switch {
	case text == "/start" || text == "/help":
		return helpText
	case text == "/cards":
		return listCards(ctx, store, userID)
	}

	switch query.ValidateQuery(text, maxQueryLength) {
	case query.QueryEmpty:
		return "Tell me what you're buying, e.g. `buying groceries`."
	case query.QueryTooLong:
		return "That message is too long for me. Keep it short."
	}

	parsed := query.Parse(text)
	switch parsed.Intent {
	case domain.IntentSpendingUpdate:
		return recordSpend(ctx, store, userID, parsed)
	case domain.IntentLimitInquiry:
		return limitReport(ctx, store, userID, parsed)
	case domain.IntentCardManagement:
		return "Card management lives in the app. Use /cards here to see what you have."
	default:
		return recommendation(ctx, store, userID, text)
	}
}

func recommendation(ctx context.Context, store Store, userID int64, text string) string {
	cards, err := store.ListActiveCards(ctx, userID)
	if err != nil {
		slog.Error("bot: failed to load cards", "error", err, "user_id", userID)
		return "❌ Something went wrong, try again."
	}
	prefs := loadPreferences(ctx, store, userID)

	response := recommend.Recommend(text, cards, prefs, time.Now())

	var b strings.Builder
	if response.Primary != nil {
		fmt.Fprintf(&b, "✅ *%s*\n%s\n", response.Primary.CardName, response.Primary.Reasoning)
		if response.Secondary != nil {
			fmt.Fprintf(&b, "\nRunner-up: %s (%.1fx %s)\n",
				response.Secondary.CardName, response.Secondary.Multiplier, response.Secondary.PointType.DisplayName())
		}
	} else {
		b.WriteString(response.Reasoning + "\n")
	}
	for _, w := range response.Warnings {
		fmt.Fprintf(&b, "\n⚠️ %s", w)
	}
	for _, s := range response.Suggestions {
		fmt.Fprintf(&b, "\n💡 %s", s)
	}
	return strings.TrimSpace(b.String())
}

// recordSpend applies a spending update to the best card for the
// category, i.e. the one a recommendation would have picked.
func recordSpend(ctx context.Context, store Store, userID int64, parsed domain.ParsedQuery) string {
	if parsed.Category == nil {
		return "What category was that? Try `I spent $50 on groceries`."
	}
	if parsed.Amount == nil {
		return "How much did you spend? Try `I spent $50 on groceries`."
	}

	cards, err := store.ListActiveCards(ctx, userID)
	if err != nil {
		slog.Error("bot: failed to load cards", "error", err, "user_id", userID)
		return "❌ Something went wrong, try again."
	}
	prefs := loadPreferences(ctx, store, userID)

	response := recommend.Recommend(parsed.Text, cards, prefs, time.Now())
	if response.Primary == nil {
		return "You have no active cards to record spending against."
	}

	card, err := store.RecordSpend(ctx, userID, response.Primary.CardID, *parsed.Category, *parsed.Amount, time.Now())
	if err != nil {
		if errors.Is(err, limits.ErrCategoryLimitNotFound) {
			return fmt.Sprintf("%s doesn't track a %s limit, so nothing to record.",
				response.Primary.CardName, parsed.Category.DisplayName())
		}
		slog.Error("bot: record spend failed", "error", err, "user_id", userID)
		return "❌ Couldn't record that, try again."
	}

	limit := limits.FindLimit(*card, *parsed.Category, time.Now())
	if limit == nil {
		return fmt.Sprintf("✅ Recorded $%.2f on %s.", *parsed.Amount, card.Name)
	}
	return fmt.Sprintf("✅ Recorded $%.2f on %s: $%.2f remaining in your %s limit.",
		*parsed.Amount, card.Name, limit.RemainingAmount(), parsed.Category.DisplayName())
}

func limitReport(ctx context.Context, store Store, userID int64, parsed domain.ParsedQuery) string {
	cards, err := store.ListActiveCards(ctx, userID)
	if err != nil {
		slog.Error("bot: failed to load cards", "error", err, "user_id", userID)
		return "❌ Something went wrong, try again."
	}

	var b strings.Builder
	now := time.Now()
	for _, card := range cards {
		for _, l := range card.SpendingLimits {
			if parsed.Category != nil && l.Category != *parsed.Category {
				continue
			}
			limit := limits.CheckAndResetIfExpired(l, now)
			marker := "🟢"
			if limit.IsLimitReached() {
				marker = "🔴"
			} else if limit.IsWarningThreshold() {
				marker = "🟡"
			}
			fmt.Fprintf(&b, "%s %s / %s: $%.2f of $%.2f used ($%.2f left)\n",
				marker, card.Name, limit.Category.DisplayName(),
				limit.CurrentSpending, limit.Limit, limit.RemainingAmount())
		}
	}
	if b.Len() == 0 {
		if parsed.Category != nil {
			return fmt.Sprintf("No card tracks a %s limit.", parsed.Category.DisplayName())
		}
		return "None of your cards track spending limits."
	}
	return strings.TrimSpace(b.String())
}

func listCards(ctx context.Context, store Store, userID int64) string {
	cards, err := store.ListCards(ctx, userID)
	if err != nil {
		slog.Error("bot: failed to list cards", "error", err, "user_id", userID)
		return "❌ Something went wrong, try again."
	}
	if len(cards) == 0 {
		return "You have no cards yet. Add one in the app."
	}

	var b strings.Builder
	for _, card := range cards {
		status := "active"
		if !card.IsActive {
			status = "inactive"
		}
		fmt.Fprintf(&b, "• *%s* (%s, %s)\n", card.Name, card.Issuer, status)
	}
	return strings.TrimSpace(b.String())
}

func loadPreferences(ctx context.Context, store Store, userID int64) domain.UserPreferences {
	prefs, err := store.GetPreferences(ctx, userID)
	if err != nil || prefs == nil {
		return domain.DefaultPreferences()
	}
	return *prefs
}
