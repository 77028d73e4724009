// internal/query/parser.go
package query

import (
	"regexp"
	"strconv"
	"strings"

	"cardwise/internal/domain"
	"cardwise/internal/matcher"
)

// DefaultMaxQueryLength bounds accepted query text. Overridable through
// config (MAX_QUERY_LENGTH).
const DefaultMaxQueryLength = 500

// ValidationResult is the outcome of ValidateQuery.
type ValidationResult string

const (
	QueryValid   ValidationResult = "valid"
	QueryEmpty   ValidationResult = "empty"
	QueryTooLong ValidationResult = "too_long"
)

// Matches the first monetary token: $50, €12.99, 1,250.50, 40.
var amountRegex = regexp.MustCompile(`(?:[$€£]\s*)?(\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+(?:\.\d{1,2})?)`)

// Intent rules in priority order. A query matching several phrasings
// resolves to the first matching rule; the order is a documented
// contract, not a heuristic.
var intentRules = []struct {
	intent  domain.Intent
	phrases []string
}{
	{domain.IntentSpendingUpdate, []string{"i spent", "spent", "charged", "paid"}},
	{domain.IntentLimitInquiry, []string{"how much left", "how much is left", "remaining limit", "limit left", "left on my"}},
	{domain.IntentCardManagement, []string{"add card", "add a card", "remove card", "remove a card", "delete card", "new card"}},
}

// Parse interprets a free-text query: category and merchant through the
// keyword matcher, the first monetary token as the amount, and the
// intent by priority-ordered phrase rules.
func Parse(text string) domain.ParsedQuery {
	parsed := domain.ParsedQuery{
		Text:   text,
		Intent: classifyIntent(text),
	}

	if category, merchant, ok := matcher.Match(text); ok {
		parsed.Category = &category
		if merchant != "" {
			parsed.Merchant = &merchant
		}
	}

	if amount, ok := extractAmount(text); ok {
		parsed.Amount = &amount
	}

	return parsed
}

// ValidateQuery rejects empty or whitespace-only input and input longer
// than maxLength. Pass 0 to use DefaultMaxQueryLength.
func ValidateQuery(text string, maxLength int) ValidationResult {
	if maxLength <= 0 {
		maxLength = DefaultMaxQueryLength
	}
	if strings.TrimSpace(text) == "" {
		return QueryEmpty
	}
	if len(text) > maxLength {
		return QueryTooLong
	}
	return QueryValid
}

func classifyIntent(text string) domain.Intent {
	normalized := strings.ToLower(text)
	for _, rule := range intentRules {
		for _, phrase := range rule.phrases {
			if strings.Contains(normalized, phrase) {
				return rule.intent
			}
		}
	}
	return domain.IntentRecommendation
}

func extractAmount(text string) (float64, bool) {
	match := amountRegex.FindStringSubmatch(text)
	if match == nil {
		return 0, false
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return amount, true
}
