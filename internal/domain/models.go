// internal/domain/models.go
package domain

import "time"

// Category is a spending bucket used to select a reward multiplier.
type Category string

const (
	CategoryGroceries      Category = "groceries"
	CategoryDining         Category = "dining"
	CategoryTravel         Category = "travel"
	CategoryGas            Category = "gas"
	CategoryCoffee         Category = "coffee"
	CategoryOnlineShopping Category = "online_shopping"
	CategoryEntertainment  Category = "entertainment"
	CategoryTransit        Category = "transit"
	CategoryDrugstores     Category = "drugstores"
	CategoryGeneral        Category = "general"
)

// Categories is the fixed enumeration order. Keyword matching walks it
// front to back, so the order is part of the matching contract.
var Categories = []Category{
	CategoryGroceries,
	CategoryDining,
	CategoryTravel,
	CategoryGas,
	CategoryCoffee,
	CategoryOnlineShopping,
	CategoryEntertainment,
	CategoryTransit,
	CategoryDrugstores,
	CategoryGeneral,
}

var categoryNames = map[Category]string{
	CategoryGroceries:      "groceries",
	CategoryDining:         "dining",
	CategoryTravel:         "travel",
	CategoryGas:            "gas",
	CategoryCoffee:         "coffee",
	CategoryOnlineShopping: "online shopping",
	CategoryEntertainment:  "entertainment",
	CategoryTransit:        "transit",
	CategoryDrugstores:     "drugstores",
	CategoryGeneral:        "everyday purchases",
}

func (c Category) DisplayName() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return string(c)
}

func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

// PointType is the rewards currency a card earns.
type PointType string

const (
	PointsMembershipRewards PointType = "membership_rewards"
	PointsUltimateRewards   PointType = "ultimate_rewards"
	PointsThankYou          PointType = "thank_you"
	PointsCashBack          PointType = "cash_back"
	PointsMiles             PointType = "miles"
)

var pointTypeNames = map[PointType]string{
	PointsMembershipRewards: "Membership Rewards",
	PointsUltimateRewards:   "Ultimate Rewards",
	PointsThankYou:          "ThankYou",
	PointsCashBack:          "Cash Back",
	PointsMiles:             "Miles",
}

func (p PointType) DisplayName() string {
	if name, ok := pointTypeNames[p]; ok {
		return name
	}
	return string(p)
}

func (p PointType) Valid() bool {
	_, ok := pointTypeNames[p]
	return ok
}

// ResetCadence controls how often a spending limit rolls over.
type ResetCadence string

const (
	ResetMonthly   ResetCadence = "monthly"
	ResetQuarterly ResetCadence = "quarterly"
	ResetAnnually  ResetCadence = "annually"
)

// RewardCategory is an elevated earning rate on one category.
type RewardCategory struct {
	Category   Category  `json:"category"`
	Multiplier float64   `json:"multiplier"`
	PointType  PointType `json:"point_type"`
	IsActive   bool      `json:"is_active"`
}

// QuarterlyBonus is a rotating, capped multiplier valid for one calendar
// quarter, identified by (quarter, year).
type QuarterlyBonus struct {
	Category        Category  `json:"category"`
	Multiplier      float64   `json:"multiplier"`
	PointType       PointType `json:"point_type"`
	SpendLimit      float64   `json:"spend_limit"`
	CurrentSpending float64   `json:"current_spending"`
	Quarter         int       `json:"quarter"`
	Year            int       `json:"year"`
}

// SpendingLimit caps how much category spending earns the elevated rate.
type SpendingLimit struct {
	Category        Category     `json:"category"`
	Limit           float64      `json:"limit"`
	CurrentSpending float64      `json:"current_spending"`
	ResetDate       time.Time    `json:"reset_date"`
	ResetType       ResetCadence `json:"reset_type"`
}

// WarningThreshold is the usage fraction at which a limit counts as
// close to exhausted.
const WarningThreshold = 0.85

func (l SpendingLimit) UsagePercentage() float64 {
	if l.Limit <= 0 {
		return 0
	}
	return l.CurrentSpending / l.Limit
}

func (l SpendingLimit) RemainingAmount() float64 {
	if remaining := l.Limit - l.CurrentSpending; remaining > 0 {
		return remaining
	}
	return 0
}

func (l SpendingLimit) IsLimitReached() bool {
	return l.CurrentSpending >= l.Limit
}

func (l SpendingLimit) IsWarningThreshold() bool {
	return l.UsagePercentage() >= WarningThreshold
}

// Card is one card in a user's wallet. Reward categories and spending
// limits are keyed by category: at most one entry per category is the
// effective multiplier source for a recommendation.
type Card struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Issuer           string           `json:"issuer"`
	RewardCategories []RewardCategory `json:"reward_categories"`
	QuarterlyBonus   *QuarterlyBonus  `json:"quarterly_bonus,omitempty"`
	SpendingLimits   []SpendingLimit  `json:"spending_limits"`
	IsActive         bool             `json:"is_active"`
}

// UserPreferences is read-only input to scoring.
type UserPreferences struct {
	PreferredPointSystem PointType `json:"preferred_point_system"`
	AlertThreshold       float64   `json:"alert_threshold"`
	Language             string    `json:"language"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	AutoUpdateEnabled    bool      `json:"auto_update_enabled"`
}

// DefaultPreferences is used when a user has not saved any yet.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		PreferredPointSystem: PointsCashBack,
		AlertThreshold:       WarningThreshold,
		Language:             "en",
		NotificationsEnabled: true,
	}
}

// Intent classifies what a free-text query is asking for.
type Intent string

const (
	IntentRecommendation Intent = "recommendation"
	IntentSpendingUpdate Intent = "spending_update"
	IntentLimitInquiry   Intent = "limit_inquiry"
	IntentCardManagement Intent = "card_management"
)

// ParsedQuery is the per-call result of interpreting a query string.
type ParsedQuery struct {
	Text     string    `json:"text"`
	Category *Category `json:"category,omitempty"`
	Merchant *string   `json:"merchant,omitempty"`
	Amount   *float64  `json:"amount,omitempty"`
	Intent   Intent    `json:"intent"`
}

// CardRecommendation is one ranked card in a recommendation response.
// Rank 1 is the primary pick, rank 2 the runner-up.
type CardRecommendation struct {
	CardID          string    `json:"card_id"`
	CardName        string    `json:"card_name"`
	Category        Category  `json:"category"`
	Multiplier      float64   `json:"multiplier"`
	PointType       PointType `json:"point_type"`
	Reasoning       string    `json:"reasoning"`
	CurrentSpending float64   `json:"current_spending"`
	SpendingLimit   float64   `json:"spending_limit"`
	IsLimitReached  bool      `json:"is_limit_reached"`
	Rank            int       `json:"rank"`
}

// RecommendationResponse is the full answer to a recommendation query.
// Confidence 1.0 means the category resolved cleanly; lower means the
// query needs clarification.
type RecommendationResponse struct {
	Primary     *CardRecommendation `json:"primary,omitempty"`
	Secondary   *CardRecommendation `json:"secondary,omitempty"`
	Reasoning   string              `json:"reasoning"`
	Warnings    []string            `json:"warnings,omitempty"`
	Suggestions []string            `json:"suggestions,omitempty"`
	Confidence  float64             `json:"confidence"`
}
