// internal/matcher/matcher.go
package matcher

import (
	"strings"

	"cardwise/internal/domain"
)

// merchantAlias maps a known merchant substring to its spending category.
type merchantAlias struct {
	alias    string
	merchant string
	category domain.Category
}

// Alias table is consulted before the keyword tables. Order matters:
// "uber eats" must come before a hypothetical "uber" entry, etc.
var merchantAliases = []merchantAlias{
	{"whole foods", "Whole Foods", domain.CategoryGroceries},
	{"trader joe", "Trader Joe's", domain.CategoryGroceries},
	{"safeway", "Safeway", domain.CategoryGroceries},
	{"kroger", "Kroger", domain.CategoryGroceries},
	{"costco", "Costco", domain.CategoryGroceries},
	{"starbucks", "Starbucks", domain.CategoryCoffee},
	{"dunkin", "Dunkin'", domain.CategoryCoffee},
	{"blue bottle", "Blue Bottle", domain.CategoryCoffee},
	{"chipotle", "Chipotle", domain.CategoryDining},
	{"mcdonald", "McDonald's", domain.CategoryDining},
	{"doordash", "DoorDash", domain.CategoryDining},
	{"uber eats", "Uber Eats", domain.CategoryDining},
	{"airbnb", "Airbnb", domain.CategoryTravel},
	{"marriott", "Marriott", domain.CategoryTravel},
	{"delta", "Delta", domain.CategoryTravel},
	{"united airlines", "United Airlines", domain.CategoryTravel},
	{"expedia", "Expedia", domain.CategoryTravel},
	{"shell", "Shell", domain.CategoryGas},
	{"chevron", "Chevron", domain.CategoryGas},
	{"exxon", "Exxon", domain.CategoryGas},
	{"amazon", "Amazon", domain.CategoryOnlineShopping},
	{"ebay", "eBay", domain.CategoryOnlineShopping},
	{"etsy", "Etsy", domain.CategoryOnlineShopping},
	{"netflix", "Netflix", domain.CategoryEntertainment},
	{"spotify", "Spotify", domain.CategoryEntertainment},
	{"amc", "AMC", domain.CategoryEntertainment},
	{"lyft", "Lyft", domain.CategoryTransit},
	{"uber", "Uber", domain.CategoryTransit},
	{"cvs", "CVS", domain.CategoryDrugstores},
	{"walgreens", "Walgreens", domain.CategoryDrugstores},
	{"rite aid", "Rite Aid", domain.CategoryDrugstores},
}

// Keyword tables per category. Categories are tried in the fixed
// domain.Categories order and the first category with any matching
// phrase wins; there is no ranking among multiple matches.
var categoryKeywords = map[domain.Category][]string{
	domain.CategoryGroceries: {
		"grocery", "groceries", "supermarket", "food shopping", "produce",
	},
	domain.CategoryDining: {
		"restaurant", "dinner", "lunch", "brunch", "dining",
		"takeout", "take-out", "eating out", "food delivery",
	},
	domain.CategoryTravel: {
		"flight", "airfare", "airline", "hotel", "vacation",
		"travel", "cruise", "rental car", "trip to",
	},
	domain.CategoryGas: {
		"gas station", "gas", "fuel", "fill up", "filling up",
	},
	domain.CategoryCoffee: {
		"coffee", "latte", "espresso", "cappuccino", "cafe",
	},
	domain.CategoryOnlineShopping: {
		"online shopping", "online order", "ordering online", "online purchase",
	},
	domain.CategoryEntertainment: {
		"movie", "concert", "streaming", "theater", "tickets to", "show",
	},
	domain.CategoryTransit: {
		"subway", "metro", "train", "bus fare", "taxi", "rideshare",
		"parking", "toll",
	},
	domain.CategoryDrugstores: {
		"pharmacy", "drugstore", "prescription", "medicine",
	},
}

// Match resolves a free-text purchase description to a spending category
// and, when a known merchant was named, the merchant. ok is false when
// nothing in the text matched.
func Match(text string) (category domain.Category, merchant string, ok bool) {
	normalized := normalize(text)
	if normalized == "" {
		return "", "", false
	}

	for _, a := range merchantAliases {
		if strings.Contains(normalized, a.alias) {
			return a.category, a.merchant, true
		}
	}

	for _, c := range domain.Categories {
		for _, keyword := range categoryKeywords[c] {
			if strings.Contains(normalized, keyword) {
				return c, "", true
			}
		}
	}

	return "", "", false
}

// MatchCategory is Match without the merchant, for callers that only
// need the category (limit inquiries, spend updates).
func MatchCategory(text string) (domain.Category, bool) {
	category, _, ok := Match(text)
	return category, ok
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}
