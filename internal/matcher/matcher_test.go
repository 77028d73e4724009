// internal/matcher/matcher_test.go
package matcher

import (
	"testing"

	"cardwise/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantCategory domain.Category
		wantMerchant string
		wantOK       bool
	}{
		{
			name:         "merchant alias resolves category and merchant",
			text:         "I'm buying groceries at Whole Foods",
			wantCategory: domain.CategoryGroceries,
			wantMerchant: "Whole Foods",
			wantOK:       true,
		},
		{
			name:         "merchant alias is case insensitive",
			text:         "grabbing a drink at STARBUCKS",
			wantCategory: domain.CategoryCoffee,
			wantMerchant: "Starbucks",
			wantOK:       true,
		},
		{
			name:         "keyword match without merchant",
			text:         "booking a flight to Europe",
			wantCategory: domain.CategoryTravel,
			wantOK:       true,
		},
		{
			name:         "gas keyword",
			text:         "filling up at the gas station",
			wantCategory: domain.CategoryGas,
			wantOK:       true,
		},
		{
			name:         "transit keyword",
			text:         "paying the subway fare",
			wantCategory: domain.CategoryTransit,
			wantOK:       true,
		},
		{
			name:         "groceries beats dining when both match (enumeration order)",
			text:         "groceries for a dinner party",
			wantCategory: domain.CategoryGroceries,
			wantOK:       true,
		},
		{
			name:         "uber eats resolves before uber",
			text:         "ordering uber eats tonight",
			wantCategory: domain.CategoryDining,
			wantMerchant: "Uber Eats",
			wantOK:       true,
		},
		{
			name:   "no match",
			text:   "hello there",
			wantOK: false,
		},
		{
			name:   "empty input",
			text:   "   ",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, merchant, ok := Match(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.wantCategory, category)
			assert.Equal(t, tt.wantMerchant, merchant)
		})
	}
}

func TestMatchIsDeterministic(t *testing.T) {
	// Same input, same answer, every time.
	for i := 0; i < 10; i++ {
		category, merchant, ok := Match("dinner and a movie")
		assert.True(t, ok)
		assert.Equal(t, domain.CategoryDining, category)
		assert.Empty(t, merchant)
	}
}
