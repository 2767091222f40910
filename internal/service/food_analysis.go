package service

import (
	"regexp"
	"strconv"
	"strings"
)

type FoodCategory string

const (
	FoodLiquid    FoodCategory = "liquid"
	FoodSolid     FoodCategory = "solid"
	FoodCountable FoodCategory = "countable"
	FoodPowder    FoodCategory = "powder"
)

// FoodAnalysis is the measurement profile inferred for a product. DefaultUnit
// is always one of AppropriateUnits.
type FoodAnalysis struct {
	Category         FoodCategory `json:"category"`
	AppropriateUnits []string     `json:"appropriate_units"`
	DefaultUnit      string       `json:"default_unit"`
	DefaultAmount    float64      `json:"default_amount"`
}

type categoryProfile struct {
	keywords       []string
	servingHints   []string
	units          []string
	defaultUnit    string
	fallbackAmount float64
	fixedAmount    bool
}

// Checked in this order; liquid wins over powder for "protein shake".
var categoryOrder = []FoodCategory{FoodLiquid, FoodCountable, FoodPowder}

var categoryProfiles = map[FoodCategory]categoryProfile{
	FoodLiquid: {
		keywords: []string{
			"juice", "milk", "water", "soda", "drink", "beverage", "shake",
			"smoothie", "coffee", "espresso", "latte", "iced tea", "green tea", "black tea",
			"kefir", "lemonade", "beer", "wine", "broth", "soup", "syrup", "kombucha",
		},
		servingHints:   []string{"ml", "liter", "litre"},
		units:          []string{UnitMilliliter, UnitLiter, UnitCup, UnitTablespoon, UnitTeaspoon, UnitFluidOunce},
		defaultUnit:    UnitMilliliter,
		fallbackAmount: 250,
	},
	FoodCountable: {
		keywords: []string{
			"banana", "apple", "orange", "pear", "peach", "plum", "kiwi", "egg",
			"bread", "toast", "bagel", "muffin", "croissant", "cookie", "biscuit",
			"tortilla", "wrap", "pancake", "waffle", "donut", "doughnut", "sausage",
			"protein bar", "granola bar", "cracker",
		},
		servingHints:   []string{"piece", "slice"},
		units:          []string{UnitPiece, UnitSlice, UnitGram},
		defaultUnit:    UnitPiece,
		fallbackAmount: 1,
		fixedAmount:    true,
	},
	FoodPowder: {
		keywords: []string{
			"powder", "protein", "whey", "casein", "creatine", "collagen", "flour",
			"cocoa", "matcha", "supplement", "pre-workout", "preworkout", "gainer",
		},
		units:          []string{UnitGram, UnitScoop, UnitTablespoon, UnitTeaspoon},
		defaultUnit:    UnitGram,
		fallbackAmount: 30,
	},
	FoodSolid: {
		units:          []string{UnitGram, UnitKilogram, UnitOunce, UnitPound},
		defaultUnit:    UnitGram,
		fallbackAmount: 100,
	},
}

var servingNumberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// AnalyzeFood infers how a product is measured from its name, category tags
// and serving-size text. It never fails; unmatched input is a solid.
func AnalyzeFood(productName string, categories []string, servingSize string) FoodAnalysis {
	haystack := strings.ToLower(strings.Join(append([]string{productName}, categories...), " "))
	serving := strings.ToLower(servingSize)

	for _, category := range categoryOrder {
		profile := categoryProfiles[category]
		if containsAny(haystack, profile.keywords) || containsAny(serving, profile.servingHints) {
			return profile.analysis(category, servingSize)
		}
	}
	return categoryProfiles[FoodSolid].analysis(FoodSolid, servingSize)
}

// UnitsForCategory returns the ordered units offered for category, or nil for
// an unknown category.
func UnitsForCategory(category FoodCategory) []string {
	profile, ok := categoryProfiles[category]
	if !ok {
		return nil
	}
	return append([]string(nil), profile.units...)
}

func ParseFoodCategory(value string) (FoodCategory, bool) {
	c := FoodCategory(strings.ToLower(strings.TrimSpace(value)))
	_, ok := categoryProfiles[c]
	return c, ok
}

func (p categoryProfile) analysis(category FoodCategory, servingSize string) FoodAnalysis {
	amount := p.fallbackAmount
	if !p.fixedAmount {
		amount = servingAmountOr(servingSize, p.fallbackAmount)
	}
	return FoodAnalysis{
		Category:         category,
		AppropriateUnits: append([]string(nil), p.units...),
		DefaultUnit:      p.defaultUnit,
		DefaultAmount:    amount,
	}
}

func servingAmountOr(servingSize string, fallback float64) float64 {
	token := servingNumberPattern.FindString(servingSize)
	if token == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func containsAny(s string, needles []string) bool {
	if s == "" {
		return false
	}
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
