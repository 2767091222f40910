package service

import (
	"fmt"
	"slices"
	"strings"
)

type Tier int

const (
	TierFree Tier = iota
	TierPro
	TierPremium
	tierCount
)

var tierNames = [tierCount]string{
	TierFree:    "free",
	TierPro:     "pro",
	TierPremium: "premium",
}

func (t Tier) String() string {
	if t < 0 || t >= tierCount {
		return tierNames[TierFree]
	}
	return tierNames[t]
}

func AllTiers() []Tier {
	return []Tier{TierFree, TierPro, TierPremium}
}

// ParseTier accepts a tier name case-insensitively.
func ParseTier(value string) (Tier, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	for t := Tier(0); t < tierCount; t++ {
		if tierNames[t] == v {
			return t, true
		}
	}
	return TierFree, false
}

// SubscriptionState is the raw input to tier resolution.
type SubscriptionState struct {
	Subscribed       bool   `json:"subscribed"`
	SubscriptionTier string `json:"subscription_tier"`
	TestMode         bool   `json:"test_mode"`
	TestTier         string `json:"test_subscription_tier,omitempty"`
}

// ResolveTier returns the effective tier. An active test mode with a test
// tier overrides the real subscription. Anything unrecognized is free.
func ResolveTier(s SubscriptionState) Tier {
	if s.TestMode && strings.TrimSpace(s.TestTier) != "" {
		t, _ := ParseTier(s.TestTier)
		return t
	}
	if !s.Subscribed {
		return TierFree
	}
	switch t, _ := ParseTier(s.SubscriptionTier); t {
	case TierPro, TierPremium:
		return t
	default:
		return TierFree
	}
}

type Feature int

const (
	FeatureNutritionLogging Feature = iota
	FeatureWorkoutTracking
	FeatureBarcodeScanner
	FeatureProgressPhotos
	FeatureProgressPhotoNotes
	FeatureBMICalculator
	FeatureCustomExercises
	FeatureCustomMeals
	FeatureMacroGoals
	FeatureAdvancedAnalytics
	FeatureAIMealPlanner
	FeatureAIWorkoutCoach
	FeatureDataExport
	FeatureWeeklyReports
	featureCount
)

var featureNames = [...]string{
	FeatureNutritionLogging:   "nutritionLogging",
	FeatureWorkoutTracking:    "workoutTracking",
	FeatureBarcodeScanner:     "barcodeScanner",
	FeatureProgressPhotos:     "progressPhotos",
	FeatureProgressPhotoNotes: "progressPhotoNotes",
	FeatureBMICalculator:      "bmiCalculator",
	FeatureCustomExercises:    "customExercises",
	FeatureCustomMeals:        "customMeals",
	FeatureMacroGoals:         "macroGoals",
	FeatureAdvancedAnalytics:  "advancedAnalytics",
	FeatureAIMealPlanner:      "aiMealPlanner",
	FeatureAIWorkoutCoach:     "aiWorkoutCoach",
	FeatureDataExport:         "dataExport",
	FeatureWeeklyReports:      "weeklyReports",
}

func (f Feature) String() string {
	if f < 0 || f >= featureCount {
		return fmt.Sprintf("feature(%d)", int(f))
	}
	return featureNames[f]
}

func AllFeatures() []Feature {
	out := make([]Feature, 0, featureCount)
	for f := Feature(0); f < featureCount; f++ {
		out = append(out, f)
	}
	return out
}

func ParseFeature(value string) (Feature, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	for f := Feature(0); f < featureCount; f++ {
		if strings.ToLower(featureNames[f]) == v {
			return f, true
		}
	}
	return 0, false
}

// perTier holds one value per tier. Rows are written as unkeyed literals so
// adding a tier breaks every table until it is filled in.
type perTier[T any] struct {
	Free    T
	Pro     T
	Premium T
}

func (p perTier[T]) get(t Tier) T {
	switch t {
	case TierPro:
		return p.Pro
	case TierPremium:
		return p.Premium
	default:
		return p.Free
	}
}

// featureAccess is hand-authored per feature. It is not derived from tier
// order: progressPhotoNotes skips pro, customExercises differs only by limit.
var featureAccess = [...]perTier[bool]{
	FeatureNutritionLogging:   {true, true, true},
	FeatureWorkoutTracking:    {true, true, true},
	FeatureBarcodeScanner:     {true, true, true},
	FeatureProgressPhotos:     {true, true, true},
	FeatureProgressPhotoNotes: {false, false, true},
	FeatureBMICalculator:      {false, true, true},
	FeatureCustomExercises:    {true, true, true},
	FeatureCustomMeals:        {true, true, true},
	FeatureMacroGoals:         {false, true, true},
	FeatureAdvancedAnalytics:  {false, true, true},
	FeatureAIMealPlanner:      {false, true, true},
	FeatureAIWorkoutCoach:     {false, false, true},
	FeatureDataExport:         {false, true, true},
	FeatureWeeklyReports:      {false, true, true},
}

// Fails to compile when a feature is appended without a row in either table.
var (
	_ [featureCount]perTier[bool] = featureAccess
	_ [featureCount]string        = featureNames
)

func HasFeature(t Tier, f Feature) bool {
	if f < 0 || f >= featureCount {
		return false
	}
	return featureAccess[f].get(t)
}

// Limit caps how many items of a limited feature a tier may hold.
type Limit int

// Unlimited is the only limit value IsUnlimited reports true for.
const Unlimited Limit = -1

func (l Limit) IsUnlimited() bool {
	return l == Unlimited
}

func (l Limit) String() string {
	if l.IsUnlimited() {
		return "unlimited"
	}
	return fmt.Sprintf("%d", int(l))
}

var featureLimits = map[Feature]perTier[Limit]{
	FeatureCustomExercises: {5, 50, Unlimited},
	FeatureCustomMeals:     {3, 25, Unlimited},
}

// LimitedFeatures returns the features with a usage cap in display order.
func LimitedFeatures() []Feature {
	return []Feature{FeatureCustomExercises, FeatureCustomMeals}
}

// FeatureLimit returns the cap for f at tier t. Features outside
// LimitedFeatures are unlimited; a limited feature missing from the table
// gets a cap of zero.
func FeatureLimit(t Tier, f Feature) Limit {
	return lookupLimit(featureLimits, t, f)
}

func lookupLimit(table map[Feature]perTier[Limit], t Tier, f Feature) Limit {
	if limits, ok := table[f]; ok {
		return limits.get(t)
	}
	if slices.Contains(LimitedFeatures(), f) {
		return 0
	}
	return Unlimited
}

// Entitlements is the resolved view of one tier, used for display and the API.
type Entitlements struct {
	Tier     string           `json:"tier"`
	Features map[string]bool  `json:"features"`
	Limits   map[string]Limit `json:"limits"`
}

func EntitlementsFor(t Tier) Entitlements {
	out := Entitlements{
		Tier:     t.String(),
		Features: make(map[string]bool, featureCount),
		Limits:   make(map[string]Limit, len(featureLimits)),
	}
	for _, f := range AllFeatures() {
		out.Features[f.String()] = HasFeature(t, f)
	}
	for _, f := range LimitedFeatures() {
		out.Limits[f.String()] = FeatureLimit(t, f)
	}
	return out
}
