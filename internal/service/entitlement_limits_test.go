package service

import (
	"slices"
	"testing"
)

func TestLimitTableCoversLimitedFeatures(t *testing.T) {
	t.Parallel()
	for _, f := range LimitedFeatures() {
		if _, ok := featureLimits[f]; !ok {
			t.Fatalf("%s has no row in the limit table", f)
		}
		if free := FeatureLimit(TierFree, f); free.IsUnlimited() || free <= 0 {
			t.Fatalf("%s free limit = %s, want a positive cap", f, free)
		}
	}
	for f := range featureLimits {
		if !slices.Contains(LimitedFeatures(), f) {
			t.Fatalf("%s has a limit row but is not listed as limited", f)
		}
	}
}

func TestMissingLimitRowDeniesAdditions(t *testing.T) {
	t.Parallel()
	empty := map[Feature]perTier[Limit]{}

	for _, tier := range []Tier{TierFree, TierPro, TierPremium} {
		if got := lookupLimit(empty, tier, FeatureCustomMeals); got != 0 {
			t.Fatalf("%s custom meals without a row = %s, want 0", tier, got)
		}
	}
	if got := lookupLimit(empty, TierFree, FeatureWorkoutTracking); !got.IsUnlimited() {
		t.Fatalf("unlimited feature should stay unlimited, got %s", got)
	}
}
