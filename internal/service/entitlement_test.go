package service_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/saadjs/fittrack-cli/internal/service"
)

func TestResolveTier(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		state service.SubscriptionState
		want  service.Tier
	}{
		{name: "unsubscribed", state: service.SubscriptionState{}, want: service.TierFree},
		{name: "unsubscribed ignores stored tier", state: service.SubscriptionState{SubscriptionTier: "premium"}, want: service.TierFree},
		{name: "pro", state: service.SubscriptionState{Subscribed: true, SubscriptionTier: "pro"}, want: service.TierPro},
		{name: "premium mixed case", state: service.SubscriptionState{Subscribed: true, SubscriptionTier: " Premium "}, want: service.TierPremium},
		{name: "subscribed free", state: service.SubscriptionState{Subscribed: true, SubscriptionTier: "free"}, want: service.TierFree},
		{name: "subscribed unknown tier", state: service.SubscriptionState{Subscribed: true, SubscriptionTier: "gold"}, want: service.TierFree},
		{name: "subscribed empty tier", state: service.SubscriptionState{Subscribed: true}, want: service.TierFree},
		{name: "test mode overrides", state: service.SubscriptionState{Subscribed: true, SubscriptionTier: "pro", TestMode: true, TestTier: "premium"}, want: service.TierPremium},
		{name: "test mode downgrade", state: service.SubscriptionState{Subscribed: true, SubscriptionTier: "premium", TestMode: true, TestTier: "free"}, want: service.TierFree},
		{name: "test mode without tier falls through", state: service.SubscriptionState{Subscribed: true, SubscriptionTier: "pro", TestMode: true}, want: service.TierPro},
		{name: "test tier ignored when test mode off", state: service.SubscriptionState{TestTier: "premium"}, want: service.TierFree},
		{name: "unknown test tier is free", state: service.SubscriptionState{Subscribed: true, SubscriptionTier: "premium", TestMode: true, TestTier: "platinum"}, want: service.TierFree},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := service.ResolveTier(tc.state); got != tc.want {
				t.Fatalf("ResolveTier(%+v) = %s, want %s", tc.state, got, tc.want)
			}
		})
	}
}

func TestHasFeatureTable(t *testing.T) {
	t.Parallel()
	tests := []struct {
		tier    service.Tier
		feature service.Feature
		want    bool
	}{
		{service.TierFree, service.FeatureNutritionLogging, true},
		{service.TierFree, service.FeatureCustomExercises, true},
		{service.TierFree, service.FeatureBMICalculator, false},
		{service.TierPro, service.FeatureBMICalculator, true},
		{service.TierFree, service.FeatureProgressPhotoNotes, false},
		{service.TierPro, service.FeatureProgressPhotoNotes, false},
		{service.TierPremium, service.FeatureProgressPhotoNotes, true},
		{service.TierPro, service.FeatureAIWorkoutCoach, false},
		{service.TierPremium, service.FeatureAIWorkoutCoach, true},
		{service.TierPro, service.FeatureDataExport, true},
		{service.TierFree, service.Feature(99), false},
	}
	for _, tc := range tests {
		if got := service.HasFeature(tc.tier, tc.feature); got != tc.want {
			t.Fatalf("HasFeature(%s, %s) = %v, want %v", tc.tier, tc.feature, got, tc.want)
		}
	}
}

func TestPremiumHasEveryFeature(t *testing.T) {
	t.Parallel()
	features := service.AllFeatures()
	if len(features) != 14 {
		t.Fatalf("expected 14 features, got %d", len(features))
	}
	for _, f := range features {
		if !service.HasFeature(service.TierPremium, f) {
			t.Fatalf("premium should include %s", f)
		}
	}
}

func TestFeatureLimitsAreMonotonic(t *testing.T) {
	t.Parallel()
	rank := func(l service.Limit) int {
		if l.IsUnlimited() {
			return int(^uint(0) >> 1)
		}
		return int(l)
	}
	for _, f := range service.LimitedFeatures() {
		free := service.FeatureLimit(service.TierFree, f)
		pro := service.FeatureLimit(service.TierPro, f)
		premium := service.FeatureLimit(service.TierPremium, f)
		if rank(free) > rank(pro) || rank(pro) > rank(premium) {
			t.Fatalf("%s limits not monotonic: free=%s pro=%s premium=%s", f, free, pro, premium)
		}
	}
	if !service.FeatureLimit(service.TierPremium, service.FeatureCustomMeals).IsUnlimited() {
		t.Fatalf("premium custom meals should be unlimited")
	}
	if got := service.FeatureLimit(service.TierFree, service.FeatureCustomExercises); got != 5 {
		t.Fatalf("free custom exercises limit = %s, want 5", got)
	}
	if !service.FeatureLimit(service.TierFree, service.FeatureWorkoutTracking).IsUnlimited() {
		t.Fatalf("features without a limit row should be unlimited")
	}
}

func TestParseTierAndFeature(t *testing.T) {
	t.Parallel()
	if tier, ok := service.ParseTier("PRO"); !ok || tier != service.TierPro {
		t.Fatalf("ParseTier(PRO) = %s, %v", tier, ok)
	}
	if tier, ok := service.ParseTier("enterprise"); ok || tier != service.TierFree {
		t.Fatalf("ParseTier(enterprise) = %s, %v; want free, false", tier, ok)
	}
	for _, f := range service.AllFeatures() {
		got, ok := service.ParseFeature(f.String())
		if !ok || got != f {
			t.Fatalf("ParseFeature(%q) = %v, %v", f.String(), got, ok)
		}
	}
	if f, ok := service.ParseFeature("bmicalculator"); !ok || f != service.FeatureBMICalculator {
		t.Fatalf("ParseFeature should ignore case, got %v, %v", f, ok)
	}
	if _, ok := service.ParseFeature("teleport"); ok {
		t.Fatalf("ParseFeature(teleport) should fail")
	}
}

func TestEntitlementsFor(t *testing.T) {
	t.Parallel()
	got := service.EntitlementsFor(service.TierPro)
	if got.Tier != "pro" {
		t.Fatalf("tier = %q", got.Tier)
	}
	if len(got.Features) != 14 {
		t.Fatalf("expected 14 features, got %d", len(got.Features))
	}
	if got.Features["progressPhotoNotes"] || !got.Features["bmiCalculator"] {
		t.Fatalf("unexpected pro features: %+v", got.Features)
	}
	wantLimits := map[string]service.Limit{"customExercises": 50, "customMeals": 25}
	if diff := cmp.Diff(wantLimits, got.Limits); diff != "" {
		t.Fatalf("limits mismatch (-want +got):\n%s", diff)
	}
}
