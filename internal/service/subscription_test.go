package service_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/saadjs/fittrack-cli/internal/service"
)

func TestCurrentTierDefaultsToFree(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	tier, err := service.CurrentTier(sqldb)
	if err != nil {
		t.Fatalf("current tier: %v", err)
	}
	if tier != service.TierFree {
		t.Fatalf("expected free, got %s", tier)
	}
}

func TestSetSubscriptionRoundTrip(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	setTier(t, sqldb, "Pro")
	state, err := service.GetSubscriptionState(sqldb)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	want := service.SubscriptionState{Subscribed: true, SubscriptionTier: "pro"}
	if diff := cmp.Diff(want, state); diff != "" {
		t.Fatalf("state mismatch (-want +got):\n%s", diff)
	}

	setTier(t, sqldb, "free")
	tier, err := service.CurrentTier(sqldb)
	if err != nil {
		t.Fatalf("current tier: %v", err)
	}
	if tier != service.TierFree {
		t.Fatalf("expected free after cancel, got %s", tier)
	}

	if err := service.SetSubscription(sqldb, "gold"); err == nil {
		t.Fatalf("expected unknown tier error")
	}
}

func TestTestModeOverridesAndClears(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	setTier(t, sqldb, "pro")

	if err := service.SetTestMode(sqldb, true, "premium"); err != nil {
		t.Fatalf("enable test mode: %v", err)
	}
	tier, err := service.CurrentTier(sqldb)
	if err != nil {
		t.Fatalf("current tier: %v", err)
	}
	if tier != service.TierPremium {
		t.Fatalf("expected test-mode premium, got %s", tier)
	}

	if err := service.SetTestMode(sqldb, false, ""); err != nil {
		t.Fatalf("disable test mode: %v", err)
	}
	state, err := service.GetSubscriptionState(sqldb)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if state.TestMode || state.TestTier != "" {
		t.Fatalf("expected test mode cleared, got %+v", state)
	}
	if service.ResolveTier(state) != service.TierPro {
		t.Fatalf("expected real pro tier after clearing test mode")
	}

	if err := service.SetTestMode(sqldb, true, "ultra"); err == nil {
		t.Fatalf("expected unknown test tier error")
	}
}

func TestSetConfigRejectsUnknownKey(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	if err := service.SetConfig(sqldb, "theme", "dark"); err == nil {
		t.Fatalf("expected unknown key error")
	}
}
