package service

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// GetSubscriptionState reads the stored subscription inputs. Missing or
// unparsable flags read as false.
func GetSubscriptionState(db *sql.DB) (SubscriptionState, error) {
	cfg, err := ListConfig(db)
	if err != nil {
		return SubscriptionState{}, err
	}
	return SubscriptionState{
		Subscribed:       parseFlag(cfg[ConfigSubscribed]),
		SubscriptionTier: cfg[ConfigSubscriptionTier],
		TestMode:         parseFlag(cfg[ConfigTestMode]),
		TestTier:         cfg[ConfigTestTier],
	}, nil
}

// CurrentTier resolves the effective tier from stored state. It is read on
// every call so plan changes apply immediately.
func CurrentTier(db *sql.DB) (Tier, error) {
	state, err := GetSubscriptionState(db)
	if err != nil {
		return TierFree, err
	}
	return ResolveTier(state), nil
}

// requireCurrentFeature gates f on the tier in effect right now.
func requireCurrentFeature(db *sql.DB, f Feature) error {
	tier, err := CurrentTier(db)
	if err != nil {
		return err
	}
	return RequireFeature(tier, f)
}

// SetSubscription records the real subscription. Only pro and premium are
// accepted for an active subscription; free clears it.
func SetSubscription(db *sql.DB, tier string) error {
	t, ok := ParseTier(tier)
	if !ok {
		return fmt.Errorf("unknown tier %q (expected free, pro, or premium)", tier)
	}
	subscribed := t != TierFree
	if err := SetConfig(db, ConfigSubscribed, strconv.FormatBool(subscribed)); err != nil {
		return err
	}
	return SetConfig(db, ConfigSubscriptionTier, t.String())
}

// SetTestMode enables a previewed tier that overrides the real subscription,
// or clears it when enabled is false.
func SetTestMode(db *sql.DB, enabled bool, tier string) error {
	if !enabled {
		if err := SetConfig(db, ConfigTestMode, "false"); err != nil {
			return err
		}
		return deleteConfig(db, ConfigTestTier)
	}
	t, ok := ParseTier(tier)
	if !ok {
		return fmt.Errorf("unknown test tier %q (expected free, pro, or premium)", tier)
	}
	if err := SetConfig(db, ConfigTestMode, "true"); err != nil {
		return err
	}
	return SetConfig(db, ConfigTestTier, t.String())
}

func parseFlag(v string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}
