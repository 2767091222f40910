package service

import (
	"errors"
	"fmt"
)

// nearLimitRatio is where the gate starts warning. It never blocks.
const nearLimitRatio = 0.8

// CanAddMore reports whether one more item fits under limit. Reaching the
// limit blocks the next addition.
func CanAddMore(currentUsage int, limit Limit) bool {
	if limit.IsUnlimited() {
		return true
	}
	return currentUsage < int(limit)
}

// UsageRatio is usage/limit, 0 when unlimited. It exceeds 1 when usage was
// recorded before a downgrade; that is reported, not clamped.
func UsageRatio(currentUsage int, limit Limit) float64 {
	if limit.IsUnlimited() {
		return 0
	}
	if limit <= 0 {
		// zero cap: measure against one item so the value stays finite
		if currentUsage > 0 {
			return float64(currentUsage)
		}
		return 0
	}
	return float64(currentUsage) / float64(limit)
}

func NearLimit(currentUsage int, limit Limit) bool {
	return UsageRatio(currentUsage, limit) > nearLimitRatio
}

func OverLimit(currentUsage int, limit Limit) bool {
	return !limit.IsUnlimited() && currentUsage > int(limit)
}

func FormatUsage(currentUsage int, limit Limit) string {
	if limit.IsUnlimited() {
		return fmt.Sprintf("%d/unlimited", currentUsage)
	}
	s := fmt.Sprintf("%d/%d", currentUsage, int(limit))
	if OverLimit(currentUsage, limit) {
		s += " (over limit)"
	}
	return s
}

type UsageStatus struct {
	Feature    string  `json:"feature"`
	Tier       string  `json:"tier"`
	Usage      int     `json:"usage"`
	Limit      Limit   `json:"limit"`
	Unlimited  bool    `json:"unlimited"`
	Ratio      float64 `json:"ratio"`
	CanAddMore bool    `json:"can_add_more"`
	NearLimit  bool    `json:"near_limit"`
	OverLimit  bool    `json:"over_limit"`
	Display    string  `json:"display"`
	Message    string  `json:"message,omitempty"`
}

func CheckUsage(t Tier, f Feature, currentUsage int) UsageStatus {
	limit := FeatureLimit(t, f)
	st := UsageStatus{
		Feature:    f.String(),
		Tier:       t.String(),
		Usage:      currentUsage,
		Limit:      limit,
		Unlimited:  limit.IsUnlimited(),
		Ratio:      UsageRatio(currentUsage, limit),
		CanAddMore: CanAddMore(currentUsage, limit),
		NearLimit:  NearLimit(currentUsage, limit),
		OverLimit:  OverLimit(currentUsage, limit),
		Display:    FormatUsage(currentUsage, limit),
	}
	st.Message = usageMessage(st)
	return st
}

func usageMessage(st UsageStatus) string {
	switch {
	case st.Unlimited:
		return ""
	case st.OverLimit:
		return fmt.Sprintf("You are over your %s plan limit for %s (%s). Remove items or upgrade to add more.", st.Tier, st.Feature, st.Display)
	case !st.CanAddMore:
		return fmt.Sprintf("You have reached your %s plan limit of %d for %s. Upgrade to add more.", st.Tier, int(st.Limit), st.Feature)
	case st.NearLimit:
		return fmt.Sprintf("You have used %s of your %s plan limit for %s.", st.Display, st.Tier, st.Feature)
	default:
		return ""
	}
}

var ErrFeatureUnavailable = errors.New("feature not available on current plan")

// FeatureError reports a feature the effective tier does not include.
type FeatureError struct {
	Feature Feature
	Tier    Tier
}

func (e *FeatureError) Error() string {
	return fmt.Sprintf("%s is not available on the %s plan", e.Feature, e.Tier)
}

func (e *FeatureError) Unwrap() error { return ErrFeatureUnavailable }

// LimitError reports an addition blocked by the usage gate.
type LimitError struct {
	Status UsageStatus
}

func (e *LimitError) Error() string {
	return e.Status.Message
}

// RequireFeature returns a *FeatureError when t lacks f.
func RequireFeature(t Tier, f Feature) error {
	if HasFeature(t, f) {
		return nil
	}
	return &FeatureError{Feature: f, Tier: t}
}

// gateAddition checks access and the usage limit for one more item of f.
func gateAddition(t Tier, f Feature, currentUsage int) error {
	if err := RequireFeature(t, f); err != nil {
		return err
	}
	st := CheckUsage(t, f, currentUsage)
	if !st.CanAddMore {
		return &LimitError{Status: st}
	}
	return nil
}
