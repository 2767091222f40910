package service_test

import (
	"errors"
	"testing"

	"github.com/saadjs/fittrack-cli/internal/service"
)

func TestCalculateBMI(t *testing.T) {
	t.Parallel()
	tests := []struct {
		weight, height float64
		bmi            float64
		band           string
	}{
		{50, 180, 15.4, "underweight"},
		{70, 175, 22.9, "normal"},
		{85, 175, 27.8, "overweight"},
		{110, 170, 38.1, "obese"},
	}
	for _, tc := range tests {
		got, err := service.CalculateBMI(tc.weight, tc.height)
		if err != nil {
			t.Fatalf("bmi(%v, %v): %v", tc.weight, tc.height, err)
		}
		if got.BMI != tc.bmi || got.Band != tc.band {
			t.Fatalf("bmi(%v, %v) = %+v, want %.1f %s", tc.weight, tc.height, got, tc.bmi, tc.band)
		}
	}
	if _, err := service.CalculateBMI(0, 170); err == nil {
		t.Fatalf("expected weight error")
	}
	if _, err := service.CalculateBMI(70, -1); err == nil {
		t.Fatalf("expected height error")
	}
}

func TestCalculateBMIRequiresPaidTier(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	_, err := service.CalculateBMIForCurrentTier(sqldb, 70, 175)
	if !errors.Is(err, service.ErrFeatureUnavailable) {
		t.Fatalf("expected feature gate on free tier, got %v", err)
	}

	setTier(t, sqldb, "pro")
	got, err := service.CalculateBMIForCurrentTier(sqldb, 70, 175)
	if err != nil {
		t.Fatalf("pro bmi: %v", err)
	}
	if got.BMI != 22.9 {
		t.Fatalf("unexpected bmi %v", got.BMI)
	}
}
