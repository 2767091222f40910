package service_test

import (
	"errors"
	"testing"
	"time"

	"github.com/saadjs/fittrack-cli/internal/service"
)

func TestSetGoalRequiresMacroGoals(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)

	err := service.SetGoal(sqldb, service.SetGoalInput{Calories: 2000, ProteinG: 150, CarbsG: 200, FatG: 60})
	if !errors.Is(err, service.ErrFeatureUnavailable) {
		t.Fatalf("free tier should not set goals, got %v", err)
	}
	history, err := service.GoalHistory(sqldb)
	if err != nil {
		t.Fatalf("goal history: %v", err)
	}
	if len(history) != 0 {
		t.Fatalf("denied goal must not be stored, got %+v", history)
	}
}

func TestGoalEffectiveDates(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	setTier(t, sqldb, "pro")

	for _, in := range []service.SetGoalInput{
		{Calories: 2200, ProteinG: 140, CarbsG: 250, FatG: 70, EffectiveDate: "2026-01-01"},
		{Calories: 2000, ProteinG: 150, CarbsG: 200, FatG: 60, EffectiveDate: "2026-01-01"},
		{Calories: 1800, ProteinG: 160, CarbsG: 150, FatG: 55, EffectiveDate: "2026-02-01"},
	} {
		if err := service.SetGoal(sqldb, in); err != nil {
			t.Fatalf("set goal %+v: %v", in, err)
		}
	}

	goal, err := service.CurrentGoal(sqldb, "2026-01-20")
	if err != nil {
		t.Fatalf("current goal: %v", err)
	}
	if goal == nil || goal.Calories != 2000 || goal.EffectiveDate != "2026-01-01" {
		t.Fatalf("expected replaced January goal, got %+v", goal)
	}
	goal, err = service.CurrentGoal(sqldb, "2026-02-15")
	if err != nil {
		t.Fatalf("current goal: %v", err)
	}
	if goal == nil || goal.Calories != 1800 {
		t.Fatalf("expected February goal, got %+v", goal)
	}
	goal, err = service.CurrentGoal(sqldb, "2025-12-31")
	if err != nil || goal != nil {
		t.Fatalf("expected no goal before first effective date, got %+v, %v", goal, err)
	}

	history, err := service.GoalHistory(sqldb)
	if err != nil {
		t.Fatalf("goal history: %v", err)
	}
	if len(history) != 2 || history[0].EffectiveDate != "2026-02-01" {
		t.Fatalf("unexpected history: %+v", history)
	}

	if err := service.SetGoal(sqldb, service.SetGoalInput{Calories: -1}); err == nil {
		t.Fatalf("expected negative calories error")
	}
	if err := service.SetGoal(sqldb, service.SetGoalInput{Calories: 1, EffectiveDate: "01/02/2026"}); err == nil {
		t.Fatalf("expected bad date error")
	}
	if _, err := service.CurrentGoal(sqldb, "tomorrow"); err == nil {
		t.Fatalf("expected bad date error")
	}
}

func TestDailyGoalProgress(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	day := time.Date(2026, 1, 10, 12, 0, 0, 0, time.Local)

	if _, err := service.DailyGoalProgress(sqldb, day); !errors.Is(err, service.ErrFeatureUnavailable) {
		t.Fatalf("free tier should not read goal progress, got %v", err)
	}

	setTier(t, sqldb, "premium")
	progress, err := service.DailyGoalProgress(sqldb, day)
	if err != nil || progress != nil {
		t.Fatalf("expected nil progress without a goal, got %+v, %v", progress, err)
	}

	if err := service.SetGoal(sqldb, service.SetGoalInput{Calories: 2000, ProteinG: 124, FatG: 72, EffectiveDate: "2026-01-01"}); err != nil {
		t.Fatalf("set goal: %v", err)
	}
	if _, err := service.LogFood(sqldb, service.LogFoodInput{Name: "Chicken Breast", Nutrition: chicken, Amount: 200, Consumed: day}); err != nil {
		t.Fatalf("log food: %v", err)
	}

	progress, err = service.DailyGoalProgress(sqldb, day)
	if err != nil {
		t.Fatalf("goal progress: %v", err)
	}
	if progress == nil || progress.Date != "2026-01-10" {
		t.Fatalf("unexpected progress: %+v", progress)
	}
	if !approx(progress.Remaining.Calories, 1670) || !approx(progress.CaloriesPct, 16.5) {
		t.Fatalf("unexpected calorie progress: %+v", progress)
	}
	if !approx(progress.ProteinPct, 50) || !approx(progress.FatPct, 10) {
		t.Fatalf("unexpected macro progress: %+v", progress)
	}
	if progress.CarbsPct != 0 {
		t.Fatalf("zero carb target should report 0%%, got %v", progress.CarbsPct)
	}
}

func TestAdherenceWithin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		actual, target, tolerance float64
		want                      bool
	}{
		{actual: 100, target: 100, tolerance: 0.1, want: true},
		{actual: 90, target: 100, tolerance: 0.1, want: true},
		{actual: 111, target: 100, tolerance: 0.1, want: false},
		{actual: 0, target: 0, tolerance: 0.1, want: true},
		{actual: 1, target: 0, tolerance: 0.1, want: false},
	}
	for _, tc := range tests {
		if got := service.AdherenceWithin(tc.actual, tc.target, tc.tolerance); got != tc.want {
			t.Fatalf("AdherenceWithin(%v, %v, %v) = %v, want %v", tc.actual, tc.target, tc.tolerance, got, tc.want)
		}
	}
}
