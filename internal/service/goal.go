package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/fittrack-cli/internal/model"
)

type SetGoalInput struct {
	Calories      float64
	ProteinG      float64
	CarbsG        float64
	FatG          float64
	EffectiveDate string
}

// SetGoal stores daily macro targets from EffectiveDate onward. A second goal
// on the same date replaces the first. Requires macroGoals.
func SetGoal(db *sql.DB, in SetGoalInput) error {
	tier, err := CurrentTier(db)
	if err != nil {
		return err
	}
	if err := RequireFeature(tier, FeatureMacroGoals); err != nil {
		return err
	}
	if err := validateBaseNutrition(BaseNutrition{Calories: in.Calories, ProteinG: in.ProteinG, CarbsG: in.CarbsG, FatG: in.FatG}); err != nil {
		return err
	}
	in.EffectiveDate = strings.TrimSpace(in.EffectiveDate)
	if in.EffectiveDate == "" {
		in.EffectiveDate = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", in.EffectiveDate); err != nil {
		return fmt.Errorf("invalid effective date %q (expected YYYY-MM-DD)", in.EffectiveDate)
	}

	_, err = db.Exec(`
INSERT INTO goals(calories, protein_g, carbs_g, fat_g, effective_date)
VALUES(?, ?, ?, ?, ?)
ON CONFLICT(effective_date) DO UPDATE SET
  calories=excluded.calories,
  protein_g=excluded.protein_g,
  carbs_g=excluded.carbs_g,
  fat_g=excluded.fat_g
`, in.Calories, in.ProteinG, in.CarbsG, in.FatG, in.EffectiveDate)
	if err != nil {
		return fmt.Errorf("set goal: %w", err)
	}
	return nil
}

// CurrentGoal returns the goal in effect on date, or nil when none was set.
func CurrentGoal(db *sql.DB, date string) (*model.Goal, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", date)
	}

	var g model.Goal
	err := db.QueryRow(`
SELECT id, calories, protein_g, carbs_g, fat_g, effective_date, created_at
FROM goals
WHERE effective_date <= ?
ORDER BY effective_date DESC
LIMIT 1
`, date).Scan(&g.ID, &g.Calories, &g.ProteinG, &g.CarbsG, &g.FatG, &g.EffectiveDate, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("current goal for %s: %w", date, err)
	}
	return &g, nil
}

func GoalHistory(db *sql.DB) ([]model.Goal, error) {
	rows, err := db.Query(`
SELECT id, calories, protein_g, carbs_g, fat_g, effective_date, created_at
FROM goals
ORDER BY effective_date DESC
`)
	if err != nil {
		return nil, fmt.Errorf("list goal history: %w", err)
	}
	defer rows.Close()

	goals := make([]model.Goal, 0)
	for rows.Next() {
		var g model.Goal
		if err := rows.Scan(&g.ID, &g.Calories, &g.ProteinG, &g.CarbsG, &g.FatG, &g.EffectiveDate, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan goal history: %w", err)
		}
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate goal history: %w", err)
	}
	return goals, nil
}

// GoalProgress compares one day's intake against its goal.
type GoalProgress struct {
	Date      string          `json:"date"`
	Goal      BaseNutrition   `json:"goal"`
	Intake    ScaledNutrition `json:"intake"`
	Remaining ScaledNutrition `json:"remaining"`
	// Percent of each target eaten so far; 0 for a zero target.
	CaloriesPct float64 `json:"calories_pct"`
	ProteinPct  float64 `json:"protein_pct"`
	CarbsPct    float64 `json:"carbs_pct"`
	FatPct      float64 `json:"fat_pct"`
}

// DailyGoalProgress returns progress toward the goal in effect on date, or nil
// when no goal applies. Reading progress requires macroGoals like setting it.
func DailyGoalProgress(db *sql.DB, date time.Time) (*GoalProgress, error) {
	tier, err := CurrentTier(db)
	if err != nil {
		return nil, err
	}
	if err := RequireFeature(tier, FeatureMacroGoals); err != nil {
		return nil, err
	}
	summary, err := DailyTotals(db, date)
	if err != nil {
		return nil, err
	}
	goal, err := CurrentGoal(db, summary.Date)
	if err != nil || goal == nil {
		return nil, err
	}
	target := BaseNutrition{Calories: goal.Calories, ProteinG: goal.ProteinG, CarbsG: goal.CarbsG, FatG: goal.FatG}
	in := summary.Nutrition
	return &GoalProgress{
		Date:   summary.Date,
		Goal:   target,
		Intake: in,
		Remaining: ScaledNutrition{
			Calories: target.Calories - in.Calories,
			ProteinG: target.ProteinG - in.ProteinG,
			CarbsG:   target.CarbsG - in.CarbsG,
			FatG:     target.FatG - in.FatG,
		},
		CaloriesPct: percentOf(in.Calories, target.Calories),
		ProteinPct:  percentOf(in.ProteinG, target.ProteinG),
		CarbsPct:    percentOf(in.CarbsG, target.CarbsG),
		FatPct:      percentOf(in.FatG, target.FatG),
	}, nil
}

func percentOf(actual, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return actual / target * 100
}

// AdherenceWithin reports whether actual lies within tolerance (a fraction)
// of target.
func AdherenceWithin(actual float64, target float64, tolerance float64) bool {
	if target == 0 {
		return actual == 0
	}
	lower := target * (1 - tolerance)
	upper := target * (1 + tolerance)
	return actual >= lower && actual <= upper
}
