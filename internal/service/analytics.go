package service

import (
	"database/sql"
	"fmt"
	"sort"
	"time"
)

// DefaultAdherenceTolerance is the macro band a day must land in to count as
// within goal.
const DefaultAdherenceTolerance = 0.10

// DayReport is one logged day. WithinGoal is nil when no goal applied.
type DayReport struct {
	DailySummary
	WithinGoal *bool `json:"within_goal,omitempty"`
}

type CategoryShare struct {
	Category    FoodCategory    `json:"category"`
	Entries     int             `json:"entries"`
	Nutrition   ScaledNutrition `json:"nutrition"`
	CaloriesPct float64         `json:"calories_pct"`
}

type AdherenceSummary struct {
	EvaluatedDays   int     `json:"evaluated_days"`
	WithinGoalDays  int     `json:"within_goal_days"`
	PercentWithin   float64 `json:"percent_within_goal"`
	SkippedGoalDays int     `json:"days_without_goal"`
}

type AnalyticsReport struct {
	FromDate       string           `json:"from_date"`
	ToDate         string           `json:"to_date"`
	Total          ScaledNutrition  `json:"total"`
	LoggedDays     int              `json:"logged_days"`
	DailyAverage   ScaledNutrition  `json:"daily_average"`
	Highest        *DayReport       `json:"highest_day,omitempty"`
	Lowest         *DayReport       `json:"lowest_day,omitempty"`
	Adherence      AdherenceSummary `json:"adherence"`
	Workouts       int              `json:"workouts"`
	WorkoutMinutes int              `json:"workout_minutes"`
	ByCategory     []CategoryShare  `json:"by_food_category"`
	Days           []DayReport      `json:"days"`
}

// AnalyticsRange summarizes intake between from and to inclusive. Requires
// advancedAnalytics.
func AnalyticsRange(db *sql.DB, from, to time.Time, tolerance float64) (*AnalyticsReport, error) {
	if err := requireCurrentFeature(db, FeatureAdvancedAnalytics); err != nil {
		return nil, err
	}
	return buildReport(db, from, to, tolerance)
}

// WeeklyReport summarizes the seven days ending on end. Requires weeklyReports.
func WeeklyReport(db *sql.DB, end time.Time) (*AnalyticsReport, error) {
	if err := requireCurrentFeature(db, FeatureWeeklyReports); err != nil {
		return nil, err
	}
	end = beginningOfDay(end)
	return buildReport(db, end.AddDate(0, 0, -6), end, DefaultAdherenceTolerance)
}

func buildReport(db *sql.DB, from, to time.Time, tolerance float64) (*AnalyticsReport, error) {
	from, to = beginningOfDay(from), beginningOfDay(to)
	if from.After(to) {
		return nil, fmt.Errorf("from date must be <= to date")
	}
	if tolerance < 0 {
		return nil, fmt.Errorf("tolerance must be >= 0")
	}
	start := from.Format(time.RFC3339)
	end := to.AddDate(0, 0, 1).Format(time.RFC3339)

	r := &AnalyticsReport{
		FromDate:   from.Format("2006-01-02"),
		ToDate:     to.Format("2006-01-02"),
		ByCategory: make([]CategoryShare, 0),
		Days:       make([]DayReport, 0),
	}
	if err := r.loadEntries(db, start, end); err != nil {
		return nil, err
	}
	if err := r.scoreAdherence(db, tolerance); err != nil {
		return nil, err
	}
	err := db.QueryRow(`SELECT COUNT(1), IFNULL(SUM(duration_min), 0) FROM workout_logs WHERE performed_at >= ? AND performed_at < ?`,
		start, end).Scan(&r.Workouts, &r.WorkoutMinutes)
	if err != nil {
		return nil, fmt.Errorf("count workouts: %w", err)
	}
	return r, nil
}

// loadEntries folds every entry in [start, end) into days, categories and
// totals in one pass.
func (r *AnalyticsReport) loadEntries(db *sql.DB, start, end string) error {
	rows, err := db.Query(`
SELECT substr(consumed_at, 1, 10), food_category, calories, protein_g, carbs_g, fat_g
FROM food_entries
WHERE consumed_at >= ? AND consumed_at < ?
ORDER BY consumed_at ASC
`, start, end)
	if err != nil {
		return fmt.Errorf("query report entries: %w", err)
	}
	defer rows.Close()

	categoryIdx := map[FoodCategory]int{}
	for rows.Next() {
		var day, category string
		var n ScaledNutrition
		if err := rows.Scan(&day, &category, &n.Calories, &n.ProteinG, &n.CarbsG, &n.FatG); err != nil {
			return fmt.Errorf("scan report entry: %w", err)
		}
		if last := len(r.Days) - 1; last < 0 || r.Days[last].Date != day {
			r.Days = append(r.Days, DayReport{DailySummary: DailySummary{Date: day}})
		}
		d := &r.Days[len(r.Days)-1]
		d.Entries++
		d.Nutrition = d.Nutrition.Add(n)

		c := FoodCategory(category)
		i, ok := categoryIdx[c]
		if !ok {
			i = len(r.ByCategory)
			categoryIdx[c] = i
			r.ByCategory = append(r.ByCategory, CategoryShare{Category: c})
		}
		r.ByCategory[i].Entries++
		r.ByCategory[i].Nutrition = r.ByCategory[i].Nutrition.Add(n)
		r.Total = r.Total.Add(n)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate report entries: %w", err)
	}

	r.LoggedDays = len(r.Days)
	if r.LoggedDays > 0 {
		div := float64(r.LoggedDays)
		r.DailyAverage = ScaledNutrition{
			Calories: r.Total.Calories / div,
			ProteinG: r.Total.ProteinG / div,
			CarbsG:   r.Total.CarbsG / div,
			FatG:     r.Total.FatG / div,
		}
		hi, lo := 0, 0
		for i, d := range r.Days {
			if d.Nutrition.Calories > r.Days[hi].Nutrition.Calories {
				hi = i
			}
			if d.Nutrition.Calories < r.Days[lo].Nutrition.Calories {
				lo = i
			}
		}
		r.Highest, r.Lowest = &r.Days[hi], &r.Days[lo]
	}

	for i := range r.ByCategory {
		r.ByCategory[i].CaloriesPct = percentOf(r.ByCategory[i].Nutrition.Calories, r.Total.Calories)
	}
	sort.SliceStable(r.ByCategory, func(i, j int) bool {
		a, b := r.ByCategory[i], r.ByCategory[j]
		if a.Nutrition.Calories != b.Nutrition.Calories {
			return a.Nutrition.Calories > b.Nutrition.Calories
		}
		return a.Category < b.Category
	})
	return nil
}

// A day is within goal when calories stay at or under target and each macro
// lands inside the tolerance band.
func (r *AnalyticsReport) scoreAdherence(db *sql.DB, tolerance float64) error {
	a := &r.Adherence
	for i := range r.Days {
		d := &r.Days[i]
		goal, err := CurrentGoal(db, d.Date)
		if err != nil {
			return err
		}
		if goal == nil {
			a.SkippedGoalDays++
			continue
		}
		a.EvaluatedDays++
		ok := d.Nutrition.Calories <= goal.Calories &&
			AdherenceWithin(d.Nutrition.ProteinG, goal.ProteinG, tolerance) &&
			AdherenceWithin(d.Nutrition.CarbsG, goal.CarbsG, tolerance) &&
			AdherenceWithin(d.Nutrition.FatG, goal.FatG, tolerance)
		d.WithinGoal = &ok
		if ok {
			a.WithinGoalDays++
		}
	}
	a.PercentWithin = percentOf(float64(a.WithinGoalDays), float64(a.EvaluatedDays))
	return nil
}

func beginningOfDay(t time.Time) time.Time {
	y, m, d := t.In(time.Local).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}
