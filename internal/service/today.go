package service

import (
	"database/sql"
	"fmt"
	"time"
)

type DailySummary struct {
	Date      string          `json:"date"`
	Entries   int             `json:"entries"`
	Nutrition ScaledNutrition `json:"nutrition"`
}

// DailyTotals sums the scaled nutrition logged on date's local calendar day.
func DailyTotals(db *sql.DB, date time.Time) (DailySummary, error) {
	day := date.In(time.Local).Format("2006-01-02")
	start, end, err := dayBounds(day)
	if err != nil {
		return DailySummary{}, err
	}

	summary := DailySummary{Date: day}
	err = db.QueryRow(`
SELECT COUNT(1), IFNULL(SUM(calories), 0), IFNULL(SUM(protein_g), 0), IFNULL(SUM(carbs_g), 0), IFNULL(SUM(fat_g), 0)
FROM food_entries
WHERE consumed_at >= ? AND consumed_at < ?
`, start, end).Scan(&summary.Entries, &summary.Nutrition.Calories, &summary.Nutrition.ProteinG, &summary.Nutrition.CarbsG, &summary.Nutrition.FatG)
	if err != nil {
		return DailySummary{}, fmt.Errorf("sum food entries for %s: %w", day, err)
	}
	return summary, nil
}
