package service

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/fittrack-cli/internal/model"
)

type LogFoodInput struct {
	Name string
	// Meal names a saved custom meal (id, ref, or name) whose nutrition and
	// defaults are used instead of Nutrition.
	Meal        string
	Nutrition   BaseNutrition
	Category    string
	ServingSize string
	Amount      float64
	Unit        string
	// Servings is nil when not given; an explicit value must be > 0.
	Servings    *float64
	Consumed    time.Time
	Notes       string
}

type ListFoodEntriesFilter struct {
	Date     string
	FromDate string
	ToDate   string
	Limit    int
}

// LogFood scales the food's base nutrition to the eaten quantity and stores
// the result. Amount and Unit default to the food's inferred measurement and
// Servings defaults to 1.
func LogFood(db *sql.DB, in LogFoodInput) (model.FoodEntry, error) {
	tier, err := CurrentTier(db)
	if err != nil {
		return model.FoodEntry{}, err
	}
	if err := RequireFeature(tier, FeatureNutritionLogging); err != nil {
		return model.FoodEntry{}, err
	}
	if in.Amount < 0 {
		return model.FoodEntry{}, fmt.Errorf("amount must be >= 0")
	}
	servings := 1.0
	if in.Servings != nil {
		if *in.Servings <= 0 {
			return model.FoodEntry{}, fmt.Errorf("servings must be > 0")
		}
		servings = *in.Servings
	}

	entry := model.FoodEntry{
		Name:       strings.TrimSpace(in.Name),
		Amount:     in.Amount,
		Unit:       NormalizeUnit(in.Unit),
		Servings:   servings,
		ConsumedAt: in.Consumed,
		Notes:      strings.TrimSpace(in.Notes),
	}
	base := in.Nutrition

	if strings.TrimSpace(in.Meal) != "" {
		meal, err := GetCustomMeal(db, in.Meal)
		if err != nil {
			return model.FoodEntry{}, err
		}
		if entry.Name == "" {
			entry.Name = meal.Name
		}
		base = mealBaseNutrition(meal)
		entry.FoodCategory = meal.FoodCategory
		entry.CustomMealID = &meal.ID
		if entry.Unit == "" {
			entry.Unit = meal.DefaultUnit
		}
		if entry.Amount == 0 {
			entry.Amount = meal.DefaultAmount
		}
	} else {
		if entry.Name == "" {
			return model.FoodEntry{}, fmt.Errorf("food name is required")
		}
		if err := validateBaseNutrition(base); err != nil {
			return model.FoodEntry{}, err
		}
		analysis, err := mealAnalysis(CustomMealInput{Name: entry.Name, Category: in.Category, ServingSize: in.ServingSize})
		if err != nil {
			return model.FoodEntry{}, err
		}
		entry.FoodCategory = string(analysis.Category)
		if entry.Unit == "" {
			entry.Unit = analysis.DefaultUnit
		}
		if entry.Amount == 0 {
			entry.Amount = analysis.DefaultAmount
		}
	}
	if entry.ConsumedAt.IsZero() {
		entry.ConsumedAt = time.Now()
	}

	scaled := ScaleNutrition(ScaleInput{
		Base:     base,
		Amount:   entry.Amount,
		Unit:     entry.Unit,
		Servings: entry.Servings,
		IsLiquid: entry.FoodCategory == string(FoodLiquid),
	})
	entry.Calories = scaled.Calories
	entry.ProteinG = scaled.ProteinG
	entry.CarbsG = scaled.CarbsG
	entry.FatG = scaled.FatG

	res, err := db.Exec(`
INSERT INTO food_entries(name, food_category, amount, unit, servings, calories, protein_g, carbs_g, fat_g, custom_meal_id, consumed_at, notes)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, entry.Name, entry.FoodCategory, entry.Amount, entry.Unit, entry.Servings, entry.Calories, entry.ProteinG, entry.CarbsG, entry.FatG, entry.CustomMealID, entry.ConsumedAt.Format(time.RFC3339), entry.Notes)
	if err != nil {
		return model.FoodEntry{}, fmt.Errorf("insert food entry: %w", err)
	}
	if entry.ID, err = res.LastInsertId(); err != nil {
		return model.FoodEntry{}, fmt.Errorf("resolve inserted food entry id: %w", err)
	}
	return entry, nil
}

func ListFoodEntries(db *sql.DB, f ListFoodEntriesFilter) ([]model.FoodEntry, error) {
	if strings.TrimSpace(f.Date) != "" && (strings.TrimSpace(f.FromDate) != "" || strings.TrimSpace(f.ToDate) != "") {
		return nil, fmt.Errorf("--date cannot be combined with --from or --to")
	}

	query := `
SELECT id, name, food_category, amount, unit, servings, calories, protein_g, carbs_g, fat_g, custom_meal_id, consumed_at, notes, created_at
FROM food_entries
WHERE 1=1`
	args := make([]any, 0)

	if strings.TrimSpace(f.Date) != "" {
		start, end, err := dayBounds(f.Date)
		if err != nil {
			return nil, err
		}
		query += ` AND consumed_at >= ? AND consumed_at < ?`
		args = append(args, start, end)
	}
	if strings.TrimSpace(f.FromDate) != "" {
		from, err := parseDateStart(f.FromDate)
		if err != nil {
			return nil, err
		}
		query += ` AND consumed_at >= ?`
		args = append(args, from)
	}
	if strings.TrimSpace(f.ToDate) != "" {
		to, err := parseDateEndExclusive(f.ToDate)
		if err != nil {
			return nil, err
		}
		query += ` AND consumed_at < ?`
		args = append(args, to)
	}
	query += ` ORDER BY consumed_at DESC`

	if f.Limit <= 0 {
		f.Limit = 50
	}
	query += ` LIMIT ?`
	args = append(args, f.Limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list food entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.FoodEntry, 0)
	for rows.Next() {
		var e model.FoodEntry
		var consumedAtRaw string
		var mealID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.Name, &e.FoodCategory, &e.Amount, &e.Unit, &e.Servings, &e.Calories, &e.ProteinG, &e.CarbsG, &e.FatG, &mealID, &consumedAtRaw, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan food entry: %w", err)
		}
		consumedAt, err := time.Parse(time.RFC3339, consumedAtRaw)
		if err != nil {
			return nil, fmt.Errorf("parse consumed_at for food entry %d: %w", e.ID, err)
		}
		e.ConsumedAt = consumedAt
		if mealID.Valid {
			v := mealID.Int64
			e.CustomMealID = &v
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate food entries: %w", err)
	}
	return entries, nil
}

func DeleteFoodEntry(db *sql.DB, id int64) error {
	if id <= 0 {
		return fmt.Errorf("food entry id must be > 0")
	}
	res, err := db.Exec(`DELETE FROM food_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete food entry %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected for food entry %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("food entry %d not found", id)
	}
	return nil
}

func dayBounds(date string) (string, string, error) {
	start, err := parseDateStart(date)
	if err != nil {
		return "", "", err
	}
	end, err := parseDateEndExclusive(date)
	if err != nil {
		return "", "", err
	}
	return start, end, nil
}

func parseDateStart(value string) (string, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(value), time.Local)
	if err != nil {
		return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t.Format(time.RFC3339), nil
}

func parseDateEndExclusive(value string) (string, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(value), time.Local)
	if err != nil {
		return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return t.AddDate(0, 0, 1).Format(time.RFC3339), nil
}
