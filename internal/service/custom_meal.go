package service

import (
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/saadjs/fittrack-cli/internal/model"
)

type CustomMealInput struct {
	Name string
	// Per 100 g or 100 ml of the meal.
	Nutrition BaseNutrition
	// Category, DefaultUnit and DefaultAmount are inferred from Name and
	// ServingSize when left empty.
	Category      string
	ServingSize   string
	DefaultUnit   string
	DefaultAmount float64
	Notes         string
}

// CreateCustomMeal saves a meal template if the current tier allows one more.
func CreateCustomMeal(db *sql.DB, in CustomMealInput) (model.CustomMeal, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return model.CustomMeal{}, fmt.Errorf("meal name is required")
	}
	if err := validateBaseNutrition(in.Nutrition); err != nil {
		return model.CustomMeal{}, err
	}
	analysis, err := mealAnalysis(in)
	if err != nil {
		return model.CustomMeal{}, err
	}
	tier, err := CurrentTier(db)
	if err != nil {
		return model.CustomMeal{}, err
	}

	tx, err := db.Begin()
	if err != nil {
		return model.CustomMeal{}, fmt.Errorf("begin custom meal tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	count, err := countRows(tx, "custom_meals")
	if err != nil {
		return model.CustomMeal{}, err
	}
	if err := gateAddition(tier, FeatureCustomMeals, count); err != nil {
		return model.CustomMeal{}, err
	}

	item := model.CustomMeal{
		Ref:           uuid.NewString(),
		Name:          in.Name,
		FoodCategory:  string(analysis.Category),
		DefaultUnit:   analysis.DefaultUnit,
		DefaultAmount: analysis.DefaultAmount,
		Calories:      in.Nutrition.Calories,
		ProteinG:      in.Nutrition.ProteinG,
		CarbsG:        in.Nutrition.CarbsG,
		FatG:          in.Nutrition.FatG,
		Notes:         strings.TrimSpace(in.Notes),
	}
	res, err := tx.Exec(`
INSERT INTO custom_meals(ref, name, name_norm, food_category, default_unit, default_amount, calories, protein_g, carbs_g, fat_g, notes)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, item.Ref, item.Name, normalizeName(item.Name), item.FoodCategory, item.DefaultUnit, item.DefaultAmount, item.Calories, item.ProteinG, item.CarbsG, item.FatG, item.Notes)
	if err != nil {
		if isUniqueViolation(err) {
			return model.CustomMeal{}, fmt.Errorf("custom meal %q already exists", item.Name)
		}
		return model.CustomMeal{}, fmt.Errorf("add custom meal: %w", err)
	}
	if item.ID, err = res.LastInsertId(); err != nil {
		return model.CustomMeal{}, fmt.Errorf("resolve custom meal id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.CustomMeal{}, fmt.Errorf("commit custom meal: %w", err)
	}
	return item, nil
}

func mealAnalysis(in CustomMealInput) (FoodAnalysis, error) {
	analysis := AnalyzeFood(in.Name, nil, in.ServingSize)
	if strings.TrimSpace(in.Category) != "" {
		category, ok := ParseFoodCategory(in.Category)
		if !ok {
			return FoodAnalysis{}, fmt.Errorf("unknown food category %q (expected liquid, solid, countable, or powder)", in.Category)
		}
		if category != analysis.Category {
			analysis = categoryProfiles[category].analysis(category, in.ServingSize)
		}
	}
	if strings.TrimSpace(in.DefaultUnit) != "" {
		unit := NormalizeUnit(in.DefaultUnit)
		if !slices.Contains(analysis.AppropriateUnits, unit) {
			return FoodAnalysis{}, fmt.Errorf("unit %q is not used for %s foods (expected one of %s)", in.DefaultUnit, analysis.Category, strings.Join(analysis.AppropriateUnits, ", "))
		}
		analysis.DefaultUnit = unit
	}
	if in.DefaultAmount < 0 {
		return FoodAnalysis{}, fmt.Errorf("default amount must be > 0")
	}
	if in.DefaultAmount > 0 {
		analysis.DefaultAmount = in.DefaultAmount
	}
	return analysis, nil
}

func ListCustomMeals(db *sql.DB) ([]model.CustomMeal, error) {
	rows, err := db.Query(`
SELECT id, ref, name, food_category, default_unit, default_amount, calories, protein_g, carbs_g, fat_g, notes, created_at
FROM custom_meals
ORDER BY name_norm ASC`)
	if err != nil {
		return nil, fmt.Errorf("list custom meals: %w", err)
	}
	defer rows.Close()

	items := make([]model.CustomMeal, 0)
	for rows.Next() {
		item, err := scanCustomMeal(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate custom meals: %w", err)
	}
	return items, nil
}

// GetCustomMeal looks up a meal by id, ref, or case-insensitive name.
func GetCustomMeal(db *sql.DB, key string) (model.CustomMeal, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return model.CustomMeal{}, fmt.Errorf("meal id, ref, or name is required")
	}
	row := db.QueryRow(`
SELECT id, ref, name, food_category, default_unit, default_amount, calories, protein_g, carbs_g, fat_g, notes, created_at
FROM custom_meals
WHERE CAST(id AS TEXT) = ? OR ref = ? OR name_norm = ?
ORDER BY (CAST(id AS TEXT) = ?) DESC, (ref = ?) DESC
LIMIT 1`, key, key, normalizeName(key), key, key)
	item, err := scanCustomMeal(row)
	if err == sql.ErrNoRows {
		return model.CustomMeal{}, fmt.Errorf("custom meal %q not found", key)
	}
	return item, err
}

func CountCustomMeals(db *sql.DB) (int, error) {
	return countRows(db, "custom_meals")
}

func DeleteCustomMeal(db *sql.DB, idOrRef string) error {
	return deleteByIDOrRef(db, "custom_meals", "custom meal", idOrRef)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomMeal(s rowScanner) (model.CustomMeal, error) {
	var item model.CustomMeal
	err := s.Scan(&item.ID, &item.Ref, &item.Name, &item.FoodCategory, &item.DefaultUnit, &item.DefaultAmount,
		&item.Calories, &item.ProteinG, &item.CarbsG, &item.FatG, &item.Notes, &item.CreatedAt)
	if err == sql.ErrNoRows {
		return model.CustomMeal{}, err
	}
	if err != nil {
		return model.CustomMeal{}, fmt.Errorf("scan custom meal: %w", err)
	}
	return item, nil
}

func mealBaseNutrition(m model.CustomMeal) BaseNutrition {
	return BaseNutrition{Calories: m.Calories, ProteinG: m.ProteinG, CarbsG: m.CarbsG, FatG: m.FatG}
}
