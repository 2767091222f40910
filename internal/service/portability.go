package service

import (
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// exportVersion is bumped when ExportData changes incompatibly.
const exportVersion = 1

type ExportCustomExercise struct {
	Ref         string `json:"ref"`
	Name        string `json:"name"`
	MuscleGroup string `json:"muscle_group,omitempty"`
	Equipment   string `json:"equipment,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

type ExportCustomMeal struct {
	Ref           string        `json:"ref"`
	Name          string        `json:"name"`
	FoodCategory  string        `json:"food_category"`
	DefaultUnit   string        `json:"default_unit"`
	DefaultAmount float64       `json:"default_amount"`
	Nutrition     BaseNutrition `json:"nutrition_per_100"`
	Notes         string        `json:"notes,omitempty"`
}

type ExportFoodEntry struct {
	Name         string          `json:"name"`
	FoodCategory string          `json:"food_category"`
	Amount       float64         `json:"amount"`
	Unit         string          `json:"unit"`
	Servings     float64         `json:"servings"`
	Nutrition    ScaledNutrition `json:"nutrition"`
	Meal         string          `json:"meal,omitempty"`
	ConsumedAt   time.Time       `json:"consumed_at"`
	Notes        string          `json:"notes,omitempty"`
}

type ExportGoal struct {
	EffectiveDate string        `json:"effective_date"`
	Targets       BaseNutrition `json:"targets"`
}

type ExportWorkout struct {
	Exercise    string    `json:"exercise"`
	Sets        int       `json:"sets,omitempty"`
	Reps        int       `json:"reps,omitempty"`
	WeightKg    float64   `json:"weight_kg,omitempty"`
	DurationMin int       `json:"duration_min,omitempty"`
	PerformedAt time.Time `json:"performed_at"`
	Notes       string    `json:"notes,omitempty"`
}

type ExportData struct {
	Version         int                    `json:"version"`
	ExportedAt      time.Time              `json:"exported_at"`
	CustomExercises []ExportCustomExercise `json:"custom_exercises"`
	CustomMeals     []ExportCustomMeal     `json:"custom_meals"`
	FoodEntries     []ExportFoodEntry      `json:"food_entries"`
	Goals           []ExportGoal           `json:"goals"`
	Workouts        []ExportWorkout        `json:"workouts"`
}

type ImportMode string

const (
	ImportModeFail    ImportMode = "fail"
	ImportModeSkip    ImportMode = "skip"
	ImportModeReplace ImportMode = "replace"
)

func ParseImportMode(value string) (ImportMode, error) {
	switch m := ImportMode(strings.ToLower(strings.TrimSpace(value))); m {
	case "":
		return ImportModeSkip, nil
	case ImportModeFail, ImportModeSkip, ImportModeReplace:
		return m, nil
	default:
		return "", fmt.Errorf("invalid import mode %q (use fail, skip, or replace)", value)
	}
}

type ImportOptions struct {
	Mode   ImportMode
	DryRun bool
}

// ImportReport counts what an import did. Blocked items were refused by the
// current plan and are listed in Warnings.
type ImportReport struct {
	Inserted  int      `json:"inserted"`
	Skipped   int      `json:"skipped"`
	Conflicts int      `json:"conflicts"`
	Blocked   int      `json:"blocked"`
	Warnings  []string `json:"warnings,omitempty"`
}

// ExportDataSnapshot collects every user record. Requires dataExport.
func ExportDataSnapshot(db *sql.DB) (*ExportData, error) {
	if err := requireCurrentFeature(db, FeatureDataExport); err != nil {
		return nil, err
	}
	out := &ExportData{Version: exportVersion, ExportedAt: time.Now().UTC()}

	exercises, err := ListCustomExercises(db, "")
	if err != nil {
		return nil, err
	}
	out.CustomExercises = make([]ExportCustomExercise, 0, len(exercises))
	for _, e := range exercises {
		out.CustomExercises = append(out.CustomExercises, ExportCustomExercise{
			Ref: e.Ref, Name: e.Name, MuscleGroup: e.MuscleGroup, Equipment: e.Equipment, Notes: e.Notes,
		})
	}

	meals, err := ListCustomMeals(db)
	if err != nil {
		return nil, err
	}
	mealNames := make(map[int64]string, len(meals))
	out.CustomMeals = make([]ExportCustomMeal, 0, len(meals))
	for _, m := range meals {
		mealNames[m.ID] = m.Name
		out.CustomMeals = append(out.CustomMeals, ExportCustomMeal{
			Ref: m.Ref, Name: m.Name, FoodCategory: m.FoodCategory, DefaultUnit: m.DefaultUnit,
			DefaultAmount: m.DefaultAmount, Nutrition: mealBaseNutrition(m), Notes: m.Notes,
		})
	}

	if out.FoodEntries, err = exportFoodEntries(db, mealNames); err != nil {
		return nil, err
	}

	goals, err := GoalHistory(db)
	if err != nil {
		return nil, err
	}
	out.Goals = make([]ExportGoal, 0, len(goals))
	for i := len(goals) - 1; i >= 0; i-- {
		g := goals[i]
		out.Goals = append(out.Goals, ExportGoal{
			EffectiveDate: g.EffectiveDate,
			Targets:       BaseNutrition{Calories: g.Calories, ProteinG: g.ProteinG, CarbsG: g.CarbsG, FatG: g.FatG},
		})
	}

	if out.Workouts, err = exportWorkouts(db); err != nil {
		return nil, err
	}
	return out, nil
}

func exportFoodEntries(db *sql.DB, mealNames map[int64]string) ([]ExportFoodEntry, error) {
	rows, err := db.Query(`
SELECT name, food_category, amount, unit, servings, calories, protein_g, carbs_g, fat_g, custom_meal_id, consumed_at, notes
FROM food_entries
ORDER BY consumed_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("export food entries: %w", err)
	}
	defer rows.Close()

	items := make([]ExportFoodEntry, 0)
	for rows.Next() {
		var e ExportFoodEntry
		var mealID sql.NullInt64
		var consumedAtRaw string
		if err := rows.Scan(&e.Name, &e.FoodCategory, &e.Amount, &e.Unit, &e.Servings,
			&e.Nutrition.Calories, &e.Nutrition.ProteinG, &e.Nutrition.CarbsG, &e.Nutrition.FatG,
			&mealID, &consumedAtRaw, &e.Notes); err != nil {
			return nil, fmt.Errorf("scan exported food entry: %w", err)
		}
		if e.ConsumedAt, err = time.Parse(time.RFC3339, consumedAtRaw); err != nil {
			return nil, fmt.Errorf("parse consumed_at %q: %w", consumedAtRaw, err)
		}
		if mealID.Valid {
			e.Meal = mealNames[mealID.Int64]
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exported food entries: %w", err)
	}
	return items, nil
}

func exportWorkouts(db *sql.DB) ([]ExportWorkout, error) {
	rows, err := db.Query(`
SELECT exercise_name, sets, reps, weight_kg, duration_min, performed_at, notes
FROM workout_logs
ORDER BY performed_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("export workouts: %w", err)
	}
	defer rows.Close()

	items := make([]ExportWorkout, 0)
	for rows.Next() {
		var w ExportWorkout
		var performedAtRaw string
		if err := rows.Scan(&w.Exercise, &w.Sets, &w.Reps, &w.WeightKg, &w.DurationMin, &performedAtRaw, &w.Notes); err != nil {
			return nil, fmt.Errorf("scan exported workout: %w", err)
		}
		if w.PerformedAt, err = time.Parse(time.RFC3339, performedAtRaw); err != nil {
			return nil, fmt.Errorf("parse performed_at %q: %w", performedAtRaw, err)
		}
		items = append(items, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exported workouts: %w", err)
	}
	return items, nil
}

// ImportDataSnapshot loads an export into db in one transaction. Custom
// exercises and meals pass through the usage gate; items over the current
// plan's limit are skipped and reported, never inserted. DryRun rolls back.
func ImportDataSnapshot(db *sql.DB, data *ExportData, opts ImportOptions) (ImportReport, error) {
	report := ImportReport{}
	if data == nil {
		return report, fmt.Errorf("import data is empty")
	}
	if data.Version > exportVersion {
		return report, fmt.Errorf("unsupported export version %d (max %d)", data.Version, exportVersion)
	}
	mode := opts.Mode
	if mode == "" {
		mode = ImportModeSkip
	}
	tier, err := CurrentTier(db)
	if err != nil {
		return report, err
	}

	tx, err := db.Begin()
	if err != nil {
		return report, fmt.Errorf("begin import tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if mode == ImportModeReplace {
		if err := clearUserData(tx); err != nil {
			return report, err
		}
	}

	conflict := func(kind, key string) error {
		report.Conflicts++
		if mode == ImportModeFail {
			return fmt.Errorf("%s %q already exists", kind, key)
		}
		report.Skipped++
		return nil
	}
	blocked := func(err error) error {
		var limitErr *LimitError
		if !errors.As(err, &limitErr) && !errors.Is(err, ErrFeatureUnavailable) {
			return err
		}
		report.Blocked++
		report.Warnings = append(report.Warnings, err.Error())
		return nil
	}

	for _, e := range data.CustomExercises {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			continue
		}
		if exists, err := rowExists(tx, `SELECT 1 FROM custom_exercises WHERE name_norm = ?`, normalizeName(name)); err != nil {
			return report, err
		} else if exists {
			if err := conflict("custom exercise", name); err != nil {
				return report, err
			}
			continue
		}
		n, err := countRows(tx, "custom_exercises")
		if err != nil {
			return report, err
		}
		if err := gateAddition(tier, FeatureCustomExercises, n); err != nil {
			if err := blocked(err); err != nil {
				return report, err
			}
			continue
		}
		if _, err := tx.Exec(`
INSERT INTO custom_exercises(ref, name, name_norm, muscle_group, equipment, notes)
VALUES(?, ?, ?, ?, ?, ?)`, importRef(tx, "custom_exercises", e.Ref), name, normalizeName(name),
			normalizeName(e.MuscleGroup), normalizeName(e.Equipment), strings.TrimSpace(e.Notes)); err != nil {
			return report, fmt.Errorf("import custom exercise %q: %w", name, err)
		}
		report.Inserted++
	}

	for _, m := range data.CustomMeals {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			continue
		}
		category, ok := ParseFoodCategory(m.FoodCategory)
		if !ok {
			return report, fmt.Errorf("import custom meal %q: unknown food category %q", name, m.FoodCategory)
		}
		if err := validateBaseNutrition(m.Nutrition); err != nil {
			return report, fmt.Errorf("import custom meal %q: %w", name, err)
		}
		if exists, err := rowExists(tx, `SELECT 1 FROM custom_meals WHERE name_norm = ?`, normalizeName(name)); err != nil {
			return report, err
		} else if exists {
			if err := conflict("custom meal", name); err != nil {
				return report, err
			}
			continue
		}
		n, err := countRows(tx, "custom_meals")
		if err != nil {
			return report, err
		}
		if err := gateAddition(tier, FeatureCustomMeals, n); err != nil {
			if err := blocked(err); err != nil {
				return report, err
			}
			continue
		}
		unit := NormalizeUnit(m.DefaultUnit)
		if !slices.Contains(UnitsForCategory(category), unit) {
			fallback := categoryProfiles[category].defaultUnit
			if unit != "" {
				report.Warnings = append(report.Warnings,
					fmt.Sprintf("custom meal %q: unit %q is not used for %s foods; using %s", name, m.DefaultUnit, category, fallback))
			}
			unit = fallback
		}
		amount := m.DefaultAmount
		if amount <= 0 {
			amount = categoryProfiles[category].fallbackAmount
		}
		if _, err := tx.Exec(`
INSERT INTO custom_meals(ref, name, name_norm, food_category, default_unit, default_amount, calories, protein_g, carbs_g, fat_g, notes)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, importRef(tx, "custom_meals", m.Ref), name, normalizeName(name), string(category),
			unit, amount, m.Nutrition.Calories, m.Nutrition.ProteinG, m.Nutrition.CarbsG, m.Nutrition.FatG, strings.TrimSpace(m.Notes)); err != nil {
			return report, fmt.Errorf("import custom meal %q: %w", name, err)
		}
		report.Inserted++
	}

	for _, e := range data.FoodEntries {
		if err := validateImportedEntry(e); err != nil {
			return report, fmt.Errorf("import food entry %q: %w", e.Name, err)
		}
		consumedAt := e.ConsumedAt.In(time.Local).Format(time.RFC3339)
		if exists, err := rowExists(tx, `SELECT 1 FROM food_entries WHERE name = ? AND consumed_at = ?`, e.Name, consumedAt); err != nil {
			return report, err
		} else if exists {
			if err := conflict("food entry", e.Name+" at "+consumedAt); err != nil {
				return report, err
			}
			continue
		}
		var mealID sql.NullInt64
		if strings.TrimSpace(e.Meal) != "" {
			err := tx.QueryRow(`SELECT id FROM custom_meals WHERE name_norm = ?`, normalizeName(e.Meal)).Scan(&mealID)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return report, fmt.Errorf("resolve meal %q: %w", e.Meal, err)
			}
		}
		if _, err := tx.Exec(`
INSERT INTO food_entries(name, food_category, amount, unit, servings, calories, protein_g, carbs_g, fat_g, custom_meal_id, consumed_at, notes)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, e.Name, e.FoodCategory, e.Amount, e.Unit, e.Servings,
			e.Nutrition.Calories, e.Nutrition.ProteinG, e.Nutrition.CarbsG, e.Nutrition.FatG, mealID, consumedAt, e.Notes); err != nil {
			return report, fmt.Errorf("import food entry %q: %w", e.Name, err)
		}
		report.Inserted++
	}

	for _, g := range data.Goals {
		if !HasFeature(tier, FeatureMacroGoals) {
			if err := blocked(RequireFeature(tier, FeatureMacroGoals)); err != nil {
				return report, err
			}
			continue
		}
		if err := validateImportedGoal(g); err != nil {
			return report, fmt.Errorf("import goal %q: %w", g.EffectiveDate, err)
		}
		if exists, err := rowExists(tx, `SELECT 1 FROM goals WHERE effective_date = ?`, g.EffectiveDate); err != nil {
			return report, err
		} else if exists {
			if err := conflict("goal", g.EffectiveDate); err != nil {
				return report, err
			}
			continue
		}
		if _, err := tx.Exec(`INSERT INTO goals(calories, protein_g, carbs_g, fat_g, effective_date) VALUES(?, ?, ?, ?, ?)`,
			g.Targets.Calories, g.Targets.ProteinG, g.Targets.CarbsG, g.Targets.FatG, g.EffectiveDate); err != nil {
			return report, fmt.Errorf("import goal %q: %w", g.EffectiveDate, err)
		}
		report.Inserted++
	}

	for _, w := range data.Workouts {
		if _, err := normalizeWorkoutInput(WorkoutInput{
			Exercise: w.Exercise, Sets: w.Sets, Reps: w.Reps, WeightKg: w.WeightKg,
			DurationMin: w.DurationMin, PerformedAt: w.PerformedAt,
		}); err != nil {
			return report, fmt.Errorf("import workout %q: %w", w.Exercise, err)
		}
		performedAt := w.PerformedAt.In(time.Local).Format(time.RFC3339)
		if exists, err := rowExists(tx, `SELECT 1 FROM workout_logs WHERE exercise_name = ? AND performed_at = ?`, w.Exercise, performedAt); err != nil {
			return report, err
		} else if exists {
			if err := conflict("workout", w.Exercise+" at "+performedAt); err != nil {
				return report, err
			}
			continue
		}
		var exerciseID sql.NullInt64
		err := tx.QueryRow(`SELECT id FROM custom_exercises WHERE name_norm = ?`, normalizeName(w.Exercise)).Scan(&exerciseID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return report, fmt.Errorf("resolve exercise %q: %w", w.Exercise, err)
		}
		if _, err := tx.Exec(`
INSERT INTO workout_logs(exercise_name, custom_exercise_id, sets, reps, weight_kg, duration_min, performed_at, notes)
VALUES(?, ?, ?, ?, ?, ?, ?, ?)`, w.Exercise, exerciseID, w.Sets, w.Reps, w.WeightKg, w.DurationMin, performedAt, w.Notes); err != nil {
			return report, fmt.Errorf("import workout %q: %w", w.Exercise, err)
		}
		report.Inserted++
	}

	if opts.DryRun {
		return report, nil
	}
	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("commit import: %w", err)
	}
	return report, nil
}

func validateImportedEntry(e ExportFoodEntry) error {
	if strings.TrimSpace(e.Name) == "" {
		return fmt.Errorf("food name is required")
	}
	if _, ok := ParseFoodCategory(e.FoodCategory); !ok {
		return fmt.Errorf("unknown food category %q", e.FoodCategory)
	}
	if e.Amount < 0 {
		return fmt.Errorf("amount must be >= 0")
	}
	if e.Servings < 0 {
		return fmt.Errorf("servings must be >= 0")
	}
	if e.ConsumedAt.IsZero() {
		return fmt.Errorf("consumed_at is required")
	}
	return validateBaseNutrition(BaseNutrition(e.Nutrition))
}

func validateImportedGoal(g ExportGoal) error {
	if _, err := time.Parse("2006-01-02", g.EffectiveDate); err != nil {
		return fmt.Errorf("invalid effective date %q (expected YYYY-MM-DD)", g.EffectiveDate)
	}
	return validateBaseNutrition(g.Targets)
}

func rowExists(tx *sql.Tx, query string, args ...any) (bool, error) {
	var one int
	err := tx.QueryRow(query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check existing row: %w", err)
	}
	return true, nil
}

// importRef keeps the exported ref unless it is missing or already taken.
func importRef(tx *sql.Tx, table, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return uuid.NewString()
	}
	if taken, err := rowExists(tx, `SELECT 1 FROM `+table+` WHERE ref = ?`, ref); err != nil || taken {
		return uuid.NewString()
	}
	return ref
}

func clearUserData(tx *sql.Tx) error {
	for _, table := range []string{"workout_logs", "food_entries", "goals", "custom_meals", "custom_exercises"} {
		if _, err := tx.Exec(`DELETE FROM ` + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
