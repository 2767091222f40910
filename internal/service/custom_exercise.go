package service

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/saadjs/fittrack-cli/internal/model"
)

type CustomExerciseInput struct {
	Name        string
	MuscleGroup string
	Equipment   string
	Notes       string
}

// CreateCustomExercise adds an exercise to the user's library if the current
// tier allows one more. A blocked add returns *LimitError or *FeatureError.
func CreateCustomExercise(db *sql.DB, in CustomExerciseInput) (model.CustomExercise, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return model.CustomExercise{}, fmt.Errorf("exercise name is required")
	}
	tier, err := CurrentTier(db)
	if err != nil {
		return model.CustomExercise{}, err
	}

	tx, err := db.Begin()
	if err != nil {
		return model.CustomExercise{}, fmt.Errorf("begin custom exercise tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	count, err := countRows(tx, "custom_exercises")
	if err != nil {
		return model.CustomExercise{}, err
	}
	if err := gateAddition(tier, FeatureCustomExercises, count); err != nil {
		return model.CustomExercise{}, err
	}

	item := model.CustomExercise{
		Ref:         uuid.NewString(),
		Name:        in.Name,
		MuscleGroup: normalizeName(in.MuscleGroup),
		Equipment:   normalizeName(in.Equipment),
		Notes:       strings.TrimSpace(in.Notes),
	}
	res, err := tx.Exec(`
INSERT INTO custom_exercises(ref, name, name_norm, muscle_group, equipment, notes)
VALUES(?, ?, ?, ?, ?, ?)
`, item.Ref, item.Name, normalizeName(item.Name), item.MuscleGroup, item.Equipment, item.Notes)
	if err != nil {
		if isUniqueViolation(err) {
			return model.CustomExercise{}, fmt.Errorf("custom exercise %q already exists", item.Name)
		}
		return model.CustomExercise{}, fmt.Errorf("add custom exercise: %w", err)
	}
	if item.ID, err = res.LastInsertId(); err != nil {
		return model.CustomExercise{}, fmt.Errorf("resolve custom exercise id: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.CustomExercise{}, fmt.Errorf("commit custom exercise: %w", err)
	}
	return item, nil
}

func ListCustomExercises(db *sql.DB, muscleGroup string) ([]model.CustomExercise, error) {
	query := `SELECT id, ref, name, muscle_group, equipment, notes, created_at FROM custom_exercises`
	args := make([]any, 0)
	if mg := normalizeName(muscleGroup); mg != "" {
		query += ` WHERE muscle_group = ?`
		args = append(args, mg)
	}
	query += ` ORDER BY name_norm ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list custom exercises: %w", err)
	}
	defer rows.Close()

	items := make([]model.CustomExercise, 0)
	for rows.Next() {
		var item model.CustomExercise
		if err := rows.Scan(&item.ID, &item.Ref, &item.Name, &item.MuscleGroup, &item.Equipment, &item.Notes, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan custom exercise: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate custom exercises: %w", err)
	}
	return items, nil
}

func CountCustomExercises(db *sql.DB) (int, error) {
	return countRows(db, "custom_exercises")
}

// DeleteCustomExercise removes an exercise by numeric id or ref.
func DeleteCustomExercise(db *sql.DB, idOrRef string) error {
	return deleteByIDOrRef(db, "custom_exercises", "custom exercise", idOrRef)
}
