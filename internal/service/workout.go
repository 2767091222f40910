package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/fittrack-cli/internal/model"
)

type WorkoutInput struct {
	// Exercise is a custom exercise id, ref, or name, or any free-text name.
	Exercise    string
	Sets        int
	Reps        int
	WeightKg    float64
	DurationMin int
	PerformedAt time.Time
	Notes       string
}

type ListWorkoutsFilter struct {
	Date     string
	FromDate string
	ToDate   string
	Limit    int
}

// LogWorkout records a performed exercise. A name matching the custom
// exercise library links the log to that exercise. Requires workoutTracking.
func LogWorkout(db *sql.DB, in WorkoutInput) (model.WorkoutLog, error) {
	if err := requireCurrentFeature(db, FeatureWorkoutTracking); err != nil {
		return model.WorkoutLog{}, err
	}
	in, err := normalizeWorkoutInput(in)
	if err != nil {
		return model.WorkoutLog{}, err
	}

	item := model.WorkoutLog{
		ExerciseName: in.Exercise,
		Sets:         in.Sets,
		Reps:         in.Reps,
		WeightKg:     in.WeightKg,
		DurationMin:  in.DurationMin,
		PerformedAt:  in.PerformedAt,
		Notes:        in.Notes,
	}
	exercise, found, err := findCustomExercise(db, in.Exercise)
	if err != nil {
		return model.WorkoutLog{}, err
	}
	if found {
		item.ExerciseName = exercise.Name
		item.CustomExerciseID = &exercise.ID
	}

	res, err := db.Exec(`
INSERT INTO workout_logs(exercise_name, custom_exercise_id, sets, reps, weight_kg, duration_min, performed_at, notes)
VALUES(?, ?, ?, ?, ?, ?, ?, ?)
`, item.ExerciseName, item.CustomExerciseID, item.Sets, item.Reps, item.WeightKg, item.DurationMin, item.PerformedAt.Format(time.RFC3339), item.Notes)
	if err != nil {
		return model.WorkoutLog{}, fmt.Errorf("add workout log: %w", err)
	}
	if item.ID, err = res.LastInsertId(); err != nil {
		return model.WorkoutLog{}, fmt.Errorf("resolve workout log id: %w", err)
	}
	return item, nil
}

func ListWorkouts(db *sql.DB, f ListWorkoutsFilter) ([]model.WorkoutLog, error) {
	if strings.TrimSpace(f.Date) != "" && (strings.TrimSpace(f.FromDate) != "" || strings.TrimSpace(f.ToDate) != "") {
		return nil, fmt.Errorf("--date cannot be combined with --from or --to")
	}

	query := `SELECT id, exercise_name, custom_exercise_id, sets, reps, weight_kg, duration_min, performed_at, notes, created_at FROM workout_logs WHERE 1=1`
	args := make([]any, 0)
	if strings.TrimSpace(f.Date) != "" {
		start, end, err := dayBounds(f.Date)
		if err != nil {
			return nil, err
		}
		query += ` AND performed_at >= ? AND performed_at < ?`
		args = append(args, start, end)
	}
	if strings.TrimSpace(f.FromDate) != "" {
		from, err := parseDateStart(f.FromDate)
		if err != nil {
			return nil, err
		}
		query += ` AND performed_at >= ?`
		args = append(args, from)
	}
	if strings.TrimSpace(f.ToDate) != "" {
		to, err := parseDateEndExclusive(f.ToDate)
		if err != nil {
			return nil, err
		}
		query += ` AND performed_at < ?`
		args = append(args, to)
	}

	query += ` ORDER BY performed_at DESC`
	if f.Limit <= 0 {
		f.Limit = 50
	}
	query += ` LIMIT ?`
	args = append(args, f.Limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workout logs: %w", err)
	}
	defer rows.Close()

	items := make([]model.WorkoutLog, 0)
	for rows.Next() {
		var item model.WorkoutLog
		var exerciseID sql.NullInt64
		var performedAtRaw string
		if err := rows.Scan(&item.ID, &item.ExerciseName, &exerciseID, &item.Sets, &item.Reps, &item.WeightKg, &item.DurationMin, &performedAtRaw, &item.Notes, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan workout log: %w", err)
		}
		performedAt, err := time.Parse(time.RFC3339, performedAtRaw)
		if err != nil {
			return nil, fmt.Errorf("parse performed_at for workout log %d: %w", item.ID, err)
		}
		item.PerformedAt = performedAt
		if exerciseID.Valid {
			v := exerciseID.Int64
			item.CustomExerciseID = &v
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workout logs: %w", err)
	}
	return items, nil
}

func DeleteWorkout(db *sql.DB, id int64) error {
	if id <= 0 {
		return fmt.Errorf("workout id must be > 0")
	}
	res, err := db.Exec(`DELETE FROM workout_logs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete workout log %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("workout log %d not found", id)
	}
	return nil
}

func normalizeWorkoutInput(in WorkoutInput) (WorkoutInput, error) {
	in.Exercise = strings.TrimSpace(in.Exercise)
	if in.Exercise == "" {
		return WorkoutInput{}, fmt.Errorf("exercise is required")
	}
	if in.Sets < 0 || in.Reps < 0 || in.DurationMin < 0 {
		return WorkoutInput{}, fmt.Errorf("sets, reps, and duration must be >= 0")
	}
	if err := validateNonNegativeFloat("weight", in.WeightKg); err != nil {
		return WorkoutInput{}, err
	}
	if in.Sets == 0 && in.DurationMin == 0 {
		return WorkoutInput{}, fmt.Errorf("either sets or duration must be > 0")
	}
	if in.Reps > 0 && in.Sets == 0 {
		return WorkoutInput{}, fmt.Errorf("reps require sets")
	}
	if in.PerformedAt.IsZero() {
		in.PerformedAt = time.Now()
	}
	in.Notes = strings.TrimSpace(in.Notes)
	return in, nil
}

func findCustomExercise(db *sql.DB, key string) (model.CustomExercise, bool, error) {
	var item model.CustomExercise
	err := db.QueryRow(`
SELECT id, ref, name, muscle_group, equipment, notes, created_at
FROM custom_exercises
WHERE CAST(id AS TEXT) = ? OR ref = ? OR name_norm = ?
ORDER BY (CAST(id AS TEXT) = ?) DESC, (ref = ?) DESC
LIMIT 1`, key, key, normalizeName(key), key, key).Scan(&item.ID, &item.Ref, &item.Name, &item.MuscleGroup, &item.Equipment, &item.Notes, &item.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CustomExercise{}, false, nil
	}
	if err != nil {
		return model.CustomExercise{}, false, fmt.Errorf("find custom exercise %q: %w", key, err)
	}
	return item, true, nil
}
