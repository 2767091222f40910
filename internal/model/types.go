package model

import "time"

type CustomExercise struct {
	ID          int64
	Ref         string
	Name        string
	MuscleGroup string
	Equipment   string
	Notes       string
	CreatedAt   time.Time
}

type CustomMeal struct {
	ID            int64
	Ref           string
	Name          string
	FoodCategory  string
	DefaultUnit   string
	DefaultAmount float64
	Calories      float64
	ProteinG      float64
	CarbsG        float64
	FatG          float64
	Notes         string
	CreatedAt     time.Time
}

type FoodEntry struct {
	ID           int64
	Name         string
	FoodCategory string
	Amount       float64
	Unit         string
	Servings     float64
	Calories     float64
	ProteinG     float64
	CarbsG       float64
	FatG         float64
	CustomMealID *int64
	ConsumedAt   time.Time
	Notes        string
	CreatedAt    time.Time
}

type Goal struct {
	ID            int64
	Calories      float64
	ProteinG      float64
	CarbsG        float64
	FatG          float64
	EffectiveDate string
	CreatedAt     time.Time
}

type WorkoutLog struct {
	ID               int64
	ExerciseName     string
	CustomExerciseID *int64
	Sets             int
	Reps             int
	WeightKg         float64
	DurationMin      int
	PerformedAt      time.Time
	Notes            string
	CreatedAt        time.Time
}
