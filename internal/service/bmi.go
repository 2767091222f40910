package service

import (
	"database/sql"
	"fmt"
	"math"
)

type BMIResult struct {
	WeightKg float64 `json:"weight_kg"`
	HeightCm float64 `json:"height_cm"`
	BMI      float64 `json:"bmi"`
	Band     string  `json:"band"`
}

// CalculateBMI returns body-mass index rounded to one decimal with its WHO band.
func CalculateBMI(weightKg, heightCm float64) (BMIResult, error) {
	if weightKg <= 0 {
		return BMIResult{}, fmt.Errorf("weight must be > 0")
	}
	if heightCm <= 0 {
		return BMIResult{}, fmt.Errorf("height must be > 0")
	}
	m := heightCm / 100
	bmi := math.Round(weightKg/(m*m)*10) / 10
	return BMIResult{WeightKg: weightKg, HeightCm: heightCm, BMI: bmi, Band: bmiBand(bmi)}, nil
}

// CalculateBMIForCurrentTier gates CalculateBMI on the bmiCalculator feature.
func CalculateBMIForCurrentTier(db *sql.DB, weightKg, heightCm float64) (BMIResult, error) {
	if err := requireCurrentFeature(db, FeatureBMICalculator); err != nil {
		return BMIResult{}, err
	}
	return CalculateBMI(weightKg, heightCm)
}

func bmiBand(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "underweight"
	case bmi < 25:
		return "normal"
	case bmi < 30:
		return "overweight"
	default:
		return "obese"
	}
}
