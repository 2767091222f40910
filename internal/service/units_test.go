package service_test

import (
	"math"
	"testing"

	"github.com/saadjs/fittrack-cli/internal/service"
)

var chicken = service.BaseNutrition{Calories: 165, ProteinG: 31, CarbsG: 0, FatG: 3.6}

func TestConvertAmountSameDimension(t *testing.T) {
	t.Parallel()
	out, err := service.ConvertAmount(100, "g", "oz", 0)
	if err != nil {
		t.Fatalf("convert mass units: %v", err)
	}
	if math.Abs(out-3.5274) > 0.01 {
		t.Fatalf("expected ~3.53 oz, got %.4f", out)
	}
}

func TestConvertAmountCrossDimensionRequiresDensity(t *testing.T) {
	t.Parallel()
	if _, err := service.ConvertAmount(1, "cup", "g", 0); err == nil {
		t.Fatalf("expected density requirement error")
	}
}

func TestConvertAmountCrossDimensionWithDensity(t *testing.T) {
	t.Parallel()
	out, err := service.ConvertAmount(1, service.UnitCup, service.UnitGram, 1.05)
	if err != nil {
		t.Fatalf("convert volume to mass with density: %v", err)
	}
	if math.Abs(out-248.4) > 0.5 {
		t.Fatalf("expected ~248.4 g, got %.4f", out)
	}
}

func TestConvertAmountRejectsCountAndUnknownUnits(t *testing.T) {
	t.Parallel()
	if _, err := service.ConvertAmount(2, "piece", "g", 1); err == nil {
		t.Fatalf("expected count unit error")
	}
	if _, err := service.ConvertAmount(1, "banana", "g", 0); err == nil {
		t.Fatalf("expected unsupported unit error")
	}
	if out, err := service.ConvertAmount(2, "pcs", "piece", 0); err != nil || out != 2 {
		t.Fatalf("expected piece alias to convert to itself, got %v, %v", out, err)
	}
}

func TestScaleNutritionMassAndVolume(t *testing.T) {
	t.Parallel()

	got := service.ScaleNutrition(service.ScaleInput{Base: chicken, Amount: 150, Unit: "gram", Servings: 1})
	want := service.ScaledNutrition{Calories: 247.5, ProteinG: 46.5, CarbsG: 0, FatG: 5.4}
	if !approxNutrition(got, want) {
		t.Fatalf("150 g: got %+v want %+v", got, want)
	}

	got = service.ScaleNutrition(service.ScaleInput{Base: chicken, Amount: 0.5, Unit: "kg", Servings: 2})
	want = service.ScaledNutrition{Calories: 1650, ProteinG: 310, CarbsG: 0, FatG: 36}
	if !approxNutrition(got, want) {
		t.Fatalf("0.5 kg x2: got %+v want %+v", got, want)
	}

	juice := service.BaseNutrition{Calories: 45, ProteinG: 0.7, CarbsG: 10.4, FatG: 0.2}
	got = service.ScaleNutrition(service.ScaleInput{Base: juice, Amount: 1, Unit: "liter", Servings: 1, IsLiquid: true})
	want = service.ScaledNutrition{Calories: 450, ProteinG: 7, CarbsG: 104, FatG: 2}
	if !approxNutrition(got, want) {
		t.Fatalf("1 l juice: got %+v want %+v", got, want)
	}
}

func TestScaleNutritionLinearInServings(t *testing.T) {
	t.Parallel()
	for _, unit := range []string{"gram", "cup", "piece", "mystery"} {
		for _, k := range [][2]float64{{0, 1}, {1, 1}, {0.5, 2.25}, {3, 7}} {
			a := service.ScaleNutrition(service.ScaleInput{Base: chicken, Amount: 80, Unit: unit, Servings: k[0]})
			b := service.ScaleNutrition(service.ScaleInput{Base: chicken, Amount: 80, Unit: unit, Servings: k[1]})
			sum := service.ScaleNutrition(service.ScaleInput{Base: chicken, Amount: 80, Unit: unit, Servings: k[0] + k[1]})
			if !approxNutrition(a.Add(b), sum) {
				t.Fatalf("unit %s servings %v: %+v + %+v != %+v", unit, k, a, b, sum)
			}
		}
	}
}

func TestScaleNutritionCountUnitIgnoresAmount(t *testing.T) {
	t.Parallel()
	banana := service.BaseNutrition{Calories: 105, ProteinG: 1.3, CarbsG: 27, FatG: 0.4}
	want := service.ScaleNutrition(service.ScaleInput{Base: banana, Amount: 1, Unit: "piece", Servings: 2})
	for _, amount := range []float64{0, 1, 7, 250, -3} {
		for _, unit := range []string{"piece", "slice", "pcs"} {
			got := service.ScaleNutrition(service.ScaleInput{Base: banana, Amount: amount, Unit: unit, Servings: 2})
			if !approxNutrition(got, want) {
				t.Fatalf("amount %v unit %s changed count-unit result: %+v vs %+v", amount, unit, got, want)
			}
		}
	}
	if !approx(want.Calories, 210) {
		t.Fatalf("expected 2 servings = 210 kcal, got %v", want.Calories)
	}
}

func TestScaleNutritionUnknownUnitDefaultsToFactorOne(t *testing.T) {
	t.Parallel()
	unknown := service.ScaleNutrition(service.ScaleInput{Base: chicken, Amount: 50, Unit: "handful", Servings: 1})
	grams := service.ScaleNutrition(service.ScaleInput{Base: chicken, Amount: 50, Unit: "g", Servings: 1})
	if !approxNutrition(unknown, grams) {
		t.Fatalf("unknown unit should scale like grams: %+v vs %+v", unknown, grams)
	}
	if service.IsKnownUnit("handful") {
		t.Fatalf("handful should not be a known unit")
	}
}

func TestScaleNutritionZeroAndNegativeInputs(t *testing.T) {
	t.Parallel()
	zero := service.ScaleNutrition(service.ScaleInput{Base: chicken, Amount: 0, Unit: "g", Servings: 1})
	if zero != (service.ScaledNutrition{}) {
		t.Fatalf("zero amount should yield zeros, got %+v", zero)
	}
	zero = service.ScaleNutrition(service.ScaleInput{Base: chicken, Amount: 100, Unit: "g", Servings: 0})
	if zero != (service.ScaledNutrition{}) {
		t.Fatalf("zero servings should yield zeros, got %+v", zero)
	}
	neg := service.ScaleNutrition(service.ScaleInput{Base: chicken, Amount: -100, Unit: "g", Servings: 1})
	if neg.Calories >= 0 {
		t.Fatalf("negative amount is passed through, got %+v", neg)
	}
}

func TestScaleInputReferenceLabel(t *testing.T) {
	t.Parallel()
	if got := (service.ScaleInput{IsLiquid: true}).ReferenceLabel(); got != "100ml" {
		t.Fatalf("liquid label = %q", got)
	}
	if got := (service.ScaleInput{}).ReferenceLabel(); got != "100g" {
		t.Fatalf("solid label = %q", got)
	}
}
