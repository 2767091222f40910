package service

import (
	"fmt"
	"strings"
)

const (
	UnitMilligram  = "milligram"
	UnitGram       = "gram"
	UnitKilogram   = "kilogram"
	UnitOunce      = "ounce"
	UnitPound      = "pound"
	UnitScoop      = "scoop"
	UnitMilliliter = "milliliter"
	UnitLiter      = "liter"
	UnitTeaspoon   = "teaspoon"
	UnitTablespoon = "tablespoon"
	UnitCup        = "cup"
	UnitFluidOunce = "fluid_ounce"
	UnitPiece      = "piece"
	UnitSlice      = "slice"
)

// nutritionReferenceAmount is the quantity BaseNutrition is expressed per.
const nutritionReferenceAmount = 100

type unitKind string

const (
	unitKindMass   unitKind = "mass"
	unitKindVolume unitKind = "volume"
	unitKindCount  unitKind = "count"
)

type unitDef struct {
	kind       unitKind
	toBaseUnit float64
}

var unitTable = map[string]unitDef{
	// mass (base = g)
	UnitMilligram: {kind: unitKindMass, toBaseUnit: 0.001},
	UnitGram:      {kind: unitKindMass, toBaseUnit: 1},
	UnitKilogram:  {kind: unitKindMass, toBaseUnit: 1000},
	UnitOunce:     {kind: unitKindMass, toBaseUnit: 28.349523125},
	UnitPound:     {kind: unitKindMass, toBaseUnit: 453.59237},
	UnitScoop:     {kind: unitKindMass, toBaseUnit: 30},

	// volume (base = ml)
	UnitMilliliter: {kind: unitKindVolume, toBaseUnit: 1},
	UnitLiter:      {kind: unitKindVolume, toBaseUnit: 1000},
	UnitTeaspoon:   {kind: unitKindVolume, toBaseUnit: 4.92892159375},
	UnitTablespoon: {kind: unitKindVolume, toBaseUnit: 14.78676478125},
	UnitCup:        {kind: unitKindVolume, toBaseUnit: 236.5882365},
	UnitFluidOunce: {kind: unitKindVolume, toBaseUnit: 29.5735295625},

	// count units are whole servings
	UnitPiece: {kind: unitKindCount, toBaseUnit: 1},
	UnitSlice: {kind: unitKindCount, toBaseUnit: 1},
}

var unitAliases = map[string]string{
	"mg":     UnitMilligram,
	"g":      UnitGram,
	"grams":  UnitGram,
	"kg":     UnitKilogram,
	"oz":     UnitOunce,
	"lb":     UnitPound,
	"lbs":    UnitPound,
	"scoops": UnitScoop,
	"ml":     UnitMilliliter,
	"l":      UnitLiter,
	"litre":  UnitLiter,
	"tsp":    UnitTeaspoon,
	"tbsp":   UnitTablespoon,
	"cups":   UnitCup,
	"fl-oz":  UnitFluidOunce,
	"fl oz":  UnitFluidOunce,
	"pc":     UnitPiece,
	"pcs":    UnitPiece,
	"pieces": UnitPiece,
	"slices": UnitSlice,
}

type BaseNutrition struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

type ScaledNutrition struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

func (n ScaledNutrition) Add(o ScaledNutrition) ScaledNutrition {
	return ScaledNutrition{
		Calories: n.Calories + o.Calories,
		ProteinG: n.ProteinG + o.ProteinG,
		CarbsG:   n.CarbsG + o.CarbsG,
		FatG:     n.FatG + o.FatG,
	}
}

type ScaleInput struct {
	Base     BaseNutrition
	Amount   float64
	Unit     string
	Servings float64
	IsLiquid bool
}

// ReferenceLabel names the quantity Base is expressed per.
func (in ScaleInput) ReferenceLabel() string {
	if in.IsLiquid {
		return "100ml"
	}
	return "100g"
}

// ScaleNutrition scales base nutrition to the chosen amount. Count units
// ignore Amount and scale by Servings alone. Unknown units use a factor of 1.
// Inputs are not validated; negative amounts yield negative output.
func ScaleNutrition(in ScaleInput) ScaledNutrition {
	k := NutritionMultiplier(in.Amount, in.Unit, in.Servings)
	return ScaledNutrition{
		Calories: in.Base.Calories * k,
		ProteinG: in.Base.ProteinG * k,
		CarbsG:   in.Base.CarbsG * k,
		FatG:     in.Base.FatG * k,
	}
}

func NutritionMultiplier(amount float64, unit string, servings float64) float64 {
	if IsCountUnit(unit) {
		return servings
	}
	return amount * ConversionFactor(unit) * servings / nutritionReferenceAmount
}

// ConversionFactor returns the factor from unit into grams or milliliters.
// Unknown units count as 1:1 with the reference unit; callers that accept
// free-text units check IsKnownUnit to warn.
func ConversionFactor(unit string) float64 {
	def, ok := resolveUnit(unit)
	if !ok {
		return 1
	}
	return def.toBaseUnit
}

func IsCountUnit(unit string) bool {
	def, ok := resolveUnit(unit)
	return ok && def.kind == unitKindCount
}

// NormalizeUnit maps aliases such as "g" or "tbsp" to canonical unit names.
// Unknown units are returned lowercased and trimmed.
func NormalizeUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	if canonical, ok := unitAliases[u]; ok {
		return canonical
	}
	return u
}

func IsKnownUnit(unit string) bool {
	_, ok := resolveUnit(unit)
	return ok
}

// ConvertAmount converts value between units. Unlike ScaleNutrition it fails
// on unknown units, count units, and mass/volume conversions without density.
func ConvertAmount(value float64, fromUnit, toUnit string, densityGML float64) (float64, error) {
	if value <= 0 {
		return 0, fmt.Errorf("amount must be > 0")
	}
	from, ok := resolveUnit(fromUnit)
	if !ok {
		return 0, fmt.Errorf("unsupported unit %q", fromUnit)
	}
	to, ok := resolveUnit(toUnit)
	if !ok {
		return 0, fmt.Errorf("unsupported unit %q", toUnit)
	}
	if from.kind == unitKindCount || to.kind == unitKindCount {
		if from == to {
			return value, nil
		}
		return 0, fmt.Errorf("cannot convert between %q and %q: count units have no mass or volume", fromUnit, toUnit)
	}

	if from.kind == to.kind {
		base := value * from.toBaseUnit
		return base / to.toBaseUnit, nil
	}

	if densityGML <= 0 {
		return 0, fmt.Errorf("density-g-per-ml must be > 0 for mass/volume conversion")
	}

	var grams float64
	switch from.kind {
	case unitKindMass:
		grams = value * from.toBaseUnit
	case unitKindVolume:
		grams = value * from.toBaseUnit * densityGML
	default:
		return 0, fmt.Errorf("unsupported source unit kind")
	}

	switch to.kind {
	case unitKindMass:
		return grams / to.toBaseUnit, nil
	case unitKindVolume:
		ml := grams / densityGML
		return ml / to.toBaseUnit, nil
	default:
		return 0, fmt.Errorf("unsupported target unit kind")
	}
}

func resolveUnit(unit string) (unitDef, bool) {
	def, ok := unitTable[NormalizeUnit(unit)]
	return def, ok
}
