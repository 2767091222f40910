package service

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/saadjs/fittrack-cli/internal/provider"
)

// VerifiedMinScore is the score a product needs before it is shown as
// verified.
const VerifiedMinScore = 0.80

type Confidence struct {
	Score    float64  `json:"score"`
	Verified bool     `json:"verified"`
	Reasons  []string `json:"reasons,omitempty"`
}

var sourceTrust = map[string]float64{
	"usda":          0.85,
	"openfoodfacts": 0.75,
}

// ScoreBarcodeMatch rates a barcode lookup. A product whose barcode differs
// from the one requested is a fuzzy fallback and scores low on identity.
func ScoreBarcodeMatch(p provider.Product, barcode string) Confidence {
	identity, why := 0.5, "barcode differs from request"
	if strings.TrimSpace(p.Barcode) == strings.TrimSpace(barcode) {
		identity, why = 1.0, "exact barcode match"
	}
	return scoreProduct(p, identity, why, identity == 1.0)
}

// ScoreSearchMatch rates a search hit by how many query tokens appear in the
// product name or brand.
func ScoreSearchMatch(p provider.Product, query string) Confidence {
	identity, why := searchIdentity(query, p.Name+" "+p.Brand)
	return scoreProduct(p, identity, why, identity >= 0.7)
}

func scoreProduct(p provider.Product, identity float64, identityReason string, identityOK bool) Confidence {
	trust, ok := sourceTrust[p.Source]
	if !ok {
		trust = 0.5
	}
	nutrition := nutritionQuality(p.Per100g)
	serving := servingQuality(p.ServingSize)

	score := clamp01(0.45*trust + 0.25*nutrition + 0.15*serving + 0.15*identity)
	return Confidence{
		Score:    score,
		Verified: score >= VerifiedMinScore && identityOK,
		Reasons: []string{
			fmt.Sprintf("source_trust=%.2f", trust),
			fmt.Sprintf("nutrition_quality=%.2f", nutrition),
			fmt.Sprintf("serving_quality=%.2f", serving),
			fmt.Sprintf("identity_quality=%.2f (%s)", identity, identityReason),
		},
	}
}

func nutritionQuality(n provider.Nutrition) float64 {
	macros := 0
	for _, v := range []float64{n.ProteinG, n.CarbsG, n.FatG} {
		if v > 0 {
			macros++
		}
	}
	switch {
	case n.Calories > 0 && macros == 3:
		return 1.0
	case n.Calories > 0 && macros >= 2:
		return 0.7
	case n.Calories > 0 || macros > 0:
		return 0.4
	default:
		return 0.2
	}
}

var servingUnitPattern = regexp.MustCompile(`[a-zA-Z]`)

func servingQuality(servingSize string) float64 {
	hasAmount := servingNumberPattern.MatchString(servingSize)
	hasUnit := servingUnitPattern.MatchString(servingSize)
	switch {
	case hasAmount && hasUnit:
		return 1.0
	case hasAmount || hasUnit:
		return 0.5
	default:
		return 0
	}
}

func searchIdentity(query, text string) (float64, string) {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return 0.4, "empty query"
	}
	have := map[string]bool{}
	for _, t := range tokenize(text) {
		have[t] = true
	}
	matched := 0
	for _, t := range queryTokens {
		if have[t] {
			matched++
		}
	}
	overlap := float64(matched) / math.Max(1, float64(len(queryTokens)))
	switch {
	case overlap >= 0.75:
		return 1.0, "high token overlap"
	case overlap >= 0.5:
		return 0.7, "moderate token overlap"
	default:
		return 0.4, "weak token overlap"
	}
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

func tokenize(s string) []string {
	s = nonAlnum.ReplaceAllString(strings.ToLower(s), " ")
	seen := map[string]bool{}
	out := make([]string, 0)
	for _, p := range strings.Fields(s) {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return math.Round(v*1000) / 1000
}
