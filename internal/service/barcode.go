package service

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/saadjs/fittrack-cli/internal/provider"
)

// ProductSource fetches product data by barcode or free-text query.
type ProductSource interface {
	LookupBarcode(ctx context.Context, barcode string) (provider.Product, error)
	SearchProducts(ctx context.Context, query string, limit int) ([]provider.Product, error)
}

// ProductAnalysis is a looked-up product with its inferred measurement and
// the nutrition of one default serving.
type ProductAnalysis struct {
	Barcode        string          `json:"barcode,omitempty"`
	Name           string          `json:"name"`
	Brand          string          `json:"brand,omitempty"`
	Categories     []string        `json:"categories,omitempty"`
	ServingSize    string          `json:"serving_size,omitempty"`
	Source         string          `json:"source,omitempty"`
	Per100         BaseNutrition   `json:"per_100"`
	Analysis       FoodAnalysis    `json:"analysis"`
	DefaultServing ScaledNutrition `json:"default_serving"`
	Confidence     Confidence      `json:"confidence"`
}

var barcodePattern = regexp.MustCompile(`^\d{8,14}$`)

func isValidBarcode(code string) bool {
	return barcodePattern.MatchString(code)
}

// LookupProduct fetches a product by barcode and classifies it. The
// barcodeScanner feature must be available on the current tier.
func LookupProduct(ctx context.Context, db *sql.DB, src ProductSource, barcode string) (ProductAnalysis, error) {
	barcode = strings.TrimSpace(barcode)
	if !isValidBarcode(barcode) {
		return ProductAnalysis{}, fmt.Errorf("invalid barcode %q (expected 8-14 digits)", barcode)
	}
	tier, err := CurrentTier(db)
	if err != nil {
		return ProductAnalysis{}, err
	}
	if err := RequireFeature(tier, FeatureBarcodeScanner); err != nil {
		return ProductAnalysis{}, err
	}
	p, err := src.LookupBarcode(ctx, barcode)
	if err != nil {
		return ProductAnalysis{}, err
	}
	out := AnalyzeProduct(p)
	out.Confidence = ScoreBarcodeMatch(p, barcode)
	return out, nil
}

// SearchProducts classifies each hit and orders them by confidence, best
// first.
func SearchProducts(ctx context.Context, src ProductSource, query string, limit int) ([]ProductAnalysis, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("search query is required")
	}
	products, err := src.SearchProducts(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]ProductAnalysis, 0, len(products))
	for _, p := range products {
		a := AnalyzeProduct(p)
		a.Confidence = ScoreSearchMatch(p, query)
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence.Score > out[j].Confidence.Score
	})
	return out, nil
}

func AnalyzeProduct(p provider.Product) ProductAnalysis {
	analysis := AnalyzeFood(p.Name, p.Categories, p.ServingSize)
	base := BaseNutrition{
		Calories: p.Per100g.Calories,
		ProteinG: p.Per100g.ProteinG,
		CarbsG:   p.Per100g.CarbsG,
		FatG:     p.Per100g.FatG,
	}
	return ProductAnalysis{
		Barcode:     p.Barcode,
		Name:        p.Name,
		Brand:       p.Brand,
		Categories:  p.Categories,
		ServingSize: p.ServingSize,
		Source:      p.Source,
		Per100:      base,
		Analysis:    analysis,
		DefaultServing: ScaleNutrition(ScaleInput{
			Base:     base,
			Amount:   analysis.DefaultAmount,
			Unit:     analysis.DefaultUnit,
			Servings: 1,
			IsLiquid: analysis.Category == FoodLiquid,
		}),
	}
}
