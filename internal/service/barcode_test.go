package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/saadjs/fittrack-cli/internal/provider"
	"github.com/saadjs/fittrack-cli/internal/service"
)

type fakeProducts struct {
	products map[string]provider.Product
	calls    int
}

func (f *fakeProducts) LookupBarcode(_ context.Context, barcode string) (provider.Product, error) {
	f.calls++
	p, ok := f.products[barcode]
	if !ok {
		return provider.Product{}, errors.New("product not found")
	}
	return p, nil
}

func (f *fakeProducts) SearchProducts(_ context.Context, _ string, limit int) ([]provider.Product, error) {
	f.calls++
	out := make([]provider.Product, 0, len(f.products))
	for _, p := range f.products {
		if len(out) == limit {
			break
		}
		out = append(out, p)
	}
	return out, nil
}

func TestLookupProductClassifiesAndScales(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	src := &fakeProducts{products: map[string]provider.Product{
		"3017620422003": {
			Barcode:     "3017620422003",
			Name:        "Whey Protein Vanilla",
			Categories:  []string{"supplements"},
			ServingSize: "32 g",
			Per100g:     provider.Nutrition{Calories: 400, ProteinG: 78, CarbsG: 8, FatG: 6},
		},
	}}

	got, err := service.LookupProduct(context.Background(), sqldb, src, " 3017620422003 ")
	if err != nil {
		t.Fatalf("lookup product: %v", err)
	}
	if got.Analysis.Category != service.FoodPowder || got.Analysis.DefaultAmount != 32 {
		t.Fatalf("unexpected analysis: %+v", got.Analysis)
	}
	if !approx(got.DefaultServing.Calories, 128) {
		t.Fatalf("expected 32 g serving = 128 kcal, got %v", got.DefaultServing.Calories)
	}
}

func TestLookupProductRejectsInvalidBarcode(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	src := &fakeProducts{}
	for _, code := range []string{"", "123", "abcdefgh", "123456789012345"} {
		if _, err := service.LookupProduct(context.Background(), sqldb, src, code); err == nil {
			t.Fatalf("expected invalid barcode error for %q", code)
		}
	}
	if src.calls != 0 {
		t.Fatalf("invalid barcodes must not reach the source, got %d calls", src.calls)
	}
}

func TestSearchProductsAnalyzesEachResult(t *testing.T) {
	t.Parallel()
	src := &fakeProducts{products: map[string]provider.Product{
		"1": {Name: "Apple Juice", ServingSize: "200 ml", Per100g: provider.Nutrition{Calories: 46}},
	}}
	got, err := service.SearchProducts(context.Background(), src, "apple juice", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 || got[0].Analysis.Category != service.FoodLiquid || got[0].Analysis.DefaultAmount != 200 {
		t.Fatalf("unexpected search results: %+v", got)
	}
	if _, err := service.SearchProducts(context.Background(), src, " ", 5); err == nil {
		t.Fatalf("expected empty query error")
	}
}

func TestLookupProductScoresIdentity(t *testing.T) {
	t.Parallel()
	sqldb := newTestDB(t)
	full := provider.Nutrition{Calories: 380, ProteinG: 13, CarbsG: 60, FatG: 7}
	src := &fakeProducts{products: map[string]provider.Product{
		"12345678": {Barcode: "12345678", Name: "Rolled Oats", ServingSize: "40 g", Per100g: full, Source: "usda"},
		"87654321": {Barcode: "00000000", Name: "Oat Bar", ServingSize: "1 bar", Per100g: full, Source: "usda"},
	}}

	exact, err := service.LookupProduct(context.Background(), sqldb, src, "12345678")
	if err != nil {
		t.Fatalf("lookup exact: %v", err)
	}
	if !exact.Confidence.Verified || exact.Confidence.Score < 0.9 {
		t.Fatalf("expected verified exact match, got %+v", exact.Confidence)
	}

	fuzzy, err := service.LookupProduct(context.Background(), sqldb, src, "87654321")
	if err != nil {
		t.Fatalf("lookup fuzzy: %v", err)
	}
	if fuzzy.Confidence.Verified || fuzzy.Confidence.Score >= exact.Confidence.Score {
		t.Fatalf("mismatched barcode should score lower and stay unverified: %+v", fuzzy.Confidence)
	}
}

func TestSearchProductsRanksByConfidence(t *testing.T) {
	t.Parallel()
	src := &fakeProducts{products: map[string]provider.Product{
		"1": {Name: "Sparkling Water", Source: "openfoodfacts"},
		"2": {Name: "Greek Yogurt Plain", Brand: "Fage", ServingSize: "170 g", Per100g: provider.Nutrition{Calories: 97, ProteinG: 9, CarbsG: 4, FatG: 5}, Source: "openfoodfacts"},
	}}
	got, err := service.SearchProducts(context.Background(), src, "greek yogurt", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Greek Yogurt Plain" {
		t.Fatalf("expected best match first, got %+v", got)
	}
	if !got[0].Confidence.Verified || got[1].Confidence.Verified {
		t.Fatalf("unexpected verification: %+v / %+v", got[0].Confidence, got[1].Confidence)
	}
}
