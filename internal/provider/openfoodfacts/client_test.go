package openfoodfacts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/saadjs/fittrack-cli/internal/provider"
)

func TestLookupBarcodeParsesOpenFoodFactsResponse(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/api/v2/product/5000112637922.json") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("expected user agent header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "status": 1,
  "product": {
    "code": "5000112637922",
    "product_name": "Orange Juice",
    "brands": "Brand Co",
    "categories": "Beverages, en:Fruit juices",
    "serving_size": "250 ml",
    "nutriments": {
      "energy-kcal_100g": 45,
      "proteins_100g": "0.7",
      "carbohydrates_100g": 10.4,
      "fat_100g": 0.2,
      "energy-kcal_serving": 112
    }
  }
}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	got, err := c.LookupBarcode(context.Background(), "5000112637922")
	if err != nil {
		t.Fatalf("lookup barcode: %v", err)
	}
	want := provider.Product{
		Barcode:     "5000112637922",
		Name:        "Orange Juice",
		Brand:       "Brand Co",
		Categories:  []string{"Beverages", "Fruit juices"},
		ServingSize: "250 ml",
		Per100g:     provider.Nutrition{Calories: 45, ProteinG: 0.7, CarbsG: 10.4, FatG: 0.2},
		Source:      "openfoodfacts",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected product (-want +got):\n%s", diff)
	}
}

func TestLookupBarcodeFallsBackToKilojoules(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":1,"product":{"product_name":"Oats","nutriments":{"energy-kj_100g":1556.48}}}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	got, err := c.LookupBarcode(context.Background(), "12345678")
	if err != nil {
		t.Fatalf("lookup barcode: %v", err)
	}
	if got.Per100g.Calories < 371.9 || got.Per100g.Calories > 372.1 {
		t.Fatalf("expected ~372 kcal from kJ, got %.2f", got.Per100g.Calories)
	}
	if got.Barcode != "12345678" {
		t.Fatalf("expected requested barcode to be kept, got %q", got.Barcode)
	}
}

func TestLookupBarcodeNotFound(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":0}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	if _, err := c.LookupBarcode(context.Background(), "00000000"); err == nil {
		t.Fatalf("expected not found error")
	}
}

func TestSearchProductsSkipsUnnamed(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("search_terms") != "whey" {
			t.Errorf("unexpected query %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"products":[{"product_name":""},{"product_name":"Whey Protein Powder","serving_size":"30 g"}]}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client()}
	items, err := c.SearchProducts(context.Background(), "whey", 5)
	if err != nil {
		t.Fatalf("search products: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Whey Protein Powder" {
		t.Fatalf("unexpected products: %+v", items)
	}
}

func TestLimiterIsHonored(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":1,"product":{"product_name":"Milk"}}`))
	}))
	defer ts.Close()

	c := &Client{BaseURL: ts.URL, HTTPClient: ts.Client(), Limiter: provider.NewLimiter(1)}
	if _, err := c.LookupBarcode(context.Background(), "12345678"); err != nil {
		t.Fatalf("first lookup: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.LookupBarcode(ctx, "12345678"); err == nil {
		t.Fatalf("expected second lookup to be rate limited")
	}
}
