package usda

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/saadjs/fittrack-cli/internal/provider"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.nal.usda.gov"

// Client searches USDA FoodData Central. Branded search results report
// nutrients per 100 g, which maps directly onto provider.Nutrition.
type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
}

var _ provider.Source = (*Client)(nil)

func (c *Client) Name() string {
	return "usda"
}

func (c *Client) LookupBarcode(ctx context.Context, barcode string) (provider.Product, error) {
	barcode = strings.TrimSpace(barcode)
	foods, err := c.search(ctx, barcode, 20)
	if err != nil {
		return provider.Product{}, err
	}
	food, ok := selectBarcodeMatch(foods, barcode)
	if !ok {
		return provider.Product{}, fmt.Errorf("no USDA branded food found for barcode %q", barcode)
	}
	p := food.toProduct()
	if p.Barcode == "" {
		p.Barcode = barcode
	}
	return p, nil
}

func (c *Client) SearchProducts(ctx context.Context, query string, limit int) ([]provider.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	foods, err := c.search(ctx, strings.TrimSpace(query), limit)
	if err != nil {
		return nil, err
	}
	out := make([]provider.Product, 0, len(foods))
	for _, f := range foods {
		if strings.TrimSpace(f.Description) == "" {
			continue
		}
		out = append(out, f.toProduct())
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no USDA food found for query %q", query)
	}
	return out, nil
}

func (c *Client) search(ctx context.Context, query string, pageSize int) ([]usdaFood, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return nil, fmt.Errorf("missing USDA API key")
	}
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for USDA rate limit: %w", err)
		}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}

	payload, err := json.Marshal(map[string]any{
		"query":    query,
		"dataType": []string{"Branded"},
		"pageSize": pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal USDA search payload: %w", err)
	}

	u := fmt.Sprintf("%s/fdc/v1/foods/search?api_key=%s", baseURL, url.QueryEscape(c.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create USDA request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute USDA request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read USDA response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("USDA request failed with status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode USDA response: %w", err)
	}
	return parsed.Foods, nil
}

func selectBarcodeMatch(foods []usdaFood, barcode string) (usdaFood, bool) {
	for _, f := range foods {
		if strings.TrimSpace(f.GTINUPC) == barcode {
			return f, true
		}
	}
	if len(foods) > 0 {
		return foods[0], true
	}
	return usdaFood{}, false
}

func (f usdaFood) toProduct() provider.Product {
	p := provider.Product{
		Barcode: strings.TrimSpace(f.GTINUPC),
		Name:    strings.TrimSpace(f.Description),
		Brand:   strings.TrimSpace(f.BrandOwner),
		Source:  "usda",
	}
	if c := strings.TrimSpace(f.FoodCategory); c != "" {
		p.Categories = []string{c}
	}
	if f.ServingSize > 0 {
		p.ServingSize = strings.TrimSpace(strconv.FormatFloat(f.ServingSize, 'f', -1, 64) + " " + strings.ToLower(f.ServingSizeUnit))
	}
	for _, n := range f.FoodNutrients {
		switch strings.ToLower(strings.TrimSpace(n.NutrientName)) {
		case "energy":
			// Branded items may list energy twice; kcal wins over kJ.
			switch strings.ToUpper(strings.TrimSpace(n.UnitName)) {
			case "KJ":
				if p.Per100g.Calories == 0 {
					p.Per100g.Calories = n.Value / 4.184
				}
			default:
				p.Per100g.Calories = n.Value
			}
		case "protein":
			p.Per100g.ProteinG = n.Value
		case "carbohydrate, by difference":
			p.Per100g.CarbsG = n.Value
		case "total lipid (fat)":
			p.Per100g.FatG = n.Value
		}
	}
	return p
}

type searchResponse struct {
	Foods []usdaFood `json:"foods"`
}

type usdaFood struct {
	FDCID           int64          `json:"fdcId"`
	Description     string         `json:"description"`
	BrandOwner      string         `json:"brandOwner"`
	GTINUPC         string         `json:"gtinUpc"`
	FoodCategory    string         `json:"foodCategory"`
	ServingSize     float64        `json:"servingSize"`
	ServingSizeUnit string         `json:"servingSizeUnit"`
	FoodNutrients   []usdaNutrient `json:"foodNutrients"`
}

type usdaNutrient struct {
	NutrientName string  `json:"nutrientName"`
	UnitName     string  `json:"unitName"`
	Value        float64 `json:"value"`
}
