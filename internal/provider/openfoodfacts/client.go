package openfoodfacts

import (
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

const defaultBaseURL = "https://world.openfoodfacts.org"

const userAgent = "fittrack-cli/1.0 (+https://github.com/saadjs/fittrack-cli)"

// Client talks to the Open Food Facts API. Limiter, when set, is waited on
// before every request; share one limiter between clients to share a budget.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
}

var _ provider.Source = (*Client)(nil)

func (c *Client) Name() string {
	return "openfoodfacts"
}

func (c *Client) LookupBarcode(ctx context.Context, barcode string) (provider.Product, error) {
	barcode = strings.TrimSpace(barcode)
	body, err := c.get(ctx, fmt.Sprintf("%s/api/v2/product/%s.json", c.baseURL(), url.PathEscape(barcode)))
	if err != nil {
		return provider.Product{}, err
	}

	var parsed offResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return provider.Product{}, fmt.Errorf("decode openfoodfacts response: %w", err)
	}
	if parsed.Status != 1 || strings.TrimSpace(parsed.Product.ProductName) == "" {
		return provider.Product{}, fmt.Errorf("no openfoodfacts product found for barcode %q", barcode)
	}
	p := parsed.Product.toProduct()
	if p.Barcode == "" {
		p.Barcode = barcode
	}
	return p, nil
}

func (c *Client) SearchProducts(ctx context.Context, query string, limit int) ([]provider.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	u := fmt.Sprintf("%s/cgi/search.pl?search_terms=%s&search_simple=1&action=process&json=1&page_size=%d",
		c.baseURL(),
		url.QueryEscape(strings.TrimSpace(query)),
		limit,
	)
	body, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	var parsed offSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode openfoodfacts search response: %w", err)
	}
	out := make([]provider.Product, 0, len(parsed.Products))
	for _, p := range parsed.Products {
		if strings.TrimSpace(p.ProductName) == "" {
			continue
		}
		out = append(out, p.toProduct())
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no openfoodfacts product found for query %q", query)
	}
	return out, nil
}

func (c *Client) baseURL() string {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if base == "" {
		return defaultBaseURL
	}
	return base
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for openfoodfacts rate limit: %w", err)
		}
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 12 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create openfoodfacts request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute openfoodfacts request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read openfoodfacts response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openfoodfacts request failed with status %d", resp.StatusCode)
	}
	return body, nil
}

func (p offProduct) toProduct() provider.Product {
	return provider.Product{
		Barcode:     strings.TrimSpace(p.Code),
		Name:        strings.TrimSpace(p.ProductName),
		Brand:       strings.TrimSpace(p.Brands),
		Categories:  splitCategories(p.Categories),
		ServingSize: strings.TrimSpace(p.ServingSize),
		Source:      "openfoodfacts",
		Per100g: provider.Nutrition{
			Calories: calories100g(p.Nutriments),
			ProteinG: nutrient100g(p.Nutriments, "proteins"),
			CarbsG:   nutrient100g(p.Nutriments, "carbohydrates"),
			FatG:     nutrient100g(p.Nutriments, "fat"),
		},
	}
}

// calories100g prefers energy-kcal and falls back to kJ.
func calories100g(n map[string]any) float64 {
	if v, ok := parseFloatAny(n["energy-kcal_100g"]); ok {
		return v
	}
	if v, ok := parseFloatAny(n["energy-kj_100g"]); ok {
		return v / 4.184
	}
	return 0
}

func nutrient100g(n map[string]any, base string) float64 {
	if v, ok := parseFloatAny(n[base+"_100g"]); ok && v >= 0 {
		return v
	}
	return 0
}

func splitCategories(raw string) []string {
	out := make([]string, 0)
	for _, c := range strings.Split(raw, ",") {
		c = strings.TrimSpace(c)
		if i := strings.Index(c, ":"); i >= 0 && i <= 3 {
			c = c[i+1:]
		}
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

func parseFloatAny(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

type offResponse struct {
	Status  int        `json:"status"`
	Product offProduct `json:"product"`
}

type offProduct struct {
	Code        string         `json:"code"`
	ProductName string         `json:"product_name"`
	Brands      string         `json:"brands"`
	Categories  string         `json:"categories"`
	ServingSize string         `json:"serving_size"`
	Nutriments  map[string]any `json:"nutriments"`
}

type offSearchResponse struct {
	Products []offProduct `json:"products"`
}
