package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/saadjs/fittrack-cli/internal/db"
	"github.com/saadjs/fittrack-cli/internal/service"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) (*Router, *sql.DB) {
	t.Helper()
	sqldb, err := db.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })
	return NewRouter(sqldb, zap.NewNop(), []string{"http://localhost:3000"}), sqldb
}

func doRequest(t *testing.T, r *Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t)
	rec := doRequest(t, r, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected health response %d %s", rec.Code, rec.Body.String())
	}
}

func TestAnalyzeFoodEndpoint(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t)

	rec := doRequest(t, r, http.MethodGet, "/api/foods/analyze?name=Orange+Juice&serving=250ml", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var got service.FoodAnalysis
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode analysis: %v", err)
	}
	want := service.FoodAnalysis{
		Category:         service.FoodLiquid,
		AppropriateUnits: service.UnitsForCategory(service.FoodLiquid),
		DefaultUnit:      service.UnitMilliliter,
		DefaultAmount:    250,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("analysis mismatch (-want +got):\n%s", diff)
	}

	if rec := doRequest(t, r, http.MethodGet, "/api/foods/analyze", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without name, got %d", rec.Code)
	}
}

func TestScaleEndpoint(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t)

	body := `{"base":{"calories":165,"protein_g":31,"carbs_g":0,"fat_g":3.6},"amount":200,"unit":"g"}`
	rec := doRequest(t, r, http.MethodPost, "/api/nutrition/scale", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var got scaleResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode scale response: %v", err)
	}
	if got.Nutrition.Calories != 330 || got.Reference != "100g" || got.Unit != "gram" || got.UnknownUnit {
		t.Fatalf("unexpected scale response %+v", got)
	}

	rec = doRequest(t, r, http.MethodPost, "/api/nutrition/scale", `{"base":{"calories":100},"amount":50,"unit":"handful","servings":2}`)
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode scale response: %v", err)
	}
	if !got.UnknownUnit || got.Nutrition.Calories != 100 {
		t.Fatalf("unknown unit should scale with factor 1 and be flagged, got %+v", got)
	}

	if rec := doRequest(t, r, http.MethodPost, "/api/nutrition/scale", `{`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestEntitlementsEndpointFollowsStoredTier(t *testing.T) {
	t.Parallel()
	r, sqldb := newTestRouter(t)
	if err := service.SetTestMode(sqldb, true, "premium"); err != nil {
		t.Fatalf("enable test mode: %v", err)
	}

	rec := doRequest(t, r, http.MethodGet, "/api/entitlements", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var got entitlementsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode entitlements: %v", err)
	}
	if got.Tier != "premium" || !got.Features["progressPhotoNotes"] || !got.Limits["customMeals"].IsUnlimited() {
		t.Fatalf("unexpected entitlements %+v", got.Entitlements)
	}
	if len(got.Usage) != 2 {
		t.Fatalf("expected usage for 2 limited features, got %+v", got.Usage)
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}
}

type toolResult struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func callTool(t *testing.T, r *Router, name string, args map[string]any) (*httptest.ResponseRecorder, string) {
	t.Helper()
	body, err := json.Marshal(map[string]any{"name": name, "arguments": args})
	if err != nil {
		t.Fatalf("marshal tool call: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		return rec, ""
	}
	var res toolResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode tool result: %v", err)
	}
	if len(res.Content) != 1 || res.Content[0].Type != "text" {
		t.Fatalf("expected one text content item, got %s", rec.Body.String())
	}
	return rec, res.Content[0].Text
}

func TestMCPAnalyzeFood(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t)
	_, text := callTool(t, r, "analyze_food", map[string]any{"name": "Protein Shake", "serving_size": "330 ml"})
	var got service.FoodAnalysis
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatalf("decode analysis: %v", err)
	}
	if got.Category != service.FoodLiquid || got.DefaultAmount != 330 {
		t.Fatalf("unexpected analysis %+v", got)
	}

	rec, _ := callTool(t, r, "analyze_food", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without name, got %d", rec.Code)
	}
}

func TestMCPScaleNutrition(t *testing.T) {
	t.Parallel()
	r, _ := newTestRouter(t)
	_, text := callTool(t, r, "scale_nutrition", map[string]any{
		"base":     map[string]any{"calories": 105, "protein_g": 1.3},
		"amount":   3,
		"unit":     "piece",
		"servings": 2,
	})
	var got scaleResponse
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatalf("decode scale: %v", err)
	}
	if got.Nutrition.Calories != 210 {
		t.Fatalf("count unit should ignore amount, got %+v", got)
	}
}

func TestMCPCheckEntitlements(t *testing.T) {
	t.Parallel()
	r, sqldb := newTestRouter(t)
	if err := service.SetSubscription(sqldb, "pro"); err != nil {
		t.Fatalf("set subscription: %v", err)
	}

	_, text := callTool(t, r, "check_entitlements", map[string]any{"feature": "progressPhotoNotes"})
	var got map[string]any
	if err := json.Unmarshal([]byte(text), &got); err != nil {
		t.Fatalf("decode entitlement check: %v", err)
	}
	want := map[string]any{"tier": "pro", "feature": "progressPhotoNotes", "available": false, "limit": "unlimited"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entitlement check mismatch (-want +got):\n%s", diff)
	}

	if rec, _ := callTool(t, r, "check_entitlements", map[string]any{"feature": "teleport"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown feature, got %d", rec.Code)
	}
	if rec, _ := callTool(t, r, "delete_everything", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown tool, got %d", rec.Code)
	}
}
