package main

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Simplici0/refacing-estimator/internal/logger"
	"github.com/Simplici0/refacing-estimator/internal/pricing"
	"github.com/Simplici0/refacing-estimator/internal/seed"
)

// One Shaker/Slab section of one square foot plus every add-on:
// 90 materials + 7 hinges + 150 paint + 50 refinishing + 25 measuring
// + 78 installation + 30 disposal + 50 surcharge.
const quoteBody = `{
	"sections": [
		{"doorStyle": "Shaker", "drawerStyle": "Slab", "finish": "Painted", "height": 12, "width": 12}
	],
	"pieceCounts": {"doors_0_36": 2, "doors_36_60": 1, "doors_60_82": 0, "numDrawers": 1, "lazySusanQty": 1},
	"specialFeatures": {"customPaintQty": 1, "calculateDisposal": "yes"},
	"priceSetup": {
		"pricePerDoor": 10,
		"pricePerDrawer": 8,
		"pricePerLazySusan": 40,
		"refinishingCostPerSqFt": 5,
		"onSiteMeasuring": 25,
		"doorDisposalCost": 5,
		"onSiteMeasuringSqFt": 10
	}
}`

func newTestServer(t *testing.T, c *pricing.Catalog, staticDir string) http.Handler {
	t.Helper()

	log := logger.Discard()
	return newServer(pricing.NewCalculator(c, log.Logger), log, staticDir).routes()
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rec.Body.String(), err)
	}
	return body["error"]
}

func TestCalculate_ReturnsBreakdown(t *testing.T) {
	h := newTestServer(t, seed.DefaultCatalog(), "")

	rec := doRequest(t, h, http.MethodPost, "/calculate", quoteBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(logger.RequestIDHeader) == "" {
		t.Fatalf("expected a request ID header")
	}

	var b pricing.Breakdown
	if err := json.Unmarshal(rec.Body.Bytes(), &b); err != nil {
		t.Fatalf("decode breakdown: %v", err)
	}
	if b.OverallTotal != 480 {
		t.Fatalf("overallTotal = %v, want 480", b.OverallTotal)
	}
	if b.CostToInstaller != 97 || b.ProfitMargin != 383 {
		t.Fatalf("costToInstaller/profit = %v/%v, want 97/383", b.CostToInstaller, b.ProfitMargin)
	}
	if b.Disposal.Cost != 30 || b.Units != 6 {
		t.Fatalf("disposal = %+v, want cost 30 over 6 units", b.Disposal)
	}
	if b.Part2.TotalDoors != 3 {
		t.Fatalf("echoed totalDoors = %d, want 3", b.Part2.TotalDoors)
	}
}

func TestCalculate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		catalog *pricing.Catalog
		body    string
		status  int
		message string
	}{
		{
			name:    "malformed json",
			catalog: seed.DefaultCatalog(),
			body:    `{"sections": [`,
			status:  http.StatusBadRequest,
		},
		{
			name:    "missing price setup",
			catalog: seed.DefaultCatalog(),
			body:    `{"sections": [], "pieceCounts": {}}`,
			status:  http.StatusBadRequest,
		},
		{
			name:    "empty catalog",
			catalog: &pricing.Catalog{},
			body:    quoteBody,
			status:  http.StatusInternalServerError,
			message: "pricing catalog is not loaded",
		},
		{
			name:    "oversized body",
			catalog: seed.DefaultCatalog(),
			body:    strings.Repeat(" ", maxBodyBytes+1),
			status:  http.StatusRequestEntityTooLarge,
			message: "request body too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, newTestServer(t, tt.catalog, ""), http.MethodPost, "/calculate", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			msg := decodeError(t, rec)
			if msg == "" {
				t.Fatalf("expected an error message")
			}
			if tt.message != "" && msg != tt.message {
				t.Fatalf("error = %q, want %q", msg, tt.message)
			}
		})
	}
}

func TestCalculateText_RendersInvoice(t *testing.T) {
	h := newTestServer(t, seed.DefaultCatalog(), "")

	rec := doRequest(t, h, http.MethodPost, "/calculate/text?internal=1", quoteBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("content type = %q, want text/plain", ct)
	}
	out := rec.Body.String()
	for _, want := range []string{"Estimated Project Total", "$480.00", "Profit Margin:", "$383.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("invoice missing %q:\n%s", want, out)
		}
	}
}

func TestCatalogAndHealth(t *testing.T) {
	h := newTestServer(t, seed.DefaultCatalog(), "")

	rec := doRequest(t, h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("healthz = %d %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, h, http.MethodGet, "/catalog", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var c pricing.Catalog
	if err := json.Unmarshal(rec.Body.Bytes(), &c); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	if c.PriceFor("Shaker", seed.FinishPainted) != 50 {
		t.Fatalf("Shaker/Painted = %v, want 50", c.PriceFor("Shaker", seed.FinishPainted))
	}
	if c.PriceSetupDefaults.PricePerDoor.Float64() != 10 {
		t.Fatalf("pricePerDoor default = %v, want 10", c.PriceSetupDefaults.PricePerDoor)
	}

	empty := newTestServer(t, &pricing.Catalog{}, "")
	if rec := doRequest(t, empty, http.MethodGet, "/catalog", ""); rec.Code != http.StatusInternalServerError {
		t.Fatalf("empty catalog: expected 500, got %d", rec.Code)
	}
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>Estimate</h1>"), 0o600); err != nil {
		t.Fatalf("write index: %v", err)
	}
	h := newTestServer(t, seed.DefaultCatalog(), dir)

	rec := doRequest(t, h, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Estimate") {
		t.Fatalf("static index = %d %q", rec.Code, rec.Body.String())
	}

	missing := newTestServer(t, seed.DefaultCatalog(), filepath.Join(dir, "nope"))
	if rec := doRequest(t, missing, http.MethodGet, "/", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing static dir: expected 404, got %d", rec.Code)
	}
}

func TestCalculate_HugeDimensionsGetAnErrorBody(t *testing.T) {
	h := newTestServer(t, seed.DefaultCatalog(), "")

	body := `{"sections":[{"doorStyle":"Shaker","drawerStyle":"Slab","finish":"Painted","height":1e200,"width":1e200}],"pieceCounts":{},"priceSetup":{}}`
	rec := doRequest(t, h, http.MethodPost, "/calculate", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %q", rec.Code, rec.Body.String())
	}
	if msg := decodeError(t, rec); !strings.Contains(msg, "out of range") {
		t.Fatalf("error = %q, want an out of range message", msg)
	}
}

func TestCalculate_OversizedCountIsRejected(t *testing.T) {
	h := newTestServer(t, seed.DefaultCatalog(), "")

	body := `{"sections":[],"pieceCounts":{"doors_0_36":2000000},"priceSetup":{"pricePerDoor":1}}`
	rec := doRequest(t, h, http.MethodPost, "/calculate", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %q", rec.Code, rec.Body.String())
	}
	if msg := decodeError(t, rec); !strings.Contains(msg, "quantity exceeds") {
		t.Fatalf("error = %q, want the quantity limit", msg)
	}
}

func TestWriteJSON_EncodeFailureIsA500(t *testing.T) {
	rec := httptest.NewRecorder()
	if err := writeJSON(rec, http.StatusOK, map[string]float64{"total": math.Inf(1)}); err == nil {
		t.Fatalf("expected an encode error")
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "failed to encode response" {
		t.Fatalf("error = %q", msg)
	}
}
