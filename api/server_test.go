package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/daehw/wondash/internal/cache"
	"github.com/daehw/wondash/internal/config"
	"github.com/daehw/wondash/internal/dashboard"
	"github.com/daehw/wondash/internal/news"
	"github.com/daehw/wondash/internal/providers/alphavantage"
	"github.com/daehw/wondash/internal/providers/goldapi"
	"github.com/daehw/wondash/internal/providers/naver"
	"github.com/daehw/wondash/internal/providers/twelvedata"
	"github.com/daehw/wondash/internal/providers/yahoo"
	"github.com/daehw/wondash/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

// testServer wires a full server against stub upstreams: Alpha Vantage
// always serves an FX rate, Yahoo serves quotes/history/candles, the
// rest fail.
func testServer(t *testing.T) *Server {
	t.Helper()

	avSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Realtime Currency Exchange Rate":{"5. Exchange Rate":"1400"}}`)
	}))
	t.Cleanup(avSrv.Close)

	yahooSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("range") {
		case "2d":
			fmt.Fprint(w, `{"chart":{"result":[{"meta":{"regularMarketPrice":2000,"chartPreviousClose":1980}}],"error":null}}`)
		case "1mo":
			fmt.Fprint(w, `{"chart":{"result":[{"indicators":{"quote":[{"close":[1.0,2.0]}]}}],"error":null}}`)
		default:
			fmt.Fprint(w, `{"chart":{"result":[{
				"timestamp":[1704067200],
				"indicators":{"quote":[{"open":[1],"high":[1],"low":[1],"close":[1.5]}]}
			}],"error":null}}`)
		}
	}))
	t.Cleanup(yahooSrv.Close)

	failSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(failSrv.Close)

	av := alphavantage.New([]string{"test"})
	av.SetBaseURL(avSrv.URL)
	yh := yahoo.New()
	yh.SetBaseURL(yahooSrv.URL)
	gold := goldapi.New([]string{"test"})
	gold.SetBaseURL(failSrv.URL)
	td := twelvedata.New("test")
	td.SetBaseURL(failSrv.URL)
	nv := naver.New()
	nv.SetBaseURL(failSrv.URL)

	store := cache.Open(filepath.Join(t.TempDir(), "cache.json"))
	svc := dashboard.New(store, dashboard.Clients{
		AlphaVantage: av,
		GoldAPI:      gold,
		TwelveData:   td,
		Yahoo:        yh,
		Naver:        nv,
	}, dashboard.Options{})

	srv := NewServer(&config.Config{}, store, svc, news.New([]news.Source{}))
	go srv.wsHub.Run()
	return srv
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

// ════════════════════════════════════════════════════════════════════
// Routes
// ════════════════════════════════════════════════════════════════════

func TestHealth(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if !resp.Success {
		t.Error("expected success")
	}
}

func TestProductData(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data/usd", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	// Raw payload, no envelope.
	var payload models.ProductPayload
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.Price != 1400 {
		t.Errorf("price = %v", payload.Price)
	}
	if payload.Source != "alphavantage" {
		t.Errorf("source = %q", payload.Source)
	}
	if len(payload.History) != 2 {
		t.Errorf("history = %v", payload.History)
	}
}

// Unrecognized ids are indistinguishable from resolution failures on
// the data route: both surface as the same 500 error shape.
func TestProductDataUnknown(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data/btc", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "Failed to fetch data" {
		t.Errorf("error = %q", body["error"])
	}
}

func TestProductDataForceQuery(t *testing.T) {
	srv := testServer(t)

	// Prime the cache, then force.
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data/usd", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("prime status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data/usd?force=true", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("force status = %d", rec.Code)
	}
}

func TestCacheStatusAndClear(t *testing.T) {
	srv := testServer(t)

	// Populate via a product fetch.
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/data/usd", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("prime status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cache", nil))
	resp := decodeResponse(t, rec)
	if !resp.Success {
		t.Fatal("expected success")
	}
	entries, ok := resp.Data.([]interface{})
	if !ok || len(entries) == 0 {
		t.Fatalf("expected cache entries, got %v", resp.Data)
	}

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/cache", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("clear status = %d", rec.Code)
	}
	if srv.store.Len() != 0 {
		t.Errorf("cache size after clear = %d", srv.store.Len())
	}
}

func TestRefresh(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/refresh", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !decodeResponse(t, rec).Success {
		t.Error("expected success")
	}
	// Every product resolved via a Yahoo backstop, so all five are cached.
	for _, id := range models.ProductIDs {
		var payload models.ProductPayload
		if !srv.store.Get(cache.ProductKey(id), 5*time.Minute, &payload) {
			t.Errorf("product %s not cached after refresh", id)
		}
	}
}

func TestNewsEmptySources(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/news", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !decodeResponse(t, rec).Success {
		t.Error("expected success")
	}
}

func TestRecommendRoute(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/recommend/kospi", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	if !resp.Success {
		t.Fatal("expected success")
	}
	// The stub serves a single weekly candle, so the tier is neutral.
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data = %T", resp.Data)
	}
	if data["id"] != "neutral" {
		t.Errorf("tier = %v, want neutral", data["id"])
	}
}

func TestRecommendUnknown(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/recommend/btc", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

// ════════════════════════════════════════════════════════════════════
// APIResponse type
// ════════════════════════════════════════════════════════════════════

func TestAPIResponseJSON(t *testing.T) {
	tests := []struct {
		name string
		resp APIResponse
	}{
		{"success with data", APIResponse{Success: true, Data: map[string]string{"key": "value"}}},
		{"error", APIResponse{Success: false, Error: "something went wrong"}},
		{"success with nil data", APIResponse{Success: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.resp)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var got APIResponse
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Success != tt.resp.Success {
				t.Errorf("Success: got %v, want %v", got.Success, tt.resp.Success)
			}
			if got.Error != tt.resp.Error {
				t.Errorf("Error: got %q, want %q", got.Error, tt.resp.Error)
			}
		})
	}
}
