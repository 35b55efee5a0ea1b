package api_test

import (
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/patcharlton/chamonix-ski-status/internal/api"
	"github.com/patcharlton/chamonix-ski-status/internal/store"
)

const testSecret = "test-secret"

const scrapedPayload = `{
	"metadata": {"resort": "Chamonix", "source": "scraper", "scrape_timestamp": "2026-01-20T07:30:00Z"},
	"weather": [
		{"location_name": "Chamonix Mont-Blanc", "elevation_m": 1035, "temp_morning_c": -4, "wind_speed_kmh": 10, "snow_depth_cm": 60},
		{"location_name": "Lognan", "elevation_m": 1972, "temp_morning_c": -8, "wind_speed_kmh": 15, "snow_depth_cm": 150, "snow_quality": "FRAICHE", "last_snowfall_cm": 25}
	],
	"lifts": {
		"BREVENT": [
			{"sector": "BREVENT", "lift_name": "Planpraz", "lift_type": "TC", "status": "O"},
			{"sector": "BREVENT", "lift_name": "Brévent", "lift_type": "TPH", "status": "O"},
			{"sector": "BREVENT", "lift_name": "Parsa", "lift_type": "TSD", "status": "F"}
		]
	},
	"pistes": {
		"BREVENT": [
			{"sector": "BREVENT", "piste_name": "Charles Bozon", "difficulty": "N", "status": "O"}
		]
	}
}`

const allClosedPayload = `{
	"metadata": {"resort": "Chamonix", "source": "scraper", "scrape_timestamp": "2026-01-20T07:30:00Z"},
	"weather": [{"location_name": "Chamonix Mont-Blanc", "elevation_m": 1035, "temp_morning_c": -4}],
	"lifts": {
		"BREVENT": [
			{"sector": "BREVENT", "lift_name": "Planpraz", "lift_type": "TC", "status": "F"}
		]
	},
	"pistes": {}
}`

func newTestServer(t *testing.T) (*api.Server, *store.Store) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		t.Fatal(err)
	}
	return api.NewServer(st, "8080", testSecret), st
}

func pushPayload(t *testing.T, srv *api.Server, payload, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/update-data", strings.NewReader(payload))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestUpdateDataRequiresAuth(t *testing.T) {
	t.Parallel()
	srv, st := newTestServer(t)

	for name, token := range map[string]string{"no token": "", "wrong token": "nope"} {
		t.Run(name, func(t *testing.T) {
			w := pushPayload(t, srv, scrapedPayload, token)
			if w.Code != 401 {
				t.Fatalf("expected 401, got %d", w.Code)
			}
		})
	}

	snap, err := st.LatestSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap != nil {
		t.Errorf("rejected push must not persist a snapshot, got %+v", snap)
	}
}

func TestUpdateDataValidation(t *testing.T) {
	t.Parallel()
	srv, st := newTestServer(t)

	w := pushPayload(t, srv, `{"metadata": {}}`, testSecret)
	if w.Code != 400 {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success {
		t.Error("expected success=false")
	}
	if !strings.Contains(resp.Message, "missing required fields") {
		t.Errorf("message = %q", resp.Message)
	}

	snap, err := st.LatestSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap != nil {
		t.Error("invalid payload must not persist a snapshot")
	}
}

func TestUpdateDataSuccess(t *testing.T) {
	t.Parallel()
	srv, st := newTestServer(t)

	w := pushPayload(t, srv, scrapedPayload, testSecret)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success    bool   `json:"success"`
		Timestamp  string `json:"timestamp"`
		LiftsTotal int    `json:"lifts_total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success=true")
	}
	if resp.LiftsTotal != 3 {
		t.Errorf("lifts_total = %d, want 3", resp.LiftsTotal)
	}
	if resp.Timestamp == "" {
		t.Error("expected timestamp")
	}

	snap, err := st.LatestSnapshot()
	if err != nil {
		t.Fatal(err)
	}
	if snap == nil {
		t.Fatal("expected a stored snapshot")
	}
	if snap.LiftsOpen != 2 {
		t.Errorf("lifts_open = %d, want 2", snap.LiftsOpen)
	}
}

func TestUpdateDataProbe(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/update-data", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"success":true`) {
		t.Errorf("probe body = %s", w.Body.String())
	}
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	// Degraded until the first snapshot lands.
	if w.Code != 503 {
		t.Fatalf("expected 503 before first snapshot, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"degraded"`) {
		t.Errorf("body = %s", w.Body.String())
	}

	pushPayload(t, srv, scrapedPayload, testSecret)

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != 200 {
		t.Fatalf("expected 200 after snapshot, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestAPIDataNoSnapshot(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	for _, path := range []string{"/api/data", "/api/recommendation", "/api/gear", "/api/insights"} {
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		if w.Code != 404 {
			t.Errorf("%s: expected 404, got %d", path, w.Code)
		}
	}
}

func TestAPIRecommendation(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)
	pushPayload(t, srv, scrapedPayload, testSecret)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/api/recommendation", nil))
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var rec struct {
		Pick *struct {
			Sector    string `json:"sector"`
			LiftsOpen int    `json:"lifts_open"`
		} `json:"pick"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rec.Pick == nil || rec.Pick.Sector != "BREVENT" {
		t.Errorf("pick = %+v, want BREVENT", rec.Pick)
	}
}

func TestAPIGear(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)
	pushPayload(t, srv, scrapedPayload, testSecret)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/api/gear?terrain=piste&skill=beginner&height=160", nil))
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var gear struct {
		Category   string `json:"category"`
		WaistMaxMM int    `json:"waist_max_mm"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &gear); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if gear.Category == "" {
		t.Error("expected a gear category")
	}
	// Beginner clamp: waist centre never above 85.
	if gear.WaistMaxMM > 88 {
		t.Errorf("waist_max_mm = %d, want <= 88 for a beginner", gear.WaistMaxMM)
	}
}

func TestDashboard(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)
	pushPayload(t, srv, scrapedPayload, testSecret)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "Brévent") {
		t.Error("expected the recommended sector on the dashboard")
	}
	if !strings.Contains(body, "Where to Ski Today") {
		t.Error("expected the recommendation card")
	}
	if strings.Contains(body, "Limited skiing today") {
		t.Error("did not expect the fallback with open lifts")
	}
}

func TestDashboardLimitedSkiingFallback(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)
	pushPayload(t, srv, allClosedPayload, testSecret)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Limited skiing today") {
		t.Error("expected the limited-skiing fallback when nothing is open")
	}
}

func TestDashboardNoData(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No conditions data yet") {
		t.Error("expected the empty state before the first scrape")
	}
}

func TestOGImage(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)
	pushPayload(t, srv, scrapedPayload, testSecret)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/og-image.png", nil))
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("content-type = %q", ct)
	}
	if w.Body.Len() == 0 {
		t.Error("expected PNG bytes")
	}
}
