package ingest

import (
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/patcharlton/chamonix-ski-status/internal/store"
)

const validPayload = `{
	"metadata": {"resort": "Chamonix", "source": "scraper", "scrape_timestamp": "2026-01-20T07:30:00Z"},
	"weather": [{"location_name": "Lognan", "elevation_m": 1972}],
	"lifts": {
		"BREVENT": [
			{"sector": "BREVENT", "lift_name": "Planpraz", "lift_type": "TC", "status": "O"},
			{"sector": "BREVENT", "lift_name": "Brévent", "lift_type": "TPH", "status": "F"}
		]
	},
	"pistes": {}
}`

func TestParsePayload(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", validPayload, false},
		{"missing weather", `{"metadata": {}, "lifts": {}}`, true},
		{"missing lifts", `{"metadata": {}, "weather": []}`, true},
		{"missing everything", `{}`, true},
		{"not json", `lifts are open`, true},
		{"json array", `[1, 2, 3]`, true},
		{"null values still present", `{"metadata": null, "lifts": null, "weather": null, "pistes": null}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ParsePayload([]byte(tt.body))
			if tt.wantErr {
				if !errors.Is(err, ErrMissingFields) {
					t.Errorf("err = %v, want ErrMissingFields", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if data == nil {
				t.Fatal("expected parsed data")
			}
		})
	}
}

func newTestPipeline(t *testing.T) (*Pipeline, *store.Store) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewPipeline(st), st
}

func TestPipelineProcess(t *testing.T) {
	p, st := newTestPipeline(t)

	result, err := p.Process([]byte(validPayload), "scraper-push")
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.LiftsTotal != 2 {
		t.Errorf("lifts_total = %d, want 2", result.LiftsTotal)
	}
	if result.LiftsOpen != 1 {
		t.Errorf("lifts_open = %d, want 1", result.LiftsOpen)
	}

	snap, err := st.LatestSnapshot()
	if err != nil {
		t.Fatalf("latest snapshot: %v", err)
	}
	if snap == nil || snap.ID != result.SnapshotID {
		t.Fatalf("snapshot not stored: %+v", snap)
	}
	// The stored snapshot is the normalised form.
	if snap.Data.CalculatedSummary.LiftsTotal != 2 {
		t.Errorf("stored summary lifts_total = %d, want 2", snap.Data.CalculatedSummary.LiftsTotal)
	}
}

func TestPipelineRejectsBeforePersisting(t *testing.T) {
	p, st := newTestPipeline(t)

	_, err := p.Process([]byte(`{"metadata": {}}`), "scraper-push")
	if !errors.Is(err, ErrMissingFields) {
		t.Fatalf("err = %v, want ErrMissingFields", err)
	}

	snap, err := st.LatestSnapshot()
	if err != nil {
		t.Fatalf("latest snapshot: %v", err)
	}
	if snap != nil {
		t.Errorf("rejected payload must not produce a snapshot, got %+v", snap)
	}

	failures, err := st.GetRecentIngestErrors(10)
	if err != nil {
		t.Fatalf("recent errors: %v", err)
	}
	if len(failures) != 1 {
		t.Errorf("expected 1 failed audit row, got %d", len(failures))
	}
}

func TestUpstreamClientPermanentErrorDoesNotRetry(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewUpstreamClient(srv.URL, srv.Client())
	if _, err := client.Fetch(); err == nil {
		t.Fatal("expected error for 404 upstream")
	}
	if requests != 1 {
		t.Errorf("404 must be permanent, got %d requests", requests)
	}
}

func TestUpstreamClientFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(validPayload))
	}))
	defer srv.Close()

	client := NewUpstreamClient(srv.URL, srv.Client())
	body, err := client.Fetch()
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(body) != validPayload {
		t.Errorf("body mismatch: %q", body)
	}
}

func TestParseBulletin(t *testing.T) {
	valid := `<BULLETINS_NEIGE_AVALANCHE MASSIF="MONT-BLANC" DATEVALIDITE="2026-01-20">
		<CARTOUCHERISQUE><RISQUE RISQUEMAXI="3" EVOLURISQUE1="stable"/></CARTOUCHERISQUE>
		<RESUME>Instabilité persistante au-dessus de 2400m.</RESUME>
	</BULLETINS_NEIGE_AVALANCHE>`

	b, err := parseBulletin([]byte(valid), "MONT-BLANC")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if b.RiskLevel != 3 {
		t.Errorf("risk = %d, want 3", b.RiskLevel)
	}
	if b.ValidDate.Format("2006-01-02") != "2026-01-20" {
		t.Errorf("valid date = %v", b.ValidDate)
	}
	if !b.Summary.Valid {
		t.Error("expected summary")
	}

	tests := []struct {
		name string
		body string
	}{
		{"wrong massif", `<BULLETINS_NEIGE_AVALANCHE MASSIF="VANOISE" DATEVALIDITE="2026-01-20"><CARTOUCHERISQUE><RISQUE RISQUEMAXI="3"/></CARTOUCHERISQUE></BULLETINS_NEIGE_AVALANCHE>`},
		{"risk out of scale", `<BULLETINS_NEIGE_AVALANCHE MASSIF="MONT-BLANC" DATEVALIDITE="2026-01-20"><CARTOUCHERISQUE><RISQUE RISQUEMAXI="9"/></CARTOUCHERISQUE></BULLETINS_NEIGE_AVALANCHE>`},
		{"bad date", `<BULLETINS_NEIGE_AVALANCHE MASSIF="MONT-BLANC" DATEVALIDITE="yesterday"><CARTOUCHERISQUE><RISQUE RISQUEMAXI="3"/></CARTOUCHERISQUE></BULLETINS_NEIGE_AVALANCHE>`},
		{"not xml", `{"risk": 3}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseBulletin([]byte(tt.body), "MONT-BLANC"); err == nil {
				t.Error("expected error")
			}
		})
	}
}
