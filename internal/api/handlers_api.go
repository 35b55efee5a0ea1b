package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/patcharlton/chamonix-ski-status/internal/conditions"
	"github.com/patcharlton/chamonix-ski-status/internal/store"
)

func (s *Server) handleAPIData(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.requireSnapshot(w)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap.Data)
}

func (s *Server) handleAPIRecommendation(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.requireSnapshot(w)
	if !ok {
		return
	}
	rec := conditions.Recommend(snap.Data, s.resolver)
	writeJSON(w, http.StatusOK, rec)
}

// defaultHeightCm sizes the gear recommendation when the caller does not say.
const defaultHeightCm = 175

func (s *Server) handleAPIGear(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.requireSnapshot(w)
	if !ok {
		return
	}

	conds, ok := conditions.Analyze(snap.Data.Weather, time.Now())
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no weather data in latest snapshot"})
		return
	}

	q := r.URL.Query()
	prefs := conditions.Preferences{
		Terrain:   conditions.ParseTerrain(q.Get("terrain")),
		Skill:     conditions.ParseSkill(q.Get("skill")),
		Ownership: conditions.ParseOwnership(q.Get("ownership")),
		HeightCm:  defaultHeightCm,
	}
	if h, err := strconv.Atoi(q.Get("height")); err == nil && h >= 100 && h <= 230 {
		prefs.HeightCm = h
	}

	writeJSON(w, http.StatusOK, conditions.RecommendGear(conds, prefs))
}

func (s *Server) handleAPIInsights(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.requireSnapshot(w)
	if !ok {
		return
	}

	now := time.Now()
	writeJSON(w, http.StatusOK, map[string]any{
		"overall":  conditions.OverallCondition(snap.Data.Weather, now),
		"insights": conditions.GenerateInsights(snap.Data.Weather, now),
	})
}

// requireSnapshot loads the latest snapshot for a read handler, writing the
// error response itself when there is none.
func (s *Server) requireSnapshot(w http.ResponseWriter) (*store.Snapshot, bool) {
	snap, err := s.latestSnapshot()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	if snap == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no snapshot ingested yet"})
		return nil, false
	}
	return snap, true
}

// snapshotStaleAfter marks data health: the scraper pushes every 30 minutes,
// so anything over two hours means the feed has stopped.
const snapshotStaleAfter = 2 * time.Hour

type healthStatus struct {
	Status      string                     `json:"status"`
	SnapshotID  int64                      `json:"snapshot_id,omitempty"`
	SnapshotAge int                        `json:"snapshot_age_minutes,omitempty"`
	LiftsOpen   int                        `json:"lifts_open"`
	LiftsTotal  int                        `json:"lifts_total"`
	Ingest      []store.IngestHealthSummary `json:"ingest,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.LatestSnapshot()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
		return
	}

	health := healthStatus{Status: "ok"}
	if snap == nil {
		health.Status = "degraded"
	} else {
		age := time.Since(snap.CreatedAt)
		health.SnapshotID = snap.ID
		health.SnapshotAge = int(age.Minutes())
		health.LiftsOpen = snap.LiftsOpen
		health.LiftsTotal = snap.LiftsTotal
		if age > snapshotStaleAfter {
			health.Status = "degraded"
		}
	}

	if ingestHealth, err := s.store.GetIngestHealth(2); err == nil {
		health.Ingest = ingestHealth
	}

	status := http.StatusOK
	if health.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}
