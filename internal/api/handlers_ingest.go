package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/patcharlton/chamonix-ski-status/internal/ingest"
	"github.com/patcharlton/chamonix-ski-status/internal/metrics"
)

// maxPayloadBytes caps a scraper submission; a full resort snapshot is well
// under 1MB.
const maxPayloadBytes = 10 << 20

// updateResponse is the contract the scraper checks after a push.
type updateResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
	LiftsTotal int    `json:"lifts_total,omitempty"`
}

// handleUpdateData is the scraper push endpoint. GET is a liveness probe for
// the scraper's pre-flight check; POST requires the bearer secret and runs the
// ingest pipeline. Rejections happen strictly before anything is persisted.
func (s *Server) handleUpdateData(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, updateResponse{
			Success:   true,
			Message:   "POST scraped resort data here",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	case http.MethodPost:
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !s.authorized(r) {
		metrics.IngestRequestsTotal.WithLabelValues("scraper-push", "auth_failure").Inc()
		writeJSON(w, http.StatusUnauthorized, updateResponse{
			Success:   false,
			Message:   "unauthorized",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, updateResponse{
			Success:   false,
			Message:   "read body: " + err.Error(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	result, err := s.pipeline.Process(body, "scraper-push")
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ingest.ErrMissingFields) {
			status = http.StatusBadRequest
		} else {
			log.Printf("api: process push: %v", err)
		}
		writeJSON(w, status, updateResponse{
			Success:   false,
			Message:   err.Error(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	log.Printf("api: stored snapshot %d (%d lifts, %d open)",
		result.SnapshotID, result.LiftsTotal, result.LiftsOpen)
	writeJSON(w, http.StatusOK, updateResponse{
		Success:    true,
		Message:    "Data updated successfully",
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		LiftsTotal: result.LiftsTotal,
	})
}

// authorized checks the bearer token in constant time. An unconfigured secret
// rejects every push rather than opening the endpoint.
func (s *Server) authorized(r *http.Request) bool {
	if s.updateSecret == "" {
		return false
	}
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.updateSecret)) == 1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: write response: %v", err)
	}
}
