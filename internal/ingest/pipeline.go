package ingest

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/patcharlton/chamonix-ski-status/internal/metrics"
	"github.com/patcharlton/chamonix-ski-status/internal/normalise"
	"github.com/patcharlton/chamonix-ski-status/internal/store"
)

// Pipeline runs a submission through validate → raw payload → normalise →
// snapshot. Shared by the push endpoint and the upstream poller so both paths
// persist identically.
type Pipeline struct {
	store *store.Store
}

func NewPipeline(st *store.Store) *Pipeline {
	return &Pipeline{store: st}
}

// Result reports what one accepted submission produced.
type Result struct {
	SnapshotID int64
	LiftsTotal int
	LiftsOpen  int
}

// Process validates and persists one raw submission. A validation failure
// (errors.Is ErrMissingFields) leaves a failed audit row but writes neither
// the payload nor a snapshot. The raw payload and the snapshot are two
// sequential writes; a crash between them loses only the snapshot, which the
// stored payload can regenerate.
func (p *Pipeline) Process(raw []byte, source string) (*Result, error) {
	run, err := p.store.StartIngestRun(source)
	if err != nil {
		// Auditing is best-effort; the submission still proceeds.
		log.Printf("ingest: start run: %v", err)
	}
	if run != nil {
		run.ResponseSizeBytes = sql.NullInt64{Int64: int64(len(raw)), Valid: true}
	}

	fail := func(cause error, outcome string) error {
		metrics.IngestRequestsTotal.WithLabelValues(source, outcome).Inc()
		if run != nil {
			run.ErrorMessage = sql.NullString{String: cause.Error(), Valid: true}
			if err := p.store.CompleteIngestRun(run); err != nil {
				log.Printf("ingest: complete run: %v", err)
			}
		}
		return cause
	}

	data, err := ParsePayload(raw)
	if err != nil {
		return nil, fail(err, "validation_failure")
	}

	if run != nil {
		if _, err := p.store.StoreRawPayload(&run.ID, source, raw); err != nil {
			log.Printf("ingest: store raw payload: %v", err)
		}
	}

	normalised := normalise.Normalise(data)

	snapshotID, err := p.store.SaveSnapshot(normalised)
	if err != nil {
		return nil, fail(fmt.Errorf("save snapshot: %w", err), "processing_failure")
	}

	if run != nil {
		run.Success = true
		run.SnapshotID = sql.NullInt64{Int64: snapshotID, Valid: true}
		run.LiftsParsed = sql.NullInt64{Int64: int64(CountLifts(data)), Valid: true}
		pistes := 0
		for _, ps := range data.Pistes {
			pistes += len(ps)
		}
		run.PistesParsed = sql.NullInt64{Int64: int64(pistes), Valid: true}
		run.StationsParsed = sql.NullInt64{Int64: int64(len(data.Weather)), Valid: true}
		if err := p.store.CompleteIngestRun(run); err != nil {
			log.Printf("ingest: complete run: %v", err)
		}
	}

	metrics.IngestRequestsTotal.WithLabelValues(source, "success").Inc()
	metrics.SnapshotsStored.Inc()

	return &Result{
		SnapshotID: snapshotID,
		LiftsTotal: CountLifts(data),
		LiftsOpen:  normalised.CalculatedSummary.LiftsOpen,
	}, nil
}
