package ingest

import (
	"context"
	"log"
	"time"

	"github.com/patcharlton/chamonix-ski-status/internal/store"
)

const (
	rawPayloadRetentionDays = 30
	snapshotRetentionDays   = 90
)

// Scheduler drives the periodic jobs: polling the upstream scraper when one
// is configured, refreshing the avalanche bulletin, and pruning old rows.
// Push-only deployments run it with no upstream client and it only prunes.
type Scheduler struct {
	store            *store.Store
	pipeline         *Pipeline
	upstream         *UpstreamClient
	bulletin         *BulletinClient
	pollInterval     time.Duration
	bulletinInterval time.Duration
}

func NewScheduler(st *store.Store, pipeline *Pipeline) *Scheduler {
	return &Scheduler{
		store:            st,
		pipeline:         pipeline,
		pollInterval:     30 * time.Minute,
		bulletinInterval: 6 * time.Hour,
	}
}

// SetUpstreamClient configures the scheduler to poll a scraper URL.
func (s *Scheduler) SetUpstreamClient(client *UpstreamClient) {
	s.upstream = client
}

// SetBulletinClient configures the scheduler to fetch avalanche bulletins.
func (s *Scheduler) SetBulletinClient(client *BulletinClient) {
	s.bulletin = client
}

func (s *Scheduler) Run(ctx context.Context) {
	s.pollUpstream()
	s.fetchBulletin()

	pollTicker := time.NewTicker(s.pollInterval)
	bulletinTicker := time.NewTicker(s.bulletinInterval)
	cleanupTicker := time.NewTicker(24 * time.Hour)
	defer pollTicker.Stop()
	defer bulletinTicker.Stop()
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("scheduler: shutting down")
			return
		case <-pollTicker.C:
			s.pollUpstream()
		case <-bulletinTicker.C:
			s.fetchBulletin()
		case <-cleanupTicker.C:
			s.cleanup()
		}
	}
}

// IngestOnce runs a single poll and bulletin fetch, for the --once flag.
func (s *Scheduler) IngestOnce() error {
	s.pollUpstream()
	s.fetchBulletin()
	return nil
}

func (s *Scheduler) pollUpstream() {
	if s.upstream == nil {
		return
	}

	log.Println("scheduler: polling upstream snapshot")
	raw, err := s.upstream.Fetch()
	if err != nil {
		log.Printf("scheduler: fetch upstream: %v", err)
		if run, startErr := s.store.StartIngestRun("upstream-poll"); startErr == nil {
			run.ErrorMessage.String = err.Error()
			run.ErrorMessage.Valid = true
			s.store.CompleteIngestRun(run)
		}
		return
	}

	result, err := s.pipeline.Process(raw, "upstream-poll")
	if err != nil {
		log.Printf("scheduler: process upstream snapshot: %v", err)
		return
	}
	log.Printf("scheduler: stored snapshot %d (%d lifts, %d open)",
		result.SnapshotID, result.LiftsTotal, result.LiftsOpen)
}

func (s *Scheduler) fetchBulletin() {
	if s.bulletin == nil {
		return
	}

	log.Println("scheduler: fetching avalanche bulletin")
	bulletin, err := s.bulletin.Fetch()
	if err != nil {
		log.Printf("scheduler: fetch bulletin: %v", err)
		return
	}

	if err := s.store.UpsertAvalancheBulletin(*bulletin); err != nil {
		log.Printf("scheduler: store bulletin: %v", err)
		return
	}
	log.Printf("scheduler: bulletin %s %s: risk %d/5",
		bulletin.Massif, bulletin.ValidDate.Format("2006-01-02"), bulletin.RiskLevel)
}

func (s *Scheduler) cleanup() {
	if n, err := s.store.CleanupOldRawPayloads(rawPayloadRetentionDays); err != nil {
		log.Printf("scheduler: cleanup raw payloads: %v", err)
	} else if n > 0 {
		log.Printf("scheduler: pruned %d raw payloads", n)
	}

	if n, err := s.store.CleanupOldSnapshots(snapshotRetentionDays); err != nil {
		log.Printf("scheduler: cleanup snapshots: %v", err)
	} else if n > 0 {
		log.Printf("scheduler: pruned %d snapshots", n)
	}
}
