// Package api is the HTTP surface: the scraper ingestion endpoint, the JSON
// read API, the dashboard, and the share banner.
package api

import (
	"context"
	"html/template"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/patcharlton/chamonix-ski-status/internal/conditions"
	"github.com/patcharlton/chamonix-ski-status/internal/ingest"
	"github.com/patcharlton/chamonix-ski-status/internal/narrative"
	"github.com/patcharlton/chamonix-ski-status/internal/ogimage"
	"github.com/patcharlton/chamonix-ski-status/internal/store"
)

type Server struct {
	store        *store.Store
	port         string
	updateSecret string
	pipeline     *ingest.Pipeline
	resolver     *conditions.SectorResolver
	tmpl         *template.Template
	banner       *ogimage.Cache

	narrator  *narrative.Generator
	narrCache narrative.Cache
	narrMu    sync.Mutex // one narrative generation at a time
}

// NewServer wires the HTTP layer over the store. updateSecret guards the
// ingestion endpoint; with an empty secret every push is rejected.
func NewServer(st *store.Store, port, updateSecret string) *Server {
	// Narrative is optional - needs an API key.
	var narrator *narrative.Generator
	if gen, err := narrative.NewGenerator(); err != nil {
		log.Printf("api: narrative disabled: %v", err)
	} else {
		narrator = gen
	}

	return &Server{
		store:        st,
		port:         port,
		updateSecret: updateSecret,
		pipeline:     ingest.NewPipeline(st),
		resolver:     conditions.NewSectorResolver(nil, nil),
		tmpl:         newTemplates(),
		banner:       ogimage.NewCache(15 * time.Minute),
		narrator:     narrator,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/og-image.png", s.handleOGImage)
	mux.HandleFunc("/api/update-data", s.handleUpdateData)
	mux.HandleFunc("/api/data", s.handleAPIData)
	mux.HandleFunc("/api/recommendation", s.handleAPIRecommendation)
	mux.HandleFunc("/api/gear", s.handleAPIGear)
	mux.HandleFunc("/api/insights", s.handleAPIInsights)
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("api: listening on :%s", s.port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// latestSnapshot loads the newest snapshot and backfills the avalanche risk
// from the stored bulletin when the scrape carried none. Returns nil when
// nothing has been ingested yet.
func (s *Server) latestSnapshot() (*store.Snapshot, error) {
	snap, err := s.store.LatestSnapshot()
	if err != nil || snap == nil {
		return snap, err
	}

	hasRisk := false
	for _, w := range snap.Data.Weather {
		if w.AvalancheRisk != nil {
			hasRisk = true
			break
		}
	}
	if !hasRisk {
		bulletin, err := s.store.LatestAvalancheBulletin(ingest.DefaultMassif)
		if err != nil {
			log.Printf("api: load bulletin: %v", err)
		} else if bulletin != nil {
			risk := bulletin.RiskLevel
			for i := range snap.Data.Weather {
				snap.Data.Weather[i].AvalancheRisk = &risk
			}
		}
	}
	return snap, nil
}
