package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IngestRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skistatus_ingest_requests_total",
			Help: "Total snapshot ingestion attempts by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	SnapshotsStored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skistatus_snapshots_stored_total",
			Help: "Total normalised snapshots written to the store",
		},
	)

	UpstreamFetchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skistatus_upstream_fetch_latency_seconds",
			Help:    "Upstream snapshot fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	BulletinFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skistatus_bulletin_fetches_total",
			Help: "Total avalanche bulletin FTP fetches by outcome",
		},
		[]string{"outcome"},
	)
)
