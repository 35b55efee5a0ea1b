package ingest

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/patcharlton/chamonix-ski-status/internal/httputil"
	"github.com/patcharlton/chamonix-ski-status/internal/metrics"
)

// UpstreamClient pulls the scraped conditions document from a configured URL,
// for deployments where the scraper serves its output instead of pushing it.
type UpstreamClient struct {
	url     string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

func NewUpstreamClient(url string, client *http.Client) *UpstreamClient {
	if client == nil {
		client = httputil.NewClient()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "upstream",
		MaxRequests: 2,
		Interval:    1 * time.Minute,
		Timeout:     5 * time.Minute,
	})
	return &UpstreamClient{url: url, client: client, circuit: cb}
}

// Fetch retrieves the raw upstream document. Server errors and rate limits
// retry with exponential backoff; client errors and transport failures are
// permanent. Repeated failures trip the circuit breaker so a dead upstream is
// probed, not hammered.
func (u *UpstreamClient) Fetch() ([]byte, error) {
	started := time.Now()

	body, err := u.circuit.Execute(func() (interface{}, error) {
		var body []byte
		operation := func() error {
			resp, err := u.client.Get(u.url)
			if err != nil {
				return backoff.Permanent(fmt.Errorf("fetch upstream: %w", err))
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return fmt.Errorf("upstream unavailable: status %d", resp.StatusCode)
			}
			if resp.StatusCode != http.StatusOK {
				b, _ := io.ReadAll(resp.Body)
				return backoff.Permanent(fmt.Errorf("fetch upstream: status %d: %s", resp.StatusCode, string(b)))
			}

			body, err = io.ReadAll(resp.Body)
			if err != nil {
				return backoff.Permanent(fmt.Errorf("read body: %w", err))
			}
			return nil
		}

		bo := backoff.NewExponentialBackOff()
		bo.MaxElapsedTime = 2 * time.Minute
		if err := backoff.Retry(operation, bo); err != nil {
			return nil, err
		}
		return body, nil
	})

	metrics.UpstreamFetchLatency.WithLabelValues("upstream-poll").Observe(time.Since(started).Seconds())
	if err != nil {
		return nil, err
	}
	return body.([]byte), nil
}
