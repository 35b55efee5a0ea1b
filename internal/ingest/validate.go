// Package ingest is the write-side boundary: scraper payload validation, the
// processing pipeline into the store, the optional upstream poller, and the
// avalanche bulletin client.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/patcharlton/chamonix-ski-status/internal/models"
)

// ErrMissingFields marks a payload rejected before any persistence. Callers
// match it with errors.Is to map onto a 400 response.
var ErrMissingFields = errors.New("payload missing required fields")

// requiredKeys must all be present at the top level of a submission. Presence
// is checked on the raw document: a key that decodes to a zero value is fine,
// an absent key is not.
var requiredKeys = []string{"metadata", "lifts", "weather"}

// ParsePayload validates and decodes one scraper submission. The returned
// SkiData is raw (not yet normalised).
func ParsePayload(raw []byte) (*models.SkiData, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: not a JSON object: %v", ErrMissingFields, err)
	}

	var missing []string
	for _, key := range requiredKeys {
		if _, ok := envelope[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: %v", ErrMissingFields, missing)
	}

	var data models.SkiData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingFields, err)
	}
	return &data, nil
}

// CountLifts counts raw lift records across sectors, the figure reported back
// to the scraper on a successful push.
func CountLifts(data *models.SkiData) int {
	total := 0
	for _, lifts := range data.Lifts {
		total += len(lifts)
	}
	return total
}
