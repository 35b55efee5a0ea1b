// Package conditions holds the derived-state engines: sector scoring and
// ranking, resort-wide aggregate analysis, ski sizing, and condition insights.
// Everything here is a pure function over a normalised snapshot.
package conditions

import (
	"strings"

	"github.com/patcharlton/chamonix-ski-status/internal/models"
)

// SectorResolver maps sector keys to weather stations through a fixed alias
// table. The table is injected at construction so callers can swap it out in
// tests; there is no package-level mutable state.
type SectorResolver struct {
	aliases      map[string]string
	displayNames map[string]string
}

// DefaultSectorWeatherAliases links each lift sector to the substring its
// weather station reports under. Sectors absent here never resolve.
var DefaultSectorWeatherAliases = map[string]string{
	"AIGUILLE DU MIDI":   "Aiguille du Midi",
	"BREVENT":            "Brévent",
	"DOMAINE DE BALME":   "Balme Tour-Vallorcine",
	"FLEGERE":            "Flégère",
	"GRANDS MONTETS":     "Grands Montets",
	"LES HOUCHES":        "Les Houches",
	"SITE DU MONTENVERS": "Montenvers",
	"TRAMWAY MONT BLANC": "Tramway du Mont-Blanc",
}

// DefaultSectorDisplayNames maps scraped sector keys to their display form.
var DefaultSectorDisplayNames = map[string]string{
	"AIGUILLE DU MIDI":   "Aiguille du Midi",
	"BREVENT":            "Brévent",
	"DOMAINE DE BALME":   "Domaine de Balme",
	"FLEGERE":            "Flégère",
	"GRANDS MONTETS":     "Grands Montets",
	"LA VORMAINE":        "La Vormaine",
	"LES HOUCHES":        "Les Houches",
	"LES CHOSALETS":      "Les Chosalets",
	"PLANARDS":           "Planards",
	"POYA":               "Poya",
	"SITE DU MONTENVERS": "Montenvers",
	"TRAMWAY MONT BLANC": "Tramway du Mont-Blanc",
}

// NewSectorResolver builds a resolver over the given tables. Nil maps fall
// back to the defaults.
func NewSectorResolver(aliases, displayNames map[string]string) *SectorResolver {
	if aliases == nil {
		aliases = DefaultSectorWeatherAliases
	}
	if displayNames == nil {
		displayNames = DefaultSectorDisplayNames
	}
	return &SectorResolver{aliases: aliases, displayNames: displayNames}
}

// Resolve returns the first station whose location name contains the sector's
// alias, case-insensitively, in slice order. Overlapping station names resolve
// to whichever comes first in the scrape; that ambiguity is inherited from the
// data source and kept as-is. Returns nil when the sector has no alias or no
// station matches.
func (r *SectorResolver) Resolve(sector string, stations []models.WeatherStation) *models.WeatherStation {
	alias, ok := r.aliases[sector]
	if !ok {
		return nil
	}
	needle := strings.ToLower(alias)
	for i := range stations {
		if strings.Contains(strings.ToLower(stations[i].LocationName), needle) {
			return &stations[i]
		}
	}
	return nil
}

// DisplayName returns the display form of a sector key, falling back to the
// key itself.
func (r *SectorResolver) DisplayName(sector string) string {
	if name, ok := r.displayNames[sector]; ok {
		return name
	}
	return sector
}
