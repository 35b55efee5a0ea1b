// Package normalise turns a raw scraped resort payload into the cleaned
// snapshot the rest of the dashboard consumes: lift/piste records deduped per
// sector, non-lift transport reclassified as attractions, and the aggregate
// summary recomputed from scratch.
package normalise

import (
	"github.com/patcharlton/chamonix-ski-status/internal/models"
)

// Normalise builds a cleaned snapshot from raw scraped data. All maps in the
// result are newly constructed; the input is not modified. Running it on
// already-normalised data yields identical output.
func Normalise(raw *models.SkiData) *models.SkiData {
	out := &models.SkiData{
		Metadata: raw.Metadata,
		Weather:  raw.Weather,
		Lifts:    make(map[string][]models.Lift, len(raw.Lifts)),
		Pistes:   make(map[string][]models.Piste, len(raw.Pistes)),
		Summary:  raw.Summary,
	}
	out.Attractions = make(map[string][]models.Attraction)

	for sector, sectorLifts := range raw.Lifts {
		seen := make(map[string]bool, len(sectorLifts))
		lifts := []models.Lift{}
		var attractions []models.Attraction

		for _, lift := range sectorLifts {
			if seen[lift.Name] {
				continue
			}
			seen[lift.Name] = true

			if _, ok := models.ParseLiftType(lift.Type); ok {
				lifts = append(lifts, lift)
			} else {
				attractions = append(attractions, models.Attraction(lift))
			}
		}

		out.Lifts[sector] = lifts
		if len(attractions) > 0 {
			out.Attractions[sector] = attractions
		}
	}

	for sector, sectorPistes := range raw.Pistes {
		seen := make(map[string]bool, len(sectorPistes))
		pistes := []models.Piste{}
		for _, piste := range sectorPistes {
			if seen[piste.Name] {
				continue
			}
			seen[piste.Name] = true
			pistes = append(pistes, piste)
		}
		out.Pistes[sector] = pistes
	}

	out.CalculatedSummary = Summarise(out.Lifts, out.Pistes)
	return out
}

// Summarise recomputes open/total counts from normalised collections. Pistes
// with an unknown or missing difficulty code contribute to no bucket, so the
// per-difficulty totals can undercount incomplete scrapes; that matches the
// published data and is deliberate.
func Summarise(lifts map[string][]models.Lift, pistes map[string][]models.Piste) models.CalculatedSummary {
	var summary models.CalculatedSummary

	for _, sectorLifts := range lifts {
		for _, lift := range sectorLifts {
			summary.LiftsTotal++
			if lift.Status == models.StatusOpen {
				summary.LiftsOpen++
			}
		}
	}

	for _, sectorPistes := range pistes {
		for _, piste := range sectorPistes {
			if piste.Difficulty == nil {
				continue
			}
			var bucket *models.OpenTotal
			switch *piste.Difficulty {
			case models.DifficultyGreen:
				bucket = &summary.PistesByDifficulty.Green
			case models.DifficultyBlue:
				bucket = &summary.PistesByDifficulty.Blue
			case models.DifficultyRed:
				bucket = &summary.PistesByDifficulty.Red
			case models.DifficultyBlack:
				bucket = &summary.PistesByDifficulty.Black
			default:
				continue
			}
			bucket.Total++
			if piste.Status == models.StatusOpen {
				bucket.Open++
			}
		}
	}

	return summary
}
