package conditions

import (
	"fmt"
	"sort"

	"github.com/patcharlton/chamonix-ski-status/internal/models"
)

// DomainScore is the scored desirability of one sector, with human-readable
// justifications. Ephemeral: recomputed on every request, never persisted.
type DomainScore struct {
	Sector     string                 `json:"sector"`
	Name       string                 `json:"name"`
	Score      int                    `json:"score"`
	LiftsOpen  int                    `json:"lifts_open"`
	LiftsTotal int                    `json:"lifts_total"`
	Weather    *models.WeatherStation `json:"weather,omitempty"`
	Reasons    []string               `json:"reasons"`
}

// ScoreSector accumulates points for one sector from lift availability, piste
// variety, and the resolved station's weather.
func ScoreSector(sector, displayName string, lifts []models.Lift, pistes []models.Piste, weather *models.WeatherStation) DomainScore {
	score := 0
	var reasons []string

	liftsOpen := 0
	for _, l := range lifts {
		if l.Status == models.StatusOpen {
			liftsOpen++
		}
	}
	liftsTotal := len(lifts)
	var liftRatio float64
	if liftsTotal > 0 {
		liftRatio = float64(liftsOpen) / float64(liftsTotal)
	}

	// Lift availability
	score += liftsOpen * 4
	if liftRatio >= 0.75 {
		score += 15
		reasons = append(reasons, "most lifts running")
	} else if liftRatio >= 0.5 {
		score += 8
	}

	// Piste variety
	pistesOpen := 0
	difficulties := make(map[models.PisteDifficulty]bool)
	for _, p := range pistes {
		if p.Status != models.StatusOpen {
			continue
		}
		pistesOpen++
		if p.Difficulty != nil {
			difficulties[*p.Difficulty] = true
		}
	}
	score += pistesOpen * 2
	if len(difficulties) >= 3 {
		score += 10
		reasons = append(reasons, "great variety of runs")
	}

	if weather != nil {
		var wind float64
		if weather.WindSpeedKmh != nil {
			wind = *weather.WindSpeedKmh
		}
		switch {
		case wind < 20:
			score += 15
			reasons = append(reasons, "calm winds")
		case wind < 40:
			score += 10
		case wind < 60:
			score += 5
		default:
			score -= 10
		}

		quality := ""
		if weather.SnowQuality != nil {
			quality = *weather.SnowQuality
		}
		switch quality {
		case models.SnowFresh:
			score += 10
			if weather.LastSnowfallCm != nil && *weather.LastSnowfallCm > 20 {
				score += 5
				reasons = append(reasons, fmt.Sprintf("%dcm fresh snow", *weather.LastSnowfallCm))
			} else {
				reasons = append(reasons, "fresh snow")
			}
		case models.SnowSoft:
			score += 5
			reasons = append(reasons, "soft snow")
		}

		if weather.SnowDepthCm != nil && *weather.SnowDepthCm > 100 {
			score += 5
		}

		var temp float64
		if weather.TempMorningC != nil {
			temp = *weather.TempMorningC
		}
		if temp >= -10 && temp <= -2 {
			score += 5
		}
	}

	// A sector needs at least two lifts running to be worth the trip.
	if liftsOpen < 2 {
		score -= 50
		if score < 0 {
			score = 0
		}
	}

	return DomainScore{
		Sector:     sector,
		Name:       displayName,
		Score:      score,
		LiftsOpen:  liftsOpen,
		LiftsTotal: liftsTotal,
		Weather:    weather,
		Reasons:    reasons,
	}
}

// Rank scores every sector in the snapshot and returns them best-first.
// Sectors with no lift open are excluded outright, not just scored low; an
// empty result means the dashboard shows its "limited skiing" fallback.
// Sectors are visited in sorted key order and the sort is stable, so identical
// input always yields an identical ranking.
func Rank(data *models.SkiData, resolver *SectorResolver) []DomainScore {
	sectors := make([]string, 0, len(data.Lifts))
	for sector := range data.Lifts {
		sectors = append(sectors, sector)
	}
	sort.Strings(sectors)

	var scores []DomainScore
	for _, sector := range sectors {
		s := ScoreSector(
			sector,
			resolver.DisplayName(sector),
			data.Lifts[sector],
			data.Pistes[sector],
			resolver.Resolve(sector, data.Weather),
		)
		if s.LiftsOpen > 0 {
			scores = append(scores, s)
		}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores
}

// Recommendation is the ranked output consumed by the dashboard: today's pick
// plus up to two alternatives.
type Recommendation struct {
	Pick          *DomainScore  `json:"pick,omitempty"`
	Alternatives  []DomainScore `json:"alternatives,omitempty"`
	AvalancheRisk int           `json:"avalanche_risk"`
}

// Recommend builds the dashboard recommendation from a snapshot. Pick is nil
// when no sector has a lift open.
func Recommend(data *models.SkiData, resolver *SectorResolver) Recommendation {
	rec := Recommendation{}
	for _, w := range data.Weather {
		if w.AvalancheRisk != nil && *w.AvalancheRisk > rec.AvalancheRisk {
			rec.AvalancheRisk = *w.AvalancheRisk
		}
	}

	scores := Rank(data, resolver)
	if len(scores) == 0 {
		return rec
	}
	rec.Pick = &scores[0]
	if len(scores) > 1 {
		end := 3
		if len(scores) < end {
			end = len(scores)
		}
		rec.Alternatives = scores[1:end]
	}
	return rec
}
