package api

import (
	"context"
	"log"
	"time"

	"github.com/patcharlton/chamonix-ski-status/internal/conditions"
	"github.com/patcharlton/chamonix-ski-status/internal/ingest"
	"github.com/patcharlton/chamonix-ski-status/internal/models"
)

// DashboardData is everything the index template renders. Built fresh per
// request from the latest snapshot; nothing here is cached except the
// narrative text.
type DashboardData struct {
	HasData   bool
	UpdatedAt time.Time
	ScrapedAt string
	Condition string

	LiftsOpen   int
	LiftsTotal  int
	PistesOpen  int
	PistesTotal int
	Pistes      models.PistesByDifficulty

	Recommendation conditions.Recommendation
	Gear           conditions.GearRecommendation
	Insights       []conditions.Insight
	Sectors        []conditions.DomainScore
	Weather        []models.WeatherStation
	Avalanche      *AvalancheView
	Narrative      string
}

// AvalancheView is the banner shown when the risk is worth calling out.
type AvalancheView struct {
	Risk      int
	Label     string
	Evolution string
	Summary   string
	ValidDate string
}

func (s *Server) getDashboardData() (*DashboardData, error) {
	snap, err := s.latestSnapshot()
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return &DashboardData{}, nil
	}

	now := time.Now()
	data := snap.Data
	rec := conditions.Recommend(data, s.resolver)

	conds, _ := conditions.Analyze(data.Weather, now)
	gear := conditions.RecommendGear(conds, conditions.Preferences{
		Terrain:   conditions.TerrainMixed,
		Skill:     conditions.SkillIntermediate,
		Ownership: conditions.OwnershipRental,
		HeightCm:  defaultHeightCm,
	})

	dd := &DashboardData{
		HasData:        true,
		UpdatedAt:      snap.CreatedAt,
		ScrapedAt:      snap.ScrapedAt.String,
		Condition:      conditions.OverallCondition(data.Weather, now),
		LiftsOpen:      data.CalculatedSummary.LiftsOpen,
		LiftsTotal:     data.CalculatedSummary.LiftsTotal,
		PistesOpen:     snap.PistesOpen,
		PistesTotal:    snap.PistesTotal,
		Pistes:         data.CalculatedSummary.PistesByDifficulty,
		Recommendation: rec,
		Gear:           gear,
		Insights:       conditions.GenerateInsights(data.Weather, now),
		Sectors:        conditions.Rank(data, s.resolver),
		Weather:        data.Weather,
		Avalanche:      s.avalancheView(rec.AvalancheRisk),
		Narrative:      s.narrativeText(snap.ID, conds, rec),
	}
	return dd, nil
}

// avalancheView merges the snapshot's risk with the stored bulletin; the
// bulletin carries the evolution and summary text the scrape never has.
func (s *Server) avalancheView(snapshotRisk int) *AvalancheView {
	view := &AvalancheView{Risk: snapshotRisk}

	bulletin, err := s.store.LatestAvalancheBulletin(ingest.DefaultMassif)
	if err != nil {
		log.Printf("api: load bulletin: %v", err)
	} else if bulletin != nil {
		if bulletin.RiskLevel > view.Risk {
			view.Risk = bulletin.RiskLevel
		}
		view.Evolution = bulletin.RiskEvolution.String
		view.Summary = bulletin.Summary.String
		view.ValidDate = bulletin.ValidDate.Format("2 Jan")
	}

	if view.Risk == 0 {
		return nil
	}
	view.Label = models.AvalancheRiskLabel(view.Risk)
	return view
}

// narrativeText returns the cached narrative for this snapshot, generating it
// on first sight. Empty string when the generator is disabled or fails.
func (s *Server) narrativeText(snapshotID int64, conds conditions.ResortConditions, rec conditions.Recommendation) string {
	if s.narrator == nil {
		return ""
	}
	if text, ok := s.narrCache.Get(snapshotID); ok {
		return text
	}

	s.narrMu.Lock()
	defer s.narrMu.Unlock()
	if text, ok := s.narrCache.Get(snapshotID); ok {
		return text
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	text, err := s.narrator.Describe(ctx, conds, rec)
	if err != nil {
		log.Printf("api: generate narrative: %v", err)
		return ""
	}
	s.narrCache.Set(snapshotID, text)
	return text
}
