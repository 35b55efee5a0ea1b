package normalise

import (
	"reflect"
	"testing"

	"github.com/patcharlton/chamonix-ski-status/internal/models"
)

func lift(sector, name, liftType string, status models.LiftStatus) models.Lift {
	return models.Lift{Sector: sector, Name: name, Type: liftType, Status: status}
}

func piste(sector, name string, difficulty models.PisteDifficulty, status models.LiftStatus) models.Piste {
	d := difficulty
	return models.Piste{Sector: sector, Name: name, Difficulty: &d, Status: status}
}

func TestNormalise_DedupesLiftsFirstSeenWins(t *testing.T) {
	first := lift("BREVENT", "Planpraz", "TC", models.StatusOpen)
	duplicate := lift("BREVENT", "Planpraz", "TC", models.StatusClosed)

	raw := &models.SkiData{
		Lifts:  map[string][]models.Lift{"BREVENT": {first, duplicate}},
		Pistes: map[string][]models.Piste{},
	}

	out := Normalise(raw)

	got := out.Lifts["BREVENT"]
	if len(got) != 1 {
		t.Fatalf("expected 1 lift after dedup, got %d", len(got))
	}
	if got[0].Status != models.StatusOpen {
		t.Errorf("expected first occurrence to win, got status %q", got[0].Status)
	}
}

func TestNormalise_ReclassifiesUnknownTypesAsAttractions(t *testing.T) {
	raw := &models.SkiData{
		Lifts: map[string][]models.Lift{
			"SITE DU MONTENVERS": {
				lift("SITE DU MONTENVERS", "Train du Montenvers", "TELECABINE", models.StatusOpen),
				lift("SITE DU MONTENVERS", "Télécabine des Glaciers", "TC", models.StatusOpen),
			},
			"BREVENT": {
				lift("BREVENT", "Planpraz", "TC", models.StatusOpen),
			},
		},
		Pistes: map[string][]models.Piste{},
	}

	out := Normalise(raw)

	for _, l := range out.Lifts["SITE DU MONTENVERS"] {
		if l.Name == "Train du Montenvers" {
			t.Error("TELECABINE record should not appear in lifts output")
		}
	}
	attractions := out.Attractions["SITE DU MONTENVERS"]
	if len(attractions) != 1 || attractions[0].Name != "Train du Montenvers" {
		t.Errorf("expected reclassified attraction, got %+v", attractions)
	}
	// Sectors without attractions stay out of the attractions map.
	if _, ok := out.Attractions["BREVENT"]; ok {
		t.Error("sector with no attractions should not appear in attractions map")
	}
	if out.CalculatedSummary.LiftsTotal != 2 {
		t.Errorf("attraction counted in lift total: got %d, want 2", out.CalculatedSummary.LiftsTotal)
	}
}

func TestNormalise_LowercaseTypeStillRecognized(t *testing.T) {
	raw := &models.SkiData{
		Lifts:  map[string][]models.Lift{"FLEGERE": {lift("FLEGERE", "Index", "tsd", models.StatusOpen)}},
		Pistes: map[string][]models.Piste{},
	}

	out := Normalise(raw)
	if len(out.Lifts["FLEGERE"]) != 1 {
		t.Error("lowercase lift type should classify as a lift")
	}
}

func TestNormalise_Idempotent(t *testing.T) {
	raw := &models.SkiData{
		Lifts: map[string][]models.Lift{
			"BREVENT": {
				lift("BREVENT", "Planpraz", "TC", models.StatusOpen),
				lift("BREVENT", "Planpraz", "TC", models.StatusClosed),
				lift("BREVENT", "Cornu", "TSD", models.StatusClosed),
				lift("BREVENT", "Luge Alpine", "LUGE", models.StatusOpen),
			},
		},
		Pistes: map[string][]models.Piste{
			"BREVENT": {
				piste("BREVENT", "Charles Bozon", models.DifficultyBlack, models.StatusOpen),
				piste("BREVENT", "Charles Bozon", models.DifficultyBlack, models.StatusClosed),
			},
		},
	}

	once := Normalise(raw)
	twice := Normalise(once)

	if !reflect.DeepEqual(once, twice) {
		t.Error("normalisation should be idempotent on already-normalised input")
	}
}

func TestSummarise_BucketsAndInvariants(t *testing.T) {
	lifts := map[string][]models.Lift{
		"A": {
			lift("A", "l1", "TC", models.StatusOpen),
			lift("A", "l2", "TS", models.StatusClosed),
			lift("A", "l3", "TK", models.StatusOpen),
		},
	}
	unknown := models.PisteDifficulty("X")
	pistes := map[string][]models.Piste{
		"A": {
			piste("A", "p1", models.DifficultyGreen, models.StatusOpen),
			piste("A", "p2", models.DifficultyBlue, models.StatusClosed),
			piste("A", "p3", models.DifficultyRed, models.StatusOpen),
			piste("A", "p4", models.DifficultyBlack, models.StatusOpen),
			{Sector: "A", Name: "p5", Difficulty: nil, Status: models.StatusOpen},
			{Sector: "A", Name: "p6", Difficulty: &unknown, Status: models.StatusOpen},
		},
	}

	got := Summarise(lifts, pistes)

	if got.LiftsOpen != 2 || got.LiftsTotal != 3 {
		t.Errorf("lifts: got %d/%d, want 2/3", got.LiftsOpen, got.LiftsTotal)
	}

	want := models.PistesByDifficulty{
		Green: models.OpenTotal{Open: 1, Total: 1},
		Blue:  models.OpenTotal{Open: 0, Total: 1},
		Red:   models.OpenTotal{Open: 1, Total: 1},
		Black: models.OpenTotal{Open: 1, Total: 1},
	}
	if got.PistesByDifficulty != want {
		t.Errorf("piste buckets: got %+v, want %+v", got.PistesByDifficulty, want)
	}

	// open <= total everywhere
	if got.LiftsOpen > got.LiftsTotal {
		t.Error("lifts_open exceeds lifts_total")
	}
	for _, b := range []models.OpenTotal{want.Green, want.Blue, want.Red, want.Black} {
		if b.Open > b.Total {
			t.Errorf("bucket open %d exceeds total %d", b.Open, b.Total)
		}
	}
}
