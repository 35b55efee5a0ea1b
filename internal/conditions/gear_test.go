package conditions

import (
	"strings"
	"testing"
)

func TestRecommendGear_PowderDay(t *testing.T) {
	c := ResortConditions{
		Base:               BasePowder,
		FreshSnowCm:        40,
		HoursSinceSnowfall: 12,
		MeanMorningTempC:   -5,
		MaxWindKmh:         10,
		Visibility:         VisibilityClear,
		PowderDay:          true,
		MaxAvalancheRisk:   2,
	}
	prefs := Preferences{Terrain: TerrainOffPiste, Skill: SkillExpert, Ownership: OwnershipOwns, HeightCm: 180}

	got := RecommendGear(c, prefs)

	// 105 base, 40cm floor to 112, -5 density = 107.
	if got.WaistMinMM != 104 || got.WaistMaxMM != 110 {
		t.Errorf("waist = %d-%d, want 104-110", got.WaistMinMM, got.WaistMaxMM)
	}
	if got.Category != "Powder" {
		t.Errorf("category = %q, want Powder", got.Category)
	}
	// 180 +2 expert +5 off-piste +3 heavy rocker = 190.
	if got.LengthMinCm != 187 || got.LengthMaxCm != 193 {
		t.Errorf("length = %d-%d, want 187-193", got.LengthMinCm, got.LengthMaxCm)
	}
	if !strings.Contains(got.Profile, "Heavy rocker") {
		t.Errorf("profile = %q, want heavy rocker", got.Profile)
	}
	if got.Confidence != ConfidenceHigh {
		t.Errorf("confidence = %q, want high", got.Confidence)
	}
	if !strings.Contains(got.Area, "Grands Montets") {
		t.Errorf("area = %q, want Grands Montets pick on a powder day", got.Area)
	}
}

func TestRecommendGear_BeginnerOnPiste(t *testing.T) {
	c := ResortConditions{Base: BaseGroomed, Visibility: VisibilityClear}
	prefs := Preferences{Terrain: TerrainPiste, Skill: SkillBeginner, Ownership: OwnershipRental, HeightCm: 160}

	got := RecommendGear(c, prefs)

	// 82 base, -5 density, -5 near-freezing = 72.
	if got.WaistMinMM != 69 || got.WaistMaxMM != 75 {
		t.Errorf("waist = %d-%d, want 69-75", got.WaistMinMM, got.WaistMaxMM)
	}
	// 160 -12 beginner -5 piste = 143.
	if got.LengthMinCm != 140 || got.LengthMaxCm != 146 {
		t.Errorf("length = %d-%d, want 140-146", got.LengthMinCm, got.LengthMaxCm)
	}
	if !strings.Contains(got.Profile, "Full camber") {
		t.Errorf("profile = %q, want full camber below 80mm", got.Profile)
	}
}

func TestRecommendGear_LowerWaistClamp(t *testing.T) {
	c := ResortConditions{
		Base:             BaseIcy,
		MeanMorningTempC: 0,
		MaxWindKmh:       45,
		Visibility:       VisibilityFlatLight,
	}
	prefs := Preferences{Terrain: TerrainPiste, Skill: SkillIntermediate, Ownership: OwnershipRental, HeightCm: 175}

	got := RecommendGear(c, prefs)

	// 75 base, -5 density, -5 near-freezing, -5 visibility = 60, clamped to 68.
	if got.WaistMinMM != 65 || got.WaistMaxMM != 71 {
		t.Errorf("waist = %d-%d, want 65-71 (clamped to 68 center)", got.WaistMinMM, got.WaistMaxMM)
	}
	if got.WaistMaxMM-got.WaistMinMM != 6 {
		t.Errorf("waist range must be centre ±3, got %d-%d", got.WaistMinMM, got.WaistMaxMM)
	}
	if got.Confidence != ConfidenceMedium {
		t.Errorf("confidence = %q, want medium in flat light", got.Confidence)
	}
}

func TestRecommendGear_PowderDecayDowngradesCategory(t *testing.T) {
	c := ResortConditions{
		Base:               BasePackedPowder,
		FreshSnowCm:        20,
		HoursSinceSnowfall: 60,
		MeanMorningTempC:   -5,
		Visibility:         VisibilityClear,
	}
	prefs := Preferences{Terrain: TerrainMixed, Skill: SkillAdvanced, Ownership: OwnershipOwns, HeightCm: 178}

	got := RecommendGear(c, prefs)

	// 88 base, floor to 98 Freeride, -5 density, -5 settled = 88 All-Mountain.
	if got.Category != "All-Mountain" {
		t.Errorf("category = %q, want All-Mountain after settle downgrade", got.Category)
	}
	if got.WaistMinMM != 85 || got.WaistMaxMM != 91 {
		t.Errorf("waist = %d-%d, want 85-91", got.WaistMinMM, got.WaistMaxMM)
	}
	settled := false
	for _, r := range got.Reasoning {
		if strings.Contains(r, "settled") {
			settled = true
		}
	}
	if !settled {
		t.Errorf("missing settle reasoning in %v", got.Reasoning)
	}
}

func TestRecommendGear_Confidence(t *testing.T) {
	tests := []struct {
		name  string
		conds ResortConditions
		prefs Preferences
		want  Confidence
	}{
		{"clear day", ResortConditions{Visibility: VisibilityClear}, Preferences{Terrain: TerrainMixed}, ConfidenceHigh},
		{"high wind", ResortConditions{Visibility: VisibilityClear, MaxWindKmh: 55}, Preferences{Terrain: TerrainMixed}, ConfidenceMedium},
		{"whiteout", ResortConditions{Visibility: VisibilityWhiteout}, Preferences{Terrain: TerrainPiste}, ConfidenceLow},
		{"avalanche off-piste", ResortConditions{Visibility: VisibilityClear, MaxAvalancheRisk: 4}, Preferences{Terrain: TerrainOffPiste}, ConfidenceLow},
		{"avalanche on-piste", ResortConditions{Visibility: VisibilityClear, MaxAvalancheRisk: 4}, Preferences{Terrain: TerrainPiste}, ConfidenceHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prefs.HeightCm = 175
			if got := RecommendGear(tt.conds, tt.prefs); got.Confidence != tt.want {
				t.Errorf("confidence = %q, want %q", got.Confidence, tt.want)
			}
		})
	}
}

func TestRecommendGear_AvalancheTip(t *testing.T) {
	c := ResortConditions{Visibility: VisibilityClear, MaxAvalancheRisk: 4}
	got := RecommendGear(c, Preferences{Terrain: TerrainOffPiste, Skill: SkillExpert, HeightCm: 180})

	found := false
	for _, tip := range got.Tips {
		if strings.Contains(tip, "avalanche risk (4/5)") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing avalanche tip in %v", got.Tips)
	}
}

func TestParsePreferences_Defaults(t *testing.T) {
	if got := ParseTerrain("heliski"); got != TerrainMixed {
		t.Errorf("ParseTerrain fallback = %q, want mixed", got)
	}
	if got := ParseSkill(""); got != SkillIntermediate {
		t.Errorf("ParseSkill fallback = %q, want intermediate", got)
	}
	if got := ParseOwnership("borrowed"); got != OwnershipRental {
		t.Errorf("ParseOwnership fallback = %q, want rental", got)
	}
	if got := ParseTerrain("off_piste"); got != TerrainOffPiste {
		t.Errorf("ParseTerrain = %q, want off_piste", got)
	}
}
