package conditions

import "fmt"

// Terrain is the user's preferred terrain for the day.
type Terrain string

const (
	TerrainPiste    Terrain = "piste"
	TerrainOffPiste Terrain = "off_piste"
	TerrainMixed    Terrain = "mixed"
	TerrainPark     Terrain = "park"
)

// Skill is the user's self-assessed ability.
type Skill string

const (
	SkillBeginner     Skill = "beginner"
	SkillIntermediate Skill = "intermediate"
	SkillAdvanced     Skill = "advanced"
	SkillExpert       Skill = "expert"
)

// Ownership distinguishes renters from ski owners for tip selection.
type Ownership string

const (
	OwnershipRental Ownership = "rental"
	OwnershipOwns   Ownership = "owns"
)

// Confidence grades how much the conditions undermine the recommendation.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Preferences are the user-supplied inputs to gear sizing.
type Preferences struct {
	Terrain   Terrain
	Skill     Skill
	Ownership Ownership
	HeightCm  int
}

// GearRecommendation is the sized ski suggestion for today's conditions.
type GearRecommendation struct {
	Category    string     `json:"category"`
	WaistMinMM  int        `json:"waist_min_mm"`
	WaistMaxMM  int        `json:"waist_max_mm"`
	LengthMinCm int        `json:"length_min_cm"`
	LengthMaxCm int        `json:"length_max_cm"`
	Profile     string     `json:"profile"`
	Reasoning   []string   `json:"reasoning"`
	Tips        []string   `json:"tips"`
	Area        string     `json:"area,omitempty"`
	Timing      string     `json:"timing,omitempty"`
	Confidence  Confidence `json:"confidence"`
}

// Waist width hard limits; nothing sensible exists outside them.
const (
	minWaistMM = 68
	maxWaistMM = 125
)

// baseWidth gives the starting waist and category for each base condition.
func baseWidth(base BaseCondition) (int, string) {
	switch base {
	case BaseIcy:
		return 75, "Race/Carving"
	case BasePackedPowder:
		return 88, "All-Mountain"
	case BasePowder:
		return 105, "Freeride"
	case BaseWetSpring:
		return 85, "All-Mountain"
	case BaseVariable:
		return 95, "All-Mountain Wide"
	}
	return 82, "Carving/Piste"
}

// targetAltitude estimates where each terrain preference actually gets skied;
// it gates the powder-age decay (leftover powder survives above 2500m).
func targetAltitude(terrain Terrain) int {
	switch terrain {
	case TerrainOffPiste:
		return 2800
	case TerrainMixed:
		return 2400
	case TerrainPark:
		return 2000
	}
	return 2100
}

// RecommendGear sizes a ski for the aggregated conditions and user
// preferences. Deterministic: identical inputs yield identical output.
func RecommendGear(c ResortConditions, prefs Preferences) GearRecommendation {
	width, category := baseWidth(c.Base)
	var reasoning, tips []string

	switch c.Base {
	case BaseIcy:
		reasoning = append(reasoning, "Narrow waist for maximum edge grip on hard snow")
		tips = append(tips, "Sharp edges are critical - get a tune")
	case BaseWetSpring:
		reasoning = append(reasoning, "Medium width handles soft spring snow")
		tips = append(tips, "Apply warm-weather wax")
	case BaseVariable:
		reasoning = append(reasoning, "Versatile width for breakable crust and mixed surfaces")
	case BasePowder, BasePackedPowder:
		// fresh-snow reasoning added by the tier bumps below
	default:
		reasoning = append(reasoning, "Standard piste ski for groomed conditions")
	}

	// Fresh snow raises the floor in tiers and can upgrade the category.
	switch {
	case c.FreshSnowCm >= 40:
		width, category = raiseFloor(width, 112, category, "Powder")
		reasoning = append(reasoning, fmt.Sprintf("%dcm fresh powder - go as wide as you can", c.FreshSnowCm))
	case c.FreshSnowCm >= 30:
		width, category = raiseFloor(width, 108, category, "Powder")
		reasoning = append(reasoning, fmt.Sprintf("%dcm fresh powder - full rocker for flotation", c.FreshSnowCm))
	case c.FreshSnowCm >= 15:
		width, category = raiseFloor(width, 98, category, "Freeride")
		reasoning = append(reasoning, fmt.Sprintf("%dcm recent snow - freeride width ideal", c.FreshSnowCm))
	case c.FreshSnowCm >= 5:
		width, category = raiseFloor(width, 88, category, "All-Mountain")
		reasoning = append(reasoning, fmt.Sprintf("%dcm fresh - extra width helps off the groomers", c.FreshSnowCm))
	}

	// Chamonix maritime snow is denser than continental; everything skis a
	// touch narrower here.
	width -= 5
	reasoning = append(reasoning, "Chamonix maritime snow is denser than continental")

	if c.MeanMorningTempC < -12 {
		width += 5
		reasoning = append(reasoning, "Extreme cold keeps snow dry and light")
	} else if c.MeanMorningTempC >= -2 && c.MeanMorningTempC <= 2 {
		width -= 5
	}

	// Powder settles fast below the glaciers; decay the width once it has.
	if c.FreshSnowCm >= 15 && c.HoursSinceSnowfall > 48 && targetAltitude(prefs.Terrain) < 2500 {
		width -= 5
		category = downgradeCategory(category)
		reasoning = append(reasoning, "Powder transforms in 24-48h in Chamonix - snow has settled")
	}

	if c.MaxWindKmh > 40 && c.FreshSnowCm > 10 && c.HoursSinceSnowfall < 48 {
		width -= 5
		tips = append(tips, "Strong winds - check lee slopes for wind slab")
	}

	if c.Visibility != VisibilityClear {
		width -= 5
	}

	// Terrain and skill clamps run last, before the hard limits.
	switch prefs.Terrain {
	case TerrainPiste:
		if width > 90 {
			width = 90
		}
	case TerrainOffPiste:
		if c.Base != BaseIcy && width < 95 {
			width = 95
			reasoning = append(reasoning, "Off-piste needs flotation even between storms")
		}
	case TerrainPark:
		if width < 85 {
			width = 85
		}
		if width > 95 {
			width = 95
		}
		category = "Park/Freestyle"
	}
	if prefs.Skill == SkillBeginner && width > 85 {
		width = 85
		reasoning = append(reasoning, "Narrower waist is easier to tip edge to edge while learning")
	}

	if width < minWaistMM {
		width = minWaistMM
	}
	if width > maxWaistMM {
		width = maxWaistMM
	}

	profile, heavyRocker := profileForWidth(width)

	length := prefs.HeightCm + skillLengthOffset(prefs.Skill)
	if prefs.Terrain == TerrainPiste {
		length -= 5
	} else if prefs.Terrain == TerrainOffPiste || c.Base == BasePowder {
		length += 5
	}
	if heavyRocker {
		length += 3
	}

	rec := GearRecommendation{
		Category:    category,
		WaistMinMM:  width - 3,
		WaistMaxMM:  width + 3,
		LengthMinCm: length - 3,
		LengthMaxCm: length + 3,
		Profile:     profile,
		Reasoning:   reasoning,
		Confidence:  ConfidenceHigh,
	}

	rec.Area, rec.Timing = areaAndTiming(c)
	rec.Tips = append(tips, situationalTips(c, prefs)...)
	rec.Confidence = gradeConfidence(c, prefs)

	return rec
}

func raiseFloor(width, floor int, category, upgraded string) (int, string) {
	if width < floor {
		return floor, upgraded
	}
	return width, category
}

func downgradeCategory(category string) string {
	switch category {
	case "Powder":
		return "Freeride"
	case "Freeride":
		return "All-Mountain"
	}
	return category
}

// profileForWidth maps final waist width to a shape profile. The bool reports
// a heavily rockered shape, which adds running length.
func profileForWidth(width int) (string, bool) {
	switch {
	case width < 80:
		return "Full camber or minimal tip rocker", false
	case width < 95:
		return "Camber with tip rocker", false
	case width < 105:
		return "Rocker-camber-rocker", false
	}
	return "Heavy rocker (20%+ tip/tail)", true
}

func skillLengthOffset(skill Skill) int {
	switch skill {
	case SkillBeginner:
		return -12
	case SkillAdvanced:
		return -2
	case SkillExpert:
		return 2
	}
	return -7
}

// areaAndTiming is a fixed decision table over the aggregate conditions.
// First match wins, worst weather first.
func areaAndTiming(c ResortConditions) (area, timing string) {
	switch {
	case c.Visibility == VisibilityWhiteout:
		return "Tree-lined runs at Les Houches", "Stay low until visibility improves"
	case c.PowderDay:
		return "Grands Montets for the best off-piste access", "First lifts for untracked lines"
	case c.FoehnActive:
		return "North-facing slopes away from the foehn", "Ski early before the snow deteriorates"
	case c.CornSnow:
		return "Sunny aspects as they soften", "Follow the sun - east faces morning, south midday, west afternoon"
	case c.Base == BaseWetSpring:
		return "", "Best before 11am - snow turns heavy once it warms"
	case c.Base == BaseIcy:
		return "Groomed south-facing pistes", "Mid-morning onwards, once the sun takes the edge off"
	}
	return "", ""
}

func situationalTips(c ResortConditions, prefs Preferences) []string {
	var tips []string

	if c.MaxAvalancheRisk >= 4 {
		tips = append(tips, fmt.Sprintf("High avalanche risk (%d/5) - stay on marked runs", c.MaxAvalancheRisk))
	} else if c.MaxAvalancheRisk == 3 && prefs.Terrain != TerrainPiste {
		tips = append(tips, "Considerable avalanche risk - careful route selection, full kit required")
	}

	switch c.Visibility {
	case VisibilityFlatLight:
		tips = append(tips, "Flat light - use orange/yellow lens goggles")
	case VisibilityWhiteout:
		tips = append(tips, "Poor visibility - consider staying on-piste today")
	}

	if c.MeanMorningTempC < -10 {
		tips = append(tips, fmt.Sprintf("Cold day (%.0f°C) - dress warm, snow will be fast", c.MeanMorningTempC))
	}

	if prefs.Ownership == OwnershipRental && c.PowderDay {
		tips = append(tips, "Ask the rental shop for a dedicated powder ski today")
	}

	return tips
}

// gradeConfidence starts high and downgrades on specific triggers; it never
// upgrades.
func gradeConfidence(c ResortConditions, prefs Preferences) Confidence {
	confidence := ConfidenceHigh
	if c.Visibility == VisibilityFlatLight || c.MaxWindKmh > 50 {
		confidence = ConfidenceMedium
	}
	if c.Visibility == VisibilityWhiteout {
		confidence = ConfidenceLow
	}
	if c.MaxAvalancheRisk >= 4 && prefs.Terrain == TerrainOffPiste {
		confidence = ConfidenceLow
	}
	return confidence
}

// ParseTerrain maps a query value to a Terrain, defaulting to mixed.
func ParseTerrain(s string) Terrain {
	switch Terrain(s) {
	case TerrainPiste, TerrainOffPiste, TerrainMixed, TerrainPark:
		return Terrain(s)
	}
	return TerrainMixed
}

// ParseSkill maps a query value to a Skill, defaulting to intermediate.
func ParseSkill(s string) Skill {
	switch Skill(s) {
	case SkillBeginner, SkillIntermediate, SkillAdvanced, SkillExpert:
		return Skill(s)
	}
	return SkillIntermediate
}

// ParseOwnership maps a query value to an Ownership, defaulting to rental.
func ParseOwnership(s string) Ownership {
	if Ownership(s) == OwnershipOwns {
		return OwnershipOwns
	}
	return OwnershipRental
}
