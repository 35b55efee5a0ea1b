package models

import "strings"

// LiftStatus is the scraped open/closed state code.
type LiftStatus string

const (
	StatusOpen    LiftStatus = "O"
	StatusClosed  LiftStatus = "F"
	StatusPlanned LiftStatus = "P"
)

// PisteDifficulty is the French colour code for a marked run.
type PisteDifficulty string

const (
	DifficultyGreen PisteDifficulty = "V"
	DifficultyBlue  PisteDifficulty = "B"
	DifficultyRed   PisteDifficulty = "R"
	DifficultyBlack PisteDifficulty = "N"
)

// Label returns the English colour name, or "" for an unknown code.
func (d PisteDifficulty) Label() string {
	switch d {
	case DifficultyGreen:
		return "Green"
	case DifficultyBlue:
		return "Blue"
	case DifficultyRed:
		return "Red"
	case DifficultyBlack:
		return "Black"
	}
	return ""
}

// LiftType is a recognized mechanical uplift category. Scraped records whose
// type is not one of these (viewing platforms, luge tracks, spelled-out
// "TELECABINE" variants) are reclassified as attractions during normalisation.
type LiftType string

const (
	LiftCableCar    LiftType = "TPH" // téléphérique
	LiftGondola     LiftType = "TC"  // télécabine
	LiftDetachable  LiftType = "TSD" // télésiège débrayable
	LiftChair       LiftType = "TS"  // télésiège
	LiftDrag        LiftType = "TK"  // téléski
	LiftFunicular   LiftType = "FUNI"
	LiftMagicCarpet LiftType = "TAPIS"
	LiftElevator    LiftType = "ASCENSEUR"
)

// ParseLiftType matches a raw scraped type string against the recognized
// transport set. Matching is case-insensitive; ok is false for anything else.
func ParseLiftType(raw string) (LiftType, bool) {
	switch LiftType(strings.ToUpper(raw)) {
	case LiftCableCar:
		return LiftCableCar, true
	case LiftGondola:
		return LiftGondola, true
	case LiftDetachable:
		return LiftDetachable, true
	case LiftChair:
		return LiftChair, true
	case LiftDrag:
		return LiftDrag, true
	case LiftFunicular:
		return LiftFunicular, true
	case LiftMagicCarpet:
		return LiftMagicCarpet, true
	case LiftElevator:
		return LiftElevator, true
	}
	return "", false
}

// Snow quality codes as reported by the resort (French).
const (
	SnowFresh       = "FRAICHE"
	SnowSoft        = "DOUCE"
	SnowWet         = "HUMIDE"
	SnowCrust       = "CROUTE"
	SnowTransformed = "TRANSFORMÉE"
)

// SnowQualityLabel translates a quality code for display. Unknown codes pass
// through unchanged.
func SnowQualityLabel(quality string) string {
	switch strings.ToUpper(quality) {
	case SnowFresh:
		return "Fresh"
	case SnowSoft:
		return "Soft"
	case SnowWet:
		return "Wet"
	case SnowCrust:
		return "Crusty"
	case SnowTransformed:
		return "Transformed"
	}
	return quality
}

// WeatherStation is one scraped station reading. The collection represents a
// single scrape at a single point in time; nothing here is mutated after
// normalisation.
type WeatherStation struct {
	LocationName     string   `json:"location_name"`
	ElevationM       int      `json:"elevation_m"`
	TempMorningC     *float64 `json:"temp_morning_c"`
	TempAfternoonC   *float64 `json:"temp_afternoon_c"`
	WeatherCode      *string  `json:"weather_code_morning"`
	WindSpeedKmh     *float64 `json:"wind_speed_kmh"`
	WindDirection    *string  `json:"wind_direction"`
	SnowDepthCm      *int     `json:"snow_depth_cm"`
	SnowQuality      *string  `json:"snow_quality"`
	RainSnowLimitM   *int     `json:"rain_snow_limit_m"`
	LastSnowfallCm   *int     `json:"last_snowfall_cm"`
	LastSnowfallDate *string  `json:"last_snowfall_date"`
	AvalancheRisk    *int     `json:"avalanche_risk"`
}

// Lift identity is (sector, name); duplicates collapse to the first occurrence
// during normalisation.
type Lift struct {
	Sector        string     `json:"sector"`
	Name          string     `json:"lift_name"`
	Type          string     `json:"lift_type"`
	Status        LiftStatus `json:"status"`
	OpeningTime   string     `json:"opening_time"`
	ClosingTime   string     `json:"closing_time"`
	StatusMessage *string    `json:"status_message"`
}

type Piste struct {
	Sector        string           `json:"sector"`
	Name          string           `json:"piste_name"`
	Difficulty    *PisteDifficulty `json:"difficulty"`
	Type          string           `json:"type"`
	Status        LiftStatus       `json:"status"`
	GroomingLevel *int             `json:"grooming_level"`
	StatusMessage *string          `json:"status_message"`
}

// Attraction is a lift-like record whose transport type is outside the
// recognized set. Same shape as Lift, never counted in lift totals.
type Attraction struct {
	Sector        string     `json:"sector"`
	Name          string     `json:"lift_name"`
	Type          string     `json:"lift_type"`
	Status        LiftStatus `json:"status"`
	OpeningTime   string     `json:"opening_time"`
	ClosingTime   string     `json:"closing_time"`
	StatusMessage *string    `json:"status_message"`
}

type OpenTotal struct {
	Open  int `json:"open"`
	Total int `json:"total"`
}

type PistesByDifficulty struct {
	Green OpenTotal `json:"green"`
	Blue  OpenTotal `json:"blue"`
	Red   OpenTotal `json:"red"`
	Black OpenTotal `json:"black"`
}

// CalculatedSummary is fully recomputed on every normalisation pass, never
// updated incrementally.
type CalculatedSummary struct {
	LiftsOpen          int                `json:"lifts_open"`
	LiftsTotal         int                `json:"lifts_total"`
	PistesByDifficulty PistesByDifficulty `json:"pistes_by_difficulty"`
}

type Metadata struct {
	Resort          string `json:"resort"`
	Source          string `json:"source"`
	ScrapeTimestamp string `json:"scrape_timestamp"`
	SourceURL       string `json:"source_url"`
}

// SkiData is one full resort snapshot, raw or normalised depending on where
// it sits in the pipeline. Sector names key the lift/piste maps.
type SkiData struct {
	Metadata          Metadata                `json:"metadata"`
	Weather           []WeatherStation        `json:"weather"`
	Lifts             map[string][]Lift       `json:"lifts"`
	Pistes            map[string][]Piste      `json:"pistes"`
	Attractions       map[string][]Attraction `json:"attractions,omitempty"`
	CalculatedSummary CalculatedSummary       `json:"calculated_summary"`
	Summary           SnapshotSummary         `json:"summary"`
}

type SnapshotSummary struct {
	LastUpdateTimestamp *string `json:"last_update_timestamp"`
}

// AvalancheRiskLabel maps the 1-5 European danger scale to its English name.
func AvalancheRiskLabel(risk int) string {
	switch risk {
	case 1:
		return "Low"
	case 2:
		return "Moderate"
	case 3:
		return "Considerable"
	case 4:
		return "High"
	case 5:
		return "Very High"
	}
	return "Unknown"
}
