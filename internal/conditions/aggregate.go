package conditions

import (
	"sort"
	"strings"
	"time"

	"github.com/patcharlton/chamonix-ski-status/internal/models"
)

// BaseCondition categorizes the dominant snow surface across the resort.
type BaseCondition string

const (
	BaseIcy          BaseCondition = "icy"
	BaseGroomed      BaseCondition = "groomed"
	BasePackedPowder BaseCondition = "packed_powder"
	BasePowder       BaseCondition = "powder"
	BaseWetSpring    BaseCondition = "wet_spring"
	BaseVariable     BaseCondition = "variable"
)

// Visibility categorizes expected light conditions on the hill.
type Visibility string

const (
	VisibilityClear     Visibility = "clear"
	VisibilityFlatLight Visibility = "flat_light"
	VisibilityWhiteout  Visibility = "whiteout"
)

// snowfallDateLayout is the locale format the scraper reports dates in.
const snowfallDateLayout = "02/01/2006"

// Fallback ages when the snowfall date is today or absent.
const (
	todaySnowfallHours   = 12
	defaultSnowfallHours = 72
)

// ResortConditions is the resort-wide aggregate the gear and insight engines
// consume. Derived once per snapshot from the full station collection.
type ResortConditions struct {
	MeanMorningTempC   float64
	MinMorningTempC    float64
	MaxWindKmh         float64
	MeanWindKmh        float64
	FreshSnowCm        int
	SnowQuality        string
	MeanSnowDepthCm    int
	MaxAvalancheRisk   int
	HoursSinceSnowfall int
	RecentSnowfall     bool // snowfall dated today
	Base               BaseCondition
	Visibility         Visibility
	PowderDay          bool
	FoehnActive        bool
	CornSnow           bool
}

// Analyze derives resort-wide conditions from a station collection. ok is
// false when the collection is empty: callers get an explicit "no data" state
// instead of a sentinel from a max over nothing.
func Analyze(stations []models.WeatherStation, now time.Time) (ResortConditions, bool) {
	if len(stations) == 0 {
		return ResortConditions{}, false
	}

	var c ResortConditions

	var tempSum, windSum, depthSum float64
	c.MinMorningTempC = 1000
	for _, w := range stations {
		var temp float64
		if w.TempMorningC != nil {
			temp = *w.TempMorningC
		}
		tempSum += temp
		if temp < c.MinMorningTempC {
			c.MinMorningTempC = temp
		}
		if w.WindSpeedKmh != nil {
			windSum += *w.WindSpeedKmh
			if *w.WindSpeedKmh > c.MaxWindKmh {
				c.MaxWindKmh = *w.WindSpeedKmh
			}
		}
		if w.SnowDepthCm != nil {
			depthSum += float64(*w.SnowDepthCm)
		}
		if w.AvalancheRisk != nil && *w.AvalancheRisk > c.MaxAvalancheRisk {
			c.MaxAvalancheRisk = *w.AvalancheRisk
		}
	}
	n := float64(len(stations))
	c.MeanMorningTempC = tempSum / n
	c.MeanWindKmh = windSum / n
	c.MeanSnowDepthCm = int(depthSum/n + 0.5)

	mid := midElevationStation(stations)
	if mid.LastSnowfallCm != nil {
		c.FreshSnowCm = *mid.LastSnowfallCm
	}
	if mid.SnowQuality != nil {
		c.SnowQuality = strings.ToUpper(*mid.SnowQuality)
	}

	c.HoursSinceSnowfall = hoursSinceSnowfall(mid.LastSnowfallDate, now)
	c.RecentSnowfall = c.HoursSinceSnowfall <= todaySnowfallHours

	c.PowderDay = c.SnowQuality == models.SnowFresh && c.FreshSnowCm > 15 && c.HoursSinceSnowfall < 48
	c.Base = classifyBase(c)
	c.Visibility = classifyVisibility(c)

	var windDir string
	if mid.WindDirection != nil {
		windDir = strings.ToUpper(*mid.WindDirection)
	}
	c.FoehnActive = (strings.Contains(windDir, "SUD") || windDir == "S") && c.MeanMorningTempC > 0

	// Corn snow needs a spring freeze-thaw cycle: warm mean, but the lowest
	// station (highest temperature) still froze overnight.
	month := now.Month()
	spring := month >= time.March && month <= time.May
	low := lowestStation(stations)
	var lowTemp float64
	if low.TempMorningC != nil {
		lowTemp = *low.TempMorningC
	}
	c.CornSnow = spring && c.MeanMorningTempC > 0 && lowTemp < 0

	return c, true
}

// midElevationStation returns the middle station by descending elevation, the
// best single proxy for conditions on the main skiable terrain.
func midElevationStation(stations []models.WeatherStation) models.WeatherStation {
	sorted := make([]models.WeatherStation, len(stations))
	copy(sorted, stations)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ElevationM > sorted[j].ElevationM
	})
	return sorted[len(sorted)/2]
}

func lowestStation(stations []models.WeatherStation) models.WeatherStation {
	low := stations[0]
	for _, w := range stations[1:] {
		if w.ElevationM < low.ElevationM {
			low = w
		}
	}
	return low
}

// hoursSinceSnowfall estimates snow age from the scraped dd/mm/yyyy date.
// Today reads as 12 hours; a missing or unparseable date as 72 ("old snow").
func hoursSinceSnowfall(date *string, now time.Time) int {
	if date == nil || *date == "" {
		return defaultSnowfallHours
	}
	if *date == now.Format(snowfallDateLayout) {
		return todaySnowfallHours
	}
	snowDate, err := time.ParseInLocation(snowfallDateLayout, *date, now.Location())
	if err != nil {
		return defaultSnowfallHours
	}
	hours := int(now.Sub(snowDate).Hours())
	if hours < 0 {
		return defaultSnowfallHours
	}
	return hours
}

func classifyBase(c ResortConditions) BaseCondition {
	switch {
	case c.PowderDay:
		return BasePowder
	case c.SnowQuality == models.SnowFresh && c.FreshSnowCm > 5:
		return BasePackedPowder
	case c.SnowQuality == models.SnowWet || c.MeanMorningTempC > 2:
		return BaseWetSpring
	case c.MeanMorningTempC < -8 && c.SnowQuality != models.SnowFresh:
		return BaseIcy
	case c.SnowQuality == models.SnowTransformed || c.SnowQuality == models.SnowCrust:
		return BaseVariable
	}
	return BaseGroomed
}

func classifyVisibility(c ResortConditions) Visibility {
	switch {
	case c.MaxWindKmh > 50 || (c.FreshSnowCm > 20 && c.HoursSinceSnowfall < 6):
		return VisibilityWhiteout
	case c.MaxWindKmh > 30:
		return VisibilityFlatLight
	}
	return VisibilityClear
}
