package conditions

import (
	"fmt"
	"sort"
	"time"

	"github.com/patcharlton/chamonix-ski-status/internal/models"
)

// Priority orders insights on the dashboard.
type Priority int

const (
	PriorityHigh Priority = iota
	PriorityMedium
	PriorityLow
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	}
	return "low"
}

func (p Priority) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Insight is one prioritized condition call-out.
type Insight struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Priority    Priority `json:"priority"`
}

// maxInsights caps the dashboard list; lower-priority insights past the cap
// are dropped regardless of dimension.
const maxInsights = 4

// GenerateInsights evaluates the fixed threshold rules across visibility,
// temperature, wind, snow quality, avalanche risk, foehn, and base depth. Each
// dimension contributes at most one insight; the list is sorted high→low and
// truncated to four. Returns nil when there is no weather data.
func GenerateInsights(stations []models.WeatherStation, now time.Time) []Insight {
	c, ok := Analyze(stations, now)
	if !ok {
		return nil
	}

	qualities := make(map[string]bool)
	for _, w := range stations {
		if w.SnowQuality != nil {
			qualities[*w.SnowQuality] = true
		}
	}
	maxFresh := 0
	for _, w := range stations {
		if w.LastSnowfallCm != nil && *w.LastSnowfallCm > maxFresh {
			maxFresh = *w.LastSnowfallCm
		}
	}

	var insights []Insight

	// Visibility
	switch {
	case c.MaxWindKmh > 50:
		insights = append(insights, Insight{
			Title:       "Whiteout Risk",
			Description: "Strong winds creating poor visibility at altitude. Yellow or orange lens goggles essential. Stick to tree-lined runs at Les Houches if possible.",
			Category:    "visibility",
			Priority:    PriorityHigh,
		})
	case c.MaxWindKmh > 35 || c.RecentSnowfall:
		insights = append(insights, Insight{
			Title:       "Flat Light Expected",
			Description: "Reduced contrast on the slopes today. Bring yellow, orange or pink lens goggles to help see terrain features. Avoid steep unfamiliar runs.",
			Category:    "visibility",
			Priority:    PriorityMedium,
		})
	default:
		insights = append(insights, Insight{
			Title:       "Good Visibility",
			Description: "Clear conditions expected. Dark or mirror lens goggles recommended for bright snow glare.",
			Category:    "visibility",
			Priority:    PriorityLow,
		})
	}

	// Temperature
	switch {
	case c.MinMorningTempC < -15:
		insights = append(insights, Insight{
			Title:       "Extreme Cold",
			Description: fmt.Sprintf("Summit temps down to %.0f°C. Add an extra base layer, cover all exposed skin, and take regular warming breaks. Risk of frostbite on chairlifts.", c.MinMorningTempC),
			Category:    "temperature",
			Priority:    PriorityHigh,
		})
	case c.MinMorningTempC < -10:
		insights = append(insights, Insight{
			Title:       "Very Cold",
			Description: fmt.Sprintf("Temperatures around %.0f°C. Wear a good base layer, bring hand warmers, and cover your face on chairlifts. The cold keeps snow in great condition.", c.MeanMorningTempC),
			Category:    "temperature",
			Priority:    PriorityMedium,
		})
	case c.MeanMorningTempC > 5:
		insights = append(insights, Insight{
			Title:       "Warm & Sunny",
			Description: fmt.Sprintf("Mild temperatures around %.0f°C. Snow will soften quickly after 11am. Ski early for best conditions, apply sunscreen and stay hydrated.", c.MeanMorningTempC),
			Category:    "temperature",
			Priority:    PriorityMedium,
		})
	case c.MeanMorningTempC > 0:
		insights = append(insights, Insight{
			Title:       "Spring-like Conditions",
			Description: "Temperatures hovering around freezing. Dress in layers you can remove. Morning snow will be firm, softening through the day.",
			Category:    "temperature",
			Priority:    PriorityLow,
		})
	}

	// Wind
	switch {
	case c.MaxWindKmh > 60:
		insights = append(insights, Insight{
			Title:       "Severe Wind",
			Description: fmt.Sprintf("Gusts up to %.0fkm/h at altitude. Expect lift closures at exposed areas. Wind chill will be brutal - cover all skin and brace on chairlifts.", c.MaxWindKmh),
			Category:    "wind",
			Priority:    PriorityHigh,
		})
	case c.MaxWindKmh > 40:
		insights = append(insights, Insight{
			Title:       "Strong Winds",
			Description: fmt.Sprintf("Wind speeds reaching %.0fkm/h. Some exposed lifts may close. Stay low if upper lifts are running but miserable. Watch for wind-loaded slopes off-piste.", c.MaxWindKmh),
			Category:    "wind",
			Priority:    PriorityMedium,
		})
	case c.MeanWindKmh > 25:
		insights = append(insights, Insight{
			Title:       "Breezy",
			Description: "Moderate winds creating some drift. Good skiing but bring a buff for chairlifts. Off-piste skiers should check for wind slab on lee slopes.",
			Category:    "wind",
			Priority:    PriorityLow,
		})
	}

	// Snow quality
	switch {
	case qualities[models.SnowFresh] && maxFresh > 20 && c.RecentSnowfall:
		insights = append(insights, Insight{
			Title:       "Fresh Powder!",
			Description: fmt.Sprintf("%dcm of fresh snow! Get there early for untracked runs. Powder in Chamonix settles fast - today and tomorrow are prime. Grands Montets for best off-piste access.", maxFresh),
			Category:    "snow",
			Priority:    PriorityHigh,
		})
	case qualities[models.SnowFresh] && maxFresh > 10:
		insights = append(insights, Insight{
			Title:       "Good Fresh Snow",
			Description: fmt.Sprintf("%dcm of recent snowfall improving conditions. Some fresh lines still available on north-facing slopes above 2500m. Pistes will be in excellent shape.", maxFresh),
			Category:    "snow",
			Priority:    PriorityMedium,
		})
	case qualities[models.SnowWet]:
		insights = append(insights, Insight{
			Title:       "Heavy Wet Snow",
			Description: "Humid snow conditions making for sticky, energy-sapping skiing. Wax your skis for wet snow. Best skiing before 11am when temperatures rise.",
			Category:    "snow",
			Priority:    PriorityMedium,
		})
	case qualities[models.SnowCrust]:
		insights = append(insights, Insight{
			Title:       "Crusty Conditions",
			Description: "Breakable crust has formed on off-piste snow. Stick to groomed runs unless you enjoy a challenge. Crust can be ankle-breaking if you break through.",
			Category:    "snow",
			Priority:    PriorityMedium,
		})
	case qualities[models.SnowTransformed]:
		insights = append(insights, Insight{
			Title:       "Transformed Snow",
			Description: "Snow has gone through melt-freeze cycles. Morning will be firm or icy, softening by midday. Classic spring skiing - time your runs by aspect and elevation.",
			Category:    "snow",
			Priority:    PriorityLow,
		})
	}

	// Avalanche
	switch {
	case c.MaxAvalancheRisk >= 4:
		insights = append(insights, Insight{
			Title:       "High Avalanche Danger",
			Description: fmt.Sprintf("Avalanche risk at %d/5. Stay on marked pistes only. Natural and human-triggered avalanches likely. Off-piste skiing strongly discouraged today.", c.MaxAvalancheRisk),
			Category:    "avalanche",
			Priority:    PriorityHigh,
		})
	case c.MaxAvalancheRisk == 3:
		insights = append(insights, Insight{
			Title:       "Considerable Avalanche Risk",
			Description: "Avalanche risk at 3/5. Off-piste requires experience, proper equipment (transceiver, probe, shovel), and ideally a guide. Avoid steep slopes over 30°.",
			Category:    "avalanche",
			Priority:    PriorityMedium,
		})
	}

	// Foehn
	if c.FoehnActive {
		insights = append(insights, Insight{
			Title:       "Foehn Wind Active",
			Description: "Warm southerly foehn wind is blowing. Temperatures rising unusually, snow conditions deteriorating rapidly. Increased avalanche risk on south-facing slopes.",
			Category:    "foehn",
			Priority:    PriorityHigh,
		})
	}

	// Base depth
	switch {
	case c.MeanSnowDepthCm > 150:
		insights = append(insights, Insight{
			Title:       "Excellent Snow Base",
			Description: fmt.Sprintf("Strong base of %dcm across the resort. Full terrain coverage and good conditions even on south-facing slopes.", c.MeanSnowDepthCm),
			Category:    "base",
			Priority:    PriorityLow,
		})
	case c.MeanSnowDepthCm < 50:
		insights = append(insights, Insight{
			Title:       "Thin Snow Cover",
			Description: fmt.Sprintf("Limited base of %dcm. Watch for rocks and obstacles. Stick to well-covered north-facing runs.", c.MeanSnowDepthCm),
			Category:    "base",
			Priority:    PriorityMedium,
		})
	}

	sort.SliceStable(insights, func(i, j int) bool {
		return insights[i].Priority < insights[j].Priority
	})
	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}
	return insights
}

// OverallCondition is the one-line condition badge for the dashboard header.
func OverallCondition(stations []models.WeatherStation, now time.Time) string {
	c, ok := Analyze(stations, now)
	if !ok {
		return "No Data"
	}
	switch {
	case c.MaxWindKmh > 50 || c.MaxAvalancheRisk >= 4:
		return "Challenging"
	case c.SnowQuality == models.SnowFresh && c.FreshSnowCm > 20:
		return "Powder Day"
	case c.MeanMorningTempC > 5:
		return "Spring Skiing"
	case c.MeanMorningTempC < -10:
		return "Cold & Crisp"
	case c.MaxWindKmh > 35:
		return "Windy"
	}
	return "Great Conditions"
}
