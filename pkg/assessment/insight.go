package assessment

import "strings"

// InsightType is the qualitative bucket of a category score.
type InsightType string

const (
	Strength  InsightType = "Strength"
	BlindSpot InsightType = "Blind Spot"
	Neutral   InsightType = "Neutral"
)

const (
	StrengthThreshold  = 70.0
	BlindSpotThreshold = 40.0
)

var insightDescriptions = map[InsightType]string{
	Strength:  "This is a strong foundation to build on.",
	BlindSpot: "This pattern may create misunderstandings.",
	Neutral:   "Balanced area with room for awareness.",
}

// Suggestion is shared by every insight.
const Suggestion = "Consider a small experiment this week to shift this pattern by 1%."

// Insight is the derived label of one category.
type Insight struct {
	Category    Category    `json:"category"`
	Label       string      `json:"label"`
	Type        InsightType `json:"type"`
	Description string      `json:"description"`
	Suggestion  string      `json:"suggestion"`
	Score       float64     `json:"score"`
}

// Classify buckets a score. Both thresholds are exclusive.
func Classify(score float64) InsightType {
	switch {
	case score > StrengthThreshold:
		return Strength
	case score < BlindSpotThreshold:
		return BlindSpot
	default:
		return Neutral
	}
}

// Describe returns the fixed description of an insight type.
func Describe(t InsightType) string {
	return insightDescriptions[t]
}

// GenerateInsights derives one insight per category. The RGI has none.
func GenerateInsights(result *ResultBundle) []Insight {
	if result == nil {
		return nil
	}
	insights := make([]Insight, 0, len(result.Categories))
	for _, cs := range result.Categories {
		t := Classify(cs.Score)
		insights = append(insights, Insight{
			Category:    cs.Category,
			Label:       cs.Category.Label(),
			Type:        t,
			Description: Describe(t),
			Suggestion:  Suggestion,
			Score:       cs.Score,
		})
	}
	return insights
}

// ReflectionPrompt answers the dashboard "Generate Insight" request with a
// short keyword-driven message about the free-text reflection.
func ReflectionPrompt(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "emotion"):
		return "Your reflection highlights growth in Emotional Awareness."
	case strings.Contains(lower, "communication"):
		return "This ties to your Communication Style patterns."
	default:
		return "Balanced reflection – patterns evolve as you grow."
	}
}
