// Package assessment implements the Relationship Growth Index scoring engine:
// the fixed category list, the two question batteries, per-category scoring
// against a personal baseline, the weighted composite and the insight labels.
package assessment

import "fmt"

// Category is one of the eight fixed relational dimensions.
type Category string

const (
	EmotionalAwareness    Category = "emotional_awareness"
	CommunicationStyle    Category = "communication_style"
	ConflictTendencies    Category = "conflict_tendencies"
	AttachmentPatterns    Category = "attachment_patterns"
	EmpathyResponsiveness Category = "empathy_responsiveness"
	SelfInsight           Category = "self_insight"
	TrustBoundaries       Category = "trust_boundaries"
	StabilityConsistency  Category = "stability_consistency"
)

// Categories lists every category in weight order. RGI weights, question
// ordering and result ordering all follow this slice.
var Categories = []Category{
	EmotionalAwareness,
	CommunicationStyle,
	ConflictTendencies,
	AttachmentPatterns,
	EmpathyResponsiveness,
	SelfInsight,
	TrustBoundaries,
	StabilityConsistency,
}

// Weights is the RGI weight vector, aligned with Categories. Sums to 1.0.
var Weights = []float64{0.15, 0.15, 0.15, 0.10, 0.15, 0.10, 0.10, 0.10}

var categoryLabels = map[Category]string{
	EmotionalAwareness:    "Emotional Awareness",
	CommunicationStyle:    "Communication Style",
	ConflictTendencies:    "Conflict Tendencies",
	AttachmentPatterns:    "Attachment Patterns",
	EmpathyResponsiveness: "Empathy & Responsiveness",
	SelfInsight:           "Self-Insight",
	TrustBoundaries:       "Trust & Boundaries",
	StabilityConsistency:  "Stability & Consistency",
}

// Label returns the display name of the category.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Weight returns the RGI weight of the category, or 0 for unknown categories.
func (c Category) Weight() float64 {
	for i, cat := range Categories {
		if cat == c {
			return Weights[i]
		}
	}
	return 0
}

// ParseCategory converts a slug into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}
