package assessment

import (
	"math"
	"time"
)

const (
	// baselineScale maps the 1–5 scale onto 0–100.
	baselineScale = 20.0
	// SelfScoreMidpoint is the score of an assessment that exactly matches its baseline.
	SelfScoreMidpoint = 50.0

	MutualLow    = 40.0
	MutualHigh   = 80.0
	SelfWeight   = 0.4
	MutualWeight = 0.6

	ScoreFloor   = 20.0
	ScoreCeiling = 90.0
)

// CategoryScore is the scoring trace of one category.
type CategoryScore struct {
	Category  Category `json:"category"`
	Label     string   `json:"label"`
	Baseline  float64  `json:"baseline"`
	Raw       float64  `json:"raw"`
	SelfScore float64  `json:"self_score"`
	// Mutual is the simulated partner score, set only with mutual reflection.
	Mutual *float64 `json:"mutual,omitempty"`
	Score  float64  `json:"score"`
}

// ResultBundle is the outcome of one assessment submission.
type ResultBundle struct {
	Categories []CategoryScore `json:"categories"`
	RGI        float64         `json:"rgi"`
	Mutual     bool            `json:"mutual"`
	ComputedAt time.Time       `json:"computed_at"`
}

// Score returns the clamped score of a category.
func (r *ResultBundle) Score(cat Category) (float64, bool) {
	for _, cs := range r.Categories {
		if cs.Category == cat {
			return cs.Score, true
		}
	}
	return 0, false
}

// Scores returns the clamped category scores keyed by category.
func (r *ResultBundle) Scores() map[Category]float64 {
	out := make(map[Category]float64, len(r.Categories))
	for _, cs := range r.Categories {
		out[cs.Category] = cs.Score
	}
	return out
}

// Clone returns a deep copy.
func (r *ResultBundle) Clone() *ResultBundle {
	if r == nil {
		return nil
	}
	out := *r
	out.Categories = make([]CategoryScore, len(r.Categories))
	for i, cs := range r.Categories {
		if cs.Mutual != nil {
			m := *cs.Mutual
			cs.Mutual = &m
		}
		out.Categories[i] = cs
	}
	return &out
}

// Engine turns both rating batteries into a ResultBundle.
type Engine struct {
	bank  *QuestionBank
	rng   Random
	clock func() time.Time
}

// NewEngine builds an engine. rng feeds the simulated partner draw.
func NewEngine(bank *QuestionBank, rng Random) *Engine {
	return &Engine{bank: bank, rng: rng, clock: time.Now}
}

func (e *Engine) Bank() *QuestionBank {
	return e.bank
}

// Score computes every category score and the composite RGI. It fails on
// the first unanswered question of either battery instead of defaulting it.
func (e *Engine) Score(calibration, assessment Ratings, mutual bool) (*ResultBundle, error) {
	if err := calibration.Missing(e.bank, BatteryCalibration); err != nil {
		return nil, err
	}
	if err := assessment.Missing(e.bank, BatteryAssessment); err != nil {
		return nil, err
	}

	result := &ResultBundle{
		Categories: make([]CategoryScore, 0, len(Categories)),
		Mutual:     mutual,
		ComputedAt: e.clock().UTC(),
	}
	for i, cat := range Categories {
		cs, err := e.scoreCategory(cat, calibration, assessment, mutual)
		if err != nil {
			return nil, err
		}
		result.Categories = append(result.Categories, cs)
		result.RGI += Weights[i] * cs.Score
	}
	return result, nil
}

func (e *Engine) scoreCategory(cat Category, calibration, assessment Ratings, mutual bool) (CategoryScore, error) {
	calMean, err := calibration.mean(e.bank, BatteryCalibration, cat)
	if err != nil {
		return CategoryScore{}, err
	}
	assessMean, err := assessment.mean(e.bank, BatteryAssessment, cat)
	if err != nil {
		return CategoryScore{}, err
	}

	cs := CategoryScore{
		Category: cat,
		Label:    cat.Label(),
		Baseline: calMean * baselineScale,
		Raw:      assessMean * baselineScale,
	}
	cs.SelfScore = SelfScore(cs.Raw, cs.Baseline)

	score := cs.SelfScore
	if mutual {
		m := Uniform(e.rng, MutualLow, MutualHigh)
		cs.Mutual = &m
		score = Blend(cs.SelfScore, m)
	}
	cs.Score = Clamp(score)
	return cs, nil
}

// SelfScore re-centres raw against the personal baseline so that
// raw == baseline yields the midpoint.
func SelfScore(raw, baseline float64) float64 {
	if baseline > 0 {
		return raw / baseline * SelfScoreMidpoint
	}
	return raw
}

// Blend mixes the self score with the partner score.
func Blend(self, mutual float64) float64 {
	return SelfWeight*self + MutualWeight*mutual
}

// Clamp bounds a score to [ScoreFloor, ScoreCeiling].
func Clamp(score float64) float64 {
	return math.Max(ScoreFloor, math.Min(ScoreCeiling, score))
}

// CompositeIndex is the weighted sum of category scores in Categories order.
func CompositeIndex(scores map[Category]float64) float64 {
	rgi := 0.0
	for i, cat := range Categories {
		rgi += Weights[i] * scores[cat]
	}
	return rgi
}
