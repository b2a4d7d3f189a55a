package assessment

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRandom replays a cycle of values.
type fixedRandom struct {
	values []float64
	i      int
}

func (f *fixedRandom) Float64() float64 {
	v := f.values[f.i%len(f.values)]
	f.i++
	return v
}

func fill(bank *QuestionBank, battery Battery, value int) Ratings {
	r := Ratings{}
	for _, q := range bank.Questions(battery) {
		r[q.Key] = value
	}
	return r
}

func fillCategory(bank *QuestionBank, r Ratings, battery Battery, cat Category, value int) {
	for _, q := range bank.For(battery, cat) {
		r[q.Key] = value
	}
}

func TestWeightsSumToOne(t *testing.T) {
	require.Len(t, Weights, len(Categories))
	sum := 0.0
	for _, w := range Weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestDefaultQuestionBank(t *testing.T) {
	bank := DefaultQuestionBank()
	for _, battery := range []Battery{BatteryCalibration, BatteryAssessment} {
		assert.Equal(t, len(Categories)*QuestionsPerCategory, bank.Size(battery))
		for _, cat := range Categories {
			assert.Len(t, bank.For(battery, cat), QuestionsPerCategory)
		}
	}

	q, err := bank.Lookup(QuestionKey{Battery: BatteryCalibration, Category: TrustBoundaries, Index: 0})
	require.NoError(t, err)
	assert.Equal(t, "On a scale of 1–5, how important is trust & boundaries to you in relationships?", q.Text)

	_, err = bank.Lookup(QuestionKey{Battery: BatteryAssessment, Category: TrustBoundaries, Index: 3})
	assert.ErrorIs(t, err, ErrUnknownQuestion)
}

func TestEngineScore_Scenarios(t *testing.T) {
	tests := []struct {
		name        string
		calibration int
		assessment  int
		wantSelf    float64
		wantScore   float64
		wantType    InsightType
	}{
		{name: "matching baseline lands on midpoint", calibration: 3, assessment: 3, wantSelf: 50, wantScore: 50, wantType: Neutral},
		{name: "floor applied", calibration: 5, assessment: 1, wantSelf: 10, wantScore: 20, wantType: BlindSpot},
		{name: "ceiling applied", calibration: 1, assessment: 5, wantSelf: 250, wantScore: 90, wantType: Strength},
	}

	bank := DefaultQuestionBank()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(bank, &fixedRandom{values: []float64{0.5}})
			result, err := engine.Score(fill(bank, BatteryCalibration, tt.calibration), fill(bank, BatteryAssessment, tt.assessment), false)
			require.NoError(t, err)
			require.Len(t, result.Categories, len(Categories))

			for _, cs := range result.Categories {
				assert.InDelta(t, float64(tt.calibration)*20, cs.Baseline, 1e-9)
				assert.InDelta(t, float64(tt.assessment)*20, cs.Raw, 1e-9)
				assert.InDelta(t, tt.wantSelf, cs.SelfScore, 1e-9)
				assert.InDelta(t, tt.wantScore, cs.Score, 1e-9)
				assert.Nil(t, cs.Mutual)
			}
			assert.InDelta(t, tt.wantScore, result.RGI, 1e-9)

			for _, in := range GenerateInsights(result) {
				assert.Equal(t, tt.wantType, in.Type)
				assert.Equal(t, Describe(tt.wantType), in.Description)
				assert.Equal(t, Suggestion, in.Suggestion)
			}
		})
	}
}

func TestEngineScore_RGIIsWeightedSum(t *testing.T) {
	bank := DefaultQuestionBank()
	calibration := fill(bank, BatteryCalibration, 3)
	assessment := Ratings{}
	values := []int{1, 2, 3, 4, 5, 3, 2, 4}
	for i, cat := range Categories {
		fillCategory(bank, assessment, BatteryAssessment, cat, values[i])
	}

	result, err := NewEngine(bank, &fixedRandom{values: []float64{0}}).Score(calibration, assessment, false)
	require.NoError(t, err)

	want := 0.0
	for i, cat := range Categories {
		score, ok := result.Score(cat)
		require.True(t, ok)
		want += Weights[i] * score
	}
	assert.InDelta(t, want, result.RGI, 1e-9)
	assert.InDelta(t, CompositeIndex(result.Scores()), result.RGI, 1e-9)
}

func TestEngineScore_MutualBlend(t *testing.T) {
	bank := DefaultQuestionBank()
	engine := NewEngine(bank, &fixedRandom{values: []float64{0.5}})

	result, err := engine.Score(fill(bank, BatteryCalibration, 3), fill(bank, BatteryAssessment, 3), true)
	require.NoError(t, err)
	assert.True(t, result.Mutual)

	for _, cs := range result.Categories {
		require.NotNil(t, cs.Mutual)
		assert.InDelta(t, 60, *cs.Mutual, 1e-9)
		// 0.4*50 + 0.6*60
		assert.InDelta(t, 56, cs.Score, 1e-9)
	}
}

func TestEngineScore_AlwaysWithinBounds(t *testing.T) {
	bank := DefaultQuestionBank()
	engine := NewEngine(bank, NewRandom(7))

	for cal := MinRating; cal <= MaxRating; cal++ {
		for as := MinRating; as <= MaxRating; as++ {
			for _, mutual := range []bool{false, true} {
				result, err := engine.Score(fill(bank, BatteryCalibration, cal), fill(bank, BatteryAssessment, as), mutual)
				require.NoError(t, err)
				for _, cs := range result.Categories {
					assert.GreaterOrEqual(t, cs.Score, ScoreFloor)
					assert.LessOrEqual(t, cs.Score, ScoreCeiling)
				}
				assert.GreaterOrEqual(t, result.RGI, ScoreFloor)
				assert.LessOrEqual(t, result.RGI, ScoreCeiling)
			}
		}
	}
}

func TestEngineScore_SeededDrawIsReproducible(t *testing.T) {
	bank := DefaultQuestionBank()
	calibration := fill(bank, BatteryCalibration, 4)
	assessment := fill(bank, BatteryAssessment, 2)

	first, err := NewEngine(bank, NewRandom(42)).Score(calibration, assessment, true)
	require.NoError(t, err)
	second, err := NewEngine(bank, NewRandom(42)).Score(calibration, assessment, true)
	require.NoError(t, err)

	for i := range first.Categories {
		a, b := first.Categories[i], second.Categories[i]
		assert.Equal(t, a.Baseline, b.Baseline)
		assert.Equal(t, a.Raw, b.Raw)
		assert.Equal(t, a.SelfScore, b.SelfScore)
		assert.Equal(t, *a.Mutual, *b.Mutual)
		assert.Equal(t, a.Score, b.Score)
	}
	assert.Equal(t, first.RGI, second.RGI)
}

func TestEngineScore_MissingRatingFailsFast(t *testing.T) {
	bank := DefaultQuestionBank()
	engine := NewEngine(bank, &fixedRandom{values: []float64{0.5}})

	assessment := fill(bank, BatteryAssessment, 3)
	missing := QuestionKey{Battery: BatteryAssessment, Category: SelfInsight, Index: 1}
	delete(assessment, missing)

	result, err := engine.Score(fill(bank, BatteryCalibration, 3), assessment, false)
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingRating))

	var mre *MissingRatingError
	require.ErrorAs(t, err, &mre)
	assert.Equal(t, missing, mre.Key)

	_, err = engine.Score(Ratings{}, fill(bank, BatteryAssessment, 3), false)
	assert.ErrorIs(t, err, ErrMissingRating)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		score float64
		want  InsightType
	}{
		{71, Strength},
		{70, Neutral},
		{55, Neutral},
		{40, Neutral},
		{39, BlindSpot},
		{20, BlindSpot},
		{90, Strength},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.score), "score %v", tt.score)
	}
}

func TestRatingsSet(t *testing.T) {
	bank := DefaultQuestionBank()
	r := Ratings{}
	key := QuestionKey{Battery: BatteryCalibration, Category: EmotionalAwareness, Index: 2}

	require.NoError(t, r.Set(bank, BatteryCalibration, key, 4))
	assert.Equal(t, 4, r[key])
	assert.Equal(t, 1, r.Answered(bank, BatteryCalibration))

	assert.ErrorIs(t, r.Set(bank, BatteryAssessment, key, 4), ErrWrongBattery)
	assert.ErrorIs(t, r.Set(bank, BatteryCalibration, key, 0), ErrRatingOutOfRange)
	assert.ErrorIs(t, r.Set(bank, BatteryCalibration, key, 6), ErrRatingOutOfRange)

	bad := QuestionKey{Battery: BatteryCalibration, Category: EmotionalAwareness, Index: 9}
	assert.ErrorIs(t, r.Set(bank, BatteryCalibration, bad, 3), ErrUnknownQuestion)
	assert.Equal(t, 4, r[key], "failed sets leave earlier answers alone")
}

func TestParseQuestionKey(t *testing.T) {
	key, err := ParseQuestionKey(" assessment/trust_boundaries/2 ")
	require.NoError(t, err)
	assert.Equal(t, QuestionKey{Battery: BatteryAssessment, Category: TrustBoundaries, Index: 2}, key)

	for _, s := range []string{"", "assessment/trust_boundaries", "survey/trust_boundaries/0", "assessment/kindness/0", "assessment/trust_boundaries/x", "assessment/trust_boundaries/-1"} {
		_, err := ParseQuestionKey(s)
		assert.ErrorIs(t, err, ErrMalformedQuestion, s)
	}
}

func TestRatingsJSONUsesKeyText(t *testing.T) {
	r := Ratings{{Battery: BatteryCalibration, Category: SelfInsight, Index: 0}: 5}

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"calibration/self_insight/0":5}`, string(data))

	var back Ratings
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r, back)
}

func TestRandomGate(t *testing.T) {
	assert.False(t, NewRandomGate(0, &fixedRandom{values: []float64{0}}).Blocked(nil))
	assert.True(t, NewRandomGate(0.1, &fixedRandom{values: []float64{0.05}}).Blocked(nil))
	assert.False(t, NewRandomGate(0.1, &fixedRandom{values: []float64{0.1}}).Blocked(nil))
	assert.False(t, AllowAll.Blocked(nil))
}

func TestReflectionPrompt(t *testing.T) {
	assert.Equal(t, "Your reflection highlights growth in Emotional Awareness.", ReflectionPrompt("So many EMOTIONS today"))
	assert.Equal(t, "This ties to your Communication Style patterns.", ReflectionPrompt("our communication improved"))
	assert.Equal(t, "Balanced reflection – patterns evolve as you grow.", ReflectionPrompt(""))
}
