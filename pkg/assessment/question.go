package assessment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Battery identifies one of the two rating questionnaires.
type Battery string

const (
	// BatteryCalibration sets the personal baseline (the Likert page).
	BatteryCalibration Battery = "calibration"
	// BatteryAssessment measures current behaviour.
	BatteryAssessment Battery = "assessment"
)

func (b Battery) Valid() bool {
	return b == BatteryCalibration || b == BatteryAssessment
}

// QuestionsPerCategory is the canonical battery depth.
const QuestionsPerCategory = 3

var (
	ErrUnknownQuestion   = errors.New("unknown question")
	ErrMalformedQuestion = errors.New("malformed question key")
)

// QuestionKey identifies a question independently of its display text.
// Its text form is "battery/category/index".
type QuestionKey struct {
	Battery  Battery  `json:"battery"`
	Category Category `json:"category"`
	Index    int      `json:"index"`
}

func (k QuestionKey) String() string {
	return fmt.Sprintf("%s/%s/%d", k.Battery, k.Category, k.Index)
}

func (k QuestionKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *QuestionKey) UnmarshalText(text []byte) error {
	parsed, err := ParseQuestionKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseQuestionKey parses the "battery/category/index" form. It checks the
// shape only; use QuestionBank.Lookup to confirm the question exists.
func ParseQuestionKey(s string) (QuestionKey, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return QuestionKey{}, fmt.Errorf("%w: %q", ErrMalformedQuestion, s)
	}
	battery := Battery(parts[0])
	if !battery.Valid() {
		return QuestionKey{}, fmt.Errorf("%w: unknown battery %q", ErrMalformedQuestion, parts[0])
	}
	category, err := ParseCategory(parts[1])
	if err != nil {
		return QuestionKey{}, fmt.Errorf("%w: %v", ErrMalformedQuestion, err)
	}
	idx, err := strconv.Atoi(parts[2])
	if err != nil || idx < 0 {
		return QuestionKey{}, fmt.Errorf("%w: bad index %q", ErrMalformedQuestion, parts[2])
	}
	return QuestionKey{Battery: battery, Category: category, Index: idx}, nil
}

// Question is one rating prompt.
type Question struct {
	Key  QuestionKey `json:"key"`
	Text string      `json:"text"`
}

// QuestionBank holds both batteries. It is immutable after construction.
type QuestionBank struct {
	questions map[Battery]map[Category][]Question
}

var (
	calibrationTemplates = []string{
		"On a scale of 1–5, how important is %s to you in relationships?",
		"How would you rate your current level in %s?",
		"How often do you reflect on %s?",
	}
	assessmentTemplates = []string{
		"How often do you recognize patterns in %s?",
		"How comfortable are you discussing %s?",
		"How does %s impact your connections?",
	}
)

// DefaultQuestionBank builds the canonical bank: three questions per
// category in each battery.
func DefaultQuestionBank() *QuestionBank {
	return NewQuestionBank(map[Battery][]string{
		BatteryCalibration: calibrationTemplates,
		BatteryAssessment:  assessmentTemplates,
	})
}

// NewQuestionBank renders each template once per category. Templates take
// the lower-cased category label as their only verb.
func NewQuestionBank(templates map[Battery][]string) *QuestionBank {
	bank := &QuestionBank{questions: make(map[Battery]map[Category][]Question)}
	for battery, tmpls := range templates {
		perCategory := make(map[Category][]Question, len(Categories))
		for _, cat := range Categories {
			qs := make([]Question, 0, len(tmpls))
			for i, tmpl := range tmpls {
				qs = append(qs, Question{
					Key:  QuestionKey{Battery: battery, Category: cat, Index: i},
					Text: fmt.Sprintf(tmpl, strings.ToLower(cat.Label())),
				})
			}
			perCategory[cat] = qs
		}
		bank.questions[battery] = perCategory
	}
	return bank
}

// For returns the questions of one category in one battery.
func (b *QuestionBank) For(battery Battery, cat Category) []Question {
	return b.questions[battery][cat]
}

// Questions returns every question of a battery in category order.
func (b *QuestionBank) Questions(battery Battery) []Question {
	var out []Question
	for _, cat := range Categories {
		out = append(out, b.questions[battery][cat]...)
	}
	return out
}

// Size returns the number of questions in a battery.
func (b *QuestionBank) Size(battery Battery) int {
	n := 0
	for _, qs := range b.questions[battery] {
		n += len(qs)
	}
	return n
}

// Lookup returns the question for a key.
func (b *QuestionBank) Lookup(key QuestionKey) (Question, error) {
	qs := b.questions[key.Battery][key.Category]
	if key.Index < 0 || key.Index >= len(qs) {
		return Question{}, fmt.Errorf("%w: %s", ErrUnknownQuestion, key)
	}
	return qs[key.Index], nil
}
