package assessment

import (
	"errors"
	"fmt"
)

const (
	MinRating = 1
	MaxRating = 5
)

var (
	ErrRatingOutOfRange = errors.New("rating out of range")
	ErrMissingRating    = errors.New("missing rating")
	ErrWrongBattery     = errors.New("question belongs to another battery")
)

// MissingRatingError reports the first question without a recorded rating.
type MissingRatingError struct {
	Key QuestionKey
}

func (e *MissingRatingError) Error() string {
	return fmt.Sprintf("missing rating for %s", e.Key)
}

func (e *MissingRatingError) Unwrap() error {
	return ErrMissingRating
}

// Ratings maps a question to its 1–5 answer. It serializes as a JSON object
// keyed by the question key text form.
type Ratings map[QuestionKey]int

// Clone returns an independent copy.
func (r Ratings) Clone() Ratings {
	out := make(Ratings, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ValidateRating checks a single answer against the scale.
func ValidateRating(v int) error {
	if v < MinRating || v > MaxRating {
		return fmt.Errorf("%w: %d (expected %d-%d)", ErrRatingOutOfRange, v, MinRating, MaxRating)
	}
	return nil
}

// Set validates and records one answer for a question of the given battery.
func (r Ratings) Set(bank *QuestionBank, battery Battery, key QuestionKey, value int) error {
	if key.Battery != battery {
		return fmt.Errorf("%w: %s is not a %s question", ErrWrongBattery, key, battery)
	}
	if _, err := bank.Lookup(key); err != nil {
		return err
	}
	if err := ValidateRating(value); err != nil {
		return err
	}
	r[key] = value
	return nil
}

// Answered counts answers to questions that exist in the battery.
func (r Ratings) Answered(bank *QuestionBank, battery Battery) int {
	n := 0
	for _, q := range bank.Questions(battery) {
		if _, ok := r[q.Key]; ok {
			n++
		}
	}
	return n
}

// Complete reports whether every question of the battery has an answer.
func (r Ratings) Complete(bank *QuestionBank, battery Battery) bool {
	return r.Missing(bank, battery) == nil
}

// Missing returns an error for the first unanswered question of the
// battery, or nil when the battery is complete.
func (r Ratings) Missing(bank *QuestionBank, battery Battery) error {
	for _, q := range bank.Questions(battery) {
		v, ok := r[q.Key]
		if !ok {
			return &MissingRatingError{Key: q.Key}
		}
		if err := ValidateRating(v); err != nil {
			return fmt.Errorf("%s: %w", q.Key, err)
		}
	}
	return nil
}

// mean averages the answers of one category; every answer must exist.
func (r Ratings) mean(bank *QuestionBank, battery Battery, cat Category) (float64, error) {
	qs := bank.For(battery, cat)
	if len(qs) == 0 {
		return 0, fmt.Errorf("%w: no %s questions for %s", ErrUnknownQuestion, battery, cat)
	}
	sum := 0
	for _, q := range qs {
		v, ok := r[q.Key]
		if !ok {
			return 0, &MissingRatingError{Key: q.Key}
		}
		if err := ValidateRating(v); err != nil {
			return 0, fmt.Errorf("%s: %w", q.Key, err)
		}
		sum += v
	}
	return float64(sum) / float64(len(qs)), nil
}
