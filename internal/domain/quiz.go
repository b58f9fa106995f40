package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Confidence is the learner's self-reported certainty for one answer.
type Confidence string

// Possible confidence values
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// IsValid checks if the given confidence is one of the known levels.
func (c Confidence) IsValid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	default:
		return false
	}
}

// ParseConfidence normalizes a reported confidence string. Casing is
// tolerated; unknown values are not.
func ParseConfidence(s string) (Confidence, error) {
	c := Confidence(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: confidence %q", ErrValidation, s)
	}
	return c, nil
}

// QuizItemType identifies the question format.
type QuizItemType string

// Supported question formats. The values match the generator contract.
const (
	QuizItemMCQ       QuizItemType = "MCQ"
	QuizItemTrueFalse QuizItemType = "T/F"
)

// Quiz item validation errors
var (
	ErrQuizItemType         = errors.New("unknown quiz item type")
	ErrQuizQuestionEmpty    = errors.New("question text cannot be empty")
	ErrQuizOptionCount      = errors.New("wrong number of options for item type")
	ErrQuizOptionEmpty      = errors.New("quiz options cannot be empty")
	ErrQuizOptionDuplicate  = errors.New("quiz options must be unique")
	ErrQuizAnswerNotOption  = errors.New("correct answer must be one of the options")
	ErrQuizConceptEmpty     = errors.New("primary concept cannot be empty")
	ErrQuizExplanationEmpty = errors.New("detailed explanation cannot be empty")
)

// QuizItem is a single validated question. The JSON field names are the
// generator contract exactly; responses that deviate from it are rejected
// during sanitization rather than coerced into shape.
type QuizItem struct {
	ID                  int          `json:"id"`
	Type                QuizItemType `json:"type"`
	QuestionText        string       `json:"question_text"`
	Options             []string     `json:"options"`
	CorrectAnswer       string       `json:"correct_answer"`
	PrimaryConcept      string       `json:"primary_concept"`
	DetailedExplanation string       `json:"detailed_explanation"`
}

// Validate checks the structural rules for a single item. Cross-item rules
// such as ID uniqueness, and syllabus membership of the primary concept, are
// enforced by callers that see the whole batch.
func (q *QuizItem) Validate() error {
	switch q.Type {
	case QuizItemMCQ:
		if len(q.Options) != 4 {
			return fmt.Errorf("%w: MCQ item %d has %d options, want 4",
				ErrQuizOptionCount, q.ID, len(q.Options))
		}
	case QuizItemTrueFalse:
		if len(q.Options) != 2 {
			return fmt.Errorf("%w: T/F item %d has %d options, want 2",
				ErrQuizOptionCount, q.ID, len(q.Options))
		}
	default:
		return fmt.Errorf("%w: %q", ErrQuizItemType, q.Type)
	}

	if strings.TrimSpace(q.QuestionText) == "" {
		return ErrQuizQuestionEmpty
	}

	seen := make(map[string]struct{}, len(q.Options))
	for _, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return ErrQuizOptionEmpty
		}
		if _, dup := seen[opt]; dup {
			return fmt.Errorf("%w: item %d repeats %q", ErrQuizOptionDuplicate, q.ID, opt)
		}
		seen[opt] = struct{}{}
	}

	if !q.hasOption(q.CorrectAnswer) {
		return fmt.Errorf("%w: item %d", ErrQuizAnswerNotOption, q.ID)
	}

	if strings.TrimSpace(q.PrimaryConcept) == "" {
		return ErrQuizConceptEmpty
	}

	if strings.TrimSpace(q.DetailedExplanation) == "" {
		return ErrQuizExplanationEmpty
	}

	return nil
}

// IsCorrect reports whether the submitted answer matches the keyed answer.
// Comparison is exact; no trimming or case folding.
func (q *QuizItem) IsCorrect(answer string) bool {
	return answer == q.CorrectAnswer
}

func (q *QuizItem) hasOption(answer string) bool {
	for _, opt := range q.Options {
		if opt == answer {
			return true
		}
	}
	return false
}

// Answer is one submitted response to a quiz item.
type Answer struct {
	ItemID     int        `json:"item_id"`
	Selected   string     `json:"selected_answer"`
	Confidence Confidence `json:"confidence"`
}

// Validate checks if the Answer has valid data.
func (a *Answer) Validate() error {
	if strings.TrimSpace(a.Selected) == "" {
		return fmt.Errorf("%w: answer for item %d has no selection", ErrValidation, a.ItemID)
	}
	if !a.Confidence.IsValid() {
		return fmt.Errorf("%w: answer for item %d has confidence %q",
			ErrValidation, a.ItemID, a.Confidence)
	}
	return nil
}
