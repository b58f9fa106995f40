// Package mastery classifies per-concept quiz history into mastery levels.
// The classifier is a pure read of the attempt ledger: it never mutates
// records, and in particular it never repairs entries it considers
// corrupted.
package mastery

import (
	"sort"

	"github.com/phrazzld/drill-api/internal/domain"
)

// Level is the mastery classification of a single concept.
type Level string

// Possible mastery levels
const (
	// LevelWeak marks a concept whose correctness ratio is below the
	// threshold. Weak concepts are the inputs to focused quiz targeting.
	LevelWeak Level = "weak"

	// LevelStrong marks a concept at or above the threshold.
	LevelStrong Level = "strong"

	// LevelUntested marks a concept with no recorded attempts. Untested is
	// deliberately neither weak nor strong.
	LevelUntested Level = "untested"

	// LevelCorrupted marks a record that cannot be a real concept entry:
	// an over-length name or an impossible attempt tally. Corrupted records
	// disable focused targeting for the whole project until a reset.
	LevelCorrupted Level = "corrupted"
)

// ConceptMastery is the classification of one concept together with the
// numbers it was derived from.
type ConceptMastery struct {
	Concept       string  `json:"concept"`
	Correct       int     `json:"correct"`
	Total         int     `json:"total"`
	Ratio         float64 `json:"ratio"`
	Level         Level   `json:"level"`
	LowConfidence bool    `json:"low_confidence,omitempty"`
}

// Report is the full mastery picture for a project.
type Report struct {
	Concepts []ConceptMastery `json:"concepts"`
}

// Classify builds a mastery report from the attempt ledger. Syllabus entries
// appear in syllabus order, including untested ones; ledger records whose
// keys are not in the syllabus follow in sorted order, so stale or corrupt
// entries stay visible instead of disappearing from the report.
func Classify(ledger domain.Ledger, syllabus domain.Syllabus, params *Params) Report {
	report := Report{
		Concepts: make([]ConceptMastery, 0, len(syllabus)+len(ledger)),
	}

	covered := make(map[string]struct{}, len(syllabus))
	for _, concept := range syllabus {
		covered[concept] = struct{}{}
		report.Concepts = append(report.Concepts, classifyOne(concept, ledger[concept], params))
	}

	extras := make([]string, 0, len(ledger))
	for concept := range ledger {
		if _, ok := covered[concept]; !ok {
			extras = append(extras, concept)
		}
	}
	sort.Strings(extras)

	for _, concept := range extras {
		report.Concepts = append(report.Concepts, classifyOne(concept, ledger[concept], params))
	}

	return report
}

func classifyOne(concept string, attempts domain.ConceptAttempts, params *Params) ConceptMastery {
	cm := ConceptMastery{
		Concept: concept,
		Correct: attempts.Correct,
		Total:   attempts.Total,
	}

	if domain.ConceptNameTooLong(concept) || attempts.Validate() != nil {
		cm.Level = LevelCorrupted
		return cm
	}

	if attempts.Total == 0 {
		cm.Level = LevelUntested
		return cm
	}

	cm.Ratio = attempts.Ratio()
	if cm.Ratio < params.Threshold {
		cm.Level = LevelWeak
	} else {
		cm.Level = LevelStrong
	}
	cm.LowConfidence = attempts.Total < params.MinSampleSize

	return cm
}

// Weak returns the names of all weak concepts, in report order.
func (r *Report) Weak() []string {
	return r.withLevel(LevelWeak)
}

// Corrupted returns the names of all corrupted records, in report order.
func (r *Report) Corrupted() []string {
	return r.withLevel(LevelCorrupted)
}

// HasCorruption reports whether any record classified as corrupted.
func (r *Report) HasCorruption() bool {
	for _, cm := range r.Concepts {
		if cm.Level == LevelCorrupted {
			return true
		}
	}
	return false
}

func (r *Report) withLevel(level Level) []string {
	out := make([]string, 0)
	for _, cm := range r.Concepts {
		if cm.Level == level {
			out = append(out, cm.Concept)
		}
	}
	return out
}
