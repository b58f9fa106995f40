package domain

import "errors"

// Common validation errors for the ledger
var (
	ErrEmptyConceptName = errors.New("concept name cannot be empty")

	// ErrImpossibleAttempts is returned when an attempt tally claims more
	// correct answers than total attempts, or a negative count.
	ErrImpossibleAttempts = errors.New("impossible attempt counts")
)

// ConceptAttempts is the per-concept tally of graded quiz answers.
type ConceptAttempts struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Ratio returns the fraction of attempts answered correctly. A tally with no
// attempts has no meaningful ratio; callers must check Total first.
func (a ConceptAttempts) Ratio() float64 {
	if a.Total == 0 {
		return 0
	}
	return float64(a.Correct) / float64(a.Total)
}

// Validate checks that the tally is arithmetically possible.
func (a ConceptAttempts) Validate() error {
	if a.Correct < 0 || a.Total < 0 || a.Correct > a.Total {
		return ErrImpossibleAttempts
	}
	return nil
}

// Ledger maps concept names to their accumulated attempt tallies. Keys are
// stored exactly as recorded: the ledger never canonicalizes, trims, or
// filters names, so stale or malformed entries stay visible to the mastery
// classifier instead of being silently dropped.
type Ledger map[string]ConceptAttempts

// RecordAttempt adds one graded answer under the given concept name.
func (l Ledger) RecordAttempt(concept string, correct bool) error {
	if concept == "" {
		return ErrEmptyConceptName
	}

	entry := l[concept]
	entry.Total++
	if correct {
		entry.Correct++
	}
	l[concept] = entry
	return nil
}

// Clone returns an independent copy of the ledger.
func (l Ledger) Clone() Ledger {
	if l == nil {
		return nil
	}
	out := make(Ledger, len(l))
	for concept, attempts := range l {
		out[concept] = attempts
	}
	return out
}
