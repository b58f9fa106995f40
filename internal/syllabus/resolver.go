// Package syllabus maps raw concept labels to canonical syllabus entries.
//
// Generated quiz items frequently come back with concept labels that drift
// from the syllabus spelling: different casing, extra words, small typos.
// The resolver absorbs that drift so that all mastery data stays keyed by
// canonical names. It is strict about the other direction: a label that no
// entry plausibly produced is reported as unresolvable, never forced onto
// the nearest entry, because a forced match would corrupt the ledger
// silently.
package syllabus

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agext/levenshtein"

	"github.com/phrazzld/drill-api/internal/domain"
)

// Common errors
var (
	// ErrSyllabusUnavailable is returned when resolution is attempted
	// against an empty syllabus. Nothing can be canonicalized without one.
	ErrSyllabusUnavailable = errors.New("syllabus unavailable")

	// ErrNoMatch is returned when no syllabus entry is a plausible match
	// for the raw label. Callers treat the label as a corruption candidate.
	ErrNoMatch = errors.New("no plausible syllabus match")
)

// Resolver maps raw concept labels to canonical syllabus entries.
type Resolver struct {
	// MaxDistanceDivisor sets the edit-distance budget for fuzzy matches:
	// a label may differ from an entry by at most one rune per
	// MaxDistanceDivisor runes of the entry, with a minimum budget of one.
	MaxDistanceDivisor int

	// MaxContainmentRatio bounds containment matches: the longer of the
	// two normalized strings may be at most this many times the length of
	// the shorter one. This keeps a concept name from matching a full
	// sentence that merely mentions it.
	MaxContainmentRatio int
}

// NewResolver creates a Resolver with the default matching policy.
func NewResolver() *Resolver {
	return &Resolver{
		MaxDistanceDivisor:  4,
		MaxContainmentRatio: 2,
	}
}

// Resolve maps rawLabel to the canonical syllabus entry it most plausibly
// refers to. Matching proceeds from cheapest to most tolerant: verbatim
// equality, normalized equality, bounded containment, then bounded edit
// distance. The first stage that produces candidates wins; within a stage
// the closest candidate wins and ties fall to syllabus order.
//
// Returns ErrSyllabusUnavailable when the syllabus is empty, and ErrNoMatch
// when every stage comes up empty.
func (r *Resolver) Resolve(rawLabel string, s domain.Syllabus) (string, error) {
	if len(s) == 0 {
		return "", ErrSyllabusUnavailable
	}

	if s.Contains(rawLabel) {
		return rawLabel, nil
	}

	raw := normalize(rawLabel)
	if raw == "" {
		return "", fmt.Errorf("%w: empty label", ErrNoMatch)
	}

	for _, entry := range s {
		if normalize(entry) == raw {
			return entry, nil
		}
	}

	if match, ok := r.containmentMatch(raw, s); ok {
		return match, nil
	}

	if match, ok := r.distanceMatch(raw, s); ok {
		return match, nil
	}

	return "", fmt.Errorf("%w: %q", ErrNoMatch, rawLabel)
}

// containmentMatch finds entries where one normalized string contains the
// other, within the length-ratio bound. The candidate with the smallest
// length difference is the most specific and wins.
func (r *Resolver) containmentMatch(raw string, s domain.Syllabus) (string, bool) {
	bestDiff := -1
	best := ""

	rawLen := utf8.RuneCountInString(raw)
	for _, entry := range s {
		norm := normalize(entry)
		normLen := utf8.RuneCountInString(norm)

		shorter, longer := raw, norm
		shortLen, longLen := rawLen, normLen
		if normLen < rawLen {
			shorter, longer = norm, raw
			shortLen, longLen = normLen, rawLen
		}

		if !strings.Contains(longer, shorter) {
			continue
		}
		if longLen > r.MaxContainmentRatio*shortLen {
			continue
		}

		diff := longLen - shortLen
		if bestDiff == -1 || diff < bestDiff {
			bestDiff = diff
			best = entry
		}
	}

	return best, bestDiff != -1
}

// distanceMatch finds the entry with the smallest edit distance to the raw
// label, if that distance fits the entry's budget.
func (r *Resolver) distanceMatch(raw string, s domain.Syllabus) (string, bool) {
	bestDist := -1
	best := ""

	for _, entry := range s {
		norm := normalize(entry)

		budget := utf8.RuneCountInString(norm) / r.MaxDistanceDivisor
		if budget < 1 {
			budget = 1
		}

		dist := levenshtein.Distance(raw, norm, nil)
		if dist > budget {
			continue
		}

		if bestDist == -1 || dist < bestDist {
			bestDist = dist
			best = entry
		}
	}

	return best, bestDist != -1
}

// normalize lowercases a label and collapses all interior whitespace runs to
// single spaces, trimming the ends.
func normalize(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}
