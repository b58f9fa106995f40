package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxConceptNameLength bounds how long a concept name may be. Names beyond
// this are not plausible syllabus entries and are treated as corrupted data
// wherever they appear.
const MaxConceptNameLength = 50

// Common validation errors for Syllabus
var (
	ErrSyllabusEmpty        = errors.New("syllabus cannot be empty")
	ErrSyllabusEntryEmpty   = errors.New("syllabus entry cannot be empty")
	ErrSyllabusEntryTooLong = errors.New("syllabus entry exceeds maximum length")
	ErrSyllabusDuplicate    = errors.New("syllabus entries must be unique")
)

// Syllabus is the ordered list of canonical concept names for a project.
// Every attempt tally and review entry is keyed by one of these names, so
// the set doubles as the vocabulary of valid keys. Redefining a syllabus
// invalidates the keyed data, which is why regeneration requires an explicit
// progress reset first.
type Syllabus []string

// Validate checks the structural rules for a syllabus: at least one entry,
// no blank or over-length names, no case-insensitive duplicates.
func (s Syllabus) Validate() error {
	if len(s) == 0 {
		return ErrSyllabusEmpty
	}

	seen := make(map[string]struct{}, len(s))
	for _, concept := range s {
		if strings.TrimSpace(concept) == "" {
			return ErrSyllabusEntryEmpty
		}
		if ConceptNameTooLong(concept) {
			return fmt.Errorf("%w: %q", ErrSyllabusEntryTooLong, concept)
		}
		key := strings.ToLower(strings.TrimSpace(concept))
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: %q", ErrSyllabusDuplicate, concept)
		}
		seen[key] = struct{}{}
	}

	return nil
}

// Contains reports whether concept exactly matches one of the entries.
func (s Syllabus) Contains(concept string) bool {
	for _, c := range s {
		if c == concept {
			return true
		}
	}
	return false
}

// Clone returns an independent copy of the syllabus.
func (s Syllabus) Clone() Syllabus {
	if s == nil {
		return nil
	}
	out := make(Syllabus, len(s))
	copy(out, s)
	return out
}

// ConceptNameTooLong reports whether a concept name exceeds
// MaxConceptNameLength. Length is measured in runes so multi-byte names are
// not penalized.
func ConceptNameTooLong(name string) bool {
	return utf8.RuneCountInString(name) > MaxConceptNameLength
}
