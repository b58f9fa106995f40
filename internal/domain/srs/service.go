package srs

import (
	"errors"
	"sort"
	"time"

	"github.com/phrazzld/drill-api/internal/domain"
)

// Common errors
var (
	ErrInvalidConfidence = errors.New("invalid confidence level")
	ErrNegativeInterval  = errors.New("interval cannot be negative")
)

// Service defines the interface for review scheduling operations.
type Service interface {
	// Review computes the entry that replaces current after one graded
	// answer. The zero-value entry stands for a concept that has never been
	// reviewed. The input is not modified.
	Review(
		current domain.ReviewEntry,
		correct bool,
		confidence domain.Confidence,
		now time.Time,
	) (domain.ReviewEntry, error)

	// IsDue reports whether the entry's next review date has arrived as of
	// the given time. Entries with no review date yet are never due.
	IsDue(entry domain.ReviewEntry, asOf time.Time) bool

	// Due returns the concepts in the schedule whose review date has
	// arrived, sorted by name.
	Due(schedule domain.Schedule, asOf time.Time) []string
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
}

// NewDefaultService creates a new scheduling service with default parameters
func NewDefaultService() Service {
	return &defaultService{
		params: NewDefaultParams(),
	}
}

// NewServiceWithParams creates a new scheduling service with custom parameters
func NewServiceWithParams(params *Params) Service {
	return &defaultService{
		params: params,
	}
}

// Review implements the Service interface.
func (s *defaultService) Review(
	current domain.ReviewEntry,
	correct bool,
	confidence domain.Confidence,
	now time.Time,
) (domain.ReviewEntry, error) {
	if current.Interval < 0 {
		return domain.ReviewEntry{}, ErrNegativeInterval
	}

	if !confidence.IsValid() {
		return domain.ReviewEntry{}, ErrInvalidConfidence
	}

	return nextEntry(current, correct, confidence, now, s.params), nil
}

// IsDue implements the Service interface.
func (s *defaultService) IsDue(entry domain.ReviewEntry, asOf time.Time) bool {
	if entry.NextReview.IsZero() {
		return false
	}
	return !entry.NextReview.After(domain.DateOnly(asOf))
}

// Due implements the Service interface.
func (s *defaultService) Due(schedule domain.Schedule, asOf time.Time) []string {
	due := make([]string, 0, len(schedule))
	for concept, entry := range schedule {
		if s.IsDue(entry, asOf) {
			due = append(due, concept)
		}
	}
	sort.Strings(due)
	return due
}
