package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// ReviewEntry is the spaced-repetition state for one concept. Intervals are
// whole days and NextReview is a day-granular UTC date; the scheduler never
// works at finer resolution.
type ReviewEntry struct {
	Interval   int
	NextReview time.Time
}

// reviewEntryJSON is the persisted form. Dates travel as YYYY-MM-DD strings.
type reviewEntryJSON struct {
	Interval   int    `json:"interval"`
	NextReview string `json:"next_review,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (e ReviewEntry) MarshalJSON() ([]byte, error) {
	out := reviewEntryJSON{Interval: e.Interval}
	if !e.NextReview.IsZero() {
		out.NextReview = e.NextReview.UTC().Format(time.DateOnly)
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *ReviewEntry) UnmarshalJSON(data []byte) error {
	var in reviewEntryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	e.Interval = in.Interval
	if in.NextReview == "" {
		e.NextReview = time.Time{}
		return nil
	}

	parsed, err := time.ParseInLocation(time.DateOnly, in.NextReview, time.UTC)
	if err != nil {
		return fmt.Errorf("%w: next_review %q", ErrInvalidFormat, in.NextReview)
	}
	e.NextReview = parsed
	return nil
}

// Schedule maps concept names to their review state. A concept missing from
// the schedule has never been reviewed, which the scheduler treats as an
// interval of zero.
type Schedule map[string]ReviewEntry

// Clone returns an independent copy of the schedule.
func (s Schedule) Clone() Schedule {
	if s == nil {
		return nil
	}
	out := make(Schedule, len(s))
	for concept, entry := range s {
		out[concept] = entry
	}
	return out
}

// DateOnly truncates t to midnight UTC. Scheduling comparisons happen at day
// granularity, so two times on the same UTC day are equivalent.
func DateOnly(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
