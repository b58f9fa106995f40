package srs

import (
	"time"

	"github.com/phrazzld/drill-api/internal/domain"
)

// nextInterval determines the interval in days that follows one graded
// answer.
//
// The rules are deliberately coarse. Confidence only matters when the answer
// was correct:
//
//   - Incorrect answers always drop the concept back to the lapse interval,
//     no matter how long the previous interval was.
//   - Correct answers with high confidence double the current interval, with
//     a floor so that the first few confident answers still push the next
//     review usefully far out.
//   - Correct answers with medium or low confidence grow the interval by a
//     single day, again with a small floor.
//
// A concept that has never been reviewed enters with an interval of zero,
// so the floors decide its first real interval. Every branch returns at
// least one day; the scheduler never produces a same-day repeat.
func nextInterval(current int, correct bool, confidence domain.Confidence, params *Params) int {
	if !correct {
		return params.LapseInterval
	}

	if confidence == domain.ConfidenceHigh {
		next := current * params.HighConfidenceMultiplier
		if next < params.HighConfidenceFloor {
			next = params.HighConfidenceFloor
		}
		return next
	}

	next := current + params.CorrectIncrement
	if next < params.CorrectFloor {
		next = params.CorrectFloor
	}
	return next
}

// nextEntry builds the review entry that replaces the current one after a
// graded answer. The review clock is day-granular: now is truncated to a UTC
// date before the new interval is added, so grading at 09:00 and 23:00 of
// the same day produce the same next review date.
func nextEntry(
	current domain.ReviewEntry,
	correct bool,
	confidence domain.Confidence,
	now time.Time,
	params *Params,
) domain.ReviewEntry {
	interval := nextInterval(current.Interval, correct, confidence, params)
	return domain.ReviewEntry{
		Interval:   interval,
		NextReview: domain.DateOnly(now).AddDate(0, 0, interval),
	}
}
