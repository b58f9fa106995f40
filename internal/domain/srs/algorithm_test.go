package srs

import (
	"testing"
	"time"

	"github.com/phrazzld/drill-api/internal/domain"
)

func TestNextInterval(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()

	testCases := []struct {
		name       string
		current    int
		correct    bool
		confidence domain.Confidence
		expected   int
	}{
		{
			name:       "first confident correct answer jumps to the floor",
			current:    0,
			correct:    true,
			confidence: domain.ConfidenceHigh,
			expected:   5, // max(0*2, 5)
		},
		{
			name:       "confident correct answer doubles a running interval",
			current:    3,
			correct:    true,
			confidence: domain.ConfidenceHigh,
			expected:   6, // max(3*2, 5)
		},
		{
			name:       "confident correct answer at the floor boundary",
			current:    2,
			correct:    true,
			confidence: domain.ConfidenceHigh,
			expected:   5, // max(2*2, 5)
		},
		{
			name:       "first hesitant correct answer lands on the small floor",
			current:    0,
			correct:    true,
			confidence: domain.ConfidenceLow,
			expected:   2, // max(0+1, 2)
		},
		{
			name:       "hesitant correct answer grows by one day",
			current:    2,
			correct:    true,
			confidence: domain.ConfidenceMedium,
			expected:   3, // max(2+1, 2)
		},
		{
			name:       "incorrect answer resets to the lapse interval",
			current:    10,
			correct:    false,
			confidence: domain.ConfidenceHigh,
			expected:   1,
		},
		{
			name:       "incorrect first answer also gets the lapse interval",
			current:    0,
			correct:    false,
			confidence: domain.ConfidenceLow,
			expected:   1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := nextInterval(tc.current, tc.correct, tc.confidence, params)

			if got != tc.expected {
				t.Errorf("Expected interval %d, got %d", tc.expected, got)
			}

			if got < 1 {
				t.Errorf("Interval must always be at least one day, got %d", got)
			}
		})
	}
}

func TestNextEntry(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()
	now := time.Date(2025, 3, 14, 17, 45, 0, 0, time.UTC)

	entry := nextEntry(domain.ReviewEntry{}, true, domain.ConfidenceHigh, now, params)

	if entry.Interval != 5 {
		t.Errorf("Expected interval 5, got %d", entry.Interval)
	}

	expectedDate := time.Date(2025, 3, 19, 0, 0, 0, 0, time.UTC)
	if !entry.NextReview.Equal(expectedDate) {
		t.Errorf("Expected next review %v, got %v", expectedDate, entry.NextReview)
	}
}

func TestNextEntrySameDayEquivalence(t *testing.T) {
	t.Parallel() // Enable parallel execution
	params := NewDefaultParams()
	current := domain.ReviewEntry{Interval: 2}

	morning := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	night := time.Date(2025, 3, 14, 23, 59, 59, 0, time.UTC)

	a := nextEntry(current, true, domain.ConfidenceMedium, morning, params)
	b := nextEntry(current, true, domain.ConfidenceMedium, night, params)

	if !a.NextReview.Equal(b.NextReview) {
		t.Errorf("Expected same review date for same-day grading, got %v and %v",
			a.NextReview, b.NextReview)
	}
}
