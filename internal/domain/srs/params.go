package srs

// Params defines all configurable parameters for the review scheduler.
type Params struct {
	// HighConfidenceMultiplier scales the current interval after a correct
	// answer reported with high confidence.
	HighConfidenceMultiplier int

	// HighConfidenceFloor is the minimum interval in days after a correct,
	// high-confidence answer. It keeps early confident answers from
	// producing trivially short intervals.
	HighConfidenceFloor int

	// CorrectIncrement is added to the current interval after a correct
	// answer with medium or low confidence.
	CorrectIncrement int

	// CorrectFloor is the minimum interval in days after a correct answer
	// with medium or low confidence.
	CorrectFloor int

	// LapseInterval is the interval assigned after any incorrect answer,
	// regardless of the previous interval.
	LapseInterval int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		HighConfidenceMultiplier: 2,
		HighConfidenceFloor:      5,
		CorrectIncrement:         1,
		CorrectFloor:             2,
		LapseInterval:            1,
	}
}
