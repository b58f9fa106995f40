package mastery

// Params defines the thresholds used to classify concept mastery.
type Params struct {
	// Threshold is the correctness ratio below which a concept counts as
	// weak. The comparison is strict: a ratio exactly at the threshold
	// classifies as strong.
	Threshold float64

	// MinSampleSize is the attempt count below which a classification
	// carries a low-confidence annotation. The annotation is informational
	// only; it never changes the level or how targeting treats the concept.
	MinSampleSize int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		Threshold:     0.80,
		MinSampleSize: 3,
	}
}
