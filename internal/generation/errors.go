package generation

import "errors"

// Common errors returned by the generation package
var (
	// ErrGenerationFailed is returned when the language model call itself
	// fails: network errors, timeouts, cancellation, or an empty response.
	ErrGenerationFailed = errors.New("failed to generate content from language model")

	// ErrInvalidResponse is returned when a model response cannot be parsed
	// into the expected schema. The whole response is rejected; there is no
	// partial recovery of individual records.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the model refuses the request due
	// to safety filters.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure classifies temporary provider errors such as rate
	// limits. Callers do not retry on it implicitly; it exists so the API
	// layer can report the failure as retriable.
	ErrTransientFailure = errors.New("transient error during generation")

	// ErrInvalidConfig is returned when the generator configuration is invalid
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
