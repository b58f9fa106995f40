// Package gemini implements the generation.Generator interface on Google's
// Gemini API.
//
// The package is an infrastructure adapter: it renders the shared prompt
// templates from the generation package, performs exactly one model call per
// operation, and runs the raw response through the generation sanitizer. All
// schema enforcement lives in the sanitizer; this package only handles
// transport, safety-block detection, and error classification.
package gemini
