// Package openai implements the generation.Generator interface on the
// OpenAI chat completions API, including OpenAI-compatible servers reached
// through a custom base URL.
//
// It mirrors the gemini package: shared prompt templates in, exactly one
// model call per operation, raw text handed to the generation sanitizer.
package openai
