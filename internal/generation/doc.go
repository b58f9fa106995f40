// Package generation defines the boundary to external LLM services: the
// Generator interface, the prompts sent through it, and the sanitizer that
// turns raw model responses into validated domain values. Provider-specific
// clients (Gemini, OpenAI-compatible) live under internal/platform and
// implement the interface; everything above them is provider-agnostic.
package generation
