package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrNotOwned indicates a resource is owned by a different user than the one making the request.
	// This is typically returned when a user attempts to access a project they don't own.
	// API layer should map this to HTTP 403 Forbidden.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrProjectNotFound indicates that the requested project does not exist.
	// API layer should map this to HTTP 404 Not Found.
	ErrProjectNotFound = errors.New("project not found")

	// ErrLedgerNotEmpty indicates that syllabus regeneration was refused
	// because graded attempts are already recorded against the current
	// syllabus. Regenerating under recorded progress would silently detach
	// the ledger from the concept list it was built on, so the caller must
	// reset progress first.
	// API layer should map this to HTTP 409 Conflict.
	ErrLedgerNotEmpty = errors.New("recorded progress exists; reset required before regenerating syllabus")
)
