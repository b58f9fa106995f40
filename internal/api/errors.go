package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/drill-api/internal/api/shared"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/generation"
	"github.com/phrazzld/drill-api/internal/service"
	"github.com/phrazzld/drill-api/internal/service/auth"
	"github.com/phrazzld/drill-api/internal/service/targeting"
	"github.com/phrazzld/drill-api/internal/store"
	"github.com/phrazzld/drill-api/internal/syllabus"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrProjectNotFound),
		errors.Is(err, service.ErrProjectNotFound),
		errors.Is(err, syllabus.ErrNoMatch):
		return http.StatusNotFound

	// Conflict errors: the request is well-formed but the project state
	// refuses it.
	case errors.Is(err, store.ErrEmailExists),
		errors.Is(err, service.ErrLedgerNotEmpty),
		errors.Is(err, targeting.ErrNoActiveRound),
		errors.Is(err, domain.ErrDataCorruption):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, targeting.ErrIncompleteAnswers):
		return http.StatusBadRequest

	// Upstream generation failures. Transient failures invite a retry;
	// everything else from the generation pipeline is a bad gateway.
	case errors.Is(err, generation.ErrTransientFailure):
		return http.StatusServiceUnavailable
	case errors.Is(err, syllabus.ErrSyllabusUnavailable),
		errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrInvalidResponse),
		errors.Is(err, generation.ErrContentBlocked):
		return http.StatusBadGateway

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned):
		return "You do not own this project"

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrProjectNotFound),
		errors.Is(err, service.ErrProjectNotFound):
		return "Project not found"

	case errors.Is(err, syllabus.ErrNoMatch):
		return "Concept not found in syllabus"

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, service.ErrLedgerNotEmpty):
		return "Recorded progress exists; reset progress before regenerating the syllabus"

	case errors.Is(err, targeting.ErrNoActiveRound):
		return "No active quiz round; start a round first"

	case errors.Is(err, domain.ErrDataCorruption):
		return "Corrupted progress records detected; reset progress to clear them"

	// Bad request errors
	case errors.Is(err, targeting.ErrIncompleteAnswers):
		return "Answers must cover every round item exactly once"

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, store.ErrInvalidEntity):
		return "Invalid request data"

	// Upstream generation failures
	case errors.Is(err, generation.ErrTransientFailure):
		return "Generation service is temporarily unavailable; try again"

	case errors.Is(err, generation.ErrContentBlocked):
		return "Generation was blocked by the model's safety filters"

	case errors.Is(err, syllabus.ErrSyllabusUnavailable):
		return "Syllabus could not be generated"

	case errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrInvalidResponse):
		return "Quiz generation failed"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps an internal error onto its HTTP status and safe
// message and writes the error response, logging the full error redacted.
// A non-empty fallbackMessage overrides the mapped message for errors that
// map to an internal server error.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	status := MapErrorToStatusCode(err)

	message := GetSafeErrorMessage(err)
	if fallbackMessage != "" && status == http.StatusInternalServerError {
		message = fallbackMessage
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example input: "Key: 'LoginRequest.Email' Error:Field validation for
	// 'Email' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
