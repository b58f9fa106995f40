package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/phrazzld/drill-api/internal/domain"
)

// Envelope shapes the model is instructed to respond with. Decoding is
// strict: unknown fields anywhere in the payload fail the whole response.
type (
	syllabusEnvelope struct {
		Syllabus []string `json:"syllabus"`
	}
	quizEnvelope struct {
		Quiz []domain.QuizItem `json:"quiz"`
	}
	analogyEnvelope struct {
		Analogy string `json:"analogy"`
	}
)

// ParseSyllabusResponse extracts and validates a syllabus from a raw model
// response. Entries are whitespace-trimmed before validation; any structural
// violation rejects the whole response with ErrInvalidResponse.
func ParseSyllabusResponse(raw string) (domain.Syllabus, error) {
	payload, err := extractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	var env syllabusEnvelope
	if err := decodeStrict(payload, &env); err != nil {
		return nil, err
	}

	syllabus := make(domain.Syllabus, 0, len(env.Syllabus))
	for _, concept := range env.Syllabus {
		syllabus = append(syllabus, strings.TrimSpace(concept))
	}

	if err := syllabus.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return syllabus, nil
}

// ParseQuizResponse extracts and validates a quiz batch from a raw model
// response. Validation is all-or-nothing: one malformed item, a duplicate
// ID, or an empty batch rejects the entire response with ErrInvalidResponse.
// Items are returned exactly as the model produced them; no field is
// repaired or coerced.
func ParseQuizResponse(raw string) ([]domain.QuizItem, error) {
	payload, err := extractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	var env quizEnvelope
	if err := decodeStrict(payload, &env); err != nil {
		return nil, err
	}

	if len(env.Quiz) == 0 {
		return nil, fmt.Errorf("%w: quiz batch is empty", ErrInvalidResponse)
	}

	seen := make(map[int]struct{}, len(env.Quiz))
	for i := range env.Quiz {
		item := &env.Quiz[i]
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate item id %d", ErrInvalidResponse, item.ID)
		}
		seen[item.ID] = struct{}{}
	}

	return env.Quiz, nil
}

// ParseAnalogyResponse extracts an analogy text from a raw model response.
func ParseAnalogyResponse(raw string) (string, error) {
	payload, err := extractJSONObject(raw)
	if err != nil {
		return "", err
	}

	var env analogyEnvelope
	if err := decodeStrict(payload, &env); err != nil {
		return "", err
	}

	analogy := strings.TrimSpace(env.Analogy)
	if analogy == "" {
		return "", fmt.Errorf("%w: analogy is empty", ErrInvalidResponse)
	}

	return analogy, nil
}

// extractJSONObject locates the first balanced top-level JSON object in raw.
// Models wrap payloads in prose and markdown fences; everything before the
// opening brace and after its matching close is ignored. String literals are
// tracked so braces inside them do not affect nesting.
func extractJSONObject(raw string) (string, error) {
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i, r := range raw {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}

		switch r {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return raw[start : i+1], nil
			}
		}
	}

	if start != -1 {
		return "", fmt.Errorf("%w: unbalanced JSON object", ErrInvalidResponse)
	}
	return "", fmt.Errorf("%w: no JSON object found", ErrInvalidResponse)
}

// decodeStrict unmarshals payload into v, rejecting unknown fields at every
// nesting level.
func decodeStrict(payload string, v any) error {
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}
