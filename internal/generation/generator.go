package generation

import (
	"context"

	"github.com/phrazzld/drill-api/internal/domain"
)

// SyllabusRequest carries the learner-supplied framing used to generate a
// syllabus for a new project.
type SyllabusRequest struct {
	ProjectName string
	Level       string
	Notes       string
	SourceText  string
}

// QuizRequest describes a single quiz generation attempt. FocusConcepts is
// empty for a general round; when present, the generator is asked to
// concentrate items on those concepts.
type QuizRequest struct {
	ProjectName   string
	Level         string
	Syllabus      domain.Syllabus
	FocusConcepts []string
	ItemCount     int
}

// AnalogyRequest asks for an intuitive explanation of one concept.
type AnalogyRequest struct {
	ProjectName string
	Level       string
	Concept     string
}

// Generator defines the boundary between the application core and external
// LLM services. Implementations perform exactly one model call per
// invocation; retrying is never implicit, it happens only where the
// targeting protocol explicitly calls for a fallback attempt.
type Generator interface {
	// GenerateSyllabus produces the canonical concept list for a project.
	// The returned syllabus has passed structural validation.
	GenerateSyllabus(ctx context.Context, req SyllabusRequest) (domain.Syllabus, error)

	// GenerateQuiz produces a batch of structurally valid quiz items. The
	// batch as a whole is rejected with ErrInvalidResponse if the model
	// response deviates from the schema; syllabus membership of each
	// item's primary concept is the caller's concern.
	GenerateQuiz(ctx context.Context, req QuizRequest) ([]domain.QuizItem, error)

	// GenerateAnalogy produces a short intuitive explanation of a concept.
	GenerateAnalogy(ctx context.Context, req AnalogyRequest) (string, error)
}
