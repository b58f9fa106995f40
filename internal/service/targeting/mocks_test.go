package targeting_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/generation"
)

// MockGenerator is a testify mock for generation.Generator.
type MockGenerator struct {
	mock.Mock
}

var _ generation.Generator = (*MockGenerator)(nil)

func (m *MockGenerator) GenerateSyllabus(
	ctx context.Context,
	req generation.SyllabusRequest,
) (domain.Syllabus, error) {
	args := m.Called(ctx, req)
	syl, _ := args.Get(0).(domain.Syllabus)
	return syl, args.Error(1)
}

func (m *MockGenerator) GenerateQuiz(
	ctx context.Context,
	req generation.QuizRequest,
) ([]domain.QuizItem, error) {
	args := m.Called(ctx, req)
	items, _ := args.Get(0).([]domain.QuizItem)
	return items, args.Error(1)
}

func (m *MockGenerator) GenerateAnalogy(
	ctx context.Context,
	req generation.AnalogyRequest,
) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
