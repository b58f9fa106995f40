package service_test

import (
	"context"

	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/events"
	"github.com/phrazzld/drill-api/internal/generation"
	"github.com/stretchr/testify/mock"
)

// MockGenerator mocks the generation.Generator interface
type MockGenerator struct {
	mock.Mock
}

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

// MockEventEmitter mocks the events.EventEmitter interface
type MockEventEmitter struct {
	mock.Mock
}

func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
