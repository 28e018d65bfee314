package service

import (
	"context"
	"io"

	"study-byte/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockGateway ---
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Generate(ctx context.Context, messages []domain.Message, jsonMode bool) (string, error) {
	args := m.Called(ctx, messages, jsonMode)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) GenerateStream(ctx context.Context, messages []domain.Message) domain.ChunkStream {
	args := m.Called(ctx, messages)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(domain.ChunkStream)
}

func (m *MockGateway) Model() string {
	return "mock-model"
}

// --- MockExtractor ---
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, r io.Reader, filename string) (string, error) {
	args := m.Called(ctx, r, filename)
	return args.String(0), args.Error(1)
}

// chunks returns a stream that yields the given fragments.
func chunks(parts ...string) domain.ChunkStream {
	return func(yield func(string, error) bool) {
		for _, p := range parts {
			if !yield(p, nil) {
				return
			}
		}
	}
}
