package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockPublisher simula un publisher de eventos.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event interface{}) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
