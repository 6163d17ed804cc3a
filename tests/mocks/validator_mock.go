package mocks

import (
	"github.com/Ygohr/queue-proxy-consumer/internal/consumer/models"
	"github.com/stretchr/testify/mock"
)

type MockValidator struct {
	mock.Mock
}

func (m *MockValidator) Validate(msg models.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}
