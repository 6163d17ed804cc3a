package mocks

import (
	"context"
	"net/url"

	"github.com/Ygohr/queue-proxy-consumer/internal/consumer/models"
	"github.com/Ygohr/queue-proxy-consumer/internal/proxy"
	"github.com/stretchr/testify/mock"
)

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Issue(ctx context.Context, method, uri string, headers map[string]string, body []byte) (*proxy.Response, error) {
	args := m.Called(ctx, method, uri, headers, body)
	resp, _ := args.Get(0).(*proxy.Response)
	return resp, args.Error(1)
}

func (m *MockTransport) Release() {
	m.Called()
}

type MockLifecycle struct {
	mock.Mock
}

func (m *MockLifecycle) CreateConsumerInstance(ctx context.Context) (*url.URL, error) {
	args := m.Called(ctx)
	instance, _ := args.Get(0).(*url.URL)
	return instance, args.Error(1)
}

func (m *MockLifecycle) ConsumeMessages(ctx context.Context, instance *url.URL) ([]proxy.MessageRecord, error) {
	args := m.Called(ctx, instance)
	records, _ := args.Get(0).([]proxy.MessageRecord)
	return records, args.Error(1)
}

func (m *MockLifecycle) CommitOffsets(ctx context.Context, instance *url.URL) error {
	args := m.Called(ctx, instance)
	return args.Error(0)
}

func (m *MockLifecycle) DestroyConsumerInstance(ctx context.Context, instance *url.URL) error {
	args := m.Called(ctx, instance)
	return args.Error(0)
}

type MockDLQPublisher struct {
	mock.Mock
}

func (m *MockDLQPublisher) SendToDLQ(ctx context.Context, originalMsg models.Message, err error, retryCount int) error {
	args := m.Called(ctx, originalMsg, err, retryCount)
	return args.Error(0)
}
