package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Ygohr/queue-proxy-consumer/internal/consumer/models"
	"github.com/Ygohr/queue-proxy-consumer/tests/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewRecordProcessor(t *testing.T) {
	mockLogger := &mocks.MockLogger{}
	targetURL := "http://localhost:8081/api/v1/messages"

	processor := NewRecordProcessor(targetURL, mockLogger)

	assert.NotNil(t, processor)
}

func TestRecordProcessor_Process_ValidMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "messages", r.Header.Get("X-Origin-Topic"))
		assert.Equal(t, "1", r.Header.Get("X-Origin-Offset"))
		assert.Equal(t, "key-1", r.Header.Get("X-Origin-Key"))

		var payload map[string]string
		err := json.NewDecoder(r.Body).Decode(&payload)
		assert.NoError(t, err)
		assert.Equal(t, "c8d3b2a0", payload["uuid"])

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "success"})
	}))
	defer server.Close()

	mockLogger := &mocks.MockLogger{}
	mockLogger.On("Infof", mock.AnythingOfType("string"), mock.Anything, mock.Anything, mock.Anything).Return()
	mockLogger.On("Infof", mock.AnythingOfType("string"), mock.Anything).Return()

	processor := NewRecordProcessor(server.URL, mockLogger)

	message := models.Message{
		Topic:     "messages",
		Partition: 0,
		Offset:    1,
		Key:       []byte("key-1"),
		Value:     []byte(`{"uuid": "c8d3b2a0"}`),
	}

	err := processor.Process(context.Background(), message)

	assert.NoError(t, err)
	mockLogger.AssertExpectations(t)
}

func TestRecordProcessor_Process_TargetServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	mockLogger := &mocks.MockLogger{}
	mockLogger.On("Infof", mock.AnythingOfType("string"), mock.Anything, mock.Anything, mock.Anything).Return()
	mockLogger.On("Errorf", mock.AnythingOfType("string"), mock.Anything).Return()

	processor := NewRecordProcessor(server.URL, mockLogger)

	err := processor.Process(context.Background(), models.Message{Topic: "messages", Value: []byte(`{}`)})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "target service returned error status: 502")
	mockLogger.AssertExpectations(t)
}

func TestRecordProcessor_Process_EmptyPayload(t *testing.T) {
	mockLogger := &mocks.MockLogger{}
	mockLogger.On("Infof", mock.AnythingOfType("string"), mock.Anything, mock.Anything, mock.Anything).Return()
	mockLogger.On("Errorf", mock.AnythingOfType("string"), mock.Anything).Return()

	processor := NewRecordProcessor("http://localhost:8081/api/v1/messages", mockLogger)

	err := processor.Process(context.Background(), models.Message{Topic: "messages", Offset: 1})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "record has no payload")
	mockLogger.AssertExpectations(t)
}
