package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Ygohr/queue-proxy-consumer/internal/config"
	"github.com/Ygohr/queue-proxy-consumer/internal/consumer"
	"github.com/Ygohr/queue-proxy-consumer/internal/logger"
	"github.com/Ygohr/queue-proxy-consumer/internal/service"
	"github.com/Ygohr/queue-proxy-consumer/tests/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu        sync.Mutex
	payloads  []string
	commits   int
	destroyed bool
	served    bool
}

func (r *recorder) snapshot() (int, int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payloads), r.commits, r.destroyed
}

func newProxy(t *testing.T, rec *recorder) *httptest.Server {
	t.Helper()

	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/consumers/app-group", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"instance_id": "c1",
			"base_uri":    server.URL + "/consumers/app-group/instances/c1",
		})
	})
	mux.HandleFunc("/consumers/app-group/instances/c1/topics/app-topic", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		rec.mu.Lock()
		defer rec.mu.Unlock()
		if rec.served {
			w.Write([]byte(`[]`))
			return
		}
		rec.served = true
		w.Write([]byte(`[
			{"topic": "app-topic", "key": null, "value": {"uuid": "a1"}, "partition": 0, "offset": 1},
			{"topic": "app-topic", "key": "k2", "value": {"uuid": "a2"}, "partition": 0, "offset": 2}
		]`))
	})
	mux.HandleFunc("/consumers/app-group/instances/c1/offsets", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		rec.mu.Lock()
		rec.commits++
		rec.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/consumers/app-group/instances/c1", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		rec.mu.Lock()
		rec.destroyed = true
		rec.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})

	server = httptest.NewServer(mux)
	return server
}

func TestApp_RunConsumesAndShutsDown(t *testing.T) {
	rec := &recorder{}
	proxyServer := newProxy(t, rec)
	defer proxyServer.Close()

	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.payloads = append(rec.payloads, string(body))
		rec.mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer target.Close()

	cfg := &config.Config{
		QueueProxyHost:        proxyServer.URL,
		QueueGroup:            "app-group",
		QueueTopic:            "app-topic",
		QueueOffset:           "smallest",
		QueueRequestTimeout:   5,
		QueueRetryAttempts:    1,
		QueueBreakerThreshold: 5,
		RequiredFields:        []string{"uuid"},
		TargetServiceUrl:      target.URL,
		HealthAddr:            "127.0.0.1:0",
		HealthShutdownTimeout: 1,
	}

	application, err := New(cfg, logger.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- application.run(ctx)
	}()

	assert.Eventually(t, func() bool {
		payloads, commits, _ := rec.snapshot()
		return payloads == 2 && commits == 1
	}, 5*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for application shutdown")
	}

	_, _, destroyed := rec.snapshot()
	assert.True(t, destroyed)
	assert.False(t, application.consumer.IsRunning())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.JSONEq(t, `{"uuid": "a1"}`, rec.payloads[0])
	assert.JSONEq(t, `{"uuid": "a2"}`, rec.payloads[1])
}

func TestNew_InvalidProxyHost(t *testing.T) {
	cfg := &config.Config{QueueProxyHost: "not a url", QueueGroup: "g", QueueTopic: "t"}

	_, err := New(cfg, logger.NewNop())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create queue proxy client")
}

func TestApp_SetupHandlers(t *testing.T) {
	tests := []struct {
		name          string
		fields        []string
		wantValidator interface{}
	}{
		{name: "default validator", wantValidator: &consumer.DefaultValidator{}},
		{name: "required fields validator", fields: []string{"uuid"}, wantValidator: &service.RequiredFieldsValidator{Fields: []string{"uuid"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockConsumer := &mocks.MockConsumer{}
			mockConsumer.On("Subscribe", "app-topic", mock.AnythingOfType("consumer.MessageHandler")).Return(nil)
			mockConsumer.On("AddValidator", "app-topic", tt.wantValidator).Return(nil)

			application := &App{
				config:   &config.Config{QueueTopic: "app-topic", TargetServiceUrl: "http://localhost:8081", RequiredFields: tt.fields},
				logger:   logger.NewNop(),
				consumer: mockConsumer,
			}

			require.NoError(t, application.setupHandlers())
			mockConsumer.AssertExpectations(t)
		})
	}
}

func TestApp_RunFailsWhenConsumerCannotStart(t *testing.T) {
	mockConsumer := &mocks.MockConsumer{}
	mockConsumer.On("Subscribe", mock.Anything, mock.Anything).Return(nil)
	mockConsumer.On("AddValidator", mock.Anything, mock.Anything).Return(nil)
	mockConsumer.On("Start", mock.Anything).Return(errors.New("consumer already running"))

	application := &App{
		config:   &config.Config{QueueTopic: "app-topic"},
		logger:   logger.NewNop(),
		consumer: mockConsumer,
	}

	err := application.run(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start consumer")
	mockConsumer.AssertNotCalled(t, "Stop", mock.Anything)
}
