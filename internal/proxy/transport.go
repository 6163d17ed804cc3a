package proxy

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	headerHost          = "Host"
	headerRequestID     = "X-Request-Id"
	headerAuthorization = "Authorization"
)

// Response is a fully read proxy response.
type Response struct {
	StatusCode int
	Body       []byte
}

// Transport issues a single request against the proxy. Release frees pooled
// connections; a released transport fails every further call with
// ErrTransportReleased.
type Transport interface {
	Issue(ctx context.Context, method, uri string, headers map[string]string, body []byte) (*Response, error)
	Release()
}

type HTTPTransport struct {
	client           *http.Client
	authorizationKey string
	mu               sync.RWMutex
	released         bool
}

func NewHTTPTransport(timeout time.Duration, authorizationKey string) *HTTPTransport {
	return &HTTPTransport{
		client: &http.Client{
			Timeout:   timeout,
			Transport: http.DefaultTransport.(*http.Transport).Clone(),
		},
		authorizationKey: authorizationKey,
	}
}

func (t *HTTPTransport) Issue(ctx context.Context, method, uri string, headers map[string]string, body []byte) (*Response, error) {
	t.mu.RLock()
	released := t.released
	t.mu.RUnlock()
	if released {
		return nil, ErrTransportReleased
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, uri, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	for key, value := range headers {
		// net/http ignores the Host entry of req.Header
		if http.CanonicalHeaderKey(key) == headerHost {
			req.Host = value
			continue
		}
		req.Header.Set(key, value)
	}
	if req.Header.Get(headerRequestID) == "" {
		req.Header.Set(headerRequestID, uuid.NewString())
	}
	if t.authorizationKey != "" && req.Header.Get(headerAuthorization) == "" {
		req.Header.Set(headerAuthorization, t.authorizationKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send HTTP request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: payload}, nil
}

func (t *HTTPTransport) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.released {
		return
	}
	t.released = true
	t.client.CloseIdleConnections()
}
