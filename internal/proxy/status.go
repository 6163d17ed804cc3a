package proxy

import (
	"fmt"
	"sync"
)

const (
	messagesConsumedFmt = "%d messages consumed"
	StatusDestroyed     = "Consumer has been destroyed"
)

// StatusTracker holds the last observed health string. Writers race with
// last-write-wins semantics; reads are safe from any goroutine.
type StatusTracker struct {
	mu      sync.RWMutex
	status  string
	healthy bool
}

func NewStatusTracker() *StatusTracker {
	return &StatusTracker{
		status:  fmt.Sprintf(messagesConsumedFmt, 0),
		healthy: true,
	}
}

func (s *StatusTracker) Healthy(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = fmt.Sprintf(messagesConsumedFmt, count)
	s.healthy = true
}

func (s *StatusTracker) Unhealthy(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = msg
	s.healthy = false
}

func (s *StatusTracker) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *StatusTracker) IsHealthy() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.healthy
}
