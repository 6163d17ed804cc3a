package health

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/Ygohr/queue-proxy-consumer/internal/logger"
)

// StatusSource reports the consumer's last observed outcome.
type StatusSource interface {
	Get() string
	IsHealthy() bool
}

type Config struct {
	Address         string
	ShutdownTimeout time.Duration
}

// Server exposes the consumer status for monitoring and orchestration.
type Server struct {
	config   Config
	status   StatusSource
	log      logger.Logger
	server   *http.Server
	mu       sync.Mutex
	listener net.Listener
}

func New(cfg Config, status StatusSource, log logger.Logger) *Server {
	s := &Server{
		config: cfg,
		status: status,
		log:    log,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/__health", s.handleHealth)
	mux.HandleFunc("/__gtg", s.handleGoodToGo)

	s.server = &http.Server{
		Addr:         cfg.Address,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return s
}

// Addr returns the listener's address, or "" before Listen is called.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Listen serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Listen(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.log.Infof("Starting health check server - address: %s", listener.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("Health check server shutdown error: %v", err)
			return err
		}

		s.log.Infof("Health check server stopped")
		return nil
	}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Healthy bool   `json:"healthy"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	healthy := s.status.IsHealthy()

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(HealthResponse{
		Status:  s.status.Get(),
		Healthy: healthy,
	})
}

func (s *Server) handleGoodToGo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=US-ASCII")
	if !s.status.IsHealthy() {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(s.status.Get()))
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
