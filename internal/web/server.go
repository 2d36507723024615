// Package web provides the local lobby console: a JSON API over the shared
// visitor cache, notifications, bulk actions, exports and metrics.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/evcraddock/gatepass/internal/lobby"
	"github.com/evcraddock/gatepass/internal/logging"
	"github.com/evcraddock/gatepass/internal/metrics"
	"github.com/evcraddock/gatepass/internal/notify"
)

// Config holds console server options.
type Config struct {
	// Token, when set, is required as a Bearer token on /api/ and /export/.
	Token string
}

// Server is the console HTTP server.
type Server struct {
	cache   *lobby.Cache
	center  *notify.Center
	bulk    *lobby.Bulk
	logger  zerolog.Logger
	config  Config
	mux     *http.ServeMux
	handler http.Handler
	now     func() time.Time
}

// NewServer creates a console server over cache. bulk may be nil, which
// disables the bulk endpoint.
func NewServer(cache *lobby.Cache, center *notify.Center, bulk *lobby.Bulk, logger zerolog.Logger, config Config) *Server {
	metrics.Register()

	s := &Server{
		cache:  cache,
		center: center,
		bulk:   bulk,
		logger: logger,
		config: config,
		mux:    http.NewServeMux(),
		now:    time.Now,
	}

	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.Handle("/metrics", promhttp.Handler())
	s.mux.HandleFunc("/api/visitors", s.handleVisitors)
	s.mux.HandleFunc("/api/analytics", s.handleAnalytics)
	s.mux.HandleFunc("/api/report", s.handleReport)
	s.mux.HandleFunc("/api/notifications", s.handleNotifications)
	s.mux.HandleFunc("/api/notifications/", s.handleNotificationRoute)
	s.mux.HandleFunc("/api/bulk/", s.handleBulk)
	s.mux.HandleFunc("/export/", s.handleExport)

	var h http.Handler = s.mux
	h = RequireToken(config.Token, h)
	h = logging.RequestLogger(logger, h)
	h = ObserveRequests(h)
	h = WithRequestID(h)
	s.handler = h

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on port until ctx is done, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", "http://localhost"+srv.Addr).Msg("starting console")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down console: %w", err)
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	apiJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
