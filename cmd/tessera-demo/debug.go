package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/okanek/tessera/pkg/logging"
	"github.com/okanek/tessera/pkg/telemetry"
)

// debugServer exposes the renderer's metrics over HTTP next to the TUI:
// a Prometheus scrape endpoint, the JSON metric registry, and a health
// probe. It binds to loopback by default and dies with the run context.
type debugServer struct {
	log     *logging.Logger
	metrics *telemetry.Registry
	prom    *telemetry.PromExporter
}

// startDebugServer serves until ctx is done. Listen failures are returned
// through the channel so the caller can surface them without tearing down
// the TUI.
func startDebugServer(ctx context.Context, log *logging.Logger, addr string, metrics *telemetry.Registry, prom *telemetry.PromExporter) <-chan error {
	s := &debugServer{log: log, metrics: metrics, prom: prom}

	router := chi.NewRouter()
	router.Get("/healthz", s.handleHealthz)
	router.Get("/statz", s.handleStats)
	if prom != nil {
		router.Method(http.MethodGet, "/metrics", prom.Handler())
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info(logging.CategoryEngine, "debug_server", "serving debug endpoints", map[string]any{
			"addr": addr,
		})
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return errc
}

func (s *debugServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, map[string]string{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

func (s *debugServer) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.metrics.WriteJSON(w); err != nil {
		s.log.Warn(logging.CategoryEngine, "stats_encode", "failed to encode stats", map[string]any{
			"error": err.Error(),
		})
	}
}

func respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
