package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/UnknownOlympus/hestia/internal/lib/logger/sl"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const readHeaderTimeout = 5 * time.Second

// StartAPIServer serves the employee API on port until ctx is cancelled.
func StartAPIServer(
	ctx context.Context,
	log *slog.Logger,
	handler http.Handler,
	port int,
	shutdownTimeout time.Duration,
) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(port)),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return serve(ctx, log.With(slog.String("server", "api")), srv, shutdownTimeout)
}

// StartMonitoringServer serves /healthz and /metrics on port until ctx is cancelled.
// db may be nil when the service runs on the in-memory store.
func StartMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	db DBPinger,
	port int,
) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(port)),
		Handler:           NewMonitoringMux(log, reg, db),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return serve(ctx, log.With(slog.String("server", "monitoring")), srv, readHeaderTimeout)
}

// NewMonitoringMux routes /healthz and /metrics.
func NewMonitoringMux(log *slog.Logger, reg *prometheus.Registry, db DBPinger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/healthz", NewHealthChecker(db, log))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true}))

	return mux
}

func serve(ctx context.Context, log *slog.Logger, srv *http.Server, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)

	go func() {
		log.InfoContext(ctx, "HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve on %s: %w", srv.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	log.InfoContext(ctx, "Shutting down HTTP server", "timeout", shutdownTimeout.String())

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(shutdownCtx, "Forced shutdown", sl.Err(err))
		return fmt.Errorf("failed to shut down server on %s: %w", srv.Addr, err)
	}

	log.InfoContext(shutdownCtx, "HTTP server stopped")

	return nil
}
