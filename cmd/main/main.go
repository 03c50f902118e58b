package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/UnknownOlympus/hestia/internal/config"
	"github.com/UnknownOlympus/hestia/internal/lib/logger/sl"
	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/UnknownOlympus/hestia/internal/repository"
	"github.com/UnknownOlympus/hestia/internal/server"
	"github.com/UnknownOlympus/hestia/internal/services/employees"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

// main is the entry point of the application.
func main() {
	var wgr sync.WaitGroup
	delta := 2

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()

	logger := setupLogger(cfg.Env)
	if cfg.Env != envLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	var newRepo employees.RepoFactory
	var pinger server.DBPinger

	switch cfg.Storage {
	case config.StorageMemory:
		store := repository.NewMemoryStore()
		newRepo = func() repository.EmployeeRepoIface { return store.NewContext() }
		logger.WarnContext(ctx, "Using in-memory storage, data will not survive a restart")
	default:
		dtb, err := repository.NewDatabase(
			cfg.Postgres.Host, cfg.Postgres.Port, cfg.Postgres.User, cfg.Postgres.Password, cfg.Postgres.Dbname)
		if err != nil {
			log.Fatalf("Failed to connect to DB: %v", err)
		}
		defer dtb.Close()

		newRepo = func() repository.EmployeeRepoIface { return repository.NewEmployeeRepository(dtb, appMetrics) }
		pinger = dtb
	}

	registry := employees.NewRegistry(logger, newRepo, appMetrics)
	router := server.NewRouter(logger, registry, appMetrics)

	wgr.Add(delta)

	go func() {
		defer wgr.Done()
		if err := server.StartMonitoringServer(ctx, logger, reg, pinger, cfg.Monitoring.Port); err != nil {
			logger.ErrorContext(ctx, "Monitoring server failed", sl.Err(err))
			stop()
		}
	}()

	go func() {
		defer wgr.Done()
		logger.InfoContext(ctx, "Starting Employee API", "port", cfg.HTTP.Port, "storage", cfg.Storage)
		if err := server.StartAPIServer(ctx, logger, router, cfg.HTTP.Port, cfg.HTTP.ShutdownTimeout); err != nil {
			logger.ErrorContext(ctx, "Employee API failed", sl.Err(err))
			stop()
		}
		logger.InfoContext(ctx, "Employee API stopped.")
	}()

	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	wgr.Wait()

	logger.InfoContext(ctx, "Application stopped gracefully...")
}

// setupLogger initializes and returns a logger based on the environment provided.
// Local runs get human readable debug output, every other env logs JSON.
func setupLogger(env string) *slog.Logger {
	opts := &slog.HandlerOptions{ReplaceAttr: dropTime}

	switch env {
	case envLocal:
		opts = &slog.HandlerOptions{Level: slog.LevelDebug}
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	case envDev:
		opts.Level = slog.LevelInfo
		opts.ReplaceAttr = nil
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	case envProd:
		opts.Level = slog.LevelWarn
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}

	opts.Level = slog.LevelError
	log := slog.New(slog.NewJSONHandler(os.Stdout, opts))
	log.Error(
		"The env parameter was not specified, or was invalid. Logging will be minimal, by default." +
			" Please specify the value of `HESTIA_ENV`: local, development, production")

	return log
}

// dropTime removes the time attribute, the log collector stamps records itself.
func dropTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey {
		return slog.Attr{}
	}

	return a
}
