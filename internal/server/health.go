package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/hestia/internal/lib/logger/sl"
)

const (
	pingTimeout = 2 * time.Second

	dbStatusOK          = "ok"
	dbStatusUnavailable = "unavailable"
	dbStatusInMemory    = "in-memory"
)

// DBPinger is satisfied by *pgxpool.Pool.
type DBPinger interface {
	Ping(ctx context.Context) error
}

type HealthChecker struct {
	db  DBPinger
	log *slog.Logger
}

// NewHealthChecker builds the /healthz handler. A nil db means the service runs
// on the in-memory store and there is nothing to ping.
func NewHealthChecker(db DBPinger, log *slog.Logger) *HealthChecker {
	return &HealthChecker{db: db, log: log.With(slog.String("division", "health"))}
}

func (h *HealthChecker) ServeHTTP(writer http.ResponseWriter, req *http.Request) {
	dbStatus, code := h.checkDatabase(req.Context())

	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(code)
	if err := json.NewEncoder(writer).Encode(map[string]string{"database": dbStatus}); err != nil {
		h.log.ErrorContext(req.Context(), "Failed to write health check response", sl.Err(err))
	}
}

func (h *HealthChecker) checkDatabase(ctx context.Context) (string, int) {
	if h.db == nil {
		return dbStatusInMemory, http.StatusOK
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.log.WarnContext(ctx, "Health check failed: DB ping", sl.Err(err))
		return dbStatusUnavailable, http.StatusServiceUnavailable
	}

	return dbStatusOK, http.StatusOK
}
