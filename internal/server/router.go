package server

import (
	"log/slog"
	"net/http"

	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// BasePath is the mount point of the employee API.
const BasePath = "/api/employees"

// NewRouter builds the employee API handler. Cross-origin requests are allowed
// from any origin with any method and header.
func NewRouter(log *slog.Logger, service EmployeeService, appMetrics *metrics.Metrics) http.Handler {
	useJSONFieldNames()

	engine := gin.New()
	engine.RedirectTrailingSlash = false
	engine.Use(gin.Recovery(), RequestID(), AccessLog(log), Instrument(appMetrics))

	NewEmployeeHandler(service, log).Register(engine.Group(BasePath))

	return cors.AllowAll().Handler(engine)
}
