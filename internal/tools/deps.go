// Package tools provides MCP tool handlers and registration.
package tools

import (
	"log/slog"

	"github.com/raphaelgruber/deptrack/internal/metrics"
	"github.com/raphaelgruber/deptrack/internal/service"
)

// Dependencies holds shared services for tool handlers.
// Passed to handler factories via closure capture.
type Dependencies struct {
	Service *service.DependencyService
	Metrics *metrics.Collector
	Logger  *slog.Logger
}
