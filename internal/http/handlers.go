package http

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jmcallister/forecast-service/internal/forecast"
	"github.com/jmcallister/forecast-service/internal/lifecycle"
	"github.com/jmcallister/forecast-service/internal/observability"
)

// Handler holds dependencies for the forecast API handlers.
type Handler struct {
	forecastDays int
	logger       *zap.Logger
}

// NewHandler returns a new Handler serving forecastDays records per request.
func NewHandler(forecastDays int, logger *zap.Logger) *Handler {
	return &Handler{
		forecastDays: forecastDays,
		logger:       logger,
	}
}

// GetForecast handles GET /weatherforecast. Records are generated fresh
// per request and never stored.
func (h *Handler) GetForecast(w http.ResponseWriter, r *http.Request) {
	records := forecast.Sample(h.forecastDays)
	observability.ForecastQueriesTotal.Inc()
	h.logger.Debug("forecast generated", zap.Int("days", h.forecastDays))
	writeJSON(w, http.StatusOK, records)
}

// GetHealth handles GET /healthz.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	statusCode := http.StatusOK
	if lifecycle.IsShuttingDown() {
		status = "shutting-down"
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, map[string]interface{}{
		"status":    status,
		"service":   "forecast-service",
		"version":   "dev",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// writeJSON writes a JSON response with the specified HTTP status code.
// Sets Content-Type header to application/json and encodes the provided value.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard error format with code,
// message, and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	corrID := ""
	if v := r.Context().Value("correlation_id"); v != nil {
		corrID = v.(string)
	}
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": corrID,
		},
	})
}
