package portal

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/jmcallister/forecast-service/internal/apiclient"
	"github.com/jmcallister/forecast-service/internal/forecast"
	"github.com/jmcallister/forecast-service/internal/identity"
)

// Handler serves the portal pages backed by the forecast API. A fresh
// authenticated client is built per request and discarded afterwards, so
// each page load carries a newly acquired token.
type Handler struct {
	identity identity.Config
	logger   *zap.Logger
}

// NewHandler returns a portal Handler calling the API described by id.
func NewHandler(id identity.Config, logger *zap.Logger) *Handler {
	return &Handler{
		identity: id,
		logger:   logger,
	}
}

// GetForecasts handles GET /. It fetches forecasts through the
// authenticated client wrapper; any failure, token acquisition included,
// is relayed to the caller as a 400 with the error message verbatim.
func (h *Handler) GetForecasts(w http.ResponseWriter, r *http.Request) {
	client, err := apiclient.New(r.Context(), h.identity)
	if err != nil {
		h.logger.Warn("client construction failed", zap.Error(err))
		writeFailure(w, err)
		return
	}

	var records []forecast.Record
	if err := client.Get(r.Context(), r.URL.RawQuery, &records); err != nil {
		h.logger.Warn("forecast fetch failed", zap.Error(err))
		writeFailure(w, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

// GetHealth handles GET /healthz for the portal process itself.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "forecast-portal",
	})
}

func writeFailure(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
