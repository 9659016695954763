// Package health exposes the connector's aggregate ledger connectivity as a
// small JSON endpoint.
package health

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Status is the enumerated ledger-health value reported to callers.
type Status string

const (
	// StatusOK means every registered ledger handle reports connected.
	StatusOK Status = "ok"
	// StatusNotOK is the initial state and means at least one handle is
	// not connected.
	StatusNotOK Status = "not ok"
)

// StatusReporter is the aggregate connectivity poll the handler serves.
type StatusReporter interface {
	GetStatus() bool
}

// Handler serves the ledger-health endpoint.
type Handler struct {
	registry StatusReporter
	logger   *zap.Logger
}

// NewHandler creates a health handler over a multiledger registry.
func NewHandler(registry StatusReporter, logger *zap.Logger) *Handler {
	return &Handler{
		registry: registry,
		logger:   logger,
	}
}

// HealthResponse is the JSON body returned by the health endpoint.
type HealthResponse struct {
	LedgersHealth Status `json:"ledgersHealth"`
}

// ServeHTTP handles GET requests and reports aggregate ledger connectivity.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	status := StatusNotOK
	code := http.StatusServiceUnavailable
	if h.registry.GetStatus() {
		status = StatusOK
		code = http.StatusOK
	}
	h.writeJSON(w, code, HealthResponse{LedgersHealth: status})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("failed to write JSON response", zap.Error(err))
	}
}
