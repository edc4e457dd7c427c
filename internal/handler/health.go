package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JournalHealth reports journal connectivity.
type JournalHealth interface {
	Healthy() bool
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	store   Pinger
	journal JournalHealth
}

// NewHealthHandler creates a new health handler. journal may be nil when
// journaling is disabled.
func NewHealthHandler(store Pinger, journal JournalHealth) *HealthHandler {
	return &HealthHandler{
		store:   store,
		journal: journal,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "session store unreachable",
		})
		return
	}

	if h.journal != nil && !h.journal.Healthy() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "NATS not connected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
