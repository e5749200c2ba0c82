package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/shelfscan/internal/models"
	"github.com/lehigh-university-libraries/shelfscan/internal/pipeline"
	"github.com/lehigh-university-libraries/shelfscan/internal/resolve"
	"github.com/lehigh-university-libraries/shelfscan/internal/storage"
)

// Wall-clock budget for one identification run. On expiry, in-flight
// classification calls are abandoned and the request fails; partial
// identification without a correction pass is unsafe to surface.
const identifyTimeout = 3 * time.Minute

const resolveTimeout = 2 * time.Minute

type Handler struct {
	sessionStore *storage.SessionStore
	pipeline     *pipeline.Pipeline
	resolver     *resolve.Resolver
}

func New(p *pipeline.Pipeline, r *resolve.Resolver) *Handler {
	return &Handler{
		sessionStore: storage.New(),
		pipeline:     p,
		resolver:     r,
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	http.Error(w, message, code)
}

// Session helpers
func (h *Handler) getSessionOrError(w http.ResponseWriter, sessionID string) (*models.ScanSession, bool) {
	session, exists := h.sessionStore.Get(sessionID)
	if !exists {
		h.writeError(w, "Scan not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}
