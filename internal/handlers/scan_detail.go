package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/shelfscan/internal/export"
	"github.com/lehigh-university-libraries/shelfscan/internal/models"
)

// HandleScanDetail serves /api/scans/{id} and its sub-resources:
//
//	GET  /api/scans/{id}             fetch a scan
//	PUT  /api/scans/{id}             replace a scan (review UI edits)
//	POST /api/scans/{id}/resolve     resolve the scan's books
//	GET  /api/scans/{id}/export.csv  CSV for the downstream catalog tool
func (h *Handler) HandleScanDetail(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/scans/")

	if sessionID, ok := strings.CutSuffix(path, "/resolve"); ok {
		h.handleResolve(w, r, sessionID)
		return
	}
	if sessionID, ok := strings.CutSuffix(path, "/export.csv"); ok {
		h.handleExportCSV(w, r, sessionID)
		return
	}

	session, ok := h.getSessionOrError(w, path)
	if !ok {
		return
	}

	switch r.Method {
	case "GET":
		h.writeJSON(w, session)
	case "PUT":
		var updatedSession models.ScanSession
		if err := json.NewDecoder(r.Body).Decode(&updatedSession); err != nil {
			h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
		h.sessionStore.Set(path, &updatedSession)
		h.writeJSON(w, updatedSession)
	case "DELETE":
		h.sessionStore.Delete(path)
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleResolve runs the resolver cascade over the session's current book
// list, which may have been edited in the review UI since identification.
func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != "POST" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, ok := h.getSessionOrError(w, sessionID)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), resolveTimeout)
	defer cancel()

	session.Enriched = h.resolver.Resolve(ctx, session.Books)
	h.sessionStore.Set(sessionID, session)

	matched := 0
	for _, b := range session.Enriched {
		if b.Matched {
			matched++
		}
	}
	slog.Info("Resolved scan", "session_id", sessionID, "books", len(session.Enriched), "matched", matched)

	h.writeJSON(w, session)
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != "GET" {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, ok := h.getSessionOrError(w, sessionID)
	if !ok {
		return
	}

	books := session.Enriched
	if len(books) == 0 {
		// Not yet resolved; export the identified list as-is.
		books = make([]models.EnrichedBook, 0, len(session.Books))
		for _, b := range session.Books {
			books = append(books, models.EnrichedBook{IdentifiedBook: b})
		}
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sessionID+".csv"))
	if err := export.WriteBooks(w, books); err != nil {
		slog.Error("Unable to write CSV export", "session_id", sessionID, "err", err)
	}
}
