package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/shelfscan/internal/models"
)

const maxUploadBytes = 20 * 1024 * 1024

// HandleScans serves GET /api/scans (list) and POST /api/scans (new scan)
func (h *Handler) HandleScans(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		sessions := h.sessionStore.GetAll()
		sessionList := make([]*models.ScanSession, 0, len(sessions))
		for _, session := range sessions {
			sessionList = append(sessionList, session)
		}
		h.writeJSON(w, sessionList)
	case "POST":
		contentType := r.Header.Get("Content-Type")
		if strings.Contains(contentType, "application/json") {
			h.handleURLScan(w, r)
			return
		}
		h.handleFileScan(w, r)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleURLScan(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ImageURL string `json:"image_url"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if request.ImageURL == "" {
		h.writeError(w, "image_url is required", http.StatusBadRequest)
		return
	}

	imageData, err := h.downloadImage(r.Context(), request.ImageURL)
	if err != nil {
		h.writeError(w, "Failed to download image: "+err.Error(), http.StatusBadRequest)
		return
	}

	parts := strings.Split(request.ImageURL, "/")
	filename := parts[len(parts)-1]
	if filename == "" {
		filename = "shelf.jpg"
	}

	session, err := h.runScan(r.Context(), imageData, filename)
	if err != nil {
		h.writeError(w, "Identification failed: "+err.Error(), http.StatusBadGateway)
		return
	}
	session.ImageURL = request.ImageURL

	h.sessionStore.Set(session.ID, session)
	h.writeJSON(w, session)
}

func (h *Handler) handleFileScan(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("files")
	if err != nil {
		file, header, err = r.FormFile("file")
		if err != nil {
			h.writeError(w, "Failed to read file: "+err.Error(), http.StatusBadRequest)
			return
		}
	}
	defer file.Close()

	imageData, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if len(imageData) >= maxUploadBytes {
		h.writeError(w, "File too large (max 20MB)", http.StatusBadRequest)
		return
	}

	session, err := h.runScan(r.Context(), imageData, header.Filename)
	if err != nil {
		h.writeError(w, "Identification failed: "+err.Error(), http.StatusBadGateway)
		return
	}

	h.sessionStore.Set(session.ID, session)
	h.writeJSON(w, session)
}

// runScan runs the identification pipeline and builds a session from the
// result. The whole run shares one wall-clock budget.
func (h *Handler) runScan(ctx context.Context, imageData []byte, filename string) (*models.ScanSession, error) {
	ctx, cancel := context.WithTimeout(ctx, identifyTimeout)
	defer cancel()

	width, height := imageDimensions(imageData)

	result, err := h.pipeline.Identify(ctx, imageData)
	if err != nil {
		return nil, err
	}

	baseFilename := strings.TrimSuffix(filename, filepath.Ext(filename))
	sessionID := fmt.Sprintf("%s_%d", baseFilename, time.Now().Unix())

	session := &models.ScanSession{
		ID:          sessionID,
		ImagePath:   filename,
		ImageWidth:  width,
		ImageHeight: height,
		Overview:    result.Overview,
		Books:       result.Books,
		CreatedAt:   time.Now(),
	}

	slog.Info("Scan complete", "session_id", sessionID, "books", len(result.Books))
	return session, nil
}

func (h *Handler) downloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(io.LimitReader(resp.Body, maxUploadBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

func imageDimensions(imageData []byte) (int, int) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		slog.Warn("Failed to get image dimensions", "error", err)
		return 0, 0
	}
	return cfg.Width, cfg.Height
}
