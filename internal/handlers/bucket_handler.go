package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Dias221467/bucket-list/internal/models"
	"github.com/Dias221467/bucket-list/internal/services"
	"github.com/Dias221467/bucket-list/pkg/logger"
)

// maxDocumentBytes caps the size of an uploaded document.
const maxDocumentBytes = 4 << 20

type BucketHandler struct {
	Service *services.DocumentService
}

func NewBucketHandler(service *services.DocumentService) *BucketHandler {
	return &BucketHandler{Service: service}
}

// GetDocumentHandler returns the stored bucket document as a JSON array
func (h *BucketHandler) GetDocumentHandler(w http.ResponseWriter, r *http.Request) {
	doc, err := h.Service.GetDocument(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// ReplaceDocumentHandler stores the request body as the new full document
func (h *BucketHandler) ReplaceDocumentHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}
	if len(body) > maxDocumentBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "Document too large")
		return
	}

	if _, err := h.Service.ReplaceDocument(r.Context(), body); err != nil {
		switch {
		case errors.Is(err, models.ErrMalformedDocument), errors.Is(err, models.ErrInvalidDocument):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// OptionsHandler answers bare OPTIONS requests; CORS preflights are answered
// by the cors middleware before reaching the router.
func (h *BucketHandler) OptionsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", "GET, POST, OPTIONS")
	w.WriteHeader(http.StatusOK)
}

// MethodNotAllowedHandler is installed on the router for unsupported methods
func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// HealthHandler reports liveness
func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Error("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
