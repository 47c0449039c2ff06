package handler

import (
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"intervue-api/internal/container"
	"intervue-api/pkg/errors"
)

// maxUploadBytes caps resume uploads
const maxUploadBytes = 2 << 20 // 2MB

// UploadHandler accepts resume uploads and returns their extracted text so
// clients can attach it as interview context. Nothing is persisted.
type UploadHandler struct {
	container *container.Container
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(container *container.Container) *UploadHandler {
	return &UploadHandler{
		container: container,
	}
}

// Resume handles POST /api/v1/uploads/resume
func (h *UploadHandler) Resume(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, errors.NewValidationError("File exceeds the 2MB upload limit", nil), logger)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, errors.NewValidationError("Multipart field 'file' is required", nil), logger)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, errors.NewInternalError("Failed to read upload", err), logger)
		return
	}

	if !utf8.Valid(data) {
		writeError(w, errors.NewValidationError("Only plain-text resumes are supported", nil), logger)
		return
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		writeError(w, errors.NewValidationError("Uploaded file is empty", nil), logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"filename": header.Filename,
		"size":     header.Size,
		"text":     text,
	}, "", logger)
}
