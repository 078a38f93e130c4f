package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/feedboard/internal/apperror"
	"github.com/sakif/feedboard/internal/auth"
	"github.com/sakif/feedboard/internal/storage"
)

// maxImageSize caps uploads at 8 MiB.
const maxImageSize = 8 << 20

// ImageHandler accepts image uploads and returns the stored reference,
// which the client then attaches to a post create or update.
type ImageHandler struct {
	images storage.ImageStore
	logger *slog.Logger
}

// NewImageHandler creates an ImageHandler.
func NewImageHandler(images storage.ImageStore, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{images: images, logger: logger}
}

// HandleUpload stores an uploaded image and returns its reference.
//
// HTTP: POST /feed/image, multipart form with an "image" file field.
// Response: {"imageUrl": "images/<key>"}
func (h *ImageHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	callerID, _ := auth.UserIDFromContext(r.Context())
	if callerID == "" {
		writeError(w, apperror.Unauthenticated("authentication required to upload an image"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		writeError(w, apperror.ValidationFailed(apperror.Violation{
			Field:  "image",
			Reason: "expected a multipart upload of at most 8 MiB",
		}))
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, apperror.ValidationFailed(apperror.Violation{
			Field:  "image",
			Reason: "an image file is required",
		}))
		return
	}
	defer file.Close()

	if !allowedImageType(header.Header.Get("Content-Type")) {
		writeError(w, apperror.ValidationFailed(apperror.Violation{
			Field:  "image",
			Reason: "only png, jpg, and jpeg images are accepted",
		}))
		return
	}

	ref, err := h.images.Store(r.Context(), header.Filename, file)
	if err != nil {
		h.logger.Error("failed to store uploaded image",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	h.logger.Info("image stored",
		slog.String("imageUrl", ref),
		slog.String("userID", callerID),
	)

	writeJSON(w, http.StatusCreated, map[string]string{"imageUrl": ref})
}

// allowedImageType mirrors the upload filter the frontend relies on:
// png, jpg, or jpeg.
func allowedImageType(contentType string) bool {
	switch strings.ToLower(contentType) {
	case "image/png", "image/jpg", "image/jpeg":
		return true
	}
	return false
}
