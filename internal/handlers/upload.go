package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/md-rashed-zaman/courtbook/internal/api"
	"github.com/md-rashed-zaman/courtbook/internal/model"
	"github.com/md-rashed-zaman/courtbook/internal/upload"
)

type UploadHandler struct {
	store  *upload.Store
	logger *slog.Logger
}

func NewUploadHandler(store *upload.Store, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{store: store, logger: logger}
}

// Image handles POST /api/upload/image: a multipart form with an "image"
// part, capped at 5MB, accepted only when the bytes sniff as an image.
func (h *UploadHandler) Image(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.MethodNotAllowed(w)
		return
	}
	if _, ok := requireRole(w, r, model.RoleAdmin); !ok {
		return
	}

	// Leave headroom for the multipart framing around the 5MB payload.
	r.Body = http.MaxBytesReader(w, r.Body, upload.MaxImageBytes+1<<20)

	file, header, err := r.FormFile("image")
	if err != nil {
		api.BadRequest(w, "image file is required")
		return
	}
	defer file.Close()

	if header.Size > upload.MaxImageBytes {
		api.BadRequest(w, "image must be 5MB or smaller")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, upload.MaxImageBytes+1))
	if err != nil {
		h.logger.Error("upload read failed", "err", err)
		api.Internal(w, "failed to read upload")
		return
	}
	if int64(len(data)) > upload.MaxImageBytes {
		api.BadRequest(w, "image must be 5MB or smaller")
		return
	}

	saved, err := h.store.SaveImage(data)
	if err != nil {
		if errors.Is(err, upload.ErrUnsupportedType) {
			api.BadRequest(w, "only image uploads are allowed")
			return
		}
		h.logger.Error("image save failed", "err", err)
		api.Internal(w, "failed to save image")
		return
	}

	api.Created(w, "Image uploaded successfully", saved)
}
