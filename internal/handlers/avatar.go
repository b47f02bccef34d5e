package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/recipebook/apiserver/internal/services"
	"github.com/recipebook/apiserver/internal/session"
	"github.com/recipebook/apiserver/internal/storage"
	"github.com/recipebook/apiserver/internal/store"
)

const (
	formFieldImage     = "image"
	maxMultipartMemory = 8 << 20
	// multipart framing on top of the image itself
	multipartOverhead = 1 << 20
)

var errImageTooLarge = errors.New("image too large")

// AvatarHandler uploads profile images and serves stored media.
type AvatarHandler struct {
	avatarService *services.AvatarService
}

func NewAvatarHandler(avatarService *services.AvatarService) *AvatarHandler {
	return &AvatarHandler{avatarService: avatarService}
}

// AvatarRouter registers the upload route behind authMiddleware and the
// public media route.
func AvatarRouter(r chi.Router, avatarService *services.AvatarService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewAvatarHandler(avatarService)

	r.With(authMiddleware).Post("/avatar", handler.UploadAvatar)
	r.Get("/media/*", handler.ServeMedia)
}

// UploadAvatar replaces the session user's profile image.
func (h *AvatarHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := session.UserIDFromContext(r.Context())
	if !ok {
		writeErrors(w, http.StatusUnauthorized, services.MsgUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, services.MaxAvatarBytes+multipartOverhead)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrors(w, http.StatusUnprocessableEntity, services.MsgImageTooLarge)
			return
		}
		writeErrors(w, http.StatusUnprocessableEntity, services.MsgImageRequired)
		return
	}

	data, err := parseImageFile(r.MultipartForm)
	if err != nil {
		if errors.Is(err, errImageTooLarge) {
			writeErrors(w, http.StatusUnprocessableEntity, services.MsgImageTooLarge)
			return
		}
		writeErrors(w, http.StatusUnprocessableEntity, services.MsgImageRequired)
		return
	}

	user, err := h.avatarService.Upload(r.Context(), userID, data)
	if err != nil {
		if messages, ok := validationMessages(err); ok {
			writeErrors(w, http.StatusUnprocessableEntity, messages...)
			return
		}
		// the session outlived its user
		if errors.Is(err, store.ErrNotFound) {
			writeErrors(w, http.StatusUnauthorized, services.MsgUnauthorized)
			return
		}
		writeServerError(w, r, "failed to upload avatar", err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// ServeMedia streams a stored object.
func (h *AvatarHandler) ServeMedia(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")

	body, info, err := h.avatarService.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			writeErrors(w, http.StatusNotFound, "Not found")
			return
		}
		writeServerError(w, r, "failed to read media", err)
		return
	}
	defer body.Close()

	if info.ContentType != "" {
		w.Header().Set("Content-Type", info.ContentType)
	}
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, body)
}

func parseImageFile(form *multipart.Form) ([]byte, error) {
	if form == nil {
		return nil, errors.New("missing form data")
	}

	files := form.File[formFieldImage]
	if len(files) != 1 {
		return nil, errors.New("exactly one image file is required")
	}

	file, err := files[0].Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return readFileLimited(file, services.MaxAvatarBytes)
}

func readFileLimited(reader io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(reader, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errImageTooLarge
	}
	return data, nil
}
