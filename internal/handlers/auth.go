package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/recipebook/apiserver/internal/services"
	"github.com/recipebook/apiserver/internal/session"
	"github.com/recipebook/apiserver/internal/store"
	"github.com/recipebook/apiserver/internal/validation"
)

// AuthHandler provides account and session endpoints.
type AuthHandler struct {
	userService *services.UserService
	sessions    *session.Manager
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(userService *services.UserService, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		sessions:    sessions,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(r chi.Router, userService *services.UserService, sessions *session.Manager) {
	handler := NewAuthHandler(userService, sessions)

	r.Post("/signup", handler.Signup)
	r.Post("/login", handler.Login)
	r.With(sessions.Require).Get("/check_session", handler.CheckSession)
	r.Delete("/logout", handler.Logout)
}

type SignupRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	ImageURL string `json:"image_url"`
	Bio      string `json:"bio"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Signup creates an account and logs the new user in.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrors(w, http.StatusUnprocessableEntity, msgInvalidBody)
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	fields, err := validation.Struct(req)
	if err != nil {
		writeServerError(w, r, err.Error(), err)
		return
	}
	if len(fields) > 0 {
		writeErrors(w, http.StatusUnprocessableEntity, services.MsgSignupRequired)
		return
	}

	user, err := h.userService.Signup(r.Context(), services.SignupInput{
		Username: req.Username,
		Password: req.Password,
		ImageURL: req.ImageURL,
		Bio:      req.Bio,
	})
	if err != nil {
		if messages, ok := validationMessages(err); ok {
			writeErrors(w, http.StatusUnprocessableEntity, messages...)
			return
		}
		if errors.Is(err, services.ErrUsernameTaken) {
			writeErrors(w, http.StatusUnprocessableEntity, services.MsgUsernameTaken)
			return
		}
		writeServerError(w, r, err.Error(), err)
		return
	}

	if err := h.sessions.Start(w, user.ID); err != nil {
		writeServerError(w, r, "failed to start session", err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// CheckSession returns the user bound to the current session.
func (h *AuthHandler) CheckSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := session.UserIDFromContext(r.Context())
	if !ok {
		writeErrors(w, http.StatusUnauthorized, services.MsgUnauthorized)
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeErrors(w, http.StatusUnauthorized, services.MsgUnauthorized)
			return
		}
		writeServerError(w, r, "failed to load user", err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Login verifies credentials and starts a session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	// An unreadable body is just another failed login attempt.
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrors(w, http.StatusUnauthorized, services.MsgInvalidCredentials)
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeErrors(w, http.StatusUnauthorized, services.MsgInvalidCredentials)
			return
		}
		writeServerError(w, r, "failed to authenticate", err)
		return
	}

	if err := h.sessions.Start(w, user.ID); err != nil {
		writeServerError(w, r, "failed to start session", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(w, r); err != nil {
		writeErrors(w, http.StatusUnauthorized, services.MsgUnauthorized)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
