package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/recipebook/apiserver/internal/services"
	"github.com/recipebook/apiserver/internal/validation"
)

const msgInvalidBody = "Invalid request body."

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Errors []string `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeErrors(w http.ResponseWriter, status int, messages ...string) {
	writeJSON(w, status, ErrorResponse{Errors: messages})
}

// writeServerError logs err against the request id and answers 500 with message.
func writeServerError(w http.ResponseWriter, r *http.Request, message string, err error) {
	slog.ErrorContext(r.Context(), "request failed",
		"request_id", middleware.GetReqID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeErrors(w, http.StatusInternalServerError, message)
}

// decodeJSON reads the request body into dst. An empty body leaves dst untouched
// so that schema validation reports the missing fields.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// validationMessages flattens a service validation error.
func validationMessages(err error) ([]string, bool) {
	var vErr *services.ValidationError
	if !errors.As(err, &vErr) {
		return nil, false
	}
	return vErr.Messages, true
}

// fieldMessages turns schema failures into user-facing messages. A missing
// required field reports the single requiredMsg.
func fieldMessages(fields []validation.FieldError, requiredMsg string, byTag map[string]string) []string {
	for _, f := range fields {
		if f.Tag == "required" {
			return []string{requiredMsg}
		}
	}

	messages := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		msg, ok := byTag[f.Tag]
		if !ok {
			msg = f.Field + " is invalid."
		}
		if !seen[msg] {
			seen[msg] = true
			messages = append(messages, msg)
		}
	}
	return messages
}
