package services

import (
	"errors"
	"strings"
)

// User-facing messages shared by services and handlers.
const (
	MsgSignupRequired       = "Username and password are required."
	MsgUsernameTaken        = "Username already exists."
	MsgInvalidCredentials   = "Invalid credentials"
	MsgUnauthorized         = "Unauthorized"
	MsgRecipeRequired       = "Title, instructions, and minutes_to_complete are required."
	MsgInstructionsTooShort = "Instructions must be at least 50 characters long."
	MsgMinutesNegative      = "Minutes to complete must be zero or greater."
	MsgImageRequired        = "Image file is required."
	MsgImageType            = "Image must be a PNG, JPEG, GIF or WebP file."
	MsgImageTooLarge        = "Image must be 5 MiB or smaller."
)

var (
	// ErrUsernameTaken is returned by Signup when the username is in use.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrInvalidCredentials covers both an unknown username and a wrong
	// password so callers cannot tell them apart.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports input that breaks a domain rule.
type ValidationError struct {
	Messages []string
}

func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}
