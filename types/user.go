package types

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// User represents an account in the system.
// Only its public fields are ever serialized.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// ImageURL points at the user's avatar. Empty when unset.
	ImageURL string `json:"image_url" db:"image_url"`

	// Bio is a free-form description. Empty when unset.
	Bio string `json:"bio" db:"bio"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// It is write-only: set it through SetPassword and never expose it.
	PasswordHash string `json:"-" db:"password_hash"`
}

// ErrEmptyPassword is returned by SetPassword for a blank password.
var ErrEmptyPassword = errors.New("password must not be empty")

// SetPassword replaces PasswordHash with a salted bcrypt hash of password.
func (u *User) SetPassword(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashed)
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (u User) CheckPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
