// Package session binds a client to a logged-in user through a signed cookie.
// The cookie payload is the whole session; nothing is kept server side.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	DefaultCookieName = "recipebook_session"
	DefaultTTL        = 7 * 24 * time.Hour
)

var (
	// ErrNoSession is returned when a request carries no valid session.
	ErrNoSession = errors.New("no active session")

	errMissingSecret = errors.New("session secret is required")
)

type contextKey string

const contextUserIDKey contextKey = "session.user_id"

// Options configures a Manager.
type Options struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

// Manager issues, resolves and clears session cookies.
type Manager struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool
	now        func() time.Time
}

// NewManager constructs a Manager. The secret signs every cookie and must not be empty.
func NewManager(opts Options) (*Manager, error) {
	if strings.TrimSpace(opts.Secret) == "" {
		return nil, errMissingSecret
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if strings.TrimSpace(opts.CookieName) == "" {
		opts.CookieName = DefaultCookieName
	}
	return &Manager{
		secret:     []byte(opts.Secret),
		ttl:        opts.TTL,
		cookieName: opts.CookieName,
		secure:     opts.Secure,
		now:        time.Now,
	}, nil
}

// CookieName returns the name of the session cookie.
func (m *Manager) CookieName() string {
	return m.cookieName
}

// Start binds the client to userID by setting a freshly signed cookie.
func (m *Manager) Start(w http.ResponseWriter, userID int) error {
	if userID < 1 {
		return errors.New("invalid user id")
	}

	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		Expires:  now.Add(m.ttl),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Resolve returns the user id bound to the request, if the cookie is
// present, correctly signed and not expired.
func (m *Manager) Resolve(r *http.Request) (int, bool) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return 0, false
	}

	userID, err := m.parse(cookie.Value)
	if err != nil {
		return 0, false
	}
	return userID, true
}

// End clears the session cookie. It fails with ErrNoSession when the
// request was not bound to a user.
func (m *Manager) End(w http.ResponseWriter, r *http.Request) error {
	if _, ok := m.Resolve(r); !ok {
		return ErrNoSession
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Require rejects requests without a session and exposes the user id to
// downstream handlers through the request context.
func (m *Manager) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := m.Resolve(r)
		if !ok {
			writeUnauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, contextUserIDKey, userID)
}

// UserIDFromContext returns the user id stored by Require.
func UserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(contextUserIDKey).(int)
	if !ok || userID < 1 {
		return 0, false
	}
	return userID, true
}

func (m *Manager) parse(tokenString string) (int, error) {
	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithExpirationRequired())
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, errors.New("invalid token")
	}

	userID, err := strconv.Atoi(strings.TrimSpace(claims.Subject))
	if err != nil || userID < 1 {
		return 0, errors.New("invalid subject")
	}
	return userID, nil
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string][]string{"errors": {"Unauthorized"}})
}
