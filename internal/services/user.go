package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/recipebook/apiserver/internal/events"
	"github.com/recipebook/apiserver/internal/store"
	"github.com/recipebook/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdateImageURL(ctx context.Context, id int, imageURL string) (types.User, error)
}

// EventPublisher receives domain events after successful writes.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, events.Event) {}

// SignupInput carries the fields accepted at signup.
type SignupInput struct {
	Username string
	Password string
	ImageURL string
	Bio      string
}

// UserService encapsulates account use-cases.
type UserService struct {
	repo      UserRepository
	publisher EventPublisher
}

func NewUserService(repo UserRepository, publisher EventPublisher) *UserService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &UserService{repo: repo, publisher: publisher}
}

// Signup creates an account. The password is hashed before it reaches the store.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (types.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return types.User{}, NewValidationError(MsgSignupRequired)
	}

	user := types.User{
		Username: username,
		ImageURL: in.ImageURL,
		Bio:      in.Bio,
	}
	if err := user.SetPassword(in.Password); err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.User{}, ErrUsernameTaken
		}
		return types.User{}, fmt.Errorf("create user: %w", err)
	}

	s.publisher.Publish(ctx, events.Event{Type: events.UserSignedUp, UserID: created.ID})
	return created, nil
}

// Authenticate returns the user matching username and password, or
// ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (types.User, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Spend the same bcrypt time as a real comparison.
			dummyUser().CheckPassword(password)
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, fmt.Errorf("load user: %w", err)
	}

	if !user.CheckPassword(password) {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

var (
	dummyOnce sync.Once
	dummy     types.User
)

func dummyUser() types.User {
	dummyOnce.Do(func() {
		_ = dummy.SetPassword("recipebook-timing-equalizer")
	})
	return dummy
}
