// Package memory is an in-process stand-in for the PostgreSQL repositories.
// It enforces the same uniqueness, foreign key and length constraints.
package memory

import (
	"context"
	"errors"
	"sync"
	"unicode/utf8"

	"github.com/recipebook/apiserver/internal/store"
	"github.com/recipebook/apiserver/types"
)

// Store holds users and recipes in insertion order.
type Store struct {
	mu           sync.Mutex
	users        []types.User
	recipes      []types.Recipe
	nextUserID   int
	nextRecipeID int
	failNext     error
}

func New() *Store {
	return &Store{nextUserID: 1, nextRecipeID: 1}
}

// FailNext makes the next repository call return err.
func (s *Store) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = err
}

// Users returns a repository over the store's users.
func (s *Store) Users() *UserRepository {
	return &UserRepository{s: s}
}

// Recipes returns a repository over the store's recipes.
func (s *Store) Recipes() *RecipeRepository {
	return &RecipeRepository{s: s}
}

// UserCount reports how many users are stored.
func (s *Store) UserCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// takeFailure must be called with mu held.
func (s *Store) takeFailure() error {
	err := s.failNext
	s.failNext = nil
	return err
}

// findUser must be called with mu held.
func (s *Store) findUser(id int) (int, bool) {
	for i, u := range s.users {
		if u.ID == id {
			return i, true
		}
	}
	return 0, false
}

type UserRepository struct {
	s *Store
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return types.User{}, err
	}
	i, ok := r.s.findUser(id)
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return r.s.users[i], nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return types.User{}, err
	}
	for _, u := range r.s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return types.User{}, err
	}
	for _, u := range r.s.users {
		if u.Username == user.Username {
			return types.User{}, &store.ConstraintError{
				Kind:       store.ErrDuplicate,
				Constraint: "users_username_key",
				Err:        errors.New("duplicate key value violates unique constraint"),
			}
		}
	}
	user.ID = r.s.nextUserID
	r.s.nextUserID++
	r.s.users = append(r.s.users, user)
	return user, nil
}

func (r *UserRepository) UpdateImageURL(ctx context.Context, id int, imageURL string) (types.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return types.User{}, err
	}
	i, ok := r.s.findUser(id)
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	r.s.users[i].ImageURL = imageURL
	return r.s.users[i], nil
}

type RecipeRepository struct {
	s *Store
}

// List joins every recipe with its owner's current fields.
func (r *RecipeRepository) List(ctx context.Context) ([]types.Recipe, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return nil, err
	}
	recipes := make([]types.Recipe, 0, len(r.s.recipes))
	for _, recipe := range r.s.recipes {
		i, _ := r.s.findUser(recipe.UserID)
		recipe.User = publicUser(r.s.users[i])
		recipes = append(recipes, recipe)
	}
	return recipes, nil
}

func (r *RecipeRepository) Create(ctx context.Context, recipe types.Recipe) (types.Recipe, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return types.Recipe{}, err
	}
	i, ok := r.s.findUser(recipe.UserID)
	if !ok {
		return types.Recipe{}, &store.ConstraintError{
			Kind:       store.ErrConstraint,
			Constraint: "recipes_user_id_fkey",
			Err:        errors.New("foreign key violation"),
		}
	}
	if utf8.RuneCountInString(recipe.Instructions) < types.MinInstructionsLength {
		return types.Recipe{}, &store.ConstraintError{
			Kind:       store.ErrConstraint,
			Constraint: "recipes_instructions_length",
			Err:        errors.New("check constraint violation"),
		}
	}
	recipe.ID = r.s.nextRecipeID
	r.s.nextRecipeID++
	recipe.User = types.User{}
	r.s.recipes = append(r.s.recipes, recipe)

	recipe.User = publicUser(r.s.users[i])
	return recipe, nil
}

func publicUser(u types.User) types.User {
	u.PasswordHash = ""
	return u
}

// DeleteAll removes every user. It fails like ON DELETE RESTRICT while any
// recipe still references a user.
func (r *UserRepository) DeleteAll(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return 0, err
	}
	if len(r.s.recipes) > 0 {
		return 0, &store.ConstraintError{
			Kind:       store.ErrConstraint,
			Constraint: "recipes_user_id_fkey",
			Err:        errors.New("update or delete violates foreign key constraint"),
		}
	}
	n := int64(len(r.s.users))
	r.s.users = nil
	return n, nil
}

// DeleteAll removes every recipe.
func (r *RecipeRepository) DeleteAll(ctx context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return 0, err
	}
	n := int64(len(r.s.recipes))
	r.s.recipes = nil
	return n, nil
}
