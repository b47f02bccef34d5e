package services

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/recipebook/apiserver/internal/events"
	"github.com/recipebook/apiserver/internal/store"
	"github.com/recipebook/apiserver/types"
)

// RecipeRepository defines persistence operations for recipes.
type RecipeRepository interface {
	List(ctx context.Context) ([]types.Recipe, error)
	Create(ctx context.Context, recipe types.Recipe) (types.Recipe, error)
}

// CreateRecipeInput carries the client-supplied recipe fields.
type CreateRecipeInput struct {
	Title             string
	Instructions      string
	MinutesToComplete int
}

// RecipeService encapsulates recipe use-cases.
type RecipeService struct {
	repo      RecipeRepository
	publisher EventPublisher
}

func NewRecipeService(repo RecipeRepository, publisher EventPublisher) *RecipeService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &RecipeService{repo: repo, publisher: publisher}
}

// List returns every recipe with its owner.
func (s *RecipeService) List(ctx context.Context) ([]types.Recipe, error) {
	return s.repo.List(ctx)
}

// Create stores a recipe owned by userID.
func (s *RecipeService) Create(ctx context.Context, userID int, in CreateRecipeInput) (types.Recipe, error) {
	if in.Title == "" || in.Instructions == "" {
		return types.Recipe{}, NewValidationError(MsgRecipeRequired)
	}
	if utf8.RuneCountInString(in.Instructions) < types.MinInstructionsLength {
		return types.Recipe{}, NewValidationError(MsgInstructionsTooShort)
	}
	if in.MinutesToComplete < 0 {
		return types.Recipe{}, NewValidationError(MsgMinutesNegative)
	}

	created, err := s.repo.Create(ctx, types.Recipe{
		Title:             in.Title,
		Instructions:      in.Instructions,
		MinutesToComplete: in.MinutesToComplete,
		UserID:            userID,
	})
	if err != nil {
		var cErr *store.ConstraintError
		if errors.As(err, &cErr) && errors.Is(err, store.ErrConstraint) {
			return types.Recipe{}, NewValidationError(constraintMessage(cErr.Constraint))
		}
		return types.Recipe{}, fmt.Errorf("create recipe: %w", err)
	}

	s.publisher.Publish(ctx, events.Event{
		Type:     events.RecipeCreated,
		UserID:   created.UserID,
		RecipeID: created.ID,
	})
	return created, nil
}

func constraintMessage(constraint string) string {
	switch constraint {
	case "recipes_instructions_length":
		return MsgInstructionsTooShort
	case "recipes_user_id_fkey":
		return "Recipe owner does not exist."
	default:
		return "Recipe violates constraint " + constraint + "."
	}
}
