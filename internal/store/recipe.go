package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/recipebook/apiserver/internal/db"
	"github.com/recipebook/apiserver/types"
)

// RecipeRepository handles persistence for recipes.
type RecipeRepository struct {
	db *sql.DB
}

func NewRecipeRepository(db *sql.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// recipeWithOwner selects a recipe joined with its owner's public fields.
const recipeWithOwner = `
	SELECT r.id, r.title, r.instructions, r.minutes_to_complete, r.user_id,
	       u.id, u.username, u.image_url, u.bio
	FROM recipes r
	JOIN users u ON u.id = r.user_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (types.Recipe, error) {
	var recipe types.Recipe
	err := row.Scan(
		&recipe.ID,
		&recipe.Title,
		&recipe.Instructions,
		&recipe.MinutesToComplete,
		&recipe.UserID,
		&recipe.User.ID,
		&recipe.User.Username,
		&recipe.User.ImageURL,
		&recipe.User.Bio,
	)
	return recipe, err
}

// List returns every recipe with its owner in a single joined query.
func (r *RecipeRepository) List(ctx context.Context) ([]types.Recipe, error) {
	rows, err := r.db.QueryContext(ctx, recipeWithOwner+` ORDER BY r.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recipes := make([]types.Recipe, 0)
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, recipe)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return recipes, nil
}

// getWithOwner reads one recipe and its owner through q, which may be a
// transaction.
func getWithOwner(ctx context.Context, q db.DBTX, id int) (types.Recipe, error) {
	recipe, err := scanRecipe(q.QueryRowContext(ctx, recipeWithOwner+` WHERE r.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Recipe{}, ErrNotFound
		}
		return types.Recipe{}, err
	}
	return recipe, nil
}

// Create inserts the recipe and reads it back with its owner inside one
// transaction, so a failure at either step leaves nothing behind.
func (r *RecipeRepository) Create(ctx context.Context, recipe types.Recipe) (types.Recipe, error) {
	const insertQuery = `
		INSERT INTO recipes (title, instructions, minutes_to_complete, user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var created types.Recipe
	err := db.WithTx(ctx, r.db, nil, func(ctx context.Context, tx db.DBTX) error {
		var id int
		if err := tx.QueryRowContext(
			ctx,
			insertQuery,
			recipe.Title,
			recipe.Instructions,
			recipe.MinutesToComplete,
			recipe.UserID,
		).Scan(&id); err != nil {
			return err
		}

		var err error
		created, err = getWithOwner(ctx, tx, id)
		return err
	})
	if err != nil {
		return types.Recipe{}, translate(err)
	}
	return created, nil
}

// DeleteAll removes every recipe.
func (r *RecipeRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM recipes`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
