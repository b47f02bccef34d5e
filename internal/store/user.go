package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/recipebook/apiserver/internal/db"
	"github.com/recipebook/apiserver/types"
)

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, password_hash, image_url, bio`

func scanUser(row *sql.Row) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.ImageURL,
		&user.Bio,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetByUsername looks a user up by exact username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, username))
}

// Create inserts the user in its own transaction. A username collision
// yields ErrDuplicate and leaves no row behind.
func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	const query = `
		INSERT INTO users (username, password_hash, image_url, bio)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	err := db.WithTx(ctx, r.db, nil, func(ctx context.Context, tx db.DBTX) error {
		return tx.QueryRowContext(
			ctx,
			query,
			user.Username,
			user.PasswordHash,
			user.ImageURL,
			user.Bio,
		).Scan(&user.ID)
	})
	if err != nil {
		return types.User{}, translate(err)
	}
	return user, nil
}

func (r *UserRepository) UpdateImageURL(ctx context.Context, id int, imageURL string) (types.User, error) {
	const query = `
		UPDATE users
		SET image_url = $1
		WHERE id = $2
		RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRowContext(ctx, query, imageURL, id))
	if err != nil {
		return types.User{}, translate(err)
	}
	return user, nil
}

// DeleteAll removes every user. Recipes must be deleted first.
func (r *UserRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users`)
	if err != nil {
		return 0, translate(err)
	}
	return result.RowsAffected()
}
