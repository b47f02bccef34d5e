// Package seed fills an empty database with fake users and recipes.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/recipebook/apiserver/types"
)

const (
	DefaultUsers   = 20
	DefaultRecipes = 100

	minMinutes = 15
	maxMinutes = 90
)

type UserStore interface {
	Create(ctx context.Context, user types.User) (types.User, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type RecipeStore interface {
	Create(ctx context.Context, recipe types.Recipe) (types.Recipe, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// Options controls how much data Run creates. A zero Seed picks a random one.
type Options struct {
	Users   int
	Recipes int
	Seed    int64
}

// Result summarizes a seeding run.
type Result struct {
	DeletedUsers   int64
	DeletedRecipes int64
	Users          []types.User
	Recipes        []types.Recipe
}

// Run wipes existing data, then creates opts.Users users and opts.Recipes
// recipes owned by random users. Every user's password is its username
// followed by "password".
func Run(ctx context.Context, users UserStore, recipes RecipeStore, opts Options) (Result, error) {
	if opts.Users < 0 || opts.Recipes < 0 {
		return Result{}, errors.New("counts must not be negative")
	}
	if opts.Recipes > 0 && opts.Users == 0 {
		return Result{}, errors.New("recipes need at least one user")
	}

	faker := gofakeit.New(opts.Seed)
	var res Result
	var err error

	slog.InfoContext(ctx, "deleting recipes")
	if res.DeletedRecipes, err = recipes.DeleteAll(ctx); err != nil {
		return res, fmt.Errorf("delete recipes: %w", err)
	}
	slog.InfoContext(ctx, "deleting users")
	if res.DeletedUsers, err = users.DeleteAll(ctx); err != nil {
		return res, fmt.Errorf("delete users: %w", err)
	}

	slog.InfoContext(ctx, "creating users", "count", opts.Users)
	taken := make(map[string]bool, opts.Users)
	for i := 0; i < opts.Users; i++ {
		username := uniqueName(faker.FirstName(), taken)
		user := types.User{
			Username: username,
			ImageURL: faker.URL(),
			Bio:      faker.Paragraph(1, 3, 12, " "),
		}
		if err := user.SetPassword(username + "password"); err != nil {
			return res, fmt.Errorf("hash password: %w", err)
		}

		created, err := users.Create(ctx, user)
		if err != nil {
			return res, fmt.Errorf("create user %s: %w", username, err)
		}
		res.Users = append(res.Users, created)
	}

	slog.InfoContext(ctx, "creating recipes", "count", opts.Recipes)
	for i := 0; i < opts.Recipes; i++ {
		owner := res.Users[faker.Number(0, len(res.Users)-1)]
		created, err := recipes.Create(ctx, types.Recipe{
			Title:             strings.TrimSuffix(faker.Sentence(faker.Number(2, 5)), "."),
			Instructions:      instructions(faker),
			MinutesToComplete: faker.Number(minMinutes, maxMinutes),
			UserID:            owner.ID,
		})
		if err != nil {
			return res, fmt.Errorf("create recipe: %w", err)
		}
		res.Recipes = append(res.Recipes, created)
	}

	slog.InfoContext(ctx, "done seeding", "users", len(res.Users), "recipes", len(res.Recipes))
	return res, nil
}

func uniqueName(name string, taken map[string]bool) string {
	candidate := name
	for n := 2; taken[candidate]; n++ {
		candidate = name + strconv.Itoa(n)
	}
	taken[candidate] = true
	return candidate
}

func instructions(faker *gofakeit.Faker) string {
	text := faker.Paragraph(1, 4, 10, " ")
	for len([]rune(text)) < types.MinInstructionsLength {
		text += " " + faker.Sentence(10)
	}
	return text
}
