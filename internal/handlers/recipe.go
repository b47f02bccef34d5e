package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/recipebook/apiserver/internal/services"
	"github.com/recipebook/apiserver/internal/session"
	"github.com/recipebook/apiserver/internal/validation"
)

var recipeFieldMessages = map[string]string{
	"min": services.MsgInstructionsTooShort,
	"gte": services.MsgMinutesNegative,
}

// RecipeHandler provides HTTP handlers for recipes.
type RecipeHandler struct {
	recipeService *services.RecipeService
}

func NewRecipeHandler(recipeService *services.RecipeService) *RecipeHandler {
	return &RecipeHandler{recipeService: recipeService}
}

// RecipeRouter registers recipe routes on the given router. Every route
// sits behind authMiddleware.
func RecipeRouter(r chi.Router, recipeService *services.RecipeService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewRecipeHandler(recipeService)

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/", handler.ListRecipes)
		r.Post("/", handler.CreateRecipe)
	})
}

type CreateRecipeRequest struct {
	Title             string `json:"title" validate:"required"`
	Instructions      string `json:"instructions" validate:"required,min=50"`
	MinutesToComplete *int   `json:"minutes_to_complete" validate:"required,gte=0"`
}

// ListRecipes returns every recipe with its owner.
func (h *RecipeHandler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.recipeService.List(r.Context())
	if err != nil {
		writeServerError(w, r, "Something went wrong: "+err.Error(), err)
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

// CreateRecipe stores a recipe owned by the session user.
func (h *RecipeHandler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	userID, ok := session.UserIDFromContext(r.Context())
	if !ok {
		writeErrors(w, http.StatusUnauthorized, services.MsgUnauthorized)
		return
	}

	var req CreateRecipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeErrors(w, http.StatusUnprocessableEntity, msgInvalidBody)
		return
	}

	fields, err := validation.Struct(req)
	if err != nil {
		writeServerError(w, r, "Something went wrong: "+err.Error(), err)
		return
	}
	if len(fields) > 0 {
		writeErrors(w, http.StatusUnprocessableEntity, fieldMessages(fields, services.MsgRecipeRequired, recipeFieldMessages)...)
		return
	}

	recipe, err := h.recipeService.Create(r.Context(), userID, services.CreateRecipeInput{
		Title:             req.Title,
		Instructions:      req.Instructions,
		MinutesToComplete: *req.MinutesToComplete,
	})
	if err != nil {
		if messages, ok := validationMessages(err); ok {
			writeErrors(w, http.StatusUnprocessableEntity, messages...)
			return
		}
		writeServerError(w, r, "Something went wrong: "+err.Error(), err)
		return
	}

	writeJSON(w, http.StatusCreated, recipe)
}
