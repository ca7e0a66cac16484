package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/calebmorris/cartly-backend/api/middleware"
	"github.com/calebmorris/cartly-backend/api/responses"
	"github.com/calebmorris/cartly-backend/api/validators"
	recipesvc "github.com/calebmorris/cartly-backend/internal/recipes"
	pkgerrors "github.com/calebmorris/cartly-backend/pkg/errors"
	"github.com/calebmorris/cartly-backend/pkg/logger"
)

// RecipesIndex returns the caller's recipes. An optional store_number
// query restricts the result to one store.
func RecipesIndex(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		var store *int
		if raw := strings.TrimSpace(r.URL.Query().Get("store_number")); raw != "" {
			value, err := strconv.Atoi(raw)
			if err != nil || value <= 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "store_number must be a positive integer"))
				return
			}
			store = &value
		}

		recipes, err := svc.List(r.Context(), userID, store)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, recipes)
	}
}

// RecipeGet returns one recipe with its items.
func RecipeGet(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		recipeID, err := pathUUID(r, "recipeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recipe, err := svc.Get(r.Context(), userID, recipeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, recipe)
	}
}

// RecipeCreate creates a recipe from an explicit item list.
func RecipeCreate(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		store := middleware.StoreNumberFromContext(r.Context())

		var payload recipesvc.CreateInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recipe, err := svc.Create(r.Context(), userID, store, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, recipe)
	}
}

type saveCartAsRecipeRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description *string `json:"description"`
}

// RecipeSaveCart snapshots the current cart into a new recipe. The cart
// itself is left untouched.
func RecipeSaveCart(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		store := middleware.StoreNumberFromContext(r.Context())

		var payload saveCartAsRecipeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recipe, err := svc.SaveCartAsRecipe(r.Context(), userID, store, validators.SanitizeString(payload.Name, 120), payload.Description)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, recipe)
	}
}

// RecipeAddItem appends one item to an existing recipe.
func RecipeAddItem(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		recipeID, err := pathUUID(r, "recipeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload recipesvc.ItemInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.AddItem(r.Context(), userID, recipeID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

type updateItemQuantityRequest struct {
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
}

// RecipeUpdateItemQuantity sets the quantity of one recipe item.
func RecipeUpdateItemQuantity(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateItemQuantity(r.Context(), userID, itemID, payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"message": "Quantity updated"})
	}
}

// RecipeRemoveItem drops one item from a recipe.
func RecipeRemoveItem(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		itemID, err := pathUUID(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveItem(r.Context(), userID, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"message": "Item removed"})
	}
}

type updateRecipeMetaRequest struct {
	Name        string  `json:"name" validate:"required,max=120"`
	Description *string `json:"description"`
}

// RecipeUpdateMeta renames a recipe or replaces its description.
func RecipeUpdateMeta(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		recipeID, err := pathUUID(r, "recipeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateRecipeMetaRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateMeta(r.Context(), userID, recipeID, payload.Name, payload.Description); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"message": "Recipe updated"})
	}
}

// RecipeDelete removes a recipe and its items.
func RecipeDelete(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		recipeID, err := pathUUID(r, "recipeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), userID, recipeID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"message": "Recipe deleted"})
	}
}

type addRecipeToCartRequest struct {
	ItemIDs []uuid.UUID `json:"item_ids"`
}

// RecipeAddToCart merges recipe items into the cart. An optional
// item_ids list restricts the merge to a subset of the recipe.
func RecipeAddToCart(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())
		store := middleware.StoreNumberFromContext(r.Context())

		recipeID, err := pathUUID(r, "recipeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addRecipeToCartRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		cartDTO, err := svc.AddToCart(r.Context(), userID, store, recipeID, payload.ItemIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, cartDTO)
	}
}

type parseRecipeRequest struct {
	Text string `json:"text" validate:"required"`
}

// RecipeParse extracts clean ingredient names from pasted recipe text.
func RecipeParse(svc recipesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload parseRecipeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ingredients, err := svc.Parse(r.Context(), payload.Text)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"ingredients": ingredients,
			"count":       len(ingredients),
		})
	}
}
