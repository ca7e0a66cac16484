package recipes

import (
	"context"

	"github.com/calebmorris/cartly-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RecipeRepository covers the persistence surface for recipes.
type RecipeRepository interface {
	WithTx(tx *gorm.DB) RecipeRepository
	ListByUser(ctx context.Context, userID uuid.UUID, storeNumber *int) ([]models.Recipe, error)
	FindByIDForUser(ctx context.Context, recipeID, userID uuid.UUID) (*models.Recipe, error)
	Create(ctx context.Context, recipe *models.Recipe) error
	InsertItems(ctx context.Context, items []models.RecipeItem) error
	ItemsForRecipe(ctx context.Context, recipeID uuid.UUID) ([]models.RecipeItem, error)
	ItemsForRecipes(ctx context.Context, recipeIDs []uuid.UUID) (map[uuid.UUID][]models.RecipeItem, error)
	ItemsByIDs(ctx context.Context, recipeID uuid.UUID, itemIDs []uuid.UUID) ([]models.RecipeItem, error)
	FindItemForUser(ctx context.Context, itemID, userID uuid.UUID) (*models.RecipeItem, error)
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity decimal.Decimal) error
	RemoveItem(ctx context.Context, itemID uuid.UUID) error
	UpdateMeta(ctx context.Context, recipeID uuid.UUID, name string, description *string) error
	Delete(ctx context.Context, recipeID uuid.UUID) error
}
