package recipes

import (
	"context"
	"errors"
	"time"

	"github.com/calebmorris/cartly-backend/pkg/db/models"
	pkgerrors "github.com/calebmorris/cartly-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Repository persists recipes and their ingredient lines.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a recipe repository on the shared gorm handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) RecipeRepository {
	return &Repository{db: tx}
}

// ListByUser returns the user's recipes, newest first. A non-nil store
// number narrows the result to that store.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, storeNumber *int) ([]models.Recipe, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if storeNumber != nil {
		q = q.Where("store_number = ?", *storeNumber)
	}
	var out []models.Recipe
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list recipes")
	}
	return out, nil
}

// FindByIDForUser loads a recipe and enforces ownership.
func (r *Repository) FindByIDForUser(ctx context.Context, recipeID, userID uuid.UUID) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", recipeID, userID).
		First(&recipe).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "recipe not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load recipe")
	}
	return &recipe, nil
}

// Create inserts a new recipe header.
func (r *Repository) Create(ctx context.Context, recipe *models.Recipe) error {
	if recipe.ID == uuid.Nil {
		recipe.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(recipe).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create recipe")
	}
	return nil
}

// InsertItems bulk-inserts ingredient lines.
func (r *Repository) InsertItems(ctx context.Context, items []models.RecipeItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert recipe items")
	}
	return nil
}

// ItemsForRecipe returns a recipe's ingredient lines.
func (r *Repository) ItemsForRecipe(ctx context.Context, recipeID uuid.UUID) ([]models.RecipeItem, error) {
	var items []models.RecipeItem
	err := r.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Find(&items).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load recipe items")
	}
	return items, nil
}

// ItemsForRecipes returns the items of several recipes keyed by recipe id.
func (r *Repository) ItemsForRecipes(ctx context.Context, recipeIDs []uuid.UUID) (map[uuid.UUID][]models.RecipeItem, error) {
	out := make(map[uuid.UUID][]models.RecipeItem, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return out, nil
	}
	var items []models.RecipeItem
	err := r.db.WithContext(ctx).
		Where("recipe_id IN ?", recipeIDs).
		Find(&items).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load recipe items")
	}
	for _, item := range items {
		out[item.RecipeID] = append(out[item.RecipeID], item)
	}
	return out, nil
}

// ItemsByIDs returns the subset of a recipe's items matching the ids.
func (r *Repository) ItemsByIDs(ctx context.Context, recipeID uuid.UUID, itemIDs []uuid.UUID) ([]models.RecipeItem, error) {
	var items []models.RecipeItem
	err := r.db.WithContext(ctx).
		Where("recipe_id = ? AND id IN ?", recipeID, itemIDs).
		Find(&items).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load selected recipe items")
	}
	return items, nil
}

// FindItemForUser loads one ingredient line, enforcing that its recipe
// belongs to the user.
func (r *Repository) FindItemForUser(ctx context.Context, itemID, userID uuid.UUID) (*models.RecipeItem, error) {
	var item models.RecipeItem
	err := r.db.WithContext(ctx).
		Joins("JOIN recipes ON recipes.id = recipe_items.recipe_id").
		Where("recipe_items.id = ? AND recipes.user_id = ?", itemID, userID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "recipe item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load recipe item")
	}
	return &item, nil
}

// UpdateItemQuantity sets an absolute quantity on an ingredient line.
func (r *Repository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&models.RecipeItem{}).
		Where("id = ?", itemID).
		Update("quantity", quantity)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "update recipe item quantity")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "recipe item not found")
	}
	return nil
}

// RemoveItem deletes one ingredient line.
func (r *Repository) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ?", itemID).
		Delete(&models.RecipeItem{})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "remove recipe item")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "recipe item not found")
	}
	return nil
}

// UpdateMeta renames a recipe and replaces its description.
func (r *Repository) UpdateMeta(ctx context.Context, recipeID uuid.UUID, name string, description *string) error {
	res := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("id = ?", recipeID).
		Updates(map[string]interface{}{
			"name":         name,
			"description":  description,
			"last_updated": time.Now().UTC(),
		})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "update recipe")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "recipe not found")
	}
	return nil
}

// Delete removes a recipe and its ingredient lines.
func (r *Repository) Delete(ctx context.Context, recipeID uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Where("recipe_id = ?", recipeID).
		Delete(&models.RecipeItem{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete recipe items")
	}
	err = r.db.WithContext(ctx).
		Where("id = ?", recipeID).
		Delete(&models.Recipe{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete recipe")
	}
	return nil
}
