package lists

import (
	"context"
	"time"

	"github.com/calebmorris/cartly-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListRepository covers the persistence surface for saved lists.
type ListRepository interface {
	WithTx(tx *gorm.DB) ListRepository
	FindAutoSavedOnDay(ctx context.Context, userID uuid.UUID, storeNumber int, day time.Time) (*models.ShoppingList, error)
	FindByIDForUser(ctx context.Context, listID, userID uuid.UUID) (*models.ShoppingList, error)
	Create(ctx context.Context, list *models.ShoppingList) error
	InsertItems(ctx context.Context, items []models.ShoppingListItem) error
	ReplaceItems(ctx context.Context, listID uuid.UUID, items []models.ShoppingListItem) error
	SetCustomName(ctx context.Context, listID uuid.UUID, customName string) error
	RefreshHeader(ctx context.Context, listID uuid.UUID, name string) error
	ListByUser(ctx context.Context, userID uuid.UUID, storeNumber *int) ([]models.ShoppingList, error)
	ItemsForList(ctx context.Context, listID uuid.UUID) ([]models.ShoppingListItem, error)
	ItemsForLists(ctx context.Context, listIDs []uuid.UUID) (map[uuid.UUID][]models.ShoppingListItem, error)
	DistinctProductNames(ctx context.Context, listID uuid.UUID) ([]string, error)
	Delete(ctx context.Context, listID uuid.UUID) error
}
