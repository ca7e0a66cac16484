package cart

import (
	"context"

	"github.com/calebmorris/cartly-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartRepository covers the persistence surface the service needs.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	ListByUser(ctx context.Context, userID uuid.UUID, storeNumber int) ([]models.CartItem, error)
	FindForUser(ctx context.Context, itemID, userID uuid.UUID) (*models.CartItem, error)
	Upsert(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	InsertMany(ctx context.Context, items []models.CartItem) error
	UpdateQuantity(ctx context.Context, itemID, userID uuid.UUID, quantity decimal.Decimal) (*models.CartItem, error)
	Remove(ctx context.Context, itemID, userID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID, storeNumber int) error
	Count(ctx context.Context, userID uuid.UUID, storeNumber int) (int64, error)
}
