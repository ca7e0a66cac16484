package favorites

import (
	"context"

	"github.com/calebmorris/cartly-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FrequentRepository covers the persistence surface for purchase
// counters and starred favorites.
type FrequentRepository interface {
	WithTx(tx *gorm.DB) FrequentRepository
	RecordCartPurchases(ctx context.Context, tx *gorm.DB, userID uuid.UUID, storeNumber int) error
	ListFrequent(ctx context.Context, userID uuid.UUID, storeNumber, limit int) ([]models.FrequentItem, error)
	ListFavorites(ctx context.Context, userID uuid.UUID, storeNumber int) ([]models.FrequentItem, error)
	Star(ctx context.Context, item *models.FrequentItem) error
	Unstar(ctx context.Context, userID uuid.UUID, storeNumber int, productName string) error
	IsStarred(ctx context.Context, userID uuid.UUID, storeNumber int, productName string) (bool, error)
	DecrementForProducts(ctx context.Context, tx *gorm.DB, userID uuid.UUID, storeNumber int, productNames []string) error
}
