package favorites

import (
	"context"
	"errors"
	"time"

	"github.com/calebmorris/cartly-backend/pkg/db"
	"github.com/calebmorris/cartly-backend/pkg/db/models"
	pkgerrors "github.com/calebmorris/cartly-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists per-user purchase counters and starred favorites.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a favorites repository on the shared gorm handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) FrequentRepository {
	return &Repository{db: tx}
}

func (r *Repository) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// RecordCartPurchases folds every current cart row into the purchase
// counters. Known products gain a purchase and refresh their price,
// aisle and image; new products start at one purchase.
func (r *Repository) RecordCartPurchases(ctx context.Context, tx *gorm.DB, userID uuid.UUID, storeNumber int) error {
	err := r.handle(tx).WithContext(ctx).Exec(`
		INSERT INTO frequent_items (user_id, store_number, product_name, price, aisle, image_url, is_sold_by_weight, purchase_count, last_purchased)
		SELECT user_id, store_number, product_name, price, aisle, image_url, is_sold_by_weight, 1, CURRENT_TIMESTAMP
		FROM cart_items
		WHERE user_id = ? AND store_number = ?
		ON CONFLICT (user_id, store_number, product_name) DO UPDATE SET
			purchase_count = frequent_items.purchase_count + 1,
			price = excluded.price,
			aisle = COALESCE(excluded.aisle, frequent_items.aisle),
			image_url = COALESCE(excluded.image_url, frequent_items.image_url),
			last_purchased = CURRENT_TIMESTAMP`,
		userID, storeNumber).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record cart purchases")
	}
	return nil
}

// ListFrequent returns auto-learned items that have been purchased at
// least twice, most purchased first.
func (r *Repository) ListFrequent(ctx context.Context, userID uuid.UUID, storeNumber, limit int) ([]models.FrequentItem, error) {
	var items []models.FrequentItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND store_number = ? AND is_manual = ? AND purchase_count >= 2", userID, storeNumber, false).
		Order("purchase_count DESC, last_purchased DESC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list frequent items")
	}
	return items, nil
}

// ListFavorites returns the user's starred items, most recent first.
func (r *Repository) ListFavorites(ctx context.Context, userID uuid.UUID, storeNumber int) ([]models.FrequentItem, error) {
	var items []models.FrequentItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND store_number = ? AND is_manual = ?", userID, storeNumber, true).
		Order("last_purchased DESC").
		Find(&items).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list favorites")
	}
	return items, nil
}

// Star pins a product as a manual favorite. Existing counter rows are
// promoted in place and never lose their count.
func (r *Repository) Star(ctx context.Context, item *models.FrequentItem) error {
	var existing models.FrequentItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND store_number = ? AND product_name = ?", item.UserID, item.StoreNumber, item.ProductName).
		First(&existing).Error
	switch {
	case err == nil:
		updates := map[string]interface{}{
			"is_manual":      true,
			"price":          item.Price,
			"last_purchased": time.Now().UTC(),
		}
		if existing.PurchaseCount < models.ManualFavoriteFloor {
			updates["purchase_count"] = models.ManualFavoriteFloor
		}
		if item.Aisle != nil {
			updates["aisle"] = item.Aisle
		}
		if item.ImageURL != nil && *item.ImageURL != "" {
			updates["image_url"] = item.ImageURL
		}
		if err := r.db.WithContext(ctx).Model(&models.FrequentItem{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "promote favorite")
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.IsManual = true
		if item.PurchaseCount < models.ManualFavoriteFloor {
			item.PurchaseCount = models.ManualFavoriteFloor
		}
		item.LastPurchased = time.Now().UTC()
		if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product already starred")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "star favorite")
		}
		return nil
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load favorite")
	}
}

// Unstar removes the manual pin. Rows whose organic purchase history is
// too thin to surface as frequent are dropped entirely.
func (r *Repository) Unstar(ctx context.Context, userID uuid.UUID, storeNumber int, productName string) error {
	var item models.FrequentItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND store_number = ? AND product_name = ? AND is_manual = ?", userID, storeNumber, productName, true).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "favorite not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load favorite")
	}

	count := item.PurchaseCount
	if count >= models.ManualFavoriteFloor {
		count = 1
	}
	err = r.db.WithContext(ctx).Model(&models.FrequentItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{"is_manual": false, "purchase_count": count}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unstar favorite")
	}

	err = r.db.WithContext(ctx).
		Where("id = ? AND purchase_count < 2 AND is_manual = ?", item.ID, false).
		Delete(&models.FrequentItem{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "prune favorite")
	}
	return nil
}

// IsStarred reports whether the product is a manual favorite.
func (r *Repository) IsStarred(ctx context.Context, userID uuid.UUID, storeNumber int, productName string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.FrequentItem{}).
		Where("user_id = ? AND store_number = ? AND product_name = ? AND is_manual = ?", userID, storeNumber, productName, true).
		Count(&n).Error
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check favorite")
	}
	return n > 0, nil
}

// DecrementForProducts walks back one purchase per product, deleting
// counters that reach zero. Counts never go negative.
func (r *Repository) DecrementForProducts(ctx context.Context, tx *gorm.DB, userID uuid.UUID, storeNumber int, productNames []string) error {
	if len(productNames) == 0 {
		return nil
	}
	db := r.handle(tx).WithContext(ctx)
	err := db.Model(&models.FrequentItem{}).
		Where("user_id = ? AND store_number = ? AND product_name IN ?", userID, storeNumber, productNames).
		Update("purchase_count", gorm.Expr("purchase_count - 1")).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement purchase counters")
	}
	err = db.
		Where("user_id = ? AND store_number = ? AND purchase_count <= 0", userID, storeNumber).
		Delete(&models.FrequentItem{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "prune purchase counters")
	}
	return nil
}
