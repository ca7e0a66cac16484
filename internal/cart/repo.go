package cart

import (
	"context"
	"errors"

	"github.com/calebmorris/cartly-backend/pkg/db/models"
	pkgerrors "github.com/calebmorris/cartly-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists cart items scoped to a user and store.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository on the shared gorm handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	return &Repository{db: tx}
}

// ListByUser returns the user's cart for a store ordered by recency.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, storeNumber int) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND store_number = ?", userID, storeNumber).
		Order("added_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list cart items")
	}
	return items, nil
}

// FindForUser loads a single cart item and enforces ownership.
func (r *Repository) FindForUser(ctx context.Context, itemID, userID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart item")
	}
	return &item, nil
}

// Upsert inserts the item or merges quantities when the same product is
// already in the user's cart for that store.
func (r *Repository) Upsert(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "store_number"}, {Name: "product_name"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("cart_items.quantity + excluded.quantity"),
			"price":    gorm.Expr("excluded.price"),
			"added_at": gorm.Expr("excluded.added_at"),
		}),
	}).Create(item).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert cart item")
	}

	var saved models.CartItem
	err = r.db.WithContext(ctx).
		Where("user_id = ? AND store_number = ? AND product_name = ?", item.UserID, item.StoreNumber, item.ProductName).
		First(&saved).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload cart item")
	}
	return &saved, nil
}

// InsertMany bulk-inserts cart rows. Callers are expected to have
// cleared any conflicting rows first.
func (r *Repository) InsertMany(ctx context.Context, items []models.CartItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "insert cart items")
	}
	return nil
}

// UpdateQuantity sets a new quantity on an owned cart item.
func (r *Repository) UpdateQuantity(ctx context.Context, itemID, userID uuid.UUID, quantity decimal.Decimal) (*models.CartItem, error) {
	res := r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("quantity", quantity)
	if res.Error != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "update cart quantity")
	}
	if res.RowsAffected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return r.FindForUser(ctx, itemID, userID)
}

// Remove deletes one owned cart item.
func (r *Repository) Remove(ctx context.Context, itemID, userID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "remove cart item")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return nil
}

// Clear empties the user's cart for a store.
func (r *Repository) Clear(ctx context.Context, userID uuid.UUID, storeNumber int) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND store_number = ?", userID, storeNumber).
		Delete(&models.CartItem{}).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}

// Count returns the number of rows in the user's cart for a store.
func (r *Repository) Count(ctx context.Context, userID uuid.UUID, storeNumber int) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ? AND store_number = ?", userID, storeNumber).
		Count(&n).Error
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count cart items")
	}
	return n, nil
}
