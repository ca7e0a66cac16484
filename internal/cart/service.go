package cart

import (
	"context"
	"fmt"
	"strings"

	"github.com/calebmorris/cartly-backend/pkg/db/models"
	pkgerrors "github.com/calebmorris/cartly-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// purchaseRecorder folds the current cart into the purchase counters.
// A non-nil tx scopes the write to the caller's transaction.
type purchaseRecorder interface {
	RecordCartPurchases(ctx context.Context, tx *gorm.DB, userID uuid.UUID, storeNumber int) error
}

// Service exposes cart operations for a resolved user and store.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID, storeNumber int) (*CartDTO, error)
	AddItem(ctx context.Context, userID uuid.UUID, storeNumber int, input AddItemInput) (*ItemDTO, error)
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity float64) (*ItemDTO, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID, storeNumber int) error
	Complete(ctx context.Context, userID uuid.UUID, storeNumber int) error
	RecordPurchases(ctx context.Context, userID uuid.UUID, storeNumber int) error
}

type service struct {
	repo     CartRepository
	tx       txRunner
	frequent purchaseRecorder
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, frequent purchaseRecorder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if frequent == nil {
		return nil, fmt.Errorf("purchase recorder required")
	}
	return &service{repo: repo, tx: tx, frequent: frequent}, nil
}

// GetCart returns the user's cart for the store, newest items first.
func (s *service) GetCart(ctx context.Context, userID uuid.UUID, storeNumber int) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	items, err := s.repo.ListByUser(ctx, userID, storeNumber)
	if err != nil {
		return nil, err
	}
	return ToCartDTO(items, storeNumber), nil
}

// AddItem inserts a product into the cart, merging quantities when the
// product is already present.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, storeNumber int, input AddItemInput) (*ItemDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	name := strings.TrimSpace(input.ProductName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	qty := decimal.NewFromFloat(input.Quantity)
	if qty.LessThanOrEqual(decimal.Zero) {
		qty = decimal.NewFromInt(1)
	}

	item := &models.CartItem{
		UserID:         userID,
		StoreNumber:    storeNumber,
		ProductName:    name,
		Price:          ParsePrice(input.Price),
		Quantity:       qty,
		Aisle:          input.Aisle,
		ImageURL:       input.ImageURL,
		SearchTerm:     strings.TrimSpace(input.SearchTerm),
		IsSoldByWeight: input.IsSoldByWeight,
		UnitPrice:      input.UnitPrice,
	}
	saved, err := s.repo.Upsert(ctx, item)
	if err != nil {
		return nil, err
	}
	dto := toItemDTO(*saved)
	return &dto, nil
}

// UpdateQuantity sets an absolute quantity on an owned cart item.
func (s *service) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity float64) (*ItemDTO, error) {
	if userID == uuid.Nil || itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and item id are required")
	}
	qty := decimal.NewFromFloat(quantity)
	if qty.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	saved, err := s.repo.UpdateQuantity(ctx, itemID, userID, qty)
	if err != nil {
		return nil, err
	}
	dto := toItemDTO(*saved)
	return &dto, nil
}

// RemoveItem deletes one owned cart item.
func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	if userID == uuid.Nil || itemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and item id are required")
	}
	return s.repo.Remove(ctx, itemID, userID)
}

// Clear empties the cart for the store.
func (s *service) Clear(ctx context.Context, userID uuid.UUID, storeNumber int) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.repo.Clear(ctx, userID, storeNumber)
}

// Complete records the cart contents as purchases and then empties the
// cart, atomically. A failure on either side rolls back both.
func (s *service) Complete(ctx context.Context, userID uuid.UUID, storeNumber int) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.frequent.RecordCartPurchases(ctx, tx, userID, storeNumber); err != nil {
			return err
		}
		return s.repo.WithTx(tx).Clear(ctx, userID, storeNumber)
	})
}

// RecordPurchases folds the cart into the purchase counters without
// touching the cart itself.
func (s *service) RecordPurchases(ctx context.Context, userID uuid.UUID, storeNumber int) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.frequent.RecordCartPurchases(ctx, nil, userID, storeNumber)
}
