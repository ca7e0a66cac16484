package favorites

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/calebmorris/cartly-backend/internal/cart"
	"github.com/calebmorris/cartly-backend/pkg/db/models"
	pkgerrors "github.com/calebmorris/cartly-backend/pkg/errors"
	"github.com/google/uuid"
)

// DefaultFrequentLimit caps the frequent-items suggestion list.
const DefaultFrequentLimit = 20

// ItemDTO is the API shape of a frequent or starred item.
type ItemDTO struct {
	ProductName    string    `json:"product_name"`
	Price          string    `json:"price"`
	Aisle          *string   `json:"aisle,omitempty"`
	ImageURL       *string   `json:"image_url,omitempty"`
	PurchaseCount  int       `json:"purchase_count"`
	IsManual       bool      `json:"is_manual"`
	IsSoldByWeight bool      `json:"is_sold_by_weight"`
	LastPurchased  time.Time `json:"last_purchased"`
}

// StarInput is the payload accepted when starring a product.
type StarInput struct {
	ProductName    string  `json:"product_name" validate:"required"`
	Price          string  `json:"price"`
	Aisle          *string `json:"aisle"`
	ImageURL       *string `json:"image_url"`
	IsSoldByWeight bool    `json:"is_sold_by_weight"`
}

// Service exposes frequent-item suggestions and starred favorites.
type Service interface {
	GetFrequent(ctx context.Context, userID uuid.UUID, storeNumber, limit int) ([]ItemDTO, error)
	GetFavorites(ctx context.Context, userID uuid.UUID, storeNumber int) ([]ItemDTO, error)
	Star(ctx context.Context, userID uuid.UUID, storeNumber int, input StarInput) error
	Unstar(ctx context.Context, userID uuid.UUID, storeNumber int, productName string) error
	IsStarred(ctx context.Context, userID uuid.UUID, storeNumber int, productName string) (bool, error)
}

type service struct {
	repo FrequentRepository
}

// NewService builds a favorites service.
func NewService(repo FrequentRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("frequent repository required")
	}
	return &service{repo: repo}, nil
}

// GetFrequent returns auto-learned suggestions, most purchased first.
func (s *service) GetFrequent(ctx context.Context, userID uuid.UUID, storeNumber, limit int) ([]ItemDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if limit <= 0 || limit > 100 {
		limit = DefaultFrequentLimit
	}
	items, err := s.repo.ListFrequent(ctx, userID, storeNumber, limit)
	if err != nil {
		return nil, err
	}
	return toDTOs(items), nil
}

// GetFavorites returns starred items, most recent first.
func (s *service) GetFavorites(ctx context.Context, userID uuid.UUID, storeNumber int) ([]ItemDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	items, err := s.repo.ListFavorites(ctx, userID, storeNumber)
	if err != nil {
		return nil, err
	}
	return toDTOs(items), nil
}

// Star pins a product as a manual favorite.
func (s *service) Star(ctx context.Context, userID uuid.UUID, storeNumber int, input StarInput) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	name := strings.TrimSpace(input.ProductName)
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	return s.repo.Star(ctx, &models.FrequentItem{
		UserID:         userID,
		StoreNumber:    storeNumber,
		ProductName:    name,
		Price:          cart.ParsePrice(input.Price),
		Aisle:          input.Aisle,
		ImageURL:       input.ImageURL,
		IsSoldByWeight: input.IsSoldByWeight,
	})
}

// Unstar removes the manual pin from a product.
func (s *service) Unstar(ctx context.Context, userID uuid.UUID, storeNumber int, productName string) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	name := strings.TrimSpace(productName)
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	return s.repo.Unstar(ctx, userID, storeNumber, name)
}

// IsStarred reports whether the product is a manual favorite.
func (s *service) IsStarred(ctx context.Context, userID uuid.UUID, storeNumber int, productName string) (bool, error) {
	if userID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.repo.IsStarred(ctx, userID, storeNumber, strings.TrimSpace(productName))
}

func toDTOs(items []models.FrequentItem) []ItemDTO {
	out := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, ItemDTO{
			ProductName:    item.ProductName,
			Price:          cart.FormatPrice(item.Price),
			Aisle:          item.Aisle,
			ImageURL:       item.ImageURL,
			PurchaseCount:  item.PurchaseCount,
			IsManual:       item.IsManual,
			IsSoldByWeight: item.IsSoldByWeight,
			LastPurchased:  item.LastPurchased,
		})
	}
	return out
}
