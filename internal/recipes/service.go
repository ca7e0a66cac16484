package recipes

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/calebmorris/cartly-backend/internal/cart"
	"github.com/calebmorris/cartly-backend/pkg/db/models"
	pkgerrors "github.com/calebmorris/cartly-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ItemInput is the payload for one ingredient line.
type ItemInput struct {
	ProductName    string  `json:"product_name" validate:"required"`
	Price          string  `json:"price"`
	Quantity       float64 `json:"quantity"`
	Aisle          *string `json:"aisle"`
	ImageURL       *string `json:"image_url"`
	IsSoldByWeight bool    `json:"is_sold_by_weight"`
	UnitPrice      *string `json:"unit_price"`
	SearchTerm     string  `json:"search_term"`
}

// CreateInput is the payload for creating a recipe.
type CreateInput struct {
	Name        string      `json:"name" validate:"required"`
	Description *string     `json:"description"`
	Items       []ItemInput `json:"items"`
}

// ItemDTO is the API shape of one ingredient line.
type ItemDTO struct {
	ID             uuid.UUID `json:"id"`
	ProductName    string    `json:"product_name"`
	Price          string    `json:"price"`
	Quantity       float64   `json:"quantity"`
	Aisle          *string   `json:"aisle,omitempty"`
	ImageURL       *string   `json:"image_url,omitempty"`
	IsSoldByWeight bool      `json:"is_sold_by_weight"`
	UnitPrice      *string   `json:"unit_price,omitempty"`
	SearchTerm     string    `json:"search_term,omitempty"`
}

// RecipeDTO is the API shape of a recipe with its items.
type RecipeDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	StoreNumber int       `json:"store_number"`
	ItemCount   int       `json:"item_count"`
	Items       []ItemDTO `json:"items"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// Service exposes recipe management for a resolved user and store.
type Service interface {
	List(ctx context.Context, userID uuid.UUID, storeNumber *int) ([]RecipeDTO, error)
	Get(ctx context.Context, userID, recipeID uuid.UUID) (*RecipeDTO, error)
	Create(ctx context.Context, userID uuid.UUID, storeNumber int, input CreateInput) (*RecipeDTO, error)
	SaveCartAsRecipe(ctx context.Context, userID uuid.UUID, storeNumber int, name string, description *string) (*RecipeDTO, error)
	AddItem(ctx context.Context, userID, recipeID uuid.UUID, input ItemInput) (*ItemDTO, error)
	UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity float64) error
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error
	UpdateMeta(ctx context.Context, userID, recipeID uuid.UUID, name string, description *string) error
	Delete(ctx context.Context, userID, recipeID uuid.UUID) error
	AddToCart(ctx context.Context, userID uuid.UUID, storeNumber int, recipeID uuid.UUID, itemIDs []uuid.UUID) (*cart.CartDTO, error)
	Parse(ctx context.Context, text string) ([]ParsedIngredient, error)
}

// ServiceParams collects the dependencies for NewService.
type ServiceParams struct {
	Repo     RecipeRepository
	CartRepo cart.CartRepository
	Tx       txRunner
}

type service struct {
	repo     RecipeRepository
	cartRepo cart.CartRepository
	tx       txRunner
}

// NewService builds a recipes service backed by the provided stack.
func NewService(p ServiceParams) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("recipe repository required")
	}
	if p.CartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if p.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: p.Repo, cartRepo: p.CartRepo, tx: p.Tx}, nil
}

// List returns the user's recipes with their items.
func (s *service) List(ctx context.Context, userID uuid.UUID, storeNumber *int) ([]RecipeDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	recipeRows, err := s.repo.ListByUser(ctx, userID, storeNumber)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(recipeRows))
	for _, rec := range recipeRows {
		ids = append(ids, rec.ID)
	}
	itemsByRecipe, err := s.repo.ItemsForRecipes(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]RecipeDTO, 0, len(recipeRows))
	for i := range recipeRows {
		out = append(out, *toRecipeDTO(&recipeRows[i], itemsByRecipe[recipeRows[i].ID]))
	}
	return out, nil
}

// Get returns one owned recipe with its items.
func (s *service) Get(ctx context.Context, userID, recipeID uuid.UUID) (*RecipeDTO, error) {
	if userID == uuid.Nil || recipeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and recipe id are required")
	}
	recipe, err := s.repo.FindByIDForUser(ctx, recipeID, userID)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ItemsForRecipe(ctx, recipe.ID)
	if err != nil {
		return nil, err
	}
	return toRecipeDTO(recipe, items), nil
}

// Create inserts a recipe with an optional initial item set.
func (s *service) Create(ctx context.Context, userID uuid.UUID, storeNumber int, input CreateInput) (*RecipeDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipe name is required")
	}

	recipe := &models.Recipe{
		UserID:      userID,
		StoreNumber: storeNumber,
		Name:        name,
		Description: input.Description,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, recipe); err != nil {
			return err
		}
		items := make([]models.RecipeItem, 0, len(input.Items))
		for _, in := range input.Items {
			item, err := itemFromInput(recipe.ID, in)
			if err != nil {
				return err
			}
			items = append(items, *item)
		}
		return repo.InsertItems(ctx, items)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, recipe.ID)
}

// SaveCartAsRecipe snapshots the current cart into a new recipe.
func (s *service) SaveCartAsRecipe(ctx context.Context, userID uuid.UUID, storeNumber int, name string, description *string) (*RecipeDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipe name is required")
	}
	cartItems, err := s.cartRepo.ListByUser(ctx, userID, storeNumber)
	if err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	recipe := &models.Recipe{
		UserID:      userID,
		StoreNumber: storeNumber,
		Name:        name,
		Description: description,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, recipe); err != nil {
			return err
		}
		items := make([]models.RecipeItem, 0, len(cartItems))
		for _, ci := range cartItems {
			items = append(items, models.RecipeItem{
				ID:             uuid.New(),
				RecipeID:       recipe.ID,
				ProductName:    ci.ProductName,
				Price:          ci.Price,
				Quantity:       ci.Quantity,
				Aisle:          ci.Aisle,
				ImageURL:       ci.ImageURL,
				SearchTerm:     ci.SearchTerm,
				IsSoldByWeight: ci.IsSoldByWeight,
				UnitPrice:      ci.UnitPrice,
			})
		}
		return repo.InsertItems(ctx, items)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, recipe.ID)
}

// AddItem appends an ingredient line to an owned recipe.
func (s *service) AddItem(ctx context.Context, userID, recipeID uuid.UUID, input ItemInput) (*ItemDTO, error) {
	if userID == uuid.Nil || recipeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and recipe id are required")
	}
	recipe, err := s.repo.FindByIDForUser(ctx, recipeID, userID)
	if err != nil {
		return nil, err
	}
	item, err := itemFromInput(recipe.ID, input)
	if err != nil {
		return nil, err
	}
	if err := s.repo.InsertItems(ctx, []models.RecipeItem{*item}); err != nil {
		return nil, err
	}
	dto := toItemDTO(*item)
	return &dto, nil
}

// UpdateItemQuantity sets an absolute quantity on an owned line.
func (s *service) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity float64) error {
	if userID == uuid.Nil || itemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and item id are required")
	}
	qty := decimal.NewFromFloat(quantity)
	if qty.LessThanOrEqual(decimal.Zero) {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	item, err := s.repo.FindItemForUser(ctx, itemID, userID)
	if err != nil {
		return err
	}
	return s.repo.UpdateItemQuantity(ctx, item.ID, qty)
}

// RemoveItem deletes one owned ingredient line.
func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	if userID == uuid.Nil || itemID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and item id are required")
	}
	item, err := s.repo.FindItemForUser(ctx, itemID, userID)
	if err != nil {
		return err
	}
	return s.repo.RemoveItem(ctx, item.ID)
}

// UpdateMeta renames an owned recipe and replaces its description.
func (s *service) UpdateMeta(ctx context.Context, userID, recipeID uuid.UUID, name string, description *string) error {
	if userID == uuid.Nil || recipeID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and recipe id are required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipe name is required")
	}
	recipe, err := s.repo.FindByIDForUser(ctx, recipeID, userID)
	if err != nil {
		return err
	}
	return s.repo.UpdateMeta(ctx, recipe.ID, name, description)
}

// Delete removes an owned recipe and its items.
func (s *service) Delete(ctx context.Context, userID, recipeID uuid.UUID) error {
	if userID == uuid.Nil || recipeID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id and recipe id are required")
	}
	recipe, err := s.repo.FindByIDForUser(ctx, recipeID, userID)
	if err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Delete(ctx, recipe.ID)
	})
}

// AddToCart merges a recipe's items into the current cart. When item
// ids are given only those lines are added; quantities merge with any
// matching cart rows.
func (s *service) AddToCart(ctx context.Context, userID uuid.UUID, storeNumber int, recipeID uuid.UUID, itemIDs []uuid.UUID) (*cart.CartDTO, error) {
	if userID == uuid.Nil || recipeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and recipe id are required")
	}
	recipe, err := s.repo.FindByIDForUser(ctx, recipeID, userID)
	if err != nil {
		return nil, err
	}

	var items []models.RecipeItem
	if len(itemIDs) > 0 {
		items, err = s.repo.ItemsByIDs(ctx, recipe.ID, itemIDs)
	} else {
		items, err = s.repo.ItemsForRecipe(ctx, recipe.ID)
	}
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipe has no matching items")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txCart := s.cartRepo.WithTx(tx)
		for _, ri := range items {
			_, err := txCart.Upsert(ctx, &models.CartItem{
				UserID:         userID,
				StoreNumber:    storeNumber,
				ProductName:    ri.ProductName,
				Price:          ri.Price,
				Quantity:       ri.Quantity,
				Aisle:          ri.Aisle,
				ImageURL:       ri.ImageURL,
				SearchTerm:     ri.SearchTerm,
				IsSoldByWeight: ri.IsSoldByWeight,
				UnitPrice:      ri.UnitPrice,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cartItems, err := s.cartRepo.ListByUser(ctx, userID, storeNumber)
	if err != nil {
		return nil, err
	}
	return cart.ToCartDTO(cartItems, storeNumber), nil
}

// Parse extracts structured ingredient lines from pasted recipe text.
func (s *service) Parse(ctx context.Context, text string) ([]ParsedIngredient, error) {
	if strings.TrimSpace(text) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipe text is required")
	}
	return ParseRecipeText(text), nil
}

func itemFromInput(recipeID uuid.UUID, in ItemInput) (*models.RecipeItem, error) {
	name := strings.TrimSpace(in.ProductName)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	qty := decimal.NewFromFloat(in.Quantity)
	if qty.LessThanOrEqual(decimal.Zero) {
		qty = decimal.NewFromInt(1)
	}
	return &models.RecipeItem{
		ID:             uuid.New(),
		RecipeID:       recipeID,
		ProductName:    name,
		Price:          cart.ParsePrice(in.Price),
		Quantity:       qty,
		Aisle:          in.Aisle,
		ImageURL:       in.ImageURL,
		SearchTerm:     strings.TrimSpace(in.SearchTerm),
		IsSoldByWeight: in.IsSoldByWeight,
		UnitPrice:      in.UnitPrice,
	}, nil
}

func toItemDTO(item models.RecipeItem) ItemDTO {
	return ItemDTO{
		ID:             item.ID,
		ProductName:    item.ProductName,
		Price:          cart.FormatPrice(item.Price),
		Quantity:       item.Quantity.InexactFloat64(),
		Aisle:          item.Aisle,
		ImageURL:       item.ImageURL,
		IsSoldByWeight: item.IsSoldByWeight,
		UnitPrice:      item.UnitPrice,
		SearchTerm:     item.SearchTerm,
	}
}

func toRecipeDTO(recipe *models.Recipe, items []models.RecipeItem) *RecipeDTO {
	dto := &RecipeDTO{
		ID:          recipe.ID,
		Name:        recipe.Name,
		Description: recipe.Description,
		StoreNumber: recipe.StoreNumber,
		ItemCount:   len(items),
		Items:       make([]ItemDTO, 0, len(items)),
		CreatedAt:   recipe.CreatedAt,
		LastUpdated: recipe.LastUpdated,
	}
	for _, item := range items {
		dto.Items = append(dto.Items, toItemDTO(item))
	}
	return dto
}
