package lists

import (
	"time"

	"github.com/calebmorris/cartly-backend/internal/cart"
	"github.com/calebmorris/cartly-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemDTO is the API shape of a saved list line.
type ItemDTO struct {
	ProductName    string  `json:"product_name"`
	Price          string  `json:"price"`
	Quantity       float64 `json:"quantity"`
	Aisle          *string `json:"aisle,omitempty"`
	ImageURL       *string `json:"image_url,omitempty"`
	IsSoldByWeight bool    `json:"is_sold_by_weight"`
}

// ListDTO is the API shape of a saved list with its items and totals.
type ListDTO struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	CustomName    *string   `json:"custom_name,omitempty"`
	DisplayName   string    `json:"display_name"`
	StoreNumber   int       `json:"store_number"`
	IsAutoSaved   bool      `json:"is_auto_saved"`
	ItemCount     int       `json:"item_count"`
	TotalQuantity float64   `json:"total_quantity"`
	TotalPrice    string    `json:"total_price"`
	Items         []ItemDTO `json:"items"`
	CreatedAt     time.Time `json:"created_at"`
	LastUpdated   time.Time `json:"last_updated"`
}

// AutoSaveResult reports what the auto-save upsert did.
type AutoSaveResult struct {
	ListID  *uuid.UUID `json:"list_id,omitempty"`
	Updated bool       `json:"updated"`
	Skipped bool       `json:"skipped"`
}

// LoadResult carries the cart produced by loading a saved list.
type LoadResult struct {
	ListName string        `json:"list_name"`
	Cart     *cart.CartDTO `json:"cart"`
}

// DisplayName prefers the user's custom tag over the generated name.
func displayName(list *models.ShoppingList) string {
	if list.CustomName != nil && *list.CustomName != "" {
		return *list.CustomName
	}
	return list.Name
}

func toListDTO(list *models.ShoppingList, items []models.ShoppingListItem) *ListDTO {
	dto := &ListDTO{
		ID:          list.ID,
		Name:        list.Name,
		CustomName:  list.CustomName,
		DisplayName: displayName(list),
		StoreNumber: list.StoreNumber,
		IsAutoSaved: list.IsAutoSaved,
		ItemCount:   len(items),
		Items:       make([]ItemDTO, 0, len(items)),
		CreatedAt:   list.CreatedAt,
		LastUpdated: list.LastUpdated,
	}
	totalQty := decimal.Zero
	totalPrice := decimal.Zero
	for _, item := range items {
		dto.Items = append(dto.Items, ItemDTO{
			ProductName:    item.ProductName,
			Price:          cart.FormatPrice(item.Price),
			Quantity:       item.Quantity.InexactFloat64(),
			Aisle:          item.Aisle,
			ImageURL:       item.ImageURL,
			IsSoldByWeight: item.IsSoldByWeight,
		})
		totalQty = totalQty.Add(item.Quantity)
		totalPrice = totalPrice.Add(item.Price.Mul(item.Quantity))
	}
	dto.TotalQuantity = totalQty.InexactFloat64()
	dto.TotalPrice = cart.FormatPrice(totalPrice)
	return dto
}

// snapshotItems freezes cart rows into list items.
func snapshotItems(listID uuid.UUID, cartItems []models.CartItem) []models.ShoppingListItem {
	out := make([]models.ShoppingListItem, 0, len(cartItems))
	for _, ci := range cartItems {
		out = append(out, models.ShoppingListItem{
			ID:             uuid.New(),
			ListID:         listID,
			ProductName:    ci.ProductName,
			Price:          ci.Price,
			Quantity:       ci.Quantity,
			Aisle:          ci.Aisle,
			ImageURL:       ci.ImageURL,
			IsSoldByWeight: ci.IsSoldByWeight,
		})
	}
	return out
}

// thawItems turns saved list lines back into cart rows.
func thawItems(userID uuid.UUID, storeNumber int, items []models.ShoppingListItem) []models.CartItem {
	out := make([]models.CartItem, 0, len(items))
	for _, li := range items {
		out = append(out, models.CartItem{
			ID:             uuid.New(),
			UserID:         userID,
			StoreNumber:    storeNumber,
			ProductName:    li.ProductName,
			Price:          li.Price,
			Quantity:       li.Quantity,
			Aisle:          li.Aisle,
			ImageURL:       li.ImageURL,
			IsSoldByWeight: li.IsSoldByWeight,
		})
	}
	return out
}
