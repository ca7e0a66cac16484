package cart

import (
	"fmt"
	"strings"
	"time"

	"github.com/calebmorris/cartly-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemDTO is the API shape of a single cart row.
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
	AddedAt        time.Time `json:"added_at"`
}

// CartDTO is the API shape of the whole cart.
type CartDTO struct {
	Items       []ItemDTO `json:"items"`
	ItemCount   int       `json:"item_count"`
	Subtotal    string    `json:"subtotal"`
	StoreNumber int       `json:"store_number"`
}

// AddItemInput is the payload accepted when adding a product to the cart.
type AddItemInput struct {
	ProductName    string  `json:"product_name" validate:"required"`
	Price          string  `json:"price"`
	Quantity       float64 `json:"quantity"`
	Aisle          *string `json:"aisle"`
	ImageURL       *string `json:"image_url"`
	IsSoldByWeight bool    `json:"is_sold_by_weight"`
	UnitPrice      *string `json:"unit_price"`
	SearchTerm     string  `json:"search_term"`
}

// ParsePrice converts a display price such as "$3.49" into a decimal.
// Unparseable input falls back to zero so a bad upstream price never
// blocks an add.
func ParsePrice(display string) decimal.Decimal {
	cleaned := strings.TrimSpace(display)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatPrice renders a decimal as the display form used across the API.
func FormatPrice(d decimal.Decimal) string {
	return fmt.Sprintf("$%s", d.StringFixed(2))
}

func toItemDTO(m models.CartItem) ItemDTO {
	return ItemDTO{
		ID:             m.ID,
		ProductName:    m.ProductName,
		Price:          FormatPrice(m.Price),
		Quantity:       m.Quantity.InexactFloat64(),
		Aisle:          m.Aisle,
		ImageURL:       m.ImageURL,
		IsSoldByWeight: m.IsSoldByWeight,
		UnitPrice:      m.UnitPrice,
		SearchTerm:     m.SearchTerm,
		AddedAt:        m.AddedAt,
	}
}

func ToCartDTO(items []models.CartItem, storeNumber int) *CartDTO {
	dto := &CartDTO{
		Items:       make([]ItemDTO, 0, len(items)),
		ItemCount:   len(items),
		StoreNumber: storeNumber,
	}
	subtotal := decimal.Zero
	for _, item := range items {
		dto.Items = append(dto.Items, toItemDTO(item))
		subtotal = subtotal.Add(item.Price.Mul(item.Quantity))
	}
	dto.Subtotal = FormatPrice(subtotal)
	return dto
}
