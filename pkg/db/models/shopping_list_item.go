package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShoppingListItem is a product line frozen into a saved list.
type ShoppingListItem struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ListID         uuid.UUID       `gorm:"column:list_id;type:uuid;not null;index:shopping_list_items_list_id_idx"`
	ProductName    string          `gorm:"column:product_name;type:text;not null"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Quantity       decimal.Decimal `gorm:"column:quantity;type:numeric(8,3);not null"`
	Aisle          *string         `gorm:"column:aisle;type:text"`
	ImageURL       *string         `gorm:"column:image_url;type:text"`
	IsSoldByWeight bool            `gorm:"column:is_sold_by_weight;not null;default:false"`
}
