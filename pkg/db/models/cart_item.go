package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is a product line in a user's store-scoped cart. One row per
// (user, store, product); re-adding the same product merges quantities.
// Quantity is decimal to support weight-based items (1.5 lb of produce).
type CartItem struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex:cart_items_user_store_product_key"`
	StoreNumber    int             `gorm:"column:store_number;not null;uniqueIndex:cart_items_user_store_product_key"`
	ProductName    string          `gorm:"column:product_name;type:text;not null;uniqueIndex:cart_items_user_store_product_key"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Quantity       decimal.Decimal `gorm:"column:quantity;type:numeric(8,3);not null"`
	Aisle          *string         `gorm:"column:aisle;type:text"`
	ImageURL       *string         `gorm:"column:image_url;type:text"`
	SearchTerm     string          `gorm:"column:search_term;type:text;not null;default:''"`
	IsSoldByWeight bool            `gorm:"column:is_sold_by_weight;not null;default:false"`
	UnitPrice      *string         `gorm:"column:unit_price;type:text"`
	AddedAt        time.Time       `gorm:"column:added_at;autoCreateTime"`
}
