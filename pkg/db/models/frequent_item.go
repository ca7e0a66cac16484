package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ManualFavoriteFloor pins starred items above auto-learned ones when
// ordering by purchase count.
const ManualFavoriteFloor = 999

// FrequentItem tracks purchase history per (user, store, product). Rows with
// IsManual true are starred favorites; auto-learned rows only surface once
// PurchaseCount reaches 2.
type FrequentItem struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex:frequent_items_user_store_product_key"`
	StoreNumber    int             `gorm:"column:store_number;not null;uniqueIndex:frequent_items_user_store_product_key"`
	ProductName    string          `gorm:"column:product_name;type:text;not null;uniqueIndex:frequent_items_user_store_product_key"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Aisle          *string         `gorm:"column:aisle;type:text"`
	ImageURL       *string         `gorm:"column:image_url;type:text"`
	PurchaseCount  int             `gorm:"column:purchase_count;not null;default:1"`
	IsManual       bool            `gorm:"column:is_manual;not null;default:false"`
	IsSoldByWeight bool            `gorm:"column:is_sold_by_weight;not null;default:false"`
	LastPurchased  time.Time       `gorm:"column:last_purchased;autoCreateTime"`
}
