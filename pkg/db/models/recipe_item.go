package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RecipeItem is an ingredient line attached to a recipe.
type RecipeItem struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RecipeID       uuid.UUID       `gorm:"column:recipe_id;type:uuid;not null;index:recipe_items_recipe_id_idx"`
	ProductName    string          `gorm:"column:product_name;type:text;not null"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	Quantity       decimal.Decimal `gorm:"column:quantity;type:numeric(8,3);not null"`
	Aisle          *string         `gorm:"column:aisle;type:text"`
	ImageURL       *string         `gorm:"column:image_url;type:text"`
	SearchTerm     string          `gorm:"column:search_term;type:text;not null;default:''"`
	IsSoldByWeight bool            `gorm:"column:is_sold_by_weight;not null;default:false"`
	UnitPrice      *string         `gorm:"column:unit_price;type:text"`
}
