package models

import (
	"time"

	"github.com/google/uuid"
)

// ShoppingList is a saved snapshot of a cart. Auto-saved lists are the
// per-day upsert target; manual lists are immutable snapshots.
type ShoppingList struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:shopping_lists_user_id_idx"`
	StoreNumber int       `gorm:"column:store_number;not null"`
	Name        string    `gorm:"column:name;type:text;not null"`
	CustomName  *string   `gorm:"column:custom_name;type:text"`
	IsAutoSaved bool      `gorm:"column:is_auto_saved;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	LastUpdated time.Time `gorm:"column:last_updated;autoUpdateTime"`
}
