package models

import (
	"time"

	"github.com/google/uuid"
)

// Recipe groups reusable ingredient lines for a user at a store.
type Recipe struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;index:recipes_user_id_idx"`
	StoreNumber int       `gorm:"column:store_number;not null"`
	Name        string    `gorm:"column:name;type:text;not null"`
	Description *string   `gorm:"column:description;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	LastUpdated time.Time `gorm:"column:last_updated;autoUpdateTime"`
}
