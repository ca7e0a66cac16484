package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents an identity, either provider-backed or anonymous. Anonymous
// users carry no email and are eligible for retention cleanup once stale.
type User struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email       *string    `gorm:"type:text;uniqueIndex"`
	IsAnonymous bool       `gorm:"column:is_anonymous;not null;default:false"`
	StoreNumber int        `gorm:"column:store_number;not null;default:86"`
	LastLoginAt *time.Time `gorm:"column:last_login_at"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
