package models

import (
	"time"

	"github.com/calebmorris/cartly-backend/pkg/types"
	"github.com/google/uuid"
)

// SearchCacheEntry stores one cached provider search per (store, term).
// Terms are lowercased before writing so lookups are case-insensitive.
type SearchCacheEntry struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SearchTerm  string               `gorm:"column:search_term;type:text;not null;uniqueIndex:search_cache_store_term_key"`
	StoreNumber int                  `gorm:"column:store_number;not null;uniqueIndex:search_cache_store_term_key"`
	Results     types.ProductResults `gorm:"column:results_json;type:jsonb;serializer:json"`
	CachedAt    time.Time            `gorm:"column:cached_at;not null"`
	HitCount    int                  `gorm:"column:hit_count;not null;default:0"`
}

func (SearchCacheEntry) TableName() string {
	return "search_cache"
}
