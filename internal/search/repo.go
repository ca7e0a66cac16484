package search

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/calebmorris/cartly-backend/pkg/db/models"
	pkgerrors "github.com/calebmorris/cartly-backend/pkg/errors"
	"github.com/calebmorris/cartly-backend/pkg/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CacheRepository persists provider search results per (store, term).
type CacheRepository interface {
	Find(ctx context.Context, term string, storeNumber int) (*models.SearchCacheEntry, error)
	Put(ctx context.Context, term string, storeNumber int, results types.ProductResults) error
	IncrementHit(ctx context.Context, id uuid.UUID) error
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Repository is the gorm-backed cache store.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a search cache repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// NormalizeTerm canonicalizes a search term for cache keying.
func NormalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// Find returns the cached entry for a term regardless of age. Callers
// decide whether a stale entry is acceptable.
func (r *Repository) Find(ctx context.Context, term string, storeNumber int) (*models.SearchCacheEntry, error) {
	var entry models.SearchCacheEntry
	err := r.db.WithContext(ctx).
		Where("search_term = ? AND store_number = ?", NormalizeTerm(term), storeNumber).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find cached search")
	}
	return &entry, nil
}

// Put stores fresh results for a term, replacing any prior entry.
func (r *Repository) Put(ctx context.Context, term string, storeNumber int, results types.ProductResults) error {
	entry := &models.SearchCacheEntry{
		ID:          uuid.New(),
		SearchTerm:  NormalizeTerm(term),
		StoreNumber: storeNumber,
		Results:     results,
		CachedAt:    time.Now().UTC(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "search_term"}, {Name: "store_number"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"results_json": gorm.Expr("excluded.results_json"),
			"cached_at":    gorm.Expr("excluded.cached_at"),
			"hit_count":    0,
		}),
	}).Create(entry).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cache search results")
	}
	return nil
}

// IncrementHit bumps the entry's hit counter.
func (r *Repository) IncrementHit(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Model(&models.SearchCacheEntry{}).
		Where("id = ?", id).
		Update("hit_count", gorm.Expr("hit_count + 1")).Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "increment cache hit")
	}
	return nil
}

// PurgeOlderThan drops entries cached before the cutoff and reports how
// many were removed.
func (r *Repository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("cached_at < ?", cutoff).
		Delete(&models.SearchCacheEntry{})
	if res.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "purge search cache")
	}
	return res.RowsAffected, nil
}
