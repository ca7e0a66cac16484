package search

import (
	"context"
	"fmt"
	"time"

	"github.com/calebmorris/cartly-backend/pkg/config"
	pkgerrors "github.com/calebmorris/cartly-backend/pkg/errors"
	"github.com/calebmorris/cartly-backend/pkg/logger"
	"github.com/calebmorris/cartly-backend/pkg/types"
)

// productSearcher is the upstream catalog provider.
type productSearcher interface {
	SearchProducts(ctx context.Context, query string, storeNumber int) (types.ProductResults, error)
}

// Response is the API shape of a search.
type Response struct {
	Term        string               `json:"search_term"`
	StoreNumber int                  `json:"store_number"`
	Cached      bool                 `json:"from_cache"`
	Results     types.ProductResults `json:"products"`
}

// Service answers product searches cache-first with a stale-cache
// fallback when the provider is down.
type Service interface {
	Search(ctx context.Context, term string, storeNumber int) (*Response, error)
}

// ServiceParams collects the dependencies for NewService.
type ServiceParams struct {
	Cache    CacheRepository
	Provider productSearcher
	Config   config.SearchConfig
	Logger   *logger.Logger
}

type service struct {
	cache    CacheRepository
	provider productSearcher
	ttl      time.Duration
	logg     *logger.Logger
}

// NewService builds a search service backed by the provided stack.
func NewService(p ServiceParams) (Service, error) {
	if p.Cache == nil {
		return nil, fmt.Errorf("cache repository required")
	}
	if p.Provider == nil {
		return nil, fmt.Errorf("search provider required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	ttl := p.Config.CacheTTL()
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &service{cache: p.Cache, provider: p.Provider, ttl: ttl, logg: p.Logger}, nil
}

// Search serves from the cache when a fresh entry exists, otherwise
// queries the provider and caches the result. Cache reads and writes
// are best-effort; a provider outage degrades to stale cached results
// rather than failing the request.
func (s *service) Search(ctx context.Context, term string, storeNumber int) (*Response, error) {
	normalized := NormalizeTerm(term)
	if normalized == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search term is required")
	}

	cached, err := s.cache.Find(ctx, normalized, storeNumber)
	if err != nil {
		s.logg.Error(ctx, "search cache lookup failed", err)
		cached = nil
	}
	if cached != nil && time.Since(cached.CachedAt) < s.ttl {
		if err := s.cache.IncrementHit(ctx, cached.ID); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "term", normalized), "search cache hit count not recorded")
		}
		return &Response{Term: normalized, StoreNumber: storeNumber, Cached: true, Results: cached.Results}, nil
	}

	results, err := s.provider.SearchProducts(ctx, normalized, storeNumber)
	if err != nil {
		if cached != nil {
			s.logg.Warn(s.logg.WithField(ctx, "term", normalized), "search provider down, serving stale cache")
			return &Response{Term: normalized, StoreNumber: storeNumber, Cached: true, Results: cached.Results}, nil
		}
		return nil, err
	}

	if err := s.cache.Put(ctx, normalized, storeNumber, results); err != nil {
		s.logg.Error(ctx, "search cache write failed", err)
	}
	return &Response{Term: normalized, StoreNumber: storeNumber, Cached: false, Results: results}, nil
}
