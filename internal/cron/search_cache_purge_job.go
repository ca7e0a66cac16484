package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/calebmorris/cartly-backend/pkg/logger"
	"github.com/calebmorris/cartly-backend/pkg/metrics"
)

const searchCacheTTLDays = 7

type searchCachePurgeRepo interface {
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SearchCachePurgeJobParams configure the expired cache sweep.
type SearchCachePurgeJobParams struct {
	Logger     *logger.Logger
	Repository searchCachePurgeRepo
	Metrics    *metrics.JobMetrics
	TTL        time.Duration
}

// NewSearchCachePurgeJob drops search cache rows older than the TTL. Stale
// rows are still served when the search provider is down, so the sweep runs
// behind the read path rather than inline.
func NewSearchCachePurgeJob(params SearchCachePurgeJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("search cache repository required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = searchCacheTTLDays * 24 * time.Hour
	}
	return &searchCachePurgeJob{
		logg:    params.Logger,
		repo:    params.Repository,
		metrics: params.Metrics,
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

type searchCachePurgeJob struct {
	logg    *logger.Logger
	repo    searchCachePurgeRepo
	metrics *metrics.JobMetrics
	ttl     time.Duration
	now     func() time.Time
}

func (j *searchCachePurgeJob) Name() string { return "search-cache-purge" }

func (j *searchCachePurgeJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	purged, err := j.repo.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("search cache purge: %w", err)
	}
	if j.metrics != nil {
		j.metrics.AddDeleted(j.Name(), int(purged))
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":      cutoff,
		"rows_purged": purged,
		"ttl_days":    int(j.ttl.Hours() / 24),
	})
	j.logg.Info(logCtx, "search cache purge complete")
	return nil
}
