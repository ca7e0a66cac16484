package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/calebmorris/cartly-backend/pkg/logger"
	"github.com/calebmorris/cartly-backend/pkg/metrics"
)

const anonymousRetentionDays = 30

type anonymousCleanupRepo interface {
	DeleteStaleAnonymous(ctx context.Context, cutoff time.Time) (int64, error)
}

// AnonymousCleanupJobParams configure the stale anonymous user sweep.
type AnonymousCleanupJobParams struct {
	Logger     *logger.Logger
	Repository anonymousCleanupRepo
	Metrics    *metrics.JobMetrics
	Retention  time.Duration
}

// NewAnonymousCleanupJob deletes anonymous users past the retention window
// that never accumulated a cart, list or recipe.
func NewAnonymousCleanupJob(params AnonymousCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("user repository required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = anonymousRetentionDays * 24 * time.Hour
	}
	return &anonymousCleanupJob{
		logg:      params.Logger,
		repo:      params.Repository,
		metrics:   params.Metrics,
		retention: retention,
		now:       time.Now,
	}, nil
}

type anonymousCleanupJob struct {
	logg      *logger.Logger
	repo      anonymousCleanupRepo
	metrics   *metrics.JobMetrics
	retention time.Duration
	now       func() time.Time
}

func (j *anonymousCleanupJob) Name() string { return "anonymous-cleanup" }

func (j *anonymousCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.retention)
	deleted, err := j.repo.DeleteStaleAnonymous(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("anonymous cleanup: %w", err)
	}
	if j.metrics != nil {
		j.metrics.AddDeleted(j.Name(), int(deleted))
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":       cutoff,
		"rows_deleted": deleted,
	})
	j.logg.Info(logCtx, "anonymous cleanup complete")
	return nil
}
