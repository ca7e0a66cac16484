package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/calebmorris/cartly-backend/pkg/logger"
)

type stubSearchCacheRepo struct {
	cutoff time.Time
	purged int64
	err    error
}

func (s *stubSearchCacheRepo) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	s.cutoff = cutoff
	return s.purged, s.err
}

func TestSearchCachePurgeJobUsesTTLCutoff(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	repo := &stubSearchCacheRepo{purged: 12}
	job, err := NewSearchCachePurgeJob(SearchCachePurgeJobParams{
		Logger:     logg,
		Repository: repo,
		TTL:        7 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	job.(*searchCachePurgeJob).now = func() time.Time { return fixed }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := fixed.Add(-7 * 24 * time.Hour)
	if !repo.cutoff.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s", want, repo.cutoff)
	}
}

func TestSearchCachePurgeJobPropagatesErrors(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	repo := &stubSearchCacheRepo{err: errors.New("db down")}
	job, err := NewSearchCachePurgeJob(SearchCachePurgeJobParams{Logger: logg, Repository: repo})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}
