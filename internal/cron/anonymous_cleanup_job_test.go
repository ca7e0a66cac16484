package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/calebmorris/cartly-backend/pkg/logger"
)

type stubAnonymousRepo struct {
	cutoff  time.Time
	deleted int64
	err     error
}

func (s *stubAnonymousRepo) DeleteStaleAnonymous(ctx context.Context, cutoff time.Time) (int64, error) {
	s.cutoff = cutoff
	return s.deleted, s.err
}

func TestAnonymousCleanupJobUsesRetentionCutoff(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	repo := &stubAnonymousRepo{deleted: 3}
	job, err := NewAnonymousCleanupJob(AnonymousCleanupJobParams{
		Logger:     logg,
		Repository: repo,
		Retention:  30 * 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	job.(*anonymousCleanupJob).now = func() time.Time { return fixed }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := fixed.Add(-30 * 24 * time.Hour)
	if !repo.cutoff.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s", want, repo.cutoff)
	}
}

func TestAnonymousCleanupJobPropagatesErrors(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	repo := &stubAnonymousRepo{err: errors.New("db down")}
	job, err := NewAnonymousCleanupJob(AnonymousCleanupJobParams{Logger: logg, Repository: repo})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestAnonymousCleanupJobRequiresRepository(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	if _, err := NewAnonymousCleanupJob(AnonymousCleanupJobParams{Logger: logg}); err == nil {
		t.Fatalf("expected constructor error")
	}
}
