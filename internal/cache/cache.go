package cache

import (
	"context"
	"time"

	"warungpos/backend/internal/domain"
)

// ReportCache stores computed reconciliation reports keyed by date window.
// Reports are always recomputable from source logs, so a miss or a cache
// failure is never an error for the caller.
type ReportCache interface {
	Get(ctx context.Context, key string) ([]domain.MovementRow, bool, error)
	Set(ctx context.Context, key string, rows []domain.MovementRow, ttl time.Duration) error
}

type NoopReportCache struct{}

func (NoopReportCache) Get(_ context.Context, _ string) ([]domain.MovementRow, bool, error) {
	return nil, false, nil
}

func (NoopReportCache) Set(_ context.Context, _ string, _ []domain.MovementRow, _ time.Duration) error {
	return nil
}
