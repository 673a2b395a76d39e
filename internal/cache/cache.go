package cache

import (
	"context"
	"time"

	"github.com/mamadbah2/fleetstock/internal/domain/models"
)

// SummaryCache stores computed sales summaries for a short time. Entries are
// scoped to a generation: Invalidate starts a new one, so a summary computed
// before a write and stored after it lands under a generation nobody reads.
type SummaryCache interface {
	Generation(ctx context.Context) (int64, error)
	Get(ctx context.Context, generation int64, key string) (*models.SalesSummary, bool, error)
	Set(ctx context.Context, generation int64, key string, value *models.SalesSummary, ttl time.Duration) error
	// Invalidate starts a new generation; order writes call it.
	Invalidate(ctx context.Context) error
}

type NoopSummaryCache struct{}

func (NoopSummaryCache) Generation(_ context.Context) (int64, error) {
	return 0, nil
}

func (NoopSummaryCache) Get(_ context.Context, _ int64, _ string) (*models.SalesSummary, bool, error) {
	return nil, false, nil
}

func (NoopSummaryCache) Set(_ context.Context, _ int64, _ string, _ *models.SalesSummary, _ time.Duration) error {
	return nil
}

func (NoopSummaryCache) Invalidate(_ context.Context) error {
	return nil
}
