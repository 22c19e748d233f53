// Package feature backfills feature vectors for items whose extraction
// was skipped or failed at submission time.
package feature

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SurinderTech/findify-finder/server/ai"
	"github.com/SurinderTech/findify-finder/server/service/matching"
	"github.com/SurinderTech/findify-finder/store"
)

// Store is the subset of the entity store the runner uses.
type Store interface {
	ListItemsWithoutFeatures(ctx context.Context, find *store.FindItemsWithoutFeatures) ([]*store.Item, error)
	UpsertItemFeature(ctx context.Context, feature *store.ItemFeature) (*store.ItemFeature, error)
}

// Matcher re-runs matching for items that just gained feature vectors.
type Matcher interface {
	RunForItem(ctx context.Context, itemID int32) ([]matching.ScoredCandidate, error)
}

// Runner periodically extracts features for active items that have an
// image but no stored vector yet.
type Runner struct {
	store     Store
	extractor ai.Extractor
	matcher   Matcher
	interval  time.Duration
	batchSize int
}

// NewRunner creates a feature backfill runner. interval and batchSize
// fall back to conservative defaults when non-positive.
func NewRunner(s Store, extractor ai.Extractor, matcher Matcher, interval time.Duration, batchSize int) *Runner {
	if interval <= 0 {
		interval = 2 * time.Minute
	}
	if batchSize <= 0 {
		batchSize = 8
	}
	return &Runner{
		store:     s,
		extractor: extractor,
		matcher:   matcher,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Run starts the background task. It returns when ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	// Process once on startup.
	r.processPendingItems(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.processPendingItems(ctx)
		case <-ctx.Done():
			slog.Info("feature runner stopped")
			return
		}
	}
}

// RunOnce processes pending items once (for manual trigger).
func (r *Runner) RunOnce(ctx context.Context) {
	r.processPendingItems(ctx)
}

func (r *Runner) processPendingItems(ctx context.Context) {
	items, err := r.store.ListItemsWithoutFeatures(ctx, &store.FindItemsWithoutFeatures{
		Model: r.extractor.Model(),
		// Fetch more than one batch, but process in small batches.
		Limit: r.batchSize * 20,
	})
	if err != nil {
		slog.Error("failed to find items without features", "error", err)
		return
	}
	if len(items) == 0 {
		return
	}

	slog.Info("processing items for feature extraction", "count", len(items))

	for i := 0; i < len(items); i += r.batchSize {
		select {
		case <-ctx.Done():
			slog.Info("feature processing cancelled", "processed", i, "total", len(items))
			return
		default:
		}

		end := i + r.batchSize
		if end > len(items) {
			end = len(items)
		}
		batch := items[i:end]

		processed := r.processBatch(ctx, batch)
		slog.Info("batch processed",
			"count", processed, "progress", fmt.Sprintf("%d/%d", end, len(items)))
	}
}

// processBatch extracts and stores vectors for a batch, then re-runs
// matching for the items that gained one. Returns how many succeeded.
func (r *Runner) processBatch(ctx context.Context, items []*store.Item) int {
	processed := 0
	for _, item := range items {
		select {
		case <-ctx.Done():
			return processed
		default:
		}

		vector, err := r.extractor.ExtractFeatures(ctx, item.ImageURL)
		if err != nil {
			slog.Error("failed to extract features", "item_id", item.ID, "error", err)
			continue
		}
		if _, err := r.store.UpsertItemFeature(ctx, &store.ItemFeature{
			ItemID: item.ID,
			Vector: vector,
			Model:  r.extractor.Model(),
		}); err != nil {
			slog.Error("failed to upsert features", "item_id", item.ID, "error", err)
			continue
		}
		processed++

		if r.matcher != nil {
			if _, err := r.matcher.RunForItem(ctx, item.ID); err != nil {
				slog.Error("matching run failed after feature backfill",
					"item_id", item.ID, "error", err)
			}
		}
	}
	return processed
}
