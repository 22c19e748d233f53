// Package matching implements the item-matching pipeline: candidate
// lookup, similarity scoring, match deduplication and persistence, and
// notification dispatch.
package matching

import (
	"context"
	"log/slog"
	"sort"

	"github.com/SurinderTech/findify-finder/internal/errors"
	"github.com/SurinderTech/findify-finder/internal/observability"
	"github.com/SurinderTech/findify-finder/server/ai"
	"github.com/SurinderTech/findify-finder/server/stats"
	"github.com/SurinderTech/findify-finder/store"
)

// Store is the subset of the entity store the pipeline uses.
type Store interface {
	GetItem(ctx context.Context, find *store.FindItem) (*store.Item, error)
	ListItems(ctx context.Context, find *store.FindItem) ([]*store.Item, error)
	UpdateItem(ctx context.Context, update *store.UpdateItem) error
	GetMatch(ctx context.Context, find *store.FindMatch) (*store.Match, error)
	CreateMatch(ctx context.Context, create *store.Match) (*store.Match, error)
	UpdateMatch(ctx context.Context, update *store.UpdateMatch) error
	GetItemFeature(ctx context.Context, itemID int32, model string) (*store.ItemFeature, error)
	UpsertItemFeature(ctx context.Context, feature *store.ItemFeature) (*store.ItemFeature, error)
	SearchItemsByVector(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.ItemWithScore, error)
	GetUser(ctx context.Context, find *store.FindUser) (*store.User, error)
	AddReturnPoints(ctx context.Context, userID int32, points int) error
}

// Notifier delivers match notifications. Implementations must treat
// delivery as fire-and-forget: failures are theirs to log.
type Notifier interface {
	NotifyMatch(ctx context.Context, item *store.Item, scored []ScoredCandidate)
	NotifyConfirmation(ctx context.Context, match *store.Match, lostItem, foundItem *store.Item)
}

// ScoredCandidate is a candidate item with its combined match score.
type ScoredCandidate struct {
	Item  *store.Item
	Score int
	// Match is set once the pair has been persisted.
	Match *store.Match
}

// Config tunes the pipeline.
type Config struct {
	// LocationNarrowing restricts candidates to overlapping locations.
	LocationNarrowing bool
	// MinNotifyScore suppresses notifications for matches scoring below
	// it. Zero notifies on every persisted match.
	MinNotifyScore int
}

// Service runs the matching pipeline for submitted items.
type Service struct {
	store     Store
	extractor ai.Extractor
	notifier  Notifier
	stats     *stats.Counters
	config    Config
}

// NewService creates a matching service.
func NewService(s Store, extractor ai.Extractor, notifier Notifier, counters *stats.Counters, config Config) *Service {
	if counters == nil {
		counters = stats.New()
	}
	return &Service{
		store:     s,
		extractor: extractor,
		notifier:  notifier,
		stats:     counters,
		config:    config,
	}
}

// RunForItem executes one matching run for the given item: find candidates,
// score and deduplicate, persist new matches, dispatch notifications.
// Matching is a best-effort background enhancement; the only error returned
// is an unknown item id, everything else degrades to an empty result.
func (s *Service) RunForItem(ctx context.Context, itemID int32) ([]ScoredCandidate, error) {
	item, err := s.store.GetItem(ctx, &store.FindItem{ID: &itemID})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeNotFound, "failed to fetch item")
	}
	if item == nil {
		return nil, errors.NotFound("item", itemID)
	}

	runCtx := observability.NewRunContext(slog.Default(), item.ID)
	ctx = observability.WithRunContext(ctx, runCtx)

	if item.Status.Opposite() == "" {
		runCtx.Debug("item status is terminal, skipping matching run",
			slog.String("status", string(item.Status)))
		return []ScoredCandidate{}, nil
	}

	candidates := s.FindCandidates(ctx, item)
	if len(candidates) == 0 {
		runCtx.Debug("no candidates for item")
		return []ScoredCandidate{}, nil
	}

	scored := s.ScoreAndFilter(ctx, item, candidates)

	persisted := make([]ScoredCandidate, 0, len(scored))
	for _, sc := range scored {
		match, err := s.persistMatch(ctx, item, sc.Item, sc.Score)
		if err != nil {
			runCtx.Error("failed to persist match", err,
				slog.Int64(observability.LogFieldCandidateID, int64(sc.Item.ID)))
			continue
		}
		if match == nil {
			// Lost the check-then-insert race to a concurrent run.
			s.stats.Inc(stats.OutcomeDuplicate)
			continue
		}
		sc.Match = match
		s.stats.Inc(stats.OutcomeMatched)
		runCtx.Info("match created",
			slog.Int64(observability.LogFieldMatchID, int64(match.ID)),
			slog.Int64(observability.LogFieldCandidateID, int64(sc.Item.ID)),
			slog.Int(observability.LogFieldScore, sc.Score))
		persisted = append(persisted, sc)
	}

	if s.notifier != nil {
		notifiable := persisted
		if s.config.MinNotifyScore > 0 {
			notifiable = make([]ScoredCandidate, 0, len(persisted))
			for _, sc := range persisted {
				if sc.Score >= s.config.MinNotifyScore {
					notifiable = append(notifiable, sc)
				}
			}
		}
		if len(notifiable) > 0 {
			s.notifier.NotifyMatch(ctx, item, notifiable)
		}
	}

	runCtx.Info("matching run finished",
		slog.Int("candidates", len(candidates)),
		slog.Int("matches", len(persisted)),
		slog.Int64(observability.LogFieldDuration, runCtx.DurationMs()))
	return persisted, nil
}

// FindCandidates returns items of opposite status, excluding the probe
// item. Location narrowing keeps a candidate when either location contains
// the other. Returns an empty slice (never nil) on no matches or lookup
// failure; a storage hiccup yields no matches rather than failing the
// submission. When the driver supports vector search, candidates are
// pre-ranked by stored-vector similarity; membership is the same either way.
func (s *Service) FindCandidates(ctx context.Context, item *store.Item) []*store.Item {
	opposite := item.Status.Opposite()
	if opposite == "" {
		return []*store.Item{}
	}

	candidates, err := s.store.ListItems(ctx, &store.FindItem{
		Status:    &opposite,
		ExcludeID: &item.ID,
	})
	if err != nil {
		s.logRun(ctx).Error("failed to find candidates", err)
		return []*store.Item{}
	}

	if s.config.LocationNarrowing && item.Location != "" {
		narrowed := make([]*store.Item, 0, len(candidates))
		for _, candidate := range candidates {
			if LocationOverlap(item.Location, candidate.Location) {
				narrowed = append(narrowed, candidate)
			}
		}
		candidates = narrowed
	}
	if candidates == nil {
		return []*store.Item{}
	}
	return s.rankCandidates(ctx, item, candidates)
}

// rankCandidates reorders candidates by stored-vector similarity to the
// probe item's stored vector. Drivers without vector search, and items
// without a stored vector, keep the scan order.
func (s *Service) rankCandidates(ctx context.Context, item *store.Item, candidates []*store.Item) []*store.Item {
	if s.extractor == nil || len(candidates) < 2 {
		return candidates
	}
	feature, err := s.store.GetItemFeature(ctx, item.ID, s.extractor.Model())
	if err != nil || feature == nil {
		return candidates
	}

	ranked, err := s.store.SearchItemsByVector(ctx, &store.VectorSearchOptions{
		Status: item.Status.Opposite(),
		Vector: feature.Vector,
		Limit:  len(candidates),
	})
	if err != nil {
		s.logRun(ctx).Debug("vector search unavailable, keeping scan order",
			slog.String("error", err.Error()))
		return candidates
	}

	position := make(map[int32]int, len(ranked))
	for i, result := range ranked {
		position[result.Item.ID] = i
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		pi, iOK := position[candidates[i].ID]
		pj, jOK := position[candidates[j].ID]
		if iOK && jOK {
			return pi < pj
		}
		return iOK
	})
	return candidates
}

// ScoreAndFilter scores each candidate against the item and drops pairs
// that already have a match record in either direction. Candidates without
// usable feature evidence keep DefaultMatchScore instead of being dropped.
func (s *Service) ScoreAndFilter(ctx context.Context, item *store.Item, candidates []*store.Item) []ScoredCandidate {
	itemVec := s.featuresFor(ctx, item)

	scored := make([]ScoredCandidate, 0, len(candidates))
	for _, candidate := range candidates {
		exists, err := s.matchExists(ctx, item, candidate)
		if err != nil {
			s.logRun(ctx).Error("failed to check existing match", err,
				slog.Int64(observability.LogFieldCandidateID, int64(candidate.ID)))
			continue
		}
		if exists {
			s.stats.Inc(stats.OutcomeDuplicate)
			continue
		}

		score := DefaultMatchScore
		if itemVec != nil {
			if candidateVec := s.featuresFor(ctx, candidate); candidateVec != nil {
				sim, err := CosineSimilarity(itemVec, candidateVec)
				if err != nil {
					// A dimension mismatch means the extractor broke its
					// contract; surface loudly instead of defaulting.
					panic(err)
				}
				score = ScoreFromSimilarity(sim)
			}
		}

		scored = append(scored, ScoredCandidate{Item: candidate, Score: score})
	}
	return scored
}

// featuresFor returns the feature vector for an item, preferring the
// stored vector and falling back to a fresh extraction (which is then
// stored). Returns nil when no evidence is available.
func (s *Service) featuresFor(ctx context.Context, item *store.Item) []float32 {
	if s.extractor == nil {
		return nil
	}

	feature, err := s.store.GetItemFeature(ctx, item.ID, s.extractor.Model())
	if err != nil {
		s.logRun(ctx).Warn("failed to read stored features",
			slog.Int64(observability.LogFieldItemID, int64(item.ID)),
			slog.String("error", err.Error()))
	} else if feature != nil {
		if len(feature.Vector) == s.extractor.Dimension() {
			return feature.Vector
		}
		// A stored vector from an earlier dimension setting is stale
		// evidence, not a contract violation; re-extract over it.
		s.logRun(ctx).Warn("stored vector length does not match extractor, re-extracting",
			slog.Int64(observability.LogFieldItemID, int64(item.ID)),
			slog.Int("stored", len(feature.Vector)),
			slog.Int("expected", s.extractor.Dimension()))
	}

	if item.ImageURL == "" {
		return nil
	}
	vector := ai.SafeExtract(ctx, s.extractor, item.ImageURL)
	if vector == nil {
		s.stats.Inc(stats.OutcomeExtractionFailed)
		return nil
	}

	if _, err := s.store.UpsertItemFeature(ctx, &store.ItemFeature{
		ItemID: item.ID,
		Vector: vector,
		Model:  s.extractor.Model(),
	}); err != nil {
		s.logRun(ctx).Warn("failed to store features",
			slog.Int64(observability.LogFieldItemID, int64(item.ID)),
			slog.String("error", err.Error()))
	}
	return vector
}

// matchExists checks the match store for the pair in either direction.
func (s *Service) matchExists(ctx context.Context, item, candidate *store.Item) (bool, error) {
	lostID, foundID := orientPair(item, candidate)
	match, err := s.store.GetMatch(ctx, &store.FindMatch{
		LostItemID:  &lostID,
		FoundItemID: &foundID,
	})
	if err != nil {
		return false, err
	}
	return match != nil, nil
}

// persistMatch writes a pending match for the pair. Returns (nil, nil)
// when the storage unique index reports the pair as already matched.
func (s *Service) persistMatch(ctx context.Context, item, candidate *store.Item, score int) (*store.Match, error) {
	lostID, foundID := orientPair(item, candidate)
	match, err := s.store.CreateMatch(ctx, &store.Match{
		LostItemID:  lostID,
		FoundItemID: foundID,
		MatchScore:  score,
		Status:      store.MatchStatusPending,
	})
	if err != nil {
		return nil, errors.PersistenceFailed("failed to create match", err)
	}
	return match, nil
}

// orientPair assigns the lost/found sides from each item's own status,
// regardless of which side triggered the run. The canonical orientation
// makes the unique pair index effective.
func orientPair(item, candidate *store.Item) (lostID, foundID int32) {
	if item.Status == store.ItemStatusLost {
		return item.ID, candidate.ID
	}
	return candidate.ID, item.ID
}

func (s *Service) logRun(ctx context.Context) *observability.RunContext {
	if runCtx, ok := observability.FromContext(ctx); ok {
		return runCtx
	}
	return observability.NewRunContext(slog.Default(), 0)
}
