package feature

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/SurinderTech/findify-finder/server/service/matching"
	"github.com/SurinderTech/findify-finder/store"
)

type fakeStore struct {
	mu       sync.Mutex
	pending  []*store.Item
	features map[int32]*store.ItemFeature
	listErr  error
}

func newFakeStore(pending ...*store.Item) *fakeStore {
	return &fakeStore{
		pending:  pending,
		features: make(map[int32]*store.ItemFeature),
	}
}

func (s *fakeStore) ListItemsWithoutFeatures(_ context.Context, _ *store.FindItemsWithoutFeatures) ([]*store.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var list []*store.Item
	for _, item := range s.pending {
		if _, ok := s.features[item.ID]; !ok {
			list = append(list, item)
		}
	}
	return list, nil
}

func (s *fakeStore) UpsertItemFeature(_ context.Context, feature *store.ItemFeature) (*store.ItemFeature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.features[feature.ItemID] = feature
	return feature, nil
}

type fakeExtractor struct {
	mu   sync.Mutex
	errs map[string]error
}

func (e *fakeExtractor) ExtractFeatures(_ context.Context, imageURL string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err, ok := e.errs[imageURL]; ok {
		return nil, err
	}
	return []float32{1, 0, 0}, nil
}

func (e *fakeExtractor) Dimension() int { return 3 }

func (e *fakeExtractor) Model() string { return "test-model" }

type fakeMatcher struct {
	mu      sync.Mutex
	itemIDs []int32
}

func (m *fakeMatcher) RunForItem(_ context.Context, itemID int32) ([]matching.ScoredCandidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.itemIDs = append(m.itemIDs, itemID)
	return nil, nil
}

func pendingItem(id int32, imageURL string) *store.Item {
	return &store.Item{ID: id, Status: store.ItemStatusLost, ImageURL: imageURL}
}

func TestRunOnceBackfillsAndMatches(t *testing.T) {
	s := newFakeStore(
		pendingItem(1, "img://a"),
		pendingItem(2, "img://b"),
	)
	matcher := &fakeMatcher{}
	runner := NewRunner(s, &fakeExtractor{}, matcher, 0, 0)

	runner.RunOnce(context.Background())

	require.Len(t, s.features, 2)
	require.Equal(t, "test-model", s.features[1].Model)
	require.ElementsMatch(t, []int32{1, 2}, matcher.itemIDs)

	// A second pass finds nothing left to do.
	runner.RunOnce(context.Background())
	require.Len(t, matcher.itemIDs, 2)
}

func TestRunOnceSkipsFailedExtractions(t *testing.T) {
	s := newFakeStore(
		pendingItem(1, "img://broken"),
		pendingItem(2, "img://ok"),
	)
	extractor := &fakeExtractor{errs: map[string]error{
		"img://broken": errors.New("model unavailable"),
	}}
	matcher := &fakeMatcher{}
	runner := NewRunner(s, extractor, matcher, 0, 0)

	runner.RunOnce(context.Background())

	require.Len(t, s.features, 1)
	require.Equal(t, []int32{2}, matcher.itemIDs)
}

func TestRunOnceListFailure(t *testing.T) {
	s := newFakeStore(pendingItem(1, "img://a"))
	s.listErr = errors.New("connection reset")
	matcher := &fakeMatcher{}
	runner := NewRunner(s, &fakeExtractor{}, matcher, 0, 0)

	runner.RunOnce(context.Background())
	require.Empty(t, s.features)
	require.Empty(t, matcher.itemIDs)
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newFakeStore()
	runner := NewRunner(s, &fakeExtractor{}, &fakeMatcher{}, 0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runner.Run(ctx)
		close(done)
	}()

	cancel()
	<-done
}
