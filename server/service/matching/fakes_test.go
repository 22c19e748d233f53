package matching

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/SurinderTech/findify-finder/store"
)

// fakeStore is an in-memory Store for pipeline tests. It mirrors the
// driver contracts that matter here: list filtering and the unique
// (lost_item_id, found_item_id) pair index on match creation.
type fakeStore struct {
	mu       sync.Mutex
	items    map[int32]*store.Item
	matches  []*store.Match
	features map[string]*store.ItemFeature
	users    map[int32]*store.User
	returns  map[int32][]int

	nextMatchID int32

	listItemsErr   error
	createMatchErr error

	// vectorResults serves SearchItemsByVector; when nil the fake
	// mimics the sqlite driver and reports vector search unsupported.
	vectorResults []*store.ItemWithScore
	vectorCalls   int
}

func newFakeStore(items ...*store.Item) *fakeStore {
	s := &fakeStore{
		items:    make(map[int32]*store.Item),
		features: make(map[string]*store.ItemFeature),
		users:    make(map[int32]*store.User),
		returns:  make(map[int32][]int),
	}
	for _, item := range items {
		s.items[item.ID] = item
	}
	return s
}

func featureKey(itemID int32, model string) string {
	return fmt.Sprintf("%d:%s", itemID, model)
}

func (s *fakeStore) GetItem(ctx context.Context, find *store.FindItem) (*store.Item, error) {
	list, err := s.ListItems(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *fakeStore) ListItems(_ context.Context, find *store.FindItem) ([]*store.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listItemsErr != nil {
		return nil, s.listItemsErr
	}

	list := []*store.Item{}
	for _, item := range s.items {
		if find.ID != nil && item.ID != *find.ID {
			continue
		}
		if find.Status != nil && item.Status != *find.Status {
			continue
		}
		if find.ExcludeID != nil && item.ID == *find.ExcludeID {
			continue
		}
		if find.LocationContains != nil &&
			!strings.Contains(strings.ToLower(item.Location), strings.ToLower(*find.LocationContains)) {
			continue
		}
		copied := *item
		list = append(list, &copied)
	}
	return list, nil
}

func (s *fakeStore) UpdateItem(_ context.Context, update *store.UpdateItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[update.ID]
	if !ok {
		return errors.Errorf("item %d not found", update.ID)
	}
	if update.Status != nil {
		item.Status = *update.Status
	}
	if update.ImageURL != nil {
		item.ImageURL = *update.ImageURL
	}
	return nil
}

func (s *fakeStore) GetMatch(_ context.Context, find *store.FindMatch) (*store.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, match := range s.matches {
		if find.ID != nil && match.ID != *find.ID {
			continue
		}
		if find.LostItemID != nil && match.LostItemID != *find.LostItemID {
			continue
		}
		if find.FoundItemID != nil && match.FoundItemID != *find.FoundItemID {
			continue
		}
		if find.ItemID != nil && match.LostItemID != *find.ItemID && match.FoundItemID != *find.ItemID {
			continue
		}
		if find.Status != nil && match.Status != *find.Status {
			continue
		}
		copied := *match
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeStore) CreateMatch(_ context.Context, create *store.Match) (*store.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createMatchErr != nil {
		return nil, s.createMatchErr
	}
	for _, match := range s.matches {
		if match.LostItemID == create.LostItemID && match.FoundItemID == create.FoundItemID {
			return nil, nil
		}
	}
	s.nextMatchID++
	created := *create
	created.ID = s.nextMatchID
	s.matches = append(s.matches, &created)
	copied := created
	return &copied, nil
}

func (s *fakeStore) UpdateMatch(_ context.Context, update *store.UpdateMatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, match := range s.matches {
		if match.ID == update.ID {
			if update.Status != nil {
				match.Status = *update.Status
			}
			return nil
		}
	}
	return errors.Errorf("match %d not found", update.ID)
}

func (s *fakeStore) GetItemFeature(_ context.Context, itemID int32, model string) (*store.ItemFeature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	feature, ok := s.features[featureKey(itemID, model)]
	if !ok {
		return nil, nil
	}
	copied := *feature
	return &copied, nil
}

func (s *fakeStore) UpsertItemFeature(_ context.Context, feature *store.ItemFeature) (*store.ItemFeature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *feature
	s.features[featureKey(feature.ItemID, feature.Model)] = &copied
	return &copied, nil
}

func (s *fakeStore) SearchItemsByVector(_ context.Context, _ *store.VectorSearchOptions) ([]*store.ItemWithScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectorCalls++
	if s.vectorResults == nil {
		return nil, errors.New("vector search is not supported")
	}
	list := make([]*store.ItemWithScore, 0, len(s.vectorResults))
	for _, result := range s.vectorResults {
		copied := *result
		list = append(list, &copied)
	}
	return list, nil
}

func (s *fakeStore) GetUser(_ context.Context, find *store.FindUser) (*store.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if find.ID == nil {
		return nil, nil
	}
	user, ok := s.users[*find.ID]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (s *fakeStore) AddReturnPoints(_ context.Context, userID int32, points int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.returns[userID] = append(s.returns[userID], points)
	return nil
}

func (s *fakeStore) allMatches() []*store.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]*store.Match, 0, len(s.matches))
	for _, match := range s.matches {
		copied := *match
		list = append(list, &copied)
	}
	return list
}

func (s *fakeStore) item(id int32) *store.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *s.items[id]
	return &copied
}

// fakeExtractor serves canned vectors keyed by image URL.
type fakeExtractor struct {
	mu      sync.Mutex
	vectors map[string][]float32
	errs    map[string]error
	calls   map[string]int
}

func newFakeExtractor() *fakeExtractor {
	return &fakeExtractor{
		vectors: make(map[string][]float32),
		errs:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

func (e *fakeExtractor) ExtractFeatures(_ context.Context, imageURL string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls[imageURL]++
	if err, ok := e.errs[imageURL]; ok {
		return nil, err
	}
	vector, ok := e.vectors[imageURL]
	if !ok {
		return nil, errors.Errorf("no vector for %s", imageURL)
	}
	return vector, nil
}

func (e *fakeExtractor) Dimension() int { return 3 }

func (e *fakeExtractor) Model() string { return "test-model" }

func (e *fakeExtractor) callCount(imageURL string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls[imageURL]
}

// recordingNotifier captures dispatched notifications.
type recordingNotifier struct {
	mu            sync.Mutex
	matchCalls    []matchCall
	confirmations []confirmationCall
}

type matchCall struct {
	item   *store.Item
	scored []ScoredCandidate
}

type confirmationCall struct {
	match     *store.Match
	lostItem  *store.Item
	foundItem *store.Item
}

func (n *recordingNotifier) NotifyMatch(_ context.Context, item *store.Item, scored []ScoredCandidate) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.matchCalls = append(n.matchCalls, matchCall{item: item, scored: scored})
}

func (n *recordingNotifier) NotifyConfirmation(_ context.Context, match *store.Match, lostItem, foundItem *store.Item) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmations = append(n.confirmations, confirmationCall{
		match:     match,
		lostItem:  lostItem,
		foundItem: foundItem,
	})
}
