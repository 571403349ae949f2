package service

import (
	"context"
	"database/sql"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/thinkex/clusters-api/internal/domain"
	"github.com/thinkex/clusters-api/internal/events"
	"github.com/thinkex/clusters-api/internal/store"
)

// fakeStore is an in-memory implementation of all three entity stores,
// mirroring the persistence contract closely enough for coordinator tests:
// insertion order stands in for creation-time ordering, and the per-list
// title uniqueness check stands in for the unique index.
type fakeStore struct {
	mu       sync.Mutex
	lists    []*domain.ClusterList
	clusters []*domain.Cluster
	cards    []*domain.Card
}

func newFakeStore() *fakeStore {
	return &fakeStore{}
}

// --- store.ClusterListStore ---

func (f *fakeStore) Create(ctx context.Context, list *domain.ClusterList) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cp := *list
	f.lists = append(f.lists, &cp)
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ClusterList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, l := range f.lists {
		if l.ID == id {
			cp := *l
			return &cp, nil
		}
	}
	return nil, store.ErrClusterListNotFound
}

func (f *fakeStore) List(ctx context.Context) ([]*domain.ClusterList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*domain.ClusterList, 0, len(f.lists))
	for _, l := range f.lists {
		cp := *l
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeStore) ListInfo(ctx context.Context) ([]store.ClusterListInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]store.ClusterListInfo, 0, len(f.lists))
	for _, l := range f.lists {
		out = append(out, store.ClusterListInfo{ID: l.ID, Title: l.Title})
	}
	return out, nil
}

func (f *fakeStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, l := range f.lists {
		if l.ID == id {
			f.lists = append(f.lists[:i], f.lists[i+1:]...)
			f.cascadeListLocked(id)
			return nil
		}
	}
	return store.ErrClusterListNotFound
}

func (f *fakeStore) WithTx(tx *sql.Tx) store.ClusterListStore {
	return f
}

func (f *fakeStore) cascadeListLocked(listID uuid.UUID) {
	kept := f.clusters[:0]
	for _, c := range f.clusters {
		if c.ListID == listID {
			f.cascadeClusterLocked(c.ID)
			continue
		}
		kept = append(kept, c)
	}
	f.clusters = kept
}

// clusterStore / cardStore views expose the non-colliding methods of the
// other two store interfaces.
type clusterStore struct{ *fakeStore }
type cardStore struct{ *fakeStore }

// --- store.ClusterStore ---

func (f clusterStore) Create(ctx context.Context, cluster *domain.Cluster) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	listExists := false
	for _, l := range f.lists {
		if l.ID == cluster.ListID {
			listExists = true
			break
		}
	}
	if !listExists {
		return store.ErrInvalidEntity
	}

	key := domain.NormalizeTitle(cluster.Title)
	for _, c := range f.clusters {
		if c.ListID == cluster.ListID && domain.NormalizeTitle(c.Title) == key {
			return store.ErrClusterTitleExists
		}
	}

	cp := *cluster
	f.clusters = append(f.clusters, &cp)
	return nil
}

func (f clusterStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Cluster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, c := range f.clusters {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, store.ErrClusterNotFound
}

func (f clusterStore) FindByTitle(ctx context.Context, listID uuid.UUID, title string) (*domain.Cluster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := domain.NormalizeTitle(title)
	for _, c := range f.clusters {
		if c.ListID == listID && domain.NormalizeTitle(c.Title) == key {
			cp := *c
			return &cp, nil
		}
	}
	return nil, store.ErrClusterNotFound
}

func (f clusterStore) ListByList(ctx context.Context, listID uuid.UUID) ([]*domain.Cluster, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*domain.Cluster
	for _, c := range f.clusters {
		if c.ListID == listID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f clusterStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, c := range f.clusters {
		if c.ID == id {
			f.clusters = append(f.clusters[:i], f.clusters[i+1:]...)
			f.cascadeClusterLocked(id)
			return nil
		}
	}
	return store.ErrClusterNotFound
}

func (f clusterStore) WithTx(tx *sql.Tx) store.ClusterStore {
	return f
}

func (f *fakeStore) cascadeClusterLocked(clusterID uuid.UUID) {
	kept := f.cards[:0]
	for _, card := range f.cards {
		if card.ClusterID != clusterID {
			kept = append(kept, card)
		}
	}
	f.cards = kept
}

// --- store.CardStore ---

func (f cardStore) Create(ctx context.Context, card *domain.Card) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	clusterExists := false
	for _, c := range f.clusters {
		if c.ID == card.ClusterID {
			clusterExists = true
			break
		}
	}
	if !clusterExists {
		return store.ErrInvalidEntity
	}

	cp := *card
	f.cards = append(f.cards, &cp)
	return nil
}

func (f cardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, card := range f.cards {
		if card.ID == id {
			cp := *card
			return &cp, nil
		}
	}
	return nil, store.ErrCardNotFound
}

func (f cardStore) Update(ctx context.Context, card *domain.Card) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, existing := range f.cards {
		if existing.ID == card.ID {
			cp := *card
			f.cards[i] = &cp
			return nil
		}
	}
	return store.ErrCardNotFound
}

func (f cardStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, card := range f.cards {
		if card.ID == id {
			f.cards = append(f.cards[:i], f.cards[i+1:]...)
			return nil
		}
	}
	return store.ErrCardNotFound
}

func (f cardStore) ListByCluster(ctx context.Context, clusterID uuid.UUID) ([]*domain.Card, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*domain.Card, 0)
	for _, card := range f.cards {
		if card.ClusterID == clusterID {
			cp := *card
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})
	return out, nil
}

func (f cardStore) MaxPosition(ctx context.Context, clusterID uuid.UUID) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	max, found := 0, false
	for _, card := range f.cards {
		if card.ClusterID == clusterID {
			if !found || card.Position > max {
				max = card.Position
			}
			found = true
		}
	}
	return max, found, nil
}

func (f cardStore) UpdatePositions(ctx context.Context, orderedIDs []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for pos, id := range orderedIDs {
		for _, card := range f.cards {
			if card.ID == id {
				card.Position = pos
				break
			}
		}
	}
	return nil
}

func (f cardStore) WithTx(tx *sql.Tx) store.CardStore {
	return f
}

// fakeRepository satisfies Repository over the in-memory store. Transact
// runs the function directly: the coordinator's per-list lock provides the
// exclusivity the real transaction would.
type fakeRepository struct {
	store *fakeStore
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{store: newFakeStore()}
}

func (r *fakeRepository) Lists() store.ClusterListStore {
	return r.store
}

func (r *fakeRepository) Clusters() store.ClusterStore {
	return clusterStore{r.store}
}

func (r *fakeRepository) Cards() store.CardStore {
	return cardStore{r.store}
}

func (r *fakeRepository) Transact(
	ctx context.Context,
	fn func(ctx context.Context, r Repository) error,
) error {
	return fn(ctx, r)
}

// recordingDispatcher captures dispatched events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []*events.ChangeEvent
}

func (d *recordingDispatcher) Dispatch(event *events.ChangeEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
}

func (d *recordingDispatcher) actions() []events.Action {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([]events.Action, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Action)
	}
	return out
}

func (d *recordingDispatcher) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.events)
}
