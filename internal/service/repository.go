package service

import (
	"context"
	"database/sql"

	"github.com/thinkex/clusters-api/internal/store"
)

// Repository bundles the three entity stores behind one transactional
// boundary. The coordinator is written against this interface so tests can
// substitute in-memory fakes.
type Repository interface {
	// Lists returns the cluster list store.
	Lists() store.ClusterListStore

	// Clusters returns the cluster store.
	Clusters() store.ClusterStore

	// Cards returns the card store.
	Cards() store.CardStore

	// Transact runs fn inside a single transaction. The Repository passed
	// to fn has all three stores bound to that transaction; the receiver's
	// stores remain bound to the base connection. fn's error rolls the
	// transaction back, nil commits it.
	Transact(ctx context.Context, fn func(ctx context.Context, r Repository) error) error
}

// repositoryAdapter implements Repository over *sql.DB-backed stores.
type repositoryAdapter struct {
	db       *sql.DB
	lists    store.ClusterListStore
	clusters store.ClusterStore
	cards    store.CardStore
}

// NewRepository creates a Repository from the database handle and the three
// entity stores.
func NewRepository(
	db *sql.DB,
	lists store.ClusterListStore,
	clusters store.ClusterStore,
	cards store.CardStore,
) Repository {
	return &repositoryAdapter{
		db:       db,
		lists:    lists,
		clusters: clusters,
		cards:    cards,
	}
}

func (a *repositoryAdapter) Lists() store.ClusterListStore {
	return a.lists
}

func (a *repositoryAdapter) Clusters() store.ClusterStore {
	return a.clusters
}

func (a *repositoryAdapter) Cards() store.CardStore {
	return a.cards
}

func (a *repositoryAdapter) Transact(
	ctx context.Context,
	fn func(ctx context.Context, r Repository) error,
) error {
	return store.RunInTransaction(ctx, a.db, func(ctx context.Context, tx *sql.Tx) error {
		txRepo := &repositoryAdapter{
			db:       a.db,
			lists:    a.lists.WithTx(tx),
			clusters: a.clusters.WithTx(tx),
			cards:    a.cards.WithTx(tx),
		}
		return fn(ctx, txRepo)
	})
}
