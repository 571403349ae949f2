package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/thinkex/clusters-api/internal/domain"
)

// ClusterListInfo is the id+title projection of a cluster list, used by
// listing endpoints that do not need the full hierarchy.
type ClusterListInfo struct {
	ID    uuid.UUID `json:"id"`
	Title string    `json:"title"`
}

// ClusterListStore defines the interface for cluster list persistence.
type ClusterListStore interface {
	// Create saves a new cluster list to the store.
	// Returns validation errors if the list data is invalid.
	Create(ctx context.Context, list *domain.ClusterList) error

	// GetByID retrieves a cluster list by its unique ID.
	// Returns ErrClusterListNotFound if the list does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ClusterList, error)

	// List retrieves all cluster lists ordered by creation time.
	List(ctx context.Context) ([]*domain.ClusterList, error)

	// ListInfo retrieves the id+title projection of all cluster lists.
	ListInfo(ctx context.Context) ([]ClusterListInfo, error)

	// Delete removes a cluster list by its ID. Member clusters and their
	// cards are removed by the schema's ON DELETE CASCADE constraints.
	// Returns ErrClusterListNotFound if the list does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new ClusterListStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) ClusterListStore
}
