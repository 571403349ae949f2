package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/thinkex/clusters-api/internal/domain"
)

// ClusterStore defines the interface for cluster persistence.
type ClusterStore interface {
	// Create saves a new cluster to the store.
	// Returns ErrClusterTitleExists if another cluster in the same list
	// already holds the same normalized title (the unique index backstop
	// of the per-list title invariant).
	// Returns ErrInvalidEntity if the owning list does not exist.
	Create(ctx context.Context, cluster *domain.Cluster) error

	// GetByID retrieves a cluster by its unique ID.
	// Returns ErrClusterNotFound if the cluster does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Cluster, error)

	// FindByTitle retrieves the cluster in the given list whose title
	// matches the given title case-insensitively after trimming.
	// Returns ErrClusterNotFound if no cluster matches. If duplicates ever
	// exist despite the invariant, the first match (by creation time) wins.
	FindByTitle(ctx context.Context, listID uuid.UUID, title string) (*domain.Cluster, error)

	// ListByList retrieves all clusters of a list ordered by creation time.
	ListByList(ctx context.Context, listID uuid.UUID) ([]*domain.Cluster, error)

	// Delete removes a cluster by its ID. Member cards are removed by the
	// schema's ON DELETE CASCADE constraint.
	// Returns ErrClusterNotFound if the cluster does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new ClusterStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) ClusterStore
}
