package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/thinkex/clusters-api/internal/domain"
)

// CardStore defines the interface for card persistence.
type CardStore interface {
	// Create saves a new card to the store.
	// Returns validation errors if the card data is invalid.
	// Returns ErrInvalidEntity if the owning cluster does not exist.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID retrieves a card by its unique ID. The lookup is global,
	// independent of the owning cluster, so moves and updates do not need
	// to know the current parent.
	// Returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// Update persists the card's mutable fields (content, cluster
	// reference, position, updated_at).
	// Returns ErrCardNotFound if the card does not exist.
	Update(ctx context.Context, card *domain.Card) error

	// Delete removes a card from the store by its ID.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByCluster retrieves all cards of a cluster ordered by position,
	// then creation time. Returns an empty slice when the cluster is empty.
	ListByCluster(ctx context.Context, clusterID uuid.UUID) ([]*domain.Card, error)

	// MaxPosition returns the highest position currently held by a card in
	// the cluster, and false when the cluster holds no cards.
	MaxPosition(ctx context.Context, clusterID uuid.UUID) (int, bool, error)

	// UpdatePositions assigns each card's position to its index in the
	// supplied sequence. IMPORTANT: run inside a transaction via WithTx so
	// that readers never observe two cards claiming the same rank.
	UpdatePositions(ctx context.Context, orderedIDs []uuid.UUID) error

	// WithTx returns a new CardStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) CardStore
}
