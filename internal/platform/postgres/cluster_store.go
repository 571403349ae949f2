package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/thinkex/clusters-api/internal/domain"
	"github.com/thinkex/clusters-api/internal/platform/logger"
	"github.com/thinkex/clusters-api/internal/store"
)

// ClusterStore implements the store.ClusterStore interface
// using a PostgreSQL database as the storage backend.
type ClusterStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewClusterStore creates a new PostgreSQL implementation of the
// ClusterStore interface. If logger is nil, a default logger will be used.
func NewClusterStore(db store.DBTX, log *slog.Logger) *ClusterStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &ClusterStore{
		db:     db,
		logger: log.With(slog.String("component", "cluster_store")),
	}
}

// Ensure ClusterStore implements store.ClusterStore
var _ store.ClusterStore = (*ClusterStore)(nil)

// Create implements store.ClusterStore.Create.
// Returns store.ErrClusterTitleExists when the per-list unique index on the
// normalized title rejects the insert, and store.ErrInvalidEntity when the
// owning list does not exist.
func (s *ClusterStore) Create(ctx context.Context, cluster *domain.Cluster) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := cluster.Validate(); err != nil {
		log.Warn("cluster validation failed during create",
			slog.String("error", err.Error()),
			slog.String("cluster_id", cluster.ID.String()))
		return err
	}

	query := `
		INSERT INTO clusters (id, cluster_list_id, title, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := s.db.ExecContext(ctx, query, cluster.ID, cluster.ListID, cluster.Title, cluster.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			log.Warn("duplicate cluster title in list",
				slog.String("list_id", cluster.ListID.String()),
				slog.String("title", cluster.Title))
			return fmt.Errorf("%w: %q in list %s", store.ErrClusterTitleExists, cluster.Title, cluster.ListID)
		}
		if isForeignKeyViolation(err) {
			log.Warn("owning list not found during cluster creation",
				slog.String("list_id", cluster.ListID.String()))
			return fmt.Errorf("%w: cluster list %s not found", store.ErrInvalidEntity, cluster.ListID)
		}
		log.Error("failed to create cluster",
			slog.String("error", err.Error()),
			slog.String("cluster_id", cluster.ID.String()))
		return err
	}

	log.Info("cluster created",
		slog.String("cluster_id", cluster.ID.String()),
		slog.String("list_id", cluster.ListID.String()),
		slog.String("title", cluster.Title))
	return nil
}

// GetByID implements store.ClusterStore.GetByID.
func (s *ClusterStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Cluster, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, cluster_list_id, title, created_at
		FROM clusters
		WHERE id = $1
	`

	var cluster domain.Cluster
	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&cluster.ID, &cluster.ListID, &cluster.Title, &cluster.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("cluster not found", slog.String("cluster_id", id.String()))
			return nil, store.ErrClusterNotFound
		}
		log.Error("failed to get cluster by ID",
			slog.String("error", err.Error()),
			slog.String("cluster_id", id.String()))
		return nil, err
	}

	return &cluster, nil
}

// FindByTitle implements store.ClusterStore.FindByTitle.
// The comparison key is lower(btrim(title)) on both sides, mirroring
// domain.NormalizeTitle. First match by creation time wins if duplicates
// ever exist despite the invariant.
func (s *ClusterStore) FindByTitle(
	ctx context.Context,
	listID uuid.UUID,
	title string,
) (*domain.Cluster, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, cluster_list_id, title, created_at
		FROM clusters
		WHERE cluster_list_id = $1
		  AND lower(btrim(title)) = $2
		ORDER BY created_at
		LIMIT 1
	`

	var cluster domain.Cluster
	err := s.db.QueryRowContext(ctx, query, listID, domain.NormalizeTitle(title)).
		Scan(&cluster.ID, &cluster.ListID, &cluster.Title, &cluster.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("cluster not found by title",
				slog.String("list_id", listID.String()),
				slog.String("title", title))
			return nil, store.ErrClusterNotFound
		}
		log.Error("failed to find cluster by title",
			slog.String("error", err.Error()),
			slog.String("list_id", listID.String()))
		return nil, err
	}

	return &cluster, nil
}

// ListByList implements store.ClusterStore.ListByList.
func (s *ClusterStore) ListByList(ctx context.Context, listID uuid.UUID) ([]*domain.Cluster, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, cluster_list_id, title, created_at
		FROM clusters
		WHERE cluster_list_id = $1
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query, listID)
	if err != nil {
		log.Error("failed to query clusters",
			slog.String("error", err.Error()),
			slog.String("list_id", listID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	clusters := []*domain.Cluster{}
	for rows.Next() {
		var cluster domain.Cluster
		if err := rows.Scan(&cluster.ID, &cluster.ListID, &cluster.Title, &cluster.CreatedAt); err != nil {
			log.Error("failed to scan cluster row", slog.String("error", err.Error()))
			return nil, err
		}
		clusters = append(clusters, &cluster)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return clusters, nil
}

// Delete implements store.ClusterStore.Delete.
// Member cards are removed by ON DELETE CASCADE.
func (s *ClusterStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM clusters WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete cluster",
			slog.String("error", err.Error()),
			slog.String("cluster_id", id.String()))
		return err
	}

	if err := checkRowsAffected(result, store.ErrClusterNotFound); err != nil {
		log.Debug("cluster not found for delete", slog.String("cluster_id", id.String()))
		return err
	}

	log.Info("cluster deleted", slog.String("cluster_id", id.String()))
	return nil
}

// WithTx implements store.ClusterStore.WithTx.
func (s *ClusterStore) WithTx(tx *sql.Tx) store.ClusterStore {
	return &ClusterStore{
		db:     tx,
		logger: s.logger,
	}
}
