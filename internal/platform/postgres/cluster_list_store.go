package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/thinkex/clusters-api/internal/domain"
	"github.com/thinkex/clusters-api/internal/platform/logger"
	"github.com/thinkex/clusters-api/internal/store"
)

// ClusterListStore implements the store.ClusterListStore interface
// using a PostgreSQL database as the storage backend.
type ClusterListStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewClusterListStore creates a new PostgreSQL implementation of the
// ClusterListStore interface. It accepts a database connection or
// transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewClusterListStore(db store.DBTX, log *slog.Logger) *ClusterListStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &ClusterListStore{
		db:     db,
		logger: log.With(slog.String("component", "cluster_list_store")),
	}
}

// Ensure ClusterListStore implements store.ClusterListStore
var _ store.ClusterListStore = (*ClusterListStore)(nil)

// Create implements store.ClusterListStore.Create.
func (s *ClusterListStore) Create(ctx context.Context, list *domain.ClusterList) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := list.Validate(); err != nil {
		log.Warn("cluster list validation failed during create",
			slog.String("error", err.Error()),
			slog.String("list_id", list.ID.String()))
		return err
	}

	query := `
		INSERT INTO cluster_lists (id, title, created_at)
		VALUES ($1, $2, $3)
	`
	_, err := s.db.ExecContext(ctx, query, list.ID, list.Title, list.CreatedAt)
	if err != nil {
		log.Error("failed to create cluster list",
			slog.String("error", err.Error()),
			slog.String("list_id", list.ID.String()))
		return mapError(err)
	}

	log.Info("cluster list created",
		slog.String("list_id", list.ID.String()),
		slog.String("title", list.Title))
	return nil
}

// GetByID implements store.ClusterListStore.GetByID.
// Returns store.ErrClusterListNotFound if the list does not exist.
func (s *ClusterListStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ClusterList, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, title, created_at
		FROM cluster_lists
		WHERE id = $1
	`

	var list domain.ClusterList
	err := s.db.QueryRowContext(ctx, query, id).Scan(&list.ID, &list.Title, &list.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("cluster list not found", slog.String("list_id", id.String()))
			return nil, store.ErrClusterListNotFound
		}
		log.Error("failed to get cluster list by ID",
			slog.String("error", err.Error()),
			slog.String("list_id", id.String()))
		return nil, err
	}

	return &list, nil
}

// List implements store.ClusterListStore.List.
func (s *ClusterListStore) List(ctx context.Context) ([]*domain.ClusterList, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, title, created_at
		FROM cluster_lists
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to query cluster lists", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	lists := []*domain.ClusterList{}
	for rows.Next() {
		var list domain.ClusterList
		if err := rows.Scan(&list.ID, &list.Title, &list.CreatedAt); err != nil {
			log.Error("failed to scan cluster list row", slog.String("error", err.Error()))
			return nil, err
		}
		lists = append(lists, &list)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return lists, nil
}

// ListInfo implements store.ClusterListStore.ListInfo.
func (s *ClusterListStore) ListInfo(ctx context.Context) ([]store.ClusterListInfo, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, title
		FROM cluster_lists
		ORDER BY created_at
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to query cluster list info", slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	infos := []store.ClusterListInfo{}
	for rows.Next() {
		var info store.ClusterListInfo
		if err := rows.Scan(&info.ID, &info.Title); err != nil {
			log.Error("failed to scan cluster list info row", slog.String("error", err.Error()))
			return nil, err
		}
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return infos, nil
}

// Delete implements store.ClusterListStore.Delete.
// Member clusters and cards are removed by ON DELETE CASCADE.
func (s *ClusterListStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM cluster_lists WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete cluster list",
			slog.String("error", err.Error()),
			slog.String("list_id", id.String()))
		return err
	}

	if err := checkRowsAffected(result, store.ErrClusterListNotFound); err != nil {
		log.Debug("cluster list not found for delete", slog.String("list_id", id.String()))
		return err
	}

	log.Info("cluster list deleted", slog.String("list_id", id.String()))
	return nil
}

// WithTx implements store.ClusterListStore.WithTx.
func (s *ClusterListStore) WithTx(tx *sql.Tx) store.ClusterListStore {
	return &ClusterListStore{
		db:     tx,
		logger: s.logger,
	}
}
