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

// CardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type CardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewCardStore creates a new PostgreSQL implementation of the CardStore
// interface. If logger is nil, a default logger will be used.
func NewCardStore(db store.DBTX, log *slog.Logger) *CardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if log == nil {
		log = slog.Default()
	}

	return &CardStore{
		db:     db,
		logger: log.With(slog.String("component", "card_store")),
	}
}

// Ensure CardStore implements store.CardStore
var _ store.CardStore = (*CardStore)(nil)

const cardColumns = `id, cluster_id, kind, question, answer,
	source_metadata, source_content, position, created_at, updated_at`

// scanCard scans one card row. Nullable text columns map to empty strings.
func scanCard(row interface{ Scan(dest ...any) error }) (*domain.Card, error) {
	var card domain.Card
	var question, answer, sourceMetadata, sourceContent sql.NullString

	err := row.Scan(
		&card.ID,
		&card.ClusterID,
		&card.Kind,
		&question,
		&answer,
		&sourceMetadata,
		&sourceContent,
		&card.Position,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	card.Question = question.String
	card.Answer = answer.String
	card.SourceMetadata = sourceMetadata.String
	card.SourceContent = sourceContent.String
	return &card, nil
}

// nullable converts an empty string to a NULL column value.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// Create implements store.CardStore.Create.
// Returns store.ErrInvalidEntity if the owning cluster does not exist.
func (s *CardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	query := `
		INSERT INTO cards (` + cardColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		card.ID,
		card.ClusterID,
		card.Kind,
		nullable(card.Question),
		nullable(card.Answer),
		nullable(card.SourceMetadata),
		nullable(card.SourceContent),
		card.Position,
		card.CreatedAt,
		card.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("owning cluster not found during card creation",
				slog.String("cluster_id", card.ClusterID.String()))
			return fmt.Errorf("%w: cluster %s not found", store.ErrInvalidEntity, card.ClusterID)
		}
		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	log.Info("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("cluster_id", card.ClusterID.String()),
		slog.String("kind", string(card.Kind)))
	return nil
}

// GetByID implements store.CardStore.GetByID. The lookup is global so
// callers do not need to know the card's current cluster.
func (s *CardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT ` + cardColumns + ` FROM cards WHERE id = $1`

	card, err := scanCard(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found", slog.String("card_id", id.String()))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get card by ID",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return nil, err
	}

	return card, nil
}

// Update implements store.CardStore.Update. It persists the card's mutable
// fields: content, cluster reference, position, updated_at.
func (s *CardStore) Update(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during update",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	query := `
		UPDATE cards
		SET cluster_id = $1,
		    question = $2,
		    answer = $3,
		    source_metadata = $4,
		    source_content = $5,
		    position = $6,
		    updated_at = $7
		WHERE id = $8
	`
	result, err := s.db.ExecContext(
		ctx,
		query,
		card.ClusterID,
		nullable(card.Question),
		nullable(card.Answer),
		nullable(card.SourceMetadata),
		nullable(card.SourceContent),
		card.Position,
		card.UpdatedAt,
		card.ID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: cluster %s not found", store.ErrInvalidEntity, card.ClusterID)
		}
		log.Error("failed to update card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID.String()))
		return err
	}

	if err := checkRowsAffected(result, store.ErrCardNotFound); err != nil {
		log.Debug("card not found for update", slog.String("card_id", card.ID.String()))
		return err
	}

	log.Info("card updated", slog.String("card_id", card.ID.String()))
	return nil
}

// Delete implements store.CardStore.Delete.
func (s *CardStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM cards WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete card",
			slog.String("error", err.Error()),
			slog.String("card_id", id.String()))
		return err
	}

	if err := checkRowsAffected(result, store.ErrCardNotFound); err != nil {
		log.Debug("card not found for delete", slog.String("card_id", id.String()))
		return err
	}

	log.Info("card deleted", slog.String("card_id", id.String()))
	return nil
}

// ListByCluster implements store.CardStore.ListByCluster.
func (s *CardStore) ListByCluster(ctx context.Context, clusterID uuid.UUID) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + cardColumns + `
		FROM cards
		WHERE cluster_id = $1
		ORDER BY position, created_at
	`

	rows, err := s.db.QueryContext(ctx, query, clusterID)
	if err != nil {
		log.Error("failed to query cards",
			slog.String("error", err.Error()),
			slog.String("cluster_id", clusterID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	cards := []*domain.Card{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			log.Error("failed to scan card row", slog.String("error", err.Error()))
			return nil, err
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return cards, nil
}

// MaxPosition implements store.CardStore.MaxPosition.
func (s *CardStore) MaxPosition(ctx context.Context, clusterID uuid.UUID) (int, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT max(position) FROM cards WHERE cluster_id = $1`

	var max sql.NullInt64
	if err := s.db.QueryRowContext(ctx, query, clusterID).Scan(&max); err != nil {
		log.Error("failed to get max card position",
			slog.String("error", err.Error()),
			slog.String("cluster_id", clusterID.String()))
		return 0, false, err
	}

	if !max.Valid {
		return 0, false, nil
	}

	return int(max.Int64), true, nil
}

// UpdatePositions implements store.CardStore.UpdatePositions. Each card's
// position becomes its index in the supplied sequence. Must run inside a
// transaction (use WithTx) so that intermediate states are never observed.
func (s *CardStore) UpdatePositions(ctx context.Context, orderedIDs []uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `UPDATE cards SET position = $1, updated_at = now() WHERE id = $2`

	for position, id := range orderedIDs {
		result, err := s.db.ExecContext(ctx, query, position, id)
		if err != nil {
			log.Error("failed to update card position",
				slog.String("error", err.Error()),
				slog.String("card_id", id.String()))
			return err
		}
		if err := checkRowsAffected(result, store.ErrCardNotFound); err != nil {
			return fmt.Errorf("%w: card %s during reorder", store.ErrCardNotFound, id)
		}
	}

	log.Info("card positions updated", slog.Int("count", len(orderedIDs)))
	return nil
}

// WithTx implements store.CardStore.WithTx.
func (s *CardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &CardStore{
		db:     tx,
		logger: s.logger,
	}
}
