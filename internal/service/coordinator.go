package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/thinkex/clusters-api/internal/domain"
	"github.com/thinkex/clusters-api/internal/events"
	"github.com/thinkex/clusters-api/internal/platform/logger"
	"github.com/thinkex/clusters-api/internal/store"
)

// DefaultClusterListTitle is the title of the list created at startup when
// the store holds no lists yet.
const DefaultClusterListTitle = "Knowledge Base"

// EventDispatcher accepts committed change events for asynchronous
// publication. Dispatch must never block the caller.
type EventDispatcher interface {
	Dispatch(event *events.ChangeEvent)
}

// Coordinator is the mutation coordinator: the only writer of hierarchy
// state. Mutations on the same list are serialized by a per-list exclusion
// lock and run read-validate-write inside one transaction; operations on
// different lists never contend. Events are dispatched strictly after
// commit, outside the lock.
type Coordinator struct {
	repo       Repository
	dispatcher EventDispatcher
	logger     *slog.Logger
	locks      *listLocker
}

// NewCoordinator creates a Coordinator with its dependencies.
func NewCoordinator(repo Repository, dispatcher EventDispatcher, log *slog.Logger) *Coordinator {
	if repo == nil {
		panic("repository cannot be nil")
	}
	if dispatcher == nil {
		panic("dispatcher cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Coordinator{
		repo:       repo,
		dispatcher: dispatcher,
		logger:     log.With(slog.String("component", "coordinator")),
		locks:      newListLocker(),
	}
}

// mutate runs fn under the list's exclusion lock inside one transaction.
// The event fn returns (if any) is dispatched only after the transaction
// commits and the lock is released, so slow broadcasts never stall
// subsequent mutations.
func (c *Coordinator) mutate(
	ctx context.Context,
	listID uuid.UUID,
	fn func(ctx context.Context, r Repository) (*events.ChangeEvent, error),
) error {
	c.locks.lock(listID)

	var event *events.ChangeEvent
	err := c.repo.Transact(ctx, func(ctx context.Context, r Repository) error {
		var fnErr error
		event, fnErr = fn(ctx, r)
		return fnErr
	})

	c.locks.unlock(listID)

	if err != nil {
		return err
	}

	if event != nil {
		c.dispatcher.Dispatch(event)
	}

	return nil
}

// newEvent builds a change event. A payload that cannot be encoded is a
// programming error; it is logged and the mutation proceeds without an
// event rather than failing a committed change.
func (c *Coordinator) newEvent(
	ctx context.Context,
	eventType events.EventType,
	action events.Action,
	listID uuid.UUID,
	payload any,
) *events.ChangeEvent {
	event, err := events.NewChangeEvent(eventType, action, listID, payload)
	if err != nil {
		log := logger.FromContextOrDefault(ctx, c.logger)
		log.Error("failed to build change event",
			slog.String("action", string(action)),
			slog.String("error", err.Error()))
		return nil
	}
	return event
}

// getList resolves a list or returns a caller-safe not-found error.
func getList(ctx context.Context, r Repository, listID uuid.UUID) (*domain.ClusterList, error) {
	list, err := r.Lists().GetByID(ctx, listID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, NewNotFoundError(err, "ClusterList with id '%s' not found.", listID)
		}
		return nil, err
	}
	return list, nil
}

// AddCard appends a new card to the named cluster, creating the cluster
// when no existing title matches case-insensitively. The new card takes the
// next ordering position. Returns the containing cluster's full contents.
func (c *Coordinator) AddCard(
	ctx context.Context,
	listID uuid.UUID,
	clusterTitle string,
	content CardContent,
) (*AddCardResult, error) {
	title := strings.TrimSpace(clusterTitle)
	if title == "" {
		return nil, NewValidationError("clusterName must be non-empty")
	}

	kind := content.Kind
	if kind == "" {
		kind = domain.CardKindQA
	}
	if kind != domain.CardKindQA && kind != domain.CardKindSourceNote {
		return nil, NewValidationError("unknown card kind '%s'", content.Kind)
	}

	var result *AddCardResult
	err := c.mutate(ctx, listID, func(ctx context.Context, r Repository) (*events.ChangeEvent, error) {
		list, err := getList(ctx, r, listID)
		if err != nil {
			return nil, err
		}

		cluster, created, err := findOrCreateCluster(ctx, r, list.ID, title)
		if err != nil {
			return nil, err
		}

		position := 0
		if maxPos, occupied, err := r.Cards().MaxPosition(ctx, cluster.ID); err != nil {
			return nil, err
		} else if occupied {
			position = maxPos + 1
		}

		var card *domain.Card
		switch kind {
		case domain.CardKindSourceNote:
			card, err = domain.NewSourceNoteCard(cluster.ID, content.SourceMetadata, content.SourceContent, position)
		default:
			card, err = domain.NewQACard(cluster.ID, content.Question, content.Answer, position)
		}
		if err != nil {
			return nil, &ValidationError{Message: err.Error()}
		}

		if err := r.Cards().Create(ctx, card); err != nil {
			return nil, err
		}

		cards, err := r.Cards().ListByCluster(ctx, cluster.ID)
		if err != nil {
			return nil, err
		}

		noun := "Q/A"
		if card.Kind == domain.CardKindSourceNote {
			noun = "source note"
		}
		result = &AddCardResult{
			Message:        fmt.Sprintf("Added %s to cluster %q.", noun, cluster.Title),
			ClusterCreated: created,
			Cluster:        newClusterView(cluster, cards),
		}

		action := events.ActionQAAdded
		if created {
			action = events.ActionClusterCreated
		}
		return c.newEvent(ctx, events.TypeKnowledgeGraphUpdate, action, listID, cardEventPayload{
			ClusterID:    cluster.ID,
			ClusterTitle: cluster.Title,
			CardID:       card.ID,
		}), nil
	})
	if err != nil {
		return nil, err
	}

	log := logger.FromContextOrDefault(ctx, c.logger)
	log.Debug("card added",
		slog.String("list_id", listID.String()),
		slog.String("cluster_title", result.Cluster.Title),
		slog.Bool("cluster_created", result.ClusterCreated))

	return result, nil
}

// findOrCreateCluster resolves a cluster by normalized title, creating it
// when absent. The unique index backstops the creation race against writers
// outside this process: on a duplicate violation the winner is re-resolved
// instead of failing the caller.
func findOrCreateCluster(
	ctx context.Context,
	r Repository,
	listID uuid.UUID,
	title string,
) (*domain.Cluster, bool, error) {
	cluster, err := r.Clusters().FindByTitle(ctx, listID, title)
	if err == nil {
		return cluster, false, nil
	}
	if !store.IsNotFoundError(err) {
		return nil, false, err
	}

	cluster, err = domain.NewCluster(listID, title)
	if err != nil {
		return nil, false, &ValidationError{Message: err.Error()}
	}

	if err := r.Clusters().Create(ctx, cluster); err != nil {
		if store.IsDuplicateError(err) {
			winner, findErr := r.Clusters().FindByTitle(ctx, listID, title)
			if findErr != nil {
				return nil, false, findErr
			}
			return winner, false, nil
		}
		return nil, false, err
	}

	return cluster, true, nil
}

// UpdateCard applies question/answer deltas to a card inside the named
// cluster. A field applies only when non-empty after trimming and different
// from the current value; when nothing changes the operation reports a
// no-op and emits no event.
func (c *Coordinator) UpdateCard(
	ctx context.Context,
	listID uuid.UUID,
	clusterTitle string,
	cardID uuid.UUID,
	question, answer *string,
) (*UpdateCardResult, error) {
	title := strings.TrimSpace(clusterTitle)
	if title == "" {
		return nil, NewValidationError("clusterName must be non-empty")
	}
	if question == nil && answer == nil {
		return nil, NewValidationError(
			"At least one of 'question' or 'answer' must be provided for an update.")
	}

	var result *UpdateCardResult
	err := c.mutate(ctx, listID, func(ctx context.Context, r Repository) (*events.ChangeEvent, error) {
		list, err := getList(ctx, r, listID)
		if err != nil {
			return nil, err
		}

		cluster, err := r.Clusters().FindByTitle(ctx, list.ID, title)
		if err != nil {
			if store.IsNotFoundError(err) {
				return nil, NewNotFoundError(err,
					"Cluster '%s' not found in list '%s'.", title, listID)
			}
			return nil, err
		}

		card, err := r.Cards().GetByID(ctx, cardID)
		if err != nil || card.ClusterID != cluster.ID {
			if err != nil && !store.IsNotFoundError(err) {
				return nil, err
			}
			return nil, NewNotFoundError(store.ErrCardNotFound,
				"Q/A with id '%s' not found in cluster '%s'.", cardID, cluster.Title)
		}

		if card.Kind != domain.CardKindQA {
			return nil, NewValidationError("card '%s' is not a question/answer card", cardID)
		}

		if !card.ApplyQAUpdate(question, answer) {
			view := newCardView(card)
			result = &UpdateCardResult{
				Message: "No changes detected.",
				Changed: false,
				Card:    &view,
			}
			return nil, nil
		}

		if err := r.Cards().Update(ctx, card); err != nil {
			return nil, err
		}

		view := newCardView(card)
		result = &UpdateCardResult{
			Message: fmt.Sprintf("Updated Q/A in cluster %q.", cluster.Title),
			Changed: true,
			Card:    &view,
		}

		return c.newEvent(ctx, events.TypeKnowledgeGraphUpdate, events.ActionQAUpdated, listID, cardEventPayload{
			ClusterID:    cluster.ID,
			ClusterTitle: cluster.Title,
			CardID:       card.ID,
		}), nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// MoveCard transfers a card to the cluster identified case-insensitively by
// newClusterTitle, appending it at the destination's next position. Moving
// a card to its current cluster is a reported no-op with no event.
func (c *Coordinator) MoveCard(
	ctx context.Context,
	listID uuid.UUID,
	cardID uuid.UUID,
	newClusterTitle string,
) (*MoveCardResult, error) {
	title := strings.TrimSpace(newClusterTitle)
	if title == "" {
		return nil, NewValidationError("new_cluster_title must be non-empty")
	}

	var result *MoveCardResult
	err := c.mutate(ctx, listID, func(ctx context.Context, r Repository) (*events.ChangeEvent, error) {
		list, err := getList(ctx, r, listID)
		if err != nil {
			return nil, err
		}

		card, err := r.Cards().GetByID(ctx, cardID)
		if err != nil {
			if store.IsNotFoundError(err) {
				return nil, NewNotFoundError(err, "Q/A with id '%s' not found.", cardID)
			}
			return nil, err
		}

		source, err := r.Clusters().GetByID(ctx, card.ClusterID)
		if err != nil {
			return nil, err
		}

		dest, err := r.Clusters().FindByTitle(ctx, list.ID, title)
		if err != nil {
			if store.IsNotFoundError(err) {
				return nil, NewNotFoundError(err,
					"Destination cluster '%s' not found in list '%s'.", title, listID)
			}
			return nil, err
		}

		if source.ID == dest.ID {
			result = &MoveCardResult{
				Message:         "Source and destination clusters are the same. No action taken.",
				Moved:           false,
				CardID:          card.ID,
				OldClusterTitle: source.Title,
				NewClusterTitle: dest.Title,
			}
			return nil, nil
		}

		position := 0
		if maxPos, occupied, err := r.Cards().MaxPosition(ctx, dest.ID); err != nil {
			return nil, err
		} else if occupied {
			position = maxPos + 1
		}

		card.MoveTo(dest.ID, position)
		if err := r.Cards().Update(ctx, card); err != nil {
			return nil, err
		}

		result = &MoveCardResult{
			Message:         fmt.Sprintf("Moved Q/A from '%s' to '%s'.", source.Title, dest.Title),
			Moved:           true,
			CardID:          card.ID,
			OldClusterTitle: source.Title,
			NewClusterTitle: dest.Title,
		}

		return c.newEvent(ctx, events.TypeClusterListUpdate, events.ActionClusterListUpdated, listID, listEventPayload{}), nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteCard removes a card from the named cluster. The card must currently
// belong to that cluster.
func (c *Coordinator) DeleteCard(
	ctx context.Context,
	listID uuid.UUID,
	clusterTitle string,
	cardID uuid.UUID,
) (*DeleteCardResult, error) {
	title := strings.TrimSpace(clusterTitle)
	if title == "" {
		return nil, NewValidationError("clusterName must be non-empty")
	}

	var result *DeleteCardResult
	err := c.mutate(ctx, listID, func(ctx context.Context, r Repository) (*events.ChangeEvent, error) {
		list, err := getList(ctx, r, listID)
		if err != nil {
			return nil, err
		}

		cluster, err := r.Clusters().FindByTitle(ctx, list.ID, title)
		if err != nil {
			if store.IsNotFoundError(err) {
				return nil, NewNotFoundError(err, "Cluster '%s' not found.", title)
			}
			return nil, err
		}

		card, err := r.Cards().GetByID(ctx, cardID)
		if err != nil || card.ClusterID != cluster.ID {
			if err != nil && !store.IsNotFoundError(err) {
				return nil, err
			}
			return nil, NewNotFoundError(store.ErrCardNotFound,
				"Q/A with id '%s' not found in cluster '%s'.", cardID, cluster.Title)
		}

		if err := r.Cards().Delete(ctx, card.ID); err != nil {
			return nil, err
		}

		result = &DeleteCardResult{
			Message:      fmt.Sprintf("Deleted Q/A from cluster %q.", cluster.Title),
			CardID:       card.ID,
			ClusterTitle: cluster.Title,
		}

		return c.newEvent(ctx, events.TypeKnowledgeGraphUpdate, events.ActionQADeleted, listID, cardEventPayload{
			ClusterID:    cluster.ID,
			ClusterTitle: cluster.Title,
			CardID:       card.ID,
		}), nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteCluster removes the named cluster and all its cards.
func (c *Coordinator) DeleteCluster(
	ctx context.Context,
	listID uuid.UUID,
	clusterTitle string,
) (*DeleteClusterResult, error) {
	title := strings.TrimSpace(clusterTitle)
	if title == "" {
		return nil, NewValidationError("cluster_name must be non-empty")
	}

	var result *DeleteClusterResult
	err := c.mutate(ctx, listID, func(ctx context.Context, r Repository) (*events.ChangeEvent, error) {
		list, err := getList(ctx, r, listID)
		if err != nil {
			return nil, err
		}

		cluster, err := r.Clusters().FindByTitle(ctx, list.ID, title)
		if err != nil {
			if store.IsNotFoundError(err) {
				return nil, NewNotFoundError(err, "Cluster '%s' not found.", title)
			}
			return nil, err
		}

		if err := r.Clusters().Delete(ctx, cluster.ID); err != nil {
			return nil, err
		}

		result = &DeleteClusterResult{
			Message:      fmt.Sprintf("Deleted cluster %q.", cluster.Title),
			ClusterTitle: cluster.Title,
		}

		return c.newEvent(ctx, events.TypeKnowledgeGraphUpdate, events.ActionClusterDeleted, listID, clusterEventPayload{
			ClusterID:    cluster.ID,
			ClusterTitle: cluster.Title,
		}), nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReorderCards assigns each card's position to its index in orderedCardIDs.
// The supplied ids must be exactly the cluster's current card-id set.
func (c *Coordinator) ReorderCards(
	ctx context.Context,
	listID uuid.UUID,
	clusterTitle string,
	orderedCardIDs []uuid.UUID,
) (*ReorderCardsResult, error) {
	title := strings.TrimSpace(clusterTitle)
	if title == "" {
		return nil, NewValidationError("cluster_title must be non-empty")
	}

	var result *ReorderCardsResult
	err := c.mutate(ctx, listID, func(ctx context.Context, r Repository) (*events.ChangeEvent, error) {
		list, err := getList(ctx, r, listID)
		if err != nil {
			return nil, err
		}

		cluster, err := r.Clusters().FindByTitle(ctx, list.ID, title)
		if err != nil {
			if store.IsNotFoundError(err) {
				return nil, NewNotFoundError(err, "Cluster '%s' not found.", title)
			}
			return nil, err
		}

		cards, err := r.Cards().ListByCluster(ctx, cluster.ID)
		if err != nil {
			return nil, err
		}

		current := make(map[uuid.UUID]struct{}, len(cards))
		for _, card := range cards {
			current[card.ID] = struct{}{}
		}

		supplied := make(map[uuid.UUID]struct{}, len(orderedCardIDs))
		for _, id := range orderedCardIDs {
			supplied[id] = struct{}{}
		}

		if len(orderedCardIDs) != len(cards) || len(supplied) != len(current) {
			return nil, NewValidationError("Mismatched QA items during reorder")
		}
		for id := range supplied {
			if _, ok := current[id]; !ok {
				return nil, NewValidationError("Mismatched QA items during reorder")
			}
		}

		if err := r.Cards().UpdatePositions(ctx, orderedCardIDs); err != nil {
			return nil, err
		}

		result = &ReorderCardsResult{
			Message: fmt.Sprintf("QAs in cluster '%s' reordered successfully.", cluster.Title),
		}

		return c.newEvent(ctx, events.TypeClusterListUpdate, events.ActionClusterListUpdated, listID, listEventPayload{}), nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CreateClusterList creates a new empty list. No event is emitted: a list
// that did not exist a moment ago has no subscribers yet.
func (c *Coordinator) CreateClusterList(ctx context.Context, title string) (*domain.ClusterList, error) {
	list, err := domain.NewClusterList(title)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	err = c.repo.Transact(ctx, func(ctx context.Context, r Repository) error {
		return r.Lists().Create(ctx, list)
	})
	if err != nil {
		return nil, err
	}

	log := logger.FromContextOrDefault(ctx, c.logger)
	log.Info("cluster list created",
		slog.String("list_id", list.ID.String()),
		slog.String("title", list.Title))

	return list, nil
}

// EnsureDefaultClusterList creates the default list when the store holds no
// lists, so a fresh deployment is immediately usable. Returns the created
// list, or nil when lists already exist.
func (c *Coordinator) EnsureDefaultClusterList(ctx context.Context) (*domain.ClusterList, error) {
	infos, err := c.repo.Lists().ListInfo(ctx)
	if err != nil {
		return nil, err
	}
	if len(infos) > 0 {
		return nil, nil
	}

	return c.CreateClusterList(ctx, DefaultClusterListTitle)
}

// GetClusterList returns the full hierarchy snapshot of one list. The view
// is assembled inside a single transaction so it never observes a
// partially-applied mutation.
func (c *Coordinator) GetClusterList(ctx context.Context, listID uuid.UUID) (*ClusterListView, error) {
	var view *ClusterListView
	err := c.repo.Transact(ctx, func(ctx context.Context, r Repository) error {
		list, err := getList(ctx, r, listID)
		if err != nil {
			return err
		}
		view, err = buildListView(ctx, r, list)
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ListClusterLists returns full hierarchy snapshots of all lists, ordered
// by creation time.
func (c *Coordinator) ListClusterLists(ctx context.Context) ([]*ClusterListView, error) {
	var views []*ClusterListView
	err := c.repo.Transact(ctx, func(ctx context.Context, r Repository) error {
		lists, err := r.Lists().List(ctx)
		if err != nil {
			return err
		}

		views = make([]*ClusterListView, 0, len(lists))
		for _, list := range lists {
			view, err := buildListView(ctx, r, list)
			if err != nil {
				return err
			}
			views = append(views, view)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return views, nil
}

// GetFirstClusterList returns the oldest list's hierarchy snapshot. Kept
// for frontends that predate multiple lists.
func (c *Coordinator) GetFirstClusterList(ctx context.Context) (*ClusterListView, error) {
	var view *ClusterListView
	err := c.repo.Transact(ctx, func(ctx context.Context, r Repository) error {
		lists, err := r.Lists().List(ctx)
		if err != nil {
			return err
		}
		if len(lists) == 0 {
			return NewNotFoundError(store.ErrClusterListNotFound, "No cluster lists found.")
		}
		view, err = buildListView(ctx, r, lists[0])
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// ListClusterListInfo returns the id+title projection of all lists.
func (c *Coordinator) ListClusterListInfo(ctx context.Context) ([]store.ClusterListInfo, error) {
	return c.repo.Lists().ListInfo(ctx)
}

func buildListView(ctx context.Context, r Repository, list *domain.ClusterList) (*ClusterListView, error) {
	clusters, err := r.Clusters().ListByList(ctx, list.ID)
	if err != nil {
		return nil, err
	}

	view := &ClusterListView{
		ID:       list.ID,
		Title:    list.Title,
		Clusters: make([]ClusterView, 0, len(clusters)),
	}
	for _, cluster := range clusters {
		cards, err := r.Cards().ListByCluster(ctx, cluster.ID)
		if err != nil {
			return nil, err
		}
		view.Clusters = append(view.Clusters, *newClusterView(cluster, cards))
	}

	return view, nil
}

// Event payloads. Consumers treat these as a cue to re-fetch the affected
// list; the fields are advisory, not a replicated diff.
type cardEventPayload struct {
	ClusterID    uuid.UUID `json:"cluster_id"`
	ClusterTitle string    `json:"cluster_title"`
	CardID       uuid.UUID `json:"card_id"`
}

type clusterEventPayload struct {
	ClusterID    uuid.UUID `json:"cluster_id"`
	ClusterTitle string    `json:"cluster_title"`
}

type listEventPayload struct{}
