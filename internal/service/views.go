package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/thinkex/clusters-api/internal/domain"
)

// CardView is the caller-facing snapshot of a card. The qa_id field name is
// what subscribed frontends already key on.
type CardView struct {
	ID             uuid.UUID       `json:"qa_id"`
	Kind           domain.CardKind `json:"kind"`
	Question       string          `json:"question,omitempty"`
	Answer         string          `json:"answer,omitempty"`
	SourceMetadata string          `json:"source_metadata,omitempty"`
	SourceContent  string          `json:"source_content,omitempty"`
	Position       int             `json:"position"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ClusterView is the caller-facing snapshot of a cluster with its cards in
// display order.
type ClusterView struct {
	ID    uuid.UUID  `json:"id"`
	Title string     `json:"title"`
	Cards []CardView `json:"qas"`
}

// ClusterListView is the caller-facing snapshot of a full list hierarchy.
type ClusterListView struct {
	ID       uuid.UUID     `json:"id"`
	Title    string        `json:"title"`
	Clusters []ClusterView `json:"clusters"`
}

// CardContent carries the content fields for a new card. Kind selects which
// fields are required.
type CardContent struct {
	Kind           domain.CardKind
	Question       string
	Answer         string
	SourceMetadata string
	SourceContent  string
}

// AddCardResult reports a completed AddCard operation.
type AddCardResult struct {
	Message        string
	ClusterCreated bool
	Cluster        *ClusterView
}

// UpdateCardResult reports a completed UpdateCard operation. Changed is
// false for the reported no-op case.
type UpdateCardResult struct {
	Message string
	Changed bool
	Card    *CardView
}

// MoveCardResult reports a completed MoveCard operation. Moved is false
// when source and destination were the same cluster.
type MoveCardResult struct {
	Message         string
	Moved           bool
	CardID          uuid.UUID
	OldClusterTitle string
	NewClusterTitle string
}

// DeleteCardResult reports a completed DeleteCard operation.
type DeleteCardResult struct {
	Message      string
	CardID       uuid.UUID
	ClusterTitle string
}

// DeleteClusterResult reports a completed DeleteCluster operation.
type DeleteClusterResult struct {
	Message      string
	ClusterTitle string
}

// ReorderCardsResult reports a completed ReorderCards operation.
type ReorderCardsResult struct {
	Message string
}

func newCardView(card *domain.Card) CardView {
	return CardView{
		ID:             card.ID,
		Kind:           card.Kind,
		Question:       card.Question,
		Answer:         card.Answer,
		SourceMetadata: card.SourceMetadata,
		SourceContent:  card.SourceContent,
		Position:       card.Position,
		CreatedAt:      card.CreatedAt,
		UpdatedAt:      card.UpdatedAt,
	}
}

func newClusterView(cluster *domain.Cluster, cards []*domain.Card) *ClusterView {
	view := &ClusterView{
		ID:    cluster.ID,
		Title: cluster.Title,
		Cards: make([]CardView, 0, len(cards)),
	}
	for _, card := range cards {
		view.Cards = append(view.Cards, newCardView(card))
	}
	return view
}
