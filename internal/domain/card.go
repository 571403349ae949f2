package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CardKind distinguishes the two card variants. A card is either a
// question/answer pair or a source note; the kind determines which
// content fields are required.
type CardKind string

// Possible card kinds
const (
	CardKindQA         CardKind = "qa"
	CardKindSourceNote CardKind = "source_note"
)

// Common validation errors for Card
var (
	ErrEmptyCardID          = errors.New("card ID cannot be empty")
	ErrCardMissingCluster   = errors.New("card cluster ID cannot be empty")
	ErrInvalidCardKind      = errors.New("invalid card kind")
	ErrEmptyCardQuestion    = errors.New("card question cannot be empty")
	ErrEmptyCardAnswer      = errors.New("card answer cannot be empty")
	ErrEmptySourceContent   = errors.New("source note content cannot be empty")
	ErrNegativeCardPosition = errors.New("card position cannot be negative")
)

// Card is the atomic content unit. It belongs to exactly one cluster at a
// time; ownership is transferable via move but never shared. Position is a
// display rank within the owning cluster.
type Card struct {
	ID        uuid.UUID `json:"id"`
	ClusterID uuid.UUID `json:"cluster_id"`
	Kind      CardKind  `json:"kind"`

	// QA fields, required when Kind is CardKindQA.
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`

	// Source note fields. SourceContent is required when Kind is
	// CardKindSourceNote; SourceMetadata is optional.
	SourceMetadata string `json:"source_metadata,omitempty"`
	SourceContent  string `json:"source_content,omitempty"`

	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewQACard creates a new question/answer card in the given cluster at the
// given position. Question and answer are trimmed before validation.
func NewQACard(clusterID uuid.UUID, question, answer string, position int) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:        uuid.New(),
		ClusterID: clusterID,
		Kind:      CardKindQA,
		Question:  strings.TrimSpace(question),
		Answer:    strings.TrimSpace(answer),
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// NewSourceNoteCard creates a new source note card in the given cluster at
// the given position. Content is trimmed before validation; metadata is
// optional and stored trimmed.
func NewSourceNoteCard(
	clusterID uuid.UUID,
	metadata, content string,
	position int,
) (*Card, error) {
	now := time.Now().UTC()
	card := &Card{
		ID:             uuid.New(),
		ClusterID:      clusterID,
		Kind:           CardKindSourceNote,
		SourceMetadata: strings.TrimSpace(metadata),
		SourceContent:  strings.TrimSpace(content),
		Position:       position,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Card has valid data for its kind.
func (c *Card) Validate() error {
	if c.ID == uuid.Nil {
		return ErrEmptyCardID
	}

	if c.ClusterID == uuid.Nil {
		return ErrCardMissingCluster
	}

	if c.Position < 0 {
		return ErrNegativeCardPosition
	}

	switch c.Kind {
	case CardKindQA:
		if strings.TrimSpace(c.Question) == "" {
			return ErrEmptyCardQuestion
		}
		if strings.TrimSpace(c.Answer) == "" {
			return ErrEmptyCardAnswer
		}
	case CardKindSourceNote:
		if strings.TrimSpace(c.SourceContent) == "" {
			return ErrEmptySourceContent
		}
	default:
		return ErrInvalidCardKind
	}

	return nil
}

// ApplyQAUpdate applies the supplied question/answer deltas to a QA card.
// A field is applied only when it is non-nil, non-empty after trimming, and
// different from the current value; an empty-after-trim delta means "not
// provided", never clear-to-empty. Returns true when at least one field
// actually changed, in which case UpdatedAt is refreshed.
func (c *Card) ApplyQAUpdate(question, answer *string) bool {
	changed := false

	if question != nil {
		if q := strings.TrimSpace(*question); q != "" && q != c.Question {
			c.Question = q
			changed = true
		}
	}

	if answer != nil {
		if a := strings.TrimSpace(*answer); a != "" && a != c.Answer {
			c.Answer = a
			changed = true
		}
	}

	if changed {
		c.UpdatedAt = time.Now().UTC()
	}

	return changed
}

// MoveTo reassigns the card to a new cluster at the given position and
// refreshes UpdatedAt. The caller is responsible for persisting the change
// atomically.
func (c *Card) MoveTo(clusterID uuid.UUID, position int) {
	c.ClusterID = clusterID
	c.Position = position
	c.UpdatedAt = time.Now().UTC()
}
