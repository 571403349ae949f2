package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType classifies the broadcast message envelope.
type EventType string

// Event types understood by subscribers.
const (
	// TypeClusterListUpdate signals a list-level change where subscribers
	// should re-fetch the whole list (moves, reorders).
	TypeClusterListUpdate EventType = "cluster_list_update"

	// TypeKnowledgeGraphUpdate signals a targeted change carrying an
	// action-specific payload (card and cluster mutations).
	TypeKnowledgeGraphUpdate EventType = "knowledge_graph_update"
)

// Action names one committed mutation kind.
type Action string

// Actions carried by change events.
const (
	ActionQAAdded            Action = "qa_added"
	ActionQAUpdated          Action = "qa_updated"
	ActionQADeleted          Action = "qa_deleted"
	ActionClusterCreated     Action = "cluster_created"
	ActionClusterDeleted     Action = "cluster_deleted"
	ActionClusterListUpdated Action = "cluster_list_updated"
)

// ChangeEvent is an ephemeral, non-persisted record describing one committed
// mutation. It exists only to be published to the broadcast channel; the
// payload is advisory, not an authoritative diff.
type ChangeEvent struct {
	// ID is a unique identifier for this event instance.
	ID uuid.UUID `json:"id"`

	// Type is the broadcast envelope type.
	Type EventType `json:"type"`

	// Action names the committed mutation.
	Action Action `json:"action"`

	// ListID identifies the affected cluster list.
	ListID uuid.UUID `json:"list_id"`

	// Payload carries action-specific fields serialized as JSON.
	Payload json.RawMessage `json:"payload"`

	// CreatedAt is the timestamp when the event was constructed.
	CreatedAt time.Time `json:"created_at"`
}

// NewChangeEvent creates a ChangeEvent for the given mutation. The payload
// is serialized immediately so the event is self-contained by the time it
// leaves the mutation's critical section.
func NewChangeEvent(
	eventType EventType,
	action Action,
	listID uuid.UUID,
	payload any,
) (*ChangeEvent, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &ChangeEvent{
		ID:        uuid.New(),
		Type:      eventType,
		Action:    action,
		ListID:    listID,
		Payload:   payloadBytes,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// UnmarshalPayload decodes the event payload into the provided structure.
func (e *ChangeEvent) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Publisher is the publish contract the external broadcast channel must
// honor. Implementations may block on network I/O; callers bound each
// attempt with the context.
type Publisher interface {
	// Publish sends one event to all current subscribers. Returns an error
	// when the channel is unavailable or the send fails; the caller decides
	// whether that matters (for the dispatcher it never propagates).
	Publish(ctx context.Context, event *ChangeEvent) error
}
