package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/thinkex/clusters-api/internal/store"
)

// Request models

// CreateClusterListRequest holds the payload for POST /cluster-lists.
type CreateClusterListRequest struct {
	Title string `json:"title" validate:"required"`
}

// AddQARequest holds the payload for POST /add_qa. Kind defaults to "qa";
// source notes supply source_content (and optionally source_metadata)
// instead of question/answer.
type AddQARequest struct {
	ClusterListID  string `json:"cluster_list_id" validate:"required"`
	ClusterName    string `json:"clusterName"     validate:"required"`
	Kind           string `json:"kind,omitempty"  validate:"omitempty,oneof=qa source_note"`
	Question       string `json:"question,omitempty"`
	Answer         string `json:"answer,omitempty"`
	SourceMetadata string `json:"source_metadata,omitempty"`
	SourceContent  string `json:"source_content,omitempty"`
}

// UpdateQARequest holds the payload for POST /update_qa. Question and
// answer are pointers: absent means "leave unchanged".
type UpdateQARequest struct {
	ClusterListID string  `json:"cluster_list_id" validate:"required"`
	ClusterName   string  `json:"clusterName"     validate:"required"`
	QAID          string  `json:"qa_id"           validate:"required"`
	Question      *string `json:"question,omitempty"`
	Answer        *string `json:"answer,omitempty"`
}

// MoveQARequest holds the payload for
// PATCH /cluster-lists/{id}/qa/{qa_id}/move.
type MoveQARequest struct {
	NewClusterTitle string `json:"new_cluster_title" validate:"required"`
}

// ReorderQAsRequest holds the payload for PATCH /cluster-lists/{id}/reorder.
type ReorderQAsRequest struct {
	ClusterTitle string   `json:"cluster_title"  validate:"required"`
	OrderedQAIDs []string `json:"ordered_qa_ids" validate:"required,min=1"`
}

// Response models. Field names match what subscribed frontends already
// consume.

// ClusterListResponse describes a created or fetched list without its
// hierarchy.
type ClusterListResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// ClusterListInfoResponse is the id+title projection for GET
// /cluster-lists/info.
type ClusterListInfoResponse struct {
	ClusterLists []store.ClusterListInfo `json:"cluster_lists"`
}

// MessageResponse carries operations that report only a message.
type MessageResponse struct {
	Message string `json:"message"`
}

// DeleteQAResponse is the body for DELETE /qa/{qa_id}.
type DeleteQAResponse struct {
	Message     string    `json:"message"`
	QAID        uuid.UUID `json:"qa_id"`
	ClusterName string    `json:"clusterName"`
}

// DeleteClusterResponse is the body for DELETE /cluster/{cluster_name}.
type DeleteClusterResponse struct {
	Message     string `json:"message"`
	ClusterName string `json:"clusterName"`
}

// MoveQAResponse is the body for the move endpoint.
type MoveQAResponse struct {
	Message         string    `json:"message"`
	QAID            uuid.UUID `json:"qa_id"`
	OldClusterTitle string    `json:"old_cluster_title"`
	NewClusterTitle string    `json:"new_cluster_title"`
}

// TokenResponse is the body for GET /realtime/token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Channel   string    `json:"channel"`
}
