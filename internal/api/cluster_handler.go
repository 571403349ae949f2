package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/thinkex/clusters-api/internal/api/shared"
	"github.com/thinkex/clusters-api/internal/domain"
	"github.com/thinkex/clusters-api/internal/service"
	"github.com/thinkex/clusters-api/internal/store"
)

// Coordinator is the subset of the mutation coordinator the HTTP handlers
// invoke.
type Coordinator interface {
	AddCard(ctx context.Context, listID uuid.UUID, clusterTitle string, content service.CardContent) (*service.AddCardResult, error)
	UpdateCard(ctx context.Context, listID uuid.UUID, clusterTitle string, cardID uuid.UUID, question, answer *string) (*service.UpdateCardResult, error)
	MoveCard(ctx context.Context, listID uuid.UUID, cardID uuid.UUID, newClusterTitle string) (*service.MoveCardResult, error)
	DeleteCard(ctx context.Context, listID uuid.UUID, clusterTitle string, cardID uuid.UUID) (*service.DeleteCardResult, error)
	DeleteCluster(ctx context.Context, listID uuid.UUID, clusterTitle string) (*service.DeleteClusterResult, error)
	ReorderCards(ctx context.Context, listID uuid.UUID, clusterTitle string, orderedCardIDs []uuid.UUID) (*service.ReorderCardsResult, error)
	CreateClusterList(ctx context.Context, title string) (*domain.ClusterList, error)
	GetClusterList(ctx context.Context, listID uuid.UUID) (*service.ClusterListView, error)
	ListClusterLists(ctx context.Context) ([]*service.ClusterListView, error)
	GetFirstClusterList(ctx context.Context) (*service.ClusterListView, error)
	ListClusterListInfo(ctx context.Context) ([]store.ClusterListInfo, error)
}

// ClusterHandler serves the hierarchy endpoints.
type ClusterHandler struct {
	coordinator Coordinator
	logger      *slog.Logger
}

// NewClusterHandler creates a ClusterHandler.
func NewClusterHandler(coordinator Coordinator, log *slog.Logger) *ClusterHandler {
	if log == nil {
		log = slog.Default()
	}

	return &ClusterHandler{
		coordinator: coordinator,
		logger:      log.With(slog.String("component", "cluster_handler")),
	}
}

// respondOperationError maps a coordinator error onto the wire.
func respondOperationError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithErrorAndLog(w, r,
		MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
}

// parseID parses a UUID path or body field, reporting false after writing a
// 400 response when it is malformed.
func parseID(w http.ResponseWriter, r *http.Request, field, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, field+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

// CreateClusterList handles POST /cluster-lists.
func (h *ClusterHandler) CreateClusterList(w http.ResponseWriter, r *http.Request) {
	var req CreateClusterListRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "title must be provided")
		return
	}

	list, err := h.coordinator.CreateClusterList(r.Context(), req.Title)
	if err != nil {
		respondOperationError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, ClusterListResponse{
		ID:        list.ID,
		Title:     list.Title,
		CreatedAt: list.CreatedAt,
	})
}

// ListClusterLists handles GET /cluster-lists.
func (h *ClusterHandler) ListClusterLists(w http.ResponseWriter, r *http.Request) {
	views, err := h.coordinator.ListClusterLists(r.Context())
	if err != nil {
		respondOperationError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, views)
}

// ListClusterListInfo handles GET /cluster-lists/info.
func (h *ClusterHandler) ListClusterListInfo(w http.ResponseWriter, r *http.Request) {
	infos, err := h.coordinator.ListClusterListInfo(r.Context())
	if err != nil {
		respondOperationError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, ClusterListInfoResponse{ClusterLists: infos})
}

// GetClusterList handles GET /cluster-lists/{cluster_list_id}.
func (h *ClusterHandler) GetClusterList(w http.ResponseWriter, r *http.Request) {
	listID, ok := parseID(w, r, "cluster_list_id", chi.URLParam(r, "cluster_list_id"))
	if !ok {
		return
	}

	view, err := h.coordinator.GetClusterList(r.Context(), listID)
	if err != nil {
		respondOperationError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// GetFirstClusterList handles GET /clusters, kept for frontends that
// predate multiple lists.
func (h *ClusterHandler) GetFirstClusterList(w http.ResponseWriter, r *http.Request) {
	view, err := h.coordinator.GetFirstClusterList(r.Context())
	if err != nil {
		respondOperationError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, view)
}

// AddQA handles POST /add_qa.
func (h *ClusterHandler) AddQA(w http.ResponseWriter, r *http.Request) {
	var req AddQARequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"cluster_list_id and clusterName must be provided")
		return
	}

	listID, ok := parseID(w, r, "cluster_list_id", req.ClusterListID)
	if !ok {
		return
	}

	content := service.CardContent{
		Kind:           domain.CardKind(req.Kind),
		Question:       req.Question,
		Answer:         req.Answer,
		SourceMetadata: req.SourceMetadata,
		SourceContent:  req.SourceContent,
	}

	result, err := h.coordinator.AddCard(r.Context(), listID, req.ClusterName, content)
	if err != nil {
		respondOperationError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Message string               `json:"message"`
		Cluster *service.ClusterView `json:"cluster"`
	}{
		Message: result.Message,
		Cluster: result.Cluster,
	})
}

// UpdateQA handles POST /update_qa.
func (h *ClusterHandler) UpdateQA(w http.ResponseWriter, r *http.Request) {
	var req UpdateQARequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"cluster_list_id, clusterName and qa_id must be provided")
		return
	}

	listID, ok := parseID(w, r, "cluster_list_id", req.ClusterListID)
	if !ok {
		return
	}
	cardID, ok := parseID(w, r, "qa_id", req.QAID)
	if !ok {
		return
	}

	result, err := h.coordinator.UpdateCard(
		r.Context(), listID, req.ClusterName, cardID, req.Question, req.Answer)
	if err != nil {
		respondOperationError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, struct {
		Message string            `json:"message"`
		QAPair  *service.CardView `json:"qa_pair"`
	}{
		Message: result.Message,
		QAPair:  result.Card,
	})
}

// MoveQA handles PATCH /cluster-lists/{cluster_list_id}/qa/{qa_id}/move.
func (h *ClusterHandler) MoveQA(w http.ResponseWriter, r *http.Request) {
	listID, ok := parseID(w, r, "cluster_list_id", chi.URLParam(r, "cluster_list_id"))
	if !ok {
		return
	}
	cardID, ok := parseID(w, r, "qa_id", chi.URLParam(r, "qa_id"))
	if !ok {
		return
	}

	var req MoveQARequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"new_cluster_title must be provided")
		return
	}

	result, err := h.coordinator.MoveCard(r.Context(), listID, cardID, req.NewClusterTitle)
	if err != nil {
		respondOperationError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MoveQAResponse{
		Message:         result.Message,
		QAID:            result.CardID,
		OldClusterTitle: result.OldClusterTitle,
		NewClusterTitle: result.NewClusterTitle,
	})
}

// ReorderQAs handles PATCH /cluster-lists/{cluster_list_id}/reorder.
func (h *ClusterHandler) ReorderQAs(w http.ResponseWriter, r *http.Request) {
	listID, ok := parseID(w, r, "cluster_list_id", chi.URLParam(r, "cluster_list_id"))
	if !ok {
		return
	}

	var req ReorderQAsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"cluster_title and ordered_qa_ids must be provided")
		return
	}

	orderedIDs := make([]uuid.UUID, 0, len(req.OrderedQAIDs))
	for _, raw := range req.OrderedQAIDs {
		id, ok := parseID(w, r, "ordered_qa_ids", raw)
		if !ok {
			return
		}
		orderedIDs = append(orderedIDs, id)
	}

	result, err := h.coordinator.ReorderCards(r.Context(), listID, req.ClusterTitle, orderedIDs)
	if err != nil {
		respondOperationError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{Message: result.Message})
}

// DeleteQA handles DELETE /qa/{qa_id}. The owning cluster and list arrive
// as query parameters.
func (h *ClusterHandler) DeleteQA(w http.ResponseWriter, r *http.Request) {
	cardID, ok := parseID(w, r, "qa_id", chi.URLParam(r, "qa_id"))
	if !ok {
		return
	}

	rawListID := r.URL.Query().Get("cluster_list_id")
	if rawListID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "cluster_list_id must be provided")
		return
	}
	listID, ok := parseID(w, r, "cluster_list_id", rawListID)
	if !ok {
		return
	}

	clusterName := r.URL.Query().Get("clusterName")
	if clusterName == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "clusterName must be provided")
		return
	}

	result, err := h.coordinator.DeleteCard(r.Context(), listID, clusterName, cardID)
	if err != nil {
		respondOperationError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DeleteQAResponse{
		Message:     result.Message,
		QAID:        result.CardID,
		ClusterName: result.ClusterTitle,
	})
}

// DeleteCluster handles DELETE /cluster/{cluster_name}.
func (h *ClusterHandler) DeleteCluster(w http.ResponseWriter, r *http.Request) {
	clusterName := chi.URLParam(r, "cluster_name")

	rawListID := r.URL.Query().Get("cluster_list_id")
	if rawListID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "cluster_list_id must be provided")
		return
	}
	listID, ok := parseID(w, r, "cluster_list_id", rawListID)
	if !ok {
		return
	}

	result, err := h.coordinator.DeleteCluster(r.Context(), listID, clusterName)
	if err != nil {
		respondOperationError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DeleteClusterResponse{
		Message:     result.Message,
		ClusterName: result.ClusterTitle,
	})
}
