package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/thinkex/clusters-api/internal/api"
	apiMiddleware "github.com/thinkex/clusters-api/internal/api/middleware"
	"github.com/thinkex/clusters-api/internal/platform/ws"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.Trace)

	clusterHandler := api.NewClusterHandler(app.coordinator, app.logger)
	realtimeHandler := api.NewRealtimeHandler(app.tokens, app.logger)
	subscribeHandler := ws.NewHandler(app.hub, app.tokens, app.logger)

	r.Post("/cluster-lists", clusterHandler.CreateClusterList)
	r.Get("/cluster-lists", clusterHandler.ListClusterLists)
	r.Get("/cluster-lists/info", clusterHandler.ListClusterListInfo)
	r.Get("/cluster-lists/{cluster_list_id}", clusterHandler.GetClusterList)
	r.Get("/clusters", clusterHandler.GetFirstClusterList)
	r.Post("/add_qa", clusterHandler.AddQA)
	r.Post("/update_qa", clusterHandler.UpdateQA)
	r.Patch("/cluster-lists/{cluster_list_id}/qa/{qa_id}/move", clusterHandler.MoveQA)
	r.Patch("/cluster-lists/{cluster_list_id}/reorder", clusterHandler.ReorderQAs)
	r.Delete("/qa/{qa_id}", clusterHandler.DeleteQA)
	r.Delete("/cluster/{cluster_name}", clusterHandler.DeleteCluster)

	r.Get("/realtime/token", realtimeHandler.Token)
	r.Get("/realtime/subscribe", subscribeHandler.Subscribe)

	r.Get("/health", api.Health)

	return r
}
