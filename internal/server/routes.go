package server

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	v1 "github.com/taskflow-io/taskflow/internal/api/v1"
	"github.com/taskflow-io/taskflow/internal/api/ws"
	"github.com/taskflow-io/taskflow/internal/realtime"
	"github.com/taskflow-io/taskflow/internal/store/postgres"
)

func registerAuthRoutes(api huma.API, authSvc v1.AuthService) {
	v1.RegisterAuthRoutes(api, authSvc)
}

func registerAPIRoutes(api huma.API, store *postgres.Store, hub *realtime.Hub) {
	v1.RegisterProjectRoutes(api, store)
	v1.RegisterBoardRoutes(api, store)
	v1.RegisterTaskRoutes(api, store, hub)
}

func registerWSRoutes(r chi.Router, handler *ws.Handler) {
	r.Get("/boards/{boardID}", handler.ServeBoard)
}
