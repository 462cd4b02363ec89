package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/yegors/fms/internal/config"
	"github.com/yegors/fms/internal/fms"
	"github.com/yegors/fms/internal/websocket"
	"github.com/yegors/fms/pkg/logger"
)

// Router is the API router.
type Router struct {
	handler *Handler
	config  *config.Config
	logger  *logger.Logger
	ws      *websocket.Server
}

// NewRouter creates a new API router.
func NewRouter(f *fms.FMS, profiles map[string]*config.AircraftProfile, cfg *config.Config, log *logger.Logger, wsServer *websocket.Server) *Router {
	return &Router{
		handler: NewHandler(f, profiles, cfg, log, wsServer),
		config:  cfg,
		logger:  log.Named("api-router"),
		ws:      wsServer,
	}
}

// Routes returns the API routes.
func (r *Router) Routes() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(r.cors)

	router.Route("/api/v1", func(api chi.Router) {
		api.Get("/state", r.handler.GetState)

		api.Post("/nd", r.handler.ReadND)
		api.Get("/nd/fixes/{ident}", r.handler.GetFix)
		api.Get("/nd/airports/{icao}", r.handler.GetAirport)

		api.Post("/route/decode", r.handler.DecodeRoute)

		api.Post("/planning", r.handler.SetPlanning)
		api.Post("/planning/runway-analysis", r.handler.AnalyzeRunway)

		api.Get("/plan/print", r.handler.PrintPlan)
	})

	if r.ws != nil {
		router.Get("/ws", r.ws.ServeHTTP)
	}

	return router
}

// cors applies the configured allowed origins.
func (r *Router) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		origin := req.Header.Get("Origin")
		for _, allowed := range r.config.Server.CORSAllowedOrigins {
			if allowed == "*" || allowed == origin {
				w.Header().Set("Access-Control-Allow-Origin", allowed)
				break
			}
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, req)
	})
}
