package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// RouterConfig collects what the router serves besides the graph API
type RouterConfig struct {
	Events         http.Handler
	MetricsHandler http.Handler
	Observer       RequestObserver
	AllowedOrigins []string
	Static         http.Handler
}

// NewRouter wires the graph API, SSE stream and metrics endpoint
func NewRouter(h *GraphHandler, cfg RouterConfig, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Recoverer)
	router.Use(Logger(logger))
	if cfg.Observer != nil {
		router.Use(Metrics(cfg.Observer))
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	router.Route("/api", func(r chi.Router) {
		r.Get("/graph", h.GetGraph)
		r.Delete("/graph", h.ClearGraph)

		r.Post("/selection", h.Select)
		r.Delete("/selection", h.ClearSelection)

		r.Post("/relationships", h.RequestRelationship)
		r.Delete("/relationships/{id}", h.DeleteRelationship)

		r.Post("/entities", h.UploadEntities)
		r.Delete("/entities/{id}", h.DeleteEntity)
		r.Put("/entities/{id}/position", h.MoveEntity)

		r.Post("/layout", h.Layout)
		r.Post("/undo", h.Undo)
		r.Post("/redo", h.Redo)

		r.Post("/import/json", h.ImportJSON)
		r.Post("/import/yaml", h.ImportYAML)
		r.Get("/export/json", h.ExportJSON)
		r.Get("/export/yaml", h.ExportYAML)

		r.Delete("/autosave", h.ClearAutosave)
	})

	if cfg.Events != nil {
		router.Method(http.MethodGet, "/events", cfg.Events)
	}
	if cfg.MetricsHandler != nil {
		router.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}
	if cfg.Static != nil {
		router.Handle("/*", cfg.Static)
	}

	return router
}
