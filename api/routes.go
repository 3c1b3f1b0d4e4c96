package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) setupRoutes() {
	// Middleware stack
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.SetHeader("Content-Type", "application/json"))

	// API versioning group
	s.router.Route("/api/v1", func(r chi.Router) {
		// Health check endpoint
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK")) // Best effort write
		})

		r.Get("/sections", s.handleGetSections) // GET /api/v1/sections

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", s.handleGetSettings)       // GET  /api/v1/settings
			r.Put("/{key}", s.handleUpdateSetting) // PUT  /api/v1/settings/{key}
			r.Post("/export", s.handleExport)      // POST /api/v1/settings/export
			r.Post("/import", s.handleImport)      // POST /api/v1/settings/import
			r.Post("/reset", s.handleReset)        // POST /api/v1/settings/reset
			r.Post("/clear", s.handleClearAll)     // POST /api/v1/settings/clear
		})
	})
}
