/*
clydefs debug API

This is the local debug/inspection HTTP surface for clydefs, a
prototype B-link-tree filesystem. It is not a filesystem protocol: it
exposes the tree-interface ABI and the directory layer directly so the
engine can be poked and measured without a mount path.

Version: 0.1.0
Host: localhost:8080
BasePath: /api/v1

SecurityDefinitions:
  - ApiKeyAuth:
    type: apiKey
    in: header
    name: X-API-Key

swagger:meta
*/
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/clydefs/clydefs/pkg/treeiface"
)

// StartServer starts the debug/inspection HTTP server with all routes
// configured. It blocks until the listener fails.
func StartServer(tree treeiface.Interface, config ServerConfig) error {
	metrics := NewMetrics()

	var lister treeiface.TreeLister
	if l, ok := tree.(treeiface.TreeLister); ok {
		lister = l
	}
	h := NewHandlers(tree, lister, metrics)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(apiKeyMiddleware(config.APIKey))

		r.Get("/health", h.HandleHealth)
		r.Get("/stats", h.HandleStats)

		r.Post("/trees", h.HandleCreateTree)
		r.Delete("/trees/{tid}", h.HandleRemoveTree)

		r.Post("/trees/{tid}/nodes", h.HandleInsertNode)
		r.Delete("/trees/{tid}/nodes/{nid}", h.HandleRemoveNode)
		r.Post("/trees/{tid}/nodes/{nid}/read", h.HandleReadNode)
		r.Post("/trees/{tid}/nodes/{nid}/write", h.HandleWriteNode)

		r.Get("/trees/{tid}/nodes/{nid}/entries", h.HandleListDir)
		r.Get("/trees/{tid}/nodes/{nid}/entries/{name}", h.HandleFindDirEntry)
		r.Post("/trees/{tid}/nodes/{nid}/entries", h.HandleInsertDirEntry)
		r.Delete("/trees/{tid}/nodes/{nid}/entries/{name}", h.HandleDeleteDirEntry)
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", config.Port)),
	))

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	fmt.Printf("Starting clydefs debug API on %s\n", addr)
	fmt.Printf("Metrics available at: http://%s/metrics\n", addr)
	return http.ListenAndServe(addr, r)
}
