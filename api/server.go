/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/topology/*       Building tree management
  /api/expense-types/*  Expense-type configuration
  /api/expenses/*       Distribution, entries, statements, rollups
  /api/pending          Pre-distribution data entry
  /api/periods/*        Read-only period locks
  /api/scenarios/*      Demo scenarios

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Topology routes
		r.Route("/topology", func(r chi.Router) {
			r.Get("/", h.GetTopology)
			r.Post("/blocks", h.CreateBlock)
			r.Post("/stairs", h.CreateStair)
			r.Post("/apartments", h.CreateApartment)
		})

		// Expense-type routes
		r.Route("/expense-types", func(r chi.Router) {
			r.Get("/", h.ListExpenseTypes)
			r.Get("/{name}", h.GetExpenseType)
			r.Put("/{name}", h.SaveExpenseType)
		})

		// Expense routes
		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", h.ListExpenses)
			r.Post("/", h.DistributeExpense)
			r.Get("/{id}", h.GetExpense)
			r.Delete("/{id}", h.DeleteExpense)
			r.Put("/{id}/entries", h.UpdateEntry)
			r.Get("/{id}/statement", h.GetStatement)
			r.Get("/{id}/rollup", h.GetRollup)
		})

		// Pending data entry
		r.Post("/pending", h.SavePending)

		// Period lock routes
		r.Put("/periods/{period}/lock", h.SetPeriodLock)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	// Landing page listing the API surface
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Association Billing Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Association Billing Engine API</h1>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/topology">/api/topology</a> - Building tree</li>
<li><a href="/api/expense-types">/api/expense-types</a> - Expense-type configuration</li>
<li><a href="/api/expenses">/api/expenses</a> - Distributed expenses</li>
<li><a href="/api/scenarios">/api/scenarios</a> - Demo scenarios</li>
</ul>
</body>
</html>`))
	})

	return r
}
