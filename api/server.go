/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request for tracing
  2. RealIP:        Client address behind proxies
  3. RequestLogger: zerolog request line, request-scoped logger in context
  4. Recoverer:     Panic recovery (500 instead of crash)
  5. CORS:          Cross-origin requests for the frontend dev server

ROUTE GROUPS:
  /api/transactions/*   Transaction listing and import
  /api/customers/*      Customer listing and rewards breakdown
  /api/rewards          Customer summaries
  /api/points           Points calculator
  /api/config           Tiers and paging defaults
  /api/scenarios/*      Demo datasets
  /api/admin/*          Reset and reload
  /*                    Static files (frontend)

STATIC FILE SERVING:
  Serves the built browser UI from RouterConfig.StaticDir. Unknown paths
  fall back to index.html for client-side routing. Without a build, a small
  landing page lists the API.

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/warp/reward-points/logging"
)

// RouterConfig holds router-level settings.
type RouterConfig struct {
	Logger         zerolog.Logger
	StaticDir      string
	AllowedOrigins []string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", h.ListTransactions)
			r.Post("/", h.ImportTransactions)
			r.Get("/{id}", h.GetTransaction)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.ListCustomers)
			r.Get("/{id}/rewards", h.GetCustomerRewards)
		})

		r.Get("/rewards", h.ListRewards)
		r.Get("/points", h.GetPoints)
		r.Get("/config", h.GetConfig)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/reset", h.ResetDatabase)
			r.Post("/reload", h.ReloadSeed)
		})
	})

	mountStatic(r, cfg.StaticDir)

	return r
}

// mountStatic serves the built UI, or a landing page when there is none.
func mountStatic(r chi.Router, staticDir string) {
	if staticDir == "" {
		staticDir = "./web/dist"
	}
	if _, err := os.Stat(staticDir); os.IsNotExist(err) {
		// Try relative to executable
		exe, _ := os.Executable()
		staticDir = filepath.Join(filepath.Dir(exe), "web", "dist")
	}

	if _, err := os.Stat(staticDir); err == nil {
		fileServer := http.FileServer(http.Dir(staticDir))
		r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
			fullPath := filepath.Join(staticDir, filepath.Clean("/"+r.URL.Path))

			if _, err := os.Stat(fullPath); os.IsNotExist(err) {
				// SPA routing: serve index.html
				http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
				return
			}
			fileServer.ServeHTTP(w, r)
		})
		return
	}

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Reward Points</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Reward Points API</h1>
<p>The frontend is not built yet. Run <code>cd web && npm install && npm run build</code></p>
<h2>API Endpoints</h2>
<ul>
<li><a href="/api/transactions">/api/transactions</a> - Transactions with points</li>
<li><a href="/api/customers">/api/customers</a> - Customers</li>
<li><a href="/api/rewards">/api/rewards</a> - Points per customer</li>
<li><a href="/api/scenarios">/api/scenarios</a> - Demo datasets</li>
</ul>
</body>
</html>`))
	})
}
