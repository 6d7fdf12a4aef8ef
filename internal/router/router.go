package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/kiwari-pos/cafeteria/internal/auth"
	"github.com/kiwari-pos/cafeteria/internal/config"
	"github.com/kiwari-pos/cafeteria/internal/handler"
	mw "github.com/kiwari-pos/cafeteria/internal/middleware"
	"github.com/kiwari-pos/cafeteria/internal/view"
	"github.com/kiwari-pos/cafeteria/internal/ws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Deps are the long-lived components the routes call into.
type Deps struct {
	Orders   handler.OrderServicer
	Bridge   *auth.Bridge
	Hub      *ws.Hub
	Views    *view.Renderer
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger
}

// New creates a Chi router with all application routes wired up.
// Every route except /health and /metrics runs with a browser profile.
func New(cfg *config.Config, deps Deps) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(mw.Logger(deps.Logger))
	r.Use(middleware.Recoverer)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))

	// Profile-scoped routes
	r.Group(func(r chi.Router) {
		r.Use(mw.Profile(cfg.SessionSecret))
		r.Use(mw.Session(deps.Bridge))

		pageHandler := handler.NewPageHandler(deps.Orders, deps.Views, deps.Bridge.Enabled())
		pageHandler.RegisterRoutes(r)

		authHandler := handler.NewAuthHandler(deps.Bridge, deps.Views)
		r.Route("/auth", authHandler.RegisterRoutes)

		r.Method(http.MethodGet, "/ws/orders", handler.NewLiveHandler(deps.Hub))

		apiHandler := handler.NewAPIHandler(deps.Orders)
		r.Route("/api", func(r chi.Router) {
			// Without configured origins the API stays same-origin only.
			if len(cfg.AllowedOrigins) > 0 {
				r.Use(cors.Handler(cors.Options{
					AllowedOrigins:   cfg.AllowedOrigins,
					AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
					AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
					AllowCredentials: true,
					MaxAge:           300, // 5 minutes
				}))
			}
			apiHandler.RegisterRoutes(r)
		})
	})

	deps.Logger.Debug().Msg("router initialized")
	return r
}
