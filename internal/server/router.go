package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"wms/internal/database"
	"wms/internal/handlers"
	"wms/internal/middleware"
	"wms/internal/models"
	"wms/internal/websocket"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Repo   database.Repository
	Secret string
	Hub    *websocket.Hub
	// Alerter may be nil when push notifications are not configured.
	Alerter  handlers.Alerter
	Log      *zap.Logger
	Registry *prometheus.Registry
}

// NewRouter builds the HTTP surface of the development backend.
func NewRouter(deps Deps) http.Handler {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metrics := middleware.NewMetrics(reg)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	if deps.Hub != nil {
		// Token comes from the query string, checked by the handler.
		r.Get("/ws", websocket.HandleWebSocket(deps.Hub, deps.Repo, deps.Secret))
	}

	events := handlers.BinEvents{Critical: metrics.Critical}
	if deps.Alerter != nil {
		events.Alerter = deps.Alerter
	}
	if deps.Hub != nil {
		events.Hub = deps.Hub
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", handlers.SignUp(deps.Repo, deps.Secret, log))
		r.Post("/auth/login", handlers.Login(deps.Repo, deps.Secret, log))

		r.Get("/bins", handlers.GetBins(deps.Repo, log))
		r.Get("/bins/{id}", handlers.GetBin(deps.Repo, log))
		r.Patch("/bins/{id}", handlers.UpdateBin(deps.Repo, events, log))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(deps.Secret, log))

			r.Get("/drivers/{id}", handlers.GetDriver(deps.Repo, log))
			r.Put("/drivers/{id}", handlers.UpdateDriver(deps.Repo, deps.Secret, log))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(deps.Secret, log))
			r.Use(middleware.RequireRole(models.RoleAdmin))

			r.Get("/admin/drivers", handlers.GetActiveDrivers(deps.Repo, log))
			if deps.Hub != nil {
				r.Get("/admin/connections", handlers.Connections(deps.Hub))
			}
		})
	})

	return r
}
