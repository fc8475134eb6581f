package routes

import (
	"log/slog"
	"net/http"
	"time"

	_ "github.com/Dosada05/tournament-api/docs" // swagger document
	"github.com/Dosada05/tournament-api/handlers"
	"github.com/Dosada05/tournament-api/middleware"
	"github.com/Dosada05/tournament-api/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Tournaments *handlers.TournamentHandler
	Games       *handlers.GameHandler
	WebSocket   *handlers.WebSocketHandler
	Health      *handlers.HealthHandler
}

type Options struct {
	Tokens             middleware.TokenParser
	Metrics            *middleware.Metrics
	Logger             *slog.Logger
	CORSAllowedOrigins []string
	Development        bool
}

func corsHandler(opts Options) func(http.Handler) http.Handler {
	if opts.Development {
		return cors.AllowAll().Handler
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Metadata", "Location"},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// SetupRoutes mounts the whole API on router.
func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(opts.Logger))
	router.Use(chiMiddleware.Recoverer)
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Handler)
	}
	router.Use(corsHandler(opts))
	router.Use(middleware.Authenticate(opts.Tokens, opts.Logger))

	router.Get("/healthz", h.Health.Health)
	if opts.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", opts.Metrics.Endpoint())
	}
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Вебсокеты без таймаута: соединение живёт долго.
	router.Get("/ws/tournaments/{id}", h.WebSocket.ServeWs)

	router.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.With(middleware.RequireRole(models.RoleAdmin)).Put("/manageAdmin", h.Auth.ManageAdmin)
		})
		r.Post("/token/refresh", h.Auth.Refresh)

		r.Route("/tournaments", func(r chi.Router) {
			// Публичные маршруты для просмотра
			r.Get("/", h.Tournaments.List)
			r.Get("/{id}", h.Tournaments.GetByID)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleUser, models.RoleAdmin))
				r.Post("/", h.Tournaments.Create)
				r.Put("/{id}", h.Tournaments.Update)
				r.Patch("/{id}", h.Tournaments.Patch)
				r.Put("/{id}/logo", h.Tournaments.UploadLogo)
			})
			r.With(middleware.RequireRole(models.RoleAdmin)).Delete("/{id}", h.Tournaments.Delete)

			r.Route("/{tournamentId}/games", func(r chi.Router) {
				r.Get("/", h.Games.List)
				r.Get("/{id}", h.Games.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(models.RoleUser, models.RoleAdmin))
					r.Post("/", h.Games.Create)
					r.Put("/{id}", h.Games.Update)
					r.Patch("/{id}", h.Games.Patch)
				})
				r.With(middleware.RequireRole(models.RoleAdmin)).Delete("/{id}", h.Games.Delete)
			})
		})
	})
}
