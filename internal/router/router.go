package router

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"videovoyage/internal/config"
	"videovoyage/internal/handler"
	"videovoyage/internal/middleware"
)

type Handlers struct {
	Auth  *handler.AuthHandler
	Video *handler.VideoHandler
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, handlers Handlers, uploadRoot string, health HealthChecker) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"VideoVoyage API is running..."}`))
	})
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := health.Health(req.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("database unreachable"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Binaries are also reachable directly as static files, outside the
	// range-streaming endpoint and its visibility checks.
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadRoot)))
	r.With(middleware.StreamingTimeout(cfg.StreamMaxDuration, cfg.StreamIdleTimeout)).
		Handle("/uploads/*", fileServer)

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", func(auth chi.Router) {
			auth.Use(middleware.Timeout(cfg.RequestTimeout))
			auth.Post("/register", handlers.Auth.Register)
			auth.Post("/login", handlers.Auth.Login)
			auth.With(authMiddleware.RequireAuth).Get("/profile", handlers.Auth.Profile)
			auth.Post("/create-admin", handlers.Auth.CreateAdmin)
		})

		api.Route("/videos", func(videos chi.Router) {
			// Upload and stream move payloads for minutes at a time, so
			// they get flush-preserving deadlines instead of the buffering
			// TimeoutHandler.
			videos.With(
				authMiddleware.RequireAuth,
				middleware.StreamingTimeout(cfg.StreamMaxDuration, cfg.StreamMaxDuration),
			).Post("/", handlers.Video.Upload)

			videos.With(
				authMiddleware.OptionalAuth,
				middleware.StreamingTimeout(cfg.StreamMaxDuration, cfg.StreamIdleTimeout),
			).Get("/{id}/stream", handlers.Video.Stream)

			videos.Group(func(g chi.Router) {
				g.Use(middleware.Timeout(cfg.RequestTimeout))
				g.With(authMiddleware.OptionalAuth).Get("/", handlers.Video.List)
				g.With(authMiddleware.OptionalAuth).Get("/{id}", handlers.Video.Get)
				g.With(authMiddleware.RequireAuth).Put("/{id}", handlers.Video.Update)
				g.With(authMiddleware.RequireAuth).Delete("/{id}", handlers.Video.Delete)
			})
		})
	})

	return r
}
