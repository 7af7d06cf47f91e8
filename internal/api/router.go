package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/Conversions-Report-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Conversions-Report-Backend/internal/api/middleware"
	"github.com/ndewijer/Conversions-Report-Backend/internal/config"
	"github.com/ndewijer/Conversions-Report-Backend/internal/service"
	"github.com/ndewijer/Conversions-Report-Backend/internal/session"
)

// NewRouter creates and configures the HTTP router
func NewRouter(
	systemService *service.SystemService,
	conversionsService *service.ConversionsService,
	sessions *session.Manager,
	cfg *config.Config,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	r.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(systemService)
			r.Get("/health", systemHandler.Health)
		})

		r.Route("/session", func(r chi.Router) {
			sessionHandler := handlers.NewSessionHandler(sessions)
			r.Post("/", sessionHandler.Login)
			r.Delete("/", sessionHandler.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.RequireSession(sessions))

			conversionsHandler := handlers.NewConversionsHandler(conversionsService)
			r.Get("/conversions", conversionsHandler.Conversions)
		})
	})

	return r
}
