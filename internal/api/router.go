package api

import (
	"github.com/avelarde/campushub-be/internal/account"
	"github.com/avelarde/campushub-be/internal/api/handlers"
	"github.com/avelarde/campushub-be/internal/auth"
	"github.com/avelarde/campushub-be/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	workflow account.WorkflowProvider,
	lister handlers.UserLister,
	sessions auth.SessionManager,
	contactService services.ContactServiceProvider,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(workflow, sessions)
	userHandler := handlers.NewUserHandler(workflow, lister, sessions)
	contactHandler := handlers.NewContactHandler(contactService)

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		// Logout needs only the cookie, not a resolved session, so it stays
		// outside the session middleware and keeps working when the session
		// store is down.
		r.Post("/auth/logout", accountHandler.Logout)

		// Every other route resolves the session cookie first.
		r.Group(func(r chi.Router) {
			r.Use(auth.SessionMiddleware(sessions))

			r.Post("/auth/register", accountHandler.Register)
			r.Post("/auth/login", accountHandler.Login)
			r.Get("/auth/me", accountHandler.Me)

			r.Get("/session/flash", accountHandler.Flash)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", userHandler.List)
				r.Route("/{id}", func(r chi.Router) {
					r.Put("/", userHandler.Update)
					r.Delete("/", userHandler.Delete)
				})
			})

			r.Route("/contact", func(r chi.Router) {
				r.Post("/", contactHandler.Submit)
				r.Get("/", contactHandler.List)
			})
		})
	})

	return r
}
