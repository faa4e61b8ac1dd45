package httpx

import (
	"net/http"

	"daraja/internal/config"
	"daraja/internal/http/handlers"
	middlewarex "daraja/internal/http/middleware"
	"daraja/internal/provider"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// RouterDependencies holds all dependencies for the HTTP router
type RouterDependencies struct {
	Config   config.Cfg
	Registry *provider.Registry
	Sinks    []handlers.Sink
	Logger   zerolog.Logger
}

// NewRouter creates the callback receiver router
func NewRouter(deps RouterDependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(middlewarex.RequestLogger(deps.Logger))
	r.Use(chimw.Recoverer)

	r.Get("/health", handlers.Health(deps.Registry))

	// Daraja posts results here; the family selects the parser
	r.Route("/callbacks", func(r chi.Router) {
		r.Use(middlewarex.CallbackToken(deps.Config.App.CallbackToken))
		r.Post("/{family}", handlers.Callbacks(deps.Registry, deps.Sinks...))
	})

	return r
}
