package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
)

type RouterConfig struct {
	AllowedOrigins []string
	Tokens         middleware.TokenParser
	LoginLimiter   *middleware.RateLimiter

	Health *HealthHandler
	Auth   *AuthHandler
	Users  *UserHandler
	Leads  *LeadHandler
	Sales  *SaleHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", cfg.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.With(cfg.LoginLimiter.Middleware).Post("/login", cfg.Auth.Login)
		r.Post("/logout", cfg.Auth.Logout)
		r.With(middleware.RequireAuth(cfg.Tokens)).Get("/me", cfg.Auth.Me)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.Tokens))

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Post("/", cfg.Users.Create)
			r.Get("/", cfg.Users.List)
		})

		r.Route("/leads", func(r chi.Router) {
			r.Post("/", cfg.Leads.Create)
			r.Route("/{leadId}", func(r chi.Router) {
				r.Get("/", cfg.Leads.Get)
				r.Patch("/", cfg.Leads.Update)
				r.Put("/disposition", cfg.Leads.SetDisposition)
				r.Post("/notes", cfg.Leads.AddNote)
				r.Post("/important-dates", cfg.Leads.AddImportantDate)
				r.Get("/sale", cfg.Leads.GetSale)
			})
		})

		r.Route("/sales/{saleId}", func(r chi.Router) {
			r.Get("/", cfg.Sales.Get)
			r.Patch("/", cfg.Sales.Update)
			r.Post("/notes", cfg.Sales.AddNote)
		})
	})

	return r
}
