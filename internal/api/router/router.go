package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/medvoice-ai/hospital-scheduler/internal/http/handlers"
	httpmiddleware "github.com/medvoice-ai/hospital-scheduler/internal/http/middleware"
	"github.com/medvoice-ai/hospital-scheduler/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	BookingHandler      *handlers.BookingHandler
	SpecialtiesHandler  *handlers.SpecialtiesHandler
	AppointmentsHandler *handlers.AppointmentsHandler
	CallsHandler        *handlers.CallsHandler
	MetricsHandler      http.Handler
	AdminAuthSecret     string
	CORSAllowedOrigins  []string
}

// New creates a chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints.
	r.Group(func(public chi.Router) {
		public.Get("/health", handlers.Health)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}

		if cfg.SpecialtiesHandler != nil {
			public.Route("/specialties", func(r chi.Router) {
				r.Get("/", cfg.SpecialtiesHandler.List)
				r.Get("/{specialty}", cfg.SpecialtiesHandler.Get)
				if cfg.BookingHandler != nil {
					r.Get("/{specialty}/doctors/{doctor}/slots", cfg.BookingHandler.SuggestSlots)
				}
			})
		}

		if cfg.BookingHandler != nil {
			public.Post("/bookings", cfg.BookingHandler.Book)
		}

		if cfg.CallsHandler != nil {
			public.Route("/calls", func(r chi.Router) {
				r.Post("/", cfg.CallsHandler.Place)
				r.Get("/", cfg.CallsHandler.List)
				r.Get("/{callID}", cfg.CallsHandler.Get)
				r.Post("/{callID}/process", cfg.CallsHandler.Process)
			})
		}
	})

	// Admin routes, JWT protected.
	if cfg.AdminAuthSecret != "" && cfg.AppointmentsHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/appointments", cfg.AppointmentsHandler.List)
		})
	}

	return r
}
