package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"carwash/internal/api"
	"carwash/internal/booking"
	"carwash/internal/bookingstate"
	"carwash/internal/pos"
	"carwash/internal/staff"
	"carwash/pkg/config"
	"carwash/pkg/logger"
)

type Dependencies struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Logger zerolog.Logger
	// Table defaults to bookingstate.DefaultTable().
	Table *bookingstate.Table
}

func NewRouter(deps Dependencies) http.Handler {
	table := bookingstate.DefaultTable()
	if deps.Table != nil {
		table = *deps.Table
	}

	bookings := booking.NewService(deps.DB, booking.ServiceConfig{
		Table:    table,
		TaxRate:  deps.Cfg.POS.TaxRate,
		Currency: deps.Cfg.POS.Currency,
		Logger:   logger.WithComponent(deps.Logger, "booking"),
	})
	return newRouter(deps.Cfg, deps.Logger, routes{
		bookings: booking.Handlers{Bookings: bookings, Table: table},
		pos:      pos.Handlers{TaxRate: deps.Cfg.POS.TaxRate, Currency: deps.Cfg.POS.Currency},
		staff:    staff.NewRepository(deps.DB),
		ping:     deps.DB.Ping,
	})
}

type routes struct {
	bookings booking.Handlers
	pos      pos.Handlers
	staff    api.StaffLookup
	ping     func(context.Context) error
}

func newRouter(cfg config.Config, log zerolog.Logger, rt routes) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(api.RequestLogger(logger.WithComponent(log, "http")))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := rt.ping(ctx); err != nil {
			api.WriteError(w, http.StatusServiceUnavailable, "NOT_READY", "database unavailable")
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	writeLimit := api.RateLimit(api.RateLimitConfig{
		RequestLimit: cfg.RateLimitPerMinute,
		WindowSize:   time.Minute,
		KeyFunc:      api.KeyByStaffOrIP,
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(api.DashboardCORS(api.CORSOptions{
			AllowedOrigins: cfg.DashboardAllowedOrigins,
		}))

		// Staff dashboard APIs
		r.Group(func(r chi.Router) {
			r.Use(api.StaffAuth(cfg, rt.staff))

			r.Get("/booking-states", rt.bookings.States)
			r.Post("/pos/quote", rt.pos.Quote)

			r.Get("/bookings", rt.bookings.List)
			r.Get("/bookings/{id}", rt.bookings.Get)
			r.Get("/bookings/{id}/history", rt.bookings.History)
			r.Get("/bookings/{id}/activity", rt.bookings.Activity)

			r.With(writeLimit).Post("/bookings", rt.bookings.Create)
			r.With(writeLimit).Post("/bookings/{id}/initialize", rt.bookings.Initialize)
			r.With(writeLimit).Post("/bookings/{id}/transitions", rt.bookings.Transition)
		})
	})

	return r
}
