package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hexlight/portal-notifier/internal/api/handler"
	apimw "github.com/hexlight/portal-notifier/internal/api/middleware"
	"github.com/hexlight/portal-notifier/internal/dispatcher"
	"github.com/hexlight/portal-notifier/internal/store"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	d *dispatcher.Dispatcher,
	deliveries store.DeliveryRepository,
	reg prometheus.Gatherer,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)          // recover panics, return 500
	r.Use(chimw.RealIP)             // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1<<20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)      // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))

	// --- handler instances ---
	eh := handler.NewEventHandler(d, logger)
	dh := handler.NewDeliveryHandler(deliveries, logger)
	hh := handler.NewHealthHandler()

	// --- routes ---
	r.Get("/health", hh.Health)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Post("/bug-created", eh.BugCreated)
			r.Post("/bug-reassigned", eh.BugReassigned)
			r.Post("/bug-status-changed", eh.StatusChanged)
			r.Post("/bug-commented", eh.CommentAdded)
			r.Post("/bug-updated", eh.BugUpdated)
		})

		r.Get("/deliveries/bug/{id}", dh.ListByBug)
	})

	return r
}
