package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/angelmondragon/feedmill-backend/api/controllers"
	"github.com/angelmondragon/feedmill-backend/api/middleware"
	"github.com/angelmondragon/feedmill-backend/internal/auth"
	"github.com/angelmondragon/feedmill-backend/internal/customers"
	"github.com/angelmondragon/feedmill-backend/internal/feeds"
	"github.com/angelmondragon/feedmill-backend/internal/orders"
	"github.com/angelmondragon/feedmill-backend/internal/stock"
	"github.com/angelmondragon/feedmill-backend/pkg/auth/session"
	"github.com/angelmondragon/feedmill-backend/pkg/config"
	"github.com/angelmondragon/feedmill-backend/pkg/db"
	"github.com/angelmondragon/feedmill-backend/pkg/logger"
	"github.com/angelmondragon/feedmill-backend/pkg/redis"
)

// Store is the redis surface the router needs: readiness, login throttling
// and idempotent writes.
type Store interface {
	redis.Pinger
	redis.IdempotencyStore
	middleware.WindowLimiter
}

// Services bundles the domain services exposed over HTTP.
type Services struct {
	Auth      auth.Service
	Feeds     feeds.Service
	Stock     stock.Service
	Customers customers.Service
	Orders    orders.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	store Store,
	sessionChecker session.Verifier,
	metricsHandler http.Handler,
	svc Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		chimw.RealIP,
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, store))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.With(middleware.LoginRateLimit(cfg.AuthRateLimit, store, logg)).Post("/auth/login", controllers.AdminAuthLogin(svc.Auth, cfg.JWT, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
			r.Post("/auth/logout", controllers.AdminAuthLogout(svc.Auth, cfg.JWT, logg))
			r.Get("/me", controllers.AdminMe(svc.Auth, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))

		r.Route("/feeds", func(r chi.Router) {
			r.Get("/", controllers.FeedsList(svc.Feeds, logg))
			r.Post("/", controllers.FeedsCreate(svc.Feeds, logg))
			r.Patch("/{feedId}/unit-size", controllers.FeedsUpdateUnitSize(svc.Feeds, logg))
		})

		r.Route("/stock/{feedId}", func(r chi.Router) {
			r.Get("/", controllers.StockBalance(svc.Stock, logg))
			r.Get("/transactions", controllers.StockTransactions(svc.Stock, logg))
			r.With(middleware.Idempotency(store, middleware.StockIdempotencyTTL, logg)).Post("/production", controllers.StockRecordProduction(svc.Stock, logg))
			r.With(middleware.Idempotency(store, middleware.StockIdempotencyTTL, logg)).Post("/adjustments", controllers.StockAdjust(svc.Stock, logg))
		})

		r.Post("/customers/check", controllers.CustomersCheck(svc.Customers, cfg.JWT, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(svc.Orders, logg))
			r.Post("/preview", controllers.OrdersPreview(svc.Orders, logg))
			r.With(
				middleware.CustomerToken(cfg.JWT, logg),
				middleware.Idempotency(store, middleware.OrderIdempotencyTTL, logg),
			).Post("/", controllers.OrdersPlace(svc.Orders, logg))
			r.Get("/{orderId}", controllers.OrdersGet(svc.Orders, logg))
			r.Put("/{orderId}/status", controllers.OrdersUpdateStatus(svc.Orders, logg))
		})
	})

	return r
}
