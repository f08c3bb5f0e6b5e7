package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/feedmill-backend/api/routes"
	"github.com/angelmondragon/feedmill-backend/internal/admins"
	"github.com/angelmondragon/feedmill-backend/internal/auth"
	"github.com/angelmondragon/feedmill-backend/internal/customers"
	"github.com/angelmondragon/feedmill-backend/internal/feeds"
	"github.com/angelmondragon/feedmill-backend/internal/orders"
	"github.com/angelmondragon/feedmill-backend/internal/stock"
	"github.com/angelmondragon/feedmill-backend/pkg/auth/session"
	"github.com/angelmondragon/feedmill-backend/pkg/config"
	"github.com/angelmondragon/feedmill-backend/pkg/db"
	"github.com/angelmondragon/feedmill-backend/pkg/logger"
	"github.com/angelmondragon/feedmill-backend/pkg/metrics"
	"github.com/angelmondragon/feedmill-backend/pkg/migrate"
	"github.com/angelmondragon/feedmill-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return multierr.Append(err, dbClient.Close())
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return multierr.Append(err, dbClient.Close())
	}
	defer func() {
		err = multierr.Combine(err, redisClient.Close(), dbClient.Close())
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	orderMetrics := metrics.NewOrderMetrics(registry)
	stockMetrics := metrics.NewStockMetrics(registry)

	services, err := buildServices(cfg, logg, dbClient, sessionManager, orderMetrics, stockMetrics)
	if err != nil {
		return err
	}

	addr := ":" + cfg.App.Port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), services),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(context.WithoutCancel(ctx), "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildServices(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	sessionManager *session.Manager,
	orderMetrics *metrics.OrderMetrics,
	stockMetrics *metrics.StockMetrics,
) (routes.Services, error) {
	gdb := dbClient.DB()

	authService, err := auth.NewService(auth.ServiceParams{
		AdminRepo:      admins.NewRepository(gdb),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return routes.Services{}, err
	}

	feedRepo := feeds.NewRepository(gdb)
	feedService, err := feeds.NewService(feedRepo)
	if err != nil {
		return routes.Services{}, err
	}

	stockRepo := stock.NewRepository(gdb)
	ledger, err := stock.NewLedger(stockRepo)
	if err != nil {
		return routes.Services{}, err
	}
	stockService, err := stock.NewService(dbClient, stockRepo, ledger, feedRepo, stockMetrics, logg)
	if err != nil {
		return routes.Services{}, err
	}

	customerService, err := customers.NewService(customers.NewRepository(gdb))
	if err != nil {
		return routes.Services{}, err
	}

	orderService, err := orders.NewService(orders.NewRepository(gdb), dbClient, feedRepo, ledger, orderMetrics, logg)
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:      authService,
		Feeds:     feedService,
		Stock:     stockService,
		Customers: customerService,
		Orders:    orderService,
	}, nil
}
