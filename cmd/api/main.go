package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/xfery/dropship-backend/api/routes"
	"github.com/xfery/dropship-backend/internal/address"
	"github.com/xfery/dropship-backend/internal/cart"
	"github.com/xfery/dropship-backend/internal/feedback"
	"github.com/xfery/dropship-backend/internal/identity"
	"github.com/xfery/dropship-backend/internal/orders"
	"github.com/xfery/dropship-backend/internal/payments"
	"github.com/xfery/dropship-backend/internal/products"
	"github.com/xfery/dropship-backend/internal/users"
	stripewebhook "github.com/xfery/dropship-backend/internal/webhooks/stripe"
	"github.com/xfery/dropship-backend/pkg/cj"
	"github.com/xfery/dropship-backend/pkg/config"
	"github.com/xfery/dropship-backend/pkg/db"
	"github.com/xfery/dropship-backend/pkg/fetch"
	"github.com/xfery/dropship-backend/pkg/logger"
	"github.com/xfery/dropship-backend/pkg/metrics"
	"github.com/xfery/dropship-backend/pkg/migrate"
	"github.com/xfery/dropship-backend/pkg/redis"
	"github.com/xfery/dropship-backend/pkg/stripe"
)

const webhookDedupeTTL = 24 * time.Hour

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
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	supplierMetrics := metrics.NewSupplierMetrics(registry)
	webhookMetrics := metrics.NewWebhookMetrics(registry)

	supplier, err := cj.NewClient(context.Background(), cfg.Supplier, logg, supplierMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create supplier client", err)
		os.Exit(1)
	}

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe client", err)
		os.Exit(1)
	}

	pool := fetch.NewPool(cfg.Fetch)
	usersRepo := users.NewRepository(dbClient.DB())
	paymentsRepo := payments.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())

	identityService, err := identity.NewService(identity.ServiceParams{
		Users:     usersRepo,
		JWTConfig: cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create identity service", err)
		os.Exit(1)
	}

	addressService, err := address.NewService(usersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create address service", err)
		os.Exit(1)
	}

	productsService, err := products.NewService(supplier)
	if err != nil {
		logg.Error(context.Background(), "failed to create products service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(cart.ServiceParams{
		Users:    usersRepo,
		Supplier: supplier,
		Pool:     pool,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(payments.ServiceParams{
		Ledger:   paymentsRepo,
		Users:    usersRepo,
		Checkout: stripeClient,
		Freight:  supplier,
		Config:   cfg.Checkout,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	paymentUpdater, err := orders.NewHTTPPaymentUpdater(cfg.Checkout.PaymentUpdateBaseURL, cfg.Supplier.Timeout)
	if err != nil {
		logg.Error(context.Background(), "failed to create payment updater", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.ServiceParams{
		Supplier:       supplier,
		Ledger:         paymentsRepo,
		Records:        ordersRepo,
		Users:          usersRepo,
		PaymentUpdater: paymentUpdater,
		Pool:           pool,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	feedbackService, err := feedback.NewService(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create feedback service", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Ledger:  paymentsRepo,
		Metrics: webhookMetrics,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, webhookDedupeTTL, "stripe-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:           cfg,
			Logger:           logg,
			DB:               dbClient,
			Redis:            redisClient,
			Registry:         registry,
			Identity:         identityService,
			Address:          addressService,
			Products:         productsService,
			Cart:             cartService,
			Payments:         paymentsService,
			Orders:           ordersService,
			Feedback:         feedbackService,
			StripeClient:     stripeClient,
			WebhookService:   webhookService,
			IdempotencyGuard: webhookGuard,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
