package main

import (
	"context"
	"net/http"
	"os"

	"github.com/feedbackfix/feedbackfix-backend/api/routes"
	"github.com/feedbackfix/feedbackfix-backend/internal/auth"
	"github.com/feedbackfix/feedbackfix-backend/internal/entitlement"
	"github.com/feedbackfix/feedbackfix-backend/internal/feedback"
	"github.com/feedbackfix/feedbackfix-backend/internal/projects"
	"github.com/feedbackfix/feedbackfix-backend/internal/subscriptions"
	"github.com/feedbackfix/feedbackfix-backend/internal/translation"
	"github.com/feedbackfix/feedbackfix-backend/internal/users"
	stripewebhook "github.com/feedbackfix/feedbackfix-backend/internal/webhooks/stripe"
	"github.com/feedbackfix/feedbackfix-backend/pkg/auth/session"
	"github.com/feedbackfix/feedbackfix-backend/pkg/config"
	"github.com/feedbackfix/feedbackfix-backend/pkg/db"
	"github.com/feedbackfix/feedbackfix-backend/pkg/logger"
	"github.com/feedbackfix/feedbackfix-backend/pkg/migrate"
	"github.com/feedbackfix/feedbackfix-backend/pkg/openai"
	"github.com/feedbackfix/feedbackfix-backend/pkg/redis"
	"github.com/feedbackfix/feedbackfix-backend/pkg/stripe"
	"github.com/joho/godotenv"
)

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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner:       dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	projectsService, err := projects.NewService(projects.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create projects service", err)
		os.Exit(1)
	}

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	subscriptionsRepo := subscriptions.NewRepository(dbClient.DB())

	subscriptionsService, err := subscriptions.NewService(subscriptions.ServiceParams{
		Repo:         subscriptionsRepo,
		Users:        usersRepo,
		StripeClient: subscriptions.NewStripeClient(stripeClient),
		Config:       cfg.Stripe,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create subscriptions service", err)
		os.Exit(1)
	}

	openaiClient, err := openai.NewClient(context.Background(), cfg.OpenAI, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap openai", err)
		os.Exit(1)
	}

	translationService, err := translation.NewService(translation.Params{
		Completer: openaiClient,
		Config:    cfg.Translation,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create translation service", err)
		os.Exit(1)
	}

	entitlementGate, err := entitlement.NewGate(subscriptionsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create entitlement gate", err)
		os.Exit(1)
	}

	feedbackService, err := feedback.NewService(feedback.ServiceParams{
		Repo:              feedback.NewRepository(dbClient.DB()),
		Projects:          projectsService,
		Gate:              entitlementGate,
		Translator:        translationService,
		TransactionRunner: dbClient,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create feedback service", err)
		os.Exit(1)
	}

	stripeWebhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Repo:              subscriptionsRepo,
		TransactionRunner: dbClient,
		Logger:            logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe webhook service", err)
		os.Exit(1)
	}

	stripeWebhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Stripe.WebhookEventTTL, "stripe-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create stripe webhook guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			authService,
			registerService,
			projectsService,
			feedbackService,
			subscriptionsService,
			stripeClient,
			stripeWebhookService,
			stripeWebhookGuard,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
