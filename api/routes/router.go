package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/feedbackfix/feedbackfix-backend/api/controllers"
	webhookcontrollers "github.com/feedbackfix/feedbackfix-backend/api/controllers/webhooks"
	"github.com/feedbackfix/feedbackfix-backend/api/middleware"
	"github.com/feedbackfix/feedbackfix-backend/internal/auth"
	"github.com/feedbackfix/feedbackfix-backend/internal/feedback"
	"github.com/feedbackfix/feedbackfix-backend/internal/projects"
	subscriptionsvc "github.com/feedbackfix/feedbackfix-backend/internal/subscriptions"
	stripewebhook "github.com/feedbackfix/feedbackfix-backend/internal/webhooks/stripe"
	"github.com/feedbackfix/feedbackfix-backend/pkg/auth/session"
	"github.com/feedbackfix/feedbackfix-backend/pkg/config"
	"github.com/feedbackfix/feedbackfix-backend/pkg/db"
	"github.com/feedbackfix/feedbackfix-backend/pkg/logger"
	"github.com/feedbackfix/feedbackfix-backend/pkg/redis"
	"github.com/feedbackfix/feedbackfix-backend/pkg/stripe"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionManager sessionManager,
	authService auth.Service,
	registerService auth.RegisterService,
	projectService projects.Service,
	feedbackService feedback.Service,
	subscriptionsService subscriptionsvc.Service,
	stripeClient *stripe.Client,
	stripeWebhookService *stripewebhook.Service,
	stripeWebhookGuard *stripewebhook.IdempotencyGuard,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(stripeWebhookService, stripeClient, stripeWebhookGuard, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", controllers.AuthRegister(registerService, authService, logg))
		r.Post("/logout", controllers.AuthLogout(sessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessionManager, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))

		r.Route("/projects", func(r chi.Router) {
			r.Post("/", controllers.ProjectCreate(projectService, logg))
			r.Get("/", controllers.ProjectList(projectService, logg))
			r.Route("/{projectId}", func(r chi.Router) {
				r.Get("/", controllers.ProjectGet(projectService, logg))
				r.Patch("/", controllers.ProjectUpdate(projectService, logg))
				r.Delete("/", controllers.ProjectDelete(projectService, logg))
				r.Post("/translate", controllers.FeedbackTranslate(feedbackService, logg))
				r.Get("/feedback", controllers.FeedbackList(feedbackService, logg))
				r.Get("/feedback/{feedbackId}", controllers.FeedbackGet(feedbackService, logg))
			})
		})

		r.Patch("/tasks/{taskId}/complete", controllers.TaskComplete(feedbackService, logg))

		r.Route("/billing", func(r chi.Router) {
			r.Post("/checkout", controllers.BillingCheckout(subscriptionsService, logg))
			r.Get("/subscription", controllers.BillingSubscription(subscriptionsService, logg))
		})
	})

	return r
}
