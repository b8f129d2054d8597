package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/feedbackfix/feedbackfix-backend/api/responses"
	"github.com/feedbackfix/feedbackfix-backend/pkg/config"
	"github.com/feedbackfix/feedbackfix-backend/pkg/logger"
)

const readinessTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FeedbackFix-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports whether the process can reach its backing stores.
func HealthReady(cfg *config.Config, logg *logger.Logger, db, redis pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-FeedbackFix-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		healthy := true

		checks["database"] = checkDependency(ctx, logg, "database", db)
		checks["redis"] = checkDependency(ctx, logg, "redis", redis)
		for _, status := range checks {
			if status != "ok" {
				healthy = false
			}
		}

		payload := map[string]any{"status": "ready", "checks": checks}
		if !healthy {
			payload["status"] = "degraded"
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, payload)
			return
		}
		responses.WriteSuccess(w, payload)
	}
}

func checkDependency(ctx context.Context, logg *logger.Logger, name string, p pinger) string {
	if p == nil {
		return "skipped"
	}
	if err := p.Ping(ctx); err != nil {
		if logg != nil {
			logCtx := logg.WithField(ctx, "dependency", name)
			logg.Error(logCtx, "readiness check failed", err)
		}
		return "unavailable"
	}
	return "ok"
}
