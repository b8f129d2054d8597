package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/feedbackfix/feedbackfix-backend/internal/subscriptions"
	"github.com/feedbackfix/feedbackfix-backend/pkg/db/models"
	"github.com/feedbackfix/feedbackfix-backend/pkg/logger"
)

const (
	defaultReconcileLimit    = 250
	defaultReconcileLookback = 7 * 24 * time.Hour
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SubscriptionReconcileJobParams configures the subscription sync cron job.
type SubscriptionReconcileJobParams struct {
	Logger       *logger.Logger
	DB           txRunner
	Repo         subscriptions.Repository
	StripeClient subscriptions.StripeBillingClient
	Limit        int
	Lookback     time.Duration
	Now          func() time.Time
}

// NewSubscriptionReconcileJob builds a job that re-fetches subscription state
// from Stripe and re-applies the provider's absolute status, repairing drift
// left behind by webhook deliveries that never arrived.
func NewSubscriptionReconcileJob(params SubscriptionReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("subscription repository required")
	}
	if params.StripeClient == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	lookback := params.Lookback
	if lookback <= 0 {
		lookback = defaultReconcileLookback
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultReconcileLimit
	}
	return &subscriptionReconcileJob{
		logg:     params.Logger,
		db:       params.DB,
		repo:     params.Repo,
		stripe:   params.StripeClient,
		now:      now,
		limit:    limit,
		lookback: lookback,
	}, nil
}

type subscriptionReconcileJob struct {
	logg     *logger.Logger
	db       txRunner
	repo     subscriptions.Repository
	stripe   subscriptions.StripeBillingClient
	now      func() time.Time
	limit    int
	lookback time.Duration
}

func (j *subscriptionReconcileJob) Name() string { return "subscription-reconcile" }

func (j *subscriptionReconcileJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.lookback)
	snapshot, err := j.repo.ListStale(ctx, cutoff, j.limit)
	if err != nil {
		return fmt.Errorf("list stale subscriptions: %w", err)
	}
	var errs error
	synced := 0
	for i := range snapshot {
		if err := j.reconcileSubscription(ctx, &snapshot[i]); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		synced++
	}
	reportCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates": len(snapshot),
		"synced":     synced,
	})
	j.logg.Info(reportCtx, "subscription reconcile loop complete")
	return errs
}

func (j *subscriptionReconcileJob) reconcileSubscription(ctx context.Context, sub *models.Subscription) error {
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"subscription_id":        sub.ID,
		"user_id":                sub.UserID,
		"stripe_subscription_id": sub.StripeSubscriptionID,
	})
	if sub.StripeSubscriptionID == nil || *sub.StripeSubscriptionID == "" {
		j.logg.Info(logCtx, "subscription missing stripe id; skipping")
		return nil
	}
	remote, err := j.stripe.GetSubscription(logCtx, *sub.StripeSubscriptionID, nil)
	if err != nil {
		return fmt.Errorf("fetch stripe subscription: %w", err)
	}
	if remote == nil {
		j.logg.Info(logCtx, "stripe subscription not found; skipping")
		return nil
	}
	status, ok := subscriptions.MapStripeStatus(remote.Status)
	if !ok {
		statusCtx := j.logg.WithField(logCtx, "stripe_status", string(remote.Status))
		j.logg.Info(statusCtx, "unmapped stripe status; skipping")
		return nil
	}
	if err := j.db.WithTx(logCtx, func(tx *gorm.DB) error {
		repo := j.repo.WithTx(tx)
		stored, err := repo.FindByUserIDForUpdate(logCtx, sub.UserID)
		if err != nil {
			return err
		}
		if stored == nil {
			j.logg.Info(logCtx, "subscription removed from db; skipping")
			return nil
		}
		stored.Status = status
		if periodEnd := subscriptions.PeriodEndFromStripe(remote); periodEnd != nil {
			stored.CurrentPeriodEnd = periodEnd
		}
		if err := repo.Update(logCtx, stored); err != nil {
			return err
		}
		successCtx := j.logg.WithFields(logCtx, map[string]any{
			"stripe_status": string(remote.Status),
			"status":        string(status),
		})
		j.logg.Info(successCtx, "subscription reconciled")
		return nil
	}); err != nil {
		return fmt.Errorf("persist subscription reconciliation: %w", err)
	}
	return nil
}
