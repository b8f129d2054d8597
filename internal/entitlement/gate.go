package entitlement

import (
	"context"

	"github.com/feedbackfix/feedbackfix-backend/internal/subscriptions"
	"github.com/feedbackfix/feedbackfix-backend/pkg/db/models"
	"github.com/feedbackfix/feedbackfix-backend/pkg/enums"
	pkgerrors "github.com/feedbackfix/feedbackfix-backend/pkg/errors"
	"github.com/google/uuid"
)

// ReasonSubscriptionRequired is reported when the account holds no active subscription.
const ReasonSubscriptionRequired = "subscription_required"

type subscriptionReader interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
}

// Decision is the outcome of an entitlement check.
type Decision struct {
	Allowed bool
	Status  enums.SubscriptionStatus
	Reason  string
}

// Gate answers whether an account may use the gated translation feature.
type Gate struct {
	subs subscriptionReader
}

// NewGate wires the gate to the subscription store.
func NewGate(subs subscriptionReader) (*Gate, error) {
	if subs == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "subscription reader required")
	}
	return &Gate{subs: subs}, nil
}

// Check resolves the account's subscription status. A missing record is
// treated as inactive. Only an active subscription is allowed.
func (g *Gate) Check(ctx context.Context, userID uuid.UUID) (Decision, error) {
	if userID == uuid.Nil {
		return Decision{}, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	record, err := g.subs.FindByUserID(ctx, userID)
	if err != nil {
		return Decision{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription record")
	}

	status := enums.SubscriptionStatusInactive
	if record != nil {
		status = record.Status
	}

	if !subscriptions.IsEntitledStatus(status) {
		return Decision{Allowed: false, Status: status, Reason: ReasonSubscriptionRequired}, nil
	}
	return Decision{Allowed: true, Status: status}, nil
}

// Require returns a forbidden error unless the account is entitled.
func (g *Gate) Require(ctx context.Context, userID uuid.UUID) error {
	decision, err := g.Check(ctx, userID)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return pkgerrors.New(pkgerrors.CodeForbidden, ReasonSubscriptionRequired)
	}
	return nil
}
