package stripewebhook

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/feedbackfix/feedbackfix-backend/internal/subscriptions"
	"github.com/feedbackfix/feedbackfix-backend/pkg/db/models"
	"github.com/feedbackfix/feedbackfix-backend/pkg/enums"
	pkgerrors "github.com/feedbackfix/feedbackfix-backend/pkg/errors"
	"github.com/feedbackfix/feedbackfix-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"
)

// Ignore reasons reported when an event produces no state change.
const (
	IgnoreReasonUnknownCustomer  = "unknown_customer"
	IgnoreReasonUnhandledType    = "unhandled_event_type"
	IgnoreReasonUnhandledStatus  = "unhandled_subscription_status"
	IgnoreReasonMissingReference = "missing_account_reference"
)

// Outcome reports how an event was applied to the subscription record.
type Outcome struct {
	Applied bool
	Reason  string
}

func applied() Outcome              { return Outcome{Applied: true} }
func ignored(reason string) Outcome { return Outcome{Reason: reason} }

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type ServiceParams struct {
	Repo              subscriptions.Repository
	TransactionRunner txRunner
	Logger            *logger.Logger
}

// Service applies Stripe webhook events to subscription records. Every effect
// writes an absolute status, so replaying an event is a no-op.
type Service struct {
	repo     subscriptions.Repository
	txRunner txRunner
	logg     *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "subscription repo required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		repo:     params.Repo,
		txRunner: params.TransactionRunner,
		logg:     params.Logger,
	}, nil
}

// HandleEvent dispatches a verified Stripe event to the state machine.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) (Outcome, error) {
	if event == nil || event.Data == nil {
		return Outcome{}, pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"event_id":   event.ID,
		"event_type": string(event.Type),
	})

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return Outcome{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode checkout session event")
		}
		return s.applyCheckoutCompleted(logCtx, &session)

	case stripe.EventTypeCustomerSubscriptionUpdated:
		var stripeSub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
			return Outcome{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode subscription event")
		}
		status, handled := subscriptions.MapStripeStatus(stripeSub.Status)
		if !handled {
			s.logg.Info(logCtx, "subscription status not tracked, ignoring event")
			return ignored(IgnoreReasonUnhandledStatus), nil
		}
		return s.applySubscriptionState(logCtx, &stripeSub, status)

	case stripe.EventTypeCustomerSubscriptionDeleted:
		var stripeSub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
			return Outcome{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode subscription event")
		}
		return s.applySubscriptionState(logCtx, &stripeSub, enums.SubscriptionStatusCancelled)

	case stripe.EventTypeInvoicePaymentFailed:
		return s.applyCustomerStatus(logCtx, event.GetObjectValue("customer"), enums.SubscriptionStatusPastDue)

	case stripe.EventTypeInvoicePaymentSucceeded, stripe.EventTypeInvoicePaid:
		return s.applyCustomerStatus(logCtx, event.GetObjectValue("customer"), enums.SubscriptionStatusActive)

	default:
		s.logg.Info(logCtx, "unhandled stripe event type, ignoring")
		return ignored(IgnoreReasonUnhandledType), nil
	}
}

// applyCheckoutCompleted binds the Stripe customer to the account referenced
// on the session and activates the subscription.
func (s *Service) applyCheckoutCompleted(ctx context.Context, session *stripe.CheckoutSession) (Outcome, error) {
	userID, ok := accountReference(session)
	if !ok {
		s.logg.Warn(ctx, "checkout session without usable account reference, ignoring")
		return ignored(IgnoreReasonMissingReference), nil
	}

	customerID := ""
	if session.Customer != nil {
		customerID = session.Customer.ID
	}
	subscriptionID := ""
	if session.Subscription != nil {
		subscriptionID = session.Subscription.ID
	}

	outcome := ignored(IgnoreReasonUnknownCustomer)
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := repo.FindByUserIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		if record == nil {
			record = &models.Subscription{UserID: userID}
			applyReferences(record, customerID, subscriptionID)
			record.Status = enums.SubscriptionStatusActive
			if err := repo.Create(ctx, record); err != nil {
				return err
			}
			outcome = applied()
			return nil
		}

		applyReferences(record, customerID, subscriptionID)
		record.Status = enums.SubscriptionStatusActive
		if err := repo.Update(ctx, record); err != nil {
			return err
		}
		outcome = applied()
		return nil
	})
	if err != nil {
		return Outcome{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply checkout completion")
	}
	return outcome, nil
}

// applySubscriptionState resolves the record via the stored customer reference
// and overwrites its status with the absolute state from the event.
func (s *Service) applySubscriptionState(ctx context.Context, stripeSub *stripe.Subscription, status enums.SubscriptionStatus) (Outcome, error) {
	customerID := ""
	if stripeSub.Customer != nil {
		customerID = stripeSub.Customer.ID
	}
	if strings.TrimSpace(customerID) == "" {
		s.logg.Warn(ctx, "subscription event without customer reference, ignoring")
		return ignored(IgnoreReasonUnknownCustomer), nil
	}

	periodEnd := subscriptions.PeriodEndFromStripe(stripeSub)

	outcome := ignored(IgnoreReasonUnknownCustomer)
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := repo.FindByCustomerIDForUpdate(ctx, customerID)
		if err != nil {
			return err
		}
		if record == nil {
			return nil
		}

		record.Status = status
		if stripeSub.ID != "" {
			subID := stripeSub.ID
			record.StripeSubscriptionID = &subID
		}
		if periodEnd != nil {
			record.CurrentPeriodEnd = periodEnd
		}
		if err := repo.Update(ctx, record); err != nil {
			return err
		}
		outcome = applied()
		return nil
	})
	if err != nil {
		return Outcome{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply subscription state")
	}
	if !outcome.Applied {
		s.logg.Info(ctx, "no subscription record for customer, ignoring event")
	}
	return outcome, nil
}

// applyCustomerStatus handles invoice events, which carry only the customer
// reference and an implied absolute status.
func (s *Service) applyCustomerStatus(ctx context.Context, customerID string, status enums.SubscriptionStatus) (Outcome, error) {
	if strings.TrimSpace(customerID) == "" {
		s.logg.Warn(ctx, "invoice event without customer reference, ignoring")
		return ignored(IgnoreReasonUnknownCustomer), nil
	}

	outcome := ignored(IgnoreReasonUnknownCustomer)
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := repo.FindByCustomerIDForUpdate(ctx, customerID)
		if err != nil {
			return err
		}
		if record == nil {
			return nil
		}

		record.Status = status
		if err := repo.Update(ctx, record); err != nil {
			return err
		}
		outcome = applied()
		return nil
	})
	if err != nil {
		return Outcome{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply invoice status")
	}
	if !outcome.Applied {
		s.logg.Info(ctx, "no subscription record for customer, ignoring event")
	}
	return outcome, nil
}

// accountReference extracts the user id attached at checkout, preferring the
// client reference id over session metadata.
func accountReference(session *stripe.CheckoutSession) (uuid.UUID, bool) {
	candidates := []string{session.ClientReferenceID}
	if session.Metadata != nil {
		candidates = append(candidates, session.Metadata["user_id"])
	}
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if id, err := uuid.Parse(candidate); err == nil && id != uuid.Nil {
			return id, true
		}
	}
	return uuid.Nil, false
}

func applyReferences(record *models.Subscription, customerID, subscriptionID string) {
	if customerID != "" && (record.StripeCustomerID == nil || strings.TrimSpace(*record.StripeCustomerID) == "") {
		record.StripeCustomerID = &customerID
	}
	if subscriptionID != "" {
		record.StripeSubscriptionID = &subscriptionID
	}
}
