package subscriptions

import (
	"context"
	"errors"
	"strings"

	"github.com/feedbackfix/feedbackfix-backend/pkg/config"
	"github.com/feedbackfix/feedbackfix-backend/pkg/db/models"
	"github.com/feedbackfix/feedbackfix-backend/pkg/enums"
	pkgerrors "github.com/feedbackfix/feedbackfix-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"
)

type userReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Service defines the subscription billing surface.
type Service interface {
	StartCheckout(ctx context.Context, userID uuid.UUID) (string, error)
	GetForUser(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
}

// ServiceParams groups dependencies for the subscription service.
type ServiceParams struct {
	Repo         Repository
	Users        userReader
	StripeClient StripeBillingClient
	Config       config.StripeConfig
}

type service struct {
	repo    Repository
	users   userReader
	stripe  StripeBillingClient
	priceID string
	cfg     config.StripeConfig
}

// NewService builds a subscription service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "subscription repo required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repo required")
	}
	if params.StripeClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stripe client required")
	}
	priceID := strings.TrimSpace(params.Config.SubscriptionPriceID)
	if priceID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "subscription price id required")
	}
	return &service{
		repo:    params.Repo,
		users:   params.Users,
		stripe:  params.StripeClient,
		priceID: priceID,
		cfg:     params.Config,
	}, nil
}

// StartCheckout ensures the user has a Stripe customer bound to their
// subscription record and returns a hosted checkout URL.
func (s *service) StartCheckout(ctx context.Context, userID uuid.UUID) (string, error) {
	if userID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	record, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription record")
	}

	customerID, err := s.ensureCustomer(ctx, user, record)
	if err != nil {
		return "", err
	}

	sessionParams := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(customerID),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		ClientReferenceID:  stripe.String(userID.String()),
		SuccessURL:         stripe.String(s.cfg.CheckoutSuccessURL),
		CancelURL:          stripe.String(s.cfg.CheckoutCancelURL),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{"user_id": userID.String()},
	}

	session, err := s.stripe.CreateCheckoutSession(ctx, sessionParams)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}
	if session == nil || session.URL == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "checkout session url missing")
	}
	return session.URL, nil
}

// GetForUser returns the user's subscription record, synthesizing an inactive
// one when no record has been created yet.
func (s *service) GetForUser(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	record, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription record")
	}
	if record == nil {
		return &models.Subscription{
			UserID: userID,
			Status: enums.SubscriptionStatusInactive,
		}, nil
	}
	return record, nil
}

func (s *service) ensureCustomer(ctx context.Context, user *models.User, record *models.Subscription) (string, error) {
	if record != nil && record.StripeCustomerID != nil && strings.TrimSpace(*record.StripeCustomerID) != "" {
		return *record.StripeCustomerID, nil
	}

	created, err := s.stripe.CreateCustomer(ctx, &stripe.CustomerParams{
		Email:    stripe.String(user.Email),
		Metadata: map[string]string{"user_id": user.ID.String()},
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe customer")
	}
	if created == nil || created.ID == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "stripe customer id missing")
	}

	customerID := created.ID
	if record == nil {
		record = &models.Subscription{
			UserID:           user.ID,
			StripeCustomerID: &customerID,
			Status:           enums.SubscriptionStatusInactive,
		}
		if err := s.repo.Create(ctx, record); err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subscription record")
		}
		return customerID, nil
	}

	record.StripeCustomerID = &customerID
	if err := s.repo.Update(ctx, record); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bind stripe customer")
	}
	return customerID, nil
}
