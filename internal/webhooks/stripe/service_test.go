package stripewebhook

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/feedbackfix/feedbackfix-backend/internal/subscriptions"
	"github.com/feedbackfix/feedbackfix-backend/pkg/db/models"
	"github.com/feedbackfix/feedbackfix-backend/pkg/enums"
	"github.com/feedbackfix/feedbackfix-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubSubscriptionRepo struct {
	byUser     map[uuid.UUID]*models.Subscription
	byCustomer map[string]*models.Subscription
	created    []*models.Subscription
	updates    int
}

func newStubSubscriptionRepo() *stubSubscriptionRepo {
	return &stubSubscriptionRepo{
		byUser:     map[uuid.UUID]*models.Subscription{},
		byCustomer: map[string]*models.Subscription{},
	}
}

func (s *stubSubscriptionRepo) seed(record *models.Subscription) {
	s.byUser[record.UserID] = record
	if record.StripeCustomerID != nil {
		s.byCustomer[*record.StripeCustomerID] = record
	}
}

func (s *stubSubscriptionRepo) WithTx(tx *gorm.DB) subscriptions.Repository { return s }

func (s *stubSubscriptionRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	return s.byUser[userID], nil
}

func (s *stubSubscriptionRepo) FindByCustomerIDForUpdate(ctx context.Context, customerID string) (*models.Subscription, error) {
	return s.byCustomer[customerID], nil
}

func (s *stubSubscriptionRepo) FindByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	return s.byUser[userID], nil
}

func (s *stubSubscriptionRepo) Create(ctx context.Context, sub *models.Subscription) error {
	s.created = append(s.created, sub)
	s.seed(sub)
	return nil
}

func (s *stubSubscriptionRepo) Update(ctx context.Context, sub *models.Subscription) error {
	s.updates++
	s.seed(sub)
	return nil
}

func (s *stubSubscriptionRepo) ListStale(ctx context.Context, updatedBefore time.Time, limit int) ([]models.Subscription, error) {
	return nil, nil
}

func newWebhookService(t *testing.T, repo subscriptions.Repository) *Service {
	t.Helper()
	service, err := NewService(ServiceParams{
		Repo:              repo,
		TransactionRunner: stubTxRunner{},
		Logger:            logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	return service
}

func subscriptionEvent(t *testing.T, eventType stripe.EventType, sub *stripe.Subscription) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(sub)
	if err != nil {
		t.Fatalf("marshal subscription: %v", err)
	}
	return &stripe.Event{
		ID:   "evt_" + uuid.NewString(),
		Type: eventType,
		Data: &stripe.EventData{Raw: raw},
	}
}

func invoiceEvent(t *testing.T, eventType stripe.EventType, customerID string) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]any{"customer": customerID})
	if err != nil {
		t.Fatalf("marshal invoice: %v", err)
	}
	return &stripe.Event{
		ID:   "evt_" + uuid.NewString(),
		Type: eventType,
		Data: &stripe.EventData{Raw: raw, Object: map[string]any{"customer": customerID}},
	}
}

func TestHandleCheckoutCompletedActivatesNewRecord(t *testing.T) {
	userID := uuid.New()
	repo := newStubSubscriptionRepo()
	service := newWebhookService(t, repo)

	session := &stripe.CheckoutSession{
		ClientReferenceID: userID.String(),
		Customer:          &stripe.Customer{ID: "cus_1"},
		Subscription:      &stripe.Subscription{ID: "sub_1"},
	}
	raw, _ := json.Marshal(session)
	event := &stripe.Event{
		ID:   "evt_checkout",
		Type: stripe.EventTypeCheckoutSessionCompleted,
		Data: &stripe.EventData{Raw: raw},
	}

	outcome, err := service.HandleEvent(context.Background(), event)
	if err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if !outcome.Applied {
		t.Fatalf("expected event applied, got reason %q", outcome.Reason)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected record created")
	}
	record := repo.created[0]
	if record.Status != enums.SubscriptionStatusActive {
		t.Fatalf("expected active status, got %s", record.Status)
	}
	if record.StripeCustomerID == nil || *record.StripeCustomerID != "cus_1" {
		t.Fatal("expected customer reference bound")
	}
}

func TestHandleCheckoutCompletedKeepsExistingCustomerBinding(t *testing.T) {
	userID := uuid.New()
	existingCustomer := "cus_first"
	repo := newStubSubscriptionRepo()
	repo.seed(&models.Subscription{
		UserID:           userID,
		StripeCustomerID: &existingCustomer,
		Status:           enums.SubscriptionStatusCancelled,
	})
	service := newWebhookService(t, repo)

	session := &stripe.CheckoutSession{
		ClientReferenceID: userID.String(),
		Customer:          &stripe.Customer{ID: "cus_second"},
	}
	raw, _ := json.Marshal(session)
	event := &stripe.Event{
		ID:   "evt_checkout",
		Type: stripe.EventTypeCheckoutSessionCompleted,
		Data: &stripe.EventData{Raw: raw},
	}

	outcome, err := service.HandleEvent(context.Background(), event)
	if err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if !outcome.Applied {
		t.Fatal("expected event applied")
	}
	record := repo.byUser[userID]
	if record.Status != enums.SubscriptionStatusActive {
		t.Fatalf("expected reactivation, got %s", record.Status)
	}
	if *record.StripeCustomerID != existingCustomer {
		t.Fatal("expected original customer binding preserved")
	}
}

func TestHandleSubscriptionUpdatedStatusMap(t *testing.T) {
	cases := []struct {
		provider stripe.SubscriptionStatus
		want     enums.SubscriptionStatus
	}{
		{stripe.SubscriptionStatusActive, enums.SubscriptionStatusActive},
		{stripe.SubscriptionStatusPastDue, enums.SubscriptionStatusPastDue},
		{stripe.SubscriptionStatusCanceled, enums.SubscriptionStatusCancelled},
		{stripe.SubscriptionStatusUnpaid, enums.SubscriptionStatusCancelled},
	}

	for _, tc := range cases {
		customerID := "cus_map"
		repo := newStubSubscriptionRepo()
		repo.seed(&models.Subscription{
			UserID:           uuid.New(),
			StripeCustomerID: &customerID,
			Status:           enums.SubscriptionStatusActive,
		})
		service := newWebhookService(t, repo)

		event := subscriptionEvent(t, stripe.EventTypeCustomerSubscriptionUpdated, &stripe.Subscription{
			ID:       "sub_map",
			Status:   tc.provider,
			Customer: &stripe.Customer{ID: customerID},
		})

		outcome, err := service.HandleEvent(context.Background(), event)
		if err != nil {
			t.Fatalf("provider %s: handle event: %v", tc.provider, err)
		}
		if !outcome.Applied {
			t.Fatalf("provider %s: expected applied", tc.provider)
		}
		if got := repo.byCustomer[customerID].Status; got != tc.want {
			t.Fatalf("provider %s: expected %s, got %s", tc.provider, tc.want, got)
		}
	}
}

func TestHandleSubscriptionDeletedCancels(t *testing.T) {
	customerID := "cus_del"
	repo := newStubSubscriptionRepo()
	repo.seed(&models.Subscription{
		UserID:           uuid.New(),
		StripeCustomerID: &customerID,
		Status:           enums.SubscriptionStatusActive,
	})
	service := newWebhookService(t, repo)

	event := subscriptionEvent(t, stripe.EventTypeCustomerSubscriptionDeleted, &stripe.Subscription{
		ID:       "sub_del",
		Status:   stripe.SubscriptionStatusCanceled,
		Customer: &stripe.Customer{ID: customerID},
	})

	outcome, err := service.HandleEvent(context.Background(), event)
	if err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if !outcome.Applied {
		t.Fatal("expected applied")
	}
	if got := repo.byCustomer[customerID].Status; got != enums.SubscriptionStatusCancelled {
		t.Fatalf("expected cancelled, got %s", got)
	}
}

func TestHandleInvoiceEventsDriveRecovery(t *testing.T) {
	customerID := "cus_recovery"
	repo := newStubSubscriptionRepo()
	repo.seed(&models.Subscription{
		UserID:           uuid.New(),
		StripeCustomerID: &customerID,
		Status:           enums.SubscriptionStatusActive,
	})
	service := newWebhookService(t, repo)

	outcome, err := service.HandleEvent(context.Background(), invoiceEvent(t, stripe.EventTypeInvoicePaymentFailed, customerID))
	if err != nil {
		t.Fatalf("payment failed: %v", err)
	}
	if !outcome.Applied || repo.byCustomer[customerID].Status != enums.SubscriptionStatusPastDue {
		t.Fatal("expected past_due after failed payment")
	}

	outcome, err = service.HandleEvent(context.Background(), invoiceEvent(t, stripe.EventTypeInvoicePaymentSucceeded, customerID))
	if err != nil {
		t.Fatalf("payment succeeded: %v", err)
	}
	if !outcome.Applied || repo.byCustomer[customerID].Status != enums.SubscriptionStatusActive {
		t.Fatal("expected active after recovered payment")
	}
}

func TestHandleEventIdempotentReplay(t *testing.T) {
	customerID := "cus_replay"
	repo := newStubSubscriptionRepo()
	repo.seed(&models.Subscription{
		UserID:           uuid.New(),
		StripeCustomerID: &customerID,
		Status:           enums.SubscriptionStatusActive,
	})
	service := newWebhookService(t, repo)

	event := subscriptionEvent(t, stripe.EventTypeCustomerSubscriptionDeleted, &stripe.Subscription{
		ID:       "sub_replay",
		Status:   stripe.SubscriptionStatusCanceled,
		Customer: &stripe.Customer{ID: customerID},
	})

	for i := 0; i < 2; i++ {
		outcome, err := service.HandleEvent(context.Background(), event)
		if err != nil {
			t.Fatalf("replay %d: %v", i, err)
		}
		if !outcome.Applied {
			t.Fatalf("replay %d: expected applied", i)
		}
	}
	if got := repo.byCustomer[customerID].Status; got != enums.SubscriptionStatusCancelled {
		t.Fatalf("expected cancelled after replay, got %s", got)
	}
}

func TestHandleEventUnknownCustomerIgnored(t *testing.T) {
	repo := newStubSubscriptionRepo()
	service := newWebhookService(t, repo)

	event := subscriptionEvent(t, stripe.EventTypeCustomerSubscriptionUpdated, &stripe.Subscription{
		ID:       "sub_ghost",
		Status:   stripe.SubscriptionStatusActive,
		Customer: &stripe.Customer{ID: "cus_ghost"},
	})

	outcome, err := service.HandleEvent(context.Background(), event)
	if err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if outcome.Applied {
		t.Fatal("expected ignored outcome")
	}
	if outcome.Reason != IgnoreReasonUnknownCustomer {
		t.Fatalf("expected unknown customer reason, got %q", outcome.Reason)
	}
	if repo.updates != 0 || len(repo.created) != 0 {
		t.Fatal("expected no record mutation")
	}
}

func TestHandleEventUnhandledTypeIgnored(t *testing.T) {
	service := newWebhookService(t, newStubSubscriptionRepo())

	event := &stripe.Event{
		ID:   "evt_misc",
		Type: stripe.EventType("charge.refunded"),
		Data: &stripe.EventData{Raw: []byte(`{}`)},
	}

	outcome, err := service.HandleEvent(context.Background(), event)
	if err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if outcome.Applied || outcome.Reason != IgnoreReasonUnhandledType {
		t.Fatalf("expected unhandled type ignore, got %+v", outcome)
	}
}

func TestHandleEventUntrackedStatusIgnored(t *testing.T) {
	customerID := "cus_trial"
	repo := newStubSubscriptionRepo()
	repo.seed(&models.Subscription{
		UserID:           uuid.New(),
		StripeCustomerID: &customerID,
		Status:           enums.SubscriptionStatusInactive,
	})
	service := newWebhookService(t, repo)

	event := subscriptionEvent(t, stripe.EventTypeCustomerSubscriptionUpdated, &stripe.Subscription{
		ID:       "sub_trial",
		Status:   stripe.SubscriptionStatusTrialing,
		Customer: &stripe.Customer{ID: customerID},
	})

	outcome, err := service.HandleEvent(context.Background(), event)
	if err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if outcome.Applied || outcome.Reason != IgnoreReasonUnhandledStatus {
		t.Fatalf("expected unhandled status ignore, got %+v", outcome)
	}
	if repo.byCustomer[customerID].Status != enums.SubscriptionStatusInactive {
		t.Fatal("expected status untouched")
	}
}
