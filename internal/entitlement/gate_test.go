package entitlement

import (
	"context"
	"errors"
	"testing"

	"github.com/feedbackfix/feedbackfix-backend/pkg/db/models"
	"github.com/feedbackfix/feedbackfix-backend/pkg/enums"
	pkgerrors "github.com/feedbackfix/feedbackfix-backend/pkg/errors"
	"github.com/google/uuid"
)

type stubSubs struct {
	record *models.Subscription
	err    error
}

func (s *stubSubs) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	return s.record, s.err
}

func TestCheckAllowsOnlyActive(t *testing.T) {
	cases := []struct {
		status  enums.SubscriptionStatus
		allowed bool
	}{
		{enums.SubscriptionStatusActive, true},
		{enums.SubscriptionStatusInactive, false},
		{enums.SubscriptionStatusPastDue, false},
		{enums.SubscriptionStatusCancelled, false},
	}

	for _, tc := range cases {
		gate, err := NewGate(&stubSubs{record: &models.Subscription{Status: tc.status}})
		if err != nil {
			t.Fatalf("new gate: %v", err)
		}

		decision, err := gate.Check(context.Background(), uuid.New())
		if err != nil {
			t.Fatalf("status %s: check: %v", tc.status, err)
		}
		if decision.Allowed != tc.allowed {
			t.Fatalf("status %s: expected allowed=%t", tc.status, tc.allowed)
		}
		if !tc.allowed && decision.Reason != ReasonSubscriptionRequired {
			t.Fatalf("status %s: expected reason %q, got %q", tc.status, ReasonSubscriptionRequired, decision.Reason)
		}
	}
}

func TestCheckMissingRecordIsInactive(t *testing.T) {
	gate, err := NewGate(&stubSubs{})
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}

	decision, err := gate.Check(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if decision.Allowed {
		t.Fatal("expected denial without a subscription record")
	}
	if decision.Status != enums.SubscriptionStatusInactive {
		t.Fatalf("expected inactive status, got %s", decision.Status)
	}
}

func TestRequireReturnsForbidden(t *testing.T) {
	gate, err := NewGate(&stubSubs{record: &models.Subscription{Status: enums.SubscriptionStatusPastDue}})
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}

	err = gate.Require(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected forbidden error")
	}
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden code, got %v", err)
	}
}

func TestCheckPropagatesStoreFailure(t *testing.T) {
	gate, err := NewGate(&stubSubs{err: errors.New("db down")})
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}

	if _, err := gate.Check(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected dependency error")
	}
}
