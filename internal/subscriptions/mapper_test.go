package subscriptions

import (
	"testing"
	"time"

	"github.com/feedbackfix/feedbackfix-backend/pkg/enums"
	"github.com/stripe/stripe-go/v84"
)

func TestMapStripeStatus(t *testing.T) {
	cases := []struct {
		in      stripe.SubscriptionStatus
		want    enums.SubscriptionStatus
		handled bool
	}{
		{stripe.SubscriptionStatusActive, enums.SubscriptionStatusActive, true},
		{stripe.SubscriptionStatusPastDue, enums.SubscriptionStatusPastDue, true},
		{stripe.SubscriptionStatusCanceled, enums.SubscriptionStatusCancelled, true},
		{stripe.SubscriptionStatusUnpaid, enums.SubscriptionStatusCancelled, true},
		{stripe.SubscriptionStatusTrialing, enums.SubscriptionStatusInactive, false},
		{stripe.SubscriptionStatusIncomplete, enums.SubscriptionStatusInactive, false},
	}

	for _, tc := range cases {
		got, handled := MapStripeStatus(tc.in)
		if handled != tc.handled {
			t.Fatalf("status %s: expected handled=%t", tc.in, tc.handled)
		}
		if handled && got != tc.want {
			t.Fatalf("status %s: expected %s, got %s", tc.in, tc.want, got)
		}
	}
}

func TestPeriodEndFromStripe(t *testing.T) {
	now := time.Now().Unix()
	sub := &stripe.Subscription{
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{{CurrentPeriodEnd: now}},
		},
	}

	end := PeriodEndFromStripe(sub)
	if end == nil || end.Unix() != now {
		t.Fatalf("expected period end %d, got %v", now, end)
	}

	if PeriodEndFromStripe(nil) != nil {
		t.Fatal("expected nil period end for nil subscription")
	}
	if PeriodEndFromStripe(&stripe.Subscription{}) != nil {
		t.Fatal("expected nil period end without items")
	}
}

func TestIsEntitledStatus(t *testing.T) {
	if !IsEntitledStatus(enums.SubscriptionStatusActive) {
		t.Fatal("expected active to be entitled")
	}
	for _, status := range []enums.SubscriptionStatus{
		enums.SubscriptionStatusInactive,
		enums.SubscriptionStatusPastDue,
		enums.SubscriptionStatusCancelled,
	} {
		if IsEntitledStatus(status) {
			t.Fatalf("expected %s to be unentitled", status)
		}
	}
}
