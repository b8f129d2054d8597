package subscriptions

import (
	"time"

	"github.com/feedbackfix/feedbackfix-backend/pkg/enums"
	"github.com/stripe/stripe-go/v84"
)

// MapStripeStatus maps a Stripe subscription status onto the local enum.
// The second return reports whether the status participates in the state
// machine at all; unmapped statuses are ignored by callers.
func MapStripeStatus(status stripe.SubscriptionStatus) (enums.SubscriptionStatus, bool) {
	switch status {
	case stripe.SubscriptionStatusActive:
		return enums.SubscriptionStatusActive, true
	case stripe.SubscriptionStatusPastDue:
		return enums.SubscriptionStatusPastDue, true
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusUnpaid:
		return enums.SubscriptionStatusCancelled, true
	default:
		return enums.SubscriptionStatusInactive, false
	}
}

// PeriodEndFromStripe extracts the current period end from the first
// subscription item, when present.
func PeriodEndFromStripe(sub *stripe.Subscription) *time.Time {
	if sub == nil {
		return nil
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0] != nil {
		if end := sub.Items.Data[0].CurrentPeriodEnd; end != 0 {
			t := time.Unix(end, 0).UTC()
			return &t
		}
	}
	return nil
}

// IsEntitledStatus reports whether the status grants access to gated features.
func IsEntitledStatus(status enums.SubscriptionStatus) bool {
	return status == enums.SubscriptionStatusActive
}
