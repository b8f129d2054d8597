package controllers

import (
	"net/http"

	"github.com/feedbackfix/feedbackfix-backend/api/responses"
	"github.com/feedbackfix/feedbackfix-backend/internal/subscriptions"
	pkgerrors "github.com/feedbackfix/feedbackfix-backend/pkg/errors"
	"github.com/feedbackfix/feedbackfix-backend/pkg/logger"
)

type checkoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
}

// BillingCheckout starts a Stripe Checkout session for the caller.
func BillingCheckout(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		checkoutURL, err := svc.StartCheckout(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, checkoutResponse{CheckoutURL: checkoutURL})
	}
}

// BillingSubscription returns the caller's subscription record.
func BillingSubscription(svc subscriptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "billing service unavailable"))
			return
		}

		userID, err := currentUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sub, err := svc.GetForUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, sub)
	}
}
