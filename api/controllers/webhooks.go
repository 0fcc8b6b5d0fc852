package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/lumera-labs/marketplace-backend/api/responses"
	checkoutsvc "github.com/lumera-labs/marketplace-backend/internal/checkout"
	pkgerrors "github.com/lumera-labs/marketplace-backend/pkg/errors"
	"github.com/lumera-labs/marketplace-backend/pkg/logger"
)

const webhookEventTTL = 24 * time.Hour

type stripeClient interface {
	SigningSecret() string
}

type webhookGuard interface {
	CheckAndMarkWebhookEvent(ctx context.Context, eventID string, ttl time.Duration) (bool, error)
	ClearWebhookEvent(ctx context.Context, eventID string) error
}

// StripeWebhook verifies and processes checkout session events. Events other
// than session completion are acknowledged and dropped.
func StripeWebhook(svc checkoutsvc.Service, client stripeClient, guard webhookGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil || client == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook handler unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		sigHeader := r.Header.Get("Stripe-Signature")
		if sigHeader == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "stripe signature missing"))
			return
		}

		event, err := webhook.ConstructEvent(payload, sigHeader, client.SigningSecret())
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "verify signature"))
			return
		}

		if guard != nil {
			seen, err := guard.CheckAndMarkWebhookEvent(ctx, event.ID, webhookEventTTL)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}
			if seen {
				responses.WriteSuccess(w, map[string]string{"status": "duplicate"})
				return
			}
		}

		if event.Type == "checkout.session.completed" {
			var session stripe.CheckoutSession
			if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode session"))
				return
			}
			if err := svc.HandleSessionCompleted(ctx, session.ID); err != nil {
				if guard != nil {
					_ = guard.ClearWebhookEvent(ctx, event.ID)
				}
				responses.WriteError(ctx, logg, w, err)
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "processed"})
	}
}
