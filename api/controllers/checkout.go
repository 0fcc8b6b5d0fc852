package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/lumera-labs/marketplace-backend/api/responses"
	"github.com/lumera-labs/marketplace-backend/api/validators"
	checkoutsvc "github.com/lumera-labs/marketplace-backend/internal/checkout"
	pkgerrors "github.com/lumera-labs/marketplace-backend/pkg/errors"
	"github.com/lumera-labs/marketplace-backend/pkg/logger"
)

// CreateCheckoutSession opens a hosted payment session for a cart. The
// storefront origin comes from the request body so redirect URLs land back
// on the right deployment.
func CreateCheckoutSession(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload checkoutsvc.CreateSessionInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.CreateSession(r.Context(), optionalActorID(r), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, session)
	}
}

// CheckoutStatus is the polling endpoint clients hit after redirect.
func CheckoutStatus(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := strings.TrimSpace(chi.URLParam(r, "sessionId"))
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "session id is required"))
			return
		}

		status, err := svc.SessionStatus(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, status)
	}
}
