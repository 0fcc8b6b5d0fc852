package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/lumera-labs/marketplace-backend/api/middleware"
	"github.com/lumera-labs/marketplace-backend/pkg/enums"
	pkgerrors "github.com/lumera-labs/marketplace-backend/pkg/errors"
)

// actorID returns the authenticated user's id, or an unauthorized error when
// the auth middleware did not run.
func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
	}
	return id, nil
}

// optionalActorID returns the user's id when authenticated, nil otherwise.
func optionalActorID(r *http.Request) *uuid.UUID {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}

func actorIsAdmin(ctx context.Context) bool {
	return middleware.RoleFromContext(ctx) == string(enums.UserRoleAdmin)
}
