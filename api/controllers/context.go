package controllers

import (
	"net/http"

	"github.com/angelmondragon/clinicdesk-backend/api/middleware"
	pkgerrors "github.com/angelmondragon/clinicdesk-backend/pkg/errors"
	"github.com/google/uuid"
)

func clinicFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.TenantIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing clinic context")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid clinic context")
	}
	return id, nil
}

func roleFromRequest(r *http.Request) string {
	return middleware.RoleFromContext(r.Context())
}

func actorFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing user context")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user context")
	}
	return id, nil
}
