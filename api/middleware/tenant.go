package middleware

import (
	"net/http"

	"github.com/angelmondragon/clinicdesk-backend/api/responses"
	pkgerrors "github.com/angelmondragon/clinicdesk-backend/pkg/errors"
	"github.com/angelmondragon/clinicdesk-backend/pkg/logger"
)

// RequireTenant rejects requests whose context lacks a clinic identifier.
func RequireTenant(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if TenantIDFromContext(r.Context()) == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing clinic context"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
