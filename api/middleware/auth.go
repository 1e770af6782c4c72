package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/angelmondragon/clinicdesk-backend/api/responses"
	pkgAuth "github.com/angelmondragon/clinicdesk-backend/pkg/auth"
	"github.com/angelmondragon/clinicdesk-backend/pkg/config"
	"github.com/angelmondragon/clinicdesk-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/clinicdesk-backend/pkg/errors"
	"github.com/angelmondragon/clinicdesk-backend/pkg/logger"
	"github.com/google/uuid"
)

// Principal is the authenticated actor as stored in the database. The claims
// inside a token are only a hint; the user row decides.
type Principal struct {
	ID       uuid.UUID
	ClinicID uuid.UUID
	Email    string
	Role     enums.StaffRole
}

// PrincipalLoader resolves the active user row behind a set of token claims.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, clinicID, userID uuid.UUID) (*Principal, error)
}

// Auth validates a bearer token, re-fetches the user row, and seeds the
// request context with the verified identity.
func Auth(cfg config.JWTConfig, loader PrincipalLoader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if claims.UserID == uuid.Nil || claims.ClinicID == uuid.Nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid token"))
				return
			}

			principal, err := loader.LoadPrincipal(r.Context(), claims.ClinicID, claims.UserID)
			if err != nil {
				if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "account unavailable"))
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve principal"))
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, principal.ID.String())
			ctx = context.WithValue(ctx, ctxRole, string(principal.Role))
			ctx = context.WithValue(ctx, ctxTenantID, principal.ClinicID.String())

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"user_id":    principal.ID.String(),
					"actor_role": string(principal.Role),
					"tenant_id":  principal.ClinicID.String(),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
