package controllers

import (
	"context"
	"net/http"

	"github.com/angelmondragon/clinicdesk-backend/api/responses"
	"github.com/angelmondragon/clinicdesk-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/clinicdesk-backend/pkg/errors"
	"github.com/angelmondragon/clinicdesk-backend/pkg/logger"
)

// Pinger is the health-check surface a dependency must expose.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthLive reports process liveness.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ClinicDesk-Env", cfg.App.Env)
		responses.WriteSuccess(w, "ok", map[string]string{"status": "live"})
	}
}

// HealthReady verifies the database and, when configured, the Redis
// connection before reporting ready.
func HealthReady(cfg *config.Config, db Pinger, cache Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-ClinicDesk-Env", cfg.App.Env)

		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
		}
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unreachable"))
				return
			}
		}

		responses.WriteSuccess(w, "ok", map[string]string{"status": "ready"})
	}
}
