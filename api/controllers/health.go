package controllers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/amontes/storefront-backend/api/responses"
	"github.com/amontes/storefront-backend/pkg/config"
	"github.com/amontes/storefront-backend/pkg/db"
	pkgerrors "github.com/amontes/storefront-backend/pkg/errors"
	"github.com/amontes/storefront-backend/pkg/logger"
	"github.com/amontes/storefront-backend/pkg/redis"
)

const readyProbeTimeout = 5 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady answers ready only when every wired dependency responds.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Storefront-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyProbeTimeout)
		defer cancel()

		var errs []error
		if dbP != nil {
			if err := dbP.Ping(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		if redisClient != nil {
			if err := redisClient.Ping(ctx); err != nil {
				errs = append(errs, err)
			}
		}

		if combined := multierr.Combine(errs...); combined != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, combined, "readiness probe failed"))
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
