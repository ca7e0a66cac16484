package controllers

import (
	"context"
	"net/http"

	"github.com/calebmorris/cartly-backend/api/responses"
	"github.com/calebmorris/cartly-backend/pkg/config"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthLive reports process liveness only.
func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Cartly-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady checks the backing stores. Redis being down degrades the
// response but does not fail it, since every request path can survive
// a cache outage.
func HealthReady(cfg *config.Config, database, cache pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Cartly-Env", cfg.App.Env)

		checks := map[string]string{
			"database": "ok",
			"redis":    "ok",
		}
		status := "ready"
		httpStatus := http.StatusOK

		if database != nil {
			if err := database.Ping(r.Context()); err != nil {
				checks["database"] = err.Error()
				status = "unavailable"
				httpStatus = http.StatusServiceUnavailable
			}
		}
		if cache != nil {
			if err := cache.Ping(r.Context()); err != nil {
				checks["redis"] = err.Error()
				if status == "ready" {
					status = "degraded"
				}
			}
		}

		responses.WriteSuccessStatus(w, httpStatus, map[string]any{
			"status": status,
			"checks": checks,
		})
	}
}
