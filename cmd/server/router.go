package main

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"trustscore/internal/engine/handler"
	"trustscore/internal/platform/metrics"
	"trustscore/pkg/platform/httputil"
	authmw "trustscore/pkg/platform/middleware/auth"
	"trustscore/pkg/platform/middleware/request"
	"trustscore/pkg/platform/middleware/requesttime"
)

// Service is the engine as the router needs it.
type Service interface {
	handler.Service
	Health(ctx context.Context) error
}

type RouterDeps struct {
	Service  Service
	Tokens   authmw.JWTValidator
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// NewRouter mounts the engine API behind the shared middleware stack.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(deps.Logger))
	r.Use(request.Logger(deps.Logger))
	r.Use(requesttime.Middleware)
	r.Use(deps.Metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if err := deps.Service.Health(req.Context()); err != nil {
			deps.Logger.WarnContext(req.Context(), "health check failed", "error", err)
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	h := handler.New(deps.Service, deps.Logger)
	h.RegisterPublic(r)
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(deps.Tokens, deps.Logger))
		h.Register(r)
	})
	return r
}
