// Package handler exposes the engine over JSON HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"trustscore/internal/aggregation"
	"trustscore/internal/engine"
	"trustscore/internal/registry"
	"trustscore/internal/sources"
	"trustscore/pkg/domain"
	dErrors "trustscore/pkg/domain-errors"
	"trustscore/pkg/platform/httputil"
	"trustscore/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

// Service is the engine surface the handler calls.
type Service interface {
	InitializeRegistry(ctx context.Context, params registry.Params) (*registry.Registry, error)
	InitializeScoringConfig(ctx context.Context) (*registry.ScoringConfig, error)
	SubmitProof(ctx context.Context, req engine.SubmitRequest) (*engine.SubmitResult, error)
	RevokeProof(ctx context.Context, source sources.Source) (*engine.RevokeResult, error)
	VerifyProof(ctx context.Context, identity domain.Identity) (aggregation.ProofStatus, error)
	UpdateMinScore(ctx context.Context, minScore uint64) (*registry.Registry, error)
	UpdateScoringConfig(ctx context.Context, source sources.Source, weight uint64) (*registry.ScoringConfig, error)
	UpdateRegistryConfig(ctx context.Context, cooldown int64, bonusPercent uint8, ttl int64) (*registry.Registry, error)
	InitiateVerifierRotation(ctx context.Context, next domain.Identity, delaySeconds int64) (*registry.Registry, error)
	FinalizeVerifierRotation(ctx context.Context) (*registry.Registry, error)
	GetRegistry(ctx context.Context) (*registry.Registry, error)
	GetScoringConfig(ctx context.Context) (*registry.ScoringConfig, error)
	GetSourceProof(ctx context.Context, identity domain.Identity, source sources.Source) (*aggregation.IndividualSourceProof, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the routes that need an authenticated wallet.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/registry", h.HandleInitializeRegistry)
	r.Get("/v1/registry", h.HandleGetRegistry)
	r.Put("/v1/registry/min-score", h.HandleUpdateMinScore)
	r.Put("/v1/registry/config", h.HandleUpdateRegistryConfig)
	r.Post("/v1/registry/verifier-rotation", h.HandleInitiateRotation)
	r.Post("/v1/registry/verifier-rotation/finalize", h.HandleFinalizeRotation)

	r.Post("/v1/scoring-config", h.HandleInitializeScoringConfig)
	r.Get("/v1/scoring-config", h.HandleGetScoringConfig)
	r.Put("/v1/scoring-config/{source}", h.HandleUpdateWeight)

	r.Post("/v1/proofs", h.HandleSubmitProof)
	r.Post("/v1/proofs/{source}/revoke", h.HandleRevokeProof)
	r.Get("/v1/proofs/{source}", h.HandleGetSourceProof)
}

// RegisterPublic mounts the routes anyone may call.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/v1/identities/{identity}/status", h.HandleVerifyProof)
}

// authenticated returns the caller or writes a 401.
func (h *Handler) authenticated(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	caller := requestcontext.Identity(r.Context())
	if caller.IsZero() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return domain.Identity{}, false
	}
	return caller, true
}

// respond writes body, or the error when err is set.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, op string, start time.Time, status int, body any, err error) {
	ctx := r.Context()
	if err != nil {
		h.logger.WarnContext(ctx, op+" failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, op+" succeeded",
		"request_id", requestcontext.RequestID(ctx),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, status, body)
}

func sourceParam(w http.ResponseWriter, r *http.Request) (sources.Source, bool) {
	source, err := sources.ParseSource(chi.URLParam(r, "source"))
	if err != nil {
		httputil.WriteError(w, err)
		return 0, false
	}
	return source, true
}

// HandleInitializeRegistry handles POST /v1/registry.
func (h *Handler) HandleInitializeRegistry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	if _, ok := h.authenticated(w, r); !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[InitializeRegistryRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	reg, err := h.service.InitializeRegistry(ctx, req.Params())
	if err != nil {
		h.respond(w, r, "initialize registry", start, 0, nil, err)
		return
	}
	h.respond(w, r, "initialize registry", start, http.StatusCreated, FromRegistry(reg), nil)
}

// HandleGetRegistry handles GET /v1/registry.
func (h *Handler) HandleGetRegistry(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if _, ok := h.authenticated(w, r); !ok {
		return
	}
	reg, err := h.service.GetRegistry(r.Context())
	if err != nil {
		h.respond(w, r, "get registry", start, 0, nil, err)
		return
	}
	h.respond(w, r, "get registry", start, http.StatusOK, FromRegistry(reg), nil)
}

// HandleUpdateMinScore handles PUT /v1/registry/min-score.
func (h *Handler) HandleUpdateMinScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	if _, ok := h.authenticated(w, r); !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateMinScoreRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	reg, err := h.service.UpdateMinScore(ctx, *req.MinScore)
	if err != nil {
		h.respond(w, r, "update min score", start, 0, nil, err)
		return
	}
	h.respond(w, r, "update min score", start, http.StatusOK, FromRegistry(reg), nil)
}

// HandleUpdateRegistryConfig handles PUT /v1/registry/config.
func (h *Handler) HandleUpdateRegistryConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	if _, ok := h.authenticated(w, r); !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateRegistryConfigRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	reg, err := h.service.UpdateRegistryConfig(ctx, *req.CooldownPeriod, *req.DiversityBonusPercent, *req.ProofTTLSeconds)
	if err != nil {
		h.respond(w, r, "update registry config", start, 0, nil, err)
		return
	}
	h.respond(w, r, "update registry config", start, http.StatusOK, FromRegistry(reg), nil)
}

// HandleInitiateRotation handles POST /v1/registry/verifier-rotation.
func (h *Handler) HandleInitiateRotation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	if _, ok := h.authenticated(w, r); !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[InitiateRotationRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	reg, err := h.service.InitiateVerifierRotation(ctx, req.ParsedVerifier(), req.DelaySeconds)
	if err != nil {
		h.respond(w, r, "initiate verifier rotation", start, 0, nil, err)
		return
	}
	h.respond(w, r, "initiate verifier rotation", start, http.StatusAccepted, FromRegistry(reg), nil)
}

// HandleFinalizeRotation handles POST /v1/registry/verifier-rotation/finalize.
func (h *Handler) HandleFinalizeRotation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if _, ok := h.authenticated(w, r); !ok {
		return
	}
	reg, err := h.service.FinalizeVerifierRotation(r.Context())
	if err != nil {
		h.respond(w, r, "finalize verifier rotation", start, 0, nil, err)
		return
	}
	h.respond(w, r, "finalize verifier rotation", start, http.StatusOK, FromRegistry(reg), nil)
}

// HandleInitializeScoringConfig handles POST /v1/scoring-config.
func (h *Handler) HandleInitializeScoringConfig(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if _, ok := h.authenticated(w, r); !ok {
		return
	}
	cfg, err := h.service.InitializeScoringConfig(r.Context())
	if err != nil {
		h.respond(w, r, "initialize scoring config", start, 0, nil, err)
		return
	}
	h.respond(w, r, "initialize scoring config", start, http.StatusCreated, FromScoringConfig(cfg), nil)
}

// HandleGetScoringConfig handles GET /v1/scoring-config.
func (h *Handler) HandleGetScoringConfig(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if _, ok := h.authenticated(w, r); !ok {
		return
	}
	cfg, err := h.service.GetScoringConfig(r.Context())
	if err != nil {
		h.respond(w, r, "get scoring config", start, 0, nil, err)
		return
	}
	h.respond(w, r, "get scoring config", start, http.StatusOK, FromScoringConfig(cfg), nil)
}

// HandleUpdateWeight handles PUT /v1/scoring-config/{source}.
func (h *Handler) HandleUpdateWeight(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	if _, ok := h.authenticated(w, r); !ok {
		return
	}
	source, ok := sourceParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateWeightRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	cfg, err := h.service.UpdateScoringConfig(ctx, source, *req.Weight)
	if err != nil {
		h.respond(w, r, "update scoring weight", start, 0, nil, err)
		return
	}
	h.respond(w, r, "update scoring weight", start, http.StatusOK, FromScoringConfig(cfg), nil)
}

// HandleSubmitProof handles POST /v1/proofs.
func (h *Handler) HandleSubmitProof(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()
	if _, ok := h.authenticated(w, r); !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SubmitProofRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	res, err := h.service.SubmitProof(ctx, req.Parsed())
	if err != nil {
		h.respond(w, r, "submit proof", start, 0, nil, err)
		return
	}
	h.respond(w, r, "submit proof", start, http.StatusCreated, FromSubmitResult(res), nil)
}

// HandleRevokeProof handles POST /v1/proofs/{source}/revoke.
func (h *Handler) HandleRevokeProof(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if _, ok := h.authenticated(w, r); !ok {
		return
	}
	source, ok := sourceParam(w, r)
	if !ok {
		return
	}
	res, err := h.service.RevokeProof(r.Context(), source)
	if err != nil {
		h.respond(w, r, "revoke proof", start, 0, nil, err)
		return
	}
	h.respond(w, r, "revoke proof", start, http.StatusOK, FromRevokeResult(res), nil)
}

// HandleGetSourceProof handles GET /v1/proofs/{source} for the caller.
func (h *Handler) HandleGetSourceProof(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	caller, ok := h.authenticated(w, r)
	if !ok {
		return
	}
	source, ok := sourceParam(w, r)
	if !ok {
		return
	}
	proof, err := h.service.GetSourceProof(r.Context(), caller, source)
	if err != nil {
		h.respond(w, r, "get source proof", start, 0, nil, err)
		return
	}
	h.respond(w, r, "get source proof", start, http.StatusOK, FromProof(proof), nil)
}

// HandleVerifyProof handles GET /v1/identities/{identity}/status. With
// ?require=true an unverified identity is an error rather than a status.
func (h *Handler) HandleVerifyProof(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	identity, err := domain.ParseIdentity(chi.URLParam(r, "identity"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	require := false
	if raw := r.URL.Query().Get("require"); raw != "" {
		require, err = strconv.ParseBool(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "require must be a boolean"))
			return
		}
	}
	status, err := h.service.VerifyProof(r.Context(), identity)
	if err == nil && require {
		err = status.Require()
	}
	if err != nil {
		h.respond(w, r, "verify proof", start, 0, nil, err)
		return
	}
	h.respond(w, r, "verify proof", start, http.StatusOK, FromStatus(identity, status), nil)
}
