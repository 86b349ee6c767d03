// Package engine runs identity-attestation operations against the record
// store. Each operation reads the records it needs, applies the pure
// aggregation or registry logic, and writes the result in one transaction.
// Events are published only after the transaction commits.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"trustscore/internal/aggregation"
	"trustscore/internal/engine/metrics"
	"trustscore/internal/events"
	"trustscore/internal/store"
	dErrors "trustscore/pkg/domain-errors"
	"trustscore/pkg/platform/sentinel"
	"trustscore/pkg/requestcontext"
)

var tracer = otel.Tracer("trustscore.engine")

// maxTxAttempts bounds how often a transaction is re-run after losing a
// write conflict. Every attempt re-reads state, so replay guards see the
// winner's writes.
const maxTxAttempts = 3

const (
	opInitializeRegistry       = "initialize_registry"
	opInitializeScoringConfig  = "initialize_scoring_config"
	opSubmitProof              = "submit_proof"
	opRevokeProof              = "revoke_proof"
	opVerifyProof              = "verify_proof"
	opUpdateMinScore           = "update_min_score"
	opUpdateScoringConfig      = "update_scoring_config"
	opUpdateRegistryConfig     = "update_registry_config"
	opInitiateVerifierRotation = "initiate_verifier_rotation"
	opFinalizeVerifierRotation = "finalize_verifier_rotation"
	opGetRegistry              = "get_registry"
	opGetScoringConfig         = "get_scoring_config"
	opGetSourceProof           = "get_source_proof"
)

type Service struct {
	store     store.Store
	engine    *aggregation.Engine
	publisher events.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

func New(st store.Store, engine *aggregation.Engine, opts ...Option) *Service {
	s := &Service{
		store:     st,
		engine:    engine,
		publisher: discardPublisher{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Health reports whether the record store is reachable.
func (s *Service) Health(ctx context.Context) error {
	return s.store.Health(ctx)
}

// begin opens a span for op. The returned function records the outcome and
// translates store errors; call it with the operation's final error.
func (s *Service) begin(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error) error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "engine."+op, trace.WithAttributes(attrs...))
	return ctx, func(err error) error {
		defer span.End()
		err = translate(err)
		code := "ok"
		if err != nil {
			code = string(dErrors.CodeOf(err))
			span.RecordError(err)
			span.SetStatus(codes.Error, code)
			s.logFailure(ctx, op, err)
		}
		span.SetAttributes(attribute.String("result.code", code))
		s.metrics.ObserveOperation(op, code, time.Since(start))
		return err
	}
}

func (s *Service) logFailure(ctx context.Context, op string, err error) {
	args := []any{
		"operation", op,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
		"caller", requestcontext.Identity(ctx).String(),
	}
	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeTimeout:
		s.logger.ErrorContext(ctx, "engine operation failed", args...)
	default:
		s.logger.WarnContext(ctx, "engine operation rejected", args...)
	}
}

// update runs fn in a read-write transaction, re-running it when the store
// reports a conflicting concurrent commit.
func (s *Service) update(ctx context.Context, fn func(ctx context.Context, rec *store.Records) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
			return fn(ctx, store.NewRecords(tx))
		})
		if !errors.Is(err, sentinel.ErrConflict) {
			return err
		}
		s.metrics.IncrementConflicts()
		s.logger.DebugContext(ctx, "store transaction conflict, retrying",
			"attempt", attempt,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return err
}

func (s *Service) view(ctx context.Context, fn func(ctx context.Context, rec *store.Records) error) error {
	return s.store.View(ctx, func(ctx context.Context, tx store.Tx) error {
		return fn(ctx, store.NewRecords(tx))
	})
}

// translate maps infrastructure sentinels to coded errors. Coded errors
// pass through unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var coded *dErrors.Error
	if errors.As(err, &coded) {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "concurrent update, retry the request")
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "record not found")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "operation timed out")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "store operation failed")
	}
}

func unixNow(ctx context.Context) int64 {
	return requestcontext.Now(ctx).Unix()
}

type discardPublisher struct{}

func (discardPublisher) Publish(context.Context, ...events.Event) {}
