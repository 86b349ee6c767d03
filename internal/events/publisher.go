package events

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultBatchSize     = 100
	defaultFlushInterval = time.Second
	drainTimeout         = 5 * time.Second
)

// BufferedPublisher queues events in a bounded ring buffer and delivers them
// from Run. Publish never blocks.
type BufferedPublisher struct {
	sink          Sink
	buf           *ringBuffer
	breaker       *circuitBreaker
	logger        *slog.Logger
	metrics       *Metrics
	batchSize     int
	flushInterval time.Duration
	notify        chan struct{}
}

type Option func(*BufferedPublisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *BufferedPublisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithMetrics(m *Metrics) Option {
	return func(p *BufferedPublisher) {
		p.metrics = m
	}
}

func WithBufferSize(n int) Option {
	return func(p *BufferedPublisher) {
		p.buf = newRingBuffer(n)
	}
}

func WithFlushInterval(d time.Duration) Option {
	return func(p *BufferedPublisher) {
		if d > 0 {
			p.flushInterval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(p *BufferedPublisher) {
		if n > 0 {
			p.batchSize = n
		}
	}
}

// WithBreaker tunes when a failing sink is skipped.
func WithBreaker(threshold int, cooldown time.Duration, now func() time.Time) Option {
	return func(p *BufferedPublisher) {
		p.breaker = newCircuitBreaker(threshold, cooldown, now)
	}
}

func NewBufferedPublisher(sink Sink, opts ...Option) *BufferedPublisher {
	p := &BufferedPublisher{
		sink:          sink,
		buf:           newRingBuffer(0),
		breaker:       newCircuitBreaker(0, 0, time.Now),
		logger:        slog.Default(),
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
		notify:        make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *BufferedPublisher) Publish(ctx context.Context, batch ...Event) {
	for _, e := range batch {
		if p.buf.enqueue(e) {
			p.metrics.incDropped("buffer_full", 1)
			p.logger.WarnContext(ctx, "event buffer full, dropped oldest event",
				"event_type", e.Type,
				"request_id", e.RequestID,
			)
		}
	}
	p.metrics.setBuffered(p.buf.len())
	if len(batch) >= p.batchSize || p.buf.len() >= p.batchSize {
		select {
		case p.notify <- struct{}{}:
		default:
		}
	}
}

// Run delivers buffered events until ctx is cancelled, then drains what is
// left with a bounded timeout.
func (p *BufferedPublisher) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), drainTimeout)
			p.Flush(drainCtx)
			cancel()
			return nil
		case <-ticker.C:
			p.Flush(ctx)
		case <-p.notify:
			p.Flush(ctx)
		}
	}
}

// Flush writes every buffered event, one batch at a time.
func (p *BufferedPublisher) Flush(ctx context.Context) {
	for {
		batch := p.buf.dequeueBatch(p.batchSize)
		if len(batch) == 0 {
			p.metrics.setBuffered(0)
			return
		}
		p.deliver(ctx, batch)
		if ctx.Err() != nil {
			if rest := p.buf.len(); rest > 0 {
				p.metrics.incDropped("shutdown", rest)
			}
			return
		}
	}
}

func (p *BufferedPublisher) deliver(ctx context.Context, batch []Event) {
	if !p.breaker.allow() {
		p.metrics.incDropped("circuit_open", len(batch))
		return
	}
	if err := p.sink.Write(ctx, batch); err != nil {
		p.metrics.incSinkFailures()
		p.metrics.incDropped("sink_error", len(batch))
		open := p.breaker.failure()
		p.metrics.setBreakerOpen(open)
		p.logger.ErrorContext(ctx, "event sink write failed",
			"error", err,
			"batch_size", len(batch),
			"circuit_open", open,
		)
		return
	}
	p.breaker.success()
	p.metrics.setBreakerOpen(false)
	p.metrics.incPublished(len(batch))
}
