package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"trustscore/internal/aggregation"
	"trustscore/internal/attestation"
	"trustscore/internal/engine"
	engineMetrics "trustscore/internal/engine/metrics"
	"trustscore/internal/events"
	jwttoken "trustscore/internal/jwt_token"
	"trustscore/internal/platform/config"
	"trustscore/internal/platform/httpserver"
	"trustscore/internal/platform/kafka"
	"trustscore/internal/platform/logger"
	"trustscore/internal/platform/metrics"
	platformRedis "trustscore/internal/platform/redis"
	"trustscore/internal/store"
	"trustscore/internal/store/memory"
	"trustscore/internal/store/postgres"
	redisStore "trustscore/internal/store/redis"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	if err := run(cfg, log); err != nil {
		log.Error("trustscore stopped", "error", err)
		os.Exit(1)
	}
}

// run wires dependencies and blocks until a signal arrives or a component
// fails.
func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	sink, closeSink, err := openSink(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSink()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	publisher := events.NewBufferedPublisher(sink,
		events.WithLogger(log),
		events.WithMetrics(events.NewMetrics(reg)),
		events.WithBufferSize(cfg.Events.BufferSize),
		events.WithFlushInterval(cfg.Events.FlushInterval),
	)
	svc := engine.New(st,
		aggregation.New(attestation.NewVerifier(cfg.Engine.ProgramID, cfg.Engine.RegistryID)),
		engine.WithLogger(log),
		engine.WithMetrics(engineMetrics.New(reg)),
		engine.WithPublisher(publisher),
	)
	tokens := jwttoken.NewJWTServiceAdapter(jwttoken.NewJWTService(cfg.Auth.Audience, cfg.Auth.MaxTokenTTL))

	router := NewRouter(RouterDeps{
		Service:  svc,
		Tokens:   tokens,
		Logger:   log,
		Metrics:  metrics.New(reg),
		Gatherer: reg,
	})
	srv := httpserver.New(cfg.Server, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return publisher.Run(gctx)
	})
	g.Go(func() error {
		log.Info("starting trustscore",
			"addr", cfg.Server.Addr,
			"store", cfg.Store.Backend,
			"registry_id", cfg.Engine.RegistryID.String(),
		)
		return httpserver.Serve(gctx, srv, cfg.Server.ShutdownTimeout, log)
	})
	return g.Wait()
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.StorePostgres:
		db, err := postgres.Open(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return postgres.New(db), nil
	case config.StoreRedis:
		client, err := platformRedis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		if client == nil {
			return nil, errors.New("redis store selected but REDIS_URL is empty")
		}
		return redisStore.New(client), nil
	default:
		return memory.New(), nil
	}
}

// openSink returns the Kafka sink when brokers are configured and a log
// sink otherwise.
func openSink(ctx context.Context, cfg config.Config, log *slog.Logger) (events.Sink, func(), error) {
	client, err := kafka.New(cfg.Kafka)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		return events.NewLogSink(log), func() {}, nil
	}
	if err := kafka.EnsureTopic(ctx, client, cfg.Kafka.Topic); err != nil {
		client.Close()
		return nil, nil, err
	}
	return events.NewKafkaSink(client, cfg.Kafka.Topic), client.Close, nil
}
