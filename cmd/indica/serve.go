package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	corecfg "github.com/aevon-lab/project-indica/internal/core/config"
	"github.com/aevon-lab/project-indica/internal/core/indicator"
	"github.com/aevon-lab/project-indica/internal/core/storage"
	badgerstore "github.com/aevon-lab/project-indica/internal/core/storage/badger"
	"github.com/aevon-lab/project-indica/internal/core/storage/postgres"
	"github.com/aevon-lab/project-indica/internal/ingestion"
	"github.com/aevon-lab/project-indica/internal/migrations"
	"github.com/aevon-lab/project-indica/internal/observability"
	"github.com/aevon-lab/project-indica/internal/pipeline"
	"github.com/aevon-lab/project-indica/internal/projection"
	"github.com/aevon-lab/project-indica/internal/publish"
	"github.com/aevon-lab/project-indica/internal/server"
)

// backend is what both storage engines provide.
type backend interface {
	storage.Backend
	storage.ChangeLog
	storage.CheckpointStore
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, the change-log scheduler and the Kafka consumer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}

	// 1. Load Configuration
	cfg, err := corecfg.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("[Main] Loaded config",
		"database", cfg.Database.Type,
		"indicators", len(cfg.Loaded.Types),
		"feed_enabled", cfg.Feed.Enabled,
		"kafka_enabled", cfg.Kafka.Enabled,
		"publisher", cfg.Publisher.Driver,
	)

	// 2. Initialize Storage
	store, err := openBackend(parent, cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	// 3. Indicator registry
	registry, err := indicator.NewRegistry(cfg.Loaded.Types...)
	if err != nil {
		return fmt.Errorf("build indicator registry: %w", err)
	}
	slog.Info("[Main] Indicator registry initialized", "types", registry.Names())

	// 4. Metrics
	provider, err := observability.NewPrometheusProvider()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			slog.Warn("[Main] Metrics provider shutdown failed", "error", err)
		}
	}()
	metrics, err := observability.NewPipelineMetrics(provider.Meter())
	if err != nil {
		return fmt.Errorf("init pipeline metrics: %w", err)
	}

	// 5. Diff publisher
	publisher, closePublisher, err := newPublisher(cfg)
	if err != nil {
		return err
	}
	defer closePublisher()

	// 6. Pipeline
	pipe := pipeline.New(registry, store, publisher, pipeline.WithMetrics(metrics))
	dispatcher := pipeline.NewDispatcher(cfg.Feed.WorkerCount, pipe.Handle)

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	var ingestOpts []ingestion.Option
	if cfg.Feed.Enabled {
		scheduler := pipeline.NewScheduler(pipeline.SchedulerConfig{
			Feed:      cfg.Feed.Name,
			Interval:  cfg.Feed.IntervalDuration(),
			BatchSize: cfg.Feed.BatchSize,
		}, store, store, dispatcher, metrics)
		ingestOpts = append(ingestOpts, ingestion.WithChangeLog(store, scheduler))

		g.Go(func() error {
			return scheduler.Start(gctx)
		})
	} else {
		slog.Info("[Main] Change-log scheduler disabled by config")
	}

	if cfg.Kafka.Enabled {
		consumer, err := pipeline.NewKafkaConsumer(pipeline.KafkaConsumerConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.ChangeTopic,
			GroupID: cfg.Kafka.GroupID,
		}, pipe.Handle)
		if err != nil {
			return fmt.Errorf("init kafka consumer: %w", err)
		}
		g.Go(func() error {
			return consumer.Run(gctx)
		})
	}

	// 7. HTTP API
	ingestionSvc := ingestion.NewService(pipe, cfg.Server.MaxBodySizeMB, ingestOpts...)
	projectionSvc := projection.NewService(registry, store)

	srv := server.New(
		fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		store,
		cfg.Server.Mode,
		server.WithMetricsHandler(provider.Handler()),
	)
	ingestionSvc.RegisterRoutes(srv.Engine)
	projectionSvc.RegisterRoutes(srv.Engine)

	g.Go(func() error {
		return srv.Run(gctx)
	})

	err = g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("[Main] Stopped with error", "error", err)
		return err
	}

	slog.Info("[Main] Shutdown complete")
	return nil
}

func openBackend(ctx context.Context, dc corecfg.DatabaseConfig) (backend, error) {
	switch dc.Type {
	case corecfg.DatabaseBadger:
		bc := badgerstore.DefaultConfig(dc.BadgerPath)
		if dc.BadgerInMemory {
			bc = badgerstore.InMemoryConfig()
		}
		bc.Logger = slog.Default()
		store, err := badgerstore.Open(bc)
		if err != nil {
			return nil, fmt.Errorf("open badger: %w", err)
		}
		return store, nil

	default:
		adapter, err := openPostgres(dc)
		if err != nil {
			return nil, err
		}
		if err := migrations.RunMigrations(adapter.DB(), dc.AutoMigrate); err != nil {
			adapter.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		if err := adapter.ValidateSchema(ctx); err != nil {
			adapter.Close()
			return nil, fmt.Errorf("validate schema: %w", err)
		}
		return adapter, nil
	}
}

func openPostgres(dc corecfg.DatabaseConfig) (*postgres.Adapter, error) {
	adapter, err := postgres.NewAdapter(dc.DSN, dc.MaxOpenConns, dc.MaxIdleConns)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return adapter, nil
}

// newPublisher returns the configured diff publisher. The log publisher is
// always part of the fanout.
func newPublisher(cfg *corecfg.Config) (publish.Publisher, func(), error) {
	logPub := publish.NewLogPublisher(slog.Default())
	if cfg.Publisher.Driver != corecfg.PublisherKafka {
		return logPub, func() {}, nil
	}

	kafkaPub, err := publish.NewKafkaPublisher(publish.KafkaConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.DiffTopic,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("init kafka publisher: %w", err)
	}
	closeFn := func() {
		if err := kafkaPub.Close(); err != nil {
			slog.Warn("[Main] Kafka publisher close failed", "error", err)
		}
	}
	return publish.Fanout{kafkaPub, logPub}, closeFn, nil
}
