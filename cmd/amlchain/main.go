package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gabapcia/amlchain/internal/config"
	"github.com/gabapcia/amlchain/internal/handlers/cli"
	"github.com/gabapcia/amlchain/internal/infra/source/csv"
	"github.com/gabapcia/amlchain/internal/infra/storage/redis"
	"github.com/gabapcia/amlchain/internal/ledgercache"
	"github.com/gabapcia/amlchain/internal/ledgerproc"
	"github.com/gabapcia/amlchain/internal/pkg/logger"
	"github.com/gabapcia/amlchain/internal/pkg/telemetry"
	"github.com/gabapcia/amlchain/internal/pkg/transport/http"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "amlchain:", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.TelemetryEnabled {
		shutdown, err := telemetry.Init(ctx, cfg.ServiceName)
		if err != nil {
			return fmt.Errorf("init telemetry: %w", err)
		}
		defer shutdown(context.WithoutCancel(ctx))
	}

	if err := logger.Init(logger.WithLevel(cfg.LogLevel), logger.WithOutput(os.Stderr)); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	var cacheOpts []ledgercache.Option
	if cfg.Redis.Enabled() {
		store, err := redis.NewClient(ctx,
			cfg.Redis.Addr,
			cfg.Redis.Username,
			cfg.Redis.Password,
			cfg.Redis.DB,
			redis.WithSnapshotTTL(cfg.Redis.CacheTTL),
		)
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer store.Close()

		cacheOpts = append(cacheOpts, ledgercache.WithSnapshotStorage(store))
	}

	source := csv.New(http.NewClient(http.WithTimeout(cfg.HTTPTimeout)))
	svc := ledgerproc.New(source, ledgercache.New(cacheOpts...))

	return cli.Run(ctx, os.Args, os.Stdout, svc, cli.Defaults{
		Input:     cfg.Input,
		BatchSize: cfg.BatchSize,
		MaxRows:   cfg.MaxRows,
	})
}
