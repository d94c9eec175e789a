package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"subtrack/internal/cli"
	"subtrack/internal/events"
	"subtrack/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting subtrack-worker")

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	activityWorker := worker.NewActivityWorker(repo, cfg.ActivityRetention)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return events.RunConsumer(gctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, func(msg *events.UsageEvent) error {
			return activityWorker.HandleUsageEvent(gctx, msg)
		})
	})

	g.Go(func() error {
		return activityWorker.RunPruner(gctx, cfg.PruneInterval)
	})

	// Cancel the group when a shutdown signal arrives.
	_, done := cli.GracefulShutdown(logger, 30*time.Second, cancel)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker failed", "error", err)
		os.Exit(1)
	}

	<-done
	logger.Info("Worker stopped gracefully")
}
