package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/ingest-attachment/internal/async"
	"github.com/joseph-ayodele/ingest-attachment/internal/ingest"
	"github.com/joseph-ayodele/ingest-attachment/internal/repository"
)

var (
	watchFlags       ingestFlags
	watchDebounce    time.Duration
	watchInitialScan bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <definition> <dir>...",
	Short: "Run new and changed files under directories through a pipeline until interrupted",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p, err := loadPipeline(args[0])
		if err != nil {
			return err
		}
		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer repository.Close(db, logger)

		sink := newResultSink(p, repository.NewResultRepository(db, logger), logger)
		q := async.NewPipelineQueue(p, sink, logger,
			async.WithWorkers(cfg.Queue.Workers),
			async.WithQueueSize(cfg.Queue.Size),
			async.WithProcessTimeout(cfg.Queue.ProcessTimeout),
		)
		ing := watchFlags.ingestor(submitter(q))

		events, _, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       args[1:],
			AllowedExts: ing.AllowedExts,
			SkipHidden:  watchFlags.skipHidden,
			InitialScan: watchInitialScan,
			Debounce:    watchDebounce,
			Logger:      logger,
		})
		if err != nil {
			return err
		}
		logger.Info("watching for documents", "pipeline", p.ID(), "roots", args[1:])

		for path := range events {
			if _, err := ing.IngestPath(ctx, path); err != nil {
				logger.Warn("ingest failed", "path", path, "error", err)
			}
		}

		logger.Info("watch stopped, draining queue")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Queue.ProcessTimeout+30*time.Second)
		defer cancel()
		q.Shutdown(shutdownCtx)
		logger.Info("watch finished", "ok", sink.ok.Load(), "failed", sink.failed.Load())
		return nil
	},
}

func init() {
	watchFlags.register(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "coalesce bursts of file events")
	watchCmd.Flags().BoolVar(&watchInitialScan, "initial-scan", false, "also ingest files already present under the roots")
}
