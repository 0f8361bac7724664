package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/ingest-attachment/internal/async"
	"github.com/joseph-ayodele/ingest-attachment/internal/ingest"
	"github.com/joseph-ayodele/ingest-attachment/internal/repository"
)

var runFlags ingestFlags

var runCmd = &cobra.Command{
	Use:   "run <definition> <path>...",
	Short: "Run files and directories through a pipeline and store the results",
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
		ing := runFlags.ingestor(submitter(q))

		total, err := ingest.IngestPaths(ctx, ing, args[1:], runFlags.skipHidden, logger)
		if err != nil {
			logger.Warn("ingest stopped early", "error", err)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Queue.ProcessTimeout+30*time.Second)
		defer cancel()
		q.Shutdown(shutdownCtx)

		fmt.Fprintf(cmd.OutOrStdout(), "pipeline [%s]: scanned=%d matched=%d submitted=%d deduplicated=%d rejected=%d ok=%d failed=%d\n",
			p.ID(), total.Scanned, total.Matched, total.Submitted(), total.Deduplicated, total.Failed,
			sink.ok.Load(), sink.failed.Load())
		if sink.failed.Load() > 0 || total.Failed > 0 {
			return fmt.Errorf("%d documents failed, %d paths rejected", sink.failed.Load(), total.Failed)
		}
		return nil
	},
}

func init() {
	runFlags.register(runCmd)
}
