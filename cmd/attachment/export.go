package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/ingest-attachment/constants"
	"github.com/joseph-ayodele/ingest-attachment/internal/export"
	"github.com/joseph-ayodele/ingest-attachment/internal/repository"
)

var (
	exportStatus   string
	exportPipeline string
	exportLimit    int
)

var exportCmd = &cobra.Command{
	Use:   "export <out.xlsx>",
	Short: "Write stored results to an XLSX workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status := constants.ResultStatus(strings.ToUpper(strings.TrimSpace(exportStatus)))
		switch status {
		case "", constants.ResultStatusOK, constants.ResultStatusFailed:
		default:
			return fmt.Errorf("invalid --status %q, use OK or FAILED", exportStatus)
		}

		ctx := cmd.Context()
		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer repository.Close(db, logger)

		svc := export.NewService(repository.NewResultRepository(db, logger), logger)
		data, err := svc.ExportResultsXLSX(ctx, repository.ListFilter{
			Status:     status,
			PipelineID: exportPipeline,
			Limit:      exportLimit,
		})
		if err != nil {
			return err
		}
		if err := os.WriteFile(args[0], data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportStatus, "status", "", "only export results with this status (OK, FAILED)")
	exportCmd.Flags().StringVar(&exportPipeline, "pipeline", "", "only export results of this pipeline id")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 1000, "maximum number of rows")
}
