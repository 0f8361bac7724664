package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/ingest-attachment/internal/attachment"
	"github.com/joseph-ayodele/ingest-attachment/internal/common"
	"github.com/joseph-ayodele/ingest-attachment/internal/extract"
	"github.com/joseph-ayodele/ingest-attachment/internal/ingest"
	"github.com/joseph-ayodele/ingest-attachment/internal/pipeline"
	"github.com/joseph-ayodele/ingest-attachment/internal/repository"
)

var (
	logLevel  string
	logFormat string
	storeDSN  string

	cfg    *common.Config
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "attachment",
	Short: "Run attachment ingest pipelines over local documents",
	Long: `attachment compiles ingest pipeline definitions (YAML or JSON) and runs
documents through them. The attachment processor extracts text and metadata
(title, author, keywords, date, content type, language) from PDF, XLSX, DOCX,
ODT, HTML and plain text files. Results are stored in SQLite or Postgres and
can be exported to XLSX.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = common.LoadConfig()
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if logFormat != "" {
			cfg.Log.Format = logFormat
		}
		if storeDSN != "" {
			cfg.Store.DSN = storeDSN
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		logger = newLogger(cfg)
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (env LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json (env LOG_FORMAT)")
	rootCmd.PersistentFlags().StringVar(&storeDSN, "store", "", "result store DSN, postgres:// URL or SQLite file (env STORE_DSN)")

	rootCmd.AddCommand(validateCmd, runCmd, watchCmd, exportCmd)
}

func newLogger(c *common.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// loadPipeline compiles the definition at path. The file name without its
// extension becomes the pipeline id.
func loadPipeline(path string) (*pipeline.Pipeline, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, common.WrapError(err, "read definition")
	}
	reg := pipeline.NewRegistry()
	extractor := extract.NewDocumentExtractor(extract.Config{MaxBytes: cfg.Extract.MaxDocumentBytes}, logger)
	if err := attachment.Register(reg, extractor, logger); err != nil {
		return nil, err
	}
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return pipeline.NewCompiler(reg, logger).ParseDefinition(id, raw)
}

// openStore connects to the result store and pings it before use.
func openStore(ctx context.Context) (*repository.DB, error) {
	db, err := repository.Open(ctx, repository.Config{
		DSN:             cfg.Store.DSN,
		MaxConns:        cfg.Store.MaxConns,
		MaxConnLifetime: cfg.Store.MaxConnLifetime,
		DialTimeout:     cfg.Store.DialTimeout,
	}, logger)
	if err != nil {
		return nil, common.WrapError(err, "open result store")
	}
	if err := repository.HealthCheck(ctx, db, cfg.Store.DialTimeout, logger); err != nil {
		repository.Close(db, logger)
		return nil, common.WrapError(err, "result store health check")
	}
	return db, nil
}

// ingestFlags are shared by run and watch.
type ingestFlags struct {
	exts       []string
	skipHidden bool
}

func (f *ingestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.exts, "ext", nil, "file extensions to ingest (default: all supported)")
	cmd.Flags().BoolVar(&f.skipHidden, "skip-hidden", true, "skip hidden files and directories")
}

func (f *ingestFlags) ingestor(submit ingest.SubmitFunc) *ingest.FSIngestor {
	ing := ingest.NewFSIngestor(submit, cfg.Extract.MaxDocumentBytes, logger)
	ing.AllowedExts = ingest.ExtSet(f.exts)
	return ing
}
