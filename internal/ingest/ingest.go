// Package ingest turns files on disk into documents and hands them to the
// pipeline.
package ingest

import (
	"context"
	"log/slog"
	"os"

	"github.com/joseph-ayodele/ingest-attachment/internal/document"
)

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath   string
	DocumentID   string
	Deduplicated bool
	HashHex      string
	FileExt      string
	Err          string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Add accumulates o into s.
func (s *DirStats) Add(o DirStats) {
	s.Scanned += o.Scanned
	s.Matched += o.Matched
	s.Succeeded += o.Succeeded
	s.Deduplicated += o.Deduplicated
	s.Failed += o.Failed
}

// Submitted counts documents handed to SubmitFunc.
func (s DirStats) Submitted() uint32 {
	return s.Succeeded - s.Deduplicated
}

// SubmitFunc receives each document built from a file, typically by
// enqueueing it for the pipeline.
type SubmitFunc func(ctx context.Context, doc *document.Document) error

// Ingestor turns paths into submitted documents.
type Ingestor interface {
	IngestPath(ctx context.Context, path string) (IngestionResult, error)
	// IngestDirectory ingests all matching files under root.
	IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error)
}

// IngestPaths ingests each path, walking directories, and returns the
// combined stats. It stops early only when ctx is done.
func IngestPaths(ctx context.Context, ing Ingestor, paths []string, skipHidden bool, logger *slog.Logger) (DirStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var total DirStats
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		info, err := os.Stat(path)
		if err != nil {
			logger.Error("cannot read path", "path", path, "error", err)
			total.Scanned++
			total.Failed++
			continue
		}
		if info.IsDir() {
			_, stats, err := ing.IngestDirectory(ctx, path, skipHidden)
			total.Add(stats)
			if err != nil {
				return total, err
			}
			continue
		}
		total.Scanned++
		total.Matched++
		r, err := ing.IngestPath(ctx, path)
		if err != nil {
			logger.Error("ingest failed", "path", path, "error", err)
			total.Failed++
			continue
		}
		total.Succeeded++
		if r.Deduplicated {
			total.Deduplicated++
		}
	}
	return total, nil
}
