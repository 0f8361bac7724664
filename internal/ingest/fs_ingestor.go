package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joseph-ayodele/ingest-attachment/constants"
	"github.com/joseph-ayodele/ingest-attachment/internal/document"
)

// Source key holding the hex SHA-256 of the file content.
const FieldSHA256 = "sha256"

// FSIngestor reads from the local filesystem. Files whose content was
// already submitted by this ingestor are reported as deduplicated and not
// submitted again.
type FSIngestor struct {
	AllowedExts map[string]struct{} // lowercased sans '.'; nil -> default set
	MaxBytes    int64
	Submit      SubmitFunc
	Logger      *slog.Logger

	mu   sync.Mutex
	seen map[string]struct{}
}

func NewFSIngestor(submit SubmitFunc, maxBytes int64, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{Submit: submit, MaxBytes: maxBytes, Logger: logger, seen: map[string]struct{}{}}
}

func (i *FSIngestor) IngestPath(ctx context.Context, path string) (IngestionResult, error) {
	out := IngestionResult{SourcePath: path}

	ext := constants.NormalizeExt(filepath.Ext(path))
	out.FileExt = ext
	if ext == "" || !AllowedExt(ext, i.AllowedExts) {
		i.Logger.Warn("unsupported or missing extension", "path", path, "ext", ext)
		return out, fmt.Errorf("unsupported or missing extension %q", ext)
	}

	doc, err := document.FromFile(path, i.MaxBytes)
	if err != nil {
		i.Logger.Error("read file failed", "path", path, "error", err)
		return out, err
	}
	out.SourcePath = doc.String(document.FieldPath)
	out.DocumentID = doc.ID.String()

	data, _ := doc.Bytes(document.FieldData)
	sum := sha256.Sum256(data)
	out.HashHex = hex.EncodeToString(sum[:])
	if err := doc.Set(FieldSHA256, out.HashHex); err != nil {
		return out, err
	}

	if i.markSeen(out.HashHex) {
		out.Deduplicated = true
		i.Logger.Info("skipping duplicate content", "path", out.SourcePath, "sha256", out.HashHex)
		return out, nil
	}
	if i.Submit != nil {
		if err := i.Submit(ctx, doc); err != nil {
			i.forget(out.HashHex)
			return out, fmt.Errorf("submit %s: %w", out.SourcePath, err)
		}
	}
	return out, nil
}

// markSeen records hash and reports whether it had been seen before.
func (i *FSIngestor) markSeen(hash string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.seen == nil {
		i.seen = map[string]struct{}{}
	}
	if _, ok := i.seen[hash]; ok {
		return true
	}
	i.seen[hash] = struct{}{}
	return false
}

func (i *FSIngestor) forget(hash string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.seen, hash)
}

// IngestDirectory walks root, skips hidden if requested,
// and calls IngestPath for each file. Returns per-file results + aggregate stats.
func (i *FSIngestor) IngestDirectory(
	ctx context.Context,
	root string,
	skipHidden bool,
) ([]IngestionResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}

	var results []IngestionResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path), i.AllowedExts) {
			return nil
		}
		stats.Matched++

		r, err := i.IngestPath(ctx, path)
		if err != nil {
			r.Err = err.Error()
			results = append(results, r)
			stats.Failed++
			return nil
		}

		results = append(results, r)
		stats.Succeeded++
		if r.Deduplicated {
			stats.Deduplicated++
		}
		return nil
	})

	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	i.Logger.Info("directory ingested", "root", root,
		"scanned", stats.Scanned, "matched", stats.Matched,
		"succeeded", stats.Succeeded, "deduplicated", stats.Deduplicated, "failed", stats.Failed)
	return results, stats, nil
}
