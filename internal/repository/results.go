package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/ingest-attachment/constants"
	"github.com/joseph-ayodele/ingest-attachment/internal/common"
)

// IngestResult is one stored pipeline outcome.
type IngestResult struct {
	ID         uuid.UUID
	DocumentID uuid.UUID
	PipelineID string
	SourcePath string
	Filename   string
	Status     constants.ResultStatus
	Error      string
	Attachment map[string]any
	Duration   time.Duration
	CreatedAt  time.Time
}

// ListFilter narrows List. Zero values mean no restriction; Limit defaults to 100.
type ListFilter struct {
	Status     constants.ResultStatus
	PipelineID string
	Limit      int
}

type ResultRepository interface {
	Save(ctx context.Context, r *IngestResult) error
	Get(ctx context.Context, id uuid.UUID) (*IngestResult, error)
	List(ctx context.Context, f ListFilter) ([]*IngestResult, error)
}

type resultRepo struct {
	db  *DB
	log *slog.Logger
}

func NewResultRepository(db *DB, log *slog.Logger) ResultRepository {
	if log == nil {
		log = slog.Default()
	}
	return &resultRepo{db: db, log: log}
}

const resultColumns = `id, document_id, pipeline_id, source_path, filename, status, error_message, attachment, duration_ms, created_at_ms`

// Save inserts r, assigning ID and CreatedAt when they are unset.
func (r *resultRepo) Save(ctx context.Context, res *IngestResult) error {
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}
	attachment := []byte("{}")
	if res.Attachment != nil {
		b, err := json.Marshal(res.Attachment)
		if err != nil {
			return fmt.Errorf("marshal attachment: %w", err)
		}
		attachment = b
	}

	q := rebind(r.db.Dialect, `INSERT INTO ingest_result (`+resultColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.SQL.ExecContext(ctx, q,
		res.ID.String(),
		res.DocumentID.String(),
		res.PipelineID,
		res.SourcePath,
		res.Filename,
		string(res.Status),
		res.Error,
		string(attachment),
		res.Duration.Milliseconds(),
		res.CreatedAt.UnixMilli(),
	)
	if err != nil {
		r.log.Error("ingest_result insert failed", "document_id", res.DocumentID, "err", err)
		return common.NewAppError("DB_ERROR", "save ingest result", errors.Join(common.ErrDatabase, err))
	}
	r.log.Debug("ingest_result saved", "id", res.ID, "status", res.Status)
	return nil
}

func (r *resultRepo) Get(ctx context.Context, id uuid.UUID) (*IngestResult, error) {
	q := rebind(r.db.Dialect, `SELECT `+resultColumns+` FROM ingest_result WHERE id = ?`)
	res, err := scanResult(r.db.SQL.QueryRowContext(ctx, q, id.String()))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("ingest result %s: %w", id, common.ErrNotFound)
	case errors.Is(err, common.ErrInternal):
		r.log.Error("ingest_result row is corrupt", "id", id, "err", err)
		return nil, common.NewAppError("DATA_ERROR", "decode ingest result", err)
	case err != nil:
		return nil, common.NewAppError("DB_ERROR", "get ingest result", errors.Join(common.ErrDatabase, err))
	}
	return res, nil
}

// List returns results newest first.
func (r *resultRepo) List(ctx context.Context, f ListFilter) ([]*IngestResult, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.PipelineID != "" {
		where = append(where, "pipeline_id = ?")
		args = append(args, f.PipelineID)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}

	q := `SELECT ` + resultColumns + ` FROM ingest_result`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at_ms DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.SQL.QueryContext(ctx, rebind(r.db.Dialect, q), args...)
	if err != nil {
		return nil, common.NewAppError("DB_ERROR", "list ingest results", errors.Join(common.ErrDatabase, err))
	}
	defer rows.Close()

	var out []*IngestResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (*IngestResult, error) {
	var (
		id, docID, status, attachment string
		durationMS, createdMS         int64
		res                           IngestResult
	)
	if err := row.Scan(&id, &docID, &res.PipelineID, &res.SourcePath, &res.Filename,
		&status, &res.Error, &attachment, &durationMS, &createdMS); err != nil {
		return nil, err
	}
	var err error
	if res.ID, err = uuid.Parse(id); err != nil {
		return nil, corruptRow("parse id", err)
	}
	if res.DocumentID, err = uuid.Parse(docID); err != nil {
		return nil, corruptRow("parse document_id", err)
	}
	if err := json.Unmarshal([]byte(attachment), &res.Attachment); err != nil {
		return nil, corruptRow("decode attachment", err)
	}
	res.Status = constants.ResultStatus(status)
	res.Duration = time.Duration(durationMS) * time.Millisecond
	res.CreatedAt = time.UnixMilli(createdMS).UTC()
	return &res, nil
}

// corruptRow marks a stored value that cannot be decoded back.
func corruptRow(what string, err error) error {
	return fmt.Errorf("%s: %w", what, errors.Join(common.ErrInternal, err))
}
