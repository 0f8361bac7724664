package main

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/joseph-ayodele/ingest-attachment/constants"
	"github.com/joseph-ayodele/ingest-attachment/internal/async"
	"github.com/joseph-ayodele/ingest-attachment/internal/attachment"
	"github.com/joseph-ayodele/ingest-attachment/internal/document"
	"github.com/joseph-ayodele/ingest-attachment/internal/pipeline"
	"github.com/joseph-ayodele/ingest-attachment/internal/repository"
)

// resultSink stores every queue outcome as an ingest_result row.
type resultSink struct {
	pipelineID string
	targets    []string // target fields of the attachment processors, in pipeline order
	results    repository.ResultRepository
	logger     *slog.Logger

	ok, failed atomic.Int64
}

func newResultSink(p *pipeline.Pipeline, results repository.ResultRepository, logger *slog.Logger) *resultSink {
	if logger == nil {
		logger = slog.Default()
	}
	s := &resultSink{pipelineID: p.ID(), results: results, logger: logger}
	for _, proc := range p.Processors() {
		if a, ok := proc.(*attachment.Processor); ok {
			s.targets = append(s.targets, a.TargetField())
		}
	}
	return s
}

func (s *resultSink) Record(ctx context.Context, out async.Outcome) error {
	doc := out.Job.Document
	res := &repository.IngestResult{
		DocumentID: doc.ID,
		PipelineID: s.pipelineID,
		SourcePath: doc.String(document.FieldPath),
		Filename:   doc.String(document.FieldFilename),
		Status:     constants.ResultStatusOK,
		Attachment: s.attachment(doc),
		Duration:   out.Duration,
		CreatedAt:  out.FinishedAt,
	}
	if out.Err != nil {
		res.Status = constants.ResultStatusFailed
		res.Error = out.Err.Error()
		s.failed.Add(1)
	} else {
		s.ok.Add(1)
	}
	if err := s.results.Save(ctx, res); err != nil {
		return err
	}
	s.logger.Debug("stored ingest result", "document_id", doc.ID, "status", res.Status, "filename", res.Filename)
	return nil
}

// attachment returns the first attachment map written to the document.
func (s *resultSink) attachment(doc *document.Document) map[string]any {
	for _, t := range s.targets {
		v, err := doc.Get(t)
		if err != nil {
			continue
		}
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return nil
}

// submitter hands documents to the queue.
func submitter(q async.Queue) func(ctx context.Context, doc *document.Document) error {
	return func(ctx context.Context, doc *document.Document) error {
		return q.Enqueue(ctx, async.Job{Document: doc, TraceID: doc.ID.String()})
	}
}
