package async

import (
	"context"
	"errors"
	"time"

	"github.com/joseph-ayodele/ingest-attachment/internal/document"
)

var ErrQueueClosed = errors.New("queue is shutting down")

// Job is one document waiting to go through the pipeline.
type Job struct {
	Document    *document.Document
	SubmittedAt time.Time
	TraceID     string
}

// Outcome is what a worker reports for a finished job. Err is nil on success.
type Outcome struct {
	Job        Job
	Err        error
	Duration   time.Duration
	FinishedAt time.Time
}

// Runner executes a document. *pipeline.Pipeline satisfies it.
type Runner interface {
	Execute(ctx context.Context, doc *document.Document) error
}

// ResultSink receives every outcome. It is called from worker goroutines
// and must be safe for concurrent use.
type ResultSink interface {
	Record(ctx context.Context, out Outcome) error
}

// SinkFunc adapts a function to ResultSink.
type SinkFunc func(ctx context.Context, out Outcome) error

func (f SinkFunc) Record(ctx context.Context, out Outcome) error { return f(ctx, out) }

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
