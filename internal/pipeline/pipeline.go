package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/ingest-attachment/internal/common"
	"github.com/joseph-ayodele/ingest-attachment/internal/document"
)

// Pipeline is an immutable, ordered list of processors.
type Pipeline struct {
	id          string
	description string
	processors  []Processor
	logger      *slog.Logger
}

// New assembles a pipeline from already built processors.
func New(id, description string, logger *slog.Logger, processors ...Processor) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{id: id, description: description, processors: processors, logger: logger}
}

func (p *Pipeline) ID() string          { return p.id }
func (p *Pipeline) Description() string { return p.description }

// Processors returns a copy of the processor list.
func (p *Pipeline) Processors() []Processor {
	return append([]Processor(nil), p.processors...)
}

// ProcessorError reports which processor failed on a document.
type ProcessorError struct {
	Type string
	Tag  string
	Err  error
}

func (e *ProcessorError) Error() string {
	if e.Tag == "" {
		return fmt.Sprintf("processor [%s] failed: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("processor [%s] with tag [%s] failed: %v", e.Type, e.Tag, e.Err)
}

func (e *ProcessorError) Unwrap() error { return e.Err }

// Execute runs doc through every processor in order and stops at the first
// failure.
func (p *Pipeline) Execute(ctx context.Context, doc *document.Document) error {
	ctx = common.WithPipelineID(common.WithDocumentID(ctx, doc.ID.String()), p.id)
	logger := common.LoggerWithContext(ctx, p.logger)

	start := time.Now()
	for _, proc := range p.processors {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := proc.Execute(ctx, doc); err != nil {
			logger.Warn("processor failed", "type", proc.Type(), "tag", proc.Tag(), "error", err)
			return &ProcessorError{Type: proc.Type(), Tag: proc.Tag(), Err: err}
		}
	}
	logger.Debug("document processed", "processors", len(p.processors), "duration_ms", time.Since(start).Milliseconds())
	return nil
}
