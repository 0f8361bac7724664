package attachment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/ingest-attachment/constants"
	"github.com/joseph-ayodele/ingest-attachment/internal/document"
	"github.com/joseph-ayodele/ingest-attachment/internal/extract"
)

// Processor is a validated attachment configuration plus the extractor it
// runs. It is read-only after construction and safe for concurrent use.
type Processor struct {
	tag          string
	sourceField  string
	targetField  string
	indexedChars int
	fields       *FieldSet

	extractor extract.Extractor
	logger    *slog.Logger
}

func (p *Processor) Type() string        { return TypeName }
func (p *Processor) Tag() string         { return p.tag }
func (p *Processor) SourceField() string { return p.sourceField }
func (p *Processor) TargetField() string { return p.targetField }
func (p *Processor) IndexedChars() int   { return p.indexedChars }

// Fields returns the configured set. Processors built without "fields"
// return DefaultFields itself.
func (p *Processor) Fields() *FieldSet { return p.fields }

// Execute extracts the bytes at the source field and stores the configured
// metadata as a map under the target field.
func (p *Processor) Execute(ctx context.Context, doc *document.Document) error {
	content, err := doc.Bytes(p.sourceField)
	if err != nil {
		return err
	}

	start := time.Now()
	res, err := p.extractor.Extract(ctx, content, p.indexedChars)
	if err != nil {
		p.logger.Warn("attachment extraction failed", "doc_id", doc.ID, "source_field", p.sourceField, "error", err)
		return fmt.Errorf("error parsing document in field [%s]: %w", p.sourceField, err)
	}

	out := p.collect(res)
	if err := doc.Set(p.targetField, out); err != nil {
		return err
	}
	p.logger.Debug("attachment processed",
		"doc_id", doc.ID,
		"target_field", p.targetField,
		"keys", len(out),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// collect keeps the configured fields that the extractor actually filled in.
func (p *Processor) collect(res extract.Result) map[string]any {
	out := make(map[string]any, p.fields.Len())
	put := func(f constants.Field, v string) {
		if v != "" && p.fields.Has(f) {
			out[f.String()] = v
		}
	}
	put(constants.FieldContent, res.Content)
	put(constants.FieldTitle, res.Title)
	put(constants.FieldName, res.Name)
	put(constants.FieldAuthor, res.Author)
	put(constants.FieldKeywords, res.Keywords)
	put(constants.FieldDate, res.Date)
	put(constants.FieldContentType, res.ContentType)
	if res.ContentLength > 0 && p.fields.Has(constants.FieldContentLength) {
		out[constants.FieldContentLength.String()] = res.ContentLength
	}
	put(constants.FieldLanguage, res.Language)
	return out
}
