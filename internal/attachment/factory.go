// Package attachment implements the "attachment" ingest processor: it reads
// binary content out of a document, extracts text and metadata from it and
// writes the configured subset of that metadata back under a target field.
package attachment

import (
	"log/slog"

	"github.com/joseph-ayodele/ingest-attachment/constants"
	"github.com/joseph-ayodele/ingest-attachment/internal/common"
	"github.com/joseph-ayodele/ingest-attachment/internal/configutil"
	"github.com/joseph-ayodele/ingest-attachment/internal/extract"
	"github.com/joseph-ayodele/ingest-attachment/internal/pipeline"
)

const (
	TypeName            = "attachment"
	DefaultTargetField  = "attachment"
	DefaultIndexedChars = 100000
)

// Configuration keys.
const (
	keySourceField  = "source_field"
	keyTargetField  = "target_field"
	keyIndexedChars = "indexed_chars"
	keyFields       = "fields"
)

// Factory builds attachment processors. It holds no mutable state and may
// be shared between goroutines.
type Factory struct {
	extractor extract.Extractor
	logger    *slog.Logger
}

// NewFactory returns a factory whose processors use extractor. A nil
// extractor means the built-in DocumentExtractor with default limits.
func NewFactory(extractor extract.Extractor, logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	if extractor == nil {
		extractor = extract.NewDocumentExtractor(extract.Config{}, logger)
	}
	return &Factory{extractor: extractor, logger: logger}
}

// Create validates config and returns a processor carrying tag. Validation
// stops at the first problem; config itself is never modified.
func (f *Factory) Create(config map[string]any, tag string) (*Processor, error) {
	return f.CreateFrom(configutil.New(TypeName, tag, config))
}

// CreateFrom is Create over an already wrapped configuration, so the
// caller can inspect props.Unused afterwards.
func (f *Factory) CreateFrom(props *configutil.Properties) (*Processor, error) {
	sourceField, err := props.RequiredString(keySourceField)
	if err != nil {
		return nil, err
	}
	targetField, err := props.OptionalString(keyTargetField, DefaultTargetField)
	if err != nil {
		return nil, err
	}
	indexedChars, err := props.OptionalPositiveInt(keyIndexedChars, DefaultIndexedChars)
	if err != nil {
		return nil, err
	}
	fields, err := readFields(props)
	if err != nil {
		return nil, err
	}

	return &Processor{
		tag:          props.Tag(),
		sourceField:  sourceField,
		targetField:  targetField,
		indexedChars: indexedChars,
		fields:       fields,
		extractor:    f.extractor,
		logger:       f.logger.With("processor", TypeName, "tag", props.Tag()),
	}, nil
}

func readFields(props *configutil.Properties) (*FieldSet, error) {
	tokens, present, err := props.OptionalStringList(keyFields)
	if err != nil {
		return nil, err
	}
	if !present {
		return DefaultFields, nil
	}
	resolved := make([]constants.Field, 0, len(tokens))
	for _, token := range tokens {
		field, ok := constants.ParseField(token)
		if !ok {
			return nil, props.Fail(common.KindInvalidEnumValue, keyFields,
				"illegal field option [%s]. valid values are %s", token, constants.FieldNames())
		}
		resolved = append(resolved, field)
	}
	return NewFieldSet(resolved...), nil
}

// Register adds the attachment factory to reg under TypeName.
func Register(reg *pipeline.Registry, extractor extract.Extractor, logger *slog.Logger) error {
	f := NewFactory(extractor, logger)
	return reg.Register(TypeName, pipeline.FactoryFunc(func(props *configutil.Properties) (pipeline.Processor, error) {
		p, err := f.CreateFrom(props)
		if err != nil {
			return nil, err
		}
		return p, nil
	}))
}
