package pipeline

import (
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/ingest-attachment/internal/common"
	"github.com/joseph-ayodele/ingest-attachment/internal/configutil"
)

const (
	keyDescription = "description"
	keyProcessors  = "processors"
	keyTag         = "tag"
)

// Compiler turns pipeline definitions into Pipelines using the factories
// of a Registry.
type Compiler struct {
	registry *Registry
	logger   *slog.Logger
}

func NewCompiler(registry *Registry, logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{registry: registry, logger: logger}
}

// ParseDefinition decodes a JSON or YAML definition and compiles it.
func (c *Compiler) ParseDefinition(id string, raw []byte) (*Pipeline, error) {
	var def map[string]any
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("decode pipeline [%s]: %w", id, err)
	}
	if def == nil {
		return nil, fmt.Errorf("pipeline [%s] definition is empty", id)
	}
	return c.Compile(id, def)
}

// ParseStruct compiles a definition received as a protobuf Struct.
func (c *Compiler) ParseStruct(id string, s *structpb.Struct) (*Pipeline, error) {
	if s == nil {
		return nil, fmt.Errorf("pipeline [%s] definition is empty", id)
	}
	return c.Compile(id, s.AsMap())
}

// Compile validates the definition envelope and builds every processor in
// order. The first failing processor aborts compilation.
func (c *Compiler) Compile(id string, def map[string]any) (*Pipeline, error) {
	if err := validateEnvelope(def); err != nil {
		return nil, fmt.Errorf("pipeline [%s]: %w", id, err)
	}

	entries, ok := asList(def[keyProcessors])
	if !ok {
		return nil, common.NewParseError(common.KindTypeMismatch, "", "", keyProcessors,
			"property isn't a list, but of type [%s]", configutil.TypeName(def[keyProcessors]))
	}
	processors := make([]Processor, 0, len(entries))
	for i, entry := range entries {
		fields, ok := asObject(entry)
		if !ok {
			return nil, common.NewParseError(common.KindTypeMismatch, "", "", keyProcessors,
				"entry [%d] isn't an object, got [%s]", i, configutil.TypeName(entry))
		}
		for typ, body := range fields {
			config, ok := asObject(body)
			if !ok {
				return nil, common.NewParseError(common.KindTypeMismatch, typ, "", "",
					"processor config isn't an object, got [%s]", configutil.TypeName(body))
			}
			p, err := c.build(typ, config)
			if err != nil {
				return nil, err
			}
			c.logger.Debug("processor compiled", "pipeline", id, "index", i, "type", typ, "tag", p.Tag())
			processors = append(processors, p)
		}
	}

	description, _ := def[keyDescription].(string)
	return &Pipeline{
		id:          id,
		description: description,
		processors:  processors,
		logger:      c.logger,
	}, nil
}

func (c *Compiler) build(typ string, config map[string]any) (Processor, error) {
	tag := ""
	if v, ok := config[keyTag]; ok && v != nil {
		s, isString := v.(string)
		if !isString {
			return nil, common.NewParseError(common.KindTypeMismatch, typ, "", keyTag,
				"property isn't of type [String], got [%s]", configutil.TypeName(v))
		}
		tag = s
	}

	factory, ok := c.registry.Lookup(typ)
	if !ok {
		return nil, common.NewParseError(common.KindInvalidValue, typ, tag, "",
			"No processor type exists with name [%s]", typ)
	}

	props := configutil.New(typ, tag, config)
	props.Consume(keyTag)
	p, err := factory.Create(props)
	if err != nil {
		return nil, err
	}
	if unused := props.Unused(); len(unused) > 0 {
		return nil, common.NewParseError(common.KindUnsupportedParameter, typ, tag, "",
			"processor [%s] doesn't support one or more provided configuration parameters [%s]",
			typ, strings.Join(unused, ", "))
	}
	return p, nil
}
