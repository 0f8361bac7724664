package pipeline

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// envelopeSchema only checks the shape of a definition. Processor bodies are
// validated by their factories.
const envelopeSchema = `{
  "type": "object",
  "required": ["processors"],
  "additionalProperties": false,
  "properties": {
    "description": {"type": "string"},
    "processors": {
      "type": "array",
      "items": {
        "type": "object",
        "minProperties": 1,
        "maxProperties": 1,
        "additionalProperties": {"type": "object"}
      }
    }
  }
}`

var (
	envelopeOnce sync.Once
	envelope     *jsonschema.Schema
	envelopeErr  error
)

func compiledEnvelope() (*jsonschema.Schema, error) {
	envelopeOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("pipeline.json", strings.NewReader(envelopeSchema)); err != nil {
			envelopeErr = fmt.Errorf("add schema: %w", err)
			return
		}
		envelope, envelopeErr = compiler.Compile("pipeline.json")
	})
	return envelope, envelopeErr
}

// validateEnvelope checks def against the definition schema. def goes
// through a JSON round trip first so YAML, protobuf and Go-typed values look
// the same to the validator.
func validateEnvelope(def map[string]any) error {
	schema, err := compiledEnvelope()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	b, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("definition is not JSON compatible: %w", err)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("unmarshal definition: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("definition does not match schema: %w", err)
	}
	return nil
}

// asList returns any slice or array as []any, keeping the element values.
func asList(v any) ([]any, bool) {
	if l, ok := v.([]any); ok {
		return l, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// asObject returns any string-keyed map as map[string]any, keeping the
// values, so leaf type names in error messages stay the caller's.
func asObject(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}
