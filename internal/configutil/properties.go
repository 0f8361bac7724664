// Package configutil reads typed values out of an untyped processor
// configuration mapping, as decoded from a JSON or YAML pipeline definition.
//
// Every accessor records the key it read so the caller can report leftover,
// unsupported keys once the factory is done. The raw mapping is never
// modified.
package configutil

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/joseph-ayodele/ingest-attachment/internal/common"
)

// Properties wraps one processor's configuration mapping. It is meant to be
// used by a single goroutine for the duration of one factory call.
type Properties struct {
	processorType string
	tag           string
	raw           map[string]any
	consumed      map[string]struct{}
}

// New wraps raw for the processor type and tag used in error reports.
// A nil map is treated as empty.
func New(processorType, tag string, raw map[string]any) *Properties {
	if raw == nil {
		raw = map[string]any{}
	}
	return &Properties{
		processorType: processorType,
		tag:           tag,
		raw:           raw,
		consumed:      make(map[string]struct{}, len(raw)),
	}
}

func (p *Properties) ProcessorType() string { return p.processorType }
func (p *Properties) Tag() string           { return p.tag }

// Consume marks key as read without interpreting its value.
func (p *Properties) Consume(key string) {
	p.consumed[key] = struct{}{}
}

// Unused returns the keys no accessor has read, sorted.
func (p *Properties) Unused() []string {
	var out []string
	for k := range p.raw {
		if _, ok := p.consumed[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func (p *Properties) lookup(key string) (any, bool) {
	p.consumed[key] = struct{}{}
	v, ok := p.raw[key]
	if ok && v == nil {
		return nil, false
	}
	return v, ok
}

// RequiredString returns the string at key. A missing key, an empty string
// or a non-string value all fail as a missing required field.
func (p *Properties) RequiredString(key string) (string, error) {
	v, ok := p.lookup(key)
	if !ok {
		return "", p.fail(common.KindMissingRequiredField, key, "required property is missing")
	}
	s, isString := v.(string)
	if !isString {
		return "", p.fail(common.KindMissingRequiredField, key, "property isn't of type [String], got [%s]", TypeName(v))
	}
	if s == "" {
		return "", p.fail(common.KindMissingRequiredField, key, "required property is missing")
	}
	return s, nil
}

// OptionalString returns the string at key, or def when the key is absent.
func (p *Properties) OptionalString(key, def string) (string, error) {
	v, ok := p.lookup(key)
	if !ok {
		return def, nil
	}
	s, isString := v.(string)
	if !isString {
		return "", p.fail(common.KindTypeMismatch, key, "property isn't of type [String], got [%s]", TypeName(v))
	}
	return s, nil
}

// OptionalInt returns the integer at key, or def when the key is absent.
// Integral float64 values are accepted because JSON decoding produces them.
func (p *Properties) OptionalInt(key string, def int) (int, error) {
	v, ok := p.lookup(key)
	if !ok {
		return def, nil
	}
	n, isInt := asInt(v)
	if !isInt {
		return 0, p.fail(common.KindTypeMismatch, key, "property isn't of type [Integer], got [%s]", TypeName(v))
	}
	return n, nil
}

// OptionalPositiveInt is OptionalInt that also rejects values below 1.
func (p *Properties) OptionalPositiveInt(key string, def int) (int, error) {
	n, err := p.OptionalInt(key, def)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, p.fail(common.KindInvalidValue, key, "property must be a positive integer, got [%d]", n)
	}
	return n, nil
}

// OptionalStringList returns the list of strings at key. present reports
// whether the key was supplied at all, so an explicit empty list can be
// told apart from an absent one.
func (p *Properties) OptionalStringList(key string) (list []string, present bool, err error) {
	v, ok := p.lookup(key)
	if !ok {
		return nil, false, nil
	}
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case []string:
		return append([]string(nil), t...), true, nil
	default:
		return nil, true, p.fail(common.KindTypeMismatch, key, "property isn't a list, but of type [%s]", TypeName(v))
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, isString := item.(string)
		if !isString {
			return nil, true, p.fail(common.KindTypeMismatch, key, "list element isn't of type [String], got [%s]", TypeName(item))
		}
		out = append(out, s)
	}
	return out, true, nil
}

// Fail builds a ParseError attributed to this processor and key.
func (p *Properties) Fail(kind common.ErrorKind, key, format string, args ...any) *common.ParseError {
	return p.fail(kind, key, format, args...)
}

func (p *Properties) fail(kind common.ErrorKind, key, format string, args ...any) *common.ParseError {
	return common.NewParseError(kind, p.processorType, p.tag, key, format, args...)
}

// TypeName is the Go type of v as printed by %T.
func TypeName(v any) string {
	return fmt.Sprintf("%T", v)
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		if n < math.MinInt || n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint:
		if uint64(n) > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uintptr:
		if uint64(n) > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		if uint64(n) > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float64:
		return floatToInt(n)
	case float32:
		return floatToInt(float64(n))
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return asInt(i)
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int, bool) {
	if f != math.Trunc(f) || f < math.MinInt || f >= math.MaxInt {
		return 0, false
	}
	return int(f), true
}
