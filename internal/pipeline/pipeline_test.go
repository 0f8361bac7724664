package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/ingest-attachment/internal/common"
	"github.com/joseph-ayodele/ingest-attachment/internal/configutil"
	"github.com/joseph-ayodele/ingest-attachment/internal/document"
)

// appendProcessor appends its value to the "trail" list of a document.
type appendProcessor struct {
	tag   string
	value string
	err   error
}

func (p *appendProcessor) Type() string { return "append" }
func (p *appendProcessor) Tag() string  { return p.tag }

func (p *appendProcessor) Execute(_ context.Context, doc *document.Document) error {
	if p.err != nil {
		return p.err
	}
	trail, _ := doc.Source["trail"].([]string)
	doc.Source["trail"] = append(trail, p.value)
	return nil
}

func appendFactory() Factory {
	return FactoryFunc(func(props *configutil.Properties) (Processor, error) {
		value, err := props.RequiredString("value")
		if err != nil {
			return nil, err
		}
		return &appendProcessor{tag: props.Tag(), value: value}, nil
	})
}

func newTestCompiler(t *testing.T) *Compiler {
	t.Helper()
	reg := NewRegistry()
	if err := reg.Register("append", appendFactory()); err != nil {
		t.Fatal(err)
	}
	return NewCompiler(reg, nil)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("b", appendFactory()); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register("a", appendFactory()); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register("a", appendFactory()); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := reg.Register("", appendFactory()); err == nil {
		t.Fatal("expected empty name error")
	}
	if _, ok := reg.Lookup("a"); !ok {
		t.Fatal("lookup a")
	}
	if _, ok := reg.Lookup("c"); ok {
		t.Fatal("lookup c should fail")
	}
	if diff := cmp.Diff([]string{"a", "b"}, reg.Types()); diff != "" {
		t.Fatalf("Types mismatch (-want +got):\n%s", diff)
	}
}

func TestParseDefinitionAndExecute(t *testing.T) {
	c := newTestCompiler(t)
	pl, err := c.ParseDefinition("ordered", []byte(`
description: two steps
processors:
  - append: {value: one, tag: first}
  - append: {value: two}
`))
	if err != nil {
		t.Fatalf("ParseDefinition: %v", err)
	}
	if pl.ID() != "ordered" || pl.Description() != "two steps" {
		t.Fatalf("pipeline = %q %q", pl.ID(), pl.Description())
	}
	procs := pl.Processors()
	if len(procs) != 2 || procs[0].Tag() != "first" || procs[1].Tag() != "" {
		t.Fatalf("processors = %+v", procs)
	}

	doc := document.New(nil)
	if err := pl.Execute(context.Background(), doc); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if diff := cmp.Diff([]string{"one", "two"}, doc.Source["trail"]); diff != "" {
		t.Fatalf("trail mismatch (-want +got):\n%s", diff)
	}
}

func TestParseStruct(t *testing.T) {
	s, err := structpb.NewStruct(map[string]any{
		"processors": []any{
			map[string]any{"append": map[string]any{"value": "from-proto"}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	pl, err := newTestCompiler(t).ParseStruct("proto", s)
	if err != nil {
		t.Fatalf("ParseStruct: %v", err)
	}
	if len(pl.Processors()) != 1 {
		t.Fatalf("processors = %d", len(pl.Processors()))
	}
	if _, err := newTestCompiler(t).ParseStruct("nil", nil); err == nil {
		t.Fatal("expected error for nil struct")
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		def     string
		wantErr string
		kind    error
	}{
		{
			name:    "not a mapping",
			def:     `- a`,
			wantErr: "decode pipeline",
		},
		{
			name:    "missing processors",
			def:     `{"description": "x"}`,
			wantErr: "definition does not match schema",
		},
		{
			name:    "unexpected top level key",
			def:     `{"processors": [], "extra": 1}`,
			wantErr: "definition does not match schema",
		},
		{
			name:    "two types in one entry",
			def:     `{"processors": [{"append": {"value": "a"}, "other": {}}]}`,
			wantErr: "definition does not match schema",
		},
		{
			name:    "body is not an object",
			def:     `{"processors": [{"append": "value"}]}`,
			wantErr: "definition does not match schema",
		},
		{
			name:    "unknown type",
			def:     `{"processors": [{"missing": {}}]}`,
			wantErr: "No processor type exists with name [missing]",
			kind:    common.ErrInvalidValue,
		},
		{
			name:    "tag not a string",
			def:     `{"processors": [{"append": {"value": "a", "tag": 7}}]}`,
			wantErr: "[tag] property isn't of type [String], got [int]",
			kind:    common.ErrTypeMismatch,
		},
		{
			name:    "factory failure",
			def:     `{"processors": [{"append": {}}]}`,
			wantErr: "[value] required property is missing",
			kind:    common.ErrMissingRequiredField,
		},
		{
			name:    "leftover keys",
			def:     `{"processors": [{"append": {"value": "a", "b": 1, "a": 2}}]}`,
			wantErr: "processor [append] doesn't support one or more provided configuration parameters [a, b]",
			kind:    common.ErrUnsupportedParameter,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestCompiler(t).ParseDefinition("p", []byte(tt.def))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want %q", err, tt.wantErr)
			}
			if tt.kind != nil && !errors.Is(err, tt.kind) {
				t.Fatalf("err %v is not %v", err, tt.kind)
			}
		})
	}
}

func TestExecuteStopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	pl := New("p", "", nil,
		&appendProcessor{value: "one"},
		&appendProcessor{tag: "bad", err: boom},
		&appendProcessor{value: "three"},
	)
	doc := document.New(nil)
	err := pl.Execute(context.Background(), doc)

	var perr *ProcessorError
	if !errors.As(err, &perr) || perr.Tag != "bad" || perr.Type != "append" {
		t.Fatalf("err = %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatal("cause should be unwrappable")
	}
	if err.Error() != "processor [append] with tag [bad] failed: boom" {
		t.Fatalf("message = %q", err.Error())
	}
	if diff := cmp.Diff([]string{"one"}, doc.Source["trail"]); diff != "" {
		t.Fatalf("trail mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pl := New("p", "", nil, &appendProcessor{value: "one"})
	if err := pl.Execute(ctx, document.New(nil)); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestCompileGoTypedDefinitions(t *testing.T) {
	c := newTestCompiler(t)

	_, err := c.Compile("typed", map[string]any{
		"processors": []map[string]any{
			{"append": map[string]any{"value": "a", "bogus": 1}},
		},
	})
	if err == nil || !errors.Is(err, common.ErrUnsupportedParameter) ||
		!strings.Contains(err.Error(), "configuration parameters [bogus]") {
		t.Fatalf("leftover key in typed list: err = %v", err)
	}

	pl, err := c.Compile("typed", map[string]any{
		"processors": []any{
			map[string]any{"append": map[string]string{"value": "x", "tag": "first"}},
		},
	})
	if err != nil {
		t.Fatalf("string map body: %v", err)
	}
	pl2, err := c.Compile("typed", map[string]any{
		"processors": []map[string]map[string]any{
			{"append": {"value": "y"}},
		},
	})
	if err != nil {
		t.Fatalf("typed nested maps: %v", err)
	}

	var got []string
	for _, p := range append(pl.Processors(), pl2.Processors()...) {
		ap := p.(*appendProcessor)
		got = append(got, ap.tag+":"+ap.value)
	}
	if diff := cmp.Diff([]string{"first:x", ":y"}, got); diff != "" {
		t.Fatalf("compiled processors mismatch (-want +got):\n%s", diff)
	}

	_, err = c.Compile("typed", map[string]any{
		"processors": []any{map[string]any{"append": map[string]any{"value": "a", "tag": 7}}},
	})
	if err == nil || !strings.Contains(err.Error(), "[tag] property isn't of type [String], got [int]") {
		t.Fatalf("tag type kept from caller: err = %v", err)
	}
}
