package attachment

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/joseph-ayodele/ingest-attachment/internal/document"
	"github.com/joseph-ayodele/ingest-attachment/internal/extract"
	"github.com/joseph-ayodele/ingest-attachment/internal/pipeline"
)

var fullResult = extract.Result{
	Content:       "hello world",
	Title:         "A title",
	Name:          "report.pdf",
	Author:        "Jane",
	Keywords:      "a, b",
	ContentType:   "application/pdf",
	ContentLength: 11,
	Language:      "en",
	Date:          "2020-01-02T03:04:05Z",
}

type recordingExtractor struct {
	res      extract.Result
	err      error
	got      []byte
	maxChars int
}

func (r *recordingExtractor) Extract(_ context.Context, content []byte, maxChars int) (extract.Result, error) {
	r.got = content
	r.maxChars = maxChars
	return r.res, r.err
}

func TestExecuteWritesAllFields(t *testing.T) {
	ex := &recordingExtractor{res: fullResult}
	p, err := NewFactory(ex, nil).Create(map[string]any{"source_field": "data", "indexed_chars": 42}, "")
	if err != nil {
		t.Fatal(err)
	}
	doc := document.New(map[string]any{"data": []byte("raw bytes")})
	if err := p.Execute(context.Background(), doc); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if string(ex.got) != "raw bytes" || ex.maxChars != 42 {
		t.Fatalf("extractor saw %q, %d", ex.got, ex.maxChars)
	}
	got, err := doc.Get("attachment")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"content":        "hello world",
		"title":          "A title",
		"name":           "report.pdf",
		"author":         "Jane",
		"keywords":       "a, b",
		"content_type":   "application/pdf",
		"content_length": 11,
		"language":       "en",
		"date":           "2020-01-02T03:04:05Z",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("attachment mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteWritesOnlyConfiguredFields(t *testing.T) {
	ex := &recordingExtractor{res: fullResult}
	p, err := NewFactory(ex, nil).Create(map[string]any{
		"source_field": "file.data",
		"target_field": "meta.file",
		"fields":       []any{"content_length", "title"},
	}, "")
	if err != nil {
		t.Fatal(err)
	}
	doc := document.New(map[string]any{
		"file": map[string]any{"data": base64.StdEncoding.EncodeToString([]byte("abc"))},
	})
	if err := p.Execute(context.Background(), doc); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if string(ex.got) != "abc" {
		t.Fatalf("base64 source not decoded: %q", ex.got)
	}
	got, _ := doc.Get("meta.file")
	want := map[string]any{"title": "A title", "content_length": 11}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("attachment mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteSkipsMissingValues(t *testing.T) {
	ex := &recordingExtractor{res: extract.Result{Content: "x", ContentLength: 1, ContentType: "text/plain"}}
	p, err := NewFactory(ex, nil).Create(map[string]any{"source_field": "data"}, "")
	if err != nil {
		t.Fatal(err)
	}
	doc := document.New(map[string]any{"data": []byte("x")})
	if err := p.Execute(context.Background(), doc); err != nil {
		t.Fatal(err)
	}
	got, _ := doc.Get("attachment")
	want := map[string]any{"content": "x", "content_length": 1, "content_type": "text/plain"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("attachment mismatch (-want +got):\n%s", diff)
	}
}

func TestExecuteWrapsExtractionErrors(t *testing.T) {
	boom := errors.New("boom")
	p, err := NewFactory(&recordingExtractor{err: boom}, nil).Create(map[string]any{"source_field": "data"}, "")
	if err != nil {
		t.Fatal(err)
	}
	doc := document.New(map[string]any{"data": []byte("x")})

	err = p.Execute(context.Background(), doc)
	if err == nil || err.Error() != "error parsing document in field [data]: boom" {
		t.Fatalf("err = %v", err)
	}
	if !errors.Is(err, boom) {
		t.Fatal("cause should be unwrappable")
	}
	if doc.Has("attachment") {
		t.Fatal("target must not be written on failure")
	}
}

func TestExecuteMissingSource(t *testing.T) {
	p, err := NewFactory(&recordingExtractor{}, nil).Create(map[string]any{"source_field": "data"}, "")
	if err != nil {
		t.Fatal(err)
	}
	err = p.Execute(context.Background(), document.New(nil))
	if err == nil || !strings.Contains(err.Error(), "not present") {
		t.Fatalf("err = %v", err)
	}
}

func TestExecuteWithDocumentExtractor(t *testing.T) {
	p, err := NewFactory(nil, nil).Create(map[string]any{
		"source_field":  "data",
		"indexed_chars": 5,
		"fields":        []any{"content", "content_length"},
	}, "")
	if err != nil {
		t.Fatal(err)
	}
	doc := document.New(map[string]any{"data": []byte("plain text document")})
	if err := p.Execute(context.Background(), doc); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	got, _ := doc.Get("attachment")
	want := map[string]any{"content": "plain", "content_length": 5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("attachment mismatch (-want +got):\n%s", diff)
	}
}

func TestRegisterAndCompile(t *testing.T) {
	reg := pipeline.NewRegistry()
	if err := Register(reg, &recordingExtractor{res: fullResult}, nil); err != nil {
		t.Fatal(err)
	}
	if err := Register(reg, nil, nil); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
	c := pipeline.NewCompiler(reg, nil)

	pl, err := c.ParseDefinition("p1", []byte(`
description: attachments
processors:
  - attachment:
      tag: first
      source_field: data
      fields: [title]
`))
	if err != nil {
		t.Fatalf("ParseDefinition: %v", err)
	}
	procs := pl.Processors()
	if len(procs) != 1 || procs[0].Tag() != "first" || procs[0].Type() != TypeName {
		t.Fatalf("processors = %+v", procs)
	}

	doc := document.New(map[string]any{"data": []byte("x")})
	if err := pl.Execute(context.Background(), doc); err != nil {
		t.Fatal(err)
	}
	if got, _ := doc.Get("attachment.title"); got != "A title" {
		t.Fatalf("title = %v", got)
	}

	_, err = c.ParseDefinition("p2", []byte(`{"processors":[{"attachment":{"source_field":"data","zeta":1,"alpha":true}}]}`))
	const want = "processor [attachment] doesn't support one or more provided configuration parameters [alpha, zeta]"
	if err == nil || err.Error() != want {
		t.Fatalf("err = %v, want %s", err, want)
	}

	_, err = c.ParseDefinition("p3", []byte(`{"processors":[{"attachment":{"source_field":"data","fields":["nope"]}}]}`))
	if err == nil || !strings.HasPrefix(err.Error(), "[fields] illegal field option [nope].") {
		t.Fatalf("err = %v", err)
	}
}
