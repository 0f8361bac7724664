// Package document holds the in-flight representation of one ingested
// document: a source mapping addressed with dotted field paths.
package document

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Source keys set by FromFile.
const (
	FieldData     = "data"
	FieldFilename = "filename"
	FieldPath     = "path"
)

// Document is a mutable source mapping plus identity. It is owned by one
// pipeline execution at a time.
type Document struct {
	ID         uuid.UUID
	Source     map[string]any
	IngestedAt time.Time
}

// New wraps source (nil means empty) with a fresh ID.
func New(source map[string]any) *Document {
	if source == nil {
		source = map[string]any{}
	}
	return &Document{ID: uuid.New(), Source: source, IngestedAt: time.Now().UTC()}
}

// FromFile reads path into a document holding the raw bytes under "data".
// Files larger than maxBytes (when > 0) are rejected before reading.
func FromFile(path string, maxBytes int64) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", abs, err)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", info.Size(), maxBytes)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", abs, err)
	}
	return New(map[string]any{
		FieldData:     data,
		FieldFilename: filepath.Base(abs),
		FieldPath:     abs,
	}), nil
}

// Get resolves a dotted path such as "a.b.c".
func (d *Document) Get(path string) (any, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be null nor empty")
	}
	var cur any = d.Source
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("cannot resolve [%s] from object of type [%T] as part of path [%s]", part, cur, path)
		}
		next, ok := m[part]
		if !ok {
			return nil, fmt.Errorf("field [%s] not present as part of path [%s]", part, path)
		}
		cur = next
	}
	return cur, nil
}

// Has reports whether path resolves.
func (d *Document) Has(path string) bool {
	_, err := d.Get(path)
	return err == nil
}

// Set writes value at path, creating intermediate maps as needed.
func (d *Document) Set(path string, value any) error {
	if path == "" {
		return fmt.Errorf("path cannot be null nor empty")
	}
	parts := strings.Split(path, ".")
	cur := d.Source
	for _, part := range parts[:len(parts)-1] {
		next, ok := cur[part]
		if !ok || next == nil {
			m := map[string]any{}
			cur[part] = m
			cur = m
			continue
		}
		m, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("cannot set [%s] with parent object of type [%T] as part of path [%s]", part, next, path)
		}
		cur = m
	}
	cur[parts[len(parts)-1]] = value
	return nil
}

// Bytes returns the raw bytes at path. A string value is taken to be
// standard base64, which is how binary content travels in JSON.
func (d *Document) Bytes(path string) ([]byte, error) {
	v, err := d.Get(path)
	if err != nil {
		return nil, err
	}
	switch t := v.(type) {
	case []byte:
		return t, nil
	case string:
		b, err := base64.StdEncoding.DecodeString(t)
		if err != nil {
			return nil, fmt.Errorf("field [%s] is not valid base64: %w", path, err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("field [%s] of type [%T] cannot be read as bytes", path, v)
	}
}

// String returns the string at path, or "" when absent or not a string.
func (d *Document) String(path string) string {
	v, err := d.Get(path)
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
