package document

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetSetNested(t *testing.T) {
	d := New(nil)
	if err := d.Set("a.b.c", 1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := d.Get("a.b.c")
	if err != nil || v != 1 {
		t.Fatalf("Get = %v, %v", v, err)
	}
	if !d.Has("a.b") || d.Has("a.x") {
		t.Fatal("Has returned the wrong answer")
	}

	_, err = d.Get("a.x.c")
	if err == nil || err.Error() != "field [x] not present as part of path [a.x.c]" {
		t.Fatalf("missing path err = %v", err)
	}
}

func TestSetThroughScalarFails(t *testing.T) {
	d := New(map[string]any{"a": "scalar"})
	if err := d.Set("a.b", 1); err == nil {
		t.Fatal("expected error writing beneath a scalar")
	}
	if _, err := d.Get("a.b"); err == nil {
		t.Fatal("expected error reading beneath a scalar")
	}
}

func TestBytes(t *testing.T) {
	raw := []byte("hello")
	d := New(map[string]any{
		"raw":   raw,
		"b64":   base64.StdEncoding.EncodeToString(raw),
		"bad":   "not base64!!",
		"other": 3,
	})

	for _, path := range []string{"raw", "b64"} {
		got, err := d.Bytes(path)
		if err != nil || string(got) != "hello" {
			t.Fatalf("Bytes(%s) = %q, %v", path, got, err)
		}
	}
	if _, err := d.Bytes("bad"); err == nil {
		t.Fatal("expected base64 error")
	}
	_, err := d.Bytes("other")
	if err == nil || err.Error() != "field [other] of type [int] cannot be read as bytes" {
		t.Fatalf("other err = %v", err)
	}
	if _, err := d.Bytes("nope"); err == nil {
		t.Fatal("expected missing field error")
	}
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "note.txt")
	if err := os.WriteFile(path, []byte("some text"), 0o644); err != nil {
		t.Fatal(err)
	}

	d, err := FromFile(path, 0)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if d.String(FieldFilename) != "note.txt" {
		t.Fatalf("filename = %q", d.String(FieldFilename))
	}
	b, _ := d.Bytes(FieldData)
	if string(b) != "some text" {
		t.Fatalf("data = %q", b)
	}

	_, err = FromFile(path, 4)
	if err == nil || !strings.Contains(err.Error(), "file too large") {
		t.Fatalf("expected size error, got %v", err)
	}
}
