package common

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"LOG_LEVEL", "LOG_FORMAT", "STORE_DSN", "WORKERS", "QUEUE_SIZE", "PROCESS_TIMEOUT", "MAX_DOCUMENT_BYTES"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig()
	if cfg.Queue.Workers != 4 || cfg.Queue.Size != 256 {
		t.Fatalf("unexpected queue defaults: %+v", cfg.Queue)
	}
	if cfg.Queue.ProcessTimeout != 2*time.Minute {
		t.Fatalf("ProcessTimeout = %v", cfg.Queue.ProcessTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Fatalf("SlogLevel = %v", cfg.SlogLevel())
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("WORKERS", "9")
	t.Setenv("PROCESS_TIMEOUT", "15s")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := LoadConfig()
	if cfg.Queue.Workers != 9 {
		t.Fatalf("Workers = %d", cfg.Queue.Workers)
	}
	if cfg.Queue.ProcessTimeout != 15*time.Second {
		t.Fatalf("ProcessTimeout = %v", cfg.Queue.ProcessTimeout)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatalf("SlogLevel = %v", cfg.SlogLevel())
	}
}

func TestConfigValidateCollectsErrors(t *testing.T) {
	cfg := LoadConfig()
	cfg.Store.DSN = " "
	cfg.Queue.Workers = 0
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	for _, want := range []string{"STORE_DSN", "WORKERS", "LOG_FORMAT"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestValidatorRules(t *testing.T) {
	v := NewValidator().
		Field("LOG_LEVEL", "DEBUG", OneOf("debug", "info")).
		Field("WORKERS", 300, Positive, AtMost(256)).
		Field("QUEUE_SIZE", "many", Positive, AtMost(10)).
		Field("PROCESS_TIMEOUT", -time.Second, Positive).
		Field("STORE_DSN", nil, Required)

	var got []string
	for _, e := range v.Errors() {
		got = append(got, e.Field+": "+e.Message)
	}
	want := []string{
		"WORKERS: must be at most 256",
		"QUEUE_SIZE: must be a number",
		"PROCESS_TIMEOUT: must be positive",
		"STORE_DSN: is required",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("errors:\n%s\nwant:\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
	if msg := v.ErrorMessage(); !strings.Contains(msg, "WORKERS=300 must be at most 256; ") {
		t.Fatalf("ErrorMessage = %q", msg)
	}
}
