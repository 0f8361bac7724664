package common

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestParseErrorMessage(t *testing.T) {
	err := NewParseError(KindInvalidEnumValue, "attachment", "t1", "fields", "illegal field option [%s]", "x")
	if got, want := err.Error(), "[fields] illegal field option [x]"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}

	noProp := NewParseError(KindUnsupportedParameter, "attachment", "", "", "processor [%s] is unhappy", "attachment")
	if got, want := noProp.Error(), "processor [attachment] is unhappy"; got != want {
		t.Fatalf("Error() = %q, want %q", got, want)
	}
}

func TestParseErrorIs(t *testing.T) {
	err := fmt.Errorf("compile: %w", NewParseError(KindTypeMismatch, "attachment", "", "fields", "boom"))
	if !errors.Is(err, ErrTypeMismatch) {
		t.Fatal("expected errors.Is to match ErrTypeMismatch")
	}
	if errors.Is(err, ErrMissingRequiredField) {
		t.Fatal("type mismatch must not match ErrMissingRequiredField")
	}

	var pe *ParseError
	if !errors.As(err, &pe) || pe.Property != "fields" {
		t.Fatalf("errors.As failed: %#v", pe)
	}
}

func TestParseErrorGRPCStatus(t *testing.T) {
	err := NewParseError(KindMissingRequiredField, "attachment", "", "source_field", "required property is missing")
	if code := status.Code(err); code != codes.InvalidArgument {
		t.Fatalf("status.Code = %v, want InvalidArgument", code)
	}
	st, _ := status.FromError(err)
	if st.Message() != "[source_field] required property is missing" {
		t.Fatalf("status message = %q", st.Message())
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	err := NewAppError("CONFIG_ERROR", "bad", ErrInvalidInput)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatal("AppError should unwrap to its cause")
	}
	if WrapError(nil, "ctx") != nil {
		t.Fatal("WrapError(nil) should be nil")
	}
}
