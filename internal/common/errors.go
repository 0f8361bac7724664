package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// ErrorKind classifies configuration parse failures.
type ErrorKind string

const (
	KindMissingRequiredField ErrorKind = "MISSING_REQUIRED_FIELD"
	KindTypeMismatch         ErrorKind = "TYPE_MISMATCH"
	KindInvalidEnumValue     ErrorKind = "INVALID_ENUM_VALUE"
	KindInvalidValue         ErrorKind = "INVALID_VALUE"
	KindUnsupportedParameter ErrorKind = "UNSUPPORTED_PARAMETER"
)

// Sentinels matched by errors.Is against a *ParseError of the same kind.
var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrInvalidEnumValue     = errors.New("invalid enum value")
	ErrInvalidValue         = errors.New("invalid value")
	ErrUnsupportedParameter = errors.New("unsupported parameter")
)

var kindSentinels = map[ErrorKind]error{
	KindMissingRequiredField: ErrMissingRequiredField,
	KindTypeMismatch:         ErrTypeMismatch,
	KindInvalidEnumValue:     ErrInvalidEnumValue,
	KindInvalidValue:         ErrInvalidValue,
	KindUnsupportedParameter: ErrUnsupportedParameter,
}

// ParseError is a processor configuration failure. The rendered message is
// read directly by pipeline authors, so its text is stable.
type ParseError struct {
	Kind          ErrorKind
	ProcessorType string
	ProcessorTag  string
	Property      string
	Message       string
}

// NewParseError builds a ParseError; format/args produce the message body
// that follows the "[property] " prefix.
func NewParseError(kind ErrorKind, processorType, tag, property, format string, args ...any) *ParseError {
	return &ParseError{
		Kind:          kind,
		ProcessorType: processorType,
		ProcessorTag:  tag,
		Property:      property,
		Message:       fmt.Sprintf(format, args...),
	}
}

func (e *ParseError) Error() string {
	if e.Property == "" {
		return e.Message
	}
	return fmt.Sprintf("[%s] %s", e.Property, e.Message)
}

func (e *ParseError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// GRPCStatus lets status.FromError and status.Code see configuration
// failures as InvalidArgument.
func (e *ParseError) GRPCStatus() *status.Status {
	return status.New(codes.InvalidArgument, e.Error())
}
