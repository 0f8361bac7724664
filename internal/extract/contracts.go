package extract

import (
	"context"
	"errors"
)

// Extractor turns raw document bytes into text and metadata. maxChars caps
// the length of Result.Content in characters.
type Extractor interface {
	Extract(ctx context.Context, content []byte, maxChars int) (Result, error)
}

// Result is what an Extractor reports. Empty strings mean "not available".
type Result struct {
	Content       string
	Title         string
	Name          string
	Author        string
	Keywords      string
	ContentType   string
	ContentLength int
	Language      string
	Date          string // RFC 3339 when the source date could be parsed
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(ctx context.Context, content []byte, maxChars int) (Result, error)

func (f ExtractorFunc) Extract(ctx context.Context, content []byte, maxChars int) (Result, error) {
	return f(ctx, content, maxChars)
}

var (
	ErrUnsupportedContent = errors.New("unsupported content type")
	ErrEmptyContent       = errors.New("content is empty")
	ErrContentTooLarge    = errors.New("content too large")
)
