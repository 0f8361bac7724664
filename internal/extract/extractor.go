package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/joseph-ayodele/ingest-attachment/constants"
)

const (
	mimePDF  = "application/pdf"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeODT  = "application/vnd.oasis.opendocument.text"
	mimeHTML = "text/html"
	mimeZIP  = "application/zip"
)

type Config struct {
	MaxBytes int64 // default 100 MiB
}

// parsed is what a format parser returns before the shared post-processing
// (normalisation, truncation, language and date canonicalisation).
type parsed struct {
	text     string
	title    string
	name     string
	author   string
	keywords string
	language string
	date     string
}

// DocumentExtractor detects the content type and dispatches to a pure Go
// parser. It is safe for concurrent use.
type DocumentExtractor struct {
	cfg    Config
	logger *slog.Logger
}

func NewDocumentExtractor(cfg Config, logger *slog.Logger) *DocumentExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 100 * 1024 * 1024
	}
	return &DocumentExtractor{cfg: cfg, logger: logger}
}

// Extract picks a parser based on the detected MIME type.
func (e *DocumentExtractor) Extract(ctx context.Context, content []byte, maxChars int) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if len(content) == 0 {
		return Result{}, ErrEmptyContent
	}
	if int64(len(content)) > e.cfg.MaxBytes {
		return Result{}, fmt.Errorf("%w: %d bytes (max %d)", ErrContentTooLarge, len(content), e.cfg.MaxBytes)
	}

	start := time.Now()
	mtype := mimetype.Detect(content)
	format := detectFormat(mtype, content)
	e.logger.Debug("extracting attachment", "mime", mtype.String(), "format", format, "bytes", len(content))

	var (
		p   parsed
		err error
	)
	switch format {
	case constants.FormatPDF:
		p, err = parsePDF(content)
	case constants.FormatXLSX:
		p, err = parseXLSX(content)
	case constants.FormatDOCX:
		p, err = parseDOCX(content)
	case constants.FormatODT:
		p, err = parseODT(content)
	case constants.FormatHTML:
		p, err = parseHTML(content)
	case constants.FormatTXT:
		p = parseText(content)
	default:
		e.logger.Warn("unsupported attachment type", "mime", mtype.String())
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedContent, mtype.String())
	}
	if err != nil {
		return Result{}, fmt.Errorf("parse %s: %w", strings.ToLower(format), err)
	}

	text := Truncate(Normalize(p.text), maxChars)
	res := Result{
		Content:       text,
		Title:         strings.TrimSpace(p.title),
		Name:          strings.TrimSpace(p.name),
		Author:        strings.TrimSpace(p.author),
		Keywords:      strings.TrimSpace(p.keywords),
		ContentType:   contentType(format, mtype),
		ContentLength: len([]rune(text)),
		Language:      CanonicalLanguage(p.language),
		Date:          NormalizeDate(p.date),
	}
	e.logger.Debug("attachment extracted",
		"format", format,
		"content_length", res.ContentLength,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

func detectFormat(m *mimetype.MIME, content []byte) string {
	switch {
	case m.Is(mimePDF):
		return constants.FormatPDF
	case m.Is(mimeXLSX):
		return constants.FormatXLSX
	case m.Is(mimeDOCX):
		return constants.FormatDOCX
	case m.Is(mimeODT):
		return constants.FormatODT
	case m.Is(mimeHTML):
		return constants.FormatHTML
	case m.Is(mimeZIP):
		// OOXML parts can sit past the sniffing window; look at the directory.
		return classifyZip(content)
	}
	for p := m; p != nil; p = p.Parent() {
		if strings.HasPrefix(p.String(), "text/") {
			return constants.FormatTXT
		}
	}
	return ""
}

func classifyZip(content []byte) string {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		switch f.Name {
		case "xl/workbook.xml":
			return constants.FormatXLSX
		case "word/document.xml":
			return constants.FormatDOCX
		case "mimetype":
			if b, err := readZipFile(f, 256); err == nil && strings.TrimSpace(string(b)) == mimeODT {
				return constants.FormatODT
			}
		}
	}
	return ""
}

func contentType(format string, m *mimetype.MIME) string {
	if m.Is(mimeZIP) {
		switch format {
		case constants.FormatXLSX:
			return mimeXLSX
		case constants.FormatDOCX:
			return mimeDOCX
		case constants.FormatODT:
			return mimeODT
		}
	}
	return m.String()
}
