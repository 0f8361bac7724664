package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/ingest-attachment/constants"
	"github.com/joseph-ayodele/ingest-attachment/internal/repository"
)

const sheet = "Results"

// Service is a tiny façade over the result repository that produces XLSX bytes for exports.
type Service struct {
	results repository.ResultRepository
	logger  *slog.Logger
}

func NewService(results repository.ResultRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{results: results, logger: logger}
}

var headers = []string{
	"Ingested At",
	"Filename",
	"Status",
	"Error",
	"Title",
	"Author",
	"Content Type",
	"Content Length",
	"Language",
	"Date",
	"Keywords",
	"Source Path",
}

// ExportResultsXLSX returns an XLSX workbook (as bytes) with one row per
// stored result matching filter, newest first. Metadata columns are read
// from the stored attachment map.
func (s *Service) ExportResultsXLSX(ctx context.Context, filter repository.ListFilter) ([]byte, error) {
	start := time.Now()

	recs, err := s.results.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet(sheet); err != nil {
		return nil, err
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	_ = f.DeleteSheet("Sheet1")

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		meta := func(field constants.Field) any {
			if v, ok := r.Attachment[field.String()]; ok {
				return v
			}
			return ""
		}

		write(1, r.CreatedAt.Format(time.RFC3339))
		write(2, r.Filename)
		write(3, string(r.Status))
		write(4, truncate(r.Error, 140))
		write(5, meta(constants.FieldTitle))
		write(6, meta(constants.FieldAuthor))
		write(7, meta(constants.FieldContentType))
		write(8, meta(constants.FieldContentLength))
		write(9, meta(constants.FieldLanguage))
		write(10, meta(constants.FieldDate))
		write(11, meta(constants.FieldKeywords))
		write(12, r.SourcePath)
		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 22) // ingested at
	_ = f.SetColWidth(sheet, "B", "B", 28) // filename
	_ = f.SetColWidth(sheet, "D", "D", 48) // error
	_ = f.SetColWidth(sheet, "E", "F", 28) // title, author
	_ = f.SetColWidth(sheet, "G", "G", 36) // content type
	_ = f.SetColWidth(sheet, "L", "L", 60) // path

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
