package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// parseXLSX renders every sheet as tab separated rows under a sheet heading.
func parseXLSX(content []byte) (parsed, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return parsed{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return parsed{}, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(sheet)
		for _, row := range rows {
			line := strings.TrimSpace(strings.Join(row, "\t"))
			if line == "" {
				continue
			}
			sb.WriteByte('\n')
			sb.WriteString(line)
		}
	}

	p := parsed{text: sb.String()}
	if props, err := f.GetDocProps(); err == nil && props != nil {
		p.title = props.Title
		p.author = props.Creator
		p.keywords = props.Keywords
		p.language = props.Language
		p.date = props.Created
	}
	return p, nil
}
