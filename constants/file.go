package constants

import "strings"

// Document formats understood by the built-in extractor.
const (
	FormatPDF  = "PDF"
	FormatXLSX = "XLSX"
	FormatDOCX = "DOCX"
	FormatODT  = "ODT"
	FormatHTML = "HTML"
	FormatTXT  = "TXT"
)

// AllowedExtensions holds the default file extensions picked up by directory ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"xlsx": {},
	"docx": {},
	"odt":  {},
	"html": {},
	"htm":  {},
	"txt":  {},
	"md":   {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
