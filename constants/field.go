package constants

import (
	"strings"
)

// Field is one kind of metadata the attachment processor can extract.
// Its string value is the lowercase token used in configuration and as the
// output key.
type Field string

const (
	FieldContent       Field = "content"
	FieldTitle         Field = "title"
	FieldName          Field = "name"
	FieldAuthor        Field = "author"
	FieldKeywords      Field = "keywords"
	FieldDate          Field = "date"
	FieldContentType   Field = "content_type"
	FieldContentLength Field = "content_length"
	FieldLanguage      Field = "language"
)

// declaration order; error messages and defaults depend on it
var allFields = []Field{
	FieldContent,
	FieldTitle,
	FieldName,
	FieldAuthor,
	FieldKeywords,
	FieldDate,
	FieldContentType,
	FieldContentLength,
	FieldLanguage,
}

var fieldIndex = func() map[string]Field {
	m := make(map[string]Field, len(allFields))
	for _, f := range allFields {
		m[string(f)] = f
	}
	return m
}()

func (f Field) String() string { return string(f) }

// Name returns the canonical uppercase name, e.g. CONTENT_TYPE.
func (f Field) Name() string { return strings.ToUpper(string(f)) }

// Ordinal returns the declaration position of f, or -1 for unknown values.
func (f Field) Ordinal() int {
	for i, candidate := range allFields {
		if candidate == f {
			return i
		}
	}
	return -1
}

// AllFields returns every field in declaration order. The slice is a copy.
func AllFields() []Field {
	out := make([]Field, len(allFields))
	copy(out, allFields)
	return out
}

// ParseField resolves a configuration token. Only the exact lowercase
// canonical name is accepted: "content_type" resolves, "Content-Type" does not.
func ParseField(token string) (Field, bool) {
	f, ok := fieldIndex[token]
	return f, ok
}

// FieldNames renders the canonical names as "[CONTENT, TITLE, ...]".
func FieldNames() string {
	names := make([]string, len(allFields))
	for i, f := range allFields {
		names[i] = f.Name()
	}
	return "[" + strings.Join(names, ", ") + "]"
}
