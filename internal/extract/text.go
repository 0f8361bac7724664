package extract

import (
	"bytes"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// parseText accepts anything mimetype classifies as text. Invalid UTF-8 is
// replaced rather than rejected.
func parseText(content []byte) parsed {
	content = bytes.TrimPrefix(content, utf8BOM)
	return parsed{text: strings.ToValidUTF8(string(content), "�")}
}
