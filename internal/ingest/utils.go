package ingest

import (
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/ingest-attachment/constants"
)

// ExtSet builds an extension set from user input such as ".PDF" or "txt".
// An empty list yields constants.AllowedExtensions.
func ExtSet(exts []string) map[string]struct{} {
	if len(exts) == 0 {
		return constants.AllowedExtensions
	}
	out := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		if e = constants.NormalizeExt(strings.TrimSpace(e)); e != "" {
			out[e] = struct{}{}
		}
	}
	return out
}

// AllowedExt checks if a file extension is in exts (nil means the default set).
func AllowedExt(ext string, exts map[string]struct{}) bool {
	if exts == nil {
		exts = constants.AllowedExtensions
	}
	_, ok := exts[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}
