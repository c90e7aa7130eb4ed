package util

import (
	"path/filepath"
	"strings"
	"unicode"
)

// SanitizeFileName reduces an uploaded file name to a safe base name:
// path components, control characters and path separators are removed.
// Returns "upload" if nothing survives.
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == '/' || r == '\\' {
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "upload"
	}
	return name
}
