package secapi

import (
	"mime"
	"path/filepath"
	"strings"
)

// FilenameFromDisposition returns the base filename carried by a
// Content-Disposition header, or "" when there is none.
func FilenameFromDisposition(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	name := ""
	if _, params, err := mime.ParseMediaType(header); err == nil {
		name = params["filename"]
	}
	if name == "" {
		// Loose fallback for headers mime rejects, e.g. unquoted names with spaces.
		if idx := strings.Index(header, "filename="); idx >= 0 {
			name = header[idx+len("filename="):]
			if semi := strings.Index(name, ";"); semi >= 0 {
				name = name[:semi]
			}
			name = strings.ReplaceAll(name, `"`, "")
		}
	}
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	if name == "" {
		return ""
	}
	base := filepath.Base(name)
	if base == "." || base == "/" || base == ".." {
		return ""
	}
	return base
}
