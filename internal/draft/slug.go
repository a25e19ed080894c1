package draft

import (
	"path/filepath"
	"regexp"
	"strings"
)

// datePrefix matches the fixed-width date-time prefix of post file names,
// e.g. "2026-02-09-00-00-00-".
var datePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-\d{2}-\d{2}-\d{2}-`)

// Slug derives the topic identifier for a post file. The final path
// component loses its markdown extension; a leading date-time prefix is
// stripped when present, otherwise the whole stripped basename is the slug.
// Total and deterministic: any input yields some slug.
func Slug(path string) string {
	base := filepath.Base(path)
	switch ext := filepath.Ext(base); strings.ToLower(ext) {
	case ".md", ".markdown":
		base = strings.TrimSuffix(base, ext)
	}

	if loc := datePrefix.FindStringIndex(base); loc != nil {
		return base[loc[1]:]
	}
	return base
}

// IsMarkdown reports whether the path names a markdown document. Everything
// else is ignored by the relay: no join, no push.
func IsMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
