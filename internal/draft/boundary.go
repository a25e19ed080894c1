// Package draft holds the pure document-side building blocks: word boundary
// detection, slug derivation and the document event type.
package draft

import "strings"

// boundary markers that gate a push; the editor always supplies the full
// document, so only the suffix of the current snapshot matters.
var boundarySuffixes = []string{" ", ".", "\n", "\r\n"}

// EndsOnBoundary reports whether the text snapshot ends on a word boundary.
// Each evaluation is independent; there is no partial-word buffering.
func EndsOnBoundary(text string) bool {
	if text == "" {
		return false
	}
	for _, suffix := range boundarySuffixes {
		if strings.HasSuffix(text, suffix) {
			return true
		}
	}
	return false
}
