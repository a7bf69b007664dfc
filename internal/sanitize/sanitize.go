// Package sanitize strips operator-injection patterns and script content
// from untrusted string inputs before they reach query building or storage.
package sanitize

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	// scriptPattern matches <script>...</script> blocks, including
	// unterminated ones at the end of the input.
	scriptPattern = regexp.MustCompile(`(?is)<script[^>]*>.*?(</script>|$)`)
	// tagPattern matches any remaining markup tags.
	tagPattern = regexp.MustCompile(`(?s)<[^>]*>`)
	// eventAttrPattern matches inline handler fragments such as onerror=.
	eventAttrPattern = regexp.MustCompile(`(?i)\bon\w+\s*=`)
)

// String removes script content and document-store operator characters
// from a single input value. The result is safe to log, store, and match
// against; it is not HTML-escaped (encoding is the renderer's job).
func String(s string) string {
	s = scriptPattern.ReplaceAllString(s, "")
	s = tagPattern.ReplaceAllString(s, "")
	s = eventAttrPattern.ReplaceAllString(s, "")

	// Operator-injection characters used by document-store query syntax.
	s = strings.Map(func(r rune) rune {
		switch r {
		case '$', '{', '}':
			return -1
		}
		return r
	}, s)

	return strings.TrimSpace(s)
}

// Query sanitizes every value of a parsed query string and collapses
// duplicate parameters to their last value, so a handler never sees
// polluted multi-valued parameters.
func Query(values url.Values) url.Values {
	clean := make(url.Values, len(values))
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		// Last value wins for duplicated parameters.
		clean.Set(key, String(vals[len(vals)-1]))
	}
	return clean
}
