// Package tags holds the canonical tag name form.
package tags

import "strings"

// Normalize maps a free-text label to its canonical slug: lowercased,
// whitespace runs become single hyphens, everything outside [a-z0-9-] is
// stripped, hyphen runs collapse, leading/trailing hyphens trimmed. An
// empty result means the label carries no usable tag and is discarded by
// callers.
func Normalize(raw string) string {
	lower := strings.ToLower(strings.TrimSpace(raw))

	var b strings.Builder
	b.Grow(len(lower))
	lastHyphen := false
	for _, r := range lower {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v' || r == '-':
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastHyphen = false
		default:
			// dropped
		}
	}

	return strings.TrimRight(b.String(), "-")
}
