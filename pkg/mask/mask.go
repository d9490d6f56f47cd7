// Package mask implements the partial-display policy for secret values.
// It is the single audited point deciding how much of a secret any "safe"
// output path may reveal; callers must never log its input.
package mask

import "strings"

// DefaultReveal is the number of leading and trailing characters shown when
// the caller does not specify a count.
const DefaultReveal = 4

const glyph = "*"

// Mask returns a display string revealing at most the first and last reveal
// characters of value. Values short enough to be reconstructed from both
// ends are masked entirely. The mask run length always equals the number of
// hidden characters, so the output length matches the value length.
func Mask(value string, reveal int) string {
	if reveal < 0 {
		reveal = 0
	}
	if len(value) <= 2*reveal {
		return strings.Repeat(glyph, len(value))
	}
	hidden := len(value) - 2*reveal
	return value[:reveal] + strings.Repeat(glyph, hidden) + value[len(value)-reveal:]
}

// Preview returns the masked form of value together with its length. Length
// alone is considered safe to disclose.
func Preview(value string, reveal int) (string, int) {
	return Mask(value, reveal), len(value)
}
