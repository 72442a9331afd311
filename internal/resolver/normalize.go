package resolver

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// keyNormalizer folds lookup values into a canonical matching key: NFC
// composition, control-rune removal, inner-whitespace collapse, and upper
// casing. "Brooklyn" and " brooklyn " resolve to the same key.
var keyNormalizer = transform.Chain(
	norm.NFC,
	runes.Remove(runes.In(unicode.C)),
)

// normalizeKey returns the canonical matching key for a raw lookup value, or
// "" when the value is blank after normalization.
func normalizeKey(s string) string {
	out, _, err := transform.String(keyNormalizer, s)
	if err != nil {
		// Fall back to the raw string; the field stays usable even for inputs
		// the transformer rejects.
		out = s
	}
	return strings.ToUpper(strings.Join(strings.Fields(out), " "))
}

// displayValue is the stored form of a lookup value: trimmed, inner
// whitespace collapsed, original casing preserved from the first encounter.
func displayValue(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
