// Package records defines the generic row representation passed between the
// parser and the typed decode stage. Keys are canonical column names; values
// are raw strings (or nil for empty cells) until decoded.
package records

// Record is one parsed source row keyed by canonical column name.
type Record map[string]any

// String returns the string value for key, or "" when the value is missing,
// nil, or not a string.
func (r Record) String(key string) string {
	if v, ok := r[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
