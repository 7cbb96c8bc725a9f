package render

import (
	"strings"

	"github.com/dokupress/formpdf/internal/forms"
)

// ValueMap carries the runtime values bound into fields: strings and
// booleans for inputs, raw image bytes for signatures and photos. It is
// read-only during rendering.
type ValueMap map[string]any

// truthy holds the accepted spellings of a checked state. German forms
// arrive with "ja" and "x" at least as often as "true".
var truthy = map[string]bool{
	"1":       true,
	"true":    true,
	"ja":      true,
	"yes":     true,
	"y":       true,
	"on":      true,
	"x":       true,
	"✓":       true,
	"checked": true,
}

// CoerceBool turns an arbitrary value into a checked state. Strings are
// trimmed and compared case-insensitively against the truthy set; every
// other value, missing included, is false.
func CoerceBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return truthy[strings.ToLower(strings.TrimSpace(t))]
	}
	return false
}

// String returns the string value stored under name, or "" when absent
// or not a string.
func (m ValueMap) String(name string) string {
	if s, ok := m[name].(string); ok {
		return s
	}
	return ""
}

// Bytes returns raw image bytes stored under name.
func (m ValueMap) Bytes(name string) ([]byte, bool) {
	switch t := m[name].(type) {
	case []byte:
		return t, len(t) > 0
	case string:
		// Signature providers sometimes hand image data through as a
		// raw byte string.
		if t != "" {
			return []byte(t), true
		}
	}
	return nil, false
}

// valueKey returns the ValueMap lookup key for a field: value_from when
// set, the field name otherwise.
func valueKey(f forms.FieldSpec) string {
	if f.ValueFrom != "" {
		return f.ValueFrom
	}
	return f.Name
}

// resolveString binds a text value: ValueMap first, then the declared
// default, then empty.
func (m ValueMap) resolveString(f forms.FieldSpec) string {
	if v, ok := m[valueKey(f)]; ok {
		if s, isStr := v.(string); isStr && s != "" {
			return s
		}
	}
	return f.Default
}

// resolveChecked binds a checkbox state. Precedence is fixed:
// checked_from lookup wins, then a literal checked, then the
// value_from-or-name lookup.
func (m ValueMap) resolveChecked(f forms.FieldSpec) bool {
	if f.CheckedFrom != "" {
		return CoerceBool(m[f.CheckedFrom])
	}
	if f.Checked != nil {
		return *f.Checked
	}
	return CoerceBool(m[valueKey(f)])
}
