package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dokupress/formpdf/internal/forms"
)

func TestCoerceBool(t *testing.T) {
	truthyInputs := []any{
		"1", "true", "ja", "yes", "y", "on", "x", "✓", "checked",
		"TRUE", "Ja", " YES ", "X", "\tchecked\n", true,
	}
	for _, in := range truthyInputs {
		assert.True(t, CoerceBool(in), "input %q should be truthy", in)
	}

	falsyInputs := []any{
		"", "0", "no", "nein", "false", "off", "maybe", "jain",
		nil, false, 1, 3.14,
	}
	for _, in := range falsyInputs {
		assert.False(t, CoerceBool(in), "input %q should be falsy", in)
	}
}

func TestResolveCheckedPrecedence(t *testing.T) {
	checkedTrue := true
	checkedFalse := false

	tests := []struct {
		name   string
		field  forms.FieldSpec
		values ValueMap
		want   bool
	}{
		{
			name:   "checked_from wins over literal checked",
			field:  forms.FieldSpec{Name: "c", CheckedFrom: "agree", Checked: &checkedTrue},
			values: ValueMap{"agree": "no", "c": "yes"},
			want:   false,
		},
		{
			name:   "checked_from truthy",
			field:  forms.FieldSpec{Name: "c", CheckedFrom: "agree"},
			values: ValueMap{"agree": "X"},
			want:   true,
		},
		{
			name:   "literal checked wins over value lookup",
			field:  forms.FieldSpec{Name: "c", Checked: &checkedFalse},
			values: ValueMap{"c": "yes"},
			want:   false,
		},
		{
			name:   "falls through to name lookup",
			field:  forms.FieldSpec{Name: "c"},
			values: ValueMap{"c": "ja"},
			want:   true,
		},
		{
			name:   "value_from redirects the lookup",
			field:  forms.FieldSpec{Name: "c", ValueFrom: "other"},
			values: ValueMap{"c": "yes", "other": "no"},
			want:   false,
		},
		{
			name:   "missing everything is unchecked",
			field:  forms.FieldSpec{Name: "c"},
			values: ValueMap{},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.values.resolveChecked(tt.field))
		})
	}
}

func TestResolveString(t *testing.T) {
	tests := []struct {
		name   string
		field  forms.FieldSpec
		values ValueMap
		want   string
	}{
		{"direct", forms.FieldSpec{Name: "a"}, ValueMap{"a": "hello"}, "hello"},
		{"value_from", forms.FieldSpec{Name: "a", ValueFrom: "b"}, ValueMap{"a": "x", "b": "y"}, "y"},
		{"default on missing", forms.FieldSpec{Name: "a", Default: "d"}, ValueMap{}, "d"},
		{"default on empty", forms.FieldSpec{Name: "a", Default: "d"}, ValueMap{"a": ""}, "d"},
		{"default on non-string", forms.FieldSpec{Name: "a", Default: "d"}, ValueMap{"a": true}, "d"},
		{"empty without default", forms.FieldSpec{Name: "a"}, ValueMap{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.values.resolveString(tt.field))
		})
	}
}

func TestValueMapBytes(t *testing.T) {
	m := ValueMap{
		"raw":   []byte{1, 2, 3},
		"str":   "abc",
		"empty": []byte{},
		"bool":  true,
	}

	b, ok := m.Bytes("raw")
	assert.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3}, b)

	b, ok = m.Bytes("str")
	assert.True(t, ok)
	assert.Equal(t, []byte("abc"), b)

	_, ok = m.Bytes("empty")
	assert.False(t, ok)
	_, ok = m.Bytes("bool")
	assert.False(t, ok)
	_, ok = m.Bytes("missing")
	assert.False(t, ok)
}

func TestUnitConversion(t *testing.T) {
	assert.InDelta(t, 28.3465, Cm(1), 0.001)
	assert.InDelta(t, 2.8346, Mm(1), 0.001)
	assert.InDelta(t, 170.0787, Cm(6), 0.001)
}
