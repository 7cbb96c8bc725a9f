package forms

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Schema is the generic section/field description of a form. It drives the
// auto-layout renderer when a form has no explicit layout document, and it
// is the source of truth for composite field names.
type Schema struct {
	Title    string    `json:"title" yaml:"title"`
	Sections []Section `json:"sections" yaml:"sections"`
	Misc     Misc      `json:"misc" yaml:"misc"`
}

// Section groups an ordered list of fields under a translatable title.
type Section struct {
	Key       string        `json:"key" yaml:"key"`
	TitleI18n string        `json:"title_i18n" yaml:"title_i18n"`
	Fields    []SchemaField `json:"fields" yaml:"fields"`
}

// SchemaField describes one input of a form section.
type SchemaField struct {
	Key         string `json:"key" yaml:"key"`
	Type        string `json:"type" yaml:"type"`
	LabelI18n   string `json:"label_i18n" yaml:"label_i18n"`
	Placeholder string `json:"placeholder" yaml:"placeholder"`
	Required    bool   `json:"required" yaml:"required"`
	Rows        int    `json:"rows" yaml:"rows"`
}

// Misc carries schema-level extras that influence the trailing rows of the
// auto layout (place/date line, signature block).
type Misc struct {
	StadtDefault      string `json:"stadt_default" yaml:"stadt_default"`
	DatePlaceholder   string `json:"date_placeholder" yaml:"date_placeholder"`
	SignatureRequired *bool  `json:"signature_required" yaml:"signature_required"`
}

// FieldName returns the canonical composite name for a section/field pair.
// The same name keys the value map and identifies the rendered field.
func FieldName(sectionKey, fieldKey string) string {
	return sectionKey + "_" + fieldKey
}

// LoadSchema reads a schema from a JSON or YAML file, selected by extension.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read schema %s: %w", path, err)
	}

	var s Schema
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("invalid schema %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("invalid schema %s: %w", path, err)
		}
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("schema %s: %w", path, err)
	}
	return &s, nil
}

// Validate checks the structural requirements of a schema.
func (s *Schema) Validate() error {
	seen := make(map[string]bool)
	for i, sec := range s.Sections {
		if sec.Key == "" {
			return fmt.Errorf("section %d has no key", i)
		}
		for j, fld := range sec.Fields {
			if fld.Key == "" {
				return fmt.Errorf("section %q field %d has no key", sec.Key, j)
			}
			name := FieldName(sec.Key, fld.Key)
			if seen[name] {
				return fmt.Errorf("duplicate field name %q", name)
			}
			seen[name] = true
		}
	}
	return nil
}

// ValidateRequired returns the localized labels of required fields that are
// missing or blank in the supplied values. Checkbox fields count as missing
// when unchecked. The renderer itself never enforces required-ness; callers
// opt in through this helper.
func (s *Schema) ValidateRequired(values map[string]any, i18n Table) []string {
	var missing []string
	for _, sec := range s.Sections {
		for _, fld := range sec.Fields {
			if !fld.Required {
				continue
			}
			name := FieldName(sec.Key, fld.Key)
			label := i18n.Lookup(fld.LabelI18n, fld.Key)
			switch v := values[name].(type) {
			case bool:
				if !v {
					missing = append(missing, label)
				}
			case string:
				if strings.TrimSpace(v) == "" {
					missing = append(missing, label)
				}
			case nil:
				missing = append(missing, label)
			}
		}
	}
	return missing
}
