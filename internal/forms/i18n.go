package forms

import (
	"encoding/json"
	"fmt"
	"os"
)

// Table is a flat translation table mapping i18n keys to localized strings.
type Table map[string]string

// Lookup resolves a key against the table. A missing key always yields the
// literal fallback, never an error.
func (t Table) Lookup(key, fallback string) string {
	if t == nil {
		return fallback
	}
	if v, ok := t[key]; ok {
		return v
	}
	return fallback
}

// LoadTable reads a translation table from a JSON file.
func LoadTable(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read i18n file %s: %w", path, err)
	}

	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("invalid i18n file %s: %w", path, err)
	}
	return t, nil
}
