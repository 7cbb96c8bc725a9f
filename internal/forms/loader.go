package forms

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Definition is one discovered form: its schema, translation tables, and,
// when present, an explicit layout document with per-page backgrounds.
type Definition struct {
	Key    string
	Name   string
	Dir    string
	Schema *Schema

	// I18n is the table for the requested language; PDFI18n is the table
	// used for document text (German when available, mirroring the
	// original forms which are filed with German authorities).
	I18n    Table
	PDFI18n Table

	// Layout is nil when the form has no explicit layout document and
	// must be rendered through the schema-driven auto layout.
	Layout *LayoutDocument
}

// HasLayout reports whether the form carries an explicit layout document.
func (d *Definition) HasLayout() bool {
	return d.Layout != nil
}

// BackgroundPath resolves a background image reference against the form
// directory. Absolute paths are kept as-is.
func (d *Definition) BackgroundPath(ref string) string {
	if filepath.IsAbs(ref) {
		return ref
	}
	return filepath.Join(d.Dir, ref)
}

// Loader discovers form definitions below a configured directory. Each
// form lives in its own subdirectory holding schema.json (or schema.yaml),
// i18n.<lang>.json tables, and optionally layout.json plus backgrounds.
type Loader struct {
	formsDir      string
	preferredLang string
	pathValidator *PathValidator
}

// NewLoader creates a loader rooted at formsDir. preferredLang selects the
// i18n table used for display names and labels; it falls back through en,
// de, and finally any table present.
func NewLoader(formsDir, preferredLang string) (*Loader, error) {
	if formsDir == "" {
		return nil, fmt.Errorf("forms directory cannot be empty")
	}
	pv, err := NewPathValidator(formsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}
	if preferredLang == "" {
		preferredLang = "de"
	}
	return &Loader{
		formsDir:      formsDir,
		preferredLang: preferredLang,
		pathValidator: pv,
	}, nil
}

// FormsDir returns the configured forms directory.
func (l *Loader) FormsDir() string {
	return l.formsDir
}

// Discover scans the forms directory and loads every valid form
// definition, keyed by directory name. Directories without a schema are
// skipped, not fatal.
func (l *Loader) Discover() (map[string]*Definition, error) {
	entries, err := os.ReadDir(l.formsDir)
	if err != nil {
		return nil, fmt.Errorf("cannot read forms directory %s: %w", l.formsDir, err)
	}

	defs := make(map[string]*Definition)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		def, err := l.Load(e.Name())
		if err != nil {
			// Invalid form folders are skipped so one broken form does
			// not take down discovery.
			continue
		}
		defs[def.Key] = def
	}
	return defs, nil
}

// Keys returns the sorted keys of all discoverable forms.
func (l *Loader) Keys() ([]string, error) {
	defs, err := l.Discover()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(defs))
	for k := range defs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Load reads a single form definition by key (its directory name).
func (l *Loader) Load(key string) (*Definition, error) {
	if key == "" {
		return nil, fmt.Errorf("form key cannot be empty")
	}
	dir := filepath.Join(l.formsDir, key)
	if err := l.pathValidator.ValidateDirectory(dir); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("unknown form %q: %w", key, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("form %q is not a directory", key)
	}

	schema, err := l.loadSchema(dir)
	if err != nil {
		return nil, err
	}

	i18n := l.loadI18n(dir)
	pdfI18n := i18n
	if t, err := LoadTable(filepath.Join(dir, "i18n.de.json")); err == nil {
		pdfI18n = t
	}

	def := &Definition{
		Key:     key,
		Dir:     dir,
		Schema:  schema,
		I18n:    i18n,
		PDFI18n: pdfI18n,
	}

	layoutPath := filepath.Join(dir, "layout.json")
	if _, err := os.Stat(layoutPath); err == nil {
		layout, err := LoadLayout(layoutPath)
		if err != nil {
			return nil, err
		}
		def.Layout = layout
	}

	def.Name = i18n.Lookup("app.title", schema.Title)
	if def.Name == "" {
		def.Name = key
	}
	return def, nil
}

func (l *Loader) loadSchema(dir string) (*Schema, error) {
	for _, name := range []string{"schema.json", "schema.yaml", "schema.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadSchema(path)
		}
	}
	return nil, fmt.Errorf("no schema file in %s", dir)
}

// loadI18n picks the best translation table: preferred language first,
// then en, then de, then the alphabetically first i18n file present. A
// form without translation tables gets an empty table, never an error.
func (l *Loader) loadI18n(dir string) Table {
	candidates := []string{
		"i18n." + l.preferredLang + ".json",
		"i18n.en.json",
		"i18n.de.json",
	}
	for _, name := range candidates {
		if t, err := LoadTable(filepath.Join(dir, name)); err == nil {
			return t
		}
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "i18n.*.json"))
	sort.Strings(matches)
	for _, m := range matches {
		if t, err := LoadTable(m); err == nil {
			return t
		}
	}
	return Table{}
}
