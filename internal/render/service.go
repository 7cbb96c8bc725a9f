package render

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dokupress/formpdf/internal/forms"
	"github.com/dokupress/formpdf/internal/pdfgen"
)

// Render modes reported in results.
const (
	ModeLayout = "layout"
	ModeAuto   = "auto"
)

// Service assembles documents: it selects the layout-driven or the
// schema-driven renderer per form, manages the page lifecycle, and
// serializes the final byte stream.
type Service struct {
	loader *forms.Loader
	opts   Options

	// verify reads every produced document back through an independent
	// PDF parser before returning it.
	verify bool
}

// NewService creates a render service over the given form loader.
func NewService(loader *forms.Loader, opts Options, verify bool) *Service {
	return &Service{
		loader: loader,
		opts:   opts,
		verify: verify,
	}
}

// Loader exposes the form loader for discovery-style callers.
func (s *Service) Loader() *forms.Loader {
	return s.loader
}

// RenderRequest describes one render call.
type RenderRequest struct {
	// FormKey selects the form definition by directory name.
	FormKey string `json:"form_key"`

	// Values is the flat value map bound into fields.
	Values ValueMap `json:"values"`

	// Flatten produces static visual output instead of live fields.
	Flatten bool `json:"flatten"`

	// EnforceRequired rejects the render when required schema fields
	// are missing or blank. The renderer itself never enforces
	// required-ness; callers opt in here.
	EnforceRequired bool `json:"enforce_required,omitempty"`

	// Title overrides the document title; empty uses the form name.
	Title string `json:"title,omitempty"`

	// OutputPath writes the document to disk when set; the bytes are
	// returned either way.
	OutputPath string `json:"output_path,omitempty"`
}

// RenderResult reports what was produced.
type RenderResult struct {
	FormKey    string `json:"form_key"`
	Mode       string `json:"mode"`
	Flattened  bool   `json:"flattened"`
	Pages      int    `json:"pages"`
	Fields     int    `json:"fields"`
	Size       int    `json:"size"`
	OutputPath string `json:"output_path,omitempty"`

	Data []byte `json:"-"`
}

// Render loads the form definition and renders it with the request's
// values.
func (s *Service) Render(req RenderRequest) (*RenderResult, error) {
	if req.FormKey == "" {
		return nil, fmt.Errorf("form key cannot be empty")
	}
	def, err := s.loader.Load(req.FormKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load form %q: %w", req.FormKey, err)
	}
	return s.RenderDefinition(def, req)
}

// RenderDefinition renders an already-loaded form definition. The
// explicit layout wins when present; otherwise the schema drives an
// auto layout.
func (s *Service) RenderDefinition(def *forms.Definition, req RenderRequest) (*RenderResult, error) {
	title := req.Title
	if title == "" {
		title = def.Name
	}

	if req.EnforceRequired {
		if missing := def.Schema.ValidateRequired(req.Values, def.I18n); len(missing) > 0 {
			return nil, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
		}
	}

	doc := pdfgen.New(pdfgen.Options{
		Compress: s.opts.Compress,
		Title:    title,
		Author:   "formpdf",
		Creator:  "formpdf",
	})

	opts := s.opts
	opts.Flatten = req.Flatten

	mode := ModeAuto
	if def.HasLayout() {
		mode = ModeLayout
		background := noBackgrounds
		if len(def.Layout.Backgrounds) > 0 {
			background = fileBackgrounds(def.Layout.Backgrounds, def.BackgroundPath, opts.MaxImageSize)
		}
		if err := renderLayout(doc, def.Layout, def.PDFI18n, req.Values, opts, background); err != nil {
			return nil, fmt.Errorf("layout render of %q failed: %w", def.Key, err)
		}
	} else {
		if err := renderAutoLayout(doc, def.Schema, def.PDFI18n, req.Values, opts); err != nil {
			return nil, fmt.Errorf("auto layout render of %q failed: %w", def.Key, err)
		}
	}

	data, err := doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize document: %w", err)
	}

	if s.verify {
		if err := s.verifyOutput(data, doc.FieldCount()); err != nil {
			return nil, fmt.Errorf("output verification of %q failed: %w", def.Key, err)
		}
	}

	result := &RenderResult{
		FormKey:   def.Key,
		Mode:      mode,
		Flattened: req.Flatten,
		Pages:     doc.PageCount(),
		Fields:    doc.FieldCount(),
		Size:      len(data),
		Data:      data,
	}

	if req.OutputPath != "" {
		if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(req.OutputPath, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", req.OutputPath, err)
		}
		result.OutputPath = req.OutputPath
		log.Printf("Rendered %s (%s, %d pages, %d fields) to %s",
			def.Key, mode, result.Pages, result.Fields, req.OutputPath)
	}

	return result, nil
}

// verifyOutput re-reads the produced bytes through pdfcpu and checks the
// interactive field count survived the round trip.
func (s *Service) verifyOutput(data []byte, wantFields int) error {
	infos, err := InspectFields(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if len(infos) != wantFields {
		return fmt.Errorf("field count mismatch: wrote %d, read back %d", wantFields, len(infos))
	}
	return nil
}
