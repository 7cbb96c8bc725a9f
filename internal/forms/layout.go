package forms

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Kind identifies what a layout field renders as. It is a closed enum so the
// placement code can switch exhaustively over it.
type Kind int

const (
	KindText Kind = iota
	KindTextarea
	KindCheckbox
	KindImage
	KindLabel
	KindLine
	KindRect
)

// String returns the canonical layout-document spelling of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindTextarea:
		return "textarea"
	case KindCheckbox:
		return "checkbox"
	case KindImage:
		return "image"
	case KindLabel:
		return "label"
	case KindLine:
		return "line"
	case KindRect:
		return "rect"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ScaleMode selects how an image is sized into its target box.
type ScaleMode int

const (
	// ScaleFit preserves the source aspect ratio within the box.
	ScaleFit ScaleMode = iota
	// ScaleStretch fills the box exactly, ignoring the source aspect ratio.
	ScaleStretch
)

// ParseKind maps a layout-document type string to a Kind. Aliases from
// legacy layout files are accepted; anything unrecognized falls back to
// text so a stray type never aborts a render.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "input", "string", "":
		return KindText, true
	case "textarea", "multiline":
		return KindTextarea, true
	case "checkbox", "bool", "boolean":
		return KindCheckbox, true
	case "image", "signature":
		return KindImage, true
	case "label":
		return KindLabel, true
	case "line":
		return KindLine, true
	case "rect":
		return KindRect, true
	}
	return KindText, false
}

// FieldSpec is one declarative unit of layout: a typed field with explicit
// geometry on a specific page. Boxed kinds use X/Y/W/H, lines use the
// segment coordinates, labels use a point plus font size.
type FieldSpec struct {
	Kind Kind
	Name string
	Page int

	X, Y, W, H     float64
	X1, Y1, X2, Y2 float64

	Label     string
	LabelI18n string
	Text      string
	TextI18n  string

	Size      float64
	Bold      bool
	LineWidth float64

	Checked     *bool
	CheckedFrom string
	ValueFrom   string
	Default     string

	ScaleMode ScaleMode
	Trim      bool

	FillRGB     *[3]float64
	BorderStyle string
	BorderWidth float64
	ForceBorder bool
}

// LayoutDocument is the explicit coordinate-based description of a form:
// an ordered field list plus optional per-page background images.
// Backgrounds index by page-1; fields must appear in non-decreasing page
// order since rendering never moves back to an earlier page.
type LayoutDocument struct {
	PageSize    string
	DrawBoxes   bool
	Backgrounds []string
	Fields      []FieldSpec
}

type fieldSpecJSON struct {
	Type        string      `json:"type"`
	Name        string      `json:"name"`
	Page        int         `json:"page"`
	X           float64     `json:"x"`
	Y           float64     `json:"y"`
	W           float64     `json:"w"`
	H           float64     `json:"h"`
	X1          float64     `json:"x1"`
	Y1          float64     `json:"y1"`
	X2          float64     `json:"x2"`
	Y2          float64     `json:"y2"`
	Label       string      `json:"label"`
	LabelI18n   string      `json:"label_i18n"`
	Text        string      `json:"text"`
	TextI18n    string      `json:"text_i18n"`
	Size        float64     `json:"size"`
	Bold        bool        `json:"bold"`
	Width       float64     `json:"width"`
	Checked     *bool       `json:"checked"`
	CheckedFrom string      `json:"checked_from"`
	ValueFrom   string      `json:"value_from"`
	Default     string      `json:"default"`
	ScaleMode   string      `json:"scale_mode"`
	Trim        bool        `json:"trim"`
	FillRGB     *[3]float64 `json:"fill_rgb"`
	BorderStyle string      `json:"border_style"`
	BorderWidth *float64    `json:"border_width"`
	ForceBorder *bool       `json:"force_border"`
}

type layoutDocumentJSON struct {
	PageSize    string          `json:"pagesize"`
	DrawBoxes   *bool           `json:"draw_boxes"`
	Backgrounds []string        `json:"backgrounds"`
	Fields      []fieldSpecJSON `json:"fields"`
}

// LoadLayout reads and validates a layout document from a JSON file.
func LoadLayout(path string) (*LayoutDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read layout %s: %w", path, err)
	}
	doc, err := ParseLayout(data)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", path, err)
	}
	return doc, nil
}

// ParseLayout decodes a layout document from JSON bytes. Structural defects
// (missing name or geometry on an interactive field) are fatal; rendering
// never starts from a malformed layout.
func ParseLayout(data []byte) (*LayoutDocument, error) {
	var raw layoutDocumentJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid layout JSON: %w", err)
	}

	doc := &LayoutDocument{
		PageSize:    raw.PageSize,
		DrawBoxes:   true,
		Backgrounds: raw.Backgrounds,
	}
	if raw.DrawBoxes != nil {
		doc.DrawBoxes = *raw.DrawBoxes
	}

	lastPage := 1
	for i, rf := range raw.Fields {
		f, err := rf.toFieldSpec()
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		if f.Page < lastPage {
			return nil, fmt.Errorf("field %d (%s): page %d after page %d; fields must be in non-decreasing page order",
				i, f.Kind, f.Page, lastPage)
		}
		lastPage = f.Page
		doc.Fields = append(doc.Fields, f)
	}
	return doc, nil
}

func (rf fieldSpecJSON) toFieldSpec() (FieldSpec, error) {
	kind, _ := ParseKind(rf.Type)

	f := FieldSpec{
		Kind:        kind,
		Name:        rf.Name,
		Page:        rf.Page,
		X:           rf.X,
		Y:           rf.Y,
		W:           rf.W,
		H:           rf.H,
		X1:          rf.X1,
		Y1:          rf.Y1,
		X2:          rf.X2,
		Y2:          rf.Y2,
		Label:       rf.Label,
		LabelI18n:   rf.LabelI18n,
		Text:        rf.Text,
		TextI18n:    rf.TextI18n,
		Size:        rf.Size,
		Bold:        rf.Bold,
		LineWidth:   rf.Width,
		Checked:     rf.Checked,
		CheckedFrom: rf.CheckedFrom,
		ValueFrom:   rf.ValueFrom,
		Default:     rf.Default,
		Trim:        rf.Trim,
		FillRGB:     rf.FillRGB,
		BorderStyle: rf.BorderStyle,
		BorderWidth: 1,
		ForceBorder: true,
	}

	if f.Page == 0 {
		f.Page = 1
	}
	if f.Page < 1 {
		return f, fmt.Errorf("invalid page %d", f.Page)
	}
	if f.Size == 0 {
		f.Size = 10
	}
	if f.LineWidth == 0 {
		f.LineWidth = 0.8
	}
	if rf.BorderWidth != nil {
		f.BorderWidth = *rf.BorderWidth
	}
	if rf.ForceBorder != nil {
		f.ForceBorder = *rf.ForceBorder
	}
	switch strings.ToLower(rf.ScaleMode) {
	case "", "fit":
		f.ScaleMode = ScaleFit
	case "stretch":
		f.ScaleMode = ScaleStretch
	default:
		return f, fmt.Errorf("invalid scale_mode %q", rf.ScaleMode)
	}

	switch f.Kind {
	case KindText, KindTextarea, KindCheckbox, KindImage:
		if f.Name == "" {
			return f, fmt.Errorf("%s field requires a name", f.Kind)
		}
		if f.W <= 0 || f.H <= 0 {
			return f, fmt.Errorf("%s field %q requires a positive box (w,h)", f.Kind, f.Name)
		}
	case KindRect:
		if f.W <= 0 || f.H <= 0 {
			return f, fmt.Errorf("rect requires a positive box (w,h)")
		}
	case KindLabel, KindLine:
		// Point and segment geometry may legitimately sit at the origin.
	}
	return f, nil
}

// MaxPage returns the highest page index referenced by the field list, at
// least 1 so an empty layout still yields one page.
func (d *LayoutDocument) MaxPage() int {
	maxPage := 1
	for _, f := range d.Fields {
		if f.Page > maxPage {
			maxPage = f.Page
		}
	}
	return maxPage
}
