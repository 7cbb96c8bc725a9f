package render

import (
	"fmt"

	"github.com/dokupress/formpdf/internal/forms"
	"github.com/dokupress/formpdf/internal/pdfgen"
)

// autoLayout derives a single-column, multi-page layout from a schema
// when no explicit layout document exists. A running vertical cursor
// flows rows top-down; the bottom-margin check precedes every row so a
// row is never split across the margin.
type autoLayout struct {
	doc  *pdfgen.Document
	pl   *placer
	i18n forms.Table
	opts Options

	xLabel float64
	xField float64
	fieldW float64
	y      float64
	bottom float64

	// err keeps the first placement failure; see put.
	err error
}

// renderAutoLayout lays out all schema sections plus the trailing
// place/date and signature rows.
func renderAutoLayout(
	doc *pdfgen.Document,
	schema *forms.Schema,
	i18n forms.Table,
	values ValueMap,
	opts Options,
) error {
	a := &autoLayout{
		doc: doc,
		pl: &placer{
			doc:       doc,
			i18n:      i18n,
			values:    values,
			flatten:   opts.Flatten,
			maxImage:  opts.MaxImageSize,
			drawBoxes: !opts.Flatten,
		},
		i18n:   i18n,
		opts:   opts,
		xLabel: opts.MarginLeft,
		xField: opts.MarginLeft + opts.LabelWidth,
		bottom: opts.MarginBottom,
	}
	a.fieldW = doc.PageWidth() - opts.MarginRight - a.xField

	a.pl.page = doc.AddPage()
	a.y = doc.PageHeight() - opts.MarginTop

	title := i18n.Lookup(opts.TitleKey, schema.Title)
	if title == "" {
		title = "Interactive Form"
	}
	a.caption(a.xLabel, a.y, title, true, 14)
	a.y -= Cm(1.0)

	for _, sec := range schema.Sections {
		a.sectionTitle(i18n.Lookup(sec.TitleI18n, sec.Key))
		for _, fld := range sec.Fields {
			a.placeField(sec, fld)
		}
		a.y -= 6
	}

	a.placeDateRow(schema.Misc)
	a.placeSignatureRow()
	return a.err
}

// put routes one synthesized field through the shared placement
// primitive. Every kind the auto layout emits is handled there, so a
// failure is a bug in the row builders; the first one is kept and
// returned by renderAutoLayout instead of being dropped.
func (a *autoLayout) put(f forms.FieldSpec) {
	if err := a.pl.place(f); err != nil && a.err == nil {
		a.err = fmt.Errorf("auto layout field %q: %w", f.Name, err)
	}
}

func (a *autoLayout) placeField(sec forms.Section, fld forms.SchemaField) {
	name := forms.FieldName(sec.Key, fld.Key)
	label := a.i18n.Lookup(fld.LabelI18n, fld.Key)

	// Unrecognized types fall back to the text row on purpose.
	kind, _ := forms.ParseKind(fld.Type)
	switch kind {
	case forms.KindTextarea:
		a.textareaRow(label, name, fld.Rows)
	case forms.KindCheckbox:
		a.checkboxRow(label, name)
	default:
		a.textRow(label, name, a.xField, a.fieldW, "")
	}
}

// ensure forces a page break when the next row of height h would cross
// the bottom margin.
func (a *autoLayout) ensure(h float64) {
	if a.y-h < a.bottom {
		a.pl.page = a.doc.AddPage()
		a.y = a.doc.PageHeight() - a.opts.MarginTop
	}
}

// caption draws static text through the shared placement primitive.
func (a *autoLayout) caption(x, y float64, text string, bold bool, size float64) {
	a.put(forms.FieldSpec{
		Kind: forms.KindLabel,
		Text: text,
		X:    x,
		Y:    y,
		Size: size,
		Bold: bold,
	})
}

func (a *autoLayout) sectionTitle(title string) {
	a.ensure(20)
	a.caption(a.xLabel, a.y-12, title, true, 11)
	a.y -= 8
}

func (a *autoLayout) textRow(label, name string, x, w float64, defaultValue string) {
	a.ensure(a.opts.RowHeight)
	a.caption(a.xLabel, a.y-12, label+":", false, 10)
	a.put(a.textSpec(name, label, x, a.y-16, w, 16, false, defaultValue))
	a.y -= a.opts.RowHeight
}

func (a *autoLayout) textareaRow(label, name string, rows int) {
	if rows <= 0 {
		rows = 5
	}
	h := float64(16*rows + 4)
	if h < 36 {
		h = 36
	}
	a.ensure(h)
	a.caption(a.xLabel, a.y-12, label+":", false, 10)
	a.put(a.textSpec(name, label, a.xField, a.y-h+4, a.fieldW, h-8, true, ""))
	a.y -= h + 4
}

func (a *autoLayout) checkboxRow(label, name string) {
	a.ensure(a.opts.RowHeight)
	const boxSize = 12
	a.put(forms.FieldSpec{
		Kind:        forms.KindCheckbox,
		Name:        name,
		Label:       label,
		X:           a.xField,
		Y:           a.y - 14,
		W:           boxSize,
		H:           boxSize,
		BorderWidth: 1,
		ForceBorder: true,
		Size:        10,
	})
	a.caption(a.xField+boxSize+6, a.y-12, label, false, 10)
	a.y -= a.opts.RowHeight
}

// placeDateRow draws the combined place/date row when the schema asks
// for it through a default city or a date placeholder.
func (a *autoLayout) placeDateRow(misc forms.Misc) {
	if misc.StadtDefault == "" && misc.DatePlaceholder == "" {
		return
	}
	a.ensure(40)

	ortLabel := a.i18n.Lookup("field.ort", "Ort")
	a.caption(a.xLabel, a.y-12, ortLabel+":", false, 10)
	a.put(a.textSpec("stadt", ortLabel, a.xField, a.y-16, a.fieldW/2-10, 16, false, misc.StadtDefault))

	datumLabel := a.i18n.Lookup("field.datum", "Datum")
	a.caption(a.xField+a.fieldW/2+10, a.y-12, datumLabel+":", false, 10)
	a.put(a.textSpec("datum", datumLabel, a.xField+a.fieldW/2+50, a.y-16, a.fieldW/2-50, 16, false, misc.DatePlaceholder))

	a.y -= 28
}

// placeSignatureRow always closes the document with a signature caption
// and an outline guide box; a supplied signature image is drawn into the
// box when flattening.
func (a *autoLayout) placeSignatureRow() {
	a.ensure(50)
	a.caption(a.xLabel, a.y-12, a.i18n.Lookup("signature.title", "Unterschrift")+":", false, 10)

	boxW, boxH := Cm(6), 30.0
	a.put(forms.FieldSpec{
		Kind: forms.KindRect,
		X:    a.xField,
		Y:    a.y - 40,
		W:    boxW,
		H:    boxH,
	})
	if a.opts.Flatten {
		a.put(forms.FieldSpec{
			Kind: forms.KindImage,
			Name: "signature",
			X:    a.xField,
			Y:    a.y - 40,
			W:    boxW,
			H:    boxH,
			Trim: true,
		})
	}
	a.y -= 46
}

func (a *autoLayout) textSpec(name, label string, x, y, w, h float64, multiline bool, defaultValue string) forms.FieldSpec {
	kind := forms.KindText
	if multiline {
		kind = forms.KindTextarea
	}
	return forms.FieldSpec{
		Kind:        kind,
		Name:        name,
		Label:       label,
		X:           x,
		Y:           y,
		W:           w,
		H:           h,
		Size:        10,
		Default:     defaultValue,
		BorderStyle: "inset",
		BorderWidth: 1,
		ForceBorder: true,
	}
}
