package render

import (
	"fmt"

	"github.com/dokupress/formpdf/internal/forms"
	"github.com/dokupress/formpdf/internal/pdfgen"
)

// fillTint is the light bluish background painted under editable fields
// when placeholder boxes are enabled.
var fillTint = [3]float64{0.85, 0.89, 1.0}

// placer draws one typed field at explicit coordinates, in either
// interactive or flattened mode. Both renderers funnel every field
// through it, so a given kind renders identically no matter which
// renderer asked.
type placer struct {
	doc  *pdfgen.Document
	page *pdfgen.Page

	i18n    forms.Table
	values  ValueMap
	flatten bool

	// maxImage caps the encoded size of image values; zero is unlimited.
	maxImage int64

	// drawBoxes paints tinted placeholder boxes under editable fields
	// in interactive mode.
	drawBoxes bool
}

// place renders a single field. Only structural defects are errors;
// missing values, translations, and undecodable images degrade silently.
func (pl *placer) place(f forms.FieldSpec) error {
	switch f.Kind {
	case forms.KindRect:
		pl.page.DrawRect(f.X, f.Y, f.W, f.H, 1, nil)
	case forms.KindLine:
		pl.page.DrawLine(f.X1, f.Y1, f.X2, f.Y2, f.LineWidth)
	case forms.KindLabel:
		pl.placeLabel(f)
	case forms.KindCheckbox:
		pl.placeCheckbox(f)
	case forms.KindImage:
		pl.placeImage(f)
	case forms.KindText, forms.KindTextarea:
		pl.placeText(f)
	default:
		return fmt.Errorf("unhandled field kind %v", f.Kind)
	}
	return nil
}

// labelText resolves the caption of an editable field: i18n key first,
// literal label next, field name last.
func (pl *placer) labelText(f forms.FieldSpec) string {
	fallback := f.Label
	if fallback == "" {
		fallback = f.Name
	}
	return pl.i18n.Lookup(f.LabelI18n, fallback)
}

func (pl *placer) placeLabel(f forms.FieldSpec) {
	var text string
	if f.TextI18n != "" {
		text = pl.i18n.Lookup(f.TextI18n, f.Text)
	} else {
		text = f.Text
	}
	font := pdfgen.FontRegular
	if f.Bold {
		font = pdfgen.FontBold
	}
	pl.page.DrawText(font, f.Size, f.X, f.Y, text)
}

func (pl *placer) placeCheckbox(f forms.FieldSpec) {
	checked := pl.values.resolveChecked(f)
	size := f.W
	if f.H < size {
		size = f.H
	}

	if pl.flatten {
		pl.page.DrawRect(f.X, f.Y, size, size, 1, nil)
		if checked {
			glyph := size - 3
			if glyph < 4 {
				glyph = 4
			}
			pl.page.DrawText(pdfgen.FontCheck, glyph, f.X+1.5, f.Y+size*0.2, "4")
		}
		return
	}

	if pl.drawBoxes {
		pl.page.DrawRect(f.X, f.Y, size, size, 1, &fillTint)
	}
	pl.page.AddCheckbox(f.X, f.Y, size, pdfgen.CheckboxOptions{
		Name:        f.Name,
		Tooltip:     pl.labelText(f),
		Checked:     checked,
		BorderWidth: 1,
	})
}

// placeImage embeds a raster value into the field box, honoring trim and
// scale mode. Absent values, oversized inputs, and decode failures omit
// the image; the failure branch is deliberately dropped here to keep the
// render best-effort.
func (pl *placer) placeImage(f forms.FieldSpec) {
	data, ok := pl.values.Bytes(valueKey(f))
	if !ok {
		return
	}
	if pl.maxImage > 0 && int64(len(data)) > pl.maxImage {
		return
	}
	img, err := DecodeImage(data)
	if err != nil {
		return
	}
	if f.Trim {
		img = Trim(img)
	}

	b := img.Bounds()
	outW, outH := FitSize(float64(b.Dx()), float64(b.Dy()), f.W, f.H, f.ScaleMode)
	ref, err := pl.doc.AddImage(img)
	if err != nil {
		return
	}
	pl.page.DrawImage(ref, f.X, f.Y, outW, outH)
}

func (pl *placer) placeText(f forms.FieldSpec) {
	value := pl.values.resolveString(f)

	if pl.flatten {
		if f.Kind == forms.KindTextarea {
			pl.flattenTextarea(f, value)
		} else if value != "" {
			pl.page.DrawText(pdfgen.FontRegular, f.Size, f.X+1, f.Y+f.H-12, value)
		}
		return
	}

	if pl.drawBoxes {
		pl.page.DrawRect(f.X, f.Y, f.W, f.H, 1, &fillTint)
	}
	borderWidth := f.BorderWidth
	if !f.ForceBorder {
		borderWidth = 0
	}
	style := f.BorderStyle
	if style == "" {
		style = "inset"
	}
	pl.page.AddTextField(f.X, f.Y, f.W, f.H, pdfgen.TextFieldOptions{
		Name:        f.Name,
		Tooltip:     pl.labelText(f),
		Value:       value,
		Multiline:   f.Kind == forms.KindTextarea,
		BorderStyle: style,
		BorderWidth: borderWidth,
	})
}

// flattenTextarea wraps the value inside the box and clips to its height.
func (pl *placer) flattenTextarea(f forms.FieldSpec, value string) {
	if value == "" {
		return
	}
	leading := f.Size + 2
	lines := pdfgen.WrapText(value, f.Size, f.W-2)
	maxLines := int(f.H / leading)
	if maxLines < 1 {
		maxLines = 1
	}
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	pl.page.DrawTextLines(pdfgen.FontRegular, f.Size, f.X+1, f.Y+f.H-12, leading, lines)
}
