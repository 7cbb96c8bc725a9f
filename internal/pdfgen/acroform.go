package pdfgen

import (
	"bytes"
	"fmt"
)

// Field flag bits from the PDF specification.
const (
	ffMultiline = 1 << 12
)

// TextFieldOptions configures an interactive text widget.
type TextFieldOptions struct {
	Name      string
	Tooltip   string
	Value     string
	Multiline bool

	// FontSize 0 means auto-size (viewer picks a size that fits).
	FontSize float64

	// BorderStyle is one of "solid", "inset", "underlined" (empty means
	// solid); BorderWidth 0 draws no visible widget border.
	BorderStyle string
	BorderWidth float64
}

// AddTextField places an interactive text field widget on the page. The
// rectangle is the widget area in page coordinates.
func (p *Page) AddTextField(x, y, w, h float64, opt TextFieldOptions) Ref {
	var b bytes.Buffer
	fmt.Fprintf(&b, "<< /Type /Annot /Subtype /Widget /FT /Tx /Rect [%s %s %s %s]",
		num(x), num(y), num(x+w), num(y+h))
	fmt.Fprintf(&b, " /T %s", pdfString(opt.Name))
	if opt.Tooltip != "" {
		fmt.Fprintf(&b, " /TU %s", pdfString(opt.Tooltip))
	}
	if opt.Value != "" {
		fmt.Fprintf(&b, " /V %s", pdfString(opt.Value))
	}
	flags := 0
	if opt.Multiline {
		flags |= ffMultiline
	}
	if flags != 0 {
		fmt.Fprintf(&b, " /Ff %d", flags)
	}
	fmt.Fprintf(&b, " /F 4 /DA (/Helv %s Tf 0 g)", num(opt.FontSize))
	b.WriteString(" /MK << /BC [0 0 0] /BG [1 1 1] >>")
	fmt.Fprintf(&b, " /BS << /W %s /S /%s >>", num(opt.BorderWidth), borderStyleName(opt.BorderStyle))
	b.WriteString(" >>")

	ref := p.doc.alloc()
	p.doc.set(ref, b.Bytes())
	p.annots = append(p.annots, ref)
	p.doc.fieldRefs = append(p.doc.fieldRefs, ref)
	return ref
}

// CheckboxOptions configures an interactive checkbox widget.
type CheckboxOptions struct {
	Name    string
	Tooltip string
	Checked bool

	BorderWidth float64
}

// AddCheckbox places a square checkbox widget with the given edge length.
// The on state shows a ZapfDingbats check mark.
func (p *Page) AddCheckbox(x, y, size float64, opt CheckboxOptions) Ref {
	onRef, offRef := p.doc.checkAppearances(size)

	state := "Off"
	if opt.Checked {
		state = "Yes"
	}
	bw := opt.BorderWidth
	if bw <= 0 {
		bw = 1
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "<< /Type /Annot /Subtype /Widget /FT /Btn /Rect [%s %s %s %s]",
		num(x), num(y), num(x+size), num(y+size))
	fmt.Fprintf(&b, " /T %s", pdfString(opt.Name))
	if opt.Tooltip != "" {
		fmt.Fprintf(&b, " /TU %s", pdfString(opt.Tooltip))
	}
	fmt.Fprintf(&b, " /V /%s /AS /%s /F 4", state, state)
	b.WriteString(" /DA (/ZaDb 0 Tf 0 g)")
	b.WriteString(" /MK << /CA (4) /BC [0 0 0] /BG [1 1 1] >>")
	fmt.Fprintf(&b, " /BS << /W %s /S /S >>", num(bw))
	fmt.Fprintf(&b, " /AP << /N << /Yes %s /Off %s >> >>", onRef, offRef)
	b.WriteString(" >>")

	ref := p.doc.alloc()
	p.doc.set(ref, b.Bytes())
	p.annots = append(p.annots, ref)
	p.doc.fieldRefs = append(p.doc.fieldRefs, ref)
	return ref
}

func borderStyleName(style string) string {
	switch style {
	case "inset":
		return "I"
	case "underlined":
		return "U"
	case "dashed":
		return "D"
	case "beveled":
		return "B"
	}
	return "S"
}

// checkAppearances builds (or reuses) the on/off appearance form XObjects
// for checkboxes of the given size.
func (d *Document) checkAppearances(size float64) (on, off Ref) {
	if d.checkAPs == nil {
		d.checkAPs = make(map[float64][2]Ref)
	}
	if refs, ok := d.checkAPs[size]; ok {
		return refs[0], refs[1]
	}

	frame := fmt.Sprintf("q 1 g 0 0 %s %s re f 0 G 1 w 0.5 0.5 %s %s re S Q\n",
		num(size), num(size), num(size-1), num(size-1))

	// ZapfDingbats "4" is the check mark glyph. Scale it to the box with
	// a little margin on each side.
	glyphSize := size - 4
	if glyphSize < 4 {
		glyphSize = 4
	}
	check := fmt.Sprintf("q BT /ZaDb %s Tf 0 g 2 %s Td (4) Tj ET Q\n",
		num(glyphSize), num(size*0.2))

	dict := fmt.Sprintf(" /Type /XObject /Subtype /Form /BBox [0 0 %s %s] /Resources << /Font << /ZaDb %s >> >>",
		num(size), num(size), refZapf)
	on = d.streamObject(dict, []byte(frame+check))
	off = d.streamObject(dict, []byte(frame))

	d.checkAPs[size] = [2]Ref{on, off}
	return on, off
}
