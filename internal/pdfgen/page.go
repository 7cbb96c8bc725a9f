package pdfgen

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"sort"
	"strconv"
)

// Page is one document page. Drawing operators append to its content
// stream; widget annotations attach to its annotation list. Coordinates
// are points with the origin at the bottom-left corner.
type Page struct {
	doc      *Document
	content  bytes.Buffer
	annots   []Ref
	xobjects map[string]Ref
}

// DrawText paints a single line of text. The font name must be one of
// FontRegular or FontBold; x,y position the text baseline.
func (p *Page) DrawText(font string, size, x, y float64, text string) {
	fmt.Fprintf(&p.content, "BT /%s %s Tf %s %s Td %s Tj ET\n",
		font, num(size), num(x), num(y), pdfString(text))
}

// DrawTextLines paints consecutive lines top-down starting at the given
// baseline, separated by leading points.
func (p *Page) DrawTextLines(font string, size, x, y, leading float64, lines []string) {
	for i, line := range lines {
		if line == "" {
			continue
		}
		p.DrawText(font, size, x, y-float64(i)*leading, line)
	}
}

// DrawRect strokes and/or fills a rectangle. fill is the fill color, nil
// for no fill; lineWidth <= 0 suppresses the stroke.
func (p *Page) DrawRect(x, y, w, h, lineWidth float64, fill *[3]float64) {
	if fill != nil {
		fmt.Fprintf(&p.content, "q %s %s %s rg %s %s %s %s re f Q\n",
			num(fill[0]), num(fill[1]), num(fill[2]), num(x), num(y), num(w), num(h))
	}
	if lineWidth > 0 {
		fmt.Fprintf(&p.content, "q 0 G %s w %s %s %s %s re S Q\n",
			num(lineWidth), num(x), num(y), num(w), num(h))
	}
}

// DrawLine strokes a straight segment.
func (p *Page) DrawLine(x1, y1, x2, y2, lineWidth float64) {
	if lineWidth <= 0 {
		lineWidth = 1
	}
	fmt.Fprintf(&p.content, "q 0 G %s w %s %s m %s %s l S Q\n",
		num(lineWidth), num(x1), num(y1), num(x2), num(y2))
}

// DrawImage places a previously added image XObject into the given box.
// The box is the final placement; aspect-ratio decisions happen before
// this call.
func (p *Page) DrawImage(img Ref, x, y, w, h float64) {
	name, ok := p.doc.imageNames[img]
	if !ok {
		return
	}
	p.xobjects[name] = img
	fmt.Fprintf(&p.content, "q %s 0 0 %s %s %s cm /%s Do Q\n",
		num(w), num(h), num(x), num(y), name)
}

// num formats a coordinate or measure compactly for the content stream.
func num(f float64) string {
	s := strconv.FormatFloat(f, 'f', 3, 64)
	s = trimTrailingZeros(s)
	return s
}

func trimTrailingZeros(s string) string {
	if !bytes.ContainsRune([]byte(s), '.') {
		return s
	}
	i := len(s)
	for i > 0 && s[i-1] == '0' {
		i--
	}
	if i > 0 && s[i-1] == '.' {
		i--
	}
	return s[:i]
}

func sortedKeys(m map[string]Ref) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func flateCompress(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write(data)
	zw.Close()
	return buf.Bytes()
}
