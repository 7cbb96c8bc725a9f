// Package pdfgen is a small PDF writer purpose-built for form documents:
// pages of text, vector primitives, embedded images, and AcroForm widget
// annotations. It emits PDF 1.7 with non-embedded standard-14 fonts.
package pdfgen

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"time"
)

// Ref is a PDF indirect object number. Objects are numbered from 1 in
// allocation order.
type Ref int

func (r Ref) String() string {
	return fmt.Sprintf("%d 0 R", int(r))
}

// Fixed object numbers allocated by New. Everything else is appended
// behind them in creation order.
const (
	refCatalog  Ref = 1
	refPages    Ref = 2
	refHelv     Ref = 3
	refHelvBold Ref = 4
	refZapf     Ref = 5
)

// Options configures document-level behavior.
type Options struct {
	// PageWidth and PageHeight in points. Zero means A4.
	PageWidth  float64
	PageHeight float64

	// Compress runs content and image streams through FlateDecode.
	// Disabled output is byte-inspectable, which the tests rely on.
	Compress bool

	Title    string
	Author   string
	Subject  string
	Creator  string
	Producer string
}

// A4 page dimensions in points.
const (
	A4Width  = 595.276
	A4Height = 841.890
)

// Document accumulates pages, images, and form fields, then serializes
// them into a single PDF file.
type Document struct {
	pageW, pageH float64
	opts         Options

	// objects[i] holds the body of object i+1 (between "N 0 obj" and
	// "endobj"); nil entries are placeholders filled in before output.
	objects [][]byte

	pages      []*Page
	fieldRefs  []Ref
	imageNames map[Ref]string
	checkAPs   map[float64][2]Ref
	now        time.Time
}

// New creates an empty document. Zero page dimensions default to A4.
func New(opts Options) *Document {
	if opts.PageWidth <= 0 || opts.PageHeight <= 0 {
		opts.PageWidth = A4Width
		opts.PageHeight = A4Height
	}
	d := &Document{
		pageW:      opts.PageWidth,
		pageH:      opts.PageHeight,
		opts:       opts,
		imageNames: make(map[Ref]string),
		now:        time.Now(),
	}

	// Reserve catalog and page tree slots, then emit the fonts.
	d.alloc() // catalog
	d.alloc() // pages
	d.set(d.alloc(), []byte("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>"))
	d.set(d.alloc(), []byte("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica-Bold /Encoding /WinAnsiEncoding >>"))
	d.set(d.alloc(), []byte("<< /Type /Font /Subtype /Type1 /BaseFont /ZapfDingbats >>"))
	return d
}

// PageWidth returns the page width in points.
func (d *Document) PageWidth() float64 { return d.pageW }

// PageHeight returns the page height in points.
func (d *Document) PageHeight() float64 { return d.pageH }

// PageCount returns the number of pages added so far.
func (d *Document) PageCount() int { return len(d.pages) }

// FieldCount returns the number of interactive fields added so far.
func (d *Document) FieldCount() int { return len(d.fieldRefs) }

func (d *Document) alloc() Ref {
	d.objects = append(d.objects, nil)
	return Ref(len(d.objects))
}

func (d *Document) set(ref Ref, body []byte) {
	d.objects[int(ref)-1] = body
}

// AddPage appends a new blank page and returns it for drawing.
func (d *Document) AddPage() *Page {
	p := &Page{
		doc:      d,
		xobjects: make(map[string]Ref),
	}
	d.pages = append(d.pages, p)
	return p
}

// streamObject allocates a stream object with the given extra dictionary
// entries (may be empty) and data, applying Flate compression when enabled.
func (d *Document) streamObject(extraDict string, data []byte) Ref {
	filter := ""
	if d.opts.Compress {
		data = flateCompress(data)
		filter = " /Filter /FlateDecode"
	}
	var body bytes.Buffer
	fmt.Fprintf(&body, "<< /Length %d%s%s >>\nstream\n", len(data), filter, extraDict)
	body.Write(data)
	body.WriteString("\nendstream")
	ref := d.alloc()
	d.set(ref, body.Bytes())
	return ref
}

// Bytes finalizes the document and returns the serialized PDF.
func (d *Document) Bytes() ([]byte, error) {
	if len(d.pages) == 0 {
		return nil, fmt.Errorf("document has no pages")
	}

	kids := make([]Ref, 0, len(d.pages))
	for _, p := range d.pages {
		ref, err := d.finishPage(p)
		if err != nil {
			return nil, err
		}
		kids = append(kids, ref)
	}

	var pagesDict bytes.Buffer
	pagesDict.WriteString("<< /Type /Pages /Kids [")
	for i, k := range kids {
		if i > 0 {
			pagesDict.WriteByte(' ')
		}
		pagesDict.WriteString(k.String())
	}
	fmt.Fprintf(&pagesDict, "] /Count %d >>", len(kids))
	d.set(refPages, pagesDict.Bytes())

	d.set(refCatalog, d.catalogDict())
	infoRef := d.infoObject()

	return d.serialize(infoRef)
}

func (d *Document) catalogDict() []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "<< /Type /Catalog /Pages %s", refPages)
	if len(d.fieldRefs) > 0 {
		b.WriteString(" /AcroForm << /Fields [")
		for i, f := range d.fieldRefs {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(f.String())
		}
		fmt.Fprintf(&b, "] /NeedAppearances true /DR << /Font << /Helv %s /HeBo %s /ZaDb %s >> >> /DA (/Helv 0 Tf 0 g) >>",
			refHelv, refHelvBold, refZapf)
	}
	b.WriteString(" >>")
	return b.Bytes()
}

func (d *Document) infoObject() Ref {
	var b bytes.Buffer
	b.WriteString("<<")
	writeEntry := func(key, val string) {
		if val != "" {
			fmt.Fprintf(&b, " /%s %s", key, pdfString(val))
		}
	}
	writeEntry("Title", d.opts.Title)
	writeEntry("Author", d.opts.Author)
	writeEntry("Subject", d.opts.Subject)
	writeEntry("Creator", d.opts.Creator)
	producer := d.opts.Producer
	if producer == "" {
		producer = "formpdf"
	}
	writeEntry("Producer", producer)
	fmt.Fprintf(&b, " /CreationDate (D:%s)", d.now.UTC().Format("20060102150405Z"))
	b.WriteString(" >>")
	ref := d.alloc()
	d.set(ref, b.Bytes())
	return ref
}

func (d *Document) finishPage(p *Page) (Ref, error) {
	contentRef := d.streamObject("", p.content.Bytes())

	var b bytes.Buffer
	fmt.Fprintf(&b, "<< /Type /Page /Parent %s /MediaBox [0 0 %s %s]", refPages, num(d.pageW), num(d.pageH))
	fmt.Fprintf(&b, " /Resources << /Font << /%s %s /%s %s /%s %s >>",
		FontRegular, refHelv, FontBold, refHelvBold, FontCheck, refZapf)
	if len(p.xobjects) > 0 {
		b.WriteString(" /XObject <<")
		for _, name := range sortedKeys(p.xobjects) {
			fmt.Fprintf(&b, " /%s %s", name, p.xobjects[name])
		}
		b.WriteString(" >>")
	}
	b.WriteString(" /ProcSet [/PDF /Text /ImageB /ImageC /ImageI] >>")
	fmt.Fprintf(&b, " /Contents %s", contentRef)
	if len(p.annots) > 0 {
		b.WriteString(" /Annots [")
		for i, a := range p.annots {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(a.String())
		}
		b.WriteString("]")
	}
	b.WriteString(" >>")

	ref := d.alloc()
	d.set(ref, b.Bytes())
	return ref, nil
}

func (d *Document) serialize(infoRef Ref) ([]byte, error) {
	var out bytes.Buffer
	out.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(d.objects))
	for i, body := range d.objects {
		if body == nil {
			return nil, fmt.Errorf("object %d was allocated but never written", i+1)
		}
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n", i+1)
		out.Write(body)
		out.WriteString("\nendobj\n")
	}

	xrefStart := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n", len(d.objects)+1)
	out.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", off)
	}

	id := md5.Sum(out.Bytes())
	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root %s /Info %s /ID [<%x> <%x>] >>\n",
		len(d.objects)+1, refCatalog, infoRef, id, id)
	fmt.Fprintf(&out, "startxref\n%d\n%%%%EOF\n", xrefStart)
	return out.Bytes(), nil
}
