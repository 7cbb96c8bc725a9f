package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dokupress/formpdf/internal/forms"
	"github.com/dokupress/formpdf/internal/pdfgen"
)

// renderLayoutBytes renders a layout with compression off so assertions
// can look straight into the content streams.
func renderLayoutBytes(t *testing.T, layout *forms.LayoutDocument, i18n forms.Table, values ValueMap, flatten bool) (string, *pdfgen.Document) {
	t.Helper()
	doc := pdfgen.New(pdfgen.Options{Compress: false})
	err := renderLayout(doc, layout, i18n, values, Options{Flatten: flatten}, noBackgrounds)
	require.NoError(t, err)
	out, err := doc.Bytes()
	require.NoError(t, err)
	return string(out), doc
}

func singleTextLayout() *forms.LayoutDocument {
	return &forms.LayoutDocument{
		DrawBoxes: true,
		Fields: []forms.FieldSpec{{
			Kind: forms.KindText, Name: "person_name", Page: 1,
			X: 100, Y: 700, W: 200, H: 16,
			Size: 10, BorderStyle: "inset", BorderWidth: 1, ForceBorder: true,
		}},
	}
}

func TestInteractiveTextField(t *testing.T) {
	out, doc := renderLayoutBytes(t, singleTextLayout(), forms.Table{},
		ValueMap{"person_name": "Jane Doe"}, false)

	assert.Equal(t, 1, doc.FieldCount())
	assert.Contains(t, out, "/T (person_name)")
	assert.Contains(t, out, "/V (Jane Doe)")
	assert.Contains(t, out, "/Rect [100 700 300 716]")
	assert.Contains(t, out, "/S /I")
	// Placeholder tint under the field.
	assert.Contains(t, out, "0.85 0.89 1 rg 100 700 200 16 re f")
}

func TestFlattenedTextField(t *testing.T) {
	out, doc := renderLayoutBytes(t, singleTextLayout(), forms.Table{},
		ValueMap{"person_name": "Jane Doe"}, true)

	assert.Equal(t, 0, doc.FieldCount())
	assert.NotContains(t, out, "/FT /Tx")
	assert.NotContains(t, out, "/AcroForm")
	// Value drawn at the baseline inset from the box top-left.
	assert.Contains(t, out, "101 704 Td (Jane Doe) Tj")
}

func TestCheckboxFromCheckedFrom(t *testing.T) {
	layout := &forms.LayoutDocument{
		DrawBoxes: true,
		Fields: []forms.FieldSpec{{
			Kind: forms.KindCheckbox, Name: "consent", Page: 1,
			CheckedFrom: "agree",
			X:           520, Y: 645, W: 12, H: 12,
			Size: 10, BorderWidth: 1,
		}},
	}

	out, _ := renderLayoutBytes(t, layout, forms.Table{}, ValueMap{"agree": "X"}, false)
	assert.Contains(t, out, "/T (consent)")
	assert.Contains(t, out, "/V /Yes /AS /Yes")

	out, _ = renderLayoutBytes(t, layout, forms.Table{}, ValueMap{"agree": "nope"}, false)
	assert.Contains(t, out, "/V /Off /AS /Off")
}

func TestFlattenedCheckbox(t *testing.T) {
	layout := &forms.LayoutDocument{
		Fields: []forms.FieldSpec{{
			Kind: forms.KindCheckbox, Name: "consent", Page: 1,
			X: 50, Y: 500, W: 12, H: 12, Size: 10,
		}},
	}

	out, doc := renderLayoutBytes(t, layout, forms.Table{}, ValueMap{"consent": "ja"}, true)
	assert.Equal(t, 0, doc.FieldCount())
	// Bordered square plus the ZapfDingbats check glyph.
	assert.Contains(t, out, "50 500 12 12 re S")
	assert.Contains(t, out, "/ZaDb 9 Tf")
	assert.Contains(t, out, "(4) Tj")

	out, _ = renderLayoutBytes(t, layout, forms.Table{}, ValueMap{}, true)
	assert.Contains(t, out, "50 500 12 12 re S")
	assert.NotContains(t, out, "(4) Tj")
}

func TestPageAdvancement(t *testing.T) {
	layout := &forms.LayoutDocument{
		Fields: []forms.FieldSpec{
			{Kind: forms.KindLabel, Text: "first", Page: 1, X: 50, Y: 800, Size: 10},
			{Kind: forms.KindLabel, Text: "also first", Page: 1, X: 50, Y: 780, Size: 10},
			{Kind: forms.KindLabel, Text: "third", Page: 3, X: 50, Y: 800, Size: 10},
		},
	}

	_, doc := renderLayoutBytes(t, layout, forms.Table{}, ValueMap{}, false)
	// Page 2 exists even though nothing is placed on it.
	assert.Equal(t, 3, doc.PageCount())
}

func TestFlattenInteractiveParity(t *testing.T) {
	layout := &forms.LayoutDocument{
		DrawBoxes: false,
		Fields: []forms.FieldSpec{
			{Kind: forms.KindText, Name: "a", Page: 1, X: 100, Y: 700, W: 200, H: 16, Size: 10, BorderWidth: 1, ForceBorder: true},
			{Kind: forms.KindCheckbox, Name: "b", Page: 1, X: 100, Y: 650, W: 12, H: 12, Size: 10},
			{Kind: forms.KindTextarea, Name: "c", Page: 2, X: 100, Y: 500, W: 300, H: 70, Size: 10, BorderWidth: 1, ForceBorder: true},
		},
	}
	values := ValueMap{"a": "v", "b": "ja", "c": "long text"}

	interactive, docI := renderLayoutBytes(t, layout, forms.Table{}, values, false)
	flattened, docF := renderLayoutBytes(t, layout, forms.Table{}, values, true)

	// Same page structure either way.
	assert.Equal(t, docI.PageCount(), docF.PageCount())
	// All three fields are live in interactive mode, none when flattened.
	assert.Equal(t, 3, docI.FieldCount())
	assert.Equal(t, 0, docF.FieldCount())
	// The declared geometry shows up in both renderings.
	assert.Contains(t, interactive, "/Rect [100 700 300 716]")
	assert.Contains(t, flattened, "101 704 Td (v) Tj")
	assert.Contains(t, interactive, "/Rect [100 650 112 662]")
	assert.Contains(t, flattened, "100 650 12 12 re S")
}

func TestLabelLineRect(t *testing.T) {
	layout := &forms.LayoutDocument{
		Fields: []forms.FieldSpec{
			{Kind: forms.KindLabel, TextI18n: "signature.title", Text: "fallback", Page: 1, X: 300, Y: 172, Size: 10, Bold: true},
			{Kind: forms.KindLine, Page: 1, X1: 330, Y1: 170, X2: 480, Y2: 170, LineWidth: 0.8},
			{Kind: forms.KindRect, Page: 1, X: 330, Y: 135, W: 150, H: 30},
		},
	}
	i18n := forms.Table{"signature.title": "Unterschrift"}

	out, doc := renderLayoutBytes(t, layout, i18n, ValueMap{}, false)
	assert.Equal(t, 0, doc.FieldCount())
	assert.Contains(t, out, "/F2 10 Tf 300 172 Td (Unterschrift) Tj")
	assert.Contains(t, out, "330 170 m 480 170 l S")
	assert.Contains(t, out, "330 135 150 30 re S")
}

func TestLabelLiteralFallback(t *testing.T) {
	layout := &forms.LayoutDocument{
		Fields: []forms.FieldSpec{
			{Kind: forms.KindLabel, TextI18n: "missing.key", Text: "literal", Page: 1, X: 10, Y: 10, Size: 10},
		},
	}

	out, _ := renderLayoutBytes(t, layout, forms.Table{}, ValueMap{}, false)
	assert.Contains(t, out, "(literal) Tj")
}

func TestMissingBackgroundIsSkipped(t *testing.T) {
	layout := &forms.LayoutDocument{
		Backgrounds: []string{"does/not/exist.png"},
		Fields: []forms.FieldSpec{
			{Kind: forms.KindLabel, Text: "hi", Page: 1, X: 10, Y: 10, Size: 10},
		},
	}

	doc := pdfgen.New(pdfgen.Options{Compress: false})
	bg := fileBackgrounds(layout.Backgrounds, func(s string) string { return s }, 0)
	err := renderLayout(doc, layout, forms.Table{}, ValueMap{}, Options{}, bg)
	require.NoError(t, err)

	out, err := doc.Bytes()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "/Subtype /Image")
}

func TestImageFieldFitScenario(t *testing.T) {
	// 300x100 opaque source into a (0,0,150,40) box, fit mode: the
	// image lands height-bound at 120x40.
	src := image.NewNRGBA(image.Rect(0, 0, 300, 100))
	for i := 0; i < len(src.Pix); i += 4 {
		src.Pix[i+3] = 0xff
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	layout := &forms.LayoutDocument{
		Fields: []forms.FieldSpec{{
			Kind: forms.KindImage, Name: "sig_box", ValueFrom: "sig", Page: 1,
			X: 0, Y: 0, W: 150, H: 40, Size: 10,
		}},
	}

	out, _ := renderLayoutBytes(t, layout, forms.Table{}, ValueMap{"sig": buf.Bytes()}, true)
	assert.Contains(t, out, "120 0 0 40 0 0 cm /Im1 Do")
}

func TestOversizedImageValueSkipped(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	layout := &forms.LayoutDocument{
		Fields: []forms.FieldSpec{{
			Kind: forms.KindImage, Name: "photo", Page: 1,
			X: 10, Y: 10, W: 100, H: 100, Size: 10,
		}},
	}
	values := ValueMap{"photo": buf.Bytes()}

	doc := pdfgen.New(pdfgen.Options{Compress: false})
	opts := Options{Flatten: true, MaxImageSize: int64(buf.Len()) - 1}
	require.NoError(t, renderLayout(doc, layout, forms.Table{}, values, opts, noBackgrounds))
	out, err := doc.Bytes()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "/Subtype /Image")

	// At the limit the same render embeds it.
	doc = pdfgen.New(pdfgen.Options{Compress: false})
	opts.MaxImageSize = int64(buf.Len())
	require.NoError(t, renderLayout(doc, layout, forms.Table{}, values, opts, noBackgrounds))
	out, err = doc.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(out), "/Subtype /Image")
}

func TestOversizedBackgroundSkipped(t *testing.T) {
	dir := t.TempDir()
	src := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scan.png"), buf.Bytes(), 0o644))

	layout := &forms.LayoutDocument{
		Backgrounds: []string{"scan.png"},
		Fields: []forms.FieldSpec{
			{Kind: forms.KindLabel, Text: "hi", Page: 1, X: 10, Y: 10, Size: 10},
		},
	}
	resolve := func(s string) string { return filepath.Join(dir, s) }

	doc := pdfgen.New(pdfgen.Options{Compress: false})
	bg := fileBackgrounds(layout.Backgrounds, resolve, int64(buf.Len())-1)
	require.NoError(t, renderLayout(doc, layout, forms.Table{}, ValueMap{}, Options{}, bg))
	out, err := doc.Bytes()
	require.NoError(t, err)
	assert.NotContains(t, string(out), "/Subtype /Image")
}

func TestImageDecodeFailureIsSwallowed(t *testing.T) {
	layout := &forms.LayoutDocument{
		Fields: []forms.FieldSpec{{
			Kind: forms.KindImage, Name: "photo", Page: 1,
			X: 10, Y: 10, W: 100, H: 100, Size: 10,
		}},
	}

	out, _ := renderLayoutBytes(t, layout, forms.Table{}, ValueMap{"photo": []byte("garbage")}, false)
	assert.NotContains(t, out, "/Subtype /Image")
}

func TestTrimmedSignaturePlacement(t *testing.T) {
	// A mostly transparent canvas with a small opaque stroke: trim
	// should crop before fitting, so the drawn size reflects the ink
	// bounds, not the canvas.
	src := image.NewNRGBA(image.Rect(0, 0, 400, 400))
	for y := 100; y < 150; y++ {
		for x := 0; x < 200; x++ {
			src.SetNRGBA(x, y, color.NRGBA{B: 255, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	layout := &forms.LayoutDocument{
		Fields: []forms.FieldSpec{{
			Kind: forms.KindImage, Name: "signature", Page: 1, Trim: true,
			X: 50, Y: 50, W: 180, H: 80, Size: 10,
		}},
	}

	// Trimmed source is 200x50, aspect 0.25: width-bound at 180x45.
	out, _ := renderLayoutBytes(t, layout, forms.Table{}, ValueMap{"signature": buf.Bytes()}, true)
	assert.Contains(t, out, "180 0 0 45 50 50 cm")
}

func TestTextareaFlattenWrapsAndClips(t *testing.T) {
	layout := &forms.LayoutDocument{
		Fields: []forms.FieldSpec{{
			Kind: forms.KindTextarea, Name: "notes", Page: 1,
			X: 100, Y: 500, W: 200, H: 70, Size: 10,
			BorderWidth: 1, ForceBorder: true,
		}},
	}
	values := ValueMap{"notes": "line one\nline two"}

	out, _ := renderLayoutBytes(t, layout, forms.Table{}, values, true)
	assert.Contains(t, out, "(line one) Tj")
	assert.Contains(t, out, "(line two) Tj")
	// First line sits at the top inset, the second one leading below.
	assert.Contains(t, out, "101 558 Td (line one) Tj")
	assert.Contains(t, out, "101 546 Td (line two) Tj")
}

func TestStructuralErrorAborts(t *testing.T) {
	_, err := forms.ParseLayout([]byte(`{"fields":[{"type":"text","x":1,"y":2,"w":10,"h":10}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires a name")
}
