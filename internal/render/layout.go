package render

import (
	"fmt"
	"image"
	"os"

	"github.com/dokupress/formpdf/internal/forms"
	"github.com/dokupress/formpdf/internal/pdfgen"
)

// backgroundFunc loads the background image for a 1-based page index.
// Its error branch is discarded at the call site: backgrounds are
// best-effort and a missing file never fails a render.
type backgroundFunc func(page int) (image.Image, error)

// noBackgrounds is the loader for layouts without background images.
func noBackgrounds(int) (image.Image, error) {
	return nil, os.ErrNotExist
}

// fileBackgrounds resolves the layout's background list against a
// resolver (typically Definition.BackgroundPath) and decodes the file
// for the requested page. Files larger than maxSize are rejected before
// decoding; zero disables the limit.
func fileBackgrounds(paths []string, resolve func(string) string, maxSize int64) backgroundFunc {
	return func(page int) (image.Image, error) {
		idx := page - 1
		if idx < 0 || idx >= len(paths) {
			return nil, os.ErrNotExist
		}
		data, err := os.ReadFile(resolve(paths[idx]))
		if err != nil {
			return nil, err
		}
		if maxSize > 0 && int64(len(data)) > maxSize {
			return nil, fmt.Errorf("background %s: %d bytes exceeds limit %d", paths[idx], len(data), maxSize)
		}
		return DecodeImage(data)
	}
}

// renderLayout places every field of an explicit layout document at its
// declared coordinates, advancing pages monotonically and backing each
// new page with its background image when one exists.
func renderLayout(
	doc *pdfgen.Document,
	layout *forms.LayoutDocument,
	i18n forms.Table,
	values ValueMap,
	opts Options,
	background backgroundFunc,
) error {
	page := doc.AddPage()
	currentPage := 1
	drawBackground(doc, page, 1, background)

	pl := &placer{
		doc:       doc,
		page:      page,
		i18n:      i18n,
		values:    values,
		flatten:   opts.Flatten,
		maxImage:  opts.MaxImageSize,
		drawBoxes: layout.DrawBoxes && !opts.Flatten,
	}

	for i, f := range layout.Fields {
		for f.Page > currentPage {
			page = doc.AddPage()
			currentPage++
			drawBackground(doc, page, currentPage, background)
			pl.page = page
		}
		if err := pl.place(f); err != nil {
			return fmt.Errorf("field %d (%s): %w", i, f.Name, err)
		}
	}
	return nil
}

// drawBackground stretches the page's background image across the full
// page. Load failures are dropped on purpose.
func drawBackground(doc *pdfgen.Document, page *pdfgen.Page, pageNum int, background backgroundFunc) {
	img, err := background(pageNum)
	if err != nil || img == nil {
		return
	}
	ref, err := doc.AddImage(img)
	if err != nil {
		return
	}
	page.DrawImage(ref, 0, 0, doc.PageWidth(), doc.PageHeight())
}
