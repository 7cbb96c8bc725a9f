package render

// Options are the per-render knobs shared by both renderers. The auto
// layout additionally uses the label column width and row height.
type Options struct {
	// Flatten renders static visual output instead of live fields.
	Flatten bool

	// Margins in points.
	MarginLeft   float64
	MarginRight  float64
	MarginTop    float64
	MarginBottom float64

	// TitleKey is the i18n key of the document heading.
	TitleKey string

	// LabelWidth is the auto-layout label column width; the value column
	// starts right after it.
	LabelWidth float64

	// RowHeight is the auto-layout height of a single text row,
	// including its gap.
	RowHeight float64

	// Compress enables stream compression in the output.
	Compress bool

	// MaxImageSize caps the encoded byte size of image values and page
	// backgrounds; larger inputs are skipped before decoding. Zero means
	// no limit.
	MaxImageSize int64
}

// DefaultOptions returns the standard A4 form layout parameters.
func DefaultOptions() Options {
	return Options{
		MarginLeft:   40,
		MarginRight:  40,
		MarginTop:    36,
		MarginBottom: 36,
		TitleKey:     "app.title",
		LabelWidth:   Cm(5.8),
		RowHeight:    18,
		Compress:     true,
		MaxImageSize: 20 * 1024 * 1024,
	}
}
