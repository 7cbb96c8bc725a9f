package render

// Conversions into points, the page coordinate base unit.
const (
	ptPerCm = 72.0 / 2.54
	ptPerMm = 72.0 / 25.4
)

// Cm converts centimeters to points.
func Cm(v float64) float64 { return v * ptPerCm }

// Mm converts millimeters to points.
func Mm(v float64) float64 { return v * ptPerMm }
