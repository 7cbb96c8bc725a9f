package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/dokupress/formpdf/internal/forms"
)

// DecodeImage decodes raster bytes in any registered format (PNG, JPEG,
// GIF, BMP, TIFF).
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Trim crops blank margins from an image. Images that carry an alpha
// channel crop to the non-zero alpha bounding box; images without one
// crop to the non-white bounding box. The channel decides, not the
// pixel content: a fully opaque RGBA scan keeps its white margins. A
// fully blank image is returned unchanged; the result is never
// zero-size.
func Trim(img image.Image) image.Image {
	bounds := img.Bounds()
	box := image.Rectangle{Min: bounds.Max, Max: bounds.Min}

	hasAlpha := hasAlphaChannel(img)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if pixelBlank(img.At(x, y), hasAlpha) {
				continue
			}
			if x < box.Min.X {
				box.Min.X = x
			}
			if y < box.Min.Y {
				box.Min.Y = y
			}
			if x+1 > box.Max.X {
				box.Max.X = x + 1
			}
			if y+1 > box.Max.Y {
				box.Max.Y = y + 1
			}
		}
	}

	if box.Empty() || box == bounds {
		return img
	}
	return cropImage(img, box)
}

// hasAlphaChannel reports whether the decoded image type stores alpha.
func hasAlphaChannel(img image.Image) bool {
	switch img.(type) {
	case *image.NRGBA, *image.NRGBA64, *image.RGBA, *image.RGBA64,
		*image.Alpha, *image.Alpha16:
		return true
	}
	return false
}

// pixelBlank reports whether a pixel counts as background: fully
// transparent when the image has an alpha channel, pure white otherwise.
func pixelBlank(c color.Color, hasAlpha bool) bool {
	r, g, b, a := c.RGBA()
	if hasAlpha {
		return a == 0
	}
	return r == 0xffff && g == 0xffff && b == 0xffff
}

func cropImage(img image.Image, box image.Rectangle) image.Image {
	type subImager interface {
		SubImage(image.Rectangle) image.Image
	}
	if s, ok := img.(subImager); ok {
		return s.SubImage(box)
	}
	out := image.NewNRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	for y := box.Min.Y; y < box.Max.Y; y++ {
		for x := box.Min.X; x < box.Max.X; x++ {
			out.Set(x-box.Min.X, y-box.Min.Y, img.At(x, y))
		}
	}
	return out
}

// FitSize computes the output dimensions for placing a srcW x srcH image
// into a boxW x boxH target. Fit preserves the source aspect ratio and
// never exceeds the box on either axis; stretch fills the box exactly.
// A zero source width counts as square.
func FitSize(srcW, srcH, boxW, boxH float64, mode forms.ScaleMode) (outW, outH float64) {
	if mode == forms.ScaleStretch {
		return boxW, boxH
	}
	aspect := 1.0
	if srcW > 0 {
		aspect = srcH / srcW
	}
	outW = boxW
	outH = outW * aspect
	if outH > boxH {
		outH = boxH
		outW = outH / aspect
	}
	return outW, outH
}
