package pdfgen

import (
	"fmt"
	"image"
	"image/color"
)

// AddImage embeds an image as an 8-bit RGB XObject and returns its
// reference for DrawImage. Images with partial transparency get a
// grayscale soft mask so signatures keep their transparent background.
func (d *Document) AddImage(img image.Image) (Ref, error) {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return 0, fmt.Errorf("image has empty bounds")
	}

	rgb := make([]byte, 0, w*h*3)
	alpha := make([]byte, 0, w*h)
	hasAlpha := false
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			rgb = append(rgb, c.R, c.G, c.B)
			alpha = append(alpha, c.A)
			if c.A != 0xff {
				hasAlpha = true
			}
		}
	}

	smask := ""
	if hasAlpha {
		maskDict := fmt.Sprintf(" /Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /DeviceGray /BitsPerComponent 8", w, h)
		maskRef := d.streamObject(maskDict, alpha)
		smask = fmt.Sprintf(" /SMask %s", maskRef)
	}

	dict := fmt.Sprintf(" /Type /XObject /Subtype /Image /Width %d /Height %d /ColorSpace /DeviceRGB /BitsPerComponent 8%s", w, h, smask)
	ref := d.streamObject(dict, rgb)
	d.imageNames[ref] = fmt.Sprintf("Im%d", len(d.imageNames)+1)
	return ref, nil
}
