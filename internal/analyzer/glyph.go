package analyzer

import (
	"image"
	"image/color"
	"math"
)

// Bounds unions all regions.
func Bounds(regions []Region) (image.Rectangle, bool) {
	var r image.Rectangle
	for _, reg := range regions {
		r = r.Union(reg.Rect)
	}
	return r, !r.Empty()
}

// ExtractGlyph crops img to the detected glyph and turns it into a white mask on transparency.
// Ink is whatever differs from the page colour, sampled at the top-left corner.
// With nothing detected the whole image is masked and found is false.
func ExtractGlyph(img image.Image, d Detector) (mask *image.NRGBA, found bool, err error) {
	regions, err := d.Detect(img)
	if err != nil {
		return nil, false, err
	}
	crop, found := Bounds(regions)
	if !found {
		crop = img.Bounds()
	}
	crop = crop.Intersect(img.Bounds())

	page := luminance(img.At(img.Bounds().Min.X, img.Bounds().Min.Y))
	span := math.Max(page, 1-page)

	mask = image.NewNRGBA(image.Rect(0, 0, crop.Dx(), crop.Dy()))
	for y := crop.Min.Y; y < crop.Max.Y; y++ {
		for x := crop.Min.X; x < crop.Max.X; x++ {
			c := img.At(x, y)
			_, _, _, a := c.RGBA()
			ink := math.Abs(luminance(c)-page) / span * float64(a) / 0xffff
			mask.SetNRGBA(x-crop.Min.X, y-crop.Min.Y, color.NRGBA{R: 255, G: 255, B: 255, A: uint8(math.Round(math.Min(1, ink) * 255))})
		}
	}
	return mask, found, nil
}

// luminance in [0,1], premultiplied colours are un-premultiplied first.
func luminance(c color.Color) float64 {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return 1
	}
	k := 1 / float64(a)
	return 0.2126*float64(r)*k + 0.7152*float64(g)*k + 0.0722*float64(b)*k
}
