package source

import (
	"image"
	"image/color"

	"github.com/skip2/go-qrcode"
)

// QRCode renders url as a px-sized white-on-transparent code for the end card.
func QRCode(url string, px int) (image.Image, error) {
	q, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	q.DisableBorder = true
	q.ForegroundColor = color.White
	q.BackgroundColor = color.Transparent
	return q.Image(px), nil
}
