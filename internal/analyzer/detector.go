// Package analyzer finds the glyph on rasterised icon assets.
package analyzer

import "image"

// Region is a connected area of strong contrast.
type Region struct {
	Rect image.Rectangle
	Area int // pixels in the component
}

// Detector is the interface for image analysis strategies
type Detector interface {
	Detect(img image.Image) ([]Region, error)
}
