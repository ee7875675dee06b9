package analyzer

import (
	"image"
	"sort"

	"github.com/anthonynsimon/bild/effect"
)

// ContrastDetector implements edge-based region detection using the Sobel operator
type ContrastDetector struct {
	MinArea       int     // minimum component size in pixels
	EdgeThreshold uint8   // gradient magnitude threshold
	DilateRadius  float64 // connects edges of one glyph
}

// NewContrastDetector creates a new contrast-based detector with default settings
func NewContrastDetector() *ContrastDetector {
	return &ContrastDetector{
		MinArea:       64,
		EdgeThreshold: 30,
		DilateRadius:  2,
	}
}

// Detect returns regions ordered by area, largest first.
func (d *ContrastDetector) Detect(img image.Image) ([]Region, error) {
	edges := effect.Sobel(effect.Grayscale(img))
	if d.DilateRadius > 0 {
		edges = effect.Dilate(edges, d.DilateRadius)
	}

	b := edges.Bounds()
	w, h := b.Dx(), b.Dy()
	mask := make([]bool, w*h)
	for y := 0; y < h; y++ {
		row := edges.Pix[y*edges.Stride:]
		for x := 0; x < w; x++ {
			mask[y*w+x] = row[x*4] > d.EdgeThreshold
		}
	}

	var regions []Region
	for i, on := range mask {
		if !on {
			continue
		}
		r := floodFill(mask, w, h, i%w, i/w)
		if r.Area >= d.MinArea {
			r.Rect = r.Rect.Add(b.Min)
			regions = append(regions, r)
		}
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].Area > regions[j].Area })
	return regions, nil
}

// floodFill clears the component at (x,y) from mask and returns its bounds.
func floodFill(mask []bool, w, h, x, y int) Region {
	minX, minY, maxX, maxY := x, y, x, y
	area := 0
	stack := []image.Point{{X: x, Y: y}}
	mask[y*w+x] = false

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		area++
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)

		for _, n := range [4]image.Point{{X: p.X + 1, Y: p.Y}, {X: p.X - 1, Y: p.Y}, {X: p.X, Y: p.Y + 1}, {X: p.X, Y: p.Y - 1}} {
			if n.X < 0 || n.X >= w || n.Y < 0 || n.Y >= h || !mask[n.Y*w+n.X] {
				continue
			}
			mask[n.Y*w+n.X] = false
			stack = append(stack, n)
		}
	}
	return Region{Rect: image.Rect(minX, minY, maxX+1, maxY+1), Area: area}
}
