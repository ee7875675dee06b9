package scene

import (
	"image"

	"github.com/ivlev/dreams-promo/internal/geom"
	"github.com/lucasb-eyer/go-colorful"
)

// Kind selects how an element is drawn.
type Kind int

const (
	KindShape Kind = iota
	KindRaster
)

// Style is the paint of a vector element.
type Style struct {
	FillColor     colorful.Color
	FillOpacity   float64
	StrokeColor   colorful.Color
	StrokeOpacity float64
	StrokeWidth   float64 // line width in 1/100 scene units
}

// Lerp blends two styles channel by channel.
func (s Style) Lerp(o Style, t float64) Style {
	return Style{
		FillColor:     s.FillColor.BlendRgb(o.FillColor, t),
		FillOpacity:   lerp(s.FillOpacity, o.FillOpacity, t),
		StrokeColor:   s.StrokeColor.BlendRgb(o.StrokeColor, t),
		StrokeOpacity: lerp(s.StrokeOpacity, o.StrokeOpacity, t),
		StrokeWidth:   lerp(s.StrokeWidth, o.StrokeWidth, t),
	}
}

// Filled paints solid with no outline.
func Filled(c colorful.Color) Style {
	return Style{FillColor: c, FillOpacity: 1, StrokeColor: c}
}

// Outlined paints only a stroke of width w.
func Outlined(c colorful.Color, w float64) Style {
	return Style{FillColor: c, StrokeColor: c, StrokeOpacity: 1, StrokeWidth: w}
}

// Element is one visual object on the scene.
//
// Shape, Trace, Parts and Raster are replaced, never mutated in place, so a Frame can share them.
type Element struct {
	Name string
	Kind Kind

	Shape geom.Shape
	// Trace holds the drawn fraction per sub-path while an outline is being traced. nil means fully drawn.
	Trace []float64
	// Parts overrides Style per sub-path while tracing. nil means Style applies to all.
	Parts []Style
	// Text is the string a text element spells.
	Text string

	Raster image.Image
	Box    geom.Rect

	Style   Style
	Opacity float64
	Glow    bool
}

// NewShape creates a vector element.
func NewShape(name string, shape geom.Shape, style Style) *Element {
	return &Element{Name: name, Kind: KindShape, Shape: shape, Style: style, Opacity: 1}
}

// NewText creates a vector element whose sub-paths are glyphs of text.
func NewText(name, text string, glyphs geom.Shape, style Style) *Element {
	e := NewShape(name, glyphs, style)
	e.Text = text
	return e
}

// NewRaster creates a bitmap element placed in box.
func NewRaster(name string, img image.Image, box geom.Rect) *Element {
	return &Element{Name: name, Kind: KindRaster, Raster: img, Box: box, Opacity: 1}
}

// Bounds in scene units.
func (e *Element) Bounds() geom.Rect {
	if e.Kind == KindRaster {
		return e.Box
	}
	return e.Shape.Bounds()
}

// Apply transforms the element geometry.
func (e *Element) Apply(t geom.Affine) {
	if e.Kind == KindRaster {
		e.Box = e.Box.Transform(t)
		return
	}
	e.Shape = e.Shape.Transform(t)
}

// MoveTo centres the element on p.
func (e *Element) MoveTo(p geom.Point) {
	e.Apply(geom.Translate(p.Sub(e.Bounds().Center())))
}

// Copy returns an independent element. Geometry is shared since it is never mutated in place.
func (e *Element) Copy() *Element {
	c := *e
	return &c
}

// Bounds of a group of elements.
func Bounds(els ...*Element) geom.Rect {
	r := geom.EmptyRect()
	for _, e := range els {
		r = r.Union(e.Bounds())
	}
	return r
}

// NextTo places e beside anchor in direction dir with buff units of gap.
// The other axis is centred on the anchor.
func NextTo(e *Element, anchor geom.Rect, dir geom.Point, buff float64) {
	b := e.Bounds()
	c := anchor.Center()
	switch {
	case dir.Y < 0:
		c.Y = anchor.Min.Y - buff - b.Height()/2
	case dir.Y > 0:
		c.Y = anchor.Max.Y + buff + b.Height()/2
	case dir.X < 0:
		c.X = anchor.Min.X - buff - b.Width()/2
	default:
		c.X = anchor.Max.X + buff + b.Width()/2
	}
	e.MoveTo(c)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
