package source

import (
	"image"
	"image/color"
	"io"

	"github.com/ivlev/dreams-promo/internal/geom"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// ParseSVG reads an SVG document and returns one sub-path per path element, in document order.
// Element and group transforms are applied; coordinates are flipped to y-up.
// Scaling and placement are left to the caller.
func ParseSVG(r io.Reader) (geom.Shape, error) {
	icon, err := oksvg.ReadIconStream(r)
	if err != nil {
		return nil, err
	}

	var shape geom.Shape
	for i := range icon.SVGPaths {
		sp := &icon.SVGPaths[i]
		b := geom.NewBuilder(geom.FlipY)
		sp.Path.AddTo(&rasterx.MatrixAdder{Adder: builderAdder{b}, M: pathMatrix(sp)})
		p := b.Path()
		if p.Empty() {
			continue
		}
		shape = append(shape, p)
	}
	if len(shape) == 0 {
		return nil, ErrNoSubPaths
	}
	return shape, nil
}

// probeUnit is the probe triangle's leg in fixed-point units.
const probeUnit = 1024 * 64

// pathMatrix recovers the transform oksvg attached to a path. oksvg only applies it while drawing,
// so a unit triangle carrying the same style is drawn into a recording scanner and the map is
// read back from where its corners land.
func pathMatrix(sp *oksvg.SvgPath) rasterx.Matrix2D {
	probe := *sp
	probe.Path = nil
	probe.Path.Start(fixed.Point26_6{})
	probe.Path.Line(fixed.Point26_6{X: probeUnit})
	probe.Path.Line(fixed.Point26_6{Y: probeUnit})
	probe.Path.Stop(true)
	probe.SetFillColor(color.Black)
	probe.SetLineColor(nil)

	rec := &pointRecorder{}
	probe.DrawTransformed(rasterx.NewDasher(1, 1, rec), 1, rasterx.Identity)
	if len(rec.pts) < 3 {
		return rasterx.Identity
	}
	o, x, y := rec.pts[0], rec.pts[1], rec.pts[2]
	return rasterx.Matrix2D{
		A: float64(x.X-o.X) / probeUnit,
		B: float64(x.Y-o.Y) / probeUnit,
		C: float64(y.X-o.X) / probeUnit,
		D: float64(y.Y-o.Y) / probeUnit,
		E: float64(o.X) / 64,
		F: float64(o.Y) / 64,
	}
}

// pointRecorder is a rasterx.Scanner that keeps the points it is fed and draws nothing.
type pointRecorder struct {
	pts []fixed.Point26_6
}

func (r *pointRecorder) Start(a fixed.Point26_6)            { r.pts = append(r.pts, a) }
func (r *pointRecorder) Line(b fixed.Point26_6)             { r.pts = append(r.pts, b) }
func (r *pointRecorder) Draw()                              {}
func (r *pointRecorder) GetPathExtent() fixed.Rectangle26_6 { return fixed.Rectangle26_6{} }
func (r *pointRecorder) SetBounds(w, h int)                 {}
func (r *pointRecorder) SetColor(c interface{})             {}
func (r *pointRecorder) SetWinding(useNonZeroWinding bool)  {}
func (r *pointRecorder) Clear()                             {}
func (r *pointRecorder) SetClip(rect image.Rectangle)       {}

func pt(x, y fixed.Int26_6) geom.Point {
	return geom.Point{X: float64(x) / 64, Y: float64(y) / 64}
}

func ptOf(p fixed.Point26_6) geom.Point { return pt(p.X, p.Y) }

// builderAdder feeds rasterx path commands into a geom.Builder.
type builderAdder struct {
	b *geom.Builder
}

func (a builderAdder) Start(p fixed.Point26_6) { a.b.MoveTo(ptOf(p)) }
func (a builderAdder) Line(p fixed.Point26_6)  { a.b.LineTo(ptOf(p)) }
func (a builderAdder) QuadBezier(c, p fixed.Point26_6) {
	a.b.QuadTo(ptOf(c), ptOf(p))
}
func (a builderAdder) CubeBezier(c1, c2, p fixed.Point26_6) {
	a.b.CubicTo(ptOf(c1), ptOf(c2), ptOf(p))
}

// Stop closes the contour when asked to; open contours just end at the next Start.
func (a builderAdder) Stop(closeLoop bool) {
	if closeLoop {
		a.b.Close()
	}
}
