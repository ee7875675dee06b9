package geom

import (
	"math"

	"github.com/tdewolff/canvas"
)

// flattenTolerance is the maximum curve deviation, relative to the path's extent.
const flattenTolerance = 2e-4

// Builder accumulates move/line/curve commands and flattens them into a Path.
type Builder struct {
	t       Affine
	p       *canvas.Path
	started bool
}

// NewBuilder returns a builder that maps every incoming point through t.
func NewBuilder(t Affine) *Builder {
	return &Builder{t: t, p: &canvas.Path{}}
}

func (b *Builder) at(p Point) (float64, float64) {
	q := b.t.Apply(p)
	return q.X, q.Y
}

func (b *Builder) MoveTo(p Point) {
	b.p.MoveTo(b.at(p))
	b.started = true
}

func (b *Builder) LineTo(p Point) {
	b.p.LineTo(b.at(p))
	b.started = true
}

func (b *Builder) QuadTo(c, p Point) {
	cx, cy := b.at(c)
	x, y := b.at(p)
	b.p.QuadTo(cx, cy, x, y)
	b.started = true
}

func (b *Builder) CubicTo(c1, c2, p Point) {
	c1x, c1y := b.at(c1)
	c2x, c2y := b.at(c2)
	x, y := b.at(p)
	b.p.CubeTo(c1x, c1y, c2x, c2y, x, y)
	b.started = true
}

// Close ends the current contour. Closing an empty builder is a no-op.
func (b *Builder) Close() {
	if b.started {
		b.p.Close()
	}
	b.started = false
}

// Path flattens everything drawn so far.
func (b *Builder) Path() Path {
	return flatten(b.p)
}

func flatten(p *canvas.Path) Path {
	if p.Empty() {
		return Path{}
	}
	return Path{p: p.Flatten(tolerance(p))}
}

// tolerance scales the flattening error with the path's on-curve extent.
func tolerance(p *canvas.Path) float64 {
	r := EmptyRect()
	for _, v := range p.Coords() {
		r = r.Extend(fromVec(v))
	}
	size := math.Hypot(r.Width(), r.Height())
	if r.Empty() || size == 0 {
		return flattenTolerance
	}
	return size * flattenTolerance
}

// RoundedRect builds a closed rounded rectangle centred on c.
func RoundedRect(c Point, w, h, r float64) Path {
	r = math.Max(0, math.Min(r, math.Min(w, h)/2))
	var p *canvas.Path
	if r == 0 {
		p = canvas.Rectangle(w, h)
	} else {
		p = canvas.RoundedRectangle(w, h, r)
	}
	return flatten(p.Transform(canvas.Identity.Translate(c.X-w/2, c.Y-h/2)))
}
