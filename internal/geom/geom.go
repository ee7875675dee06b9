// Package geom holds flattened vector geometry in scene units.
//
// Scene units follow the frame convention: the origin is the frame centre and y grows upwards.
// Values are treated as immutable: every operation returns a new value.
// Curves, affine maps, lengths and splitting are delegated to tdewolff/canvas.
package geom

import (
	"math"

	"github.com/tdewolff/canvas"
)

// Point is a 2D coordinate in scene units.
type Point struct {
	X, Y float64
}

func (p Point) Add(q Point) Point    { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point    { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Mul(k float64) Point  { return Point{p.X * k, p.Y * k} }
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }
func (p Point) Lerp(q Point, t float64) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

func (p Point) vec() canvas.Point { return canvas.Point{X: p.X, Y: p.Y} }

func fromVec(v canvas.Point) Point { return Point{X: v.X, Y: v.Y} }

// Up, Down, Left and Right are unit directions.
var (
	Up    = Point{0, 1}
	Down  = Point{0, -1}
	Left  = Point{-1, 0}
	Right = Point{1, 0}
)

// Rect is an axis-aligned bounding box.
type Rect struct {
	Min, Max Point
}

// EmptyRect returns a rect that any Union will replace.
func EmptyRect() Rect {
	inf := math.Inf(1)
	return Rect{Min: Point{inf, inf}, Max: Point{-inf, -inf}}
}

func (r Rect) Empty() bool     { return r.Min.X > r.Max.X || r.Min.Y > r.Max.Y }
func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }
func (r Rect) Center() Point   { return r.Min.Lerp(r.Max, 0.5) }

// Union returns the smallest rect containing both.
func (r Rect) Union(o Rect) Rect {
	if o.Empty() {
		return r
	}
	if r.Empty() {
		return o
	}
	return Rect{
		Min: Point{math.Min(r.Min.X, o.Min.X), math.Min(r.Min.Y, o.Min.Y)},
		Max: Point{math.Max(r.Max.X, o.Max.X), math.Max(r.Max.Y, o.Max.Y)},
	}
}

// Extend grows the rect to contain p.
func (r Rect) Extend(p Point) Rect {
	return r.Union(Rect{Min: p, Max: p})
}

// Contains reports whether o lies inside r, allowing eps of slack.
func (r Rect) Contains(o Rect, eps float64) bool {
	return o.Min.X >= r.Min.X-eps && o.Min.Y >= r.Min.Y-eps &&
		o.Max.X <= r.Max.X+eps && o.Max.Y <= r.Max.Y+eps
}

// Transform returns the bounding box of the four mapped corners.
func (r Rect) Transform(t Affine) Rect {
	if r.Empty() {
		return r
	}
	return EmptyRect().
		Extend(t.Apply(r.Min)).
		Extend(t.Apply(r.Max)).
		Extend(t.Apply(Point{r.Min.X, r.Max.Y})).
		Extend(t.Apply(Point{r.Max.X, r.Min.Y}))
}

// Affine is a 2D affine map.
type Affine struct {
	m canvas.Matrix
}

// Identity leaves points unchanged.
var Identity = Affine{canvas.Identity}

// FlipY mirrors around the x axis. Used when importing y-down sources.
var FlipY = Scale(1, -1)

// NewAffine builds the map x' = a*x + c*y + e, y' = b*x + d*y + f.
func NewAffine(a, b, c, d, e, f float64) Affine {
	return Affine{canvas.Matrix{{a, c, e}, {b, d, f}}}
}

func (a Affine) Apply(p Point) Point {
	return fromVec(a.m.Dot(p.vec()))
}

// Then composes a with b, applying a first.
func (a Affine) Then(b Affine) Affine {
	return Affine{b.m.Mul(a.m)}
}

// Translate moves by d.
func Translate(d Point) Affine {
	return Affine{canvas.Identity.Translate(d.X, d.Y)}
}

// Scale scales about the origin.
func Scale(sx, sy float64) Affine {
	return Affine{canvas.Identity.Scale(sx, sy)}
}

// ScaleAbout scales uniformly by k keeping c fixed.
func ScaleAbout(c Point, k float64) Affine {
	return Affine{canvas.Identity.Translate(c.X, c.Y).Scale(k, k).Translate(-c.X, -c.Y)}
}
