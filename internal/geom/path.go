package geom

import (
	"github.com/tdewolff/canvas"
)

// Contour is a single flattened polyline, as handed to a rasteriser.
type Contour struct {
	Points []Point
	Closed bool
}

// Path is one sub-path of a shape: an SVG path element or one text glyph.
// It may carry several contours (a glyph "o" has two). The canvas path holds line segments only.
type Path struct {
	p *canvas.Path
}

// Shape is an ordered list of sub-paths, indexable by position.
type Shape []Path

// Empty reports whether the path draws nothing.
func (p Path) Empty() bool { return p.p == nil || p.p.Empty() }

// Contours splits the path into polylines. The closing point of a closed contour is not repeated.
func (p Path) Contours() []Contour {
	if p.Empty() {
		return nil
	}
	var cs []Contour
	for _, sub := range p.p.Split() {
		if c, ok := contourOf(sub); ok {
			cs = append(cs, c)
		}
	}
	return cs
}

func contourOf(sub *canvas.Path) (Contour, bool) {
	coords := sub.Coords()
	pts := make([]Point, len(coords))
	for i, v := range coords {
		pts[i] = fromVec(v)
	}
	closed := sub.Closed()
	if n := len(pts); closed && n > 1 && pts[n-1].Dist(pts[0]) < 1e-9 {
		pts = pts[:n-1]
	}
	if len(pts) < 2 {
		return Contour{}, false
	}
	return Contour{Points: pts, Closed: closed}, true
}

// fromContours rebuilds a canvas path from polylines.
func fromContours(cs []Contour) Path {
	q := &canvas.Path{}
	for _, c := range cs {
		if len(c.Points) < 2 {
			continue
		}
		q.MoveTo(c.Points[0].X, c.Points[0].Y)
		for _, pt := range c.Points[1:] {
			q.LineTo(pt.X, pt.Y)
		}
		if c.Closed {
			q.Close()
		}
	}
	return Path{p: q}
}

// Length is the summed length of all contours, closing segments included.
func (p Path) Length() float64 {
	if p.Empty() {
		return 0
	}
	return p.p.Length()
}

// Bounds of all contours.
func (p Path) Bounds() Rect {
	r := EmptyRect()
	for _, c := range p.Contours() {
		for _, pt := range c.Points {
			r = r.Extend(pt)
		}
	}
	return r
}

// Transform maps every point through t.
func (p Path) Transform(t Affine) Path {
	if p.Empty() {
		return p
	}
	return Path{p: p.p.Copy().Transform(t.m)}
}

// Trace returns the leading fraction of the path, walking contours in order.
// frac >= 1 returns the path unchanged.
func (p Path) Trace(frac float64) Path {
	if frac >= 1 {
		return p
	}
	if frac <= 0 || p.Empty() {
		return Path{}
	}
	remaining := p.Length() * frac
	var cs []Contour
	for _, sub := range p.p.Split() {
		l := sub.Length()
		if remaining >= l {
			if c, ok := contourOf(sub); ok {
				cs = append(cs, c)
			}
			remaining -= l
			continue
		}
		if remaining > 0 {
			if c, ok := contourOf(sub.SplitAt(remaining)[0]); ok {
				c.Closed = false
				cs = append(cs, c)
			}
		}
		break
	}
	return fromContours(cs)
}

// Bounds of the whole shape.
func (s Shape) Bounds() Rect {
	r := EmptyRect()
	for _, p := range s {
		r = r.Union(p.Bounds())
	}
	return r
}

// Length is the summed length of every sub-path.
func (s Shape) Length() float64 {
	l := 0.0
	for _, p := range s {
		l += p.Length()
	}
	return l
}

// Transform maps every sub-path through t.
func (s Shape) Transform(t Affine) Shape {
	out := make(Shape, len(s))
	for i, p := range s {
		out[i] = p.Transform(t)
	}
	return out
}

// Compatible reports whether s and o share the same point layout, so they can be interpolated pointwise.
func (s Shape) Compatible(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		a, b := s[i].Contours(), o[i].Contours()
		if len(a) != len(b) {
			return false
		}
		for j := range a {
			if len(a[j].Points) != len(b[j].Points) {
				return false
			}
		}
	}
	return true
}

// Lerp interpolates two compatible shapes pointwise. Incompatible shapes snap at t=1.
func (s Shape) Lerp(o Shape, t float64) Shape {
	if !s.Compatible(o) {
		if t >= 1 {
			return o
		}
		return s
	}
	out := make(Shape, len(s))
	for i := range s {
		if s[i].p == o[i].p {
			out[i] = s[i]
			continue
		}
		a, b := s[i].Contours(), o[i].Contours()
		cs := make([]Contour, len(a))
		for j, c := range a {
			pts := make([]Point, len(c.Points))
			for k, pt := range c.Points {
				pts[k] = pt.Lerp(b[j].Points[k], t)
			}
			cs[j] = Contour{Points: pts, Closed: b[j].Closed}
		}
		out[i] = fromContours(cs)
	}
	return out
}

// Fit scales s uniformly so its height equals h, keeping its centre.
func (s Shape) Fit(h float64) Shape {
	b := s.Bounds()
	if b.Empty() || b.Height() == 0 {
		return s
	}
	return s.Transform(ScaleAbout(b.Center(), h/b.Height()))
}

// MoveTo translates s so its bounding-box centre sits at c.
func (s Shape) MoveTo(c Point) Shape {
	b := s.Bounds()
	if b.Empty() {
		return s
	}
	return s.Transform(Translate(c.Sub(b.Center())))
}
