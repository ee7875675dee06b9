package effects

import (
	"fmt"
	"math"
	"strings"

	"github.com/ivlev/dreams-promo/internal/geom"
	"github.com/ivlev/dreams-promo/internal/scene"
)

type base struct {
	runTime float64
	rate    scene.RateFunc
}

func (b *base) RunTime() float64         { return b.runTime }
func (b *base) Rate() scene.RateFunc     { return b.rate }
func (b *base) setRate(r scene.RateFunc) { b.rate = r }

type rated interface {
	setRate(r scene.RateFunc)
}

// Option tunes an animation.
type Option func(rated)

// WithRate sets the animation's own easing.
func WithRate(r scene.RateFunc) Option {
	return func(a rated) { a.setRate(r) }
}

func apply(a rated, opts []Option) {
	for _, o := range opts {
		o(a)
	}
}

func names(els []*scene.Element) string {
	ns := make([]string, len(els))
	for i, e := range els {
		ns[i] = e.Name
	}
	return strings.Join(ns, ",")
}

// Fade ramps opacity of a group in or out.
type Fade struct {
	base
	els   []*scene.Element
	out   bool
	start []float64
}

// FadeIn adds the elements and raises their opacity from zero.
func FadeIn(runTime float64, els []*scene.Element, opts ...Option) *Fade {
	f := &Fade{base: base{runTime: runTime}, els: els}
	apply(f, opts)
	return f
}

// FadeOut lowers opacity to zero and removes the elements when done.
func FadeOut(runTime float64, els []*scene.Element, opts ...Option) *Fade {
	f := &Fade{base: base{runTime: runTime}, els: els, out: true}
	apply(f, opts)
	return f
}

func (f *Fade) Begin(s *scene.Scene) {
	f.start = make([]float64, len(f.els))
	for i, e := range f.els {
		f.start[i] = e.Opacity
		if !f.out {
			if f.start[i] == 0 {
				f.start[i] = 1
			}
			e.Opacity = 0
			s.Add(e)
		}
	}
}

func (f *Fade) Interpolate(alpha float64) {
	for i, e := range f.els {
		if f.out {
			e.Opacity = f.start[i] * (1 - alpha)
		} else {
			e.Opacity = f.start[i] * alpha
		}
	}
}

func (f *Fade) Finish(s *scene.Scene) {
	f.Interpolate(1)
	if f.out {
		s.Remove(f.els...)
		// Restore so a later FadeIn of the same element starts from its full opacity.
		for i, e := range f.els {
			e.Opacity = f.start[i]
		}
	}
}

func (f *Fade) String() string {
	if f.out {
		return fmt.Sprintf("FadeOut(%s)", names(f.els))
	}
	return fmt.Sprintf("FadeIn(%s)", names(f.els))
}

// Move applies an affine map that grows from identity to its full value.
type Move struct {
	base
	els   []*scene.Element
	label string
	at    func(alpha float64, centre geom.Point) geom.Affine
	start []*scene.Element
	c     geom.Point
}

// ScaleBy scales the group about its bounding-box centre by k.
func ScaleBy(runTime float64, k float64, els []*scene.Element, opts ...Option) *Move {
	m := &Move{
		base:  base{runTime: runTime},
		els:   els,
		label: fmt.Sprintf("Scale(%s, %.2f)", names(els), k),
		at: func(alpha float64, c geom.Point) geom.Affine {
			return geom.ScaleAbout(c, 1+(k-1)*alpha)
		},
	}
	apply(m, opts)
	return m
}

// Shift translates the group by d.
func Shift(runTime float64, d geom.Point, els []*scene.Element, opts ...Option) *Move {
	m := &Move{
		base:  base{runTime: runTime},
		els:   els,
		label: fmt.Sprintf("Shift(%s, %.2f,%.2f)", names(els), d.X, d.Y),
		at: func(alpha float64, _ geom.Point) geom.Affine {
			return geom.Translate(d.Mul(alpha))
		},
	}
	apply(m, opts)
	return m
}

func (m *Move) Begin(s *scene.Scene) {
	m.start = make([]*scene.Element, len(m.els))
	for i, e := range m.els {
		m.start[i] = e.Copy()
	}
	m.c = scene.Bounds(m.els...).Center()
}

func (m *Move) Interpolate(alpha float64) {
	t := m.at(alpha, m.c)
	for i, e := range m.els {
		e.Shape = m.start[i].Shape
		e.Box = m.start[i].Box
		e.Apply(t)
	}
}

func (m *Move) Finish(*scene.Scene) { m.Interpolate(1) }
func (m *Move) String() string      { return m.label }

// Trace draws outlines progressively, then blends into the element's own style.
// With a lag ratio above zero the sub-paths start one after another.
type Trace struct {
	base
	el      *scene.Element
	outline scene.Style
	lag     float64
	name    string
	target  scene.Style
}

// DrawBorderThenFill traces every sub-path at once with the given outline, then restyles.
func DrawBorderThenFill(runTime float64, el *scene.Element, outline scene.Style, opts ...Option) *Trace {
	t := &Trace{base: base{runTime: runTime}, el: el, outline: outline, name: "DrawBorderThenFill"}
	apply(t, opts)
	return t
}

// Write traces sub-paths one after another, like handwriting.
func Write(runTime float64, el *scene.Element, opts ...Option) *Trace {
	n := float64(len(el.Shape))
	lag := math.Min(4/math.Max(1, n), 0.2)
	outline := el.Style
	outline.FillOpacity = 0
	outline.StrokeColor = el.Style.FillColor
	outline.StrokeOpacity = 1
	if outline.StrokeWidth == 0 {
		outline.StrokeWidth = 2
	}
	t := &Trace{base: base{runTime: runTime}, el: el, outline: outline, lag: lag, name: "Write"}
	apply(t, opts)
	return t
}

// Outline is the stroke style used while tracing.
func Outline(s scene.Style, width float64) scene.Style {
	return scene.Style{
		FillColor:     s.FillColor,
		StrokeColor:   s.StrokeColor,
		StrokeOpacity: 1,
		StrokeWidth:   width,
	}
}

func (t *Trace) Begin(s *scene.Scene) {
	t.target = t.el.Style
	s.Add(t.el)
	t.Interpolate(0)
}

func (t *Trace) Interpolate(alpha float64) {
	n := len(t.el.Shape)
	trace := make([]float64, n)
	parts := make([]scene.Style, n)
	full := 1 + t.lag*float64(n-1)
	for i := 0; i < n; i++ {
		sub := clamp(alpha*full-t.lag*float64(i), 0, 1)
		if sub < 0.5 {
			trace[i] = 2 * sub
			parts[i] = t.outline
		} else {
			trace[i] = 1
			parts[i] = t.outline.Lerp(t.target, 2*sub-1)
		}
	}
	t.el.Trace = trace
	t.el.Parts = parts
}

func (t *Trace) Finish(*scene.Scene) {
	t.el.Trace = nil
	t.el.Parts = nil
	t.el.Style = t.target
}

func (t *Trace) String() string { return fmt.Sprintf("%s(%s)", t.name, t.el.Name) }

// Morph turns an element into the geometry and style of target. The target itself is never added.
type Morph struct {
	base
	el, target *scene.Element
	start      *scene.Element
}

// Transform morphs el into target.
func Transform(runTime float64, el, target *scene.Element, opts ...Option) *Morph {
	m := &Morph{base: base{runTime: runTime}, el: el, target: target}
	apply(m, opts)
	return m
}

func (m *Morph) Begin(s *scene.Scene) {
	m.start = m.el.Copy()
	s.Add(m.el)
}

func (m *Morph) Interpolate(alpha float64) {
	m.el.Shape = m.start.Shape.Lerp(m.target.Shape, alpha)
	m.el.Style = m.start.Style.Lerp(m.target.Style, alpha)
	m.el.Opacity = m.start.Opacity + (m.target.Opacity-m.start.Opacity)*alpha
}

func (m *Morph) Finish(*scene.Scene) {
	m.el.Shape = m.target.Shape
	m.el.Style = m.target.Style
	m.el.Opacity = m.target.Opacity
}

func (m *Morph) String() string { return fmt.Sprintf("Transform(%s -> %s)", m.el.Name, m.target.Name) }

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
