package effects

import (
	"context"
	"math"
	"testing"

	"github.com/ivlev/dreams-promo/internal/geom"
	"github.com/ivlev/dreams-promo/internal/scene"
	"github.com/lucasb-eyer/go-colorful"
)

var white = colorful.Color{R: 1, G: 1, B: 1}

func rect(name string, w float64) *scene.Element {
	return scene.NewShape(name, geom.Shape{geom.RoundedRect(geom.Point{}, w, w, 0.2)}, scene.Filled(white))
}

func glyphs(n int) geom.Shape {
	s := make(geom.Shape, n)
	for i := range s {
		s[i] = geom.RoundedRect(geom.Point{X: float64(i)}, 0.5, 0.5, 0.1)
	}
	return s
}

func TestRateEndpoints(t *testing.T) {
	for _, name := range RateNames() {
		r, err := Rate(name)
		if err != nil {
			t.Fatalf("Rate(%s): %v", name, err)
		}
		if math.Abs(r(0)) > 1e-9 || math.Abs(r(1)-1) > 1e-9 {
			t.Errorf("%s: expected r(0)=0 and r(1)=1, got %f, %f", name, r(0), r(1))
		}
	}
	if _, err := Rate("bounce_forever"); err == nil {
		t.Error("Expected error for unknown rate")
	}
}

func TestFadeInAndOut(t *testing.T) {
	s := scene.New(10, nil)
	el := rect("square", 1)

	in := FadeIn(1, []*scene.Element{el})
	in.Begin(s)
	if !s.Contains(el) || el.Opacity != 0 {
		t.Fatalf("FadeIn must add the element at zero opacity, got %f", el.Opacity)
	}
	in.Interpolate(0.25)
	if el.Opacity != 0.25 {
		t.Errorf("Expected opacity 0.25, got %f", el.Opacity)
	}
	in.Finish(s)

	out := FadeOut(1, []*scene.Element{el})
	out.Begin(s)
	out.Interpolate(0.5)
	if el.Opacity != 0.5 {
		t.Errorf("Expected opacity 0.5, got %f", el.Opacity)
	}
	out.Finish(s)
	if s.Contains(el) {
		t.Error("FadeOut must remove the element")
	}
}

func TestScaleByKeepsCentre(t *testing.T) {
	s := scene.New(10, nil)
	el := rect("square", 5)
	el.MoveTo(geom.Point{X: 1, Y: 1})

	if err := s.Play(context.Background(), Smooth(), ScaleBy(0.8, 1.15, []*scene.Element{el})); err != nil {
		t.Fatal(err)
	}
	b := el.Bounds()
	if math.Abs(b.Width()-5.75) > 1e-6 {
		t.Errorf("Expected width 5.75, got %f", b.Width())
	}
	if c := b.Center(); math.Abs(c.X-1) > 1e-6 || math.Abs(c.Y-1) > 1e-6 {
		t.Errorf("Centre moved to %+v", c)
	}
}

func TestGroupScaleUsesGroupCentre(t *testing.T) {
	a, b := rect("a", 1), rect("b", 1)
	a.MoveTo(geom.Point{X: -2})
	b.MoveTo(geom.Point{X: 2})

	m := ScaleBy(1, 0.5, []*scene.Element{a, b})
	m.Begin(scene.New(10, nil))
	m.Finish(nil)

	if c := a.Bounds().Center(); math.Abs(c.X+1) > 1e-6 {
		t.Errorf("Expected a at x=-1, got %f", c.X)
	}
}

func TestShift(t *testing.T) {
	el := rect("a", 1)
	m := Shift(1, geom.Up, []*scene.Element{el})
	m.Begin(scene.New(10, nil))
	m.Interpolate(0.5)
	if c := el.Bounds().Center(); math.Abs(c.Y-0.5) > 1e-6 {
		t.Errorf("Expected y=0.5 halfway, got %f", c.Y)
	}
	m.Finish(nil)
	if c := el.Bounds().Center(); math.Abs(c.Y-1) > 1e-6 {
		t.Errorf("Expected y=1, got %f", c.Y)
	}
}

func TestDrawBorderThenFill(t *testing.T) {
	s := scene.New(10, nil)
	el := rect("glyph", 1)
	target := el.Style
	outline := Outline(scene.Style{FillColor: white, StrokeColor: white}, 2)

	a := DrawBorderThenFill(1, el, outline)
	a.Begin(s)

	a.Interpolate(0.25)
	if el.Trace[0] != 0.5 {
		t.Errorf("Expected half traced outline, got %f", el.Trace[0])
	}
	if el.Parts[0].FillOpacity != 0 {
		t.Errorf("No fill while tracing, got %f", el.Parts[0].FillOpacity)
	}

	a.Interpolate(0.75)
	if el.Trace[0] != 1 {
		t.Errorf("Outline should be complete in the fill phase")
	}
	if got := el.Parts[0].FillOpacity; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Expected fill opacity 0.5, got %f", got)
	}

	a.Finish(s)
	if el.Trace != nil || el.Parts != nil || el.Style != target {
		t.Error("Finish must restore the element's own style")
	}
}

func TestWriteLagsGlyphs(t *testing.T) {
	el := scene.NewText("wordmark", "Dreams", glyphs(6), scene.Filled(white))
	w := Write(1, el)
	w.Begin(scene.New(10, nil))

	w.Interpolate(0.1)
	if el.Trace[0] <= 0 {
		t.Error("First glyph should have started")
	}
	if el.Trace[5] != 0 {
		t.Errorf("Last glyph should not have started, got %f", el.Trace[5])
	}

	w.Interpolate(1)
	for i, tr := range el.Trace {
		if tr != 1 || el.Parts[i].FillOpacity != 1 {
			t.Errorf("Glyph %d incomplete at alpha=1: trace=%f fill=%f", i, tr, el.Parts[i].FillOpacity)
		}
	}
}

func TestTransformStrokeWidth(t *testing.T) {
	thin := scene.NewShape("thin", glyphs(1), Outline(scene.Style{StrokeColor: white}, 2))
	thick := thin.Copy()
	thick.Style.StrokeWidth = 35

	m := Transform(0.6, thin, thick)
	m.Begin(scene.New(10, nil))
	m.Interpolate(0.5)
	if math.Abs(thin.Style.StrokeWidth-18.5) > 1e-9 {
		t.Errorf("Expected width 18.5 halfway, got %f", thin.Style.StrokeWidth)
	}
	m.Finish(nil)
	if thin.Style.StrokeWidth != 35 {
		t.Errorf("Expected width 35, got %f", thin.Style.StrokeWidth)
	}
}
