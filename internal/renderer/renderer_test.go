package renderer

import (
	"image"
	"image/color"
	"testing"

	"github.com/ivlev/dreams-promo/internal/geom"
	"github.com/ivlev/dreams-promo/internal/scene"
	"github.com/lucasb-eyer/go-colorful"
)

var (
	black  = colorful.Color{}
	purple = colorful.Color{R: 0x99 / 255.0, G: 0x38 / 255.0, B: 0xEB / 255.0}
)

func newTestRenderer(sigma float64) (*Renderer, *image.RGBA) {
	r := New(Options{Width: 100, Height: 100, FrameWidth: 8, FrameHeight: 8, Background: black, GlowSigma: sigma})
	return r, image.NewRGBA(r.Size())
}

func square(side float64, style scene.Style) *scene.Element {
	return scene.NewShape("square", geom.Shape{geom.RoundedRect(geom.Point{}, side, side, 0)}, style)
}

func near(a, b uint8) bool {
	d := int(a) - int(b)
	return d >= -3 && d <= 3
}

func TestRenderBackground(t *testing.T) {
	r := New(Options{Width: 10, Height: 10, FrameWidth: 8, FrameHeight: 8, Background: purple})
	dst := image.NewRGBA(r.Size())
	if err := r.Render(scene.Frame{}, dst); err != nil {
		t.Fatal(err)
	}
	c := dst.RGBAAt(5, 5)
	if !near(c.R, 0x99) || !near(c.G, 0x38) || !near(c.B, 0xEB) {
		t.Errorf("Expected brand background, got %+v", c)
	}
}

func TestRenderFilledSquare(t *testing.T) {
	r, dst := newTestRenderer(0)
	el := square(4, scene.Filled(purple))
	if err := r.Render(scene.Frame{Elements: []scene.Element{*el}}, dst); err != nil {
		t.Fatal(err)
	}

	// 4 units of 8 cover pixels 25..75.
	if c := dst.RGBAAt(50, 50); !near(c.R, 0x99) || !near(c.B, 0xEB) {
		t.Errorf("Centre should be purple, got %+v", c)
	}
	if c := dst.RGBAAt(10, 10); c.R != 0 || c.G != 0 || c.B != 0 {
		t.Errorf("Corner should stay black, got %+v", c)
	}
}

func TestRenderOpacity(t *testing.T) {
	r, dst := newTestRenderer(0)
	el := square(4, scene.Filled(colorful.Color{R: 1, G: 1, B: 1}))
	el.Opacity = 0.5
	r.Render(scene.Frame{Elements: []scene.Element{*el}}, dst)

	if c := dst.RGBAAt(50, 50); c.R < 120 || c.R > 135 {
		t.Errorf("Expected half white, got %+v", c)
	}
}

func TestRenderPartialTrace(t *testing.T) {
	r, dst := newTestRenderer(0)
	el := square(4, scene.Outlined(colorful.Color{R: 1, G: 1, B: 1}, 20))
	// Half of the perimeter from the top-left corner: top and right edges.
	el.Trace = []float64{0.5}
	r.Render(scene.Frame{Elements: []scene.Element{*el}}, dst)

	bottom := dst.RGBAAt(50, 75)
	top := dst.RGBAAt(50, 25)
	if bottom.R == 0 && top.R == 0 {
		t.Fatal("Nothing traced")
	}
	if bottom.R != 0 && top.R != 0 {
		t.Error("Both edges drawn at half trace")
	}
	if c := dst.RGBAAt(50, 50); c.R != 0 {
		t.Errorf("Outline must not fill the interior, got %+v", c)
	}
}

func TestRenderRaster(t *testing.T) {
	r, dst := newTestRenderer(0)
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.Set(x, y, color.RGBA{R: 255, A: 255})
		}
	}
	el := scene.NewRaster("qr", src, geom.Rect{Min: geom.Point{X: -1, Y: -1}, Max: geom.Point{X: 1, Y: 1}})
	el.Opacity = 0.5
	r.Render(scene.Frame{Elements: []scene.Element{*el}}, dst)

	if c := dst.RGBAAt(50, 50); c.R < 120 || c.R > 135 || c.G != 0 {
		t.Errorf("Expected half red in the box, got %+v", c)
	}
	if c := dst.RGBAAt(30, 30); c.R != 0 {
		t.Errorf("Outside the box should be black, got %+v", c)
	}
}

func TestRenderGlow(t *testing.T) {
	r, dst := newTestRenderer(8)
	el := square(2, scene.Filled(colorful.Color{R: 1, G: 1, B: 1}))
	el.Glow = true
	r.Render(scene.Frame{Elements: []scene.Element{*el}}, dst)

	// Just outside the square edge (pixels 37..63) the glow lightens the background.
	if c := dst.RGBAAt(50, 67); c.R == 0 {
		t.Error("Expected glow around the square")
	}
}
