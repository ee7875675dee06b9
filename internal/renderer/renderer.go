package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/blur"
	"github.com/fogleman/gg"
	"github.com/ivlev/dreams-promo/internal/geom"
	"github.com/ivlev/dreams-promo/internal/scene"
	"github.com/lucasb-eyer/go-colorful"
	xdraw "golang.org/x/image/draw"
)

// strokeUnit converts Style.StrokeWidth to scene units.
const strokeUnit = 0.01

// glowDownscale renders the glow at a fraction of the frame size before blurring.
const glowDownscale = 4

// Options describe the output raster.
type Options struct {
	Width, Height           int
	FrameWidth, FrameHeight float64 // scene units
	Background              colorful.Color
	GlowSigma               float64 // glow blur radius in pixels, 0 disables
}

// Renderer rasterises scene frames. It holds no per-frame state and is safe for concurrent use.
type Renderer struct {
	opts Options
	ppu  float64
}

// New creates a renderer for the given raster.
func New(opts Options) *Renderer {
	return &Renderer{opts: opts, ppu: float64(opts.Width) / opts.FrameWidth}
}

// Size of the output raster.
func (r *Renderer) Size() image.Rectangle {
	return image.Rect(0, 0, r.opts.Width, r.opts.Height)
}

// toPixel maps scene units (origin centre, y up) to raster coordinates (origin top-left, y down).
func (r *Renderer) toPixel(p geom.Point, ppu float64, w, h int) (float64, float64) {
	return float64(w)/2 + p.X*ppu, float64(h)/2 - p.Y*ppu
}

// Render draws f into dst, which must match Size.
func (r *Renderer) Render(f scene.Frame, dst *image.RGBA) error {
	dc := gg.NewContextForRGBA(dst)
	dc.SetColor(r.opts.Background)
	dc.Clear()

	for i := range f.Elements {
		e := &f.Elements[i]
		if e.Opacity <= 0 {
			continue
		}
		if e.Glow && r.opts.GlowSigma > 0 {
			r.drawGlow(dst, e)
		}
		switch e.Kind {
		case scene.KindShape:
			r.drawShape(dc, e, r.ppu, r.opts.Width, r.opts.Height)
		case scene.KindRaster:
			r.drawRaster(dst, e)
		}
	}
	return nil
}

func (r *Renderer) addPath(dc *gg.Context, p geom.Path, ppu float64, w, h int) {
	for _, c := range p.Contours() {
		if len(c.Points) < 2 {
			continue
		}
		x, y := r.toPixel(c.Points[0], ppu, w, h)
		dc.MoveTo(x, y)
		for _, pt := range c.Points[1:] {
			x, y = r.toPixel(pt, ppu, w, h)
			dc.LineTo(x, y)
		}
		if c.Closed {
			dc.ClosePath()
		}
	}
}

func setColor(dc *gg.Context, c colorful.Color, alpha float64) {
	c = c.Clamped()
	dc.SetRGBA(c.R, c.G, c.B, math.Max(0, math.Min(1, alpha)))
}

func (r *Renderer) drawShape(dc *gg.Context, e *scene.Element, ppu float64, w, h int) {
	for i, p := range e.Shape {
		style := e.Style
		if i < len(e.Parts) {
			style = e.Parts[i]
		}
		trace := 1.0
		if i < len(e.Trace) {
			trace = e.Trace[i]
		}

		if a := style.FillOpacity * e.Opacity; a > 0 {
			r.addPath(dc, p, ppu, w, h)
			dc.SetFillRule(gg.FillRuleWinding)
			setColor(dc, style.FillColor, a)
			dc.Fill()
		}

		if a := style.StrokeOpacity * e.Opacity; a > 0 && style.StrokeWidth > 0 && trace > 0 {
			r.addPath(dc, p.Trace(trace), ppu, w, h)
			dc.SetLineWidth(style.StrokeWidth * strokeUnit * ppu)
			dc.SetLineJoin(gg.LineJoinRound)
			dc.SetLineCap(gg.LineCapRound)
			setColor(dc, style.StrokeColor, a)
			dc.Stroke()
		}
	}
}

// pixelRect converts a scene-space box to raster pixels.
func (r *Renderer) pixelRect(b geom.Rect) image.Rectangle {
	x0, y0 := r.toPixel(geom.Point{X: b.Min.X, Y: b.Max.Y}, r.ppu, r.opts.Width, r.opts.Height)
	x1, y1 := r.toPixel(geom.Point{X: b.Max.X, Y: b.Min.Y}, r.ppu, r.opts.Width, r.opts.Height)
	return image.Rect(int(math.Round(x0)), int(math.Round(y0)), int(math.Round(x1)), int(math.Round(y1)))
}

func (r *Renderer) drawRaster(dst *image.RGBA, e *scene.Element) {
	if e.Raster == nil {
		return
	}
	dr := r.pixelRect(e.Box)
	if dr.Empty() {
		return
	}
	var opts *xdraw.Options
	if e.Opacity < 1 {
		opts = &xdraw.Options{SrcMask: image.NewUniform(color.Alpha{A: uint8(math.Round(e.Opacity * 255))})}
	}
	xdraw.ApproxBiLinear.Scale(dst, dr, e.Raster, e.Raster.Bounds(), xdraw.Over, opts)
}

// drawGlow paints a blurred silhouette of e under it. The silhouette is rendered small and scaled up.
func (r *Renderer) drawGlow(dst *image.RGBA, e *scene.Element) {
	w, h := r.opts.Width/glowDownscale, r.opts.Height/glowDownscale
	if w == 0 || h == 0 {
		return
	}
	small := image.NewRGBA(image.Rect(0, 0, w, h))
	dc := gg.NewContextForRGBA(small)

	glow := *e
	glow.Trace, glow.Parts = nil, nil
	glow.Style = scene.Filled(e.Style.FillColor)
	glow.Opacity = 0.8 * e.Opacity
	if glow.Kind == scene.KindRaster {
		glow.Kind = scene.KindShape
		glow.Shape = geom.Shape{geom.RoundedRect(e.Box.Center(), e.Box.Width(), e.Box.Height(), 0)}
	}
	r.drawShape(dc, &glow, r.ppu/glowDownscale, w, h)

	blurred := blur.Gaussian(small, r.opts.GlowSigma/glowDownscale)
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), blurred, blurred.Bounds(), xdraw.Over, nil)
}
