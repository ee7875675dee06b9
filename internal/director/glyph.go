package director

import (
	"image"

	"github.com/ivlev/dreams-promo/internal/config"
	"github.com/ivlev/dreams-promo/internal/geom"
)

// encloseEps is the slack, in asset units, allowed when checking that the background encloses the glyph.
const encloseEps = 1e-3

// ExtractGlyph drops the first skip sub-paths, assumed to be a background layer, and keeps the rest.
// With no more than skip sub-paths everything is kept. suspicious reports that the dropped sub-paths
// do not enclose the kept ones, which means the asset probably has no background layer.
func ExtractGlyph(paths geom.Shape, skip int) (glyph geom.Shape, suspicious bool) {
	if skip <= 0 || len(paths) <= skip {
		return paths, false
	}
	bg := paths[:skip].Bounds()
	glyph = paths[skip:]
	eps := encloseEps * (1 + bg.Width() + bg.Height())
	return glyph, !bg.Contains(glyph.Bounds(), eps)
}

// PlaceGlyph sizes glyph as if the whole asset were fitted to GlyphHeight, scales it by GlyphScale
// and centres it on c.
func PlaceGlyph(whole, glyph geom.Shape, seq config.Sequence, c geom.Point) geom.Shape {
	b := whole.Bounds()
	if b.Empty() || b.Height() == 0 {
		return glyph.MoveTo(c)
	}
	k := seq.GlyphHeight / b.Height() * seq.GlyphScale
	gb := glyph.Bounds()
	return glyph.Transform(geom.ScaleAbout(gb.Center(), k)).MoveTo(c)
}

// rasterBox sizes a raster glyph like a vector one, keeping its aspect ratio.
func rasterBox(size image.Point, seq config.Sequence, c geom.Point) geom.Rect {
	h := seq.GlyphHeight * seq.GlyphScale
	w := h
	if size.Y > 0 {
		w = h * float64(size.X) / float64(size.Y)
	}
	half := geom.Point{X: w / 2, Y: h / 2}
	return geom.Rect{Min: c.Sub(half), Max: c.Add(half)}
}
