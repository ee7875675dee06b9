package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ivlev/dreams-promo/internal/geom"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// outlinePPEM is the size glyph outlines are extracted at before scaling to scene units.
const outlinePPEM = 1024

// FontShaper turns strings into glyph outlines.
type FontShaper struct {
	Name string
	font *sfnt.Font
}

// systemFontDirs are searched when a family name is given without a file.
var systemFontDirs = []string{
	"/System/Library/Fonts",
	"/Library/Fonts",
	"/usr/share/fonts",
	"/usr/local/share/fonts",
}

// LoadFontShaper parses the font at path. With an empty path it searches the system font directories
// for family, then falls back to the embedded font.
func LoadFontShaper(path, family string, fallback []byte) (*FontShaper, error) {
	if path == "" && family != "" {
		path = FindSystemFont(family)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		f, err := sfnt.Parse(data)
		if err != nil {
			return nil, fmt.Errorf("шрифт %s: %w", path, err)
		}
		return &FontShaper{Name: filepath.Base(path), font: f}, nil
	}

	f, err := sfnt.Parse(fallback)
	if err != nil {
		return nil, fmt.Errorf("встроенный шрифт: %w", err)
	}
	return &FontShaper{Name: "embedded", font: f}, nil
}

// FindSystemFont returns the TTF/OTF file named exactly family, or failing that the first
// whose name starts with family. "" means nothing matched.
// Collections (.ttc) are skipped since sfnt.Parse reads single fonts only.
func FindSystemFont(family string) string {
	return findFont(systemFontDirs, family)
}

func findFont(dirs []string, family string) string {
	want := strings.ToLower(strings.ReplaceAll(family, " ", ""))
	var prefix string
	for _, dir := range dirs {
		var exact string
		filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return filepath.SkipDir
			}
			if d.IsDir() {
				return nil
			}
			name := strings.ToLower(d.Name())
			ext := filepath.Ext(name)
			if ext != ".ttf" && ext != ".otf" {
				return nil
			}
			switch base := strings.TrimSuffix(name, ext); {
			case base == want:
				exact = p
				return filepath.SkipAll
			case prefix == "" && strings.HasPrefix(base, want):
				prefix = p
			}
			return nil
		})
		if exact != "" {
			return exact
		}
	}
	return prefix
}

// Outline lays text out on a baseline and returns one sub-path per visible glyph.
// em is the font size in scene units. The result is left-aligned at x=0 with the baseline at y=0.
func (s *FontShaper) Outline(text string, em float64) (geom.Shape, error) {
	var buf sfnt.Buffer
	ppem := fixed.I(outlinePPEM)
	scale := em / outlinePPEM

	var shape geom.Shape
	x := 0.0
	prev := sfnt.GlyphIndex(0)
	for i, r := range text {
		idx, err := s.font.GlyphIndex(&buf, r)
		if err != nil {
			return nil, fmt.Errorf("глиф %q: %w", r, err)
		}
		if idx == 0 {
			return nil, fmt.Errorf("шрифт %s не содержит символ %q", s.Name, r)
		}
		if i > 0 {
			if k, err := s.font.Kern(&buf, prev, idx, ppem, font.HintingNone); err == nil {
				x += float64(k) / 64 * scale
			}
		}

		if !unicode.IsSpace(r) {
			segs, err := s.font.LoadGlyph(&buf, idx, ppem, nil)
			if err != nil {
				return nil, fmt.Errorf("контур %q: %w", r, err)
			}
			// sfnt coordinates grow downwards.
			t := geom.Scale(scale, -scale).Then(geom.Translate(geom.Point{X: x}))
			b := geom.NewBuilder(t)
			for _, seg := range segs {
				a := seg.Args
				switch seg.Op {
				case sfnt.SegmentOpMoveTo:
					b.Close()
					b.MoveTo(pt(a[0].X, a[0].Y))
				case sfnt.SegmentOpLineTo:
					b.LineTo(pt(a[0].X, a[0].Y))
				case sfnt.SegmentOpQuadTo:
					b.QuadTo(pt(a[0].X, a[0].Y), pt(a[1].X, a[1].Y))
				case sfnt.SegmentOpCubeTo:
					b.CubicTo(pt(a[0].X, a[0].Y), pt(a[1].X, a[1].Y), pt(a[2].X, a[2].Y))
				}
			}
			b.Close()
			if p := b.Path(); !p.Empty() {
				shape = append(shape, p)
			}
		}

		adv, err := s.font.GlyphAdvance(&buf, idx, ppem, font.HintingNone)
		if err != nil {
			return nil, fmt.Errorf("advance %q: %w", r, err)
		}
		x += float64(adv) / 64 * scale
		prev = idx
	}
	return shape, nil
}

// Embedded Go fonts stand in when the requested family is not installed.
var (
	EmbeddedBold    = gobold.TTF
	EmbeddedRegular = goregular.TTF
)
