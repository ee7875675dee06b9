package source

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const twoPathSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100" width="100" height="100">
  <path d="M0 0 L100 0 L100 100 L0 100 Z" fill="#000000"/>
  <path d="M30 20 C60 20 80 40 80 50 C80 70 60 80 30 80 Z" fill="#ffffff"/>
</svg>`

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseSVGKeepsDocumentOrder(t *testing.T) {
	shape, err := ParseSVG(strings.NewReader(twoPathSVG))
	if err != nil {
		t.Fatalf("ParseSVG failed: %v", err)
	}
	if len(shape) != 2 {
		t.Fatalf("Expected 2 sub-paths, got %d", len(shape))
	}

	bg := shape[0].Bounds()
	if math.Abs(bg.Width()-100) > 0.5 || math.Abs(bg.Height()-100) > 0.5 {
		t.Errorf("Background sub-path bounds %+v", bg)
	}
	// y is flipped: SVG y=20..80 becomes -80..-20.
	glyph := shape[1].Bounds()
	if math.Abs(glyph.Max.Y+20) > 0.5 || math.Abs(glyph.Min.Y+80) > 0.5 {
		t.Errorf("Glyph sub-path not flipped: %+v", glyph)
	}
	if !bg.Contains(glyph, 0.5) {
		t.Error("Background should enclose the glyph")
	}
}

const transformedSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100" width="100" height="100">
  <path d="M0 0 L100 0 L100 100 L0 100 Z"/>
  <g transform="scale(4)"><path d="M10 10 L20 10 L20 20 L10 20 Z"/></g>
  <g transform="translate(50,0)"><path transform="scale(2)" d="M0 0 L10 0 L10 10 Z"/></g>
</svg>`

func TestParseSVGAppliesTransforms(t *testing.T) {
	shape, err := ParseSVG(strings.NewReader(transformedSVG))
	if err != nil {
		t.Fatalf("ParseSVG failed: %v", err)
	}
	if len(shape) != 3 {
		t.Fatalf("Expected 3 sub-paths, got %d", len(shape))
	}

	tests := []struct {
		name                   string
		minX, maxX, minY, maxY float64
	}{
		{"scaled group", 40, 80, -80, -40},
		{"nested translate and scale", 50, 70, -20, 0},
	}
	for i, tt := range tests {
		b := shape[i+1].Bounds()
		if math.Abs(b.Min.X-tt.minX) > 0.1 || math.Abs(b.Max.X-tt.maxX) > 0.1 ||
			math.Abs(b.Min.Y-tt.minY) > 0.1 || math.Abs(b.Max.Y-tt.maxY) > 0.1 {
			t.Errorf("%s: unexpected bounds %+v", tt.name, b)
		}
	}
	if !shape[0].Bounds().Contains(shape[1].Bounds(), 0.5) {
		t.Error("Background should still enclose the scaled glyph")
	}
}

func TestParseSVGEmpty(t *testing.T) {
	_, err := ParseSVG(strings.NewReader(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"></svg>`))
	if !errors.Is(err, ErrNoSubPaths) {
		t.Errorf("Expected ErrNoSubPaths, got %v", err)
	}
}

func TestFileLoader(t *testing.T) {
	l := NewFileLoader()
	path := writeFile(t, "moon.svg", twoPathSVG)

	if !l.Exists(path) {
		t.Error("Expected asset to exist")
	}
	if l.Exists("/nonexistent.svg") || l.Exists("") || l.Exists(filepath.Dir(path)) {
		t.Error("Missing files and directories must not count as assets")
	}

	asset, err := l.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !asset.Vector() || len(asset.Paths) != 2 {
		t.Errorf("Expected vector asset with 2 sub-paths, got %d", len(asset.Paths))
	}

	if _, err := l.Load(writeFile(t, "moon.gif", "GIF89a")); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestOutlineDreams(t *testing.T) {
	shaper, err := LoadFontShaper("", "", EmbeddedBold)
	if err != nil {
		t.Fatalf("LoadFontShaper failed: %v", err)
	}

	shape, err := shaper.Outline("Dreams", 1)
	if err != nil {
		t.Fatalf("Outline failed: %v", err)
	}
	if len(shape) != 6 {
		t.Fatalf("Expected one sub-path per letter, got %d", len(shape))
	}

	b := shape.Bounds()
	if b.Height() <= 0.3 || b.Height() > 1.2 {
		t.Errorf("Unexpected text height %f for em=1", b.Height())
	}
	// Letters run left to right.
	if shape[0].Bounds().Min.X >= shape[5].Bounds().Min.X {
		t.Error("Glyphs out of order")
	}
	// Capital D sits on the baseline, above y=0.
	if d := shape[0].Bounds(); d.Min.Y < -0.01 || d.Max.Y <= 0 {
		t.Errorf("D not on baseline: %+v", d)
	}
}

func TestOutlineSkipsSpaces(t *testing.T) {
	shaper, _ := LoadFontShaper("", "", EmbeddedRegular)
	shape, err := shaper.Outline("a b", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(shape) != 2 {
		t.Errorf("Expected 2 glyph sub-paths, got %d", len(shape))
	}
}

func TestQRCode(t *testing.T) {
	img, err := QRCode("https://example.com/dreams", 200)
	if err != nil {
		t.Fatalf("QRCode failed: %v", err)
	}
	if img.Bounds().Dx() != 200 {
		t.Errorf("Expected 200px code, got %d", img.Bounds().Dx())
	}
}

func TestFindFontPrefersExactName(t *testing.T) {
	root := t.TempDir()
	// The oblique face is walked first; the exact name must still win.
	for _, name := range []string{"a/Helvetica-BoldOblique.ttf", "b/Helvetica-Bold.ttf", "b/Helvetica.ttc"} {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	if got := findFont([]string{root}, "Helvetica-Bold"); filepath.Base(got) != "Helvetica-Bold.ttf" {
		t.Errorf("Expected exact match, got %q", got)
	}
	if got := findFont([]string{root}, "Helvetica-Bo"); filepath.Base(got) != "Helvetica-BoldOblique.ttf" {
		t.Errorf("Expected first prefix match, got %q", got)
	}
	if got := findFont([]string{root, filepath.Join(root, "missing")}, "Futura"); got != "" {
		t.Errorf("Expected no match, got %q", got)
	}
}
