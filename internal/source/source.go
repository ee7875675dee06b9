package source

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/ivlev/dreams-promo/internal/geom"
)

// ErrNoSubPaths is returned for vector assets without drawable paths.
var ErrNoSubPaths = errors.New("asset has no sub-paths")

// Asset is a loaded icon asset. Vector assets fill Paths, PDF assets fill Raster.
type Asset struct {
	Path   string
	Paths  geom.Shape
	Raster image.Image
}

// Vector reports whether the asset carries traceable sub-paths.
func (a *Asset) Vector() bool { return len(a.Paths) > 0 }

// Loader resolves and loads icon assets.
type Loader interface {
	Exists(path string) bool
	Load(path string) (*Asset, error)
}

// FileLoader reads assets from the local file system.
type FileLoader struct {
	// DPI for rasterising PDF assets.
	DPI int
}

// NewFileLoader returns a loader with the default PDF resolution.
func NewFileLoader() *FileLoader {
	return &FileLoader{DPI: 300}
}

// Exists reports whether path names a regular file.
func (l *FileLoader) Exists(path string) bool {
	if path == "" {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && fi.Mode().IsRegular()
}

// Load dispatches on the file extension.
func (l *FileLoader) Load(path string) (*Asset, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		paths, err := ParseSVG(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &Asset{Path: path, Paths: paths}, nil
	case ".pdf":
		img, err := l.renderPDF(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return &Asset{Path: path, Raster: img}, nil
	default:
		return nil, fmt.Errorf("неподдерживаемый формат ассета: %s", path)
	}
}

// renderPDF rasterises the first page of a PDF vector asset.
func (l *FileLoader) renderPDF(path string) (image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("PDF без страниц")
	}
	dpi := l.DPI
	if dpi <= 0 {
		dpi = 300
	}
	return doc.ImageDPI(0, float64(dpi))
}
