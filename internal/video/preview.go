package video

import (
	"fmt"
	"image"
	"math"
	"os"

	"github.com/anthonynsimon/bild/transform"
	"github.com/kettek/apng"
)

// APNGWriter собирает уменьшенное анимированное превью.
// Кадры прореживаются до PreviewFPS, чтобы файл оставался небольшим.
type APNGWriter struct {
	path  string
	size  int
	every int
	fps   int
	seen  int
	anim  apng.APNG
}

// PreviewFPS - частота кадров превью.
const PreviewFPS = 15

// NewAPNGWriter пишет превью со стороной size пикселей для видео с частотой fps.
func NewAPNGWriter(path string, size, fps int) *APNGWriter {
	every := int(math.Max(1, math.Round(float64(fps)/PreviewFPS)))
	return &APNGWriter{path: path, size: size, every: every, fps: fps}
}

func (w *APNGWriter) WriteFrame(img *image.RGBA) error {
	defer func() { w.seen++ }()
	if w.seen%w.every != 0 {
		return nil
	}

	b := img.Bounds()
	width, height := w.size, w.size*b.Dy()/b.Dx()
	// Кадр из пула будет переиспользован, поэтому храним только уменьшенную копию.
	small := transform.Resize(img, width, height, transform.Linear)

	w.anim.Frames = append(w.anim.Frames, apng.Frame{
		Image:            small,
		DelayNumerator:   uint16(w.every),
		DelayDenominator: uint16(w.fps),
	})
	return nil
}

// Len - число кадров превью.
func (w *APNGWriter) Len() int { return len(w.anim.Frames) }

func (w *APNGWriter) Close() error {
	if len(w.anim.Frames) == 0 {
		return nil
	}
	f, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("preview create error: %w", err)
	}
	if err := apng.Encode(f, w.anim); err != nil {
		f.Close()
		return fmt.Errorf("preview encode error: %w", err)
	}
	return f.Close()
}
