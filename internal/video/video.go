package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"strings"
)

// FrameWriter принимает кадры по порядку.
type FrameWriter interface {
	WriteFrame(img *image.RGBA) error
	Close() error
}

// Params описывает выходной поток.
type Params struct {
	Width, Height int
	FPS           int
	Encoder       string
	Quality       int
	AudioPath     string
}

// FFmpegEncoder запускает ffmpeg и передает кадры через stdin.
type FFmpegEncoder struct {
	// Binary по умолчанию "ffmpeg".
	Binary string
}

// Stream - открытый процесс ffmpeg.
type Stream struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr *strings.Builder
	frames int
}

func (e *FFmpegEncoder) binary() string {
	if e.Binary == "" {
		return "ffmpeg"
	}
	return e.Binary
}

// Open запускает кодирование в videoPath.
func (e *FFmpegEncoder) Open(ctx context.Context, videoPath string, p Params) (*Stream, error) {
	args := BuildArgs(videoPath, p)
	cmd := exec.CommandContext(ctx, e.binary(), args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	stderr := &strings.Builder{}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	return &Stream{cmd: cmd, stdin: stdin, stderr: stderr}, nil
}

// BuildArgs собирает аргументы ffmpeg для потока raw RGBA.
func BuildArgs(videoPath string, p Params) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-framerate", fmt.Sprintf("%d", p.FPS),
		"-i", "-",
	}
	if p.AudioPath != "" {
		args = append(args, "-i", p.AudioPath, "-map", "0:v", "-map", "1:a", "-c:a", "aac", "-shortest")
	}

	encoder := p.Encoder
	if encoder == "" {
		encoder = "libx264"
	}
	args = append(args, "-pix_fmt", "yuv420p", "-c:v", encoder)
	args = append(args, qualityArgs(encoder, p.Quality)...)
	args = append(args, videoPath)
	return args
}

// Качество в зависимости от энкодера
func qualityArgs(encoder string, quality int) []string {
	switch encoder {
	case "h264_videotoolbox":
		// VideoToolbox не везде поддерживает -q:v, используем битрейт. 75 -> 7.5 Мбит/с
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default: // libx264
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

// DefaultQuality подбирает значение качества под энкодер.
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75 // Хорошее качество для VideoToolbox
	case "h264_nvenc":
		return 28 // Эквивалент CRF для NVENC
	default:
		return 23 // Стандартный CRF для x264
	}
}

// WriteFrame пишет кадр как raw RGBA.
func (s *Stream) WriteFrame(img *image.RGBA) error {
	if err := writeRawRGBA(s.stdin, img); err != nil {
		return fmt.Errorf("write raw error: %w", err)
	}
	s.frames++
	return nil
}

// Frames - число записанных кадров.
func (s *Stream) Frames() int { return s.frames }

// Close закрывает stdin и ждет завершения ffmpeg.
func (s *Stream) Close() error {
	closeErr := s.stdin.Close()
	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", err, tail(s.stderr.String(), 512))
	}
	return closeErr
}

func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	b := img.Bounds()
	if img.Stride != b.Dx()*4 || b.Min.X != 0 || b.Min.Y != 0 {
		packed := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(packed, packed.Bounds(), img, b.Min, draw.Src)
		img = packed
	}
	_, err := w.Write(img.Pix)
	return err
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// Tee раздает каждый кадр нескольким получателям.
type Tee []FrameWriter

func (t Tee) WriteFrame(img *image.RGBA) error {
	for _, w := range t {
		if err := w.WriteFrame(img); err != nil {
			return err
		}
	}
	return nil
}

func (t Tee) Close() error {
	var errs []error
	for _, w := range t {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
