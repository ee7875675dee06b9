package engine

import (
	"context"
	"errors"
	"image"
	"math/rand"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ivlev/dreams-promo/internal/config"
	"github.com/ivlev/dreams-promo/internal/director"
	"github.com/ivlev/dreams-promo/internal/scene"
	"github.com/ivlev/dreams-promo/internal/source"
	"github.com/ivlev/dreams-promo/internal/video"
)

// stampRenderer writes the frame index into the first pixel after a random delay.
type stampRenderer struct {
	failAt int
}

func (r *stampRenderer) Size() image.Rectangle { return image.Rect(0, 0, 2, 2) }

func (r *stampRenderer) Render(f scene.Frame, dst *image.RGBA) error {
	if r.failAt > 0 && f.Index == r.failAt {
		return errors.New("render failed")
	}
	time.Sleep(time.Duration(rand.Intn(300)) * time.Microsecond)
	dst.Pix[0] = byte(f.Index)
	dst.Pix[1] = byte(f.Index >> 8)
	return nil
}

type recordingWriter struct {
	mu      sync.Mutex
	indices []int
	closed  bool
	failAt  int
}

func (w *recordingWriter) WriteFrame(img *image.RGBA) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failAt > 0 && len(w.indices) == w.failAt {
		return errors.New("pipe closed")
	}
	w.indices = append(w.indices, int(img.Pix[0])|int(img.Pix[1])<<8)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestPipelineKeepsOrder(t *testing.T) {
	out := &recordingWriter{}
	p := NewPipeline(context.Background(), &stampRenderer{}, out, 4)

	const n = 300
	for i := 0; i < n; i++ {
		if err := p.Emit(context.Background(), scene.Frame{Index: i}); err != nil {
			t.Fatalf("Emit %d: %v", i, err)
		}
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if len(out.indices) != n || !out.closed {
		t.Fatalf("Expected %d frames and a closed writer, got %d (closed=%v)", n, len(out.indices), out.closed)
	}
	for i, idx := range out.indices {
		if idx != i {
			t.Fatalf("Frame %d written at position %d", idx, i)
		}
	}
	if st := p.Stats(); st.Rendered != n || st.Written != n {
		t.Errorf("Unexpected stats %+v", st)
	}
}

func TestPipelineRenderError(t *testing.T) {
	out := &recordingWriter{}
	p := NewPipeline(context.Background(), &stampRenderer{failAt: 10}, out, 2)

	var emitErr error
	for i := 0; i < 200 && emitErr == nil; i++ {
		emitErr = p.Emit(context.Background(), scene.Frame{Index: i})
	}
	err := p.Close()
	if err == nil {
		t.Fatal("Expected render error from Close")
	}
	if len(out.indices) > 10 {
		t.Errorf("No frame after the failed one may be written, got %d", len(out.indices))
	}
}

func TestPipelineWriteError(t *testing.T) {
	out := &recordingWriter{failAt: 5}
	p := NewPipeline(context.Background(), &stampRenderer{}, out, 2)

	var emitErr error
	for i := 0; i < 500 && emitErr == nil; i++ {
		emitErr = p.Emit(context.Background(), scene.Frame{Index: i})
	}
	if err := p.Close(); err == nil {
		t.Fatal("Expected write error from Close")
	}
	if len(out.indices) != 5 {
		t.Errorf("Expected 5 frames before the failure, got %d", len(out.indices))
	}
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.AssetPath = "/nonexistent.svg"
	cfg.Width, cfg.Height = 32, 32
	cfg.FPS = 10
	cfg.Workers = 2
	cfg.TimelinePath = filepath.Join(t.TempDir(), "promo.timeline.yaml")
	return cfg
}

func newTestProject(t *testing.T, cfg *config.Config, out video.FrameWriter, opened *int) *Project {
	t.Helper()
	bold, err := source.LoadFontShaper("", "", source.EmbeddedBold)
	if err != nil {
		t.Fatal(err)
	}
	open := func(context.Context, *config.Config) (video.FrameWriter, error) {
		*opened++
		return out, nil
	}
	return NewProject(cfg, source.NewFileLoader(), bold, nil, open)
}

type countingWriter struct {
	frames int
	closed bool
}

func (c *countingWriter) WriteFrame(img *image.RGBA) error {
	if img.Bounds().Dx() != 32 {
		return errors.New("wrong frame size")
	}
	c.frames++
	return nil
}
func (c *countingWriter) Close() error { c.closed = true; return nil }

func TestProjectRendersPlaceholder(t *testing.T) {
	cfg := testConfig(t)
	out := &countingWriter{}
	opened := 0

	rep, err := newTestProject(t, cfg, out, &opened).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if rep.Branch != director.BranchPlaceholder {
		t.Errorf("Expected placeholder branch, got %s", rep.Branch)
	}
	if opened != 1 || !out.closed {
		t.Errorf("Writer must be opened once and closed, opened=%d closed=%v", opened, out.closed)
	}
	if rep.Frames == 0 || out.frames != rep.Frames {
		t.Errorf("Expected %d written frames, got %d", rep.Frames, out.frames)
	}

	tl, err := director.ReadTimeline(cfg.TimelinePath)
	if err != nil {
		t.Fatalf("Timeline not written: %v", err)
	}
	if tl.Frames != rep.Frames || tl.Branch != director.BranchPlaceholder {
		t.Errorf("Timeline mismatch: %+v", tl)
	}
}

func TestProjectDryRun(t *testing.T) {
	cfg := testConfig(t)
	cfg.DryRun = true
	opened := 0

	rep, err := newTestProject(t, cfg, &countingWriter{}, &opened).Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if opened != 0 {
		t.Error("Dry run must not open the encoder")
	}
	if rep.Frames == 0 || len(rep.Timeline.Steps) == 0 {
		t.Errorf("Dry run should still build the timeline, got %+v", rep.Timeline)
	}
}

func TestProjectCancelled(t *testing.T) {
	cfg := testConfig(t)
	cfg.TimelinePath = ""
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	opened := 0
	out := &countingWriter{}

	if _, err := newTestProject(t, cfg, out, &opened).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if !out.closed {
		t.Error("Writer must be closed after cancellation")
	}
}
