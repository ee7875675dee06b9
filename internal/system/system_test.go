package system

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func touch(t *testing.T, dir, name string, mod time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindLatestAsset(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	touch(t, dir, "old.svg", now.Add(-time.Hour))
	want := touch(t, dir, "moon.PDF", now)
	touch(t, dir, "newest.png", now.Add(time.Hour))

	got, err := FindLatestAsset(dir)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}

func TestFindLatestAssetEmpty(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "notes.txt", time.Now())
	if _, err := FindLatestAsset(dir); err == nil {
		t.Error("Expected error for folder without assets")
	}
}

func TestFindLatestAudio(t *testing.T) {
	dir := t.TempDir()
	want := touch(t, dir, "track.mp3", time.Now())
	got, err := FindLatestAudio(dir)
	if err != nil || got != want {
		t.Errorf("Expected %s, got %s (%v)", want, got, err)
	}
}

func TestResolveInput(t *testing.T) {
	dir := t.TempDir()
	want := touch(t, dir, "icon.svg", time.Now())

	if got, _ := ResolveInput(dir, FindLatestAsset); got != want {
		t.Errorf("Folder should resolve to %s, got %s", want, got)
	}
	if got, _ := ResolveInput("/nonexistent.svg", FindLatestAsset); got != "/nonexistent.svg" {
		t.Errorf("Missing file must be passed through, got %s", got)
	}
	if got, _ := ResolveInput("", FindLatestAsset); got != "" {
		t.Errorf("Empty path must stay empty, got %s", got)
	}
}

func TestResolveAsset(t *testing.T) {
	empty := t.TempDir()
	// A folder without icons is kept so the caller sees a missing asset, not a fatal error.
	if got := ResolveAsset(empty, "input/icons"); got != empty {
		t.Errorf("Expected unresolved folder %s, got %s", empty, got)
	}
	if got := ResolveAsset("", empty); got != "" {
		t.Errorf("Empty default folder should give an empty path, got %s", got)
	}

	full := t.TempDir()
	want := touch(t, full, "moon.svg", time.Now())
	if got := ResolveAsset("", full); got != want {
		t.Errorf("Expected latest icon %s, got %s", want, got)
	}
	if got := ResolveAsset(full, "input/icons"); got != want {
		t.Errorf("Expected folder to resolve to %s, got %s", want, got)
	}
}

func TestPickEncoder(t *testing.T) {
	tests := []struct {
		out  string
		want string
	}{
		{" V....D h264_videotoolbox  VideoToolbox H.264 Encoder", "h264_videotoolbox"},
		{" V....D h264_nvenc  NVIDIA NVENC H.264 encoder", "h264_nvenc"},
		{" V....D libx264  libx264 H.264", "libx264"},
	}
	for _, tt := range tests {
		if got := pickEncoder(tt.out); got != tt.want {
			t.Errorf("pickEncoder(%q) = %s, want %s", tt.out, got, tt.want)
		}
	}
}

func TestFramePool(t *testing.T) {
	rect := image.Rect(0, 0, 8, 8)
	p := NewFramePool(rect)

	img := p.Get()
	if img.Rect != rect {
		t.Fatalf("Expected %v, got %v", rect, img.Rect)
	}
	p.Put(img)
	p.Put(image.NewRGBA(image.Rect(0, 0, 2, 2)))
	p.Put(nil)

	if got := p.Get(); got.Rect != rect {
		t.Errorf("Pool returned a foreign frame %v", got.Rect)
	}
	if p.Allocated() < 1 {
		t.Error("Expected at least one allocation")
	}
}

func TestWorkerCount(t *testing.T) {
	s := Stats{LogicalCPUs: 8, AvailMemory: 1 << 30}
	frame := uint64(1080 * 1080 * 4)

	if got := s.WorkerCount(3, frame); got != 3 {
		t.Errorf("Explicit worker count must win, got %d", got)
	}
	if got := s.WorkerCount(0, frame); got != 8 {
		t.Errorf("Expected 8 workers with enough memory, got %d", got)
	}
	low := Stats{LogicalCPUs: 8, AvailMemory: 64 << 20}
	if got := low.WorkerCount(0, frame); got < 1 || got >= 8 {
		t.Errorf("Expected memory-bound worker count, got %d", got)
	}
}

func TestCollect(t *testing.T) {
	s := Collect()
	if s.LogicalCPUs < 1 || s.NumGoroutine < 1 {
		t.Errorf("Unexpected stats %+v", s)
	}
	if s.String() == "" {
		t.Error("Empty stats line")
	}
}
