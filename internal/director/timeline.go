package director

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ivlev/dreams-promo/internal/scene"
	"gopkg.in/yaml.v3"
)

// TimelineVersion of the YAML layout.
const TimelineVersion = "1.0"

// Timeline is the step log of one run.
type Timeline struct {
	Version  string       `yaml:"version"`
	Branch   string       `yaml:"branch"`
	Variant  string       `yaml:"variant"`
	FPS      int          `yaml:"fps"`
	Frames   int          `yaml:"frames"`
	Duration float64      `yaml:"duration"` // seconds
	Steps    []scene.Step `yaml:"steps"`
}

// NewTimeline collects the step log of s after a run.
func NewTimeline(s *scene.Scene, branch, variant string) *Timeline {
	return &Timeline{
		Version:  TimelineVersion,
		Branch:   branch,
		Variant:  variant,
		FPS:      s.FPS(),
		Frames:   s.FrameCount(),
		Duration: s.Time(),
		Steps:    s.Steps(),
	}
}

// WriteTimeline writes a timeline to a YAML file
func WriteTimeline(tl *Timeline, path string) error {
	data, err := yaml.Marshal(tl)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// ReadTimeline reads a timeline from a YAML file
func ReadTimeline(path string) (*Timeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tl Timeline
	if err := yaml.Unmarshal(data, &tl); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &tl, nil
}

// TimelinePathFor derives the timeline file name from the video path: promo.mp4 -> promo.timeline.yaml.
func TimelinePathFor(videoPath string) string {
	base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
	return base + ".timeline.yaml"
}
