// Package scene runs the play-and-wait timeline.
//
// Play blocks until its animations reach their end state, emitting one Frame per tick to the sink.
// The resulting frame order is the video order.
package scene

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrNoAnimations is returned by Play without animations.
var ErrNoAnimations = errors.New("play called without animations")

// RateFunc maps linear progress in [0,1] to eased progress.
type RateFunc func(float64) float64

// Animation changes elements over its run time.
type Animation interface {
	// Begin captures start state. It may add elements to the scene.
	Begin(s *Scene)
	// Interpolate sets state at eased progress alpha.
	Interpolate(alpha float64)
	// Finish sets the end state. It may remove elements from the scene.
	Finish(s *Scene)
	// RunTime in seconds.
	RunTime() float64
	// Rate is the animation's own easing; nil means linear.
	Rate() RateFunc
	String() string
}

// PlayOptions override every animation of a Play call when set.
type PlayOptions struct {
	RunTime  float64
	Rate     RateFunc
	RateName string
}

// Frame is an immutable snapshot handed to the sink.
type Frame struct {
	Index    int
	Time     float64
	Elements []Element
}

// FrameSink consumes frames in order.
type FrameSink interface {
	Emit(ctx context.Context, f Frame) error
}

// Step is one entry of the timeline log.
type Step struct {
	Index      int      `yaml:"index"`
	Kind       string   `yaml:"kind"`
	Start      float64  `yaml:"start"`
	Duration   float64  `yaml:"duration"`
	Frames     int      `yaml:"frames"`
	Rate       string   `yaml:"rate,omitempty"`
	Animations []string `yaml:"animations,omitempty"`
}

// Scene owns the element list and the timeline clock.
type Scene struct {
	fps      int
	sink     FrameSink
	elements []*Element
	frame    int
	clock    float64
	steps    []Step
}

// New creates a scene ticking at fps. A nil sink builds the timeline without emitting frames.
func New(fps int, sink FrameSink) *Scene {
	return &Scene{fps: fps, sink: sink}
}

// Add appends elements on top. Elements already present keep their place.
func (s *Scene) Add(els ...*Element) {
	for _, e := range els {
		if !s.Contains(e) {
			s.elements = append(s.elements, e)
		}
	}
}

// Remove drops elements from the scene.
func (s *Scene) Remove(els ...*Element) {
	kept := s.elements[:0]
	for _, e := range s.elements {
		drop := false
		for _, r := range els {
			if e == r {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, e)
		}
	}
	s.elements = kept
}

// Contains reports whether e is on the scene.
func (s *Scene) Contains(e *Element) bool {
	for _, x := range s.elements {
		if x == e {
			return true
		}
	}
	return false
}

// Elements in draw order.
func (s *Scene) Elements() []*Element {
	return append([]*Element(nil), s.elements...)
}

// Steps is the timeline log so far.
func (s *Scene) Steps() []Step {
	return append([]Step(nil), s.steps...)
}

// Time is the timeline clock in seconds.
func (s *Scene) Time() float64 { return s.clock }

// FrameCount is the number of frames emitted so far.
func (s *Scene) FrameCount() int { return s.frame }

// FPS of the timeline.
func (s *Scene) FPS() int { return s.fps }

// Snapshot copies the current element state.
func (s *Scene) Snapshot() Frame {
	els := make([]Element, len(s.elements))
	for i, e := range s.elements {
		els[i] = *e
	}
	return Frame{Index: s.frame, Time: s.clock, Elements: els}
}

func (s *Scene) ticks(d float64) int {
	n := int(math.Round(d * float64(s.fps)))
	if n < 1 && d > 0 {
		n = 1
	}
	return n
}

func (s *Scene) emit(ctx context.Context, f int) error {
	if s.sink == nil {
		s.frame++
		return nil
	}
	snap := s.Snapshot()
	snap.Time = s.clock + float64(f)/float64(s.fps)
	s.frame++
	return s.sink.Emit(ctx, snap)
}

// Play runs animations together and returns once the longest has finished.
func (s *Scene) Play(ctx context.Context, opts PlayOptions, anims ...Animation) error {
	if len(anims) == 0 {
		return ErrNoAnimations
	}

	durations := make([]float64, len(anims))
	total := 0.0
	for i, a := range anims {
		d := a.RunTime()
		if opts.RunTime > 0 {
			d = opts.RunTime
		}
		durations[i] = d
		total = math.Max(total, d)
	}

	for _, a := range anims {
		a.Begin(s)
	}

	n := s.ticks(total)
	for f := 1; f <= n; f++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := float64(f) / float64(s.fps)
		for i, a := range anims {
			local := 1.0
			if durations[i] > 0 {
				local = math.Min(1, t/durations[i])
			}
			rate := opts.Rate
			if rate == nil {
				rate = a.Rate()
			}
			if rate != nil {
				local = rate(local)
			}
			a.Interpolate(local)
		}
		if err := s.emit(ctx, f); err != nil {
			return fmt.Errorf("frame %d: %w", s.frame, err)
		}
	}

	names := make([]string, len(anims))
	for i, a := range anims {
		a.Finish(s)
		names[i] = a.String()
	}

	s.log("play", total, n, opts.RateName, names)
	return nil
}

// Wait holds the current state for d seconds.
func (s *Scene) Wait(ctx context.Context, d float64) error {
	if d <= 0 {
		return nil
	}
	n := s.ticks(d)
	for f := 1; f <= n; f++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.emit(ctx, f); err != nil {
			return fmt.Errorf("frame %d: %w", s.frame, err)
		}
	}
	s.log("wait", d, n, "", nil)
	return nil
}

func (s *Scene) log(kind string, d float64, frames int, rate string, anims []string) {
	s.steps = append(s.steps, Step{
		Index:      len(s.steps),
		Kind:       kind,
		Start:      s.clock,
		Duration:   d,
		Frames:     frames,
		Rate:       rate,
		Animations: anims,
	})
	s.clock += float64(frames) / float64(s.fps)
}

// Describe renders a step as a single console line.
func (st Step) Describe() string {
	if st.Kind == "wait" {
		return fmt.Sprintf("%6.2fs wait %.2fs", st.Start, st.Duration)
	}
	return fmt.Sprintf("%6.2fs play %.2fs %s", st.Start, st.Duration, strings.Join(st.Animations, ", "))
}
