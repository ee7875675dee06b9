package engine

import (
	"context"
	"fmt"
	"image"
	"sync/atomic"
	"time"

	"github.com/ivlev/dreams-promo/internal/scene"
	"github.com/ivlev/dreams-promo/internal/system"
	"github.com/ivlev/dreams-promo/internal/video"
	"golang.org/x/sync/errgroup"
)

// FrameRenderer rasterises one frame snapshot.
type FrameRenderer interface {
	Render(f scene.Frame, dst *image.RGBA) error
	Size() image.Rectangle
}

// Pipeline renders frames in parallel and writes them in emission order.
//
// Emit -> slots (ordered) -> render pool -> writer -> FrameWriter
type Pipeline struct {
	r    FrameRenderer
	out  video.FrameWriter
	pool *system.FramePool

	cancel context.CancelCauseFunc
	g      *errgroup.Group
	gctx   context.Context

	// Каждый кадр получает свой слот; писатель читает слоты по порядку.
	slots      chan chan *image.RGBA
	writerDone chan error

	rendered   atomic.Int64
	written    atomic.Int64
	renderNano atomic.Int64
	closed     bool
}

// NewPipeline starts the writer. workers bounds parallel renders; frames in flight are bounded by 2*workers.
func NewPipeline(ctx context.Context, r FrameRenderer, out video.FrameWriter, workers int) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancelCause(ctx)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	p := &Pipeline{
		r:          r,
		out:        out,
		pool:       system.NewFramePool(r.Size()),
		cancel:     cancel,
		g:          g,
		gctx:       gctx,
		slots:      make(chan chan *image.RGBA, 2*workers),
		writerDone: make(chan error, 1),
	}
	go func() { p.writerDone <- p.write() }()
	return p
}

// Emit queues a frame for rendering. It blocks while the queue is full.
func (p *Pipeline) Emit(ctx context.Context, f scene.Frame) error {
	slot := make(chan *image.RGBA, 1)
	select {
	case p.slots <- slot:
	case <-ctx.Done():
		return ctx.Err()
	case <-p.gctx.Done():
		return context.Cause(p.gctx)
	}

	p.g.Go(func() error {
		start := time.Now()
		img := p.pool.Get()
		if err := p.r.Render(f, img); err != nil {
			p.pool.Put(img)
			return fmt.Errorf("рендер кадра %d: %w", f.Index, err)
		}
		p.renderNano.Add(int64(time.Since(start)))
		p.rendered.Add(1)
		slot <- img
		return nil
	})
	return nil
}

func (p *Pipeline) write() error {
	for slot := range p.slots {
		select {
		case img := <-slot:
			err := p.out.WriteFrame(img)
			p.pool.Put(img)
			if err != nil {
				err = fmt.Errorf("запись кадра %d: %w", p.written.Load(), err)
				p.cancel(err)
				return err
			}
			p.written.Add(1)
		case <-p.gctx.Done():
			return context.Cause(p.gctx)
		}
	}
	return nil
}

// Abort stops rendering; the next Close returns err.
func (p *Pipeline) Abort(err error) { p.cancel(err) }

// Close waits for queued frames, flushes them and closes the writer.
func (p *Pipeline) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.slots)

	// Писатель дочитывает слоты до Wait: после Wait gctx отменяется.
	writeErr := <-p.writerDone
	renderErr := p.g.Wait()
	closeErr := p.out.Close()
	p.cancel(nil)

	if renderErr != nil {
		return renderErr
	}
	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return closeErr
	}
	return nil
}

// PipelineStats are counters of a finished pipeline.
type PipelineStats struct {
	Rendered   int64
	Written    int64
	RenderTime time.Duration // summed over workers
	Allocated  int64         // frame buffers created
}

func (p *Pipeline) Stats() PipelineStats {
	return PipelineStats{
		Rendered:   p.rendered.Load(),
		Written:    p.written.Load(),
		RenderTime: time.Duration(p.renderNano.Load()),
		Allocated:  p.pool.Allocated(),
	}
}
