package system

import (
	"image"
	"sync"
	"sync/atomic"
)

// FramePool переиспользует кадры одного размера,
// чтобы рендер 60 кадров в секунду не нагружал Garbage Collector (GC).
type FramePool struct {
	rect      image.Rectangle
	pool      sync.Pool
	allocated atomic.Int64
}

// NewFramePool создает пул кадров размера rect.
func NewFramePool(rect image.Rectangle) *FramePool {
	p := &FramePool{rect: rect}
	p.pool.New = func() any {
		p.allocated.Add(1)
		return image.NewRGBA(rect)
	}
	return p
}

// Get возвращает кадр из пула или создает новый. Содержимое кадра не очищается.
func (p *FramePool) Get() *image.RGBA {
	return p.pool.Get().(*image.RGBA)
}

// Put возвращает кадр в пул. Кадры другого размера отбрасываются.
func (p *FramePool) Put(img *image.RGBA) {
	if img == nil || img.Rect != p.rect {
		return
	}
	p.pool.Put(img)
}

// Allocated - сколько кадров было создано за время работы.
func (p *FramePool) Allocated() int64 { return p.allocated.Load() }
