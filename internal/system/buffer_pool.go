package system

import (
	"image"
	"sync"
)

// ImagePool переиспользует кадры *image.RGBA одного размера, чтобы рендер
// 60 кадров в секунду не нагружал GC.
type ImagePool struct {
	mu    sync.RWMutex
	pools map[image.Point]*sync.Pool
}

var framePool = NewImagePool()

// NewImagePool создает пустой пул.
func NewImagePool() *ImagePool {
	return &ImagePool{pools: make(map[image.Point]*sync.Pool)}
}

// GetImage берет из общего пула кадр с границами rect.
func GetImage(rect image.Rectangle) *image.RGBA {
	return framePool.Get(rect)
}

// PutImage возвращает кадр в общий пул.
func PutImage(img *image.RGBA) {
	framePool.Put(img)
}

// Get returns a frame covering rect. Reused frames keep their old pixels;
// renderers clear before drawing.
func (p *ImagePool) Get(rect image.Rectangle) *image.RGBA {
	size := rect.Size()
	p.mu.RLock()
	pool, ok := p.pools[size]
	p.mu.RUnlock()

	if !ok {
		p.mu.Lock()
		if pool, ok = p.pools[size]; !ok {
			pool = &sync.Pool{
				New: func() any {
					return image.NewRGBA(image.Rectangle{Max: size})
				},
			}
			p.pools[size] = pool
		}
		p.mu.Unlock()
	}

	img := pool.Get().(*image.RGBA)
	img.Rect = rect
	return img
}

// Put hands img back. Frames of a size never requested are dropped.
func (p *ImagePool) Put(img *image.RGBA) {
	if img == nil || img.Stride != img.Rect.Dx()*4 {
		return
	}
	p.mu.RLock()
	pool, ok := p.pools[img.Rect.Size()]
	p.mu.RUnlock()
	if ok {
		pool.Put(img)
	}
}
