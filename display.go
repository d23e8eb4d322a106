package terrapin

import (
	"context"
	"image"
	"image/color"
	"sync/atomic"
)

// Canvas is the raster surface the screen draws into. Implementations are
// not safe for concurrent use; the screen calls them from a single
// goroutine. Coordinates are raster pixels with the origin at the top
// left.
type Canvas interface {
	Size() (width, height int)
	Clear(c color.Color)
	// DrawBackground scales the image over the whole surface.
	DrawBackground(img image.Image)
	DrawLine(x0, y0, x1, y1 float64, c color.Color, width int)
	// DrawPolygon fills the polygon with fill and, when outlineWidth > 0,
	// strokes its edges with outline.
	DrawPolygon(xs, ys []float64, fill, outline color.Color, outlineWidth int)
	DrawText(x, y float64, text string, c color.Color)
	Image() *image.RGBA
}

// Display presents finished frames and produces raw input events. Start
// may spawn at most one producer goroutine, which must only call sink;
// it must never mutate engine state itself.
type Display interface {
	Start(ctx context.Context, sink func(Event)) error
	Present(frame *image.RGBA) error
	Size() (width, height int)
	Close() error
	Closed() bool
}

// Offscreen is a headless Display for tests and batch rendering: frames
// are retained in memory and no input is produced.
type Offscreen struct {
	width, height int
	closed        atomic.Bool
	last          *image.RGBA
}

// NewOffscreen returns a headless display with the given logical size.
func NewOffscreen(width, height int) *Offscreen {
	return &Offscreen{width: width, height: height}
}

func (o *Offscreen) Start(ctx context.Context, sink func(Event)) error { return nil }

func (o *Offscreen) Present(frame *image.RGBA) error {
	if o.closed.Load() {
		return nil
	}
	o.last = frame
	return nil
}

func (o *Offscreen) Size() (int, int) { return o.width, o.height }

func (o *Offscreen) Close() error {
	o.closed.Store(true)
	return nil
}

func (o *Offscreen) Closed() bool { return o.closed.Load() }

// LastFrame returns the most recently presented frame, or nil.
func (o *Offscreen) LastFrame() *image.RGBA { return o.last }
