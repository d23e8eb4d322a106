//go:build linux

// Package fbdev presents frames on the Linux framebuffer and reads
// keyboard and mouse input from evdev devices.
package fbdev

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync/atomic"

	fb "github.com/gonutz/framebuffer"

	"github.com/terrapin-graphics/terrapin"
	"github.com/terrapin-graphics/terrapin/internal/vt"
)

// Display renders a logical canvas onto /dev/fbN, scaling as needed, and
// feeds raw evdev input into the screen's inbox.
type Display struct {
	dev    *fb.Device
	width  int // logical canvas size
	height int
	logger terrapin.Logger
	closed atomic.Bool
}

// Open opens the framebuffer device and switches the console to graphics
// mode. The logical size is what the engine draws at; the frame is scaled
// to the framebuffer resolution on present.
func Open(device string, width, height int, logger terrapin.Logger) (*Display, error) {
	if logger == nil {
		logger = terrapin.NoopLogger{}
	}
	dev, err := fb.Open(device)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", device, err)
	}
	b := dev.Bounds()
	logger.Infof("fbdev", "framebuffer open, bounds=%dx%d", b.Dx(), b.Dy())
	if err := vt.SetGraphicsMode(); err != nil {
		logger.Errorf("fbdev", "set graphics mode failed: %v", err)
	}
	if err := vt.HideCursor(); err != nil {
		logger.Errorf("fbdev", "hide cursor failed: %v", err)
	}
	return &Display{dev: dev, width: width, height: height, logger: logger}, nil
}

// Start launches the evdev input producer. The producer only posts events
// through sink; all callbacks run on the consumer side.
func (d *Display) Start(ctx context.Context, sink func(terrapin.Event)) error {
	go readInput(ctx, d, sink)
	return nil
}

// Size returns the logical canvas size.
func (d *Display) Size() (int, int) { return d.width, d.height }

// Present blits the frame to the framebuffer with nearest-neighbor
// scaling.
func (d *Display) Present(frame *image.RGBA) error {
	if d.closed.Load() {
		return nil
	}
	bounds := d.dev.Bounds()
	fbW := bounds.Dx()
	fbH := bounds.Dy()
	srcB := frame.Bounds()
	for y := 0; y < fbH; y++ {
		sy := srcB.Min.Y + (y*srcB.Dy())/fbH
		for x := 0; x < fbW; x++ {
			sx := srcB.Min.X + (x*srcB.Dx())/fbW
			px := frame.RGBAAt(sx, sy)
			d.dev.Set(bounds.Min.X+x, bounds.Min.Y+y, color.RGBA{R: px.R, G: px.G, B: px.B, A: 0xFF})
		}
	}
	return nil
}

// Close restores the console and releases the framebuffer.
func (d *Display) Close() error {
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}
	if err := vt.ShowCursor(); err != nil {
		d.logger.Errorf("fbdev", "show cursor failed: %v", err)
	}
	if err := vt.RestoreTextMode(); err != nil {
		d.logger.Errorf("fbdev", "restore text mode failed: %v", err)
	}
	d.dev.Close()
	d.logger.Infof("fbdev", "framebuffer closed")
	return nil
}

// Closed reports whether Close has been called.
func (d *Display) Closed() bool { return d.closed.Load() }
