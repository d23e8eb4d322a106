//go:build linux

package fbdev

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/terrapin-graphics/terrapin"
)

// Linux input-event-codes.h
const (
	evKey = 0x01
	evRel = 0x02

	relX = 0x00
	relY = 0x01

	btnLeft   = 0x110
	btnRight  = 0x111
	btnMiddle = 0x112
)

// keyNames maps evdev key codes to engine key names. Unlisted codes are
// ignored.
var keyNames = map[uint16]terrapin.Key{
	1: terrapin.KeyEscape, 28: terrapin.KeyEnter, 57: terrapin.KeySpace,
	103: terrapin.KeyUp, 108: terrapin.KeyDown, 105: terrapin.KeyLeft, 106: terrapin.KeyRight,
	2: "1", 3: "2", 4: "3", 5: "4", 6: "5", 7: "6", 8: "7", 9: "8", 10: "9", 11: "0",
	16: "q", 17: "w", 18: "e", 19: "r", 20: "t", 21: "y", 22: "u", 23: "i", 24: "o", 25: "p",
	30: "a", 31: "s", 32: "d", 33: "f", 34: "g", 35: "h", 36: "j", 37: "k", 38: "l",
	44: "z", 45: "x", 46: "c", 47: "v", 48: "b", 49: "n", 50: "m",
	59: "f1", 60: "f2", 61: "f3", 62: "f4", 63: "f5", 64: "f6",
	65: "f7", 66: "f8", 67: "f9", 68: "f10", 87: "f11", 88: "f12",
}

// pointerState tracks a relative pointer inside the logical canvas so
// click events carry a position. Guarded by mu because several device
// readers may feed it.
type pointerState struct {
	mu   sync.Mutex
	x, y int
	w, h int
}

func (p *pointerState) move(dx, dy int) {
	p.mu.Lock()
	p.x = clampInt(p.x+dx, 0, p.w-1)
	p.y = clampInt(p.y+dy, 0, p.h-1)
	p.mu.Unlock()
}

func (p *pointerState) position() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.x, p.y
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// readInput watches every evdev device and posts key and click events
// into the screen inbox until the context ends or the display closes.
// It never calls back into the engine directly.
func readInput(ctx context.Context, d *Display, sink func(terrapin.Event)) {
	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil || len(paths) == 0 {
		d.logger.Infof("fbdev", "no evdev devices found, input disabled")
		return
	}

	pointer := &pointerState{w: d.width, h: d.height, x: d.width / 2, y: d.height / 2}

	// input_event = timeval + u16 type + u16 code + s32 value.
	tvSize := binary.Size(unix.Timeval{})
	eventSize := tvSize + 2 + 2 + 4

	for _, path := range paths {
		p := path
		go func() {
			fd, err := unix.Open(p, unix.O_RDONLY|unix.O_NONBLOCK, 0)
			if err != nil {
				return
			}
			f := os.NewFile(uintptr(fd), p)
			defer func() {
				_ = f.Close()
			}()

			buf := make([]byte, 4096)
			for {
				select {
				case <-ctx.Done():
					return
				default:
				}
				if d.closed.Load() {
					return
				}

				pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
				if _, pollErr := unix.Poll(pollFds, 250); pollErr != nil {
					// Device might have gone away.
					return
				}
				if pollFds[0].Revents&unix.POLLIN == 0 {
					continue
				}

				n, readErr := unix.Read(fd, buf)
				if readErr != nil {
					if readErr == unix.EAGAIN || readErr == unix.EINTR {
						continue
					}
					return
				}

				for off := 0; off+eventSize <= n; off += eventSize {
					rec := buf[off : off+eventSize]
					typ := binary.LittleEndian.Uint16(rec[tvSize : tvSize+2])
					code := binary.LittleEndian.Uint16(rec[tvSize+2 : tvSize+4])
					value := int32(binary.LittleEndian.Uint32(rec[tvSize+4 : tvSize+8]))
					handleRecord(typ, code, value, pointer, sink)
				}
			}
		}()
	}
}

func handleRecord(typ, code uint16, value int32, pointer *pointerState, sink func(terrapin.Event)) {
	switch typ {
	case evRel:
		switch code {
		case relX:
			pointer.move(int(value), 0)
		case relY:
			pointer.move(0, int(value))
		}
	case evKey:
		if button, ok := mouseButton(code); ok {
			if value == 1 {
				x, y := pointer.position()
				sink(terrapin.Event{Kind: terrapin.EventClick, Button: button, X: x, Y: y})
			}
			return
		}
		name, ok := keyNames[code]
		if !ok {
			return
		}
		switch value {
		case 1:
			sink(terrapin.Event{Kind: terrapin.EventKeyPress, Key: name})
		case 0:
			sink(terrapin.Event{Kind: terrapin.EventKeyRelease, Key: name})
		}
	}
}

func mouseButton(code uint16) (terrapin.MouseButton, bool) {
	switch code {
	case btnLeft:
		return terrapin.MouseLeft, true
	case btnMiddle:
		return terrapin.MouseMiddle, true
	case btnRight:
		return terrapin.MouseRight, true
	}
	return 0, false
}
