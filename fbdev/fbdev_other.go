//go:build !linux

// Package fbdev presents frames on the Linux framebuffer; on other
// platforms opening the display fails and callers should fall back to an
// offscreen screen.
package fbdev

import (
	"fmt"

	"github.com/terrapin-graphics/terrapin"
)

// Open is unavailable off Linux.
func Open(device string, width, height int, logger terrapin.Logger) (*Display, error) {
	return nil, fmt.Errorf("framebuffer display requires linux")
}

// Display is a placeholder so the package API is stable across platforms.
type Display struct{}
