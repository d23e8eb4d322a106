//go:build linux

// Package vt switches the Linux console in and out of graphics mode so a
// framebuffer display is not disturbed by the text cursor.
package vt

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// KD console modes from linux/kd.h
const (
	kdText     = 0x00
	kdGraphics = 0x01
	kdSetMode  = 0x4B3A // KDSETMODE ioctl
)

// SetGraphicsMode switches the active console to KD_GRAPHICS, suppressing
// the hardware cursor. Tries /dev/tty first, then /dev/tty0.
func SetGraphicsMode() error { return setMode(kdGraphics, "KD_GRAPHICS") }

// RestoreTextMode switches the console back to KD_TEXT.
func RestoreTextMode() error { return setMode(kdText, "KD_TEXT") }

func setMode(mode int, name string) error {
	paths := []string{"/dev/tty", "/dev/tty0"}
	var lastErr error
	for _, p := range paths {
		fd, err := unix.Open(p, unix.O_RDONLY, 0)
		if err != nil {
			lastErr = fmt.Errorf("open %s: %w", p, err)
			continue
		}
		err = unix.IoctlSetInt(fd, kdSetMode, mode)
		unix.Close(fd)
		if err != nil {
			lastErr = fmt.Errorf("%s on %s: %w", name, p, err)
			continue
		}
		return nil
	}
	if lastErr != nil {
		return lastErr
	}
	return fmt.Errorf("%s failed: unknown error", name)
}

// HideCursor writes the ANSI escape to hide the cursor on the active VT.
func HideCursor() error { return writeVT("\x1b[?25l") }

// ShowCursor makes the cursor visible again.
func ShowCursor() error { return writeVT("\x1b[?25h") }

func writeVT(s string) error {
	paths := []string{"/dev/tty", "/dev/tty0"}
	var lastErr error
	for _, p := range paths {
		f, err := os.OpenFile(p, os.O_WRONLY, 0)
		if err != nil {
			lastErr = err
			continue
		}
		_, err = f.WriteString(s)
		f.Close()
		if err == nil {
			return nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return fmt.Errorf("write VT failed: %v", lastErr)
	}
	return fmt.Errorf("write VT failed: unknown error")
}
