//go:build !linux

package vt

// Console mode handling only exists on Linux; everything here is a no-op
// so non-Linux builds keep working.

func SetGraphicsMode() error { return nil }
func RestoreTextMode() error { return nil }
func HideCursor() error      { return nil }
func ShowCursor() error      { return nil }
