// Package terrapin is a turtle-graphics engine: a stateful cursor that
// accumulates drawing commands (moves, turns, pen strokes, fills, stamps,
// text) into a persistent, replayable scene, then renders that scene onto a
// raster surface with optional step animation.
//
// A Screen owns the scene list, the attached turtles and the redraw policy,
// and presents frames through a Display backend (the Linux framebuffer via
// the fbdev package, or an in-memory Offscreen for headless use). Each
// Turtle keeps a bounded undo stack of pen states so attribute changes and
// whole moves can be reversed.
//
// All scene and state mutation happens on a single goroutine; display
// backends run at most one extra goroutine that reads raw input and posts
// events into the screen's guarded inbox.
package terrapin
