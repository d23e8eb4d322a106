package terrapin

import (
	"context"
	"image"
	"image/color"
	"math"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

// countingDisplay counts presented frames.
type countingDisplay struct {
	*Offscreen
	presents atomic.Int32
}

func (d *countingDisplay) Present(frame *image.RGBA) error {
	d.presents.Add(1)
	return d.Offscreen.Present(frame)
}

// countingCanvas wraps a Canvas and counts primitive calls.
type countingCanvas struct {
	Canvas
	lines, polys, texts int
}

func (c *countingCanvas) DrawLine(x0, y0, x1, y1 float64, col color.Color, width int) {
	c.lines++
	c.Canvas.DrawLine(x0, y0, x1, y1, col, width)
}

func (c *countingCanvas) DrawPolygon(xs, ys []float64, fill, outline color.Color, outlineWidth int) {
	c.polys++
	c.Canvas.DrawPolygon(xs, ys, fill, outline, outlineWidth)
}

func (c *countingCanvas) DrawText(x, y float64, text string, col color.Color) {
	c.texts++
	c.Canvas.DrawText(x, y, text, col)
}

func TestIncrementalRedrawUsesWatermark(t *testing.T) {
	s, _ := newTestScreen(t)
	cc := &countingCanvas{Canvas: s.canvas}
	s.canvas = cc
	tu := newTestTurtle(s)

	tu.Forward(10) // one line, drawn by the command's own redraw
	drawn := cc.lines
	s.Redraw(false)
	if cc.lines != drawn {
		t.Errorf("incremental redraw redrew old objects: %d -> %d", drawn, cc.lines)
	}

	tu.Forward(10)
	tu.Forward(10)
	if got := cc.lines - drawn; got != 2 {
		t.Errorf("new lines drawn = %d, want 2", got)
	}

	s.Redraw(true)
	if got := cc.lines - drawn - 2; got != 3 {
		t.Errorf("full redraw drew %d lines, want all 3", cc.lines-drawn-2)
	}
}

func TestTracerSkipsPresentation(t *testing.T) {
	d := &countingDisplay{Offscreen: NewOffscreen(100, 100)}
	s, err := NewScreen(context.Background(), d, nil)
	if err != nil {
		t.Fatalf("NewScreen: %v", err)
	}
	d.presents.Store(0)
	s.Tracer(3, 0) // tracer itself issues one redraw call

	for i := 0; i < 9; i++ {
		s.Redraw(false)
	}
	// 10 calls at a skip count of 3 present at most 4 frames, and the
	// scene list is unaffected either way.
	if got := d.presents.Load(); got > 4 {
		t.Errorf("presents = %d, want <= 4 with tracer(3)", got)
	}

	s.Tracer(0, 0)
	before := d.presents.Load()
	s.Redraw(false)
	if got := d.presents.Load() - before; got != 1 {
		t.Errorf("tracer(0) should present every frame, got %d", got)
	}
}

func TestEventDispatchFIFO(t *testing.T) {
	s, _ := newTestScreen(t)

	var got []string
	s.OnKeyPress(func() { got = append(got, "a") }, "a")
	s.OnKeyPress(func() { got = append(got, "b") }, "b")
	s.OnKeyRelease(func() { got = append(got, "a-up") }, "a")

	done := make(chan struct{})
	go func() {
		s.PostEvent(Event{Kind: EventKeyPress, Key: "a"})
		s.PostEvent(Event{Kind: EventKeyPress, Key: "b"})
		s.PostEvent(Event{Kind: EventKeyRelease, Key: "a"})
		close(done)
	}()
	<-done
	s.Update(false, true)

	want := []string{"a", "b", "a-up"}
	if len(got) != len(want) {
		t.Fatalf("dispatched = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dispatched = %v, want %v", got, want)
		}
	}
}

func TestClickCoordinatesAreWorldSpace(t *testing.T) {
	s, _ := newTestScreen(t) // 200x200: raster center is (100, 100)

	var cx, cy float64
	clicked := false
	s.OnClick(func(x, y float64) { cx, cy = x, y; clicked = true }, MouseLeft)

	s.PostEvent(Event{Kind: EventClick, Button: MouseLeft, X: 110, Y: 90})
	s.Update(false, true)

	if !clicked {
		t.Fatal("click callback not invoked")
	}
	if math.Abs(cx-10) > eps || math.Abs(cy-10) > eps {
		t.Errorf("click at (%v, %v), want world (10, 10)", cx, cy)
	}
}

func TestTimerFires(t *testing.T) {
	s, _ := newTestScreen(t)

	fired := 0
	s.OnTimer(func() { fired++ }, time.Millisecond)
	time.Sleep(5 * time.Millisecond)
	s.Update(false, true)
	if fired != 1 {
		t.Errorf("timer fired %d times in one update, want 1", fired)
	}
	time.Sleep(5 * time.Millisecond)
	s.Update(false, true)
	if fired != 2 {
		t.Errorf("timer did not re-arm: fired = %d", fired)
	}
}

func TestClearScreenEmptiesSceneAndBindings(t *testing.T) {
	s, off := newTestScreen(t)
	tu := newTestTurtle(s)

	s.SetBackground(Blue)
	tu.Forward(40)
	tu.Stamp()
	s.OnKeyPress(func() { t.Error("binding survived clearscreen") }, "a")

	s.ClearScreen()

	if got := s.objectCount(); got != 0 {
		t.Errorf("scene count = %d, want 0", got)
	}
	if got := s.Background(); got != White {
		t.Errorf("background = %v, want default white", got)
	}
	s.PostEvent(Event{Kind: EventKeyPress, Key: "a"})
	s.Update(true, true)

	// The presented frame holds only background and cursor glyph: a
	// corner pixel must be the default background.
	frame := off.LastFrame()
	if frame == nil {
		t.Fatal("no frame presented")
	}
	if got := frame.RGBAAt(2, 2); got != White {
		t.Errorf("corner pixel = %v, want white", got)
	}
}

func TestResetScreenResetsAllTurtles(t *testing.T) {
	s, _ := newTestScreen(t)
	t1 := newTestTurtle(s)
	t2 := newTestTurtle(s)

	t1.Forward(30)
	t2.SetPenColor(Red)
	s.ResetScreen()

	if n := t1.UndoBufferEntries() + t2.UndoBufferEntries(); n != 2 {
		t.Errorf("stack entries after resetscreen = %d, want 2", n)
	}
	if got := t2.PenColor(); got != Black {
		t.Errorf("t2 pen color = %v, want black", got)
	}
	if got := s.objectCount(); got != 0 {
		t.Errorf("scene count = %d, want 0", got)
	}
}

func TestRemoveObjectsAdjustsWatermarks(t *testing.T) {
	s, _ := newTestScreen(t)
	t1 := newTestTurtle(s)
	t2 := newTestTurtle(s)

	t1.Stamp()     // index 0
	t1.Stamp()     // index 1
	t2.Forward(25) // index 2; t2's motion state was pushed at watermark 2
	t1.ClearStamps(-1)

	// t2's undo must still remove exactly its own trace line.
	if !t2.Undo() {
		t.Fatal("t2 undo failed")
	}
	for i := range s.objects {
		if s.objects[i].Kind == KindLine {
			t.Error("trace line survived undo after mid-list removal")
		}
	}
}

func TestSaveWritesPNG(t *testing.T) {
	s, _ := newTestScreen(t)
	tu := newTestTurtle(s)
	tu.Forward(25)

	path := t.TempDir() + "/frame.png"
	if err := s.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if fi.Size() == 0 {
		t.Error("saved file is empty")
	}
}
