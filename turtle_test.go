package terrapin

import (
	"context"
	"math"
	"reflect"
	"testing"
	"time"
)

func newTestScreen(t *testing.T) (*Screen, *Offscreen) {
	t.Helper()
	off := NewOffscreen(200, 200)
	s, err := NewScreen(context.Background(), off, nil)
	if err != nil {
		t.Fatalf("NewScreen: %v", err)
	}
	return s, off
}

func newTestTurtle(s *Screen) *Turtle {
	tu := NewTurtle(s)
	// Keep unit tests snappy; animated paths get their own test.
	tu.top().MoveSpeed = SpeedFastest
	return tu
}

func TestAttributeUndoRestoresStateAndScene(t *testing.T) {
	s, _ := newTestScreen(t)
	tu := newTestTurtle(s)

	before := *tu.top()
	objectsBefore := s.objectCount()

	muts := []func(){
		func() { tu.SetPenColor(Red) },
		func() { tu.SetFillColor(Blue) },
		func() { tu.SetWidth(5) },
		func() { tu.PenUp() },
		func() { tu.Radians() },
		func() { tu.HideTurtle() },
		func() { tu.Tilt(1) },
	}
	for _, m := range muts {
		m()
	}
	for range muts {
		if !tu.Undo() {
			t.Fatal("Undo returned false before reaching the base state")
		}
	}
	if got := *tu.top(); !reflect.DeepEqual(got, before) {
		t.Errorf("pen state after undo = %+v, want %+v", got, before)
	}
	if got := s.objectCount(); got != objectsBefore {
		t.Errorf("scene count after undo = %d, want %d", got, objectsBefore)
	}
}

func TestMotionUndoRemovesTraceLines(t *testing.T) {
	s, _ := newTestScreen(t)
	tu := newTestTurtle(s)

	tu.Forward(50)
	tu.Right(90)
	tu.Forward(30)
	if got := s.objectCount(); got != 2 {
		t.Fatalf("scene count after two moves and a turn = %d, want 2", got)
	}

	for i := 0; i < 3; i++ {
		if !tu.Undo() {
			t.Fatalf("Undo %d returned false", i)
		}
	}
	if got := s.objectCount(); got != 0 {
		t.Errorf("scene count after undoing all motion = %d, want 0", got)
	}
	if x, y := tu.Position(); x != 0 || y != 0 {
		t.Errorf("position after undo = (%v, %v), want origin", x, y)
	}
	if h := tu.Heading(); math.Abs(h) > eps {
		t.Errorf("heading after undo = %v, want 0", h)
	}
}

func TestUndoBaseStateSurvives(t *testing.T) {
	s, _ := newTestScreen(t)
	tu := newTestTurtle(s)

	if tu.Undo() {
		t.Error("Undo on a fresh turtle should return false")
	}
	if got := tu.UndoBufferEntries(); got != 1 {
		t.Errorf("entries = %d, want 1", got)
	}
}

func TestSetUndoBufferEvictsOldest(t *testing.T) {
	s, _ := newTestScreen(t)
	tu := newTestTurtle(s)

	tu.SetUndoBuffer(3)
	for i := 1; i <= 10; i++ {
		tu.SetWidth(i)
	}
	if got := tu.UndoBufferEntries(); got != 3 {
		t.Fatalf("entries = %d, want 3", got)
	}
	// Two undos succeed, then only the oldest retained state is left and
	// everything older is unrecoverable.
	if !tu.Undo() || !tu.Undo() {
		t.Fatal("expected two successful undos")
	}
	if tu.Undo() {
		t.Error("undo beyond the buffer should fail")
	}
	if got := tu.Width(); got != 8 {
		t.Errorf("width at buffer horizon = %d, want 8", got)
	}
}

func TestSetUndoBufferClampsToOne(t *testing.T) {
	s, _ := newTestScreen(t)
	tu := newTestTurtle(s)

	tu.SetWidth(7)
	tu.SetUndoBuffer(-5)
	if got := tu.UndoBufferEntries(); got != 1 {
		t.Errorf("entries = %d, want 1", got)
	}
	if tu.Undo() {
		t.Error("sole remaining state must not be undoable")
	}
}

func TestFillWithoutPointsCommitsNothing(t *testing.T) {
	s, _ := newTestScreen(t)
	tu := newTestTurtle(s)

	tu.BeginFill()
	tu.EndFill()
	if got := s.objectCount(); got != 0 {
		t.Errorf("scene count = %d, want 0", got)
	}
}

func TestFillIsIdempotentWhileActive(t *testing.T) {
	s, _ := newTestScreen(t)
	tu := newTestTurtle(s)

	tu.BeginFill()
	entries := tu.UndoBufferEntries()
	tu.BeginFill()
	if got := tu.UndoBufferEntries(); got != entries {
		t.Errorf("repeated BeginFill pushed a state: %d -> %d", entries, got)
	}
	tu.EndFill()
	tu.EndFill()
}

func TestFillCommitsPolygonWithCommitTimeColor(t *testing.T) {
	s, _ := newTestScreen(t)
	tu := newTestTurtle(s)

	tu.BeginFill()
	tu.GoTo(60, 0)
	tu.GoTo(0, 60)
	tu.SetFillColor(Blue)
	tu.EndFill()

	var polys []*SceneObject
	for i := range s.objects {
		if s.objects[i].Kind == KindPolygon {
			polys = append(polys, &s.objects[i])
		}
	}
	if len(polys) != 1 {
		t.Fatalf("polygon count = %d, want 1", len(polys))
	}
	p := polys[0]
	if p.Fill != Blue {
		t.Errorf("fill color = %v, want the color active at commit", p.Fill)
	}
	want := []Point{{0, 0}, {60, 0}, {0, 60}}
	if !reflect.DeepEqual(p.Geom.Points, want) {
		t.Errorf("polygon points = %v, want %v", p.Geom.Points, want)
	}
}

func TestUndoRemovesCommittedFill(t *testing.T) {
	s, _ := newTestScreen(t)
	tu := newTestTurtle(s)
	tu.PenUp()

	count := s.objectCount()
	tu.BeginFill()
	tu.GoTo(60, 0)
	tu.GoTo(0, 60)
	tu.EndFill()
	if got := s.objectCount(); got != count+1 {
		t.Fatalf("scene count after fill = %d, want %d", got, count+1)
	}
	if !tu.Undo() {
		t.Fatal("undo of EndFill failed")
	}
	if got := s.objectCount(); got != count {
		t.Errorf("scene count after undoing EndFill = %d, want %d", got, count)
	}
}

func TestStampIDsIncrease(t *testing.T) {
	s, _ := newTestScreen(t)
	tu := newTestTurtle(s)

	a, b, c := tu.Stamp(), tu.Stamp(), tu.Stamp()
	if !(a < b && b < c) {
		t.Errorf("stamp ids not increasing: %d %d %d", a, b, c)
	}
}

func TestClearStampsScopedToOwner(t *testing.T) {
	s, _ := newTestScreen(t)
	t1 := newTestTurtle(s)
	t2 := newTestTurtle(s)

	t1.Forward(20) // non-stamp object owned by t1
	t1.Stamp()
	t1.Stamp()
	t2.Stamp()

	t1.ClearStamps(-1)

	stamps := map[*Turtle]int{}
	lines := 0
	for i := range s.objects {
		o := &s.objects[i]
		if o.Kind == KindStamp {
			stamps[o.owner]++
		} else {
			lines++
		}
	}
	if stamps[t1] != 0 {
		t.Errorf("t1 stamps remaining = %d, want 0", stamps[t1])
	}
	if stamps[t2] != 1 {
		t.Errorf("t2 stamps remaining = %d, want 1", stamps[t2])
	}
	if lines != 1 {
		t.Errorf("non-stamp objects remaining = %d, want 1", lines)
	}
}

func TestClearStampMaxID(t *testing.T) {
	s, _ := newTestScreen(t)
	tu := newTestTurtle(s)

	id1 := tu.Stamp()
	id2 := tu.Stamp()
	id3 := tu.Stamp()

	tu.ClearStamps(id2)
	remaining := map[int]bool{}
	for i := range s.objects {
		if s.objects[i].Kind == KindStamp {
			remaining[s.objects[i].StampID] = true
		}
	}
	if remaining[id1] || remaining[id2] || !remaining[id3] {
		t.Errorf("remaining stamps = %v, want only id %d", remaining, id3)
	}

	tu.ClearStamp(99) // unknown id is a no-op
	tu.ClearStamp(id3)
	for i := range s.objects {
		if s.objects[i].Kind == KindStamp {
			t.Error("stamp survived ClearStamp")
		}
	}
}

func TestGoToRoundTripExact(t *testing.T) {
	for _, speed := range []float64{SpeedFastest, SpeedFast} {
		s, _ := newTestScreen(t)
		s.SetDelay(time.Millisecond)
		tu := newTestTurtle(s)
		tu.top().MoveSpeed = speed

		tu.GoTo(37.5, -12.25)
		x, y := tu.Position()
		if x != 37.5 || y != -12.25 {
			t.Errorf("speed %v: position = (%v, %v), want exact destination", speed, x, y)
		}
		if h := tu.Heading(); math.Abs(h) > eps {
			t.Errorf("speed %v: heading changed to %v", speed, h)
		}
	}
}

func TestModeHeadingConventions(t *testing.T) {
	// Standard: zero east, counterclockwise positive. A right turn of 90
	// lands on 270.
	s1, _ := newTestScreen(t)
	tu1 := newTestTurtle(s1)
	tu1.Right(90)
	if h := tu1.Heading(); math.Abs(h-270) > eps {
		t.Errorf("standard heading after right(90) = %v, want 270", h)
	}

	// Logo: zero north, clockwise positive. The same turn lands on 90.
	s2, _ := newTestScreen(t)
	s2.SetMode(ModeLogo)
	tu2 := newTestTurtle(s2)
	tu2.Right(90)
	if h := tu2.Heading(); math.Abs(h-90) > eps {
		t.Errorf("logo heading after right(90) = %v, want 90", h)
	}

	// In logo mode a homed turtle faces north: forward moves up.
	tu2.Undo()
	tu2.Forward(10)
	if x, y := tu2.Position(); math.Abs(x) > eps || math.Abs(y-10) > eps {
		t.Errorf("logo forward from home = (%v, %v), want (0, 10)", x, y)
	}
}

func TestSetHeadingAndAngleUnits(t *testing.T) {
	s, _ := newTestScreen(t)
	tu := newTestTurtle(s)

	tu.SetHeading(90)
	if h := tu.Heading(); math.Abs(h-90) > eps {
		t.Errorf("heading = %v, want 90", h)
	}
	tu.Radians()
	if h := tu.Heading(); math.Abs(h-math.Pi/2) > eps {
		t.Errorf("heading in radians = %v, want pi/2", h)
	}
	tu.SetHeading(math.Pi)
	tu.Degrees()
	if h := tu.Heading(); math.Abs(h-180) > eps {
		t.Errorf("heading = %v, want 180", h)
	}
}

func TestBackwardKeepsHeading(t *testing.T) {
	s, _ := newTestScreen(t)
	tu := newTestTurtle(s)

	tu.Backward(40)
	if x, y := tu.Position(); math.Abs(x+40) > eps || math.Abs(y) > eps {
		t.Errorf("position = (%v, %v), want (-40, 0)", x, y)
	}
	if h := tu.Heading(); math.Abs(h) > eps {
		t.Errorf("heading = %v, want 0", h)
	}
}

func TestPenUpSuppressesTraces(t *testing.T) {
	s, _ := newTestScreen(t)
	tu := newTestTurtle(s)

	tu.PenUp()
	tu.Forward(30)
	for i := range s.objects {
		if s.objects[i].Kind == KindLine {
			t.Fatal("pen-up movement left a trace line")
		}
	}
	tu.PenDown()
	tu.Forward(30)
	lines := 0
	for i := range s.objects {
		if s.objects[i].Kind == KindLine {
			lines++
		}
	}
	if lines != 1 {
		t.Errorf("trace lines = %d, want 1", lines)
	}
}

func TestWriteAndCircleAppendObjects(t *testing.T) {
	s, _ := newTestScreen(t)
	tu := newTestTurtle(s)

	tu.SetFillColor(Green)
	tu.Write("hi")
	tu.Circle(30, 15, Red)
	tu.Dot(Blue, 10)

	var kinds []ObjectKind
	for i := range s.objects {
		kinds = append(kinds, s.objects[i].Kind)
	}
	want := []ObjectKind{KindText, KindPolygon, KindPolygon}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("scene kinds = %v, want %v", kinds, want)
	}
	if s.objects[0].Fill != Green {
		t.Errorf("text color = %v, want fill color", s.objects[0].Fill)
	}
	tu.Undo()
	if len(s.objects) != 2 {
		t.Errorf("undo did not remove the dot")
	}
}

func TestResetCollapsesStack(t *testing.T) {
	s, _ := newTestScreen(t)
	tu := newTestTurtle(s)

	tu.SetPenColor(Red)
	tu.Forward(50)
	tu.Stamp()
	tu.Reset()

	if got := tu.UndoBufferEntries(); got != 1 {
		t.Errorf("entries after reset = %d, want 1", got)
	}
	if x, y := tu.Position(); x != 0 || y != 0 {
		t.Errorf("position after reset = (%v, %v)", x, y)
	}
	if got := tu.PenColor(); got != Black {
		t.Errorf("pen color after reset = %v, want black", got)
	}
	if got := s.objectCount(); got != 0 {
		t.Errorf("scene count after reset = %d, want 0", got)
	}
}

func TestCommandsAfterByeAreNoOps(t *testing.T) {
	s, _ := newTestScreen(t)
	tu := newTestTurtle(s)

	tu.Forward(10)
	count := s.objectCount()
	s.Bye()

	tu.Forward(10)
	tu.Stamp()
	tu.SetPenColor(Red)
	if got := s.objectCount(); got != count {
		t.Errorf("scene count changed after close: %d -> %d", count, got)
	}
	if tu.Undo() {
		t.Error("Undo should fail after close")
	}
	if got := tu.PenColor(); got != Black {
		t.Errorf("pen color mutated after close: %v", got)
	}
}
