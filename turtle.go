package terrapin

import (
	"image/color"
	"math"
	"time"
)

// Turtle is a cursor that walks a Screen and records what it draws. Every
// command appends to the screen's scene list through the turtle's undo
// stack, so attribute changes and whole moves can be reversed with Undo.
//
// A turtle must only be driven from the goroutine that updates its screen.
type Turtle struct {
	screen  *Screen
	stack   []PenState // bottom..top; never empty
	undoCap int

	// fillAccum collects world-space vertices while filling. It is not
	// versioned by the undo stack.
	fillAccum []Point
}

// NewTurtle creates a turtle at home on the given screen.
func NewTurtle(s *Screen) *Turtle {
	t := &Turtle{screen: s, undoCap: DefaultUndoBuffer}
	st := defaultPenState()
	st.Transform.Rotation = s.homeRotation()
	st.ObjectsBefore = s.objectCount()
	t.stack = []PenState{st}
	s.attach(t)
	return t
}

// top returns the current pen state. The pointer is only valid until the
// next push or pop.
func (t *Turtle) top() *PenState {
	return &t.stack[len(t.stack)-1]
}

// pushState clones the current top, records the screen's object count as
// the new state's undo watermark, and pushes it. The stack evicts from
// the bottom when it outgrows the undo buffer.
func (t *Turtle) pushState() {
	st := *t.top()
	st.ObjectsBefore = t.screen.objectCount()
	t.stack = append(t.stack, st)
	for len(t.stack) > t.undoCap && len(t.stack) > 1 {
		copy(t.stack, t.stack[1:])
		t.stack = t.stack[:len(t.stack)-1]
	}
}

func (t *Turtle) closed() bool { return t.screen.IsClosed() }

// Undo reverses the most recent undoable change: it discards the top pen
// state, removes every scene object added since that state was pushed,
// and restores the turtle to the state below. It returns false when only
// the base state remains.
func (t *Turtle) Undo() bool {
	if t.closed() {
		return false
	}
	if len(t.stack) <= 1 {
		return false
	}
	discarded := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	t.screen.truncateScene(discarded.ObjectsBefore)
	t.travelBack(discarded.Transform)
	t.screen.Redraw(true)
	return true
}

// SetUndoBuffer sets the undo stack capacity, clamping to a minimum of 1,
// and evicts the oldest states if the stack already exceeds it.
func (t *Turtle) SetUndoBuffer(n int) {
	if n < 1 {
		n = 1
	}
	t.undoCap = n
	for len(t.stack) > n {
		copy(t.stack, t.stack[1:])
		t.stack = t.stack[:len(t.stack)-1]
	}
}

// UndoBufferEntries returns the number of states on the undo stack.
func (t *Turtle) UndoBufferEntries() int { return len(t.stack) }

// Position returns the turtle's world position.
func (t *Turtle) Position() (x, y float64) {
	p := t.top().Transform.Position()
	return p.X, p.Y
}

// Heading returns the current facing direction in the active angle unit,
// normalized to one full turn, using the screen's mode convention.
func (t *Turtle) Heading() float64 {
	h := t.screen.headingFromRotation(t.top().Transform.Rotation)
	h = math.Mod(h, 2*math.Pi)
	if h < 0 {
		h += 2 * math.Pi
	}
	return t.fromRadians(h)
}

// SetHeading turns the turtle to the given heading in the active angle
// unit, interpreted through the screen's mode convention.
func (t *Turtle) SetHeading(angle float64) {
	if t.closed() {
		return
	}
	dest := t.top().Transform
	dest.Rotation = t.screen.headingFromRotation(t.toRadians(angle))
	t.travelTo(dest)
}

// Forward moves the turtle ahead along its heading.
func (t *Turtle) Forward(pixels float64) {
	if t.closed() {
		return
	}
	t.travelTo(t.top().Transform.Forward(pixels))
}

// Backward moves the turtle away from its heading without turning.
func (t *Turtle) Backward(pixels float64) {
	if t.closed() {
		return
	}
	t.travelTo(t.top().Transform.Forward(-pixels))
}

// Right turns the turtle clockwise by the given amount in the active
// angle unit.
func (t *Turtle) Right(amt float64) {
	if t.closed() {
		return
	}
	dest := t.top().Transform
	dest.Rotation -= t.toRadians(amt)
	t.travelTo(dest)
}

// Left turns the turtle counterclockwise by the given amount in the
// active angle unit.
func (t *Turtle) Left(amt float64) {
	if t.closed() {
		return
	}
	dest := t.top().Transform
	dest.Rotation += t.toRadians(amt)
	t.travelTo(dest)
}

// GoTo moves the turtle to an absolute world position, drawing on the way
// if the pen is down.
func (t *Turtle) GoTo(x, y float64) {
	if t.closed() {
		return
	}
	dest := t.top().Transform
	dest.X, dest.Y = x, y
	t.travelTo(dest)
}

// SetX moves the turtle horizontally to the given world X.
func (t *Turtle) SetX(x float64) {
	_, y := t.Position()
	t.GoTo(x, y)
}

// SetY moves the turtle vertically to the given world Y.
func (t *Turtle) SetY(y float64) {
	x, _ := t.Position()
	t.GoTo(x, y)
}

// Home returns the turtle to the origin, facing the screen mode's zero
// heading.
func (t *Turtle) Home() {
	if t.closed() {
		return
	}
	dest := IdentityTransform()
	dest.Rotation = t.screen.homeRotation()
	t.travelTo(dest)
}

// animationMS is the duration of one animated move, derived from the
// speed setting. Zero disables animation.
func (t *Turtle) animationMS() time.Duration {
	speed := t.top().MoveSpeed
	if speed <= 0 {
		return 0
	}
	return time.Duration((11.0-speed)/10.0*300.0) * time.Millisecond
}

// travelTo is the motion primitive. It pushes exactly one pen state (the
// whole move undoes as a single unit), then either snaps to dest or walks
// there in interpolation steps paced by the screen delay, appending a
// trace segment per step while the pen is down and feeding the fill
// accumulator while filling.
func (t *Turtle) travelTo(dest Transform) {
	t.pushState()
	s := t.top()
	start := s.Transform
	prev := start.Position()

	total := t.animationMS()
	if total > 0 {
		interval := t.screen.frameInterval()
		steps := int(total / interval)
		for i := 1; i < steps; i++ {
			f := float64(i) / float64(steps)
			s.Transform = LerpTransform(start, dest, f)
			cur := s.Transform.Position()
			t.recordMotion(prev, cur)
			prev = cur
			t.screen.Redraw(false)
			time.Sleep(interval)
		}
	}
	s.Transform = dest
	t.recordMotion(prev, dest.Position())
	t.screen.Redraw(false)
}

// travelBack animates the cursor from a discarded transform back to the
// restored one. It never touches the state stack; position and heading
// are already final.
func (t *Turtle) travelBack(from Transform) {
	total := t.animationMS()
	if total <= 0 {
		return
	}
	s := t.top()
	to := s.Transform
	interval := t.screen.frameInterval()
	steps := int(total / interval)
	for i := 1; i < steps; i++ {
		s.Transform = LerpTransform(from, to, float64(i)/float64(steps))
		t.screen.Redraw(false)
		time.Sleep(interval)
	}
	s.Transform = to
}

// recordMotion logs one motion step: a fill vertex while filling, and a
// trace line while the pen is down. The fill polygon stays invisible
// until EndFill commits it; traces draw regardless.
func (t *Turtle) recordMotion(a, b Point) {
	s := t.top()
	if s.Filling {
		t.fillAccum = append(t.fillAccum, b)
	}
	if s.Tracing && a != b {
		t.screen.appendObject(lineObject(t, a, b, s.PenColor, s.PenWidth))
	}
}

// BeginFill starts collecting the outline of a fill polygon at the
// current position. Calling it while already filling is a no-op.
func (t *Turtle) BeginFill() { t.setFilling(true) }

// EndFill commits the collected polygon with the current fill color, if
// at least three distinct points were collected. Calling it while not
// filling is a no-op.
func (t *Turtle) EndFill() { t.setFilling(false) }

func (t *Turtle) setFilling(on bool) {
	if t.closed() {
		return
	}
	if t.top().Filling == on {
		return
	}
	t.pushState()
	s := t.top()
	s.Filling = on
	if on {
		t.fillAccum = t.fillAccum[:0]
		t.fillAccum = append(t.fillAccum, s.Transform.Position())
		return
	}
	if countDistinct(t.fillAccum) >= 3 {
		t.screen.appendObject(SceneObject{
			Kind:      KindPolygon,
			Geom:      Polygon{Points: t.fillAccum}.clone(),
			Fill:      s.FillColor,
			Transform: IdentityTransform(),
			StampID:   -1,
			owner:     t,
		})
	}
	t.fillAccum = nil
	t.screen.Redraw(false)
}

func countDistinct(pts []Point) int {
	n := 0
	for i, p := range pts {
		dup := false
		for _, q := range pts[:i] {
			if p == q {
				dup = true
				break
			}
		}
		if !dup {
			n++
		}
	}
	return n
}

// Filling reports whether a fill is being collected.
func (t *Turtle) Filling() bool { return t.top().Filling }

// Stamp imprints the turtle's current shape on the scene and returns its
// stamp id. Ids increase per turtle; the shape geometry stays owned by
// the registry.
func (t *Turtle) Stamp() int {
	if t.closed() {
		return -1
	}
	t.pushState()
	s := t.top()
	s.StampCount++
	id := s.StampCount
	t.screen.appendObject(SceneObject{
		Kind:         KindStamp,
		Shape:        s.CursorShape,
		Fill:         s.FillColor,
		Outline:      s.PenColor,
		OutlineWidth: 1,
		Transform:    t.cursorTransform(),
		StampID:      id,
		owner:        t,
	})
	t.screen.Redraw(false)
	return id
}

// ClearStamp removes the stamp with the given id, if this turtle placed
// it. Unknown ids are ignored. Stamp removal is not undoable.
func (t *Turtle) ClearStamp(id int) {
	if t.closed() {
		return
	}
	n := t.screen.removeObjects(func(o *SceneObject) bool {
		return o.owner == t && o.StampID == id && o.StampID != -1
	})
	if n > 0 {
		t.screen.Redraw(true)
	}
}

// ClearStamps removes this turtle's stamps with id <= maxID, or all of
// them when maxID is negative. Other turtles' objects are untouched.
func (t *Turtle) ClearStamps(maxID int) {
	if t.closed() {
		return
	}
	n := t.screen.removeObjects(func(o *SceneObject) bool {
		if o.owner != t || o.StampID == -1 {
			return false
		}
		return maxID < 0 || o.StampID <= maxID
	})
	if n > 0 {
		t.screen.Redraw(true)
	}
}

// Write draws text at the turtle's position using the fill color.
func (t *Turtle) Write(text string) {
	if t.closed() || text == "" {
		return
	}
	t.pushState()
	s := t.top()
	t.screen.appendObject(SceneObject{
		Kind:      KindText,
		Text:      text,
		Fill:      s.FillColor,
		Transform: s.Transform,
		StampID:   -1,
		owner:     t,
	})
	t.screen.Redraw(false)
}

// Circle draws a circle of the given radius around the current position,
// approximated by the given number of steps.
func (t *Turtle) Circle(radius float64, steps int, c color.RGBA) {
	if t.closed() {
		return
	}
	t.pushState()
	s := t.top()
	t.screen.appendObject(SceneObject{
		Kind:      KindPolygon,
		Geom:      regularPolygon(steps, radius),
		Fill:      c,
		Transform: s.Transform,
		StampID:   -1,
		owner:     t,
	})
	t.screen.Redraw(false)
}

// Dot draws a small dot of the given diameter at the current position.
func (t *Turtle) Dot(c color.RGBA, size float64) {
	t.Circle(size/2, 4, c)
}

// PenUp lifts the pen: movement stops leaving lines.
func (t *Turtle) PenUp() { t.setTracing(false) }

// PenDown lowers the pen.
func (t *Turtle) PenDown() { t.setTracing(true) }

func (t *Turtle) setTracing(down bool) {
	if t.closed() {
		return
	}
	t.pushState()
	t.top().Tracing = down
}

// IsDown reports whether the pen is down.
func (t *Turtle) IsDown() bool { return t.top().Tracing }

// SetPenColor sets the color of traced lines and stamp outlines.
func (t *Turtle) SetPenColor(c color.RGBA) {
	if t.closed() {
		return
	}
	t.pushState()
	t.top().PenColor = c
}

// PenColor returns the pen color.
func (t *Turtle) PenColor() color.RGBA { return t.top().PenColor }

// SetFillColor sets the color used for fills, stamps and text.
func (t *Turtle) SetFillColor(c color.RGBA) {
	if t.closed() {
		return
	}
	t.pushState()
	t.top().FillColor = c
}

// FillColor returns the fill color.
func (t *Turtle) FillColor() color.RGBA { return t.top().FillColor }

// SetWidth sets the pen width in pixels, clamped to a minimum of 1.
func (t *Turtle) SetWidth(pixels int) {
	if t.closed() {
		return
	}
	if pixels < 1 {
		pixels = 1
	}
	t.pushState()
	t.top().PenWidth = pixels
}

// Width returns the pen width in pixels.
func (t *Turtle) Width() int { return t.top().PenWidth }

// SetSpeed sets the move speed, clamped to 0..10. Zero disables
// animation.
func (t *Turtle) SetSpeed(speed float64) {
	if t.closed() {
		return
	}
	if speed < 0 {
		speed = 0
	}
	if speed > 10 {
		speed = 10
	}
	t.pushState()
	t.top().MoveSpeed = speed
}

// Speed returns the move speed.
func (t *Turtle) Speed() float64 { return t.top().MoveSpeed }

// Degrees switches angle input and output to degrees.
func (t *Turtle) Degrees() { t.setAngleMode(false) }

// Radians switches angle input and output to radians.
func (t *Turtle) Radians() { t.setAngleMode(true) }

func (t *Turtle) setAngleMode(radians bool) {
	if t.closed() {
		return
	}
	t.pushState()
	t.top().AngleRadians = radians
}

// SetShape selects a cursor shape from the registry. Unknown names are
// ignored.
func (t *Turtle) SetShape(name string) {
	if t.closed() {
		return
	}
	if _, ok := Shapes.Lookup(name); !ok {
		return
	}
	t.pushState()
	t.top().CursorShape = name
	t.screen.Redraw(false)
}

// Shape returns the name of the current cursor shape.
func (t *Turtle) Shape() string { return t.top().CursorShape }

// Tilt rotates the cursor glyph by the given amount in the active angle
// unit without changing the heading.
func (t *Turtle) Tilt(angle float64) {
	if t.closed() {
		return
	}
	t.pushState()
	t.top().CursorTilt += t.toRadians(angle)
	t.screen.Redraw(false)
}

// TiltAngle returns the cursor tilt in the active angle unit.
func (t *Turtle) TiltAngle() float64 {
	return t.fromRadians(t.top().CursorTilt)
}

// ShowTurtle makes the cursor glyph visible.
func (t *Turtle) ShowTurtle() { t.setVisible(true) }

// HideTurtle hides the cursor glyph.
func (t *Turtle) HideTurtle() { t.setVisible(false) }

func (t *Turtle) setVisible(v bool) {
	if t.closed() {
		return
	}
	t.pushState()
	t.top().Visible = v
	t.screen.Redraw(false)
}

// IsVisible reports whether the cursor glyph is shown.
func (t *Turtle) IsVisible() bool { return t.top().Visible }

// Reset removes everything this turtle has drawn, collapses the undo
// stack to a single default state and re-homes the transform.
func (t *Turtle) Reset() {
	if t.closed() {
		return
	}
	t.screen.removeObjects(func(o *SceneObject) bool { return o.owner == t })
	st := defaultPenState()
	st.Transform.Rotation = t.screen.homeRotation()
	t.stack = t.stack[:0]
	t.stack = append(t.stack, st)
	t.fillAccum = nil
	t.screen.Redraw(true)
}

// cursorTransform is the turtle transform with the cursor tilt applied,
// used for the glyph and for stamps.
func (t *Turtle) cursorTransform() Transform {
	s := t.top()
	tr := s.Transform
	tr.Rotation += s.CursorTilt
	return tr
}

// toRadians converts an input angle from the active unit.
func (t *Turtle) toRadians(v float64) float64 {
	if t.top().AngleRadians {
		return v
	}
	return v * math.Pi / 180
}

// fromRadians converts an output angle to the active unit.
func (t *Turtle) fromRadians(v float64) float64 {
	if t.top().AngleRadians {
		return v
	}
	return v * 180 / math.Pi
}
