package terrapin

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/terrapin-graphics/terrapin/internal/raster"
)

// ScreenMode selects the heading convention shared by every turtle on a
// screen.
type ScreenMode int

const (
	// ModeStandard: heading zero points east, positive angles turn
	// counterclockwise.
	ModeStandard ScreenMode = iota
	// ModeLogo: heading zero points north, positive angles turn clockwise.
	ModeLogo
)

// DefaultDelay is the pause between redraws while animating or looping.
const DefaultDelay = 10 * time.Millisecond

type timerBinding struct {
	fn       TimerFunc
	interval time.Duration
	last     time.Time
}

// Screen owns the global ordered scene list, the set of attached turtles,
// the redraw policy, and the input bindings. All methods except PostEvent
// must be called from a single goroutine.
type Screen struct {
	canvas    Canvas
	composite Canvas
	display   Display
	logger    Logger

	objects []SceneObject
	turtles []*Turtle

	bgColor color.RGBA
	bgImage image.Image
	mode    ScreenMode

	delay time.Duration

	// tracer frame skipping: when redrawCounterMax > 0, only every Nth
	// redraw call reaches the surface.
	redrawCounter    int
	redrawCounterMax int

	// lastDrawn is the scene-list watermark of the previous draw; an
	// incremental redraw only draws objects at or above it.
	lastDrawn int

	closed atomic.Bool

	// The inbox is the only structure touched by a producer goroutine.
	// inboxMu is held only for enqueue and drain, never across callbacks.
	inboxMu sync.Mutex
	inbox   []Event

	keyPress   map[Key][]KeyFunc
	keyRelease map[Key][]KeyFunc
	clicks     [3][]MouseFunc
	timers     []timerBinding
}

// NewScreen creates a screen drawing through the given display and starts
// the display's input producer. A nil logger is replaced by NoopLogger.
func NewScreen(ctx context.Context, display Display, logger Logger) (*Screen, error) {
	if logger == nil {
		logger = NoopLogger{}
	}
	w, h := display.Size()
	s := &Screen{
		canvas:     raster.New(w, h),
		composite:  raster.New(w, h),
		display:    display,
		logger:     logger,
		bgColor:    White,
		delay:      DefaultDelay,
		keyPress:   make(map[Key][]KeyFunc),
		keyRelease: make(map[Key][]KeyFunc),
	}
	if err := display.Start(ctx, s.PostEvent); err != nil {
		return nil, fmt.Errorf("display start: %w", err)
	}
	s.logger.Infof("screen", "display open, %dx%d", w, h)
	s.Redraw(true)
	return s, nil
}

// Canvas returns the raster surface the screen draws into.
func (s *Screen) Canvas() Canvas { return s.canvas }

// Size returns the raster surface size in pixels.
func (s *Screen) Size() (int, int) { return s.canvas.Size() }

// SetFont loads TTF bytes for text drawing at the given point size. It is
// forwarded to the raster canvas when it supports fonts.
func (s *Screen) SetFont(ttf []byte, size float64) error {
	type fontSetter interface {
		SetFont(ttf []byte, size float64) error
	}
	fs, ok := s.canvas.(fontSetter)
	if !ok {
		return fmt.Errorf("canvas does not support fonts")
	}
	if err := fs.SetFont(ttf, size); err != nil {
		return err
	}
	if cfs, ok := s.composite.(fontSetter); ok {
		_ = cfs.SetFont(ttf, size)
	}
	return nil
}

// Mode returns the current heading convention.
func (s *Screen) Mode() ScreenMode { return s.mode }

// SetMode switches between standard and logo heading conventions. The
// convention is screen-wide: every turtle reading or setting its heading
// goes through it.
func (s *Screen) SetMode(m ScreenMode) { s.mode = m }

// homeRotation is the internal rotation of a freshly homed turtle.
func (s *Screen) homeRotation() float64 {
	if s.mode == ModeLogo {
		return math.Pi / 2
	}
	return 0
}

// headingFromRotation converts an internal rotation (radians, CCW, zero
// east) to the mode's heading convention. The mapping is an involution,
// so it also serves as rotationFromHeading.
func (s *Screen) headingFromRotation(rot float64) float64 {
	if s.mode == ModeLogo {
		return math.Pi/2 - rot
	}
	return rot
}

// Background returns the background color.
func (s *Screen) Background() color.RGBA { return s.bgColor }

// SetBackground sets the background color. A background image, when set,
// takes precedence until removed.
func (s *Screen) SetBackground(c color.RGBA) {
	if s.closed.Load() {
		return
	}
	s.bgColor = c
	s.Redraw(true)
}

// SetBackgroundImage sets or clears (nil) the background image.
func (s *Screen) SetBackgroundImage(img image.Image) {
	if s.closed.Load() {
		return
	}
	s.bgImage = img
	s.Redraw(true)
}

// Delay returns the pause between redraws.
func (s *Screen) Delay() time.Duration { return s.delay }

// SetDelay sets the pause between redraws; negative values clamp to zero.
func (s *Screen) SetDelay(d time.Duration) {
	if d < 0 {
		d = 0
	}
	s.delay = d
}

// Tracer sets the frame-skip count: with countMax > 1 only every Nth
// redraw call reaches the surface. It affects presentation cadence only,
// never the scene list.
func (s *Screen) Tracer(countMax int, delay time.Duration) {
	if countMax < 0 {
		countMax = 0
	}
	s.redrawCounterMax = countMax
	s.redrawCounter = 0
	s.SetDelay(delay)
	s.Redraw(false)
}

// frameInterval paces animation steps.
func (s *Screen) frameInterval() time.Duration {
	if s.delay < time.Millisecond {
		return time.Millisecond
	}
	return s.delay
}

// ScreenTransform maps world coordinates (origin center, Y up) onto the
// raster surface (origin top left, Y down).
func (s *Screen) ScreenTransform() Transform {
	w, h := s.canvas.Size()
	t := IdentityTransform()
	t.X = float64(w) / 2
	t.Y = float64(h) / 2
	t.ScaleY = -1
	return t
}

// attach registers a turtle with this screen.
func (s *Screen) attach(t *Turtle) {
	s.turtles = append(s.turtles, t)
}

func (s *Screen) objectCount() int { return len(s.objects) }

func (s *Screen) appendObject(obj SceneObject) {
	if s.closed.Load() {
		return
	}
	s.objects = append(s.objects, obj)
}

// truncateScene discards every scene object at index n and above, then
// clamps watermarks that pointed past the new end.
func (s *Screen) truncateScene(n int) {
	if n < 0 {
		n = 0
	}
	if n >= len(s.objects) {
		return
	}
	s.objects = s.objects[:n]
	if s.lastDrawn > n {
		s.lastDrawn = n
	}
	for _, tu := range s.turtles {
		for i := range tu.stack {
			if tu.stack[i].ObjectsBefore > n {
				tu.stack[i].ObjectsBefore = n
			}
		}
	}
}

// removeObjects deletes every object matching the predicate and shifts
// all attached turtles' ObjectsBefore watermarks down by the number of
// removals below each watermark, keeping count-based undo bookkeeping
// consistent with the compacted list.
func (s *Screen) removeObjects(match func(*SceneObject) bool) int {
	var removed []int
	kept := s.objects[:0]
	for i := range s.objects {
		if match(&s.objects[i]) {
			removed = append(removed, i)
		} else {
			kept = append(kept, s.objects[i])
		}
	}
	if len(removed) == 0 {
		return 0
	}
	s.objects = kept
	adjust := func(n int) int {
		c := 0
		for _, idx := range removed {
			if idx < n {
				c++
			}
		}
		return n - c
	}
	for _, tu := range s.turtles {
		for i := range tu.stack {
			tu.stack[i].ObjectsBefore = adjust(tu.stack[i].ObjectsBefore)
		}
	}
	s.lastDrawn = adjust(s.lastDrawn)
	return len(removed)
}

// ClearScreen empties the scene list, resets the background to the
// default color and drops all input bindings. Attached turtles stay
// attached; call ResetScreen to reset them as well.
func (s *Screen) ClearScreen() {
	if s.closed.Load() {
		return
	}
	s.objects = nil
	s.lastDrawn = 0
	s.bgColor = White
	s.bgImage = nil
	s.keyPress = make(map[Key][]KeyFunc)
	s.keyRelease = make(map[Key][]KeyFunc)
	s.clicks = [3][]MouseFunc{}
	s.timers = nil
	for _, tu := range s.turtles {
		for i := range tu.stack {
			tu.stack[i].ObjectsBefore = 0
		}
	}
	s.Redraw(true)
}

// ResetScreen resets every attached turtle to a single base pen state at
// home; the scene list and bindings are left untouched except for the
// objects the turtles remove.
func (s *Screen) ResetScreen() {
	if s.closed.Load() {
		return
	}
	for _, tu := range s.turtles {
		tu.Reset()
	}
}

// Redraw draws the scene. When invalidate is true the surface is cleared
// to the background and every object is redrawn in list order; otherwise
// only objects appended since the last draw are added. Turtle cursors are
// always composited on top, and the frame is presented.
func (s *Screen) Redraw(invalidate bool) {
	if s.closed.Load() {
		return
	}
	if s.redrawCounterMax > 1 {
		s.redrawCounter++
		if s.redrawCounter%s.redrawCounterMax != 0 {
			return
		}
		s.redrawCounter = 0
	}
	if s.lastDrawn > len(s.objects) {
		invalidate = true
	}
	if invalidate {
		if s.bgImage != nil {
			s.canvas.DrawBackground(s.bgImage)
		} else {
			s.canvas.Clear(s.bgColor)
		}
		s.drawObjects(s.objects)
	} else {
		s.drawObjects(s.objects[s.lastDrawn:])
	}
	s.lastDrawn = len(s.objects)

	frame := s.compositeFrame()
	if err := s.display.Present(frame); err != nil {
		// Backend failure is fatal for presentation: close so later
		// commands no-op and loops terminate.
		s.logger.Errorf("screen", "present failed: %v", err)
		s.Bye()
	}
}

// compositeFrame copies the scene canvas and draws every visible turtle's
// cursor glyph on top, leaving the scene canvas itself untouched.
func (s *Screen) compositeFrame() *image.RGBA {
	dst := s.composite.Image()
	draw.Draw(dst, dst.Bounds(), s.canvas.Image(), image.Point{}, draw.Src)
	st := s.ScreenTransform()
	for _, tu := range s.turtles {
		top := tu.top()
		if !top.Visible {
			continue
		}
		shape, ok := Shapes.Lookup(top.CursorShape)
		if !ok {
			continue
		}
		world := st.Compose(tu.cursorTransform())
		xs, ys := mapPoints(world, shape.Points)
		s.composite.DrawPolygon(xs, ys, top.FillColor, top.PenColor, 1)
	}
	return dst
}

func mapPoints(t Transform, pts []Point) (xs, ys []float64) {
	xs = make([]float64, len(pts))
	ys = make([]float64, len(pts))
	for i, p := range pts {
		q := t.Apply(p)
		xs[i] = q.X
		ys[i] = q.Y
	}
	return xs, ys
}

func (s *Screen) drawObjects(objs []SceneObject) {
	st := s.ScreenTransform()
	for i := range objs {
		s.drawObject(st, &objs[i])
	}
}

func (s *Screen) drawObject(st Transform, o *SceneObject) {
	world := st.Compose(o.Transform)
	switch o.Kind {
	case KindLine:
		a := world.Apply(o.Geom.Points[0])
		b := world.Apply(o.Geom.Points[1])
		s.canvas.DrawLine(a.X, a.Y, b.X, b.Y, o.Outline, o.OutlineWidth)
	case KindPolygon:
		xs, ys := mapPoints(world, o.Geom.Points)
		s.canvas.DrawPolygon(xs, ys, o.Fill, o.Outline, o.OutlineWidth)
	case KindStamp:
		shape, ok := Shapes.Lookup(o.Shape)
		if !ok {
			return
		}
		xs, ys := mapPoints(world, shape.Points)
		s.canvas.DrawPolygon(xs, ys, o.Fill, o.Outline, o.OutlineWidth)
	case KindText:
		// Text is positioned, never rotated or scaled.
		pos := st.Apply(o.Transform.Position())
		s.canvas.DrawText(pos.X, pos.Y, o.Text, o.Fill)
	}
}

// PostEvent enqueues a raw input event. It is the only Screen method safe
// to call from a display backend's producer goroutine.
func (s *Screen) PostEvent(ev Event) {
	if s.closed.Load() {
		return
	}
	s.inboxMu.Lock()
	s.inbox = append(s.inbox, ev)
	s.inboxMu.Unlock()
}

func (s *Screen) drainEvents() []Event {
	s.inboxMu.Lock()
	evs := s.inbox
	s.inbox = nil
	s.inboxMu.Unlock()
	return evs
}

// OnKeyPress adds a key-press binding. Bindings accumulate; each press
// invokes every function bound to the key in registration order.
func (s *Screen) OnKeyPress(fn KeyFunc, key Key) {
	s.keyPress[key] = append(s.keyPress[key], fn)
}

// OnKeyRelease adds a key-release binding.
func (s *Screen) OnKeyRelease(fn KeyFunc, key Key) {
	s.keyRelease[key] = append(s.keyRelease[key], fn)
}

// OnClick adds a mouse binding. Callbacks receive the click position in
// world coordinates.
func (s *Screen) OnClick(fn MouseFunc, button MouseButton) {
	if button < MouseLeft || button > MouseRight {
		return
	}
	s.clicks[button] = append(s.clicks[button], fn)
}

// OnTimer schedules fn to run every interval, measured while Update is
// being called.
func (s *Screen) OnTimer(fn TimerFunc, interval time.Duration) {
	if interval <= 0 {
		interval = time.Millisecond
	}
	s.timers = append(s.timers, timerBinding{fn: fn, interval: interval, last: time.Now()})
}

// PressKey invokes the press bindings for key, as if it had been typed.
func (s *Screen) PressKey(key Key) {
	for _, fn := range s.keyPress[key] {
		fn()
	}
}

// ReleaseKey invokes the release bindings for key.
func (s *Screen) ReleaseKey(key Key) {
	for _, fn := range s.keyRelease[key] {
		fn()
	}
}

// Click invokes the bindings for button at a world position.
func (s *Screen) Click(x, y float64, button MouseButton) {
	if button < MouseLeft || button > MouseRight {
		return
	}
	for _, fn := range s.clicks[button] {
		fn(x, y)
	}
}

// Update redraws the screen and, when processInput is set, drains the
// event inbox and dispatches callbacks in arrival order, then fires due
// timers. Callbacks run synchronously on the caller's goroutine.
func (s *Screen) Update(invalidate, processInput bool) {
	if s.closed.Load() {
		return
	}
	s.Redraw(invalidate)
	if !processInput {
		return
	}
	inv := s.ScreenTransform().Inverse()
	for _, ev := range s.drainEvents() {
		switch ev.Kind {
		case EventKeyPress:
			s.PressKey(ev.Key)
		case EventKeyRelease:
			s.ReleaseKey(ev.Key)
		case EventClick:
			p := inv.Apply(Point{float64(ev.X), float64(ev.Y)})
			s.Click(p.X, p.Y, ev.Button)
		case EventResize:
			s.Redraw(true)
		case EventClose:
			s.Bye()
			return
		}
	}
	now := time.Now()
	for i := range s.timers {
		if now.Sub(s.timers[i].last) >= s.timers[i].interval {
			s.timers[i].last = now
			s.timers[i].fn()
		}
	}
}

// Mainloop updates the screen until the display closes. Events keep being
// dispatched, so programs driven entirely by callbacks block here.
func (s *Screen) Mainloop() {
	for !s.closed.Load() && !s.display.Closed() {
		s.Update(false, true)
		time.Sleep(s.frameInterval())
	}
}

// ExitOnClick binds Bye to the left mouse button and enters Mainloop.
func (s *Screen) ExitOnClick() {
	s.OnClick(func(x, y float64) { s.Bye() }, MouseLeft)
	s.Mainloop()
}

// IsClosed reports whether the display has been closed.
func (s *Screen) IsClosed() bool {
	return s.closed.Load() || s.display.Closed()
}

// Bye closes the display. Commands issued afterwards are no-ops.
func (s *Screen) Bye() {
	if !s.closed.CompareAndSwap(false, true) {
		return
	}
	if err := s.display.Close(); err != nil {
		s.logger.Errorf("screen", "display close: %v", err)
	}
	s.logger.Infof("screen", "display closed")
}

// Save writes the current frame, cursors included, as a PNG file. The
// encoding itself is delegated to the standard image library.
func (s *Screen) Save(path string) error {
	frame := s.compositeFrame()
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, frame); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
