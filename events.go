package terrapin

// Key identifies a keyboard key by name ("a", "space", "esc", "f4", ...).
// Display backends translate their raw key codes into these names.
type Key string

// Common key names posted by the bundled display backends.
const (
	KeySpace  Key = "space"
	KeyEnter  Key = "enter"
	KeyEscape Key = "esc"
	KeyUp     Key = "up"
	KeyDown   Key = "down"
	KeyLeft   Key = "left"
	KeyRight  Key = "right"
)

// MouseButton identifies a pointer button.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseMiddle
	MouseRight
)

// EventKind tags the variant held by an Event.
type EventKind int

const (
	EventKeyPress EventKind = iota
	EventKeyRelease
	EventClick
	EventResize
	EventClose
)

// Event is one raw input occurrence captured by a display backend's
// producer goroutine and queued into the screen's inbox. Click coordinates
// are raster-surface pixels; Update converts them to world coordinates
// before dispatching callbacks.
type Event struct {
	Kind   EventKind
	Key    Key
	Button MouseButton
	X, Y   int
	Width  int
	Height int
}

// Callback signatures for input bindings. Callbacks always run on the
// goroutine that calls Update or Mainloop, never on the producer side.
type (
	KeyFunc   func()
	MouseFunc func(x, y float64)
	TimerFunc func()
)
