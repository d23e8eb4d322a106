package terrapin

import "image/color"

// Turtle speeds, in the 0..10 range accepted by SetSpeed.
const (
	// SpeedFastest disables animation entirely.
	SpeedFastest = 0.0
	// SpeedFast is the fastest a turtle can move without disabling animation.
	SpeedFast = 10.0
	// SpeedNormal is the default speed.
	SpeedNormal  = 6.0
	SpeedSlow    = 3.0
	SpeedSlowest = 1.0
)

// DefaultUndoBuffer is the undo stack capacity a new turtle starts with.
const DefaultUndoBuffer = 100

// PenState is one entry of a turtle's undo stack: the turtle's transform
// plus every drawing attribute, snapshotted before each undoable change.
// Values are copied wholesale on push; the cursor shape is a registry key
// and is shared, not owned.
type PenState struct {
	Transform Transform

	// MoveSpeed is in the range 0..10; 0 disables animation.
	MoveSpeed float64

	// Tracing reports whether pen-down movement leaves a line.
	Tracing bool

	// AngleRadians selects the angle unit: radians when true, degrees
	// otherwise.
	AngleRadians bool

	PenWidth  int
	Filling   bool
	PenColor  color.RGBA
	FillColor color.RGBA

	// CursorShape names a polygon in the shape registry.
	CursorShape string

	// StampCount is the last stamp id issued by this turtle. It lives in
	// the pen state so stamping is subject to undo.
	StampCount int

	Visible bool

	// CursorTilt rotates the cursor glyph without changing the heading.
	CursorTilt float64

	// ObjectsBefore is the length of the screen's scene list at the moment
	// this state was pushed. Undo discards every scene object at or above
	// this watermark when popping the state.
	ObjectsBefore int
}

func defaultPenState() PenState {
	return PenState{
		Transform:   IdentityTransform(),
		MoveSpeed:   SpeedNormal,
		Tracing:     true,
		PenWidth:    1,
		PenColor:    Black,
		FillColor:   Black,
		CursorShape: ShapeIndentedTriangle,
		Visible:     true,
	}
}
