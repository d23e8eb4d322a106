package terrapin

import "image/color"

// Polygon is a closed sequence of local-space points.
type Polygon struct {
	Points []Point
}

// clone returns a deep copy so scene objects own their geometry.
func (p Polygon) clone() Polygon {
	pts := make([]Point, len(p.Points))
	copy(pts, p.Points)
	return Polygon{Points: pts}
}

// ObjectKind tags the variant held by a SceneObject.
type ObjectKind int

const (
	// KindLine is a trace line segment. Geom holds its two endpoints in
	// world space; Outline and OutlineWidth give the pen color and width.
	KindLine ObjectKind = iota

	// KindPolygon is a filled polygon whose geometry is owned by the
	// object (committed fills, circles, dots).
	KindPolygon

	// KindStamp references a registry shape by name. The object does not
	// own the geometry; shapes outlive every object referencing them.
	KindStamp

	// KindText is a text string. Text is translated but never rotated or
	// scaled.
	KindText
)

// SceneObject is one persisted renderable unit in the screen's draw list.
// The scene list is the sole long-lived owner; turtles reach their objects
// only through the ObjectsBefore watermarks on their pen states.
type SceneObject struct {
	Kind ObjectKind

	Geom  Polygon // KindLine, KindPolygon
	Shape string  // KindStamp: registry key
	Text  string  // KindText

	Fill         color.RGBA
	Outline      color.RGBA
	OutlineWidth int

	// Transform positions the object; it is concatenated onto the screen
	// transform when drawing.
	Transform Transform

	// StampID is -1 unless this object is a stamp.
	StampID int

	// owner is the turtle that created the object, used to scope stamp
	// removal and reset. It confers no ownership.
	owner *Turtle
}

func lineObject(owner *Turtle, a, b Point, c color.RGBA, width int) SceneObject {
	return SceneObject{
		Kind:         KindLine,
		Geom:         Polygon{Points: []Point{a, b}},
		Outline:      c,
		OutlineWidth: width,
		Transform:    IdentityTransform(),
		StampID:      -1,
		owner:        owner,
	}
}
