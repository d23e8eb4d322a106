package terrapin

import "math"

// Point is a position on the world plane. The world origin sits at the
// center of the screen with Y growing upward; the screen transform maps
// world coordinates onto the raster surface.
type Point struct {
	X, Y float64
}

// Transform is a decomposed 2D affine transform. Apply maps a local point
// through scale, then rotation, then translation, in that fixed order.
// The decomposed form is used instead of a 2x3 matrix because turtle
// semantics read and write the rotation constantly.
type Transform struct {
	X, Y           float64
	Rotation       float64 // radians, counterclockwise on the Y-up plane
	ScaleX, ScaleY float64
}

// IdentityTransform returns the transform that maps every point to itself.
func IdentityTransform() Transform {
	return Transform{ScaleX: 1, ScaleY: 1}
}

// Position returns the translation component.
func (t Transform) Position() Point { return Point{t.X, t.Y} }

// GetRotation returns the rotation component in radians.
func (t Transform) GetRotation() float64 { return t.Rotation }

// Translate returns a copy shifted by (dx, dy).
func (t Transform) Translate(dx, dy float64) Transform {
	t.X += dx
	t.Y += dy
	return t
}

// Rotate returns a copy rotated by the given angle in radians.
func (t Transform) Rotate(radians float64) Transform {
	t.Rotation += radians
	return t
}

// Scale returns a copy with the scale components multiplied by (sx, sy).
func (t Transform) Scale(sx, sy float64) Transform {
	t.ScaleX *= sx
	t.ScaleY *= sy
	return t
}

// Forward returns a copy advanced by the given distance along the current
// rotation.
func (t Transform) Forward(distance float64) Transform {
	t.X += math.Cos(t.Rotation) * distance
	t.Y += math.Sin(t.Rotation) * distance
	return t
}

// Apply maps a local point into the transform's target space.
func (t Transform) Apply(p Point) Point {
	p = t.applyLinear(p)
	p.X += t.X
	p.Y += t.Y
	return p
}

// applyLinear applies scale and rotation without the translation.
func (t Transform) applyLinear(p Point) Point {
	x := p.X * t.ScaleX
	y := p.Y * t.ScaleY
	cos := math.Cos(t.Rotation)
	sin := math.Sin(t.Rotation)
	return Point{x*cos - y*sin, x*sin + y*cos}
}

// flipSign is -1 when the transform mirrors the plane (one negative scale
// axis), which reverses the direction of composed rotations.
func (t Transform) flipSign() float64 {
	if t.ScaleX*t.ScaleY < 0 {
		return -1
	}
	return 1
}

// Compose returns a transform equivalent to applying other first, then t:
//
//	t.Compose(other).Apply(p) == t.Apply(other.Apply(p))
//
// The engine only composes rigid transforms with axis-aligned flips (the
// screen transform mirrors Y), for which the decomposed form is closed.
func (t Transform) Compose(other Transform) Transform {
	pos := t.Apply(other.Position())
	return Transform{
		X:        pos.X,
		Y:        pos.Y,
		Rotation: t.Rotation + other.Rotation*t.flipSign(),
		ScaleX:   t.ScaleX * other.ScaleX,
		ScaleY:   t.ScaleY * other.ScaleY,
	}
}

// Inverse returns the transform that undoes t.
func (t Transform) Inverse() Transform {
	inv := Transform{ScaleX: 1 / t.ScaleX, ScaleY: 1 / t.ScaleY}
	inv.Rotation = -t.Rotation * t.flipSign()
	pos := inv.applyLinear(Point{-t.X, -t.Y})
	inv.X = pos.X
	inv.Y = pos.Y
	return inv
}

// LerpTransform interpolates component-wise between a and b. f is clamped
// to [0, 1]; f = 1 yields b's components exactly.
func LerpTransform(a, b Transform, f float64) Transform {
	if f <= 0 {
		return a
	}
	if f >= 1 {
		return b
	}
	return Transform{
		X:        a.X + (b.X-a.X)*f,
		Y:        a.Y + (b.Y-a.Y)*f,
		Rotation: a.Rotation + (b.Rotation-a.Rotation)*f,
		ScaleX:   a.ScaleX + (b.ScaleX-a.ScaleX)*f,
		ScaleY:   a.ScaleY + (b.ScaleY-a.ScaleY)*f,
	}
}
