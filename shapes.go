package terrapin

import (
	"math"
	"sync"
)

// Names of the shapes pre-registered in the default registry. Shape
// geometry points along +X so the cursor faces the heading.
const (
	ShapeTriangle         = "triangle"
	ShapeIndentedTriangle = "indented triangle"
	ShapeSquare           = "square"
	ShapeArrow            = "arrow"
	ShapeCircle           = "circle"
)

// ShapeRegistry is a shared, named collection of cursor and stamp
// geometry. Registered polygons are read-only; turtles and scene objects
// reference them by name and never own them.
type ShapeRegistry struct {
	mu     sync.RWMutex
	shapes map[string]Polygon
}

// NewShapeRegistry returns an empty registry.
func NewShapeRegistry() *ShapeRegistry {
	return &ShapeRegistry{shapes: make(map[string]Polygon)}
}

// Register adds or replaces a shape under the given name. The polygon is
// copied; later mutation of the argument does not affect the registry.
func (r *ShapeRegistry) Register(name string, p Polygon) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shapes[name] = p.clone()
}

// Lookup returns the shape registered under name.
func (r *ShapeRegistry) Lookup(name string) (Polygon, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.shapes[name]
	return p, ok
}

// Shapes is the process-wide registry. It is populated with the default
// shapes during package initialization, before any Turtle can be
// constructed, and is safe for concurrent reads afterwards.
var Shapes = defaultShapes()

func defaultShapes() *ShapeRegistry {
	r := NewShapeRegistry()
	r.Register(ShapeTriangle, Polygon{Points: []Point{
		{10, 0}, {-6, 6}, {-6, -6},
	}})
	r.Register(ShapeIndentedTriangle, Polygon{Points: []Point{
		{10, 0}, {-7, 7}, {-4, 0}, {-7, -7},
	}})
	r.Register(ShapeSquare, Polygon{Points: []Point{
		{5, 5}, {-5, 5}, {-5, -5}, {5, -5},
	}})
	r.Register(ShapeArrow, Polygon{Points: []Point{
		{10, 0}, {0, 5}, {0, 2}, {-8, 2}, {-8, -2}, {0, -2}, {0, -5},
	}})
	r.Register(ShapeCircle, regularPolygon(12, 6))
	return r
}

func regularPolygon(steps int, radius float64) Polygon {
	if steps < 3 {
		steps = 3
	}
	pts := make([]Point, steps)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / float64(steps)
		pts[i] = Point{math.Cos(a) * radius, math.Sin(a) * radius}
	}
	return Polygon{Points: pts}
}
