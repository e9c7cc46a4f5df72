// Package geometry resolves where components and their ports sit in diagram
// space.
//
// Every component body is a fixed-width box anchored at its top-left
// position. Ports are laid out in declaration order: input ports on the left
// edge, output and bidirectional ports on the right edge, one row per port
// index regardless of side. All functions here are pure; callers pass the
// effective position, which during a drag may differ from the committed one.
package geometry

import (
	"math"

	"github.com/matzehuels/pidforge/pkg/catalog"
)

// Layout constants in diagram units (pixels at 1x).
const (
	Width     = 100.0 // component body width
	MinHeight = 60.0  // smallest body height
	PortTop   = 20.0  // offset of the first port row from the body top
	PortPitch = 20.0  // vertical distance between port rows
	PortR     = 6.0   // port circle radius, also the hit radius
)

// Point is a position in diagram space. Y grows downward.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Pt is shorthand for Point{x, y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// IsZero reports whether p is the origin.
func (p Point) IsZero() bool { return p.X == 0 && p.Y == 0 }

// Distance returns the Euclidean distance between p and q.
func Distance(p, q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Rect is an axis-aligned rectangle with Min at the top-left corner.
type Rect struct {
	Min, Max Point
}

// R returns the rectangle with top-left (x, y) and the given size.
func R(x, y, w, h float64) Rect {
	return Rect{Min: Point{x, y}, Max: Point{x + w, y + h}}
}

// Dx returns the rectangle's width.
func (r Rect) Dx() float64 { return r.Max.X - r.Min.X }

// Dy returns the rectangle's height.
func (r Rect) Dy() float64 { return r.Max.Y - r.Min.Y }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Min.X >= r.Max.X || r.Min.Y >= r.Max.Y }

// Union returns the smallest rectangle containing both r and s.
// An empty rectangle contributes nothing.
func (r Rect) Union(s Rect) Rect {
	if r.Empty() {
		return s
	}
	if s.Empty() {
		return r
	}
	return Rect{
		Min: Point{math.Min(r.Min.X, s.Min.X), math.Min(r.Min.Y, s.Min.Y)},
		Max: Point{math.Max(r.Max.X, s.Max.X), math.Max(r.Max.Y, s.Max.Y)},
	}
}

// Inset shrinks r by n on every side. A negative n grows it.
func (r Rect) Inset(n float64) Rect {
	return Rect{
		Min: Point{r.Min.X + n, r.Min.Y + n},
		Max: Point{r.Max.X - n, r.Max.Y - n},
	}
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Min.X && p.X <= r.Max.X && p.Y >= r.Min.Y && p.Y <= r.Max.Y
}

// Height returns the body height for a definition with n ports.
func Height(n int) float64 {
	if n < 1 {
		return MinHeight
	}
	return math.Max(MinHeight, 2*PortTop+float64(n-1)*PortPitch)
}

// Bounds returns the body rectangle of a component at pos.
func Bounds(def *catalog.Definition, pos Point) Rect {
	return R(pos.X, pos.Y, Width, Height(len(def.Ports)))
}

// PortPosition returns the absolute position of the named port for a
// component at pos. It reports false for an unknown port.
func PortPosition(def *catalog.Definition, pos Point, port string) (Point, bool) {
	i := def.PortIndex(port)
	if i < 0 {
		return Point{}, false
	}
	return portAt(def.Ports[i], i, pos), true
}

// Port pairs a port with its resolved position.
type Port struct {
	catalog.Port
	Index int
	At    Point
}

// Ports resolves every port of def at pos in declaration order.
func Ports(def *catalog.Definition, pos Point) []Port {
	out := make([]Port, len(def.Ports))
	for i, p := range def.Ports {
		out[i] = Port{Port: p, Index: i, At: portAt(p, i, pos)}
	}
	return out
}

// HitPort returns the port of def at pos whose circle contains p.
func HitPort(def *catalog.Definition, pos, p Point) (Port, bool) {
	for _, port := range Ports(def, pos) {
		if Distance(port.At, p) <= PortR {
			return port, true
		}
	}
	return Port{}, false
}

func portAt(p catalog.Port, index int, pos Point) Point {
	x := pos.X + Width
	if p.Direction == catalog.DirectionIn {
		x = pos.X
	}
	return Point{x, pos.Y + PortTop + float64(index)*PortPitch}
}
