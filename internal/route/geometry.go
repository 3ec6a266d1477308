package route

import "math"

// Point is a position in diagram space
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle with its origin at the top-left corner
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Inflate grows the rectangle by m on every side
func (r Rect) Inflate(m float64) Rect {
	return Rect{X: r.X - m, Y: r.Y - m, W: r.W + 2*m, H: r.H + 2*m}
}

// Contains reports whether p lies inside the rectangle or on its boundary
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.W && p.Y >= r.Y && p.Y <= r.Y+r.H
}

// CenterX returns the horizontal center
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// CenterY returns the vertical center
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }

// Side is the node side an edge attaches to
type Side int

const (
	SideRight Side = iota
	SideLeft
)

// outward is the horizontal grid step leading away from a node through side s
func (s Side) outward() int {
	if s == SideLeft {
		return -1
	}
	return 1
}

func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

func segmentLength(a, b Point) float64 {
	return math.Abs(b.X-a.X) + math.Abs(b.Y-a.Y)
}
