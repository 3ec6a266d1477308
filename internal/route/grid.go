package route

import "math"

// cell is an integer grid coordinate; it only exists inside a search
type cell struct {
	X, Y int
}

// directions are tried in this order when expanding a cell
var directions = [4]cell{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// cellRange is an inclusive block of grid cells
type cellRange struct {
	x0, y0, x1, y1 int
}

func (r cellRange) contains(c cell) bool {
	return c.X >= r.x0 && c.X <= r.x1 && c.Y >= r.y0 && c.Y <= r.y1
}

// grid is the search window. Obstacles are kept as cell ranges and tested on
// demand, so memory does not grow with the distance between nodes.
type grid struct {
	size    float64
	bounds  cellRange
	blocked []cellRange
}

// cellLimit keeps far-off coordinates inside the int range
const cellLimit = 1 << 40

func toCell(v float64) int {
	switch {
	case math.IsNaN(v):
		return 0
	case v > cellLimit:
		return cellLimit
	case v < -cellLimit:
		return -cellLimit
	}
	return int(v)
}

// newGrid covers the bounding box of start, goal and every obstacle,
// expanded by margin on each side.
func newGrid(size float64, start, goal Point, obstacles []Rect, margin float64) *grid {
	minX, maxX := math.Min(start.X, goal.X), math.Max(start.X, goal.X)
	minY, maxY := math.Min(start.Y, goal.Y), math.Max(start.Y, goal.Y)
	for _, r := range obstacles {
		minX = math.Min(minX, r.X)
		minY = math.Min(minY, r.Y)
		maxX = math.Max(maxX, r.X+r.W)
		maxY = math.Max(maxY, r.Y+r.H)
	}

	g := &grid{
		size: size,
		bounds: cellRange{
			x0: toCell(math.Floor((minX - margin) / size)),
			y0: toCell(math.Floor((minY - margin) / size)),
			x1: toCell(math.Ceil((maxX + margin) / size)),
			y1: toCell(math.Ceil((maxY + margin) / size)),
		},
		blocked: make([]cellRange, 0, len(obstacles)),
	}

	for _, r := range obstacles {
		cr := cellRange{
			x0: toCell(math.Ceil(r.X / size)),
			y0: toCell(math.Ceil(r.Y / size)),
			x1: toCell(math.Floor((r.X + r.W) / size)),
			y1: toCell(math.Floor((r.Y + r.H) / size)),
		}
		if cr.x0 <= cr.x1 && cr.y0 <= cr.y1 {
			g.blocked = append(g.blocked, cr)
		}
	}

	return g
}

// isBlocked treats everything outside the window as blocked
func (g *grid) isBlocked(c cell) bool {
	if !g.bounds.contains(c) {
		return true
	}
	for _, r := range g.blocked {
		if r.contains(c) {
			return true
		}
	}
	return false
}

func (g *grid) snap(p Point) cell {
	return cell{toCell(math.Round(p.X / g.size)), toCell(math.Round(p.Y / g.size))}
}

func (g *grid) world(c cell) Point {
	return Point{X: float64(c.X) * g.size, Y: float64(c.Y) * g.size}
}

// escape returns c when it is free, otherwise the first free in-bounds cell
// among six offsets preferring the outward direction of the node side.
func (g *grid) escape(c cell, side Side) (cell, bool) {
	if !g.isBlocked(c) {
		return c, true
	}

	o := side.outward()
	candidates := [6]cell{{o, 0}, {2 * o, 0}, {o, -1}, {o, 1}, {0, -1}, {0, 1}}
	for _, d := range candidates {
		n := cell{c.X + d.X, c.Y + d.Y}
		if !g.isBlocked(n) {
			return n, true
		}
	}
	return c, false
}
