package route

import "math"

// LabelPosition places a label at the midpoint of the longest segment,
// pushed off the line: above horizontal segments, right of vertical ones.
// The first of equally long segments wins.
func LabelPosition(pts []Point, offset float64) Point {
	if len(pts) == 0 {
		return Point{}
	}
	if len(pts) == 1 {
		return Point{X: pts[0].X, Y: pts[0].Y - offset}
	}

	best := 0
	bestLen := -1.0
	for i := 0; i+1 < len(pts); i++ {
		if l := segmentLength(pts[i], pts[i+1]); l > bestLen {
			best, bestLen = i, l
		}
	}

	a, b := pts[best], pts[best+1]
	mid := Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
	if a.Y == b.Y {
		mid.Y -= offset
	} else {
		mid.X += offset
	}
	return mid
}

// Arrowhead returns the two barb points of an arrow at the end of the path,
// mirrored across the direction of the final segment. It returns nil when
// the final segment has zero length.
func Arrowhead(pts []Point, length, spread float64) []Point {
	if len(pts) < 2 {
		return nil
	}

	tip := pts[len(pts)-1]
	prev := pts[len(pts)-2]
	dx, dy := tip.X-prev.X, tip.Y-prev.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return nil
	}
	dx, dy = dx/l, dy/l

	base := Point{X: tip.X - dx*length, Y: tip.Y - dy*length}
	px, py := -dy*spread, dx*spread
	return []Point{
		{X: base.X + px, Y: base.Y + py},
		{X: base.X - px, Y: base.Y - py},
	}
}
