package route

// compress drops repeated points and the middle point of every collinear
// triple, leaving only the corners of the polyline.
func compress(pts []Point) []Point {
	out := make([]Point, 0, len(pts))
	for _, p := range pts {
		if n := len(out); n > 0 && out[n-1] == p {
			continue
		}
		if n := len(out); n >= 2 && collinear(out[n-2], out[n-1], p) {
			out[n-1] = p
			if out[n-2] == p {
				out = out[:n-1]
			}
			continue
		}
		out = append(out, p)
	}
	return out
}

func collinear(a, b, c Point) bool {
	return (a.X == b.X && b.X == c.X) || (a.Y == b.Y && b.Y == c.Y)
}

// alignEnds moves the first and last horizontal runs of a grid path onto the
// exact anchor rows. Anchors sit between grid lines, and without this the
// right-angle corners added afterwards would leave a small step next to each
// node. Runs move by less than half a grid cell.
func alignEnds(pts []Point) []Point {
	n := len(pts)
	if n < 3 {
		return pts
	}

	locked := 0
	if a, b, c := pts[0], pts[1], pts[2]; a.Y != b.Y && b.Y == c.Y {
		pts[1].Y = a.Y
		locked = 1
		if n-1 > 2 {
			pts[2].Y = a.Y
			locked = 2
		}
	}

	z, y, x := pts[n-1], pts[n-2], pts[n-3]
	if y.Y != z.Y && x.Y == y.Y && n-2 > locked {
		pts[n-2].Y = z.Y
		if n-3 > locked {
			pts[n-3].Y = z.Y
		}
	}
	return pts
}

// squareEnds inserts a corner after the start and before the end wherever
// the exact endpoints made the first or last segment diagonal, so the edge
// always leaves and enters its nodes horizontally.
func squareEnds(pts []Point) []Point {
	if len(pts) < 2 {
		return pts
	}
	if len(pts) == 2 {
		if a, b := pts[0], pts[1]; a.X != b.X && a.Y != b.Y {
			return fallbackPath(a, b)
		}
		return pts
	}

	if a, b := pts[0], pts[1]; a.X != b.X && a.Y != b.Y {
		pts = insertAt(pts, 1, Point{X: b.X, Y: a.Y})
	}
	n := len(pts)
	if y, z := pts[n-2], pts[n-1]; y.X != z.X && y.Y != z.Y {
		pts = insertAt(pts, n-1, Point{X: y.X, Y: z.Y})
	}
	return compress(pts)
}

func insertAt(pts []Point, i int, p Point) []Point {
	pts = append(pts, Point{})
	copy(pts[i+1:], pts[i:])
	pts[i] = p
	return pts
}

// fallbackPath is the horizontal-vertical-horizontal connector through the
// horizontal midpoint of the anchors. It ignores obstacles.
func fallbackPath(start, end Point) []Point {
	midX := (start.X + end.X) / 2
	return compress([]Point{
		start,
		{X: midX, Y: start.Y},
		{X: midX, Y: end.Y},
		end,
	})
}

// buildPath converts a grid path to world coordinates with the exact anchors
// at both ends and enforces right angles.
func buildPath(g *grid, cells []cell, start, end Point) []Point {
	pts := make([]Point, len(cells))
	for i, c := range cells {
		pts[i] = g.world(c)
	}
	pts[0] = start
	if len(pts) == 1 {
		pts = append(pts, end)
	} else {
		pts[len(pts)-1] = end
	}

	pts = compress(pts)
	pts = alignEnds(pts)
	pts = compress(pts)
	return squareEnds(pts)
}
