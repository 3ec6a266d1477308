package route

import (
	"reflect"
	"testing"
	"time"
)

func tableNode(id string, x, y, w float64, columns ...string) Node {
	return Node{
		ID:        id,
		Rect:      Rect{X: x, Y: y, W: w, H: 36 + 28*float64(len(columns))},
		IsTable:   true,
		Columns:   columns,
		RowTop:    36,
		RowHeight: 28,
	}
}

func boxNode(id string, x, y, w, h float64) Node {
	return Node{ID: id, Rect: Rect{X: x, Y: y, W: w, H: h}}
}

// assertOrthogonal checks that every segment is purely horizontal or vertical
func assertOrthogonal(t *testing.T, pts []Point) {
	t.Helper()
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		horizontal := a.Y == b.Y && a.X != b.X
		vertical := a.X == b.X && a.Y != b.Y
		if !horizontal && !vertical {
			t.Errorf("segment %d %v -> %v is not axis-aligned", i, a, b)
		}
	}
}

// crossesRect reports whether an axis-aligned segment passes through the
// interior of r
func crossesRect(a, b Point, r Rect) bool {
	minX, maxX := min(a.X, b.X), max(a.X, b.X)
	minY, maxY := min(a.Y, b.Y), max(a.Y, b.Y)
	return maxX > r.X && minX < r.X+r.W && maxY > r.Y && minY < r.Y+r.H
}

func TestAnchors(t *testing.T) {
	left := tableNode("users", 0, 0, 200, "id", "name", "email")
	right := tableNode("orders", 400, 0, 200, "id", "user_id")

	start, end, startSide, endSide := Anchors(left, right, "email", "")
	if start != (Point{X: 200, Y: 36 + 2*28 + 14}) {
		t.Errorf("start = %v", start)
	}
	// no column: row ⌊2/2⌋ = 1
	if end != (Point{X: 400, Y: 36 + 28 + 14}) {
		t.Errorf("end = %v", end)
	}
	if startSide != SideRight || endSide != SideLeft {
		t.Errorf("sides = %v, %v", startSide, endSide)
	}

	start, end, startSide, endSide = Anchors(right, left, "user_id", "id")
	if start != (Point{X: 400, Y: 36 + 28 + 14}) || end != (Point{X: 200, Y: 36 + 14}) {
		t.Errorf("mirrored anchors = %v, %v", start, end)
	}
	if startSide != SideLeft || endSide != SideRight {
		t.Errorf("mirrored sides = %v, %v", startSide, endSide)
	}

	enum := boxNode("enum:status", 400, 300, 120, 60)
	_, end, _, _ = Anchors(left, enum, "id", "")
	if end != (Point{X: 400, Y: 330}) {
		t.Errorf("non-table anchor = %v, want box center", end)
	}

	_, end, _, _ = Anchors(left, right, "id", "missing")
	if end.Y != 36+28+14 {
		t.Errorf("unknown column should fall back to the middle row, got y=%v", end.Y)
	}
}

func TestObstacles(t *testing.T) {
	nodes := []Node{
		boxNode("a", 0, 0, 100, 100),
		boxNode("b", 200, 0, 100, 100),
		boxNode("c", 400, 0, 100, 100),
	}
	got := Obstacles(nodes, "a", "b", 4, 14)
	want := []Rect{
		{X: -4, Y: -4, W: 108, H: 108},
		{X: 196, Y: -4, W: 108, H: 108},
		{X: 386, Y: -14, W: 128, H: 128},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Obstacles() = %v, want %v", got, want)
	}
}

func TestRouteClearPath(t *testing.T) {
	nodes := []Node{
		tableNode("users", 0, 0, 200, "id", "name", "email"),
		tableNode("orders", 400, 200, 200, "id", "user_id"),
	}
	r := New(nodes, DefaultOptions())

	edge, ok := r.Route(Request{ID: "e", SourceNode: "users", SourceColumn: "email", TargetNode: "orders", TargetColumn: "id", Label: "email"})
	if !ok {
		t.Fatal("Route() rejected known nodes")
	}
	if edge.Animated {
		t.Fatal("expected a searched path, got the fallback")
	}

	pts := edge.Points
	start, end := Point{X: 200, Y: 106}, Point{X: 400, Y: 250}
	if pts[0] != start || pts[len(pts)-1] != end {
		t.Errorf("endpoints = %v, %v; want %v, %v", pts[0], pts[len(pts)-1], start, end)
	}
	assertOrthogonal(t, pts)

	// one real bend plus at most the two corners added at the anchors
	if bends := len(pts) - 2; bends > 3 {
		t.Errorf("path has %d bends: %v", bends, pts)
	}
	if pts[1].Y != start.Y {
		t.Errorf("edge should leave the source horizontally: %v", pts)
	}
	if pts[len(pts)-2].Y != end.Y {
		t.Errorf("edge should enter the target horizontally: %v", pts)
	}
}

func TestRouteStraightLine(t *testing.T) {
	nodes := []Node{
		boxNode("a", 0, 0, 200, 100),
		boxNode("b", 400, 0, 200, 100),
	}
	edge, _ := New(nodes, DefaultOptions()).Route(Request{SourceNode: "a", TargetNode: "b"})

	want := []Point{{X: 200, Y: 50}, {X: 400, Y: 50}}
	if !reflect.DeepEqual(edge.Points, want) {
		t.Errorf("Points = %v, want %v", edge.Points, want)
	}
	wantArrow := []Point{{X: 390, Y: 55}, {X: 390, Y: 45}}
	if !reflect.DeepEqual(edge.Arrow, wantArrow) {
		t.Errorf("Arrow = %v, want %v", edge.Arrow, wantArrow)
	}
	if edge.LabelPos != (Point{X: 300, Y: 38}) {
		t.Errorf("LabelPos = %v", edge.LabelPos)
	}
}

func TestRouteAvoidsObstacle(t *testing.T) {
	blocker := boxNode("blocker", 300, -100, 100, 400)
	nodes := []Node{
		boxNode("a", 0, 0, 200, 100),
		blocker,
		boxNode("b", 600, 0, 200, 100),
	}
	edge, _ := New(nodes, DefaultOptions()).Route(Request{SourceNode: "a", TargetNode: "b"})

	if edge.Animated {
		t.Fatal("expected a searched path around the blocker")
	}
	assertOrthogonal(t, edge.Points)
	for i := 0; i+1 < len(edge.Points); i++ {
		if crossesRect(edge.Points[i], edge.Points[i+1], blocker.Rect) {
			t.Errorf("segment %v -> %v crosses the blocker", edge.Points[i], edge.Points[i+1])
		}
	}
}

func TestRouteSelfReference(t *testing.T) {
	n := tableNode("nodes", 0, 0, 200, "id", "parent_id")
	edge, _ := New([]Node{n}, DefaultOptions()).Route(Request{SourceNode: "nodes", SourceColumn: "parent_id", TargetNode: "nodes", TargetColumn: "id"})

	if edge.Animated {
		t.Fatal("expected a searched path around the node")
	}
	pts := edge.Points
	if pts[0] != (Point{X: 200, Y: 78}) || pts[len(pts)-1] != (Point{X: 0, Y: 50}) {
		t.Errorf("endpoints = %v, %v", pts[0], pts[len(pts)-1])
	}
	assertOrthogonal(t, pts)
	for i := 0; i+1 < len(pts); i++ {
		if crossesRect(pts[i], pts[i+1], n.Rect) {
			t.Errorf("segment %v -> %v crosses its own node", pts[i], pts[i+1])
		}
	}
}

func TestRouteIterationCapFallsBack(t *testing.T) {
	nodes := []Node{
		boxNode("a", 0, 0, 200, 100),
		boxNode("b", 600, 200, 200, 100),
	}
	opts := DefaultOptions()
	opts.MaxIterations = 1

	edge, _ := New(nodes, opts).Route(Request{SourceNode: "a", TargetNode: "b"})
	if !edge.Animated {
		t.Error("expected the fallback path to be flagged")
	}
	want := []Point{{X: 200, Y: 50}, {X: 400, Y: 50}, {X: 400, Y: 250}, {X: 600, Y: 250}}
	if !reflect.DeepEqual(edge.Points, want) {
		t.Errorf("Points = %v, want %v", edge.Points, want)
	}
}

func TestRouteTerminatesWhenGoalIsWalledIn(t *testing.T) {
	nodes := []Node{
		boxNode("a", 0, 0, 100, 100),
		boxNode("b", 500, 500, 100, 100),
		boxNode("top", 440, 440, 220, 20),
		boxNode("bottom", 440, 640, 220, 20),
		boxNode("left", 440, 440, 20, 220),
		boxNode("right", 640, 440, 20, 220),
	}
	edge, ok := New(nodes, DefaultOptions()).Route(Request{SourceNode: "a", TargetNode: "b"})
	if !ok {
		t.Fatal("Route() rejected known nodes")
	}
	if !edge.Animated {
		t.Error("an unreachable goal should produce the fallback path")
	}
	assertOrthogonal(t, edge.Points)
}

func TestRouteFarApartNodesFallsBack(t *testing.T) {
	nodes := []Node{
		boxNode("a", 0, 0, 200, 100),
		boxNode("b", 1e6, 1e6, 200, 100),
		boxNode("c", -1e6, 5e5, 200, 100),
	}
	r := New(nodes, DefaultOptions())

	started := time.Now()
	edges := r.RouteAll([]Request{
		{ID: "ab", SourceNode: "a", TargetNode: "b"},
		{ID: "cb", SourceNode: "c", TargetNode: "b"},
	})
	if elapsed := time.Since(started); elapsed > 10*time.Second {
		t.Errorf("RouteAll() took %v", elapsed)
	}

	if len(edges) != 2 {
		t.Fatalf("RouteAll() returned %d edges, want 2", len(edges))
	}
	for _, e := range edges {
		if !e.Animated {
			t.Errorf("edge %s: expected the fallback path", e.ID)
		}
		assertOrthogonal(t, e.Points)
	}
}

func TestRouteUnknownNode(t *testing.T) {
	r := New([]Node{boxNode("a", 0, 0, 10, 10)}, DefaultOptions())
	if _, ok := r.Route(Request{SourceNode: "a", TargetNode: "missing"}); ok {
		t.Error("Route() accepted an unknown target")
	}
}

func TestRouteDeterministic(t *testing.T) {
	nodes := []Node{
		tableNode("a", 0, 0, 200, "id", "b_id", "c_id"),
		tableNode("b", 500, 300, 180, "id"),
		tableNode("c", 250, 120, 160, "id", "name"),
	}
	req := Request{SourceNode: "a", SourceColumn: "b_id", TargetNode: "b", TargetColumn: "id"}

	first, _ := New(nodes, DefaultOptions()).Route(req)
	for i := 0; i < 3; i++ {
		again, _ := New(nodes, DefaultOptions()).Route(req)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %v vs %v", i, first.Points, again.Points)
		}
	}
}

func TestRouteAll(t *testing.T) {
	nodes := []Node{
		tableNode("a", 0, 0, 200, "id", "b_id", "c_id"),
		tableNode("b", 500, 300, 180, "id"),
		tableNode("c", 250, 120, 160, "id", "name"),
	}
	reqs := []Request{
		{ID: "1", SourceNode: "a", SourceColumn: "b_id", TargetNode: "b", TargetColumn: "id"},
		{ID: "2", SourceNode: "a", SourceColumn: "c_id", TargetNode: "c", TargetColumn: "id"},
		{ID: "3", SourceNode: "a", TargetNode: "gone"},
		{ID: "4", SourceNode: "c", SourceColumn: "name", TargetNode: "b", TargetColumn: "id"},
	}

	opts := DefaultOptions()
	opts.Workers = 3
	r := New(nodes, opts)
	edges := r.RouteAll(reqs)

	if len(edges) != 3 {
		t.Fatalf("got %d edges, want 3", len(edges))
	}
	for i, id := range []string{"1", "2", "4"} {
		if edges[i].ID != id {
			t.Errorf("edges[%d].ID = %q, want %q", i, edges[i].ID, id)
		}
		want, _ := r.Route(reqs[map[string]int{"1": 0, "2": 1, "4": 3}[id]])
		if !reflect.DeepEqual(edges[i], want) {
			t.Errorf("edge %s differs from sequential routing", id)
		}
		assertOrthogonal(t, edges[i].Points)
	}

	if got := r.RouteAll(nil); len(got) != 0 {
		t.Errorf("RouteAll(nil) = %v", got)
	}
}

func TestLabelPosition(t *testing.T) {
	tests := []struct {
		name string
		pts  []Point
		want Point
	}{
		{"horizontal longest", []Point{{0, 0}, {100, 0}, {100, 30}}, Point{50, -12}},
		{"vertical longest", []Point{{0, 0}, {20, 0}, {20, 100}}, Point{32, 50}},
		{"first of equal segments", []Point{{0, 0}, {40, 0}, {40, 40}}, Point{20, -12}},
		{"single point", []Point{{5, 5}}, Point{5, -7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LabelPosition(tt.pts, 12); got != tt.want {
				t.Errorf("LabelPosition() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestArrowhead(t *testing.T) {
	got := Arrowhead([]Point{{0, 0}, {0, 50}}, 10, 5)
	want := []Point{{-5, 40}, {5, 40}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Arrowhead() = %v, want %v", got, want)
	}

	if got := Arrowhead([]Point{{3, 3}, {3, 3}}, 10, 5); got != nil {
		t.Errorf("zero-length segment should have no arrowhead, got %v", got)
	}
	if got := Arrowhead([]Point{{3, 3}}, 10, 5); got != nil {
		t.Errorf("single point should have no arrowhead, got %v", got)
	}
}

func TestCompress(t *testing.T) {
	got := compress([]Point{{0, 0}, {10, 0}, {10, 0}, {20, 0}, {20, 10}, {20, 30}, {30, 30}})
	want := []Point{{0, 0}, {20, 0}, {20, 30}, {30, 30}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("compress() = %v, want %v", got, want)
	}
}

func TestSquareEnds(t *testing.T) {
	got := squareEnds([]Point{{0, 3}, {20, 0}, {20, 50}, {40, 47}})
	want := []Point{{0, 3}, {20, 3}, {20, 47}, {40, 47}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("squareEnds() = %v, want %v", got, want)
	}

	got = squareEnds([]Point{{0, 0}, {40, 20}})
	want = []Point{{0, 0}, {20, 0}, {20, 20}, {40, 20}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("squareEnds() on a diagonal pair = %v, want %v", got, want)
	}
}
