// Package route computes orthogonal connectors between diagram nodes.
//
// Each connector is found with an A* search over a coarse grid in which every
// node is an inflated obstacle. The path is then cleaned up into a minimal
// polyline whose segments are all horizontal or vertical, and decorated with
// a label position and arrowhead. When the search runs out of iterations the
// connector degrades to a fixed three-segment path instead of failing.
package route

import (
	"runtime"
	"sync"
)

// Options tunes the router. The zero value is not useful; start from
// DefaultOptions.
type Options struct {
	GridSize       float64
	EndpointMargin float64
	ObstacleMargin float64
	SearchMargin   float64
	MaxIterations  int
	LabelOffset    float64
	ArrowLength    float64
	ArrowSpread    float64
	// Workers bounds RouteAll concurrency; 0 means GOMAXPROCS
	Workers int
}

// DefaultOptions returns the router settings used for diagrams
func DefaultOptions() Options {
	return Options{
		GridSize:       10,
		EndpointMargin: 4,
		ObstacleMargin: 14,
		SearchMargin:   200,
		MaxIterations:  40000,
		LabelOffset:    12,
		ArrowLength:    10,
		ArrowSpread:    5,
	}
}

// Request asks for one connector between two nodes
type Request struct {
	ID           string
	SourceNode   string
	SourceColumn string
	TargetNode   string
	TargetColumn string
	Label        string
}

// Edge is a routed connector. Animated marks edges that fell back to the
// straight three-segment path and may cross other nodes.
type Edge struct {
	ID       string  `json:"id"`
	Source   string  `json:"source"`
	Target   string  `json:"target"`
	Points   []Point `json:"points"`
	Label    string  `json:"label"`
	LabelPos Point   `json:"labelPos"`
	Arrow    []Point `json:"arrow,omitempty"`
	Animated bool    `json:"animated"`
}

// Router routes connectors over a fixed set of nodes. It holds no mutable
// state, so one Router may serve concurrent Route calls.
type Router struct {
	opts  Options
	nodes []Node
	byID  map[string]int
}

// New creates a router over the given nodes
func New(nodes []Node, opts Options) *Router {
	byID := make(map[string]int, len(nodes))
	for i, n := range nodes {
		if _, dup := byID[n.ID]; !dup {
			byID[n.ID] = i
		}
	}
	return &Router{opts: opts, nodes: nodes, byID: byID}
}

// Route computes the connector for one request. ok is false when either
// endpoint node is unknown.
func (r *Router) Route(req Request) (Edge, bool) {
	si, ok := r.byID[req.SourceNode]
	if !ok {
		return Edge{}, false
	}
	ti, ok := r.byID[req.TargetNode]
	if !ok {
		return Edge{}, false
	}
	src, dst := r.nodes[si], r.nodes[ti]

	start, end, startSide, endSide := Anchors(src, dst, req.SourceColumn, req.TargetColumn)
	obstacles := Obstacles(r.nodes, src.ID, dst.ID, r.opts.EndpointMargin, r.opts.ObstacleMargin)

	pts, found := FindPath(start, end, startSide, endSide, obstacles, r.opts)
	if !found {
		pts = fallbackPath(start, end)
	}

	return Edge{
		ID:       req.ID,
		Source:   src.ID,
		Target:   dst.ID,
		Points:   pts,
		Label:    req.Label,
		LabelPos: LabelPosition(pts, r.opts.LabelOffset),
		Arrow:    Arrowhead(pts, r.opts.ArrowLength, r.opts.ArrowSpread),
		Animated: !found,
	}, true
}

// RouteAll routes every request on a bounded pool of workers. Edges come
// back in request order; requests naming unknown nodes are left out.
func (r *Router) RouteAll(reqs []Request) []Edge {
	workers := r.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	workers = min(workers, len(reqs))

	edges := make([]Edge, len(reqs))
	routed := make([]bool, len(reqs))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				edges[i], routed[i] = r.Route(reqs[i])
			}
		}()
	}
	for i := range reqs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	out := make([]Edge, 0, len(reqs))
	for i, e := range edges {
		if routed[i] {
			out = append(out, e)
		}
	}
	return out
}

// FindPath searches for an orthogonal path between two anchors. found is
// false when the start or goal cannot be placed outside an obstacle, or the
// search exhausts opts.MaxIterations; callers then use the fallback path.
func FindPath(start, end Point, startSide, endSide Side, obstacles []Rect, opts Options) ([]Point, bool) {
	g := newGrid(opts.GridSize, start, end, obstacles, opts.SearchMargin)

	from, ok := g.escape(g.snap(start), startSide)
	if !ok {
		return nil, false
	}
	to, ok := g.escape(g.snap(end), endSide)
	if !ok {
		return nil, false
	}

	cells, ok := g.search(from, to, opts.MaxIterations)
	if !ok {
		return nil, false
	}
	return buildPath(g, cells, start, end), true
}

// Fallback returns the obstacle-unaware horizontal-vertical-horizontal path
func Fallback(start, end Point) []Point {
	return fallbackPath(start, end)
}
