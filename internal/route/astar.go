package route

import "container/heap"

// manhattan is the search heuristic
func manhattan(a, b cell) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// openItem is a frontier entry. seq is the order in which the cell first
// joined the frontier; a cheaper route to it keeps that seq.
type openItem struct {
	c   cell
	g   int
	h   int
	seq int
}

// openSet orders the frontier by f score, then lower heuristic, then seq
type openSet []openItem

func (s openSet) Len() int { return len(s) }

func (s openSet) Less(i, j int) bool {
	fi, fj := s[i].g+s[i].h, s[j].g+s[j].h
	if fi != fj {
		return fi < fj
	}
	if s[i].h != s[j].h {
		return s[i].h < s[j].h
	}
	return s[i].seq < s[j].seq
}

func (s openSet) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

func (s *openSet) Push(x any) { *s = append(*s, x.(openItem)) }

func (s *openSet) Pop() any {
	old := *s
	item := old[len(old)-1]
	*s = old[:len(old)-1]
	return item
}

// search runs a four-directional A* from start to goal with unit step cost.
// Ties on f score break by lower heuristic and then by the order cells joined
// the frontier, so the result depends only on the grid. Backtracking uses an
// explicit parent map. It gives up after maxIter expansions.
func (g *grid) search(start, goal cell, maxIter int) ([]cell, bool) {
	if start == goal {
		return []cell{start}, true
	}

	open := &openSet{{c: start, h: manhattan(start, goal)}}
	seqOf := map[cell]int{start: 0}
	closed := make(map[cell]bool)
	gScore := map[cell]int{start: 0}
	parent := make(map[cell]cell)

	for iter := 0; iter < maxIter && open.Len() > 0; {
		item := heap.Pop(open).(openItem)
		cur := item.c
		if closed[cur] || item.g != gScore[cur] {
			continue
		}
		iter++

		if cur == goal {
			return backtrack(parent, start, goal), true
		}
		closed[cur] = true

		for _, d := range directions {
			next := cell{cur.X + d.X, cur.Y + d.Y}
			if closed[next] || g.isBlocked(next) {
				continue
			}
			tentative := gScore[cur] + 1
			if old, seen := gScore[next]; seen && tentative >= old {
				continue
			}
			gScore[next] = tentative
			parent[next] = cur
			seq, seen := seqOf[next]
			if !seen {
				seq = len(seqOf)
				seqOf[next] = seq
			}
			heap.Push(open, openItem{c: next, g: tentative, h: manhattan(next, goal), seq: seq})
		}
	}

	return nil, false
}

// backtrack follows parent links from goal to start and returns the cells in
// start-to-goal order.
func backtrack(parent map[cell]cell, start, goal cell) []cell {
	path := []cell{goal}
	for cur := goal; cur != start; {
		cur = parent[cur]
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
