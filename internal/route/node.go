package route

// Node is the geometry of one diagram node as supplied by the layout stage.
// Table nodes list their column names in row order so anchors can attach to
// a specific row; other nodes leave Columns nil.
type Node struct {
	ID        string   `json:"id"`
	Rect      Rect     `json:"rect"`
	IsTable   bool     `json:"isTable"`
	Columns   []string `json:"columns,omitempty"`
	RowTop    float64  `json:"rowTop"`
	RowHeight float64  `json:"rowHeight"`
}

// anchorY returns the vertical attachment point for the named column. Table
// nodes use the row center of the column, falling back to row ⌊n/2⌋ when the
// column is empty or unknown; other nodes use their vertical center.
func (n Node) anchorY(column string) float64 {
	if !n.IsTable || len(n.Columns) == 0 || n.RowHeight <= 0 {
		return n.Rect.CenterY()
	}

	row := len(n.Columns) / 2
	if column != "" {
		for i, name := range n.Columns {
			if name == column {
				row = i
				break
			}
		}
	}
	return n.Rect.Y + n.RowTop + float64(row)*n.RowHeight + n.RowHeight/2
}

// Anchors picks the attachment points of an edge from src to dst. The edge
// leaves the right side of src and enters the left side of dst when dst's
// center is not left of src's; otherwise both sides are mirrored.
func Anchors(src, dst Node, srcColumn, dstColumn string) (start, end Point, startSide, endSide Side) {
	if dst.Rect.CenterX() >= src.Rect.CenterX() {
		startSide, endSide = SideRight, SideLeft
		start.X = src.Rect.X + src.Rect.W
		end.X = dst.Rect.X
	} else {
		startSide, endSide = SideLeft, SideRight
		start.X = src.Rect.X
		end.X = dst.Rect.X + dst.Rect.W
	}
	start.Y = src.anchorY(srcColumn)
	end.Y = dst.anchorY(dstColumn)
	return start, end, startSide, endSide
}

// Obstacles inflates every node rectangle. The edge's own endpoint nodes get
// the small endpoint margin so the path can reach their sides; all other
// nodes get the larger obstacle margin.
func Obstacles(nodes []Node, srcID, dstID string, endpointMargin, obstacleMargin float64) []Rect {
	rects := make([]Rect, 0, len(nodes))
	for _, n := range nodes {
		m := obstacleMargin
		if n.ID == srcID || n.ID == dstID {
			m = endpointMargin
		}
		rects = append(rects, n.Rect.Inflate(m))
	}
	return rects
}
