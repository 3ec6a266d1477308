// Package layout sizes schema nodes from their content and places them on
// the canvas.
package layout

import (
	"math"

	"github.com/tordrt/erdschema/internal/route"
	"github.com/tordrt/erdschema/internal/schema"
)

// Card metrics in canvas units
const (
	HeaderHeight  = 36
	RowHeight     = 28
	IndexHeight   = 22
	MinWidth      = 220
	CharWidth     = 7
	Padding       = 24
	BottomPadding = 8

	ChipsPerRow = 3
	ChipHeight  = 26
	ChipPadding = 16
	ChipGap     = 6

	GridColumns = 4
	Gap         = 80
)

// Positions maps a node ID (table name or enum node ID) to its top-left
// corner. It is the only state that survives between rebuilds.
type Positions map[string]route.Point

// Size returns the card size of a table: one row per column and one index
// card per index below the rows.
func Size(t schema.Table) (w, h float64) {
	chars := len(t.Name)
	for _, c := range t.Columns {
		// name, two spaces, type
		chars = max(chars, len(c.Name)+2+len(c.Type))
	}
	for _, idx := range t.Indexes {
		chars = max(chars, len(indexLabel(idx)))
	}

	w = math.Max(MinWidth, float64(chars*CharWidth+2*Padding))
	h = HeaderHeight + float64(len(t.Columns))*RowHeight + float64(len(t.Indexes))*IndexHeight + BottomPadding
	return w, h
}

// SizeEnum returns the card size of an enum. Values are drawn as chips,
// ChipsPerRow to a row.
func SizeEnum(e schema.Enum) (w, h float64) {
	longest := len(e.Name)
	for _, v := range e.Values {
		longest = max(longest, len(v))
	}
	chip := float64(longest*CharWidth + ChipPadding)
	perRow := min(len(e.Values), ChipsPerRow)

	w = math.Max(MinWidth, float64(perRow)*(chip+ChipGap)+2*Padding)
	rows := (len(e.Values) + ChipsPerRow - 1) / ChipsPerRow
	h = HeaderHeight + float64(rows)*ChipHeight + BottomPadding
	return w, h
}

func indexLabel(idx schema.Index) string {
	label := idx.Name + " (" + idx.Expression + ")"
	if idx.Unique {
		label = "unique " + label
	}
	return label
}

type item struct {
	node route.Node
	kept bool
}

// Layout sizes every table and enum and assigns positions. Nodes whose ID is
// in previous keep that position. New nodes are placed on a grid of
// GridColumns columns below every kept node. The returned Positions holds
// exactly the nodes of g, so stale entries from previous are dropped.
func Layout(g *schema.Graph, previous Positions) ([]route.Node, Positions) {
	items := make([]item, 0, len(g.Tables)+len(g.Enums))
	for _, t := range g.Tables {
		w, h := Size(t)
		cols := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			cols[i] = c.Name
		}
		items = append(items, item{node: route.Node{
			ID:        t.Name,
			Rect:      route.Rect{W: w, H: h},
			IsTable:   true,
			Columns:   cols,
			RowTop:    HeaderHeight,
			RowHeight: RowHeight,
		}})
	}
	for _, e := range g.Enums {
		w, h := SizeEnum(e)
		items = append(items, item{node: route.Node{
			ID:   schema.EnumNodeID(e.Name),
			Rect: route.Rect{W: w, H: h},
		}})
	}

	originY := 0.0
	anyKept := false
	for i := range items {
		p, ok := previous[items[i].node.ID]
		if !ok {
			continue
		}
		items[i].node.Rect.X, items[i].node.Rect.Y = p.X, p.Y
		items[i].kept = true
		bottom := p.Y + items[i].node.Rect.H + Gap
		if !anyKept || bottom > originY {
			originY = bottom
		}
		anyKept = true
	}

	placeGrid(items, originY)

	nodes := make([]route.Node, len(items))
	positions := make(Positions, len(items))
	for i, it := range items {
		nodes[i] = it.node
		positions[it.node.ID] = route.Point{X: it.node.Rect.X, Y: it.node.Rect.Y}
	}
	return nodes, positions
}

// placeGrid positions the items not kept from a previous layout. Every grid
// column is as wide as the widest new node; every grid row is as tall as its
// tallest node.
func placeGrid(items []item, originY float64) {
	var fresh []int
	cellW := 0.0
	for i, it := range items {
		if !it.kept {
			fresh = append(fresh, i)
			cellW = math.Max(cellW, it.node.Rect.W)
		}
	}
	cellW += Gap

	y := originY
	for start := 0; start < len(fresh); start += GridColumns {
		row := fresh[start:min(start+GridColumns, len(fresh))]
		rowH := 0.0
		for col, i := range row {
			items[i].node.Rect.X = float64(col) * cellW
			items[i].node.Rect.Y = y
			rowH = math.Max(rowH, items[i].node.Rect.H)
		}
		y += rowH + Gap
	}
}
