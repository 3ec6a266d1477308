package formatter

import (
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	"github.com/tordrt/erdschema/internal/diagram"
	"github.com/tordrt/erdschema/internal/layout"
	"github.com/tordrt/erdschema/internal/route"
	"github.com/tordrt/erdschema/internal/schema"
)

const svgMargin = 40

// SVGFormatter renders diagram geometry as a standalone SVG document
type SVGFormatter struct {
	writer io.Writer
}

// NewSVGFormatter creates a new SVG formatter
func NewSVGFormatter(w io.Writer) *SVGFormatter {
	return &SVGFormatter{writer: w}
}

// Format writes the diagram. Edges are drawn first so cards cover any
// fallback path that crosses them.
func (f *SVGFormatter) Format(d *diagram.Diagram) error {
	var sb strings.Builder
	minX, minY, maxX, maxY := bounds(d)

	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s" font-family="monospace" font-size="12">`+"\n",
		num(minX-svgMargin), num(minY-svgMargin), num(maxX-minX+2*svgMargin), num(maxY-minY+2*svgMargin)))

	for _, e := range d.Edges {
		writeEdge(&sb, e)
	}
	for _, n := range d.Nodes {
		if n.IsTable {
			if t := d.Graph.Table(n.ID); t != nil {
				writeTable(&sb, n, *t)
			}
			continue
		}
		if e := d.Graph.Enum(strings.TrimPrefix(n.ID, schema.EnumNodePrefix)); e != nil {
			writeEnum(&sb, n, *e)
		}
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(f.writer, sb.String())
	return err
}

func bounds(d *diagram.Diagram) (minX, minY, maxX, maxY float64) {
	if len(d.Nodes) == 0 {
		return 0, 0, 0, 0
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	grow := func(x, y float64) {
		minX, minY = math.Min(minX, x), math.Min(minY, y)
		maxX, maxY = math.Max(maxX, x), math.Max(maxY, y)
	}
	for _, n := range d.Nodes {
		grow(n.Rect.X, n.Rect.Y)
		grow(n.Rect.X+n.Rect.W, n.Rect.Y+n.Rect.H)
	}
	for _, e := range d.Edges {
		for _, p := range e.Points {
			grow(p.X, p.Y)
		}
	}
	return minX, minY, maxX, maxY
}

func writeEdge(sb *strings.Builder, e route.Edge) {
	dash := ""
	if e.Animated {
		dash = ` stroke-dasharray="6 4"`
	}
	sb.WriteString(fmt.Sprintf(`  <polyline points="%s" fill="none" stroke="#64748b" stroke-width="1.5"%s/>`+"\n", points(e.Points), dash))

	if len(e.Arrow) == 2 && len(e.Points) > 0 {
		tip := e.Points[len(e.Points)-1]
		sb.WriteString(fmt.Sprintf(`  <polygon points="%s" fill="#64748b"/>`+"\n", points([]route.Point{e.Arrow[0], tip, e.Arrow[1]})))
	}
	if e.Label != "" {
		sb.WriteString(fmt.Sprintf(`  <text x="%s" y="%s" text-anchor="middle" fill="#475569">%s</text>`+"\n",
			num(e.LabelPos.X), num(e.LabelPos.Y), html.EscapeString(e.Label)))
	}
}

func writeTable(sb *strings.Builder, n route.Node, t schema.Table) {
	r := n.Rect
	sb.WriteString(fmt.Sprintf(`  <g id="%s">`+"\n", html.EscapeString(n.ID)))
	sb.WriteString(fmt.Sprintf(`    <rect x="%s" y="%s" width="%s" height="%s" rx="6" fill="#ffffff" stroke="#334155"/>`+"\n",
		num(r.X), num(r.Y), num(r.W), num(r.H)))
	sb.WriteString(fmt.Sprintf(`    <text x="%s" y="%s" font-weight="bold">%s</text>`+"\n",
		num(r.X+layout.Padding/2), num(r.Y+layout.HeaderHeight/2+4), html.EscapeString(t.Name)))

	for i, c := range t.Columns {
		y := r.Y + layout.HeaderHeight + float64(i)*layout.RowHeight + layout.RowHeight/2 + 4
		weight := ""
		if c.IsPrimaryKey {
			weight = ` font-weight="bold"`
		}
		sb.WriteString(fmt.Sprintf(`    <text x="%s" y="%s"%s>%s</text>`+"\n",
			num(r.X+layout.Padding/2), num(y), weight, html.EscapeString(c.Name)))
		sb.WriteString(fmt.Sprintf(`    <text x="%s" y="%s" text-anchor="end" fill="#64748b">%s</text>`+"\n",
			num(r.X+r.W-layout.Padding/2), num(y), html.EscapeString(c.Type)))
	}

	top := r.Y + layout.HeaderHeight + float64(len(t.Columns))*layout.RowHeight
	for i, idx := range t.Indexes {
		y := top + float64(i)*layout.IndexHeight + layout.IndexHeight/2 + 4
		sb.WriteString(fmt.Sprintf(`    <text x="%s" y="%s" font-size="10" fill="#7c3aed">%s</text>`+"\n",
			num(r.X+layout.Padding/2), num(y), html.EscapeString(formatIndex(idx))))
	}
	sb.WriteString("  </g>\n")
}

func writeEnum(sb *strings.Builder, n route.Node, e schema.Enum) {
	r := n.Rect
	sb.WriteString(fmt.Sprintf(`  <g id="%s">`+"\n", html.EscapeString(n.ID)))
	sb.WriteString(fmt.Sprintf(`    <rect x="%s" y="%s" width="%s" height="%s" rx="6" fill="#f5f3ff" stroke="#7c3aed"/>`+"\n",
		num(r.X), num(r.Y), num(r.W), num(r.H)))
	sb.WriteString(fmt.Sprintf(`    <text x="%s" y="%s" font-weight="bold">%s</text>`+"\n",
		num(r.X+layout.Padding/2), num(r.Y+layout.HeaderHeight/2+4), html.EscapeString(e.Name)))

	chipW := (r.W - 2*layout.Padding) / layout.ChipsPerRow
	for i, v := range e.Values {
		x := r.X + layout.Padding + float64(i%layout.ChipsPerRow)*chipW
		y := r.Y + layout.HeaderHeight + float64(i/layout.ChipsPerRow)*layout.ChipHeight + layout.ChipHeight/2 + 4
		sb.WriteString(fmt.Sprintf(`    <text x="%s" y="%s" fill="#5b21b6">%s</text>`+"\n",
			num(x), num(y), html.EscapeString(v)))
	}
	sb.WriteString("  </g>\n")
}

func points(pts []route.Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = num(p.X) + "," + num(p.Y)
	}
	return strings.Join(parts, " ")
}

// num prints coordinates without trailing zeros
func num(v float64) string {
	return fmt.Sprintf("%g", v)
}
