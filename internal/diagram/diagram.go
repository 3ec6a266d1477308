// Package diagram composes extraction, layout and routing into one rebuild
// of the entity-relationship diagram.
package diagram

import (
	"github.com/tordrt/erdschema/internal/ddl"
	"github.com/tordrt/erdschema/internal/layout"
	"github.com/tordrt/erdschema/internal/route"
	"github.com/tordrt/erdschema/internal/schema"
)

// Diagram is the full result of one rebuild. Positions is what a caller
// should hand back as previous on the next rebuild.
type Diagram struct {
	Graph     *schema.Graph    `json:"graph"`
	Nodes     []route.Node     `json:"nodes"`
	Edges     []route.Edge     `json:"edges"`
	Positions layout.Positions `json:"positions"`
}

// Options controls a rebuild
type Options struct {
	Route route.Options
	// EnumEdges adds a connector from every enum-typed column to its
	// declared enum node.
	EnumEdges bool
}

// DefaultOptions returns the settings used by the CLI and the server
func DefaultOptions() Options {
	return Options{Route: route.DefaultOptions(), EnumEdges: true}
}

// Build rebuilds the diagram from definition text. previous may be nil.
func Build(text string, previous layout.Positions, opts Options) *Diagram {
	return FromGraph(ddl.Extract(text), previous, opts)
}

// FromGraph lays out and routes an already extracted graph
func FromGraph(g *schema.Graph, previous layout.Positions, opts Options) *Diagram {
	nodes, positions := layout.Layout(g, previous)
	router := route.New(nodes, opts.Route)
	edges := router.RouteAll(Requests(g, opts.EnumEdges))

	return &Diagram{
		Graph:     g,
		Nodes:     nodes,
		Edges:     edges,
		Positions: positions,
	}
}

// Requests derives the router input from the graph: one request per
// relation in discovery order, then optionally one per enum column.
func Requests(g *schema.Graph, enumEdges bool) []route.Request {
	reqs := make([]route.Request, 0, len(g.Relations))
	for _, r := range g.Relations {
		reqs = append(reqs, route.Request{
			ID:           r.ID(),
			SourceNode:   r.FromTable,
			SourceColumn: r.FromColumn,
			TargetNode:   r.ToTable,
			TargetColumn: r.ToColumn,
			Label:        r.FromColumn,
		})
	}
	if !enumEdges {
		return reqs
	}

	for _, t := range g.Tables {
		for _, c := range t.Columns {
			if !c.IsEnum || g.Enum(c.EnumName) == nil {
				continue
			}
			reqs = append(reqs, route.Request{
				ID:           t.Name + "." + c.Name + "->" + schema.EnumNodeID(c.EnumName),
				SourceNode:   t.Name,
				SourceColumn: c.Name,
				TargetNode:   schema.EnumNodeID(c.EnumName),
			})
		}
	}
	return reqs
}
