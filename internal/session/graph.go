package session

import (
	"cmp"
	"slices"

	"github.com/roach88/francagen/internal/ir"
)

// Edge states that Referencer's definition requires Referenced to be defined
// first.
type Edge struct {
	Referencer ir.DeclName `json:"referencer"`
	Referenced ir.DeclName `json:"referenced"`
}

// Graph is the set of depends-on edges recorded for one session.
// It knows names only, never declaration kinds or content.
type Graph struct {
	edges map[Edge]struct{}
	deps  map[ir.DeclName][]ir.DeclName // referencer -> referenced, insertion order
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		edges: make(map[Edge]struct{}),
		deps:  make(map[ir.DeclName][]ir.DeclName),
	}
}

// AddEdge records that referencer depends on referenced. Duplicate edges are
// ignored. Self-edges are stored but never constrain ordering.
func (g *Graph) AddEdge(referencer, referenced ir.DeclName) {
	e := Edge{Referencer: referencer, Referenced: referenced}
	if _, ok := g.edges[e]; ok {
		return
	}
	g.edges[e] = struct{}{}
	g.deps[referencer] = append(g.deps[referencer], referenced)
}

// HasEdge reports whether referencer depends on referenced.
func (g *Graph) HasEdge(referencer, referenced ir.DeclName) bool {
	_, ok := g.edges[Edge{Referencer: referencer, Referenced: referenced}]
	return ok
}

// Dependencies returns the names referencer depends on, in the order the
// edges were added.
func (g *Graph) Dependencies(referencer ir.DeclName) []ir.DeclName {
	return slices.Clone(g.deps[referencer])
}

// Edges returns all edges sorted by (referencer, referenced).
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for e := range g.edges {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b Edge) int {
		if c := cmp.Compare(a.Referencer, b.Referencer); c != 0 {
			return c
		}
		return cmp.Compare(a.Referenced, b.Referenced)
	})
	return out
}

// Len returns the number of distinct edges.
func (g *Graph) Len() int {
	return len(g.edges)
}

// Reset removes all edges.
func (g *Graph) Reset() {
	clear(g.edges)
	clear(g.deps)
}
