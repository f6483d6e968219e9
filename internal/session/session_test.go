package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/francagen/internal/ir"
)

func TestStoreFirstWriteWins(t *testing.T) {
	s := New()

	assert.True(t, s.Store("Alpha", "struct Alpha { int a; };"))
	assert.False(t, s.Store("Alpha", "struct Alpha { int b; };"), "second store must be dropped")

	assert.Equal(t, 1, s.Registry.Len())
	entry, ok := s.Registry.Lookup("Alpha")
	require.True(t, ok)
	assert.Equal(t, "struct Alpha { int a; };", entry.Text)
}

func TestStorePreservesInsertionOrder(t *testing.T) {
	s := New()
	s.Store("C", "c")
	s.Store("A", "a")
	s.Store("B", "b")
	s.Store("A", "a2")

	assert.Equal(t, []ir.DeclName{"C", "A", "B"}, s.Registry.Names())

	pos, ok := s.Registry.Position("B")
	require.True(t, ok)
	assert.Equal(t, 2, pos)
}

func TestEntriesReturnsCopy(t *testing.T) {
	s := New()
	s.Store("A", "a")

	entries := s.Registry.Entries()
	entries[0].Text = "mutated"

	entry, _ := s.Registry.Lookup("A")
	assert.Equal(t, "a", entry.Text)
}

func TestResetClearsAllState(t *testing.T) {
	s := New()
	s.Store("Alpha", "a")
	s.Store("Beta", "b")
	s.Reference("Alpha", "Beta")

	s.Reset()

	assert.Zero(t, s.Registry.Len())
	assert.Zero(t, s.Graph.Len())
	assert.False(t, s.Graph.HasEdge("Alpha", "Beta"))
	_, ok := s.Registry.Position("Alpha")
	assert.False(t, ok, "position lookup must fail after reset")
	_, ok = s.Registry.Lookup("Beta")
	assert.False(t, ok)

	// Names are fresh again after reset
	assert.True(t, s.Store("Alpha", "a2"))
	entry, _ := s.Registry.Lookup("Alpha")
	assert.Equal(t, "a2", entry.Text)
}

func TestGraphEdgesIdempotent(t *testing.T) {
	g := NewGraph()
	g.AddEdge("A", "B")
	g.AddEdge("A", "B")
	g.AddEdge("A", "C")
	g.AddEdge("A", "A")

	assert.Equal(t, 3, g.Len())
	assert.True(t, g.HasEdge("A", "B"))
	assert.False(t, g.HasEdge("B", "A"), "edges are directed")
	assert.True(t, g.HasEdge("A", "A"), "self edges are stored")
	assert.Equal(t, []ir.DeclName{"B", "C", "A"}, g.Dependencies("A"))
	assert.Empty(t, g.Dependencies("Z"))
}

func TestGraphEdgesSorted(t *testing.T) {
	g := NewGraph()
	g.AddEdge("B", "A")
	g.AddEdge("A", "C")
	g.AddEdge("A", "B")

	assert.Equal(t, []Edge{
		{Referencer: "A", Referenced: "B"},
		{Referencer: "A", Referenced: "C"},
		{Referencer: "B", Referenced: "A"},
	}, g.Edges())
}
