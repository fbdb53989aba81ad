package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGraph() *Graph {
	return NewGraph(Entry{WorkID: "w-root", ExpressionID: "e-root", Title: "Book"})
}

func TestGraph_AttachSingleParent(t *testing.T) {
	g := newTestGraph()
	a := g.Add(Entry{Title: "A", Depth: 1})
	b := g.Add(Entry{Title: "B", Depth: 1})

	require.NoError(t, g.Attach(RootKey, a))
	require.NoError(t, g.Attach(a, b))

	err := g.Attach(RootKey, b)
	assert.ErrorIs(t, err, ErrHasParent)

	p, ok := g.Parent(b)
	require.True(t, ok)
	assert.Equal(t, a, p)
}

func TestGraph_AttachRejectsRootAndCycles(t *testing.T) {
	g := newTestGraph()
	a := g.Add(Entry{Title: "A"})
	b := g.Add(Entry{Title: "B"})
	require.NoError(t, g.Attach(a, b))

	assert.ErrorIs(t, g.Attach(a, RootKey), ErrRootChild)
	assert.ErrorIs(t, g.Attach(b, a), ErrCycle)
	assert.ErrorIs(t, g.Attach(a, NodeKey(99)), ErrUnknownNode)
}

func TestGraph_ChainSiblings(t *testing.T) {
	g := newTestGraph()
	a := g.Add(Entry{Title: "A"})
	b := g.Add(Entry{Title: "B"})
	c := g.Add(Entry{Title: "C"})
	for _, k := range []NodeKey{a, b, c} {
		require.NoError(t, g.Attach(RootKey, k))
	}

	require.NoError(t, g.Chain(a, b))
	require.NoError(t, g.Chain(b, c))

	assert.ErrorIs(t, g.Chain(a, c), ErrHasSuccessor)
	assert.Equal(t, []NodeKey{a, b, c}, g.Children(RootKey))

	next, ok := g.Next(a)
	require.True(t, ok)
	assert.Equal(t, b, next)
	prev, ok := g.Prev(c)
	require.True(t, ok)
	assert.Equal(t, b, prev)
}

func TestGraph_ChainRejectsSecondPredecessor(t *testing.T) {
	g := newTestGraph()
	a := g.Add(Entry{Title: "A"})
	b := g.Add(Entry{Title: "B"})
	c := g.Add(Entry{Title: "C"})
	for _, k := range []NodeKey{a, b, c} {
		require.NoError(t, g.Attach(RootKey, k))
	}
	require.NoError(t, g.Chain(a, c))

	assert.ErrorIs(t, g.Chain(b, c), ErrHasPredecessor)
}

func TestGraph_ChainRequiresSharedParent(t *testing.T) {
	g := newTestGraph()
	a := g.Add(Entry{Title: "A"})
	b := g.Add(Entry{Title: "B"})
	c := g.Add(Entry{Title: "C"})
	orphan := g.Add(Entry{Title: "orphan"})
	require.NoError(t, g.Attach(RootKey, a))
	require.NoError(t, g.Attach(a, b))
	require.NoError(t, g.Attach(RootKey, c))

	assert.ErrorIs(t, g.Chain(b, c), ErrNotSiblings)
	assert.ErrorIs(t, g.Chain(c, orphan), ErrNotSiblings)
	assert.ErrorIs(t, g.Chain(a, a), ErrUnknownNode)
}

func TestGraph_ChildrenWithDisjointChains(t *testing.T) {
	g := newTestGraph()
	a := g.Add(Entry{Title: "A"})
	b := g.Add(Entry{Title: "B"})
	c := g.Add(Entry{Title: "C"})
	d := g.Add(Entry{Title: "D"})
	for _, k := range []NodeKey{a, b, c, d} {
		require.NoError(t, g.Attach(RootKey, k))
	}
	require.NoError(t, g.Chain(a, b))
	require.NoError(t, g.Chain(c, d))

	assert.Equal(t, []NodeKey{a, b, c, d}, g.Children(RootKey))
}

func TestGraph_OrphansAndReachability(t *testing.T) {
	g := newTestGraph()
	a := g.Add(Entry{Title: "A"})
	b := g.Add(Entry{Title: "B"})
	c := g.Add(Entry{Title: "C"})
	require.NoError(t, g.Attach(RootKey, a))
	require.NoError(t, g.Attach(a, b))

	assert.Equal(t, []NodeKey{c}, g.Orphans())
	assert.True(t, g.Reachable(b))
	assert.True(t, g.Reachable(RootKey))
	assert.False(t, g.Reachable(c))
	assert.Equal(t, 4, g.Len())
	assert.Equal(t, "B", g.Entry(b).Title)
}
