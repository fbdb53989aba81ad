package ir

import (
	"errors"
	"fmt"
)

// Arena errors. Each names the structural rule the rejected edge would break.
var (
	ErrUnknownNode    = errors.New("unknown node")
	ErrHasParent      = errors.New("node already has an aggregation parent")
	ErrRootChild      = errors.New("root cannot be aggregated")
	ErrCycle          = errors.New("aggregation would create a cycle")
	ErrHasSuccessor   = errors.New("node already has a sequence successor")
	ErrHasPredecessor = errors.New("node already has a sequence predecessor")
	ErrNotSiblings    = errors.New("sequence endpoints do not share an aggregation parent")
)

// NodeKey addresses a node in a Graph. Keys are stable for the life of the arena.
type NodeKey int

// RootKey is the key of the synthetic root, always the first node.
const RootKey NodeKey = 0

// Entry is the Work/Expression pair held by one graph node.
type Entry struct {
	WorkID       string
	ExpressionID string
	Title        string
	Depth        int // outline depth; 0 for the root
	Line         int // 1-based source line; 0 for the root
}

// link is an optional reference to another node.
type link struct {
	key NodeKey
	ok  bool
}

type node struct {
	entry  Entry
	parent link
	prev   link
	next   link
}

// Graph is an arena of Work/Expression pairs with Aggregation and Sequence
// topology. A node holds at most one parent and at most one predecessor and
// successor, so an invalid shape cannot be represented. Edges are only added,
// never removed.
//
// A Graph is owned by a single compilation and is not safe for concurrent use.
type Graph struct {
	nodes []node
}

// NewGraph creates a graph holding only the synthetic root.
func NewGraph(root Entry) *Graph {
	return &Graph{nodes: []node{{entry: root}}}
}

// Add appends an unattached node and returns its key.
func (g *Graph) Add(e Entry) NodeKey {
	g.nodes = append(g.nodes, node{entry: e})
	return NodeKey(len(g.nodes) - 1)
}

// Len returns the number of nodes including the root.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Entry returns the payload of a node.
func (g *Graph) Entry(k NodeKey) Entry {
	return g.nodes[k].entry
}

// Parent returns the aggregation parent of k, if any.
func (g *Graph) Parent(k NodeKey) (NodeKey, bool) {
	l := g.nodes[k].parent
	return l.key, l.ok
}

// Next returns the sequence successor of k, if any.
func (g *Graph) Next(k NodeKey) (NodeKey, bool) {
	l := g.nodes[k].next
	return l.key, l.ok
}

// Prev returns the sequence predecessor of k, if any.
func (g *Graph) Prev(k NodeKey) (NodeKey, bool) {
	l := g.nodes[k].prev
	return l.key, l.ok
}

// Reachable reports whether k can be reached from the root by aggregation edges.
func (g *Graph) Reachable(k NodeKey) bool {
	for k != RootKey {
		p, ok := g.Parent(k)
		if !ok {
			return false
		}
		k = p
	}
	return true
}

// Attach records Aggregation(parent, child).
func (g *Graph) Attach(parent, child NodeKey) error {
	if !g.valid(parent) || !g.valid(child) {
		return fmt.Errorf("attach %d -> %d: %w", parent, child, ErrUnknownNode)
	}
	if child == RootKey {
		return fmt.Errorf("attach %d -> %d: %w", parent, child, ErrRootChild)
	}
	if g.nodes[child].parent.ok {
		return fmt.Errorf("attach %d -> %d: %w", parent, child, ErrHasParent)
	}
	for a, ok := parent, true; ok; a, ok = g.Parent(a) {
		if a == child {
			return fmt.Errorf("attach %d -> %d: %w", parent, child, ErrCycle)
		}
	}
	g.nodes[child].parent = link{key: parent, ok: true}
	return nil
}

// Chain records Sequence(pred, succ). Both nodes must already be attached
// to the same parent, so one parent's children can only form sibling chains.
func (g *Graph) Chain(pred, succ NodeKey) error {
	if !g.valid(pred) || !g.valid(succ) || pred == succ {
		return fmt.Errorf("chain %d -> %d: %w", pred, succ, ErrUnknownNode)
	}
	pp, pok := g.Parent(pred)
	sp, sok := g.Parent(succ)
	if !pok || !sok || pp != sp {
		return fmt.Errorf("chain %d -> %d: %w", pred, succ, ErrNotSiblings)
	}
	if g.nodes[pred].next.ok {
		return fmt.Errorf("chain %d -> %d: %w", pred, succ, ErrHasSuccessor)
	}
	if g.nodes[succ].prev.ok {
		return fmt.Errorf("chain %d -> %d: %w", pred, succ, ErrHasPredecessor)
	}
	g.nodes[pred].next = link{key: succ, ok: true}
	g.nodes[succ].prev = link{key: pred, ok: true}
	return nil
}

// Children returns the children of parent in sibling order: each chain is
// walked from its head, and heads appear in insertion order.
func (g *Graph) Children(parent NodeKey) []NodeKey {
	var out []NodeKey
	for k := range g.nodes {
		key := NodeKey(k)
		p, ok := g.Parent(key)
		if !ok || p != parent {
			continue
		}
		if _, hasPrev := g.Prev(key); hasPrev {
			continue
		}
		for c, ok := key, true; ok; c, ok = g.Next(c) {
			out = append(out, c)
		}
	}
	return out
}

// Orphans returns the non-root nodes with no aggregation parent, in insertion order.
func (g *Graph) Orphans() []NodeKey {
	var out []NodeKey
	for k := 1; k < len(g.nodes); k++ {
		if !g.nodes[k].parent.ok {
			out = append(out, NodeKey(k))
		}
	}
	return out
}

func (g *Graph) valid(k NodeKey) bool {
	return k >= 0 && int(k) < len(g.nodes)
}
