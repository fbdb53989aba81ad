// Package toc reads a compiled Manifestation back into a nested, ordered
// table of contents and renders it as outline notation or canonical JSON.
//
// Children are ordered by walking Sequence chains from their heads. Heads
// are ordered by embodiment position, which is document order. Headings
// with no Aggregation parent are collected as unreachable subtrees.
package toc

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/folio/internal/ir"
)

// ErrNoRoot is returned when a Manifestation has no root embodiment.
var ErrNoRoot = errors.New("manifestation has no root embodiment")

// Source is the read side of a compiled graph. Both store.Store and
// compiler.MemoryTarget implement it.
type Source interface {
	ReadManifestation(ctx context.Context, id string) (ir.Manifestation, error)
	ReadEmbodiments(ctx context.Context, manifestationID string) ([]ir.Embodiment, error)
	ReadExpressionRelations(ctx context.Context, manifestationID string) ([]ir.Relation, error)
	ReadExpression(ctx context.Context, id string) (ir.Expression, error)
	ReadWork(ctx context.Context, id string) (ir.Work, error)
	ReadPerson(ctx context.Context, id string) (ir.Person, error)
}

// TOC is the table of contents of one Manifestation.
type TOC struct {
	Manifestation ir.Manifestation
	Root          *Entry

	// Unreachable holds subtrees whose top heading has no Aggregation
	// parent, in document order.
	Unreachable []*Entry
}

// Entry is one Work/Expression pair with resolved credits.
type Entry struct {
	WorkID       string
	ExpressionID string
	Title        string
	Position     *int64 // nil for the root

	Creators  []string // display names in credit order
	Realizers []string // display names in credit order

	Children []*Entry
}

// Walk calls fn for e and its descendants in order. depth starts at 0.
func (e *Entry) Walk(fn func(e *Entry, depth int)) {
	e.walk(0, fn)
}

func (e *Entry) walk(depth int, fn func(e *Entry, depth int)) {
	fn(e, depth)
	for _, c := range e.Children {
		c.walk(depth+1, fn)
	}
}

// Build reads the Manifestation from src.
func Build(ctx context.Context, src Source, manifestationID string) (*TOC, error) {
	m, err := src.ReadManifestation(ctx, manifestationID)
	if err != nil {
		return nil, fmt.Errorf("build toc: %w", err)
	}
	embs, err := src.ReadEmbodiments(ctx, manifestationID)
	if err != nil {
		return nil, fmt.Errorf("build toc: %w", err)
	}
	if len(embs) == 0 || !embs[0].IsRoot() {
		return nil, fmt.Errorf("build toc %s: %w", manifestationID, ErrNoRoot)
	}
	rels, err := src.ReadExpressionRelations(ctx, manifestationID)
	if err != nil {
		return nil, fmt.Errorf("build toc: %w", err)
	}

	b := &tocBuilder{
		src:      src,
		position: make(map[string]*int64, len(embs)),
		parent:   make(map[string]string),
		next:     make(map[string]string),
		hasPrev:  make(map[string]bool),
		children: make(map[string][]string),
		persons:  make(map[string]string),
	}
	for _, e := range embs {
		b.position[e.ExpressionID] = e.Position
	}
	for _, r := range rels {
		switch r.Kind {
		case ir.RelationAggregation:
			b.parent[r.To] = r.From
		case ir.RelationSequence:
			b.next[r.From] = r.To
			b.hasPrev[r.To] = true
		}
	}
	b.orderChildren(embs)

	root, err := b.entry(ctx, embs[0].ExpressionID, map[string]bool{})
	if err != nil {
		return nil, err
	}
	t := &TOC{Manifestation: m, Root: root}

	for _, e := range embs[1:] {
		if _, ok := b.parent[e.ExpressionID]; ok {
			continue
		}
		sub, err := b.entry(ctx, e.ExpressionID, map[string]bool{})
		if err != nil {
			return nil, err
		}
		t.Unreachable = append(t.Unreachable, sub)
	}
	return t, nil
}

type tocBuilder struct {
	src      Source
	position map[string]*int64
	parent   map[string]string
	next     map[string]string
	hasPrev  map[string]bool
	children map[string][]string
	persons  map[string]string
}

// orderChildren fills children: chain heads in position order, each
// followed by its chain. embs are already in position order.
func (b *tocBuilder) orderChildren(embs []ir.Embodiment) {
	placed := make(map[string]bool)
	for _, e := range embs {
		id := e.ExpressionID
		p, ok := b.parent[id]
		if !ok || b.hasPrev[id] {
			continue
		}
		for c := id; c != "" && !placed[c]; c = b.next[c] {
			if b.parent[c] != p {
				break
			}
			placed[c] = true
			b.children[p] = append(b.children[p], c)
		}
	}
	// Children whose predecessor has another parent were not reached from
	// any head; keep them in position order.
	for _, e := range embs {
		id := e.ExpressionID
		if p, ok := b.parent[id]; ok && !placed[id] {
			placed[id] = true
			b.children[p] = append(b.children[p], id)
		}
	}
}

func (b *tocBuilder) entry(ctx context.Context, exprID string, seen map[string]bool) (*Entry, error) {
	if seen[exprID] {
		return nil, fmt.Errorf("build toc: aggregation cycle at expression %s", exprID)
	}
	seen[exprID] = true

	expr, err := b.src.ReadExpression(ctx, exprID)
	if err != nil {
		return nil, fmt.Errorf("build toc: %w", err)
	}
	work, err := b.src.ReadWork(ctx, expr.WorkID)
	if err != nil {
		return nil, fmt.Errorf("build toc: %w", err)
	}

	e := &Entry{
		WorkID:       work.ID,
		ExpressionID: expr.ID,
		Title:        expr.Title,
		Position:     b.position[exprID],
	}
	if e.Creators, err = b.names(ctx, work.Creators); err != nil {
		return nil, err
	}
	if e.Realizers, err = b.names(ctx, expr.Realizers); err != nil {
		return nil, err
	}

	for _, c := range b.children[exprID] {
		child, err := b.entry(ctx, c, seen)
		if err != nil {
			return nil, err
		}
		e.Children = append(e.Children, child)
	}
	return e, nil
}

func (b *tocBuilder) names(ctx context.Context, ids []string) ([]string, error) {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		name, ok := b.persons[id]
		if !ok {
			p, err := b.src.ReadPerson(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("build toc: %w", err)
			}
			name = p.DisplayName
			b.persons[id] = name
		}
		out = append(out, name)
	}
	return out, nil
}

// sameCredits reports whether an entry carries exactly the given creators
// and no realizers.
func sameCredits(e *Entry, creators []string) bool {
	return len(e.Realizers) == 0 && slices.Equal(e.Creators, creators)
}
