package compiler

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/folio/internal/ir"
)

// ErrNotFound is returned by MemoryTarget reads for unknown IDs.
var ErrNotFound = errors.New("not found")

// MemoryTarget is an in-memory Target used for dry runs and tests.
// It also implements the read side needed to render a table of contents.
//
// Records are kept in creation order. Person IDs are minted by the
// IDGenerator passed to NewMemoryTarget.
//
// Not safe for concurrent use.
type MemoryTarget struct {
	ids IDGenerator

	Persons        []ir.Person
	Manifestations []ir.Manifestation
	Works          []ir.Work
	Expressions    []ir.Expression
	Embodiments    []ir.Embodiment
	WorkRelations  []ir.Relation
	ExprRelations  []ir.Relation

	personByName map[string]int
	workByID     map[string]int
}

var _ Target = (*MemoryTarget)(nil)

// NewMemoryTarget creates an empty MemoryTarget. A nil generator selects UUIDv7Generator.
func NewMemoryTarget(ids IDGenerator) *MemoryTarget {
	if ids == nil {
		ids = UUIDv7Generator{}
	}
	return &MemoryTarget{
		ids:          ids,
		personByName: make(map[string]int),
		workByID:     make(map[string]int),
	}
}

// ResolvePerson returns the Person with exactly this display name, creating it if absent.
func (m *MemoryTarget) ResolvePerson(_ context.Context, name string) (ir.Person, error) {
	if i, ok := m.personByName[name]; ok {
		return m.Persons[i], nil
	}
	p := ir.Person{ID: m.ids.Generate(), DisplayName: name}
	m.personByName[name] = len(m.Persons)
	m.Persons = append(m.Persons, p)
	return p, nil
}

// CreateManifestation records a Manifestation.
func (m *MemoryTarget) CreateManifestation(_ context.Context, man ir.Manifestation) error {
	m.Manifestations = append(m.Manifestations, man)
	return nil
}

// CreateWork records a Work.
func (m *MemoryTarget) CreateWork(_ context.Context, w ir.Work) error {
	if _, dup := m.workByID[w.ID]; dup {
		return fmt.Errorf("work %s already exists", w.ID)
	}
	m.workByID[w.ID] = len(m.Works)
	m.Works = append(m.Works, w)
	return nil
}

// CreateExpression records an Expression. Its Work must exist.
func (m *MemoryTarget) CreateExpression(ctx context.Context, e ir.Expression) error {
	if _, err := m.ReadWork(ctx, e.WorkID); err != nil {
		return fmt.Errorf("expression %s: work %s: %w", e.ID, e.WorkID, err)
	}
	m.Expressions = append(m.Expressions, e)
	return nil
}

// CreateEmbodiment records an Embodiment.
func (m *MemoryTarget) CreateEmbodiment(_ context.Context, e ir.Embodiment) error {
	m.Embodiments = append(m.Embodiments, e)
	return nil
}

// CreateRelation records an edge in the given space.
func (m *MemoryTarget) CreateRelation(_ context.Context, space ir.Space, r ir.Relation) error {
	if !ir.ValidRelationKinds[r.Kind] {
		return fmt.Errorf("invalid relation kind %q", r.Kind)
	}
	switch space {
	case ir.SpaceWork:
		m.WorkRelations = append(m.WorkRelations, r)
	case ir.SpaceExpression:
		m.ExprRelations = append(m.ExprRelations, r)
	default:
		return fmt.Errorf("invalid relation space %q", space)
	}
	return nil
}

// ReadManifestation returns a Manifestation by ID.
func (m *MemoryTarget) ReadManifestation(_ context.Context, id string) (ir.Manifestation, error) {
	for _, man := range m.Manifestations {
		if man.ID == id {
			return man, nil
		}
	}
	return ir.Manifestation{}, fmt.Errorf("manifestation %s: %w", id, ErrNotFound)
}

// ReadEmbodiments returns the embodiments of a Manifestation, the root
// embodiment first and the rest by ascending position.
func (m *MemoryTarget) ReadEmbodiments(_ context.Context, manifestationID string) ([]ir.Embodiment, error) {
	out := []ir.Embodiment{}
	for _, e := range m.Embodiments {
		if e.ManifestationID == manifestationID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Position, out[j].Position
		if pi == nil || pj == nil {
			return pi == nil && pj != nil
		}
		return *pi < *pj
	})
	return out, nil
}

// ReadExpressionRelations returns the Expression-space edges that end at an
// Expression embodied in the Manifestation, in creation order.
func (m *MemoryTarget) ReadExpressionRelations(_ context.Context, manifestationID string) ([]ir.Relation, error) {
	embodied := make(map[string]bool)
	for _, e := range m.Embodiments {
		if e.ManifestationID == manifestationID {
			embodied[e.ExpressionID] = true
		}
	}
	out := []ir.Relation{}
	for _, r := range m.ExprRelations {
		if embodied[r.To] {
			out = append(out, r)
		}
	}
	return out, nil
}

// ReadExpression returns an Expression by ID.
func (m *MemoryTarget) ReadExpression(_ context.Context, id string) (ir.Expression, error) {
	for _, e := range m.Expressions {
		if e.ID == id {
			return e, nil
		}
	}
	return ir.Expression{}, fmt.Errorf("expression %s: %w", id, ErrNotFound)
}

// ReadWork returns a Work by ID.
func (m *MemoryTarget) ReadWork(_ context.Context, id string) (ir.Work, error) {
	if i, ok := m.workByID[id]; ok {
		return m.Works[i], nil
	}
	return ir.Work{}, fmt.Errorf("work %s: %w", id, ErrNotFound)
}

// ReadPerson returns a Person by ID.
func (m *MemoryTarget) ReadPerson(_ context.Context, id string) (ir.Person, error) {
	for _, p := range m.Persons {
		if p.ID == id {
			return p, nil
		}
	}
	return ir.Person{}, fmt.Errorf("person %s: %w", id, ErrNotFound)
}
