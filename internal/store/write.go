package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/folio/internal/compiler"
	"github.com/roach88/folio/internal/ir"
)

// Tx is a transaction-scoped compiler.Target. It is only valid inside
// Store.Compile and is discarded when the transaction ends.
type Tx struct {
	tx             *sql.Tx
	ids            compiler.IDGenerator
	personsCreated int
}

var _ compiler.Target = (*Tx)(nil)

// ResolvePerson returns the Person whose display name matches exactly,
// inserting a new one if none exists. Names are never normalized.
func (t *Tx) ResolvePerson(ctx context.Context, name string) (ir.Person, error) {
	p := ir.Person{DisplayName: name}
	err := t.tx.QueryRowContext(ctx, `
		SELECT id FROM persons WHERE display_name = ?
	`, name).Scan(&p.ID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return ir.Person{}, fmt.Errorf("resolve person: %w", err)
	}

	p.ID = t.ids.Generate()
	if _, err := t.tx.ExecContext(ctx, `
		INSERT INTO persons (id, display_name) VALUES (?, ?)
	`, p.ID, p.DisplayName); err != nil {
		return ir.Person{}, fmt.Errorf("resolve person: insert: %w", err)
	}
	t.personsCreated++
	return p, nil
}

// CreateManifestation inserts a Manifestation stamped with the compiler and schema versions.
func (t *Tx) CreateManifestation(ctx context.Context, m ir.Manifestation) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO manifestations (id, title, compiler_version, schema_version, source_digest)
		VALUES (?, ?, ?, ?, ?)
	`, m.ID, m.Title, ir.CompilerVersion, ir.SchemaVersion, m.SourceDigest)
	if err != nil {
		return fmt.Errorf("write manifestation: %w", err)
	}
	return nil
}

// CreateWork inserts a Work and its ordered creators.
func (t *Tx) CreateWork(ctx context.Context, w ir.Work) error {
	if _, err := t.tx.ExecContext(ctx, `
		INSERT INTO works (id, title) VALUES (?, ?)
	`, w.ID, w.Title); err != nil {
		return fmt.Errorf("write work: %w", err)
	}
	for i, personID := range w.Creators {
		if _, err := t.tx.ExecContext(ctx, `
			INSERT INTO work_creators (work_id, person_id, position) VALUES (?, ?, ?)
		`, w.ID, personID, i); err != nil {
			return fmt.Errorf("write work creator: %w", err)
		}
	}
	return nil
}

// CreateExpression inserts an Expression and its ordered realizers.
//
// Note: The Work referenced by WorkID must exist (foreign key constraint).
func (t *Tx) CreateExpression(ctx context.Context, e ir.Expression) error {
	if _, err := t.tx.ExecContext(ctx, `
		INSERT INTO expressions (id, work_id, title) VALUES (?, ?, ?)
	`, e.ID, e.WorkID, e.Title); err != nil {
		return fmt.Errorf("write expression: %w", err)
	}
	for i, personID := range e.Realizers {
		if _, err := t.tx.ExecContext(ctx, `
			INSERT INTO expression_realizers (expression_id, person_id, position) VALUES (?, ?, ?)
		`, e.ID, personID, i); err != nil {
			return fmt.Errorf("write expression realizer: %w", err)
		}
	}
	return nil
}

// CreateEmbodiment inserts an Embodiment. A nil position marks the root
// embodiment, of which a Manifestation may have only one.
func (t *Tx) CreateEmbodiment(ctx context.Context, e ir.Embodiment) error {
	var position sql.NullInt64
	if e.Position != nil {
		position = sql.NullInt64{Int64: *e.Position, Valid: true}
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO embodiments (id, expression_id, manifestation_id, position)
		VALUES (?, ?, ?, ?)
	`, e.ID, e.ExpressionID, e.ManifestationID, position)
	if err != nil {
		return fmt.Errorf("write embodiment: %w", err)
	}
	return nil
}

// CreateRelation inserts an edge into the table for its space.
func (t *Tx) CreateRelation(ctx context.Context, space ir.Space, r ir.Relation) error {
	table, err := relationTable(space)
	if err != nil {
		return fmt.Errorf("write relation: %w", err)
	}
	if !ir.ValidRelationKinds[r.Kind] {
		return fmt.Errorf("write relation: invalid kind %q", r.Kind)
	}
	_, err = t.tx.ExecContext(ctx,
		"INSERT INTO "+table+" (from_id, to_id, kind) VALUES (?, ?, ?)",
		r.From, r.To, string(r.Kind))
	if err != nil {
		return fmt.Errorf("write %s relation: %w", space, err)
	}
	return nil
}

func relationTable(space ir.Space) (string, error) {
	switch space {
	case ir.SpaceWork:
		return "work_relations", nil
	case ir.SpaceExpression:
		return "expression_relations", nil
	default:
		return "", fmt.Errorf("invalid relation space %q", space)
	}
}
