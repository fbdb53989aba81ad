package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/folio/internal/compiler"
	"github.com/roach88/folio/internal/ir"
)

// ErrNotFound is returned when a read names an unknown ID. It is the same
// sentinel MemoryTarget uses, so callers check one error for both.
var ErrNotFound = compiler.ErrNotFound

// ManifestationSummary is one row of ListManifestations.
type ManifestationSummary struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	CompilerVersion string `json:"compiler_version"`
	SourceDigest    string `json:"source_digest"`
	Embodiments     int    `json:"embodiments"`
}

// ListManifestations returns every compiled Manifestation.
// Results are ordered by title, then ID, so listings are stable.
//
// Returns an empty slice (not nil) if nothing has been compiled.
func (s *Store) ListManifestations(ctx context.Context) ([]ManifestationSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.id, m.title, m.compiler_version, m.source_digest, COUNT(e.id)
		FROM manifestations m
		LEFT JOIN embodiments e ON e.manifestation_id = m.id
		GROUP BY m.id
		ORDER BY m.title ASC, m.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query manifestations: %w", err)
	}
	defer rows.Close()

	out := []ManifestationSummary{}
	for rows.Next() {
		var m ManifestationSummary
		if err := rows.Scan(&m.ID, &m.Title, &m.CompilerVersion, &m.SourceDigest, &m.Embodiments); err != nil {
			return nil, fmt.Errorf("scan manifestation: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate manifestations: %w", err)
	}
	return out, nil
}

// FindByDigest returns the IDs of Manifestations compiled from outline text
// with the given digest, oldest first by rowid.
//
// Returns an empty slice (not nil) if there are none.
func (s *Store) FindByDigest(ctx context.Context, digest string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM manifestations WHERE source_digest = ? ORDER BY rowid ASC
	`, digest)
	if err != nil {
		return nil, fmt.Errorf("query manifestations by digest: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan manifestation id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReadManifestation retrieves a single Manifestation by ID.
func (s *Store) ReadManifestation(ctx context.Context, id string) (ir.Manifestation, error) {
	var m ir.Manifestation
	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, source_digest FROM manifestations WHERE id = ?
	`, id).Scan(&m.ID, &m.Title, &m.SourceDigest)
	if err != nil {
		return ir.Manifestation{}, notFound("manifestation", id, err)
	}
	return m, nil
}

// ReadEmbodiments returns the embodiments of a Manifestation, the root
// embodiment first and the rest by ascending position.
func (s *Store) ReadEmbodiments(ctx context.Context, manifestationID string) ([]ir.Embodiment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, expression_id, manifestation_id, position
		FROM embodiments
		WHERE manifestation_id = ?
		ORDER BY position IS NOT NULL, position ASC
	`, manifestationID)
	if err != nil {
		return nil, fmt.Errorf("query embodiments: %w", err)
	}
	defer rows.Close()

	out := []ir.Embodiment{}
	for rows.Next() {
		var e ir.Embodiment
		var position sql.NullInt64
		if err := rows.Scan(&e.ID, &e.ExpressionID, &e.ManifestationID, &position); err != nil {
			return nil, fmt.Errorf("scan embodiment: %w", err)
		}
		if position.Valid {
			p := position.Int64
			e.Position = &p
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate embodiments: %w", err)
	}
	return out, nil
}

// ReadExpressionRelations returns the Expression-space edges that end at an
// Expression embodied in the Manifestation, in insertion order.
func (s *Store) ReadExpressionRelations(ctx context.Context, manifestationID string) ([]ir.Relation, error) {
	return s.readRelations(ctx, "expression_relations", manifestationID, `
		SELECT r.from_id, r.to_id, r.kind
		FROM expression_relations r
		JOIN embodiments e ON e.expression_id = r.to_id
		WHERE e.manifestation_id = ?
		ORDER BY r.id ASC
	`)
}

// ReadWorkRelations returns the Work-space edges that end at a Work whose
// Expression is embodied in the Manifestation, in insertion order.
func (s *Store) ReadWorkRelations(ctx context.Context, manifestationID string) ([]ir.Relation, error) {
	return s.readRelations(ctx, "work_relations", manifestationID, `
		SELECT r.from_id, r.to_id, r.kind
		FROM work_relations r
		JOIN expressions x ON x.work_id = r.to_id
		JOIN embodiments e ON e.expression_id = x.id
		WHERE e.manifestation_id = ?
		ORDER BY r.id ASC
	`)
}

func (s *Store) readRelations(ctx context.Context, table, manifestationID, query string) ([]ir.Relation, error) {
	rows, err := s.db.QueryContext(ctx, query, manifestationID)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	out := []ir.Relation{}
	for rows.Next() {
		var r ir.Relation
		var kind string
		if err := rows.Scan(&r.From, &r.To, &kind); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		r.Kind = ir.RelationKind(kind)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return out, nil
}

// ReadWork retrieves a Work with its creators in credit order.
func (s *Store) ReadWork(ctx context.Context, id string) (ir.Work, error) {
	w := ir.Work{ID: id}
	err := s.db.QueryRowContext(ctx, `
		SELECT title FROM works WHERE id = ?
	`, id).Scan(&w.Title)
	if err != nil {
		return ir.Work{}, notFound("work", id, err)
	}

	w.Creators, err = s.readCredits(ctx, `
		SELECT person_id FROM work_creators WHERE work_id = ? ORDER BY position ASC
	`, id)
	if err != nil {
		return ir.Work{}, fmt.Errorf("read work %s creators: %w", id, err)
	}
	return w, nil
}

// ReadExpression retrieves an Expression with its realizers in credit order.
func (s *Store) ReadExpression(ctx context.Context, id string) (ir.Expression, error) {
	e := ir.Expression{ID: id}
	err := s.db.QueryRowContext(ctx, `
		SELECT work_id, title FROM expressions WHERE id = ?
	`, id).Scan(&e.WorkID, &e.Title)
	if err != nil {
		return ir.Expression{}, notFound("expression", id, err)
	}

	e.Realizers, err = s.readCredits(ctx, `
		SELECT person_id FROM expression_realizers WHERE expression_id = ? ORDER BY position ASC
	`, id)
	if err != nil {
		return ir.Expression{}, fmt.Errorf("read expression %s realizers: %w", id, err)
	}
	return e, nil
}

// ReadPerson retrieves a Person by ID.
func (s *Store) ReadPerson(ctx context.Context, id string) (ir.Person, error) {
	p := ir.Person{ID: id}
	err := s.db.QueryRowContext(ctx, `
		SELECT display_name FROM persons WHERE id = ?
	`, id).Scan(&p.DisplayName)
	if err != nil {
		return ir.Person{}, notFound("person", id, err)
	}
	return p, nil
}

// CountPersons returns the number of distinct Persons in the store.
func (s *Store) CountPersons(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM persons`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count persons: %w", err)
	}
	return n, nil
}

func (s *Store) readCredits(ctx context.Context, query, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var personID string
		if err := rows.Scan(&personID); err != nil {
			return nil, err
		}
		out = append(out, personID)
	}
	return out, rows.Err()
}

func notFound(what, id string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read %s %s: %w", what, id, ErrNotFound)
	}
	return fmt.Errorf("read %s %s: %w", what, id, err)
}
