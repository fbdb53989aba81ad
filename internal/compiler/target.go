package compiler

import (
	"context"

	"github.com/roach88/folio/internal/contrib"
	"github.com/roach88/folio/internal/ir"
)

// Target is the create-only persistence contract used by a compilation.
// Implemented by *store.Tx (SQLite, transactional) and *MemoryTarget.
//
// The compiler never updates or deletes through a Target.
type Target interface {
	contrib.Resolver

	CreateManifestation(ctx context.Context, m ir.Manifestation) error
	CreateWork(ctx context.Context, w ir.Work) error
	CreateExpression(ctx context.Context, e ir.Expression) error
	CreateEmbodiment(ctx context.Context, e ir.Embodiment) error
	CreateRelation(ctx context.Context, space ir.Space, r ir.Relation) error
}
