package compiler

import (
	"context"
	"errors"

	"github.com/roach88/folio/internal/ir"
)

// errRootEmbodied is returned when EmbodyRoot is called twice.
var errRootEmbodied = errors.New("root embodiment already created")

// assembler places Expressions in one Manifestation.
//
// The root Expression gets the single unnumbered embodiment; every other
// Expression gets the next position, strictly increasing in call order.
// Call order is document order, independent of tree shape.
type assembler struct {
	target          Target
	ids             IDGenerator
	manifestationID string
	position        int64
	rootDone        bool
}

func newAssembler(target Target, ids IDGenerator, manifestationID string) *assembler {
	return &assembler{target: target, ids: ids, manifestationID: manifestationID}
}

// EmbodyRoot creates the whole-book embodiment. It must run once, before any
// heading is embodied.
func (a *assembler) EmbodyRoot(ctx context.Context, expressionID string) (ir.Embodiment, error) {
	if a.rootDone {
		return ir.Embodiment{}, errRootEmbodied
	}
	emb := ir.Embodiment{
		ID:              a.ids.Generate(),
		ExpressionID:    expressionID,
		ManifestationID: a.manifestationID,
	}
	if err := a.target.CreateEmbodiment(ctx, emb); err != nil {
		return ir.Embodiment{}, err
	}
	a.rootDone = true
	return emb, nil
}

// EmbodyNext creates an embodiment at the next document-order position.
func (a *assembler) EmbodyNext(ctx context.Context, expressionID string) (ir.Embodiment, error) {
	pos := a.position + 1
	emb := ir.Embodiment{
		ID:              a.ids.Generate(),
		ExpressionID:    expressionID,
		ManifestationID: a.manifestationID,
		Position:        &pos,
	}
	if err := a.target.CreateEmbodiment(ctx, emb); err != nil {
		return ir.Embodiment{}, err
	}
	a.position = pos
	return emb, nil
}

// Count returns the number of positioned embodiments created so far.
func (a *assembler) Count() int64 {
	return a.position
}
