package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/roach88/folio/internal/contrib"
	"github.com/roach88/folio/internal/ir"
	"github.com/roach88/folio/internal/outline"
)

// Input is one outline to compile.
type Input struct {
	// Text is the outline notation.
	Text string

	// RootTitle titles the Manifestation and the synthetic root Work/Expression.
	RootTitle string

	// Fallback persons are credited as creators of every heading without
	// explicit contributors, and of the root Work. Usually the book record's
	// contributors.
	Fallback []ir.Person
}

// Orphan describes a heading that was persisted without an Aggregation parent.
type Orphan struct {
	Title        string `json:"title"`
	Line         int    `json:"line"`
	Level        int    `json:"level"`
	PrevLevel    int    `json:"prev_level"`
	WorkID       string `json:"work_id"`
	ExpressionID string `json:"expression_id"`
}

// Result identifies what one compilation created.
type Result struct {
	RootWorkID       string `json:"root_work_id"`
	RootExpressionID string `json:"root_expression_id"`
	ManifestationID  string `json:"manifestation_id"`

	// Works counts non-section headings, which equals the number of
	// positioned embodiments.
	Works int `json:"works"`

	// Sections counts section headings, which create nothing.
	Sections int `json:"sections"`

	// SkippedLines lists the 1-based lines that were not headings.
	SkippedLines []int `json:"skipped_lines,omitempty"`

	// Orphans lists headings left unreachable under JumpOrphan.
	Orphans []Orphan `json:"orphans,omitempty"`

	// DetachedSequences counts Sequence edges omitted because their
	// endpoints had different Aggregation parents.
	DetachedSequences int `json:"detached_sequences"`

	// PersonsCreated counts Persons that did not exist before this
	// compilation. Compile leaves it zero; targets that can tell new
	// Persons from reused ones fill it in.
	PersonsCreated int `json:"persons_created"`

	// Graph is the in-memory topology that was written to the Target.
	Graph *ir.Graph `json:"-"`
}

// Compile reads in.Text and writes the resulting graph to target.
//
// The pass is synchronous and single-threaded. Any Target failure aborts the
// compilation and is returned as a *CompileError with code ErrPersistence;
// the caller is responsible for discarding partial writes, which
// store.(*Store).Compile does by rolling back its transaction.
func Compile(ctx context.Context, target Target, in Input, opts ...Option) (*Result, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	b := &builder{
		target:     target,
		ids:        o.ids,
		policy:     o.policy,
		logger:     o.logger,
		classifier: contrib.NewClassifier(target),
		fallback:   in.Fallback,
	}
	return b.run(ctx, in)
}

// cursors holds, per depth, the last node placed there. Index 0 is the root.
// It lives on one builder, which lives for one Compile call.
type cursors []ir.NodeKey

const noNode ir.NodeKey = -1

func (c cursors) get(depth int) (ir.NodeKey, bool) {
	if depth < 0 || depth >= len(c) || c[depth] == noNode {
		return noNode, false
	}
	return c[depth], true
}

func (c *cursors) set(depth int, k ir.NodeKey) {
	for len(*c) <= depth {
		*c = append(*c, noNode)
	}
	(*c)[depth] = k
}

type builder struct {
	target     Target
	ids        IDGenerator
	policy     JumpPolicy
	logger     *slog.Logger
	classifier *contrib.Classifier
	fallback   []ir.Person

	assembler *assembler
	graph     *ir.Graph
	cursor    cursors
	level     int
	result    *Result
}

func (b *builder) run(ctx context.Context, in Input) (*Result, error) {
	if err := b.createRoot(ctx, in); err != nil {
		return nil, err
	}

	sc := outline.NewScanner(strings.NewReader(in.Text))
	for sc.Next() {
		tok := sc.Token()
		if tok.IsSection {
			b.result.Sections++
			b.logger.Debug("section heading", slog.Int("line", tok.Line), slog.String("title", tok.Title))
			continue
		}
		if err := b.place(ctx, tok); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &CompileError{Code: ErrRead, Message: "read outline", Err: err}
	}

	b.result.SkippedLines = sc.Skipped()
	for _, line := range b.result.SkippedLines {
		b.logger.Debug("skipped non-heading line", slog.Int("line", line))
	}
	b.result.Works = int(b.assembler.Count())
	return b.result, nil
}

// createRoot creates the Manifestation and the synthetic root pair, and
// embodies the root before any token is read.
func (b *builder) createRoot(ctx context.Context, in Input) error {
	m := ir.Manifestation{ID: b.ids.Generate(), Title: in.RootTitle, SourceDigest: ir.SourceDigest(in.Text)}
	if err := b.target.CreateManifestation(ctx, m); err != nil {
		return persistenceError(0, "manifestation", err)
	}

	work, expr, err := b.createPair(ctx, 0, in.RootTitle, contrib.Credits{Creators: b.fallback})
	if err != nil {
		return err
	}

	b.assembler = newAssembler(b.target, b.ids, m.ID)
	if _, err := b.assembler.EmbodyRoot(ctx, expr.ID); err != nil {
		return persistenceError(0, "root embodiment", err)
	}

	b.graph = ir.NewGraph(ir.Entry{WorkID: work.ID, ExpressionID: expr.ID, Title: in.RootTitle})
	b.cursor = cursors{ir.RootKey}
	b.level = 1
	b.result = &Result{
		RootWorkID:       work.ID,
		RootExpressionID: expr.ID,
		ManifestationID:  m.ID,
		Graph:            b.graph,
	}
	return nil
}

// createPair creates a Work and its Expression in lockstep.
func (b *builder) createPair(ctx context.Context, line int, title string, credits contrib.Credits) (ir.Work, ir.Expression, error) {
	work := ir.Work{ID: b.ids.Generate(), Title: title, Creators: personIDs(credits.Creators)}
	if err := b.target.CreateWork(ctx, work); err != nil {
		return ir.Work{}, ir.Expression{}, persistenceError(line, "work", err)
	}
	expr := ir.Expression{ID: b.ids.Generate(), WorkID: work.ID, Title: title, Realizers: personIDs(credits.Realizers)}
	if err := b.target.CreateExpression(ctx, expr); err != nil {
		return ir.Work{}, ir.Expression{}, persistenceError(line, "expression", err)
	}
	return work, expr, nil
}

// anchors names the parent and sequence predecessor chosen for a heading.
type anchors struct {
	parent    ir.NodeKey
	hasParent bool
	pred      ir.NodeKey
	hasPred   bool
}

// anchorsFor applies the depth rules to a heading at depth level.
// ok is false when the depth moved by more than one level.
func (b *builder) anchorsFor(level int) (a anchors, ok bool) {
	switch {
	case level == 1:
		// Depth-1 headings always re-anchor to the root. They only chain to
		// the previous depth-1 heading when nothing deeper came in between.
		a.parent, a.hasParent = ir.RootKey, true
		if b.level == 1 {
			a.pred, a.hasPred = b.cursor.get(1)
		}
	case level == b.level+1:
		a.parent, a.hasParent = b.cursor.get(b.level)
	case level == b.level:
		a.parent, a.hasParent = b.cursor.get(level - 1)
		a.pred, a.hasPred = b.cursor.get(level)
	case level == b.level-1:
		a.parent, a.hasParent = b.cursor.get(b.level - 2)
		a.pred, a.hasPred = b.cursor.get(level)
	default:
		return anchors{}, false
	}
	return a, true
}

// place creates the Work/Expression pair for tok, embodies it, and wires
// its edges.
func (b *builder) place(ctx context.Context, tok outline.Token) error {
	a, ok := b.anchorsFor(tok.Level)
	unplaceable := !ok || !a.hasParent
	if unplaceable && b.policy == JumpReject {
		return &CompileError{
			Code:    ErrDepthJump,
			Line:    tok.Line,
			Message: fmt.Sprintf("heading %q at depth %d cannot follow depth %d", tok.Title, tok.Level, b.level),
		}
	}

	credits, err := b.classifier.Classify(ctx, tok.RawContributors, b.fallback)
	if err != nil {
		return &CompileError{Code: ErrPersistence, Line: tok.Line, Message: "classify contributors", Err: err}
	}
	work, expr, err := b.createPair(ctx, tok.Line, tok.Title, credits)
	if err != nil {
		return err
	}
	if _, err := b.assembler.EmbodyNext(ctx, expr.ID); err != nil {
		return persistenceError(tok.Line, "embodiment", err)
	}

	key := b.graph.Add(ir.Entry{
		WorkID:       work.ID,
		ExpressionID: expr.ID,
		Title:        tok.Title,
		Depth:        tok.Level,
		Line:         tok.Line,
	})

	if unplaceable {
		b.logger.Warn("heading is unreachable from the root",
			slog.Int("line", tok.Line),
			slog.Int("level", tok.Level),
			slog.Int("prev_level", b.level),
			slog.String("title", tok.Title))
		b.result.Orphans = append(b.result.Orphans, Orphan{
			Title:        tok.Title,
			Line:         tok.Line,
			Level:        tok.Level,
			PrevLevel:    b.level,
			WorkID:       work.ID,
			ExpressionID: expr.ID,
		})
	} else {
		if err := b.link(ctx, tok, a, key); err != nil {
			return err
		}
	}

	b.cursor.set(tok.Level, key)
	b.level = tok.Level
	return nil
}

// link records the Aggregation edge and, when anchored, the Sequence edge.
func (b *builder) link(ctx context.Context, tok outline.Token, a anchors, key ir.NodeKey) error {
	if err := b.graph.Attach(a.parent, key); err != nil {
		return &CompileError{Code: ErrInvariant, Line: tok.Line, Message: "aggregation", Err: err}
	}
	if err := b.writeEdge(ctx, tok.Line, ir.RelationAggregation, a.parent, key); err != nil {
		return err
	}

	if !a.hasPred {
		return nil
	}
	if err := b.graph.Chain(a.pred, key); err != nil {
		if errors.Is(err, ir.ErrNotSiblings) {
			b.result.DetachedSequences++
			b.logger.Warn("sequence edge omitted: previous heading at this depth has another parent",
				slog.Int("line", tok.Line),
				slog.String("title", tok.Title),
				slog.String("previous", b.graph.Entry(a.pred).Title))
			return nil
		}
		return &CompileError{Code: ErrInvariant, Line: tok.Line, Message: "sequence", Err: err}
	}
	return b.writeEdge(ctx, tok.Line, ir.RelationSequence, a.pred, key)
}

// writeEdge persists one edge in both Work space and Expression space.
func (b *builder) writeEdge(ctx context.Context, line int, kind ir.RelationKind, from, to ir.NodeKey) error {
	f, t := b.graph.Entry(from), b.graph.Entry(to)
	if err := b.target.CreateRelation(ctx, ir.SpaceWork, ir.Relation{From: f.WorkID, To: t.WorkID, Kind: kind}); err != nil {
		return persistenceError(line, string(kind)+" relation", err)
	}
	if err := b.target.CreateRelation(ctx, ir.SpaceExpression, ir.Relation{From: f.ExpressionID, To: t.ExpressionID, Kind: kind}); err != nil {
		return persistenceError(line, string(kind)+" relation", err)
	}
	return nil
}

func personIDs(ps []ir.Person) []string {
	ids := make([]string, len(ps))
	for i, p := range ps {
		ids[i] = p.ID
	}
	return ids
}
