package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/folio/internal/compiler"
	"github.com/roach88/folio/internal/store"
	"github.com/roach88/folio/internal/testutil"
	"github.com/roach88/folio/internal/toc"
)

// Harness compiles scenarios and checks their assertions.
// It compiles scenarios into a store with deterministic IDs.
type Harness struct {
	store  *store.Store
	ids    *testutil.SequentialIDs
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Persons and graph entities share one SequentialIDs generator, so IDs
// follow creation order and golden output is reproducible.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Compile the outline in one transaction
// 3. Check the expected error code, if any
// 4. Read the graph back as a table of contents
// 5. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	ids := testutil.NewSequentialIDs("id")

	st, err := store.Open(":memory:", store.WithIDGenerator(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		ids:    ids,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	return h.run(context.Background(), scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	policy, err := compiler.ParseJumpPolicy(scenario.JumpPolicy)
	if err != nil {
		return nil, err
	}

	result := NewResult()
	res, compileErr := h.store.Compile(ctx, store.Request{
		Text:          scenario.Outline,
		RootTitle:     scenario.RootTitle,
		FallbackNames: scenario.Contributors,
	},
		compiler.WithIDGenerator(h.ids),
		compiler.WithJumpPolicy(policy),
		compiler.WithLogger(h.logger),
	)

	if compileErr != nil {
		var ce *compiler.CompileError
		if !errors.As(compileErr, &ce) {
			return nil, fmt.Errorf("failed to compile: %w", compileErr)
		}
		result.ErrorCode = ce.Code
		h.logger.Info("compile failed", "scenario", scenario.Name, "code", ce.Code, "line", ce.Line)

		if scenario.ExpectError == "" {
			result.AddError(fmt.Sprintf("unexpected compile error: %v", compileErr))
			return result, nil
		}
		if ce.Code != scenario.ExpectError {
			result.AddError((&AssertionError{
				Type:     "expect_error",
				Expected: scenario.ExpectError,
				Actual:   ce.Code,
			}).Error())
		}
		if err := h.assertEmpty(ctx, result); err != nil {
			return nil, err
		}
		return result, nil
	}

	result.Compile = res
	if scenario.ExpectError != "" {
		result.AddError((&AssertionError{
			Type:     "expect_error",
			Expected: scenario.ExpectError,
			Actual:   "compilation succeeded",
		}).Error())
	}

	t, err := toc.Build(ctx, h.store, res.ManifestationID)
	if err != nil {
		return nil, fmt.Errorf("failed to read compiled graph: %w", err)
	}
	result.TOC = t

	rels, err := h.store.ReadWorkRelations(ctx, res.ManifestationID)
	if err != nil {
		return nil, fmt.Errorf("failed to read work relations: %w", err)
	}

	view := newGraphView(res, t, rels)
	for _, msg := range evaluateAssertions(view, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// assertEmpty checks that a failed compilation left nothing behind.
func (h *Harness) assertEmpty(ctx context.Context, result *Result) error {
	list, err := h.store.ListManifestations(ctx)
	if err != nil {
		return fmt.Errorf("failed to list manifestations: %w", err)
	}
	persons, err := h.store.CountPersons(ctx)
	if err != nil {
		return fmt.Errorf("failed to count persons: %w", err)
	}
	if len(list) > 0 || persons > 0 {
		result.AddError((&AssertionError{
			Type:     "rollback",
			Expected: "empty store after failed compilation",
			Actual:   fmt.Sprintf("%d manifestations, %d persons", len(list), persons),
		}).Error())
	}
	return nil
}
