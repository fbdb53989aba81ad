package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/folio/internal/compiler"
	"github.com/roach88/folio/internal/ir"
	"github.com/roach88/folio/internal/toc"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	Outline  string // Rendered table of contents for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Outline != "" {
		fmt.Fprintf(&buf, "\nCompiled outline:\n")
		for _, line := range strings.Split(strings.TrimRight(e.Outline, "\n"), "\n") {
			fmt.Fprintf(&buf, "  %s\n", line)
		}
	}
	return buf.String()
}

// graphView indexes one compiled Manifestation for assertion lookups.
// Headings are matched by title; the first heading in document order wins.
type graphView struct {
	result   *compiler.Result
	rootWork string
	entries  []*toc.Entry // positioned headings in document order
	byWork   map[string]*toc.Entry
	rels     []ir.Relation
	outline  string
}

func newGraphView(res *compiler.Result, t *toc.TOC, rels []ir.Relation) *graphView {
	v := &graphView{
		result:   res,
		rootWork: t.Root.WorkID,
		byWork:   make(map[string]*toc.Entry),
		rels:     rels,
	}

	collect := func(e *toc.Entry, _ int) {
		v.byWork[e.WorkID] = e
		if e.Position != nil {
			v.entries = append(v.entries, e)
		}
	}
	t.Root.Walk(collect)
	for _, sub := range t.Unreachable {
		sub.Walk(collect)
	}
	slices.SortFunc(v.entries, func(a, b *toc.Entry) int {
		return int(*a.Position - *b.Position)
	})

	var buf strings.Builder
	if err := toc.RenderOutline(&buf, t); err == nil {
		v.outline = buf.String()
	}
	return v
}

// find returns the first heading titled title.
func (v *graphView) find(title string) (*toc.Entry, bool) {
	for _, e := range v.entries {
		if e.Title == title {
			return e, true
		}
	}
	return nil, false
}

// title names a Work for messages; the root reads as "(root)".
func (v *graphView) title(workID string) string {
	if workID == v.rootWork {
		return "(root)"
	}
	if e, ok := v.byWork[workID]; ok {
		return e.Title
	}
	return workID
}

// hasEdge reports whether a Work-space edge of kind joins the two titles.
// An empty from names the root.
func (v *graphView) hasEdge(kind ir.RelationKind, from, to string) bool {
	for _, r := range v.rels {
		if r.Kind != kind {
			continue
		}
		fromOK := v.title(r.From) == from || (from == "" && r.From == v.rootWork)
		if fromOK && v.title(r.To) == to {
			return true
		}
	}
	return false
}

func (v *graphView) edges(kind ir.RelationKind) []string {
	out := []string{}
	for _, r := range v.rels {
		if r.Kind == kind {
			out = append(out, v.title(r.From)+" -> "+v.title(r.To))
		}
	}
	return out
}

// evaluateAssertions runs all assertions against a compiled graph and
// returns one message per failure.
func evaluateAssertions(v *graphView, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluateAssertion(v, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d (%s): %v", i, a.Type, err))
		}
	}
	return errs
}

func evaluateAssertion(v *graphView, a Assertion) error {
	switch a.Type {
	case AssertWorkCount:
		return assertCount(v, a, v.result.Works)
	case AssertOrphanCount:
		return assertCount(v, a, len(v.result.Orphans))
	case AssertAggregation:
		return assertEdge(v, a, ir.RelationAggregation, true)
	case AssertSequence:
		return assertEdge(v, a, ir.RelationSequence, true)
	case AssertNoSequence:
		return assertEdge(v, a, ir.RelationSequence, false)
	case AssertCreators:
		return assertCredits(v, a, func(e *toc.Entry) []string { return e.Creators })
	case AssertRealizers:
		return assertCredits(v, a, func(e *toc.Entry) []string { return e.Realizers })
	case AssertPositions:
		return assertPositions(v, a)
	default:
		return fmt.Errorf("unknown assertion type: %s", a.Type)
	}
}

func assertCount(v *graphView, a Assertion, actual int) error {
	if actual == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%d", a.Count),
		Actual:   fmt.Sprintf("%d", actual),
		Outline:  v.outline,
	}
}

func assertEdge(v *graphView, a Assertion, kind ir.RelationKind, want bool) error {
	if v.hasEdge(kind, a.From, a.To) == want {
		return nil
	}
	from := a.From
	if from == "" {
		from = "(root)"
	}
	expected := fmt.Sprintf("%s edge %s -> %s", kind, from, a.To)
	if !want {
		expected = "no " + expected
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: expected,
		Actual:   fmt.Sprintf("%s edges %v", kind, v.edges(kind)),
		Outline:  v.outline,
	}
}

func assertCredits(v *graphView, a Assertion, credits func(*toc.Entry) []string) error {
	e, ok := v.find(a.Title)
	if !ok {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("heading %q", a.Title),
			Actual:   "not found",
			Outline:  v.outline,
		}
	}
	want := a.Names
	if want == nil {
		want = []string{}
	}
	got := credits(e)
	if got == nil {
		got = []string{}
	}
	if slices.Equal(want, got) {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%q credits %v", a.Title, want),
		Actual:   fmt.Sprintf("%v", got),
		Outline:  v.outline,
	}
}

func assertPositions(v *graphView, a Assertion) error {
	got := make([]string, len(v.entries))
	for i, e := range v.entries {
		got[i] = e.Title
	}
	if slices.Equal(a.Titles, got) {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("%v", a.Titles),
		Actual:   fmt.Sprintf("%v", got),
		Outline:  v.outline,
	}
}
