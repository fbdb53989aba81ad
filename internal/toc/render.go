package toc

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/roach88/folio/internal/contrib"
	"github.com/roach88/folio/internal/ir"
	"github.com/roach88/folio/internal/outline"
)

// RenderOutline writes the reachable tree in outline notation, one heading
// per line, without the root. Credits equal to the root's creators are
// omitted because compiling with the same book contributors restores them.
//
// Unreachable subtrees follow a blank line as "- " list lines, which the
// outline tokenizer skips, so the output recompiles to the reachable tree.
func RenderOutline(w io.Writer, t *TOC) error {
	bw := bufio.NewWriter(w)
	fallback := t.Root.Creators

	for _, child := range t.Root.Children {
		child.walk(1, func(e *Entry, depth int) {
			bw.WriteString(strings.Repeat(string(outline.Marker), depth))
			bw.WriteByte(' ')
			bw.WriteString(e.Title)
			if !sameCredits(e, fallback) {
				bw.WriteString(outline.ContributorDelimiter)
				bw.WriteString(contrib.Format(credits(e)))
			}
			bw.WriteByte('\n')
		})
	}

	if len(t.Unreachable) > 0 {
		bw.WriteString("\nunreachable:\n")
		for _, sub := range t.Unreachable {
			sub.Walk(func(e *Entry, depth int) {
				fmt.Fprintf(bw, "%s- %s%s\n", strings.Repeat("  ", depth), e.Title, positionSuffix(e))
			})
		}
	}
	return bw.Flush()
}

func credits(e *Entry) []contrib.Contributor {
	cs := make([]contrib.Contributor, 0, len(e.Creators)+len(e.Realizers))
	for _, name := range e.Creators {
		cs = append(cs, contrib.Contributor{Name: name, Role: contrib.RoleCreator})
	}
	for _, name := range e.Realizers {
		cs = append(cs, contrib.Contributor{Name: name, Role: contrib.RoleRealizer})
	}
	return cs
}

func positionSuffix(e *Entry) string {
	if e.Position == nil {
		return ""
	}
	return fmt.Sprintf(" (position %d)", *e.Position)
}

// MarshalCanonical encodes the table of contents as canonical JSON.
func MarshalCanonical(t *TOC) ([]byte, error) {
	unreachable := make([]any, len(t.Unreachable))
	for i, sub := range t.Unreachable {
		unreachable[i] = entryMap(sub)
	}
	return ir.MarshalCanonical(map[string]any{
		"manifestation": map[string]any{
			"id":    t.Manifestation.ID,
			"title": t.Manifestation.Title,
		},
		"root":        entryMap(t.Root),
		"unreachable": unreachable,
	})
}

func entryMap(e *Entry) map[string]any {
	children := make([]any, len(e.Children))
	for i, c := range e.Children {
		children[i] = entryMap(c)
	}
	return map[string]any{
		"work_id":       e.WorkID,
		"expression_id": e.ExpressionID,
		"title":         e.Title,
		"position":      e.Position,
		"creators":      e.Creators,
		"realizers":     e.Realizers,
		"children":      children,
	}
}
