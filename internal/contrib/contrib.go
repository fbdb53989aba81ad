// Package contrib classifies outline contributor strings into creators and
// realizers and resolves them to Person identities.
package contrib

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/folio/internal/ir"
)

const (
	// Separator splits one contributor string into names.
	Separator = ";"

	realizerOpen  = "["
	realizerClose = "]"
)

// Role tags a contributor as the author of a Work or the realizer of an Expression.
type Role int

const (
	// RoleCreator credits a Person with authoring the Work.
	RoleCreator Role = iota

	// RoleRealizer credits a Person with producing the Expression,
	// e.g. a translator. Written as "[Name]" in the outline.
	RoleRealizer
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleCreator:
		return "creator"
	case RoleRealizer:
		return "realizer"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Contributor is one parsed name with its role.
type Contributor struct {
	Name string
	Role Role
}

// Parse splits raw into contributors in source order. Segments are trimmed
// and empty ones dropped; "[Name]" yields a realizer, anything else a creator.
func Parse(raw string) []Contributor {
	var out []Contributor
	for _, seg := range strings.Split(raw, Separator) {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		if inner, ok := bracketed(seg); ok {
			if inner = strings.TrimSpace(inner); inner != "" {
				out = append(out, Contributor{Name: inner, Role: RoleRealizer})
			}
			continue
		}
		out = append(out, Contributor{Name: seg, Role: RoleCreator})
	}
	return out
}

func bracketed(seg string) (string, bool) {
	if len(seg) < 2 || !strings.HasPrefix(seg, realizerOpen) || !strings.HasSuffix(seg, realizerClose) {
		return "", false
	}
	return seg[len(realizerOpen) : len(seg)-len(realizerClose)], true
}

// Format renders contributors back into outline notation.
func Format(cs []Contributor) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		if c.Role == RoleRealizer {
			parts[i] = realizerOpen + c.Name + realizerClose
		} else {
			parts[i] = c.Name
		}
	}
	return strings.Join(parts, Separator+" ")
}

// Resolver looks up a Person by exact display name, creating one when absent.
type Resolver interface {
	ResolvePerson(ctx context.Context, name string) (ir.Person, error)
}

// Credits are the resolved contributors of one heading.
type Credits struct {
	Creators  []ir.Person
	Realizers []ir.Person
}

// Classifier resolves contributor strings through a Resolver.
type Classifier struct {
	resolver Resolver
}

// NewClassifier creates a Classifier backed by r.
func NewClassifier(r Resolver) *Classifier {
	return &Classifier{resolver: r}
}

// Classify resolves raw into credits. An empty raw string credits the
// fallback persons as creators and no realizers. Resolution follows source
// order within each role.
func (c *Classifier) Classify(ctx context.Context, raw string, fallback []ir.Person) (Credits, error) {
	if strings.TrimSpace(raw) == "" {
		creators := make([]ir.Person, len(fallback))
		copy(creators, fallback)
		return Credits{Creators: creators, Realizers: []ir.Person{}}, nil
	}

	credits := Credits{Creators: []ir.Person{}, Realizers: []ir.Person{}}
	for _, contributor := range Parse(raw) {
		p, err := c.resolver.ResolvePerson(ctx, contributor.Name)
		if err != nil {
			return Credits{}, fmt.Errorf("resolve %s %q: %w", contributor.Role, contributor.Name, err)
		}
		switch contributor.Role {
		case RoleRealizer:
			credits.Realizers = append(credits.Realizers, p)
		default:
			credits.Creators = append(credits.Creators, p)
		}
	}
	return credits, nil
}
