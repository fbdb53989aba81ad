package outline

import "fmt"

const (
	// Marker is the repeated depth character that opens a heading line.
	Marker = '#'

	// SectionMarker is the lone trailing character that marks a section heading.
	SectionMarker = "/"

	// ContributorDelimiter separates a heading title from its contributors.
	ContributorDelimiter = " || "
)

// Token is one heading line of an outline.
type Token struct {
	// Level is the number of depth markers, always >= 1.
	Level int `json:"level"`

	// Title is the heading text without contributors or section marker.
	Title string `json:"title"`

	// RawContributors is the unparsed text after ContributorDelimiter.
	// Always empty for section tokens.
	RawContributors string `json:"raw_contributors,omitempty"`

	// IsSection marks a structure-only heading that produces no graph node.
	IsSection bool `json:"is_section,omitempty"`

	// Line is the 1-based source line number.
	Line int `json:"line"`
}

// String renders the token for diagnostics.
func (t Token) String() string {
	kind := "heading"
	if t.IsSection {
		kind = "section"
	}
	return fmt.Sprintf("%s[L%d line %d] %q", kind, t.Level, t.Line, t.Title)
}
