package ir

// Person is a contributor identity, looked up by exact display name.
type Person struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Work is an abstract intellectual creation.
type Work struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Creators []string `json:"creators"` // Person IDs in credit order
}

// Expression is the textual realization of exactly one Work.
type Expression struct {
	ID        string   `json:"id"`
	WorkID    string   `json:"work_id"`
	Title     string   `json:"title"`
	Realizers []string `json:"realizers"` // Person IDs in credit order
}

// Manifestation is the container produced by one compilation.
type Manifestation struct {
	ID    string `json:"id"`
	Title string `json:"title"`

	// SourceDigest identifies the outline text that was compiled.
	SourceDigest string `json:"source_digest"`
}

// Embodiment places one Expression inside one Manifestation.
// Position is nil for the whole-book root embodiment.
type Embodiment struct {
	ID              string `json:"id"`
	ExpressionID    string `json:"expression_id"`
	ManifestationID string `json:"manifestation_id"`
	Position        *int64 `json:"position,omitempty"`
}

// IsRoot reports whether the embodiment is the unnumbered whole-book record.
func (e Embodiment) IsRoot() bool {
	return e.Position == nil
}

// RelationKind distinguishes containment from sibling order.
type RelationKind string

const (
	// RelationAggregation links a parent unit to one of its parts.
	RelationAggregation RelationKind = "aggregation"

	// RelationSequence links a node to the sibling immediately following it.
	RelationSequence RelationKind = "sequence"
)

// ValidRelationKinds defines allowed relation kinds.
var ValidRelationKinds = map[RelationKind]bool{
	RelationAggregation: true,
	RelationSequence:    true,
}

// Space selects which entity family a relation connects.
// Work space and Expression space carry parallel, isomorphic edges.
type Space string

const (
	SpaceWork       Space = "work"
	SpaceExpression Space = "expression"
)

// Relation is a directed edge between two entities of the same space.
type Relation struct {
	From string       `json:"from"`
	To   string       `json:"to"`
	Kind RelationKind `json:"kind"`
}
