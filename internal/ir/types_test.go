package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFieldNaming(t *testing.T) {
	pos := int64(3)
	data, err := json.Marshal(map[string]any{
		"person":        Person{ID: "p1", DisplayName: "Ann Author"},
		"expression":    Expression{ID: "e1", WorkID: "w1", Title: "T", Realizers: []string{"p1"}},
		"manifestation": Manifestation{ID: "m1", Title: "Book", SourceDigest: "abc"},
		"embodiment":    Embodiment{ID: "b1", ExpressionID: "e1", ManifestationID: "m1", Position: &pos},
	})
	require.NoError(t, err)

	// Verify snake_case JSON tags
	for _, key := range []string{`"display_name"`, `"work_id"`, `"source_digest"`, `"expression_id"`, `"manifestation_id"`, `"position":3`} {
		assert.Contains(t, string(data), key)
	}
}

func TestEmbodimentIsRoot(t *testing.T) {
	pos := int64(1)
	assert.True(t, Embodiment{ID: "root"}.IsRoot())
	assert.False(t, Embodiment{ID: "first", Position: &pos}.IsRoot())

	data, err := json.Marshal(Embodiment{ID: "root"})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "position", "the root embodiment has no position")
}

func TestValidRelationKinds(t *testing.T) {
	assert.True(t, ValidRelationKinds[RelationAggregation])
	assert.True(t, ValidRelationKinds[RelationSequence])
	assert.False(t, ValidRelationKinds["contains"])
}

func TestWorkCreatorsKeepOrder(t *testing.T) {
	w := Work{ID: "w1", Title: "T", Creators: []string{"p2", "p1"}}
	data, err := json.Marshal(w)
	require.NoError(t, err)

	var decoded Work
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, []string{"p2", "p1"}, decoded.Creators)
}
