package jsonextract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_DirectParse(t *testing.T) {
	obj, err := Extract(`{"scenarios": [1, 2, 3]}`, "scenarios", "")
	require.NoError(t, err)
	assert.Contains(t, obj, "scenarios")
}

func TestExtract_FencedJSON(t *testing.T) {
	raw := "Here is the result:\n```json\n{\"scenarios\": [1]}\n```\nThanks."
	obj, err := Extract(raw, "scenarios", "")
	require.NoError(t, err)
	assert.Contains(t, obj, "scenarios")
}

func TestExtract_BareFence(t *testing.T) {
	raw := "```\n{\"scenarios\": []}\n```"
	obj, err := Extract(raw, "scenarios", "")
	require.NoError(t, err)
	assert.Contains(t, obj, "scenarios")
}

func TestExtract_ConcatenatedObjects(t *testing.T) {
	raw := `{"scenarios": [1, 2]}` + "\n{\"scenarios\": [3, 4]}"
	obj, err := Extract(raw, "scenarios", "")
	require.NoError(t, err)
	scenarios, ok := obj["scenarios"].([]interface{})
	require.True(t, ok)
	assert.Len(t, scenarios, 2)
	assert.Equal(t, float64(1), scenarios[0])
}

func TestExtract_BraceBalancedWithSurroundingProse(t *testing.T) {
	raw := `Sure, here you go: {"scenarios": [{"note": "has a } brace in a \"string\""}]} -- hope that helps!`
	obj, err := Extract(raw, "scenarios", "")
	require.NoError(t, err)
	assert.Contains(t, obj, "scenarios")
}

func TestExtract_AggressiveFallback(t *testing.T) {
	raw := `junk {"other": 1} more junk {"scenarios": []} trailing`
	obj, err := Extract(raw, "scenarios", "")
	require.NoError(t, err)
	assert.Contains(t, obj, "scenarios")
}

func TestExtract_TotalFailureWritesDebugArtifact(t *testing.T) {
	dir := t.TempDir()
	_, err := Extract("``` not json at all ```", "scenarios", dir)
	require.Error(t, err)

	var unparseable *UnparseableError
	require.ErrorAs(t, err, &unparseable)
	assert.NotEmpty(t, unparseable.ArtifactPath)
	assert.FileExists(t, unparseable.ArtifactPath)
}

func TestExtract_Deterministic(t *testing.T) {
	raw := `{"scenarios": [{"a": 1}]}`
	first, err := Extract(raw, "scenarios", "")
	require.NoError(t, err)
	second, err := Extract(raw, "scenarios", "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestExtract_BracesInStringsDoNotAffectDepth(t *testing.T) {
	raw := `{"scenarios": [{"pain_point_detail": "cost overruns in { budgeting } processes"}]}`
	obj, err := Extract(raw, "scenarios", "")
	require.NoError(t, err)
	scenarios, ok := obj["scenarios"].([]interface{})
	require.True(t, ok)
	require.Len(t, scenarios, 1)
}
