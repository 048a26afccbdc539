package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	for _, id := range []string{OpCalculateRequirements, OpFindSuitableMotors, OpSuggestMotors, OpRenderReport} {
		op, ok := reg.Get(id)
		require.True(t, ok, id)
		assert.NotEmpty(t, op.InputSchema, id)
		assert.NotEmpty(t, op.HTTPRoute, id)
	}

	assert.ElementsMatch(t, []string{OpCalculateRequirements, OpFindSuitableMotors}, reg.TaskTypes())

	op, ok := reg.ByTaskType("find-suitable-motors")
	require.True(t, ok)
	assert.Equal(t, "/api/v1/matches", op.HTTPRoute)

	_, ok = reg.ByTaskType("")
	assert.False(t, ok)
}

func TestParse_RejectsDuplicates(t *testing.T) {
	_, err := Parse([]byte(`{"operations":[{"id":"a"},{"id":"a"}]}`))
	assert.ErrorContains(t, err, "duplicate operation id")

	_, err = Parse([]byte(`{"operations":[{"id":"a","taskType":"t"},{"id":"b","taskType":"t"}]}`))
	assert.ErrorContains(t, err, "duplicate task type")

	_, err = Parse([]byte(`{"operations":[{"displayName":"x"}]}`))
	assert.ErrorContains(t, err, "without id")

	_, err = Parse([]byte(`not json`))
	assert.Error(t, err)
}

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, embedded, 0o600))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Len(t, reg.Operations, 4)

	_, err = LoadRegistry(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
