package testutil

import (
	"testing"

	"github.com/arthur-debert/confsynth/pkg/errors"
	"github.com/arthur-debert/confsynth/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertFileContent checks that path holds exactly want.
func (env *TestEnvironment) AssertFileContent(path, want string) {
	env.t.Helper()
	assert.Equal(env.t, want, env.ReadFile(path), "content of %s", path)
}

// AssertStatuses checks the status of every result, in order.
func AssertStatuses(t *testing.T, results []types.Result, want ...types.Status) {
	t.Helper()
	got := make([]types.Status, len(results))
	for i, r := range results {
		got[i] = r.Status
	}
	assert.Equal(t, want, got)
}

// RequireFailure checks that r failed with code and returns its error
// details.
func RequireFailure(t *testing.T, r types.Result, code errors.ErrorCode) map[string]interface{} {
	t.Helper()
	require.Equal(t, types.StatusFailed, r.Status, "result %d", r.Index)
	require.Error(t, r.Err)
	require.True(t, errors.IsErrorCode(r.Err, code), "expected %s, got %v", code, r.Err)
	return errors.GetErrorDetails(r.Err)
}
