package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotFillsXDGDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("CONFSYNTH_TEST_VAR", "present")

	env := Snapshot()
	assert.Equal(t, "present", env.Get("CONFSYNTH_TEST_VAR"))
	assert.NotEmpty(t, env.Get("XDG_CONFIG_HOME"))
	assert.NotEmpty(t, env.Get("XDG_STATE_HOME"))
	assert.NotEmpty(t, env.Home())
}

func TestWithDoesNotMutate(t *testing.T) {
	base := NewEnvironment(map[string]string{"A": "1"})
	next := base.With(map[string]string{"A": "2", "B": "3"})

	assert.Equal(t, "1", base.Get("A"))
	assert.Equal(t, "2", next.Get("A"))
	_, ok := base.Lookup("B")
	assert.False(t, ok)
	assert.Equal(t, []string{"A=2", "B=3"}, next.Pairs())
	assert.Equal(t, 2, next.Len())
}

func TestNewEnvironmentCopies(t *testing.T) {
	vars := map[string]string{"A": "1"}
	env := NewEnvironment(vars)
	vars["A"] = "changed"
	assert.Equal(t, "1", env.Get("A"))
}

func TestDirsRespectOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvConfigDir, filepath.Join(dir, "cfg"))
	t.Setenv(EnvStateDir, filepath.Join(dir, "state"))

	assert.Equal(t, filepath.Join(dir, "cfg", ConfigFileName), ConfigFilePath())
	assert.Equal(t, filepath.Join(dir, "state", LogFileName), LogFilePath())
}

func TestExpandHome(t *testing.T) {
	assert.Equal(t, "/h", expandHome("~", "/h"))
	assert.Equal(t, "/h/x", expandHome("~/x", "/h"))
	assert.Equal(t, "~x", expandHome("~x", "/h"))
	assert.Equal(t, "~/x", expandHome("~/x", ""))
	assert.Equal(t, "/abs", expandHome("/abs", "/h"))
}
