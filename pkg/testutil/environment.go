package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/confsynth/pkg/paths"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// EnvType defines the type of test environment
type EnvType int

const (
	EnvMemoryOnly EnvType = iota // Pure in-memory, no real filesystem
	EnvIsolated                  // Real filesystem in temp directory
)

// TestEnvironment bundles a filesystem with a home and XDG layout inside it.
type TestEnvironment struct {
	HomeDir    string
	ConfigHome string
	StateHome  string

	FS  afero.Fs
	Env paths.Environment

	Type EnvType

	t *testing.T
}

// NewTestEnvironment creates a new test environment. Isolated environments
// also point confsynth's own config and state directories into the temp
// directory.
func NewTestEnvironment(t *testing.T, envType EnvType) *TestEnvironment {
	t.Helper()

	env := &TestEnvironment{t: t, Type: envType}
	switch envType {
	case EnvIsolated:
		root := t.TempDir()
		env.HomeDir = filepath.Join(root, "home")
		env.FS = afero.NewOsFs()
		t.Setenv(paths.EnvConfigDir, filepath.Join(root, "confsynth-config"))
		t.Setenv(paths.EnvStateDir, filepath.Join(root, "confsynth-state"))
	default:
		env.HomeDir = "/virtual/home"
		env.FS = afero.NewMemMapFs()
	}
	env.ConfigHome = filepath.Join(env.HomeDir, ".config")
	env.StateHome = filepath.Join(env.HomeDir, ".local", "state")

	require.NoError(t, env.FS.MkdirAll(env.ConfigHome, 0755))

	env.Env = paths.NewEnvironment(map[string]string{
		paths.EnvHome:     env.HomeDir,
		"XDG_CONFIG_HOME": env.ConfigHome,
		"XDG_STATE_HOME":  env.StateHome,
	})
	return env
}

// Path joins elem under the home directory.
func (env *TestEnvironment) Path(elem ...string) string {
	return filepath.Join(append([]string{env.HomeDir}, elem...)...)
}

// WriteFile writes content to path, creating parent directories.
func (env *TestEnvironment) WriteFile(path, content string) {
	env.t.Helper()
	require.NoError(env.t, env.FS.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(env.t, afero.WriteFile(env.FS, path, []byte(content), 0644))
}

// ReadFile returns the content of path, failing the test if it is missing.
func (env *TestEnvironment) ReadFile(path string) string {
	env.t.Helper()
	data, err := afero.ReadFile(env.FS, path)
	require.NoError(env.t, err)
	return string(data)
}

// Exists reports whether path exists.
func (env *TestEnvironment) Exists(path string) bool {
	_, err := env.FS.Stat(path)
	return err == nil
}

// Mode returns the permission bits of path.
func (env *TestEnvironment) Mode(path string) os.FileMode {
	env.t.Helper()
	info, err := env.FS.Stat(path)
	require.NoError(env.t, err)
	return info.Mode().Perm()
}
