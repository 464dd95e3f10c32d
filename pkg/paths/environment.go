package paths

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
)

// Environment is an immutable snapshot of variables used for path expansion.
type Environment struct {
	vars map[string]string
}

// NewEnvironment builds an Environment from vars. The map is copied.
func NewEnvironment(vars map[string]string) Environment {
	copied := make(map[string]string, len(vars))
	for k, v := range vars {
		copied[k] = v
	}
	return Environment{vars: copied}
}

// Snapshot captures the process environment. XDG base directories and HOME
// are filled in from their platform defaults when unset, so templates such
// as ${XDG_CONFIG_HOME}/app resolve on a bare login.
func Snapshot() Environment {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			vars[k] = v
		}
	}

	defaults := map[string]string{
		EnvHome:           xdg.Home,
		"XDG_CONFIG_HOME": xdg.ConfigHome,
		"XDG_DATA_HOME":   xdg.DataHome,
		"XDG_CACHE_HOME":  xdg.CacheHome,
		"XDG_STATE_HOME":  xdg.StateHome,
	}
	for k, v := range defaults {
		if vars[k] == "" && v != "" {
			vars[k] = v
		}
	}
	return Environment{vars: vars}
}

// With returns a copy of e with overrides applied on top.
func (e Environment) With(overrides map[string]string) Environment {
	merged := make(map[string]string, len(e.vars)+len(overrides))
	for k, v := range e.vars {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return Environment{vars: merged}
}

// Lookup returns the value of name and whether it is set.
func (e Environment) Lookup(name string) (string, bool) {
	v, ok := e.vars[name]
	return v, ok
}

// Get returns the value of name, or an empty string.
func (e Environment) Get(name string) string {
	return e.vars[name]
}

// Home returns the home directory recorded in the snapshot.
func (e Environment) Home() string {
	return e.vars[EnvHome]
}

// Pairs returns the snapshot as sorted KEY=value strings.
func (e Environment) Pairs() []string {
	pairs := make([]string, 0, len(e.vars))
	for k, v := range e.vars {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return pairs
}

// Len returns the number of variables in the snapshot.
func (e Environment) Len() int {
	return len(e.vars)
}

// expandHome replaces a leading ~ with home. Forms such as ~user are left
// alone.
func expandHome(path, home string) string {
	if path == "" || path[0] != '~' || home == "" {
		return path
	}
	if len(path) == 1 {
		return home
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(home, path[2:])
	}
	return path
}
