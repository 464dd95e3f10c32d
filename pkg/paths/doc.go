// Package paths resolves where confsynth reads and writes.
//
// It covers two concerns:
//
//   - The environment snapshot used to expand target path templates. A
//     snapshot is taken once per run from the process environment, with XDG
//     base directories filled in when unset, and is then read only.
//   - confsynth's own directories (config and state), following the XDG Base
//     Directory specification.
//
// # Path templates
//
// Targets may reference variables as $VAR, ${VAR} or ${VAR:-default}, and may
// start with ~ for the home directory:
//
//	env := paths.Snapshot()
//	p, err := paths.Expand("${XDG_CONFIG_HOME}/ghostty/config", env)
//
// A reference to a variable that is not in the snapshot, with no default, is
// a CONFIG error. Command substitution is rejected the same way.
//
// # Environment Variables
//
//   - CONFSYNTH_CONFIG_DIR: Override the config directory (default: $XDG_CONFIG_HOME/confsynth)
//   - CONFSYNTH_STATE_DIR: Override the state directory (default: $XDG_STATE_HOME/confsynth)
package paths
