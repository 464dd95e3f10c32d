// Package testutil provides test environments for synthesis tests.
//
// Key components:
//   - TestEnvironment: a filesystem plus the environment snapshot used to
//     expand target paths, either in memory or in a temp directory
//   - Manifest helpers for writing manifests and targets inline
//
// Usage guidelines:
//   - Prefer EnvMemoryOnly; use EnvIsolated only to exercise real renames,
//     permissions or fsnotify
//   - Define test data inline, not in external files
package testutil
