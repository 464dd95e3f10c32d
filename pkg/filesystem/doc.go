// Package filesystem wraps an afero filesystem with the operations the
// synthesis manager needs: reading a target that may not exist, creating
// parent directories and replacing a file atomically.
//
// Production code passes afero.NewOsFs; tests use afero.NewMemMapFs or a
// temp directory.
package filesystem
