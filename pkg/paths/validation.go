package paths

import (
	"strings"

	"github.com/arthur-debert/confsynth/pkg/errors"
)

// maxPathLength is a common filesystem limit.
const maxPathLength = 4096

// ValidatePath rejects paths no filesystem will accept.
func ValidatePath(path string) error {
	if path == "" {
		return errors.New(errors.ErrInvalidInput, "path cannot be empty")
	}
	if strings.Contains(path, "\x00") {
		return errors.New(errors.ErrInvalidInput, "path contains null bytes")
	}
	if len(path) > maxPathLength {
		return errors.New(errors.ErrInvalidInput, "path exceeds maximum length")
	}
	return nil
}
