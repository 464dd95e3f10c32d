package formats

import (
	"github.com/arthur-debert/confsynth/pkg/errors"
	"github.com/arthur-debert/confsynth/pkg/types"
)

// ParseError reports that an existing file cannot be decoded in format.
func ParseError(format string, err error) error {
	return errors.Wrapf(err, errors.ErrParse, "existing file is not valid %s", format).
		WithDetail(errors.DetailFormat, format)
}

// ParseErrorf reports a decoding problem that has no underlying error.
func ParseErrorf(format, msg string, args ...interface{}) error {
	return errors.Newf(errors.ErrParse, msg, args...).
		WithDetail(errors.DetailFormat, format)
}

// Unencodable reports a value the format has no representation for.
func Unencodable(format, key string, v types.Value, reason string) error {
	return errors.Newf(errors.ErrValidation, "%s cannot encode field %q: %s", format, key, reason).
		WithDetails(map[string]interface{}{
			errors.DetailFormat: format,
			errors.DetailField:  key,
			errors.DetailActual: string(v.Kind()),
		})
}

// HasNestedList reports whether v is a list holding another list.
func HasNestedList(v types.Value) bool {
	for _, item := range v.Items() {
		if item.Kind() == types.TypeList {
			return true
		}
	}
	return false
}
