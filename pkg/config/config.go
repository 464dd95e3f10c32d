package config

import (
	"os"
	"reflect"
	"strconv"
	"time"

	"github.com/arthur-debert/confsynth/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
)

// Config holds the runtime settings for a synthesis run.
type Config struct {
	// Workers bounds concurrent syntheses. Zero means one per CPU.
	Workers int  `koanf:"workers"`
	DryRun  bool `koanf:"dry_run"`
	Diff    bool `koanf:"diff"`

	// FileMode and DirMode are written as octal strings, e.g. "0644".
	FileMode os.FileMode `koanf:"file_mode"`
	DirMode  os.FileMode `koanf:"dir_mode"`

	MetricsTextfile string        `koanf:"metrics_textfile"`
	WatchDebounce   time.Duration `koanf:"watch_debounce"`

	// Env adds entries to the environment snapshot used to expand target
	// paths.
	Env map[string]string `koanf:"env"`
}

// Validate rejects settings no run can use.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return errors.Newf(errors.ErrConfig, "workers must not be negative, got %d", c.Workers).
			WithDetail(errors.DetailField, "workers")
	}
	if c.FileMode == 0 || c.FileMode&^os.ModePerm != 0 {
		return errors.Newf(errors.ErrConfig, "invalid file_mode %#o", uint32(c.FileMode)).
			WithDetail(errors.DetailField, "file_mode")
	}
	if c.DirMode == 0 || c.DirMode&^os.ModePerm != 0 {
		return errors.Newf(errors.ErrConfig, "invalid dir_mode %#o", uint32(c.DirMode)).
			WithDetail(errors.DetailField, "dir_mode")
	}
	if c.WatchDebounce < 0 {
		return errors.New(errors.ErrConfig, "watch_debounce must not be negative").
			WithDetail(errors.DetailField, "watch_debounce")
	}
	return nil
}

// ParseMode parses an octal permission string such as "0644" or "755".
func ParseMode(s string) (os.FileMode, error) {
	n, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrConfig, "invalid permission %q, expected octal", s)
	}
	return os.FileMode(n), nil
}

// fileModeHookFunc decodes octal strings into os.FileMode. Integers pass
// through unchanged, so TOML's 0o644 works too.
func fileModeHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != reflect.TypeOf(os.FileMode(0)) || f.Kind() != reflect.String {
			return data, nil
		}
		return ParseMode(data.(string))
	}
}
