package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/confsynth/pkg/errors"
	"github.com/arthur-debert/confsynth/pkg/logging"
	"github.com/arthur-debert/confsynth/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment variables that override settings.
const EnvPrefix = "CONFSYNTH_"

// LoadOptions select the sources layered over the built-in defaults.
type LoadOptions struct {
	// ConfigFile is the user config path. When empty the default location
	// is used if it exists; an explicit path must exist.
	ConfigFile string

	// Overrides are applied last, keyed like the config file
	// (e.g. "dry_run").
	Overrides map[string]interface{}
}

// Load builds the Config from every layer and validates it.
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Load system defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to load defaults")
	}

	// 2. Load user config if it exists
	path, err := userConfigPath(opts.ConfigFile)
	if err != nil {
		return nil, err
	}
	if path != "" {
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfig, "failed to load config from %s", path).
				WithDetail(errors.DetailPath, path)
		}
		logger.Debug().Str("path", path).Msg("Loaded user config")
	}

	// 3. Environment variables
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfig, "failed to load environment overrides")
	}

	// 4. Flag overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfig, "failed to load flag overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				fileModeHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfig, "failed to unmarshal configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func userConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", errors.Wrapf(err, errors.ErrNotFound, "config file %s not found", explicit).
				WithDetail(errors.DetailPath, explicit)
		}
		return explicit, nil
	}
	path := paths.ConfigFilePath()
	if _, err := os.Stat(path); err != nil {
		return "", nil
	}
	return path, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Parser(), nil
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	}
	return nil, errors.Newf(errors.ErrConfig, "unsupported config file type %q", filepath.Ext(path)).
		WithDetail(errors.DetailPath, path).
		WithDetail(errors.DetailExpected, ".toml, .yaml or .yml")
}

// envKey maps CONFSYNTH_DRY_RUN to dry_run and CONFSYNTH_ENV__THEME_DIR to
// env.THEME_DIR. Names under env keep their case.
func envKey(s string) string {
	name := strings.TrimPrefix(s, EnvPrefix)
	head, rest, nested := strings.Cut(name, "__")
	if !nested {
		return strings.ToLower(name)
	}
	if strings.EqualFold(head, "env") {
		return "env." + rest
	}
	return strings.ToLower(head + "." + strings.ReplaceAll(rest, "__", "."))
}
