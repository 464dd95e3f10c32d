// Package config loads confsynth's runtime settings.
//
// Settings are layered, later sources overriding earlier ones:
//
//  1. built-in defaults (embedded/defaults.toml)
//  2. the user config file, TOML or YAML by extension
//  3. CONFSYNTH_* environment variables
//  4. command line flag overrides
//
// Environment variable names drop the prefix and are lower-cased; a double
// underscore separates nested keys, so CONFSYNTH_ENV__THEME_DIR sets
// env.theme_dir.
package config
