package cli

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Synthesize configuration files from declared values"
	MsgGenerateShort   = "Write every file listed in a manifest"
	MsgWatchShort      = "Regenerate files whenever the manifest changes"
	MsgFormatsShort    = "List supported file formats"
	MsgVersionShort    = "Print version information"
	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Generate man pages"

	// Status messages
	MsgWatching        = "Watching %s for changes (Ctrl-C to stop)"
	MsgMetricsWritten  = "Metrics written to %s"
	MsgRegenerating    = "Regenerating after change to %s"
	MsgManPagesWritten = "Man pages written to %s"

	// Flag descriptions
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig   = "Config file (default is $XDG_CONFIG_HOME/confsynth/config.toml)"
	MsgFlagOutput   = "Output format: auto, term, text or json"
	MsgFlagDryRun   = "Preview changes without writing any file"
	MsgFlagDiff     = "Show a unified diff for every changed file"
	MsgFlagWorkers  = "Maximum files processed concurrently (0 = one per CPU)"
	MsgFlagMetrics  = "Write a Prometheus textfile with run metrics to this path"
	MsgFlagDebounce = "Quiet period before regenerating after a change"
	MsgFlagManDir   = "Write one man page per command into this directory instead of stdout"
)

// Long descriptions
const (
	MsgRootLong = `confsynth writes configuration files for other programs from a manifest
of typed schemas and desired values.

Values you declare always win. Keys already present in a target file that
you do not declare are kept, so hand edits to unmanaged settings survive
every run. Files are only rewritten when their content changes.`

	MsgGenerateLong = `Generate reads the manifest, resolves every target path, validates the
declared values against their schema, and reconciles each target file with
what is already on disk.

A failing file never stops the others. The command exits non-zero when at
least one file failed.`

	MsgWatchLong = `Watch runs generate once, then again every time the manifest or the
config file changes.`
)
