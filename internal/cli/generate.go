package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/arthur-debert/confsynth/pkg/config"
	"github.com/arthur-debert/confsynth/pkg/errors"
	"github.com/arthur-debert/confsynth/pkg/formats/builtin"
	"github.com/arthur-debert/confsynth/pkg/logging"
	"github.com/arthur-debert/confsynth/pkg/manifest"
	"github.com/arthur-debert/confsynth/pkg/metrics"
	"github.com/arthur-debert/confsynth/pkg/paths"
	"github.com/arthur-debert/confsynth/pkg/synth"
	"github.com/arthur-debert/confsynth/pkg/types"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// runFlags maps generate and watch flags to config keys.
var runFlags = map[string]string{
	"dry-run":          "dry_run",
	"diff":             "diff",
	"workers":          "workers",
	"metrics-textfile": "metrics_textfile",
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("dry-run", false, MsgFlagDryRun)
	cmd.Flags().Bool("diff", false, MsgFlagDiff)
	cmd.Flags().Int("workers", 0, MsgFlagWorkers)
	cmd.Flags().String("metrics-textfile", "", MsgFlagMetrics)
}

func newGenerateCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <manifest>",
		Short: MsgGenerateShort,
		Long:  MsgGenerateLong,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd, runFlags)
			if err != nil {
				return err
			}
			r, err := opts.newRenderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return generate(cmd.Context(), afero.NewOsFs(), cfg, args[0], r, cmd.ErrOrStderr())
		},
	}
	addRunFlags(cmd)
	return cmd
}

// resultRenderer is the part of output.Renderer a run needs.
type resultRenderer interface {
	RenderResults(results []types.Result) error
}

// generate runs one synthesis batch for the manifest at path and renders
// the results.
func generate(ctx context.Context, fs afero.Fs, cfg *config.Config, path string, r resultRenderer, status io.Writer) error {
	logger := logging.GetLogger("cli.generate")

	m, err := manifest.Load(fs, path)
	if err != nil {
		return err
	}
	env := paths.Snapshot().With(cfg.Env).With(m.Env)

	var collector *metrics.Collector
	if cfg.MetricsTextfile != "" {
		collector = metrics.NewCollector()
	}

	mgr := synth.NewManager(synth.Options{
		FS:       fs,
		Registry: builtin.NewRegistry(),
		Env:      env,
		Workers:  cfg.Workers,
		DryRun:   cfg.DryRun,
		Diff:     cfg.Diff,
		FileMode: cfg.FileMode,
		DirMode:  cfg.DirMode,
		Metrics:  collector,
	})
	results := mgr.Synthesize(ctx, m.Files)

	if err := r.RenderResults(results); err != nil {
		return errors.Wrap(err, errors.ErrIO, "failed to render results")
	}

	if collector != nil {
		if err := collector.WriteTextfile(cfg.MetricsTextfile); err != nil {
			return errors.Wrapf(err, errors.ErrIO, "failed to write metrics to %s", cfg.MetricsTextfile).
				WithDetail(errors.DetailPath, cfg.MetricsTextfile)
		}
		fmt.Fprintf(status, MsgMetricsWritten+"\n", cfg.MetricsTextfile)
	}

	counts := types.CountByStatus(results)
	logger.Info().
		Int("files", len(results)).
		Int("written", counts[types.StatusWritten]).
		Int("unchanged", counts[types.StatusUnchanged]).
		Int("failed", counts[types.StatusFailed]).
		Msg("Generate completed")

	if n := counts[types.StatusFailed]; n > 0 {
		return &FailedError{Failed: n, Total: len(results)}
	}
	return nil
}
