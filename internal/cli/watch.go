package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/arthur-debert/confsynth/pkg/config"
	"github.com/arthur-debert/confsynth/pkg/logging"
	"github.com/arthur-debert/confsynth/pkg/paths"
	"github.com/arthur-debert/confsynth/pkg/watch"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newWatchCmd(opts *globalOptions) *cobra.Command {
	flagKeys := map[string]string{"debounce": "watch_debounce"}
	for flag, key := range runFlags {
		flagKeys[flag] = key
	}

	cmd := &cobra.Command{
		Use:   "watch <manifest>",
		Short: MsgWatchShort,
		Long:  MsgWatchLong,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.GetLogger("cli.watch")
			manifestPath := args[0]

			cfg, err := opts.loadConfig(cmd, flagKeys)
			if err != nil {
				return err
			}
			r, err := opts.newRenderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			fs := afero.NewOsFs()
			stderr := cmd.ErrOrStderr()

			run := func(ctx context.Context, cfg *config.Config) {
				err := generate(ctx, fs, cfg, manifestPath, r, stderr)
				var failed *FailedError
				if err != nil && !stderrors.As(err, &failed) {
					_ = r.RenderError(err)
				}
			}
			run(cmd.Context(), cfg)

			files := []string{manifestPath}
			configFile := opts.configFile
			if configFile == "" {
				configFile = paths.ConfigFilePath()
			}
			if _, err := os.Stat(configFile); err == nil {
				files = append(files, configFile)
			}

			w, err := watch.New(watch.Config{
				Files:    files,
				Debounce: cfg.WatchDebounce,
				OnChange: func(ctx context.Context, changed []string) error {
					fmt.Fprintf(stderr, MsgRegenerating+"\n", changed[0])
					// Config edits apply on the next run.
					next, err := opts.loadConfig(cmd, flagKeys)
					if err != nil {
						return err
					}
					run(ctx, next)
					return nil
				},
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(stderr, MsgWatching+"\n", manifestPath)
			logger.Info().Strs("files", files).Dur("debounce", cfg.WatchDebounce).Msg("Watching")
			return w.Run(cmd.Context())
		},
	}
	addRunFlags(cmd)
	cmd.Flags().Duration("debounce", 0, MsgFlagDebounce)
	return cmd
}
