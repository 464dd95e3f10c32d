// Package cli implements the confsynth command line.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/confsynth/internal/version"
	"github.com/arthur-debert/confsynth/pkg/config"
	"github.com/arthur-debert/confsynth/pkg/logging"
	"github.com/arthur-debert/confsynth/pkg/output"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	verbosity  int
	configFile string
	output     string
}

// FailedError reports that a run finished with failed files. The results
// have already been rendered when it is returned.
type FailedError struct {
	Failed int
	Total  int
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("%d of %d files failed", e.Failed, e.Total)
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "confsynth",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging based on verbosity
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", MsgFlagConfig)
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "auto", MsgFlagOutput)

	rootCmd.AddCommand(newGenerateCmd(opts))
	rootCmd.AddCommand(newWatchCmd(opts))
	rootCmd.AddCommand(newFormatsCmd(opts))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	return rootCmd
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := NewRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var failed *FailedError
	if stderrors.As(err, &failed) {
		return 1
	}
	r := output.New(os.Stderr, output.DetectFormat(os.Stderr))
	_ = r.RenderError(err)
	return 1
}

// newRenderer builds the renderer for cmd's output stream.
func (o *globalOptions) newRenderer(w io.Writer) (*output.Renderer, error) {
	format, err := output.ParseFormat(o.output)
	if err != nil {
		return nil, err
	}
	if format == output.FormatAuto {
		format = output.FormatText
		if f, ok := w.(*os.File); ok {
			format = output.DetectFormat(f)
		}
	}
	return output.New(w, format), nil
}

// loadConfig layers the config sources with the flags that were set on cmd.
func (o *globalOptions) loadConfig(cmd *cobra.Command, flagKeys map[string]string) (*config.Config, error) {
	overrides := make(map[string]interface{})
	for flag, key := range flagKeys {
		f := cmd.Flags().Lookup(flag)
		if f == nil || !f.Changed {
			continue
		}
		overrides[key] = f.Value.String()
	}
	return config.Load(config.LoadOptions{ConfigFile: o.configFile, Overrides: overrides})
}
