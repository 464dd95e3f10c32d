package cli

import (
	"github.com/arthur-debert/confsynth/pkg/formats/builtin"
	"github.com/arthur-debert/confsynth/pkg/output"
	"github.com/spf13/cobra"
)

func newFormatsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: MsgFormatsShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := opts.newRenderer(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			registry := builtin.NewRegistry()
			var infos []output.FormatInfo
			for _, p := range registry.Plugins() {
				info := output.FormatInfo{Name: p.Name(), Extensions: p.Extensions()}
				for _, alias := range registry.Aliases(p.Name()) {
					if alias != p.Name() {
						info.Aliases = append(info.Aliases, alias)
					}
				}
				infos = append(infos, info)
			}
			return r.RenderFormats(infos)
		},
	}
}
