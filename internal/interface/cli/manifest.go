package cli

import (
	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/specstatus/internal/adapter/presenter"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/artifact"
	"github.com/YoshitsuguKoike/specstatus/internal/domain/model/workflow"
)

func newManifestCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "manifest",
		Short: "Print the workflow steps and the artifacts they expect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := presenter.New(opts.cfg.OutputFormat(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return p.PresentManifest(artifact.Manifest(), workflow.Definitions())
		},
	}
}
