package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/specstatus/internal/infrastructure/di"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the workflow status of the current branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				return renderSnapshot(ctx, c, opts.cfg.WorkspaceRoots())
			})
		},
	}
}

func renderSnapshot(ctx context.Context, c *di.Container, roots []string) error {
	snapshot, err := c.GetSnapshotUseCase().Execute(ctx, roots)
	if err != nil {
		return err
	}
	return c.GetPresenter().PresentSnapshot(snapshot)
}
