package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/specstatus/internal/application/dto"
	"github.com/YoshitsuguKoike/specstatus/internal/infrastructure/di"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect or extend the workflow history of the current branch",
		RunE:  func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.AddCommand(newHistoryShowCmd(opts))
	cmd.AddCommand(newHistoryRecordCmd(opts))
	return cmd
}

func newHistoryShowCmd(opts *rootOptions) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "List the recorded events of the current branch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				if all {
					view, err := c.GetShowHistoryUseCase().ListBranches(ctx)
					if err != nil {
						return err
					}
					return c.GetPresenter().PresentBranches(view)
				}

				view, err := c.GetShowHistoryUseCase().Execute(ctx, opts.cfg.WorkspaceRoots())
				if err != nil {
					return err
				}
				return c.GetPresenter().PresentHistory(view)
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list every branch with stored history instead")
	return cmd
}

func newHistoryRecordCmd(opts *rootOptions) *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "record <step>",
		Short: "Record that a workflow step was done on the current branch",
		Long: "record appends a session-log event for <step> (constitution, specify, plan, tasks, " +
			"analyze or implement). Recorded steps count as complete regardless of artifact content.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				out, err := c.GetRecordStepUseCase().Execute(ctx, opts.cfg.WorkspaceRoots(), dto.RecordStepInput{
					StepID: args[0],
					Label:  label,
				})
				if err != nil {
					return err
				}
				return c.GetPresenter().PresentRecorded(out)
			})
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "event label (defaults to the step label)")
	return cmd
}
