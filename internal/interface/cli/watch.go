package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/specstatus/internal/infrastructure/di"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Re-render the status whenever artifacts or the branch change",
		Long: "watch renders the status once, then again after every settled burst of changes " +
			"under .specify and specs, and whenever the checked-out branch changes. Stop it with Ctrl-C.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)

			return opts.withContainer(cmd, func(ctx context.Context, c *di.Container) error {
				return watch(ctx, c, opts.cfg.WorkspaceRoots(), opts.logger)
			})
		},
	}
}

// watch renders until ctx is done. File and branch notifications are coalesced
// into one pending refresh; rendering happens on this goroutine only.
func watch(ctx context.Context, c *di.Container, roots []string, logger *Logger) error {
	refresh := make(chan struct{}, 1)
	notify := func() {
		select {
		case refresh <- struct{}{}:
		default:
		}
	}

	if len(roots) > 0 {
		sub, err := c.GetBranchProvider().SubscribeBranchChange(roots[0], notify)
		switch {
		case err != nil:
			logger.Warn("branch change notification unavailable: %v", err)
		case sub != nil:
			defer sub.Close()
		default:
			logger.Debug("branch change notification unavailable for %s", roots[0])
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	watcherDone := make(chan error, 1)
	go func() {
		watcherDone <- c.NewWatcher(roots).Run(ctx, notify)
	}()

	if err := renderSnapshot(ctx, c, roots); err != nil {
		cancel()
		<-watcherDone
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return <-watcherDone

		case err := <-watcherDone:
			return err

		case <-refresh:
			logger.Debug("change detected, re-deriving status")
			if err := renderSnapshot(ctx, c, roots); err != nil && ctx.Err() == nil {
				logger.Warn("failed to build status snapshot: %v", err)
			}
		}
	}
}
