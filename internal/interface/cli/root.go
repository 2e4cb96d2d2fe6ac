package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/YoshitsuguKoike/specstatus/internal/app/config"
	"github.com/YoshitsuguKoike/specstatus/internal/application/port/output"
	infraConfig "github.com/YoshitsuguKoike/specstatus/internal/infra/config"
	"github.com/YoshitsuguKoike/specstatus/internal/infrastructure/di"
	"github.com/YoshitsuguKoike/specstatus/internal/interface/cli/version"
)

// rootOptions holds the flags and the configuration loaded for one invocation
type rootOptions struct {
	fs             afero.Fs
	branchProvider output.BranchProvider

	workspaces []string
	storage    string
	format     string
	logLevel   string

	cfg    config.Config
	logger *Logger
}

// presentedError marks an error the user has already been shown
type presentedError struct {
	err error
}

func (e *presentedError) Error() string { return e.err.Error() }

func (e *presentedError) Unwrap() error { return e.err }

// Execute runs the command line and returns the process exit code
func Execute(ctx context.Context, args []string) int {
	cmd := NewRoot()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		var presented *presentedError
		if !errors.As(err, &presented) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// NewRoot builds the specstatus command tree on the OS filesystem
func NewRoot() *cobra.Command {
	return newRootCmd(&rootOptions{fs: afero.NewOsFs()})
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "specstatus",
		Short:         "Track spec-kit workflow progress",
		Long:          "specstatus derives the spec-kit workflow status of the current branch from its artifacts and recorded history.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
		RunE: func(c *cobra.Command, _ []string) error { return c.Help() },
	}

	flags := cmd.PersistentFlags()
	flags.StringSliceVarP(&opts.workspaces, "workspace", "w", nil, "workspace root (repeatable, the first one is primary)")
	flags.StringVar(&opts.storage, "storage", "", "history storage directory (empty disables history)")
	flags.StringVarP(&opts.format, "format", "f", "", "output format: text, json or yaml")
	flags.StringVar(&opts.logLevel, "log-level", "", "stderr log level: debug, info, warn or error")

	cmd.AddCommand(newStatusCmd(opts))
	cmd.AddCommand(newWatchCmd(opts))
	cmd.AddCommand(newHistoryCmd(opts))
	cmd.AddCommand(newManifestCmd(opts))
	cmd.AddCommand(newConfigCmd(opts))
	cmd.AddCommand(version.NewCommand())
	return cmd
}

// load reads setting.json and applies the command line on top.
// Priority: flags > setting.json > defaults
func (o *rootOptions) load(cmd *cobra.Command) error {
	home := infraConfig.ResolveHome()

	var loadErr error
	cfg, err := infraConfig.LoadSettings(o.fs, home)
	if err != nil {
		// Continue with defaults if loading fails
		loadErr = err
		cfg = infraConfig.DefaultConfig(home)
	}

	var storage *string
	if cmd.Flags().Changed("storage") {
		storage = &o.storage
	}

	roots := o.workspaces
	if len(roots) == 0 {
		roots = cfg.WorkspaceRoots()
	}
	absRoots := make([]string, 0, len(roots))
	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("resolve workspace %s: %w", root, err)
		}
		absRoots = append(absRoots, abs)
	}

	o.cfg = cfg.Override(absRoots, storage, o.format, o.logLevel)
	o.logger = NewLogger(LogLevelFromString(o.cfg.StderrLevel()), cmd.ErrOrStderr())
	if loadErr != nil {
		o.logger.Warn("failed to load settings, using defaults: %v", loadErr)
	}
	o.logger.Debug("config source=%s roots=%v storage=%q backend=%s",
		o.cfg.ConfigSource(), o.cfg.WorkspaceRoots(), o.cfg.StorageDir(), o.cfg.HistoryBackend())
	return nil
}

// withContainer builds the container for one command, runs fn and presents its error
func (o *rootOptions) withContainer(cmd *cobra.Command, fn func(ctx context.Context, c *di.Container) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	c, err := di.NewContainer(ctx, di.Config{
		App:            o.cfg,
		Fs:             o.fs,
		OutputWriter:   cmd.OutOrStdout(),
		Logger:         o.logger,
		BranchProvider: o.branchProvider,
	})
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return &presentedError{err: err}
	}
	defer func() {
		if err := c.Close(); err != nil {
			o.logger.Warn("failed to close container: %v", err)
		}
	}()

	if err := fn(ctx, c); err != nil {
		if perr := c.GetPresenter().PresentError(err); perr != nil {
			o.logger.Error("failed to present error: %v", perr)
			return err
		}
		return &presentedError{err: err}
	}
	return nil
}
