package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	infraConfig "github.com/YoshitsuguKoike/specstatus/internal/infra/config"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage setting.json",
		RunE:  func(c *cobra.Command, _ []string) error { return c.Help() },
	}
	cmd.AddCommand(newConfigInitCmd(opts))
	return cmd
}

func newConfigInitCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write setting.json with every key at its default",
		Long: "init writes setting.json into the home directory ($" + infraConfig.HomeEnv +
			" or " + infraConfig.DefaultHome + "). An existing file is kept unless --force is given.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := infraConfig.WriteDefaultSettings(opts.fs, infraConfig.ResolveHome(), force)
			if err != nil {
				return err
			}
			opts.logger.Debug("wrote default settings to %s", path)
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing setting.json")
	return cmd
}
