package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/ucdstore/internal/app"
	"go.trai.ch/ucdstore/internal/engine/mirror"
	"go.trai.ch/ucdstore/internal/engine/syncer"
)

func (c *CLI) newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [versions...]",
		Short: "Create the store lockfile for the given versions",
		Long: "Create the store lockfile. Without versions the config file versions are used, " +
			"and without those every version available upstream.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			strategy, _ := cmd.Flags().GetString("strategy")
			versions, err := c.app.Init(cmd.Context(), app.InitOptions{Versions: args, Strategy: strategy})
			if err != nil {
				return err
			}
			return c.renderer(cmd).Versions("Tracked versions", versions)
		},
	}
	cmd.Flags().String("strategy", "", "How to reconcile versions with an existing lockfile: strict, merge or overwrite")
	return cmd
}

func (c *CLI) newMirrorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mirror [versions...]",
		Short: "Download the files of tracked versions into the store",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			report, err := c.app.Mirror(cmd.Context(), mirror.Options{Versions: args, Force: force})
			if err != nil {
				return err
			}
			return c.renderer(cmd).Mirror(report)
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Download files that already exist in the store")
	return cmd
}

func (c *CLI) newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync [versions...]",
		Short: "Track new upstream versions and mirror the ones without files",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			opts := syncer.Options{Versions: args}
			opts.Force, _ = flags.GetBool("force")
			opts.RemoveUnavailable, _ = flags.GetBool("remove-unavailable")
			opts.CleanOrphaned, _ = flags.GetBool("clean")
			res, err := c.app.Sync(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return c.renderer(cmd).Sync(res)
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Re-mirror every tracked version")
	cmd.Flags().Bool("remove-unavailable", false, "Stop tracking versions that are no longer available upstream")
	cmd.Flags().Bool("clean", false, "Remove local files that are not expected for their version")
	return cmd
}
