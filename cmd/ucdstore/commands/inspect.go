package commands

import (
	"errors"

	"github.com/spf13/cobra"
	"go.trai.ch/ucdstore/internal/core/domain"
	"go.trai.ch/ucdstore/internal/engine/analyze"
	"go.trai.ch/ucdstore/internal/engine/compare"
	"go.trai.ch/ucdstore/internal/engine/store"
)

func (c *CLI) newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [versions...]",
		Short: "Report missing and orphaned files of tracked versions",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := c.app.Analyze(cmd.Context(), analyze.Options{Versions: args})
			if err != nil {
				return err
			}
			return c.renderer(cmd).Analysis(report)
		},
	}
}

func (c *CLI) newCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <from> <to>",
		Short: "Show the files added, removed and modified between two versions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			opts := compare.Options{From: args[0], To: args[1]}
			fromMode, _ := flags.GetString("from-mode")
			toMode, _ := flags.GetString("to-mode")
			opts.FromMode = domain.SourceMode(fromMode)
			opts.ToMode = domain.SourceMode(toMode)
			opts.SkipFileHashes, _ = flags.GetBool("no-hashes")
			opts.IncludeLineStats, _ = flags.GetBool("lines")
			cmp, err := c.app.Compare(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return c.renderer(cmd).Comparison(cmp)
		},
	}
	cmd.Flags().String("from-mode", "", "Source of the from version: local, api or prefer-local")
	cmd.Flags().String("to-mode", "", "Source of the to version: local, api or prefer-local")
	cmd.Flags().Bool("no-hashes", false, "Compare file lists only")
	cmd.Flags().Bool("lines", false, "Count added and removed lines of modified files")
	return cmd
}

func (c *CLI) newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that every tracked version is available upstream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			strict, _ := cmd.Flags().GetBool("strict")
			res, err := c.app.Verify(cmd.Context(), store.VerifyOptions{RequireAvailable: strict})
			if res != nil {
				if rerr := c.renderer(cmd).Verify(res); rerr != nil {
					return errors.Join(err, rerr)
				}
			}
			return err
		},
	}
	cmd.Flags().Bool("strict", false, "Fail when a tracked version is missing upstream")
	return cmd
}
