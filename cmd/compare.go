package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ghrelinlab/posemetrics/core"
	"github.com/ghrelinlab/posemetrics/internal/contract"
)

// compareCmd runs the groupwise statistical comparison.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare a behavioral feature between two treatment groups.",
	Long: `Compute the selected feature for the base and target groups and compare
them with Welch's unequal-variance t-test and Cohen's d.

The two groups are defined by treatment filters over the trial catalog:
'none' selects untreated trials, 'any' selects everything, and any other
value selects trials with that exact treatment label.

Examples:
  # Untreated vs ghrelin-treated animals in the open field
  posemetrics compare --task openfield --base-treatment none --target-treatment ghrelin

  # Head-body misalignment between strains
  posemetrics compare --feature head_body_misalignment --strain ob/ob

  # Machine-readable result for a pipeline
  posemetrics compare --output json --output-file result.json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCompare(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run group comparison", err)
		}
	},
}
