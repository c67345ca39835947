package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ghrelinlab/posemetrics/core"
	"github.com/ghrelinlab/posemetrics/internal/contract"
)

// featuresCmd computes per-trial feature values for one group.
var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Compute per-trial feature values for the base group.",
	Long: `Compute the selected behavioral feature for every trial the base group
filter selects, and print one row per trial.

Useful for:
- Inspecting individual animals before running a group comparison
- Spotting trials with too few valid frames (reported as NA with a reason)
- Persisting feature values for later queries with --save
- Dumping the binned time series behind velocity or curvature with --series

Examples:
  # Mean velocity for every untreated open-field trial
  posemetrics features --task openfield --base-treatment none

  # Curvature per trial, persisted to the trial database
  posemetrics features --feature curvature_mean --backend sqlite --save

  # Export values to CSV for plotting
  posemetrics features --output csv --output-file velocity.csv

  # Per-minute speed series, one row per bin
  posemetrics features --series --output csv`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteFeatures(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run feature analysis", err)
		}
	},
}
