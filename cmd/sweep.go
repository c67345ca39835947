package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ghrelinlab/posemetrics/core"
	"github.com/ghrelinlab/posemetrics/internal/contract"
)

// sweepCmd evaluates the comparison over a parameter grid.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Sweep feature parameters and rank them by group separation.",
	Long: `Evaluate the group comparison over a grid of smoothing windows and speed
thresholds, and rank the grid points by the separation between group means.

Tracks are fetched and normalized once; the grid itself runs in memory, so a
sweep costs little more than a single comparison.

Examples:
  # Default grid over windows and speed thresholds
  posemetrics sweep --feature curvature_mean --base-treatment none --target-treatment ghrelin

  # Custom grid
  posemetrics sweep --windows 3,5,9,15 --speed-thresholds 0.005,0.02

  # Export the full grid for later inspection
  posemetrics sweep --output parquet --output-file sweep.parquet`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteSweep(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot run parameter sweep", err)
		}
	},
}
