package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ghrelinlab/posemetrics/core"
	"github.com/ghrelinlab/posemetrics/internal/contract"
)

// catalogCmd lists the trials selected for each group.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the trials each group filter selects.",
	Long: `List the trials the base and target filters select from the trial
catalog, without computing any features.

Run this before a comparison to confirm group membership and spot catalog
problems (missing frame rates, misspelled treatments) cheaply.

Examples:
  # Show both groups for an open-field comparison
  posemetrics catalog --task openfield --base-treatment none --target-treatment ghrelin

  # Write one CSV per group for record keeping
  posemetrics catalog --export-prefix groups/openfield`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteCatalog(rootCtx, cfg); err != nil {
			contract.LogFatal("Cannot list trial catalog", err)
		}
	},
}
