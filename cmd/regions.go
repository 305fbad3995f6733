package cmd

import (
	"github.com/huangsam/finmap/core"
	"github.com/spf13/cobra"
)

// regionsCmd prints the joined region table.
var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "Show each region with its joined metrics and color.",
	Long: `Run the load and join steps without rendering, and print every region with
the selected year, investment, income, centroid and choropleth color.

Useful for checking a new dataset before rendering:
- Regions without metrics are listed as unmatched
- Metric rows naming no known region are listed as orphans
- Null values are shown as N/A

Examples:
  # Inspect the join in the terminal
  finmap regions

  # Export the joined table for a spreadsheet
  finmap regions --format xlsx --output-file regions.xlsx

  # Export to JSON including the diagnostics
  finmap regions --format json --output-file regions.json`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		executeOrFatal("Cannot list regions", core.ExecuteRegions)
	},
}
