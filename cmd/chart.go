package cmd

import (
	"github.com/huangsam/finmap/core"
	"github.com/huangsam/finmap/internal/contract"
	"github.com/spf13/cobra"
)

// chartCmd renders the popup chart of a single region.
var chartCmd = &cobra.Command{
	Use:   "chart <region>",
	Short: "Render the investment chart of one region as SVG.",
	Long: `Render the same investment-over-time line chart that appears in the map
popup of a region, and write it as a standalone SVG.

The region name must match the metrics table exactly (case-sensitive).
A region without investment values yields a placeholder chart.

Examples:
  # Print the chart to stdout
  finmap chart Ontario

  # Write a larger chart to a file
  finmap chart Quebec --chart-width 800 --chart-height 500 --output-file quebec.svg`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		if err := core.ExecuteChart(rootCtx, cfg, args[0]); err != nil {
			contract.LogFatal("Cannot render chart", err)
		}
	},
}
