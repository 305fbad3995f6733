package cmd

import (
	"github.com/huangsam/finmap/core"
	"github.com/huangsam/finmap/internal/contract"
	"github.com/spf13/cobra"
)

// renderCmd renders the interactive map.
var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the interactive HTML map (default command).",
	Long: `Load region boundaries and metrics, join them by region name and write a
single self-contained HTML map.

The map contains:
- A choropleth of the latest investment per region with a legend
- A dashed overlay with a hover tooltip naming the region
- A heatmap weighted by investment at each region centroid
- A marker per region whose popup shows the values and an investment chart

Missing values are shown as N/A and painted with the no-data color.

Examples:
  # Render with the default file names
  finmap render

  # Render a different pair of inputs
  finmap render --geometry states.geojson --metrics states.xlsx --output states.html

  # Use the values of one specific year
  finmap render --join-policy year --year 2021

  # Read metrics from a SQLite store populated with 'finmap metrics import'
  finmap render --metrics-backend sqlite`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run:     runRender,
}

// runRender is shared by the root command and renderCmd.
func runRender(_ *cobra.Command, _ []string) {
	executeOrFatal("Cannot render map", core.ExecuteRender)
}

// executeOrFatal runs the given function with the validated config and exits on failure.
func executeOrFatal(msg string, executeFunc core.ExecutorFunc) {
	if err := executeFunc(rootCtx, cfg); err != nil {
		contract.LogFatal(msg, err)
	}
}
