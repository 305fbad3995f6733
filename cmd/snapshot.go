package cmd

import (
	"github.com/huangsam/finmap/core"
	"github.com/huangsam/finmap/internal/contract"
	"github.com/spf13/cobra"
)

// snapshotCmd captures a PNG of a rendered map with headless Chrome.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot [map.html]",
	Short: "Capture a PNG screenshot of a rendered map.",
	Long: `Open a rendered map in headless Chrome and save a PNG screenshot.

Defaults to the file named by --output. Chrome or Chromium must be installed;
set CHROME_BIN to point at a specific binary.

Examples:
  # Snapshot the default map
  finmap snapshot

  # Snapshot another map and give the tiles more time to load
  finmap snapshot states.html --snapshot-file states.png --snapshot-wait 5s`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		htmlPath := ""
		if len(args) == 1 {
			htmlPath = args[0]
		}
		if err := core.ExecuteSnapshot(rootCtx, cfg, htmlPath); err != nil {
			contract.LogFatal("Cannot capture snapshot", err)
		}
	},
}
