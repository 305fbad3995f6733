// Package cmd defines the command-line interface for finmap.
package cmd

import (
	"github.com/huangsam/finmap/internal/contract"
	"github.com/huangsam/finmap/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(regionsCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the metrics subcommands to the parent metrics command
	metricsCmd.AddCommand(metricsImportCmd)
	metricsCmd.AddCommand(metricsMigrateCmd)
	metricsCmd.AddCommand(metricsStatusCmd)
	metricsCmd.AddCommand(metricsExportCmd)

	// Bind all persistent flags of rootCmd to Viper
	flags := rootCmd.PersistentFlags()
	flags.StringP("geometry", "g", contract.DefaultGeometryPath, "Path to the region boundaries GeoJSON")
	flags.StringP("metrics", "m", contract.DefaultMetricsPath, "Path to the metrics table (.csv or .xlsx)")
	flags.StringP("output", "o", contract.DefaultOutputPath, "Path of the rendered HTML map")
	flags.String("output-file", "", "Optional path to write tabular or chart output to")
	flags.String("format", string(schema.TextOut), "Tabular output format: text or csv or json or parquet or xlsx")
	flags.String("name-property", contract.DefaultNameProperty, "GeoJSON feature property holding the region name")
	flags.String("region-column", contract.DefaultRegionColumn, "Metrics column holding the region name")
	flags.String("year-column", contract.DefaultYearColumn, "Metrics column holding the year")
	flags.String("investment-column", contract.DefaultInvestmentColumn, "Metrics column holding the investment amount")
	flags.String("income-column", contract.DefaultIncomeColumn, "Metrics column holding the income amount")
	flags.String("sheet", "", "Worksheet to read when metrics is an XLSX workbook (default: first sheet)")
	flags.String("join-policy", string(schema.LatestJoin), "Record selection per region: latest or year or single")
	flags.Int("year", 0, "Year to select when join-policy is year")
	flags.Bool("strict", false, "Fail when several records tie for the selected year")
	flags.String("unmatched", string(schema.IncludeUnmatched), "Regions without metrics: include or exclude")
	flags.String("palette", contract.DefaultPalette, "Sequential ColorBrewer palette name")
	flags.Int("palette-colors", contract.DefaultPaletteColors, "Number of palette colors for the continuous scale")
	flags.Int("legend-classes", contract.DefaultLegendClasses, "Number of legend classes for the choropleth")
	flags.String("no-data-color", contract.DefaultNoDataColor, "Fill color for regions without investment")
	flags.String("center", contract.DefaultCenter, "Initial map center as lat,lon")
	flags.Int("zoom", contract.DefaultZoom, "Initial map zoom level")
	flags.String("tiles", contract.DefaultTileURL, "Base map tile URL template")
	flags.String("attribution", contract.DefaultAttribution, "Base map tile attribution")
	flags.Int("heat-radius", contract.DefaultHeatRadius, "Heatmap point radius in pixels")
	flags.Int("chart-width", contract.DefaultChartWidth, "Popup chart width in pixels")
	flags.Int("chart-height", contract.DefaultChartHeight, "Popup chart height in pixels")
	flags.Int("workers", contract.DefaultWorkers, "Number of concurrent chart workers")
	flags.Bool("progress", false, "Show a progress bar while charts render")
	flags.Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	flags.String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	flags.Int("width", 0, "Terminal width override (0 = auto-detect)")
	flags.String("metrics-backend", string(schema.NoneBackend), "Metrics store backend: sqlite or mysql or postgresql or none")
	flags.String("metrics-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	flags.String("profile", "", "Enable profiling and write profiles to files with this prefix")
	flags.String("config", "", "Path to config file")
	if err := viper.BindPFlags(flags); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of snapshotCmd to Viper
	snapshotCmd.Flags().String("snapshot-file", contract.DefaultSnapshotFile, "Path of the PNG snapshot")
	snapshotCmd.Flags().String("snapshot-wait", contract.DefaultSnapshotWait, "Time to wait for tiles before capturing")
	if err := viper.BindPFlags(snapshotCmd.Flags()); err != nil {
		contract.LogFatal("Error binding snapshot flags", err)
	}

	// Bind all flags of metricsImportCmd to Viper
	metricsImportCmd.Flags().Bool("replace", false, "Delete existing records before importing")
	if err := viper.BindPFlags(metricsImportCmd.Flags()); err != nil {
		contract.LogFatal("Error binding metrics import flags", err)
	}

	// Bind all flags of metricsMigrateCmd to Viper
	metricsMigrateCmd.Flags().Int("target-version", -1, "Target schema version (-1 for latest)")
	if err := viper.BindPFlags(metricsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding metrics migrate flags", err)
	}
}
