package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/huangsam/finmap/schema"
	"gonum.org/v1/plot/palette/brewer"
)

// Default values for configuration.
const (
	DefaultGeometryPath  = "provinces.geojson"
	DefaultMetricsPath   = "finance_data.csv"
	DefaultOutputPath    = "interactive_geospatial_finance_map_with_charts.html"
	DefaultNameProperty  = "name"
	DefaultPalette       = "YlGnBu"
	DefaultPaletteColors = 9
	DefaultLegendClasses = 6
	DefaultNoDataColor   = "#ffffff"
	DefaultCenter        = "56.1304,-106.3468"
	DefaultZoom          = 4
	DefaultTileURL       = "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png"
	DefaultAttribution   = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`
	DefaultHeatRadius    = 15
	DefaultChartWidth    = 480
	DefaultChartHeight   = 300
	DefaultPrecision     = 2
	DefaultSnapshotFile  = "map.png"
	DefaultSnapshotWait  = "2s"
)

// Default column headers of the metrics table.
const (
	DefaultRegionColumn     = "Region"
	DefaultYearColumn       = "Year"
	DefaultInvestmentColumn = "Investment"
	DefaultIncomeColumn     = "Income"
)

// DefaultWorkers is the default number of concurrent chart workers.
var DefaultWorkers = runtime.GOMAXPROCS(0)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ColumnNames holds the configurable metrics table headers.
type ColumnNames struct {
	Region     string
	Year       string
	Investment string
	Income     string
}

// Config holds the runtime configuration for the pipeline.
// This struct remains the "final, validated" config.
type Config struct {
	GeometryPath string
	MetricsPath  string
	OutputPath   string // rendered HTML map
	OutputFile   string // optional target for regions/chart exports
	Format       schema.OutputMode

	NameProperty string
	Columns      ColumnNames
	Sheet        string

	JoinPolicy schema.JoinPolicy
	Year       int
	Strict     bool
	Unmatched  schema.UnmatchedPolicy

	Palette       string
	PaletteColors int
	LegendClasses int
	NoDataColor   string

	Center      [2]float64
	Zoom        int
	TileURL     string
	Attribution string
	HeatRadius  int

	ChartWidth  int
	ChartHeight int
	Workers     int
	Progress    bool

	Precision int
	Width     int  // Terminal width override (0 = auto-detect)
	UseColors bool // Enable colored labels in table output

	MetricsBackend   schema.DatabaseBackend
	MetricsDBConnect string // Please use env var as this is plaintext

	SnapshotFile string
	SnapshotWait time.Duration
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	Geometry   string `mapstructure:"geometry"`
	Metrics    string `mapstructure:"metrics"`
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Format     string `mapstructure:"format"`

	NameProperty     string `mapstructure:"name-property"`
	RegionColumn     string `mapstructure:"region-column"`
	YearColumn       string `mapstructure:"year-column"`
	InvestmentColumn string `mapstructure:"investment-column"`
	IncomeColumn     string `mapstructure:"income-column"`
	Sheet            string `mapstructure:"sheet"`

	JoinPolicy string `mapstructure:"join-policy"`
	Year       int    `mapstructure:"year"`
	Strict     bool   `mapstructure:"strict"`
	Unmatched  string `mapstructure:"unmatched"`

	Palette       string `mapstructure:"palette"`
	PaletteColors int    `mapstructure:"palette-colors"`
	LegendClasses int    `mapstructure:"legend-classes"`
	NoDataColor   string `mapstructure:"no-data-color"`

	Center      string `mapstructure:"center"`
	Zoom        int    `mapstructure:"zoom"`
	Tiles       string `mapstructure:"tiles"`
	Attribution string `mapstructure:"attribution"`
	HeatRadius  int    `mapstructure:"heat-radius"`

	ChartWidth  int  `mapstructure:"chart-width"`
	ChartHeight int  `mapstructure:"chart-height"`
	Workers     int  `mapstructure:"workers"`
	Progress    bool `mapstructure:"progress"`

	Precision int    `mapstructure:"precision"`
	Width     int    `mapstructure:"width"`
	Color     string `mapstructure:"color"`

	MetricsBackend   string `mapstructure:"metrics-backend"`
	MetricsDBConnect string `mapstructure:"metrics-db-connect"`

	SnapshotFile string `mapstructure:"snapshot-file"`
	SnapshotWait string `mapstructure:"snapshot-wait"`
}

// DefaultConfig returns a validated config built from the built-in defaults.
func DefaultConfig() *Config {
	cfg := &Config{}
	if err := ProcessAndValidate(cfg, DefaultRawInput()); err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return cfg
}

// DefaultRawInput returns the raw input matching the CLI defaults.
func DefaultRawInput() *ConfigRawInput {
	return &ConfigRawInput{
		Geometry:         DefaultGeometryPath,
		Metrics:          DefaultMetricsPath,
		Output:           DefaultOutputPath,
		Format:           string(schema.TextOut),
		NameProperty:     DefaultNameProperty,
		RegionColumn:     DefaultRegionColumn,
		YearColumn:       DefaultYearColumn,
		InvestmentColumn: DefaultInvestmentColumn,
		IncomeColumn:     DefaultIncomeColumn,
		JoinPolicy:       string(schema.LatestJoin),
		Unmatched:        string(schema.IncludeUnmatched),
		Palette:          DefaultPalette,
		PaletteColors:    DefaultPaletteColors,
		LegendClasses:    DefaultLegendClasses,
		NoDataColor:      DefaultNoDataColor,
		Center:           DefaultCenter,
		Zoom:             DefaultZoom,
		Tiles:            DefaultTileURL,
		Attribution:      DefaultAttribution,
		HeatRadius:       DefaultHeatRadius,
		ChartWidth:       DefaultChartWidth,
		ChartHeight:      DefaultChartHeight,
		Workers:          DefaultWorkers,
		Precision:        DefaultPrecision,
		Color:            "yes",
		MetricsBackend:   string(schema.NoneBackend),
		SnapshotFile:     DefaultSnapshotFile,
		SnapshotWait:     DefaultSnapshotWait,
	}
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validatePaths(cfg, input); err != nil {
		return err
	}
	if err := validateJoin(cfg, input); err != nil {
		return err
	}
	if err := validateStyle(cfg, input); err != nil {
		return err
	}
	if err := validateView(cfg, input); err != nil {
		return err
	}
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	return validateBackendConfig(cfg, input)
}

// validatePaths transfers input/output locations and tabular column names.
func validatePaths(cfg *Config, input *ConfigRawInput) error {
	cfg.GeometryPath = strings.TrimSpace(input.Geometry)
	cfg.MetricsPath = strings.TrimSpace(input.Metrics)
	cfg.OutputPath = strings.TrimSpace(input.Output)
	cfg.OutputFile = strings.TrimSpace(input.OutputFile)
	cfg.Sheet = strings.TrimSpace(input.Sheet)

	if cfg.GeometryPath == "" {
		return fmt.Errorf("geometry path cannot be empty")
	}
	if cfg.OutputPath == "" {
		return fmt.Errorf("output path cannot be empty")
	}
	if info, err := os.Stat(cfg.OutputPath); err == nil && info.IsDir() {
		return fmt.Errorf("output path %q is a directory", cfg.OutputPath)
	}
	if filepath.Ext(cfg.OutputPath) == "" {
		LogWarn("Output path has no extension", fmt.Errorf("%s will still be written as HTML", cfg.OutputPath))
	}

	cfg.NameProperty = strings.TrimSpace(input.NameProperty)
	if cfg.NameProperty == "" {
		return fmt.Errorf("name-property cannot be empty")
	}

	cfg.Columns = ColumnNames{
		Region:     strings.TrimSpace(input.RegionColumn),
		Year:       strings.TrimSpace(input.YearColumn),
		Investment: strings.TrimSpace(input.InvestmentColumn),
		Income:     strings.TrimSpace(input.IncomeColumn),
	}
	for _, c := range []struct{ flag, value string }{
		{"region-column", cfg.Columns.Region},
		{"year-column", cfg.Columns.Year},
		{"investment-column", cfg.Columns.Investment},
		{"income-column", cfg.Columns.Income},
	} {
		if c.value == "" {
			return fmt.Errorf("%s cannot be empty", c.flag)
		}
	}
	return nil
}

// validateJoin checks the join selection and unmatched policies.
func validateJoin(cfg *Config, input *ConfigRawInput) error {
	cfg.JoinPolicy = schema.JoinPolicy(strings.ToLower(strings.TrimSpace(input.JoinPolicy)))
	if _, ok := schema.ValidJoinPolicies[cfg.JoinPolicy]; !ok {
		return fmt.Errorf("invalid join policy '%s'. must be latest, year, single", input.JoinPolicy)
	}
	cfg.Year = input.Year
	if cfg.JoinPolicy == schema.YearJoin && cfg.Year <= 0 {
		return fmt.Errorf("--year is required when join policy is %s", schema.YearJoin)
	}
	cfg.Strict = input.Strict

	cfg.Unmatched = schema.UnmatchedPolicy(strings.ToLower(strings.TrimSpace(input.Unmatched)))
	if _, ok := schema.ValidUnmatchedPolicies[cfg.Unmatched]; !ok {
		return fmt.Errorf("invalid unmatched policy '%s'. must be include, exclude", input.Unmatched)
	}
	return nil
}

// validateStyle checks palette, legend and color settings.
func validateStyle(cfg *Config, input *ConfigRawInput) error {
	cfg.Palette = strings.TrimSpace(input.Palette)
	cfg.PaletteColors = input.PaletteColors
	if _, err := brewer.GetPalette(brewer.TypeSequential, cfg.Palette, cfg.PaletteColors); err != nil {
		return fmt.Errorf("invalid palette: %w", err)
	}

	cfg.LegendClasses = input.LegendClasses
	if _, err := brewer.GetPalette(brewer.TypeSequential, cfg.Palette, cfg.LegendClasses); err != nil {
		return fmt.Errorf("invalid legend-classes: %w", err)
	}

	cfg.NoDataColor = strings.ToLower(strings.TrimSpace(input.NoDataColor))
	if !hexColorPattern.MatchString(cfg.NoDataColor) {
		return fmt.Errorf("no-data-color must be a #rrggbb hex color (received %q)", input.NoDataColor)
	}

	if input.HeatRadius <= 0 {
		return fmt.Errorf("heat-radius must be greater than 0 (received %d)", input.HeatRadius)
	}
	cfg.HeatRadius = input.HeatRadius

	if input.ChartWidth < 100 || input.ChartHeight < 100 {
		return fmt.Errorf("chart size must be at least 100x100 (received %dx%d)", input.ChartWidth, input.ChartHeight)
	}
	cfg.ChartWidth = input.ChartWidth
	cfg.ChartHeight = input.ChartHeight
	return nil
}

// validateView parses the initial map center, zoom and tile source.
func validateView(cfg *Config, input *ConfigRawInput) error {
	center, err := ParseCenter(input.Center)
	if err != nil {
		return err
	}
	cfg.Center = center

	if input.Zoom < 0 || input.Zoom > 19 {
		return fmt.Errorf("zoom must be between 0 and 19 (received %d)", input.Zoom)
	}
	cfg.Zoom = input.Zoom

	cfg.TileURL = strings.TrimSpace(input.Tiles)
	if cfg.TileURL == "" {
		return fmt.Errorf("tiles URL cannot be empty")
	}
	cfg.Attribution = input.Attribution
	return nil
}

// validateSimpleInputs processes the remaining scalar fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Progress = input.Progress
	cfg.Width = input.Width

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 0 || input.Precision > 4 {
		return fmt.Errorf("precision must be between 0 and 4 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Format = schema.OutputMode(strings.ToLower(input.Format))
	if _, ok := schema.ValidOutputModes[cfg.Format]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet, xlsx", input.Format)
	}
	if (cfg.Format == schema.ParquetOut || cfg.Format == schema.XLSXOut) && cfg.OutputFile == "" {
		return fmt.Errorf("--output-file is required for %s format", cfg.Format)
	}

	cfg.SnapshotFile = strings.TrimSpace(input.SnapshotFile)
	wait := strings.TrimSpace(input.SnapshotWait)
	if wait == "" {
		wait = DefaultSnapshotWait
	}
	d, err := time.ParseDuration(wait)
	if err != nil || d < 0 {
		return fmt.Errorf("invalid snapshot-wait %q: expected a duration like 2s", input.SnapshotWait)
	}
	cfg.SnapshotWait = d
	return nil
}

// validateBackendConfig validates the optional SQL metrics source.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	backend := strings.ToLower(strings.TrimSpace(input.MetricsBackend))
	if backend == "" {
		backend = string(schema.NoneBackend)
	}
	cfg.MetricsBackend = schema.DatabaseBackend(backend)
	if _, ok := schema.ValidDatabaseBackends[cfg.MetricsBackend]; !ok {
		return fmt.Errorf("invalid metrics backend '%s'. must be sqlite, mysql, postgresql, none", input.MetricsBackend)
	}
	cfg.MetricsDBConnect = input.MetricsDBConnect
	if err := ValidateDatabaseConnectionString(cfg.MetricsBackend, cfg.MetricsDBConnect); err != nil {
		return err
	}
	if cfg.MetricsBackend == schema.NoneBackend && cfg.MetricsPath == "" {
		return fmt.Errorf("metrics path cannot be empty without a metrics backend")
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("metrics-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("metrics-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	profilePrefix = strings.TrimSpace(profilePrefix)
	if profilePrefix == "" {
		return nil
	}
	if strings.HasSuffix(profilePrefix, string(os.PathSeparator)) {
		return fmt.Errorf("profile prefix %q must name a file, not a directory", profilePrefix)
	}
	profile.Enabled = true
	profile.Prefix = profilePrefix
	return nil
}

// ParseCenter parses "lat,lon" into a map center.
func ParseCenter(s string) ([2]float64, error) {
	var center [2]float64
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return center, fmt.Errorf("center must be 'lat,lon' (received %q)", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return center, fmt.Errorf("invalid center latitude %q: %w", parts[0], err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return center, fmt.Errorf("invalid center longitude %q: %w", parts[1], err)
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return center, fmt.Errorf("center %q is out of range", s)
	}
	center[0], center[1] = lat, lon
	return center, nil
}

// GetMetricsDBFilePath returns the default path to the SQLite metrics store.
func GetMetricsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".finmap_metrics.db"
	}
	return filepath.Join(homeDir, ".finmap_metrics.db")
}
