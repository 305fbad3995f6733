package contract

import (
	"testing"
	"time"

	"github.com/huangsam/finmap/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
		check       func(*testing.T, *Config)
	}{
		{
			name:   "defaults are valid",
			mutate: func(*ConfigRawInput) {},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultGeometryPath, cfg.GeometryPath)
				assert.Equal(t, DefaultMetricsPath, cfg.MetricsPath)
				assert.Equal(t, DefaultOutputPath, cfg.OutputPath)
				assert.Equal(t, schema.LatestJoin, cfg.JoinPolicy)
				assert.Equal(t, schema.IncludeUnmatched, cfg.Unmatched)
				assert.Equal(t, [2]float64{56.1304, -106.3468}, cfg.Center)
				assert.Equal(t, 4, cfg.Zoom)
				assert.Equal(t, 15, cfg.HeatRadius)
				assert.Equal(t, schema.NoneBackend, cfg.MetricsBackend)
				assert.Equal(t, 2*time.Second, cfg.SnapshotWait)
				assert.True(t, cfg.UseColors)
			},
		},
		{
			name:        "empty geometry path",
			mutate:      func(in *ConfigRawInput) { in.Geometry = " " },
			expectError: true,
		},
		{
			name:        "empty output path",
			mutate:      func(in *ConfigRawInput) { in.Output = "" },
			expectError: true,
		},
		{
			name:        "invalid join policy",
			mutate:      func(in *ConfigRawInput) { in.JoinPolicy = "newest" },
			expectError: true,
		},
		{
			name:        "year policy without year",
			mutate:      func(in *ConfigRawInput) { in.JoinPolicy = "year" },
			expectError: true,
		},
		{
			name: "year policy with year",
			mutate: func(in *ConfigRawInput) {
				in.JoinPolicy = "YEAR"
				in.Year = 2021
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.YearJoin, cfg.JoinPolicy)
				assert.Equal(t, 2021, cfg.Year)
			},
		},
		{
			name:        "invalid unmatched policy",
			mutate:      func(in *ConfigRawInput) { in.Unmatched = "drop" },
			expectError: true,
		},
		{
			name:        "unknown palette",
			mutate:      func(in *ConfigRawInput) { in.Palette = "Rainbow" },
			expectError: true,
		},
		{
			name:        "too few palette colors",
			mutate:      func(in *ConfigRawInput) { in.PaletteColors = 2 },
			expectError: true,
		},
		{
			name:        "too many legend classes",
			mutate:      func(in *ConfigRawInput) { in.LegendClasses = 12 },
			expectError: true,
		},
		{
			name:        "bad no-data color",
			mutate:      func(in *ConfigRawInput) { in.NoDataColor = "white" },
			expectError: true,
		},
		{
			name:        "bad center",
			mutate:      func(in *ConfigRawInput) { in.Center = "56.1" },
			expectError: true,
		},
		{
			name:        "zoom out of range",
			mutate:      func(in *ConfigRawInput) { in.Zoom = 25 },
			expectError: true,
		},
		{
			name:        "zero heat radius",
			mutate:      func(in *ConfigRawInput) { in.HeatRadius = 0 },
			expectError: true,
		},
		{
			name:        "zero workers",
			mutate:      func(in *ConfigRawInput) { in.Workers = 0 },
			expectError: true,
		},
		{
			name:        "parquet needs output file",
			mutate:      func(in *ConfigRawInput) { in.Format = "parquet" },
			expectError: true,
		},
		{
			name: "parquet with output file",
			mutate: func(in *ConfigRawInput) {
				in.Format = "parquet"
				in.OutputFile = "regions.parquet"
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.ParquetOut, cfg.Format)
			},
		},
		{
			name:        "invalid color flag",
			mutate:      func(in *ConfigRawInput) { in.Color = "sometimes" },
			expectError: true,
		},
		{
			name:        "invalid snapshot wait",
			mutate:      func(in *ConfigRawInput) { in.SnapshotWait = "soon" },
			expectError: true,
		},
		{
			name: "mysql backend requires connection string",
			mutate: func(in *ConfigRawInput) {
				in.MetricsBackend = "mysql"
			},
			expectError: true,
		},
		{
			name: "sqlite backend without connection string",
			mutate: func(in *ConfigRawInput) {
				in.MetricsBackend = "SQLite"
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.SQLiteBackend, cfg.MetricsBackend)
			},
		},
		{
			name: "empty metrics path without backend",
			mutate: func(in *ConfigRawInput) {
				in.Metrics = ""
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := DefaultRawInput()
			tt.mutate(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name    string
		backend schema.DatabaseBackend
		connStr string
		wantErr bool
	}{
		{"sqlite empty", schema.SQLiteBackend, "", false},
		{"none empty", schema.NoneBackend, "", false},
		{"mysql valid", schema.MySQLBackend, "root:pw@tcp(localhost:3306)/finmap", false},
		{"mysql missing tcp", schema.MySQLBackend, "root:pw@localhost/finmap", true},
		{"mysql empty", schema.MySQLBackend, "", true},
		{"postgres valid", schema.PostgreSQLBackend, "host=localhost dbname=finmap", false},
		{"postgres missing dbname", schema.PostgreSQLBackend, "host=localhost", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseCenter(t *testing.T) {
	center, err := ParseCenter(" 45.5 , -73.6 ")
	require.NoError(t, err)
	assert.Equal(t, [2]float64{45.5, -73.6}, center)

	_, err = ParseCenter("91,0")
	assert.Error(t, err)

	_, err = ParseCenter("north,west")
	assert.Error(t, err)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultPalette, cfg.Palette)
	assert.Equal(t, DefaultLegendClasses, cfg.LegendClasses)

	clone := cfg.Clone()
	clone.Zoom = 9
	assert.Equal(t, DefaultZoom, cfg.Zoom)
}

func TestProcessProfilingConfig(t *testing.T) {
	profile := &ProfileConfig{}
	require.NoError(t, ProcessProfilingConfig(profile, ""))
	assert.False(t, profile.Enabled)

	require.NoError(t, ProcessProfilingConfig(profile, " run1 "))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "run1", profile.Prefix)

	assert.Error(t, ProcessProfilingConfig(&ProfileConfig{}, "profiles/"))
}
