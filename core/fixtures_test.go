package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/finmap/internal/contract"
	"github.com/huangsam/finmap/internal/geometry"
	"github.com/huangsam/finmap/schema"
	"github.com/stretchr/testify/require"
)

// Two unit squares: A around (0.5, 0.5) and B around (0.5, 2.5) in lat/lon order.
const twoRegionGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "A"}, "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [1, 0], [1, 1], [0, 1], [0, 0]]]}},
    {"type": "Feature", "properties": {"name": "B"}, "geometry": {"type": "Polygon", "coordinates": [[[2, 0], [3, 0], [3, 1], [2, 1], [2, 0]]]}}
  ]
}`

const twoRegionCSV = `Region,Year,Investment,Income
A,2020,100,50
A,2021,150,60
B,2020,,40
`

func twoRegionRecords() []schema.MetricRecord {
	return []schema.MetricRecord{
		{Region: "A", Year: 2020, Investment: schema.Float(100), Income: schema.Float(50), Row: 1},
		{Region: "A", Year: 2021, Investment: schema.Float(150), Income: schema.Float(60), Row: 2},
		{Region: "B", Year: 2020, Income: schema.Float(40), Row: 3},
	}
}

func twoRegions(t *testing.T) []schema.Region {
	t.Helper()
	regions, err := geometry.ParseRegions("inline", []byte(twoRegionGeoJSON), "name")
	require.NoError(t, err)
	return regions
}

// writeFixtures writes the two-region inputs to a temp dir and returns a config pointing at them.
func writeFixtures(t *testing.T) *contract.Config {
	t.Helper()
	dir := t.TempDir()
	geoPath := filepath.Join(dir, "provinces.geojson")
	csvPath := filepath.Join(dir, "finance_data.csv")
	require.NoError(t, os.WriteFile(geoPath, []byte(twoRegionGeoJSON), 0o644))
	require.NoError(t, os.WriteFile(csvPath, []byte(twoRegionCSV), 0o644))

	cfg := contract.DefaultConfig()
	cfg.GeometryPath = geoPath
	cfg.MetricsPath = csvPath
	cfg.OutputPath = filepath.Join(dir, "map.html")
	cfg.Workers = 2
	return cfg
}
