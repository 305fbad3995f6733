// Package parquet provides data structures and functions for exporting joined
// regions and raw metric records to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"

	"github.com/huangsam/finmap/schema"
	"github.com/parquet-go/parquet-go"
)

// RegionRow is one joined region as written by `finmap regions --format parquet`.
type RegionRow struct {
	// Name is the region name from the geometry dataset
	Name string `parquet:"name,snappy"`

	// Matched reports whether a metric record was joined to the region
	Matched bool `parquet:"matched,snappy"`

	// Year of the chosen record (nullable)
	Year *int32 `parquet:"year,optional,snappy"`

	// Investment of the chosen record (nullable)
	Investment *float64 `parquet:"investment,optional,snappy"`

	// Income of the chosen record (nullable)
	Income *float64 `parquet:"income,optional,snappy"`

	// Latitude of the area-weighted centroid (nullable)
	Latitude *float64 `parquet:"latitude,optional,snappy"`

	// Longitude of the area-weighted centroid (nullable)
	Longitude *float64 `parquet:"longitude,optional,snappy"`

	// Color is the choropleth fill for the region
	Color string `parquet:"color,snappy"`

	// Level is the plain investment label (Top, High, Moderate, Low, N/A)
	Level string `parquet:"level,snappy"`
}

// MetricRow is one metrics table row as written by `finmap metrics export`.
type MetricRow struct {
	Row        int32    `parquet:"row,snappy"`
	Region     string   `parquet:"region,snappy"`
	Year       int32    `parquet:"year,snappy"`
	Investment *float64 `parquet:"investment,optional,snappy"`
	Income     *float64 `parquet:"income,optional,snappy"`
}

// NewMetricRows converts metric records into Parquet rows.
func NewMetricRows(records []schema.MetricRecord) []MetricRow {
	rows := make([]MetricRow, len(records))
	for i, r := range records {
		rows[i] = MetricRow{
			Row:        int32(r.Row),
			Region:     r.Region,
			Year:       int32(r.Year),
			Investment: r.Investment,
			Income:     r.Income,
		}
	}
	return rows
}

// WriteRegionsParquet writes a slice of RegionRow structs to a Parquet file.
func WriteRegionsParquet(data []RegionRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteMetricsParquet writes a slice of MetricRow structs to a Parquet file.
func WriteMetricsParquet(data []MetricRow, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet infers the schema from T's struct tags and writes all rows.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	// Close flushes the footer, so its error matters
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}
