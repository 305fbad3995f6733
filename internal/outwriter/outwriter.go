// Package outwriter has output and writer logic.
package outwriter

import (
	"io"

	"github.com/huangsam/finmap/internal/contract"
	"github.com/huangsam/finmap/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteMap serializes the map document to a single HTML file.
func (ow *OutWriter) WriteMap(doc *schema.MapDocument, path string) error {
	return WriteMap(doc, path)
}

// WriteRegions prints the joined regions using the configured output format.
func (ow *OutWriter) WriteRegions(report *schema.RegionReport, cfg *contract.Config) error {
	return WriteRegionReport(report, cfg)
}

// WriteMetrics prints raw metric records using the configured output format.
func (ow *OutWriter) WriteMetrics(records []schema.MetricRecord, cfg *contract.Config) error {
	return WriteMetricRecords(records, cfg)
}

// WriteChart writes a region chart as a standalone SVG document.
func (ow *OutWriter) WriteChart(doc schema.ChartDocument, outputFile string) error {
	return writeWithFile(outputFile, func(w io.Writer) error {
		_, err := io.WriteString(w, doc.SVG+"\n")
		return err
	}, "Wrote chart")
}
