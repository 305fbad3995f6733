package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/huangsam/finmap/internal/contract"
	"github.com/huangsam/finmap/internal/parquet"
	"github.com/huangsam/finmap/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/xuri/excelize/v2"
)

var regionHeader = []string{"region", "matched", "year", "investment", "income", "latitude", "longitude", "color", "level"}

// WriteRegionReport outputs the joined regions, dispatching based on the configured format.
func WriteRegionReport(report *schema.RegionReport, cfg *contract.Config) error {
	switch cfg.Format {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, report)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRegionCSV(w, report.Regions, cfg.Precision)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := parquet.WriteRegionsParquet(regionRows(report.Regions), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	case schema.XLSXOut:
		if err := writeRegionWorkbook(report, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing XLSX output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote XLSX to %s\n", cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRegionTable(w, report, cfg)
		}, "Wrote table")
	}
	return nil
}

// writeRegionTable generates and writes the human-readable table.
func writeRegionTable(w io.Writer, report *schema.RegionReport, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Region", "Year", "Investment", "Income", "Level", "Centroid"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableNameWidth(cfg)
	var data [][]string
	for i, r := range report.Regions {
		year := schema.NotAvailable
		if r.Year != nil {
			year = fmt.Sprintf("%d", *r.Year)
		}
		label := contract.GetPlainLabel(r.Position)
		if cfg.UseColors {
			label = contract.GetColorLabel(r.Position)
		}
		centroid := schema.NotAvailable
		if r.Centroid != nil {
			centroid = fmt.Sprintf("%.*f, %.*f", cfg.Precision, r.Centroid.Lat, cfg.Precision, r.Centroid.Lon)
		}
		data = append(data, []string{
			fmt.Sprintf("%d", i+1),
			contract.TruncateName(r.Name, nameWidth),
			year,
			schema.FormatMoney(r.Investment),
			schema.FormatMoney(r.Income),
			label,
			centroid,
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	matched := 0
	for _, r := range report.Regions {
		if r.Matched {
			matched++
		}
	}
	if _, err := fmt.Fprintf(w, "Showing %d regions (%d matched, %d without metrics, %d metric regions without geometry)\n",
		len(report.Regions), matched, len(report.UnmatchedRegions), len(report.OrphanMetrics)); err != nil {
		return err
	}
	return nil
}

// writeRegionCSV writes one row per region. Null values are left empty.
func writeRegionCSV(w io.Writer, regions []schema.RegionSummary, precision int) error {
	fmtFloat, fmtInt := createFormatters(precision)
	return writeCSVWithHeader(w, regionHeader, func(cw *csv.Writer) error {
		for _, r := range regions {
			var lat, lon *float64
			if r.Centroid != nil {
				lat, lon = &r.Centroid.Lat, &r.Centroid.Lon
			}
			record := []string{
				r.Name,
				fmt.Sprintf("%t", r.Matched),
				fmtInt(r.Year),
				fmtFloat(r.Investment),
				fmtFloat(r.Income),
				fmtFloat(lat),
				fmtFloat(lon),
				r.Color,
				contract.GetPlainLabel(r.Position),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

// regionRows converts region summaries into Parquet rows.
func regionRows(regions []schema.RegionSummary) []parquet.RegionRow {
	rows := make([]parquet.RegionRow, len(regions))
	for i, r := range regions {
		row := parquet.RegionRow{
			Name:       r.Name,
			Matched:    r.Matched,
			Investment: r.Investment,
			Income:     r.Income,
			Color:      r.Color,
			Level:      contract.GetPlainLabel(r.Position),
		}
		if r.Year != nil {
			y := int32(*r.Year)
			row.Year = &y
		}
		if r.Centroid != nil {
			lat, lon := r.Centroid.Lat, r.Centroid.Lon
			row.Latitude, row.Longitude = &lat, &lon
		}
		rows[i] = row
	}
	return rows
}

// writeRegionWorkbook writes a "Regions" sheet and a "Diagnostics" sheet.
func writeRegionWorkbook(report *schema.RegionReport, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Regions"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := setRow(f, sheet, 1, regionHeader); err != nil {
		return err
	}
	for i, r := range report.Regions {
		var lat, lon *float64
		if r.Centroid != nil {
			lat, lon = &r.Centroid.Lat, &r.Centroid.Lon
		}
		values := []any{
			r.Name, r.Matched, cellValue(r.Year), cellValue(r.Investment), cellValue(r.Income),
			cellValue(lat), cellValue(lon), r.Color, contract.GetPlainLabel(r.Position),
		}
		if err := setRow(f, sheet, i+2, values); err != nil {
			return err
		}
	}

	const diag = "Diagnostics"
	if _, err := f.NewSheet(diag); err != nil {
		return err
	}
	if err := setRow(f, diag, 1, []string{"kind", "region"}); err != nil {
		return err
	}
	row := 2
	for _, name := range report.UnmatchedRegions {
		if err := setRow(f, diag, row, []string{"no metrics", name}); err != nil {
			return err
		}
		row++
	}
	for _, name := range report.OrphanMetrics {
		if err := setRow(f, diag, row, []string{"no geometry", name}); err != nil {
			return err
		}
		row++
	}
	return f.SaveAs(path)
}

// setRow writes values starting at column A of the given 1-based row.
func setRow[T any](f *excelize.File, sheet string, row int, values []T) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}
