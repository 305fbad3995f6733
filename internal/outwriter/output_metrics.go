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

var metricHeader = []string{"row", "region", "year", "investment", "income"}

// WriteMetricRecords outputs raw metric records, dispatching based on the configured format.
func WriteMetricRecords(records []schema.MetricRecord, cfg *contract.Config) error {
	switch cfg.Format {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, records)
		}, "Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricCSV(w, records, cfg.Precision)
		}, "Wrote CSV")
	case schema.ParquetOut:
		if err := parquet.WriteMetricsParquet(parquet.NewMetricRows(records), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
	case schema.XLSXOut:
		if err := writeMetricWorkbook(records, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing XLSX output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote XLSX to %s\n", cfg.OutputFile)
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeMetricTable(w, records, cfg)
		}, "Wrote table")
	}
	return nil
}

func writeMetricCSV(w io.Writer, records []schema.MetricRecord, precision int) error {
	fmtFloat, _ := createFormatters(precision)
	return writeCSVWithHeader(w, metricHeader, func(cw *csv.Writer) error {
		for _, r := range records {
			record := []string{
				fmt.Sprintf("%d", r.Row),
				r.Region,
				fmt.Sprintf("%d", r.Year),
				fmtFloat(r.Investment),
				fmtFloat(r.Income),
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

func writeMetricTable(w io.Writer, records []schema.MetricRecord, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Row", "Region", "Year", "Investment", "Income"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := GetMaxTableNameWidth(cfg)
	data := make([][]string, 0, len(records))
	for _, r := range records {
		data = append(data, []string{
			fmt.Sprintf("%d", r.Row),
			contract.TruncateName(r.Region, nameWidth),
			fmt.Sprintf("%d", r.Year),
			schema.FormatMoney(r.Investment),
			schema.FormatMoney(r.Income),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d metric records\n", len(records))
	return err
}

func writeMetricWorkbook(records []schema.MetricRecord, path string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Metrics"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	// The header matches the default input columns so the file can be loaded back
	header := []string{contract.DefaultRegionColumn, contract.DefaultYearColumn, contract.DefaultInvestmentColumn, contract.DefaultIncomeColumn}
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	for i, r := range records {
		values := []any{r.Region, r.Year, cellValue(r.Investment), cellValue(r.Income)}
		if err := setRow(f, sheet, i+2, values); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
