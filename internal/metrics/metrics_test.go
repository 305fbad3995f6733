package metrics

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/finmap/internal/contract"
	"github.com/huangsam/finmap/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var defaultColumns = contract.ColumnNames{
	Region:     contract.DefaultRegionColumn,
	Year:       contract.DefaultYearColumn,
	Investment: contract.DefaultInvestmentColumn,
	Income:     contract.DefaultIncomeColumn,
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMetricsCSV(t *testing.T) {
	path := writeFile(t, "finance_data.csv", "\ufeffRegion,Year,Investment,Income\n"+
		"A,2020,100,50\n"+
		"A,2021,\"$1,500\",60\n"+
		"B,2021,,40\n"+
		",2021,5,5\n"+
		"C,soon,5,5\n"+
		"\n"+
		"D,2022.0,NaN,n/a\n")

	src := &FileSource{Path: path, Columns: defaultColumns}
	records, err := src.LoadMetrics(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, "A", records[0].Region)
	assert.Equal(t, 2020, records[0].Year)
	assert.Equal(t, 100.0, *records[0].Investment)
	assert.Equal(t, 1, records[0].Row)

	assert.Equal(t, 1500.0, *records[1].Investment)
	assert.Equal(t, 2, records[1].Row)

	assert.Equal(t, "B", records[2].Region)
	assert.Nil(t, records[2].Investment)
	assert.Equal(t, 40.0, *records[2].Income)

	assert.Equal(t, "D", records[3].Region)
	assert.Equal(t, 2022, records[3].Year)
	assert.Nil(t, records[3].Investment)
	assert.Nil(t, records[3].Income)
	assert.Equal(t, path, src.Describe())
}

func TestLoadMetricsTSV(t *testing.T) {
	path := writeFile(t, "finance.tsv", "region\tyear\tinvestment\tincome\nOntario\t2021\t250.5\t12\n")
	records, err := (&FileSource{Path: path, Columns: defaultColumns}).LoadMetrics(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Ontario", records[0].Region)
	assert.InDelta(t, 250.5, *records[0].Investment, 1e-9)
}

func TestLoadMetricsXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "finance.xlsx")
	f := excelize.NewFile()
	_, err := f.NewSheet("Finance")
	require.NoError(t, err)
	rows := [][]any{
		{"Region", "Year", "Investment", "Income"},
		{"Quebec", 2019, 320, 88},
		{"Quebec", 2020, "", 91},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Finance", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	t.Run("named sheet", func(t *testing.T) {
		records, err := (&FileSource{Path: path, Columns: defaultColumns, Sheet: "Finance"}).LoadMetrics(context.Background())
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, 2019, records[0].Year)
		assert.Equal(t, 320.0, *records[0].Investment)
		assert.Nil(t, records[1].Investment)
	})

	t.Run("missing sheet", func(t *testing.T) {
		_, err := (&FileSource{Path: path, Columns: defaultColumns, Sheet: "Nope"}).LoadMetrics(context.Background())
		var loadErr *schema.LoadError
		require.True(t, errors.As(err, &loadErr))
		assert.Contains(t, loadErr.Reason, "Nope")
	})
}

func TestLoadMetricsErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		reason  string
	}{
		{"empty file", "", "no header"},
		{"missing column", "Region,Year,Investment\nA,2020,1\n", "Income"},
		{"malformed quotes", "Region,Year,Investment,Income\n\"A,2020,1,2\n", "malformed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "bad.csv", tt.content)
			_, err := (&FileSource{Path: path, Columns: defaultColumns}).LoadMetrics(context.Background())
			var loadErr *schema.LoadError
			require.True(t, errors.As(err, &loadErr))
			assert.Contains(t, loadErr.Error(), tt.reason)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := (&FileSource{Path: filepath.Join(t.TempDir(), "none.csv"), Columns: defaultColumns}).LoadMetrics(context.Background())
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := (&FileSource{Path: "unused.csv", Columns: defaultColumns}).LoadMetrics(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCustomColumns(t *testing.T) {
	cols := contract.ColumnNames{Region: "Province", Year: "FY", Investment: "Capex", Income: "Revenue"}
	rows := [][]string{
		{" province ", "FY", "CAPEX", "Revenue"},
		{"Manitoba", "2023", "10", "20"},
	}
	records, err := ParseRows("inline", rows, cols)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Manitoba", records[0].Region)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected *float64
	}{
		{"150", schema.Float(150)},
		{" $1,234.50 ", schema.Float(1234.5)},
		{"-20", schema.Float(-20)},
		{"", nil},
		{"N/A", nil},
		{"null", nil},
		{"nan", nil},
		{"Inf", nil},
		{"twelve", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseAmount(tt.input))
		})
	}
}

func TestParseYear(t *testing.T) {
	y, err := ParseYear(" 2021 ")
	require.NoError(t, err)
	assert.Equal(t, 2021, y)

	y, err = ParseYear("2019.0")
	require.NoError(t, err)
	assert.Equal(t, 2019, y)

	_, err = ParseYear("2019.5")
	assert.Error(t, err)

	_, err = ParseYear("")
	assert.Error(t, err)
}
