// Package metrics loads the regional finance table from delimited files or Excel workbooks.
package metrics

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/finmap/internal/contract"
	"github.com/huangsam/finmap/schema"
	"github.com/xuri/excelize/v2"
)

// nullTokens are cell values treated as missing numbers.
var nullTokens = []string{"", "-", "na", "n/a", "nan", "null", "none"}

// FileSource reads metric records from a CSV, TSV or XLSX file.
type FileSource struct {
	Path    string
	Columns contract.ColumnNames
	Sheet   string // XLSX only; empty means the first sheet
}

var _ contract.MetricsSource = &FileSource{} // Compile-time check

// NewFileSource creates a FileSource from the validated config.
func NewFileSource(cfg *contract.Config) *FileSource {
	return &FileSource{Path: cfg.MetricsPath, Columns: cfg.Columns, Sheet: cfg.Sheet}
}

// Describe implements the MetricsSource interface.
func (s *FileSource) Describe() string {
	return s.Path
}

// LoadMetrics implements the MetricsSource interface.
func (s *FileSource) LoadMetrics(ctx context.Context) ([]schema.MetricRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := s.readRows()
	if err != nil {
		return nil, err
	}
	return ParseRows(s.Path, rows, s.Columns)
}

// readRows dispatches on the file extension.
func (s *FileSource) readRows() ([][]string, error) {
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".xlsx", ".xlsm":
		return s.readWorkbook()
	case ".tsv", ".tab":
		return s.readDelimited('\t')
	default:
		return s.readDelimited(',')
	}
}

func (s *FileSource) readDelimited(comma rune) ([][]string, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, &schema.LoadError{Path: s.Path, Reason: "cannot open metrics file", Err: err}
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &schema.LoadError{Path: s.Path, Reason: "malformed delimited data", Err: err}
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func (s *FileSource) readWorkbook() ([][]string, error) {
	f, err := excelize.OpenFile(s.Path)
	if err != nil {
		return nil, &schema.LoadError{Path: s.Path, Reason: "cannot open workbook", Err: err}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	sheet := s.Sheet
	if sheet == "" {
		if len(sheets) == 0 {
			return nil, &schema.LoadError{Path: s.Path, Reason: "workbook has no sheets"}
		}
		sheet = sheets[0]
	} else if !slices.Contains(sheets, sheet) {
		return nil, &schema.LoadError{Path: s.Path, Reason: fmt.Sprintf("sheet %q not found (have %s)", sheet, strings.Join(sheets, ", "))}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &schema.LoadError{Path: s.Path, Reason: fmt.Sprintf("cannot read sheet %q", sheet), Err: err}
	}
	return rows, nil
}

// columnIndex maps each required column to its position in the header.
type columnIndex struct {
	region, year, investment, income int
}

func locateColumns(path string, header []string, cols contract.ColumnNames) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := schema.NormalizeHeader(h)
		if _, dup := positions[key]; !dup {
			positions[key] = i
		}
	}

	var missing []string
	find := func(name string) int {
		i, ok := positions[schema.NormalizeHeader(name)]
		if !ok {
			missing = append(missing, name)
			return -1
		}
		return i
	}
	idx := columnIndex{
		region:     find(cols.Region),
		year:       find(cols.Year),
		investment: find(cols.Investment),
		income:     find(cols.Income),
	}
	if len(missing) > 0 {
		return idx, &schema.LoadError{Path: path, Reason: fmt.Sprintf("missing required column(s): %s", strings.Join(missing, ", "))}
	}
	return idx, nil
}

// ParseRows converts raw table rows (header first) into metric records.
// Rows without a region or a parseable year are skipped with a warning.
func ParseRows(path string, rows [][]string, cols contract.ColumnNames) ([]schema.MetricRecord, error) {
	if len(rows) == 0 {
		return nil, &schema.LoadError{Path: path, Reason: "metrics table has no header row"}
	}
	idx, err := locateColumns(path, rows[0], cols)
	if err != nil {
		return nil, err
	}

	records := make([]schema.MetricRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rowNum := i + 1
		if isBlank(row) {
			continue
		}
		region := cell(row, idx.region)
		if strings.TrimSpace(region) == "" {
			contract.LogWarn("Skipping metrics row", fmt.Errorf("%s row %d: empty %s", path, rowNum, cols.Region))
			continue
		}
		year, err := ParseYear(cell(row, idx.year))
		if err != nil {
			contract.LogWarn("Skipping metrics row", fmt.Errorf("%s row %d: %w", path, rowNum, err))
			continue
		}
		records = append(records, schema.MetricRecord{
			Region:     region,
			Year:       year,
			Investment: ParseAmount(cell(row, idx.investment)),
			Income:     ParseAmount(cell(row, idx.income)),
			Row:        rowNum,
		})
	}
	return records, nil
}

// ParseYear accepts integer years, including spreadsheet renderings like "2021.0".
func ParseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return int(f), nil
}

// ParseAmount parses a numeric cell, returning nil for anything that is not a finite number.
// Currency symbols and thousands separators are ignored.
func ParseAmount(s string) *float64 {
	clean := strings.TrimSpace(s)
	if slices.Contains(nullTokens, strings.ToLower(clean)) {
		return nil
	}
	clean = strings.NewReplacer("$", "", ",", "", " ", "").Replace(clean)
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
