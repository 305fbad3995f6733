package outwriter

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/huangsam/finmap/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFormatters(t *testing.T) {
	tests := []struct {
		name      string
		precision int
		value     *float64
		expected  string
	}{
		{name: "precision 2", precision: 2, value: schema.Float(3.14159), expected: "3.14"},
		{name: "precision 0", precision: 0, value: schema.Float(3.14159), expected: "3"},
		{name: "precision 4", precision: 4, value: schema.Float(3.14159), expected: "3.1416"},
		{name: "negative value", precision: 2, value: schema.Float(-42.567), expected: "-42.57"},
		{name: "null", precision: 2, value: nil, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fmtFloat, fmtInt := createFormatters(tt.precision)
			assert.Equal(t, tt.expected, fmtFloat(tt.value))
			assert.Equal(t, "2021", fmtInt(schema.Int(2021)))
			assert.Equal(t, "", fmtInt(nil))
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]any{"name": "test", "value": 42}))
	assert.Equal(t, "{\n  \"name\": \"test\",\n  \"value\": 42\n}\n", buf.String())

	assert.Error(t, writeJSON(&buf, make(chan int)))
}

func TestWriteCSVWithHeader(t *testing.T) {
	var buf bytes.Buffer
	err := writeCSVWithHeader(&buf, []string{"a", "b"}, func(w *csv.Writer) error {
		return w.Write([]string{"1", "x,y"})
	})
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,\"x,y\"\n", buf.String())
}

func TestCellValue(t *testing.T) {
	assert.Nil(t, cellValue[float64](nil))
	assert.Equal(t, 1.5, cellValue(schema.Float(1.5)))
	assert.Equal(t, 7, cellValue(schema.Int(7)))
}
