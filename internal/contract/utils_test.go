package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/finmap/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    *float64
		expected string
	}{
		{
			name:     "no data",
			input:    nil,
			expected: schema.NotAvailable,
		},
		{
			name:     "bottom of range",
			input:    schema.Float(0),
			expected: LowValue,
		},
		{
			name:     "just before moderate",
			input:    schema.Float(0.249),
			expected: LowValue,
		},
		{
			name:     "exactly moderate",
			input:    schema.Float(0.25),
			expected: ModerateValue,
		},
		{
			name:     "exactly high",
			input:    schema.Float(0.5),
			expected: HighValue,
		},
		{
			name:     "top of range",
			input:    schema.Float(1),
			expected: TopValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetPlainLabel(tt.input))
		})
	}
}

func TestGetColorLabel(t *testing.T) {
	// Colored output still contains the plain text label
	assert.Contains(t, GetColorLabel(schema.Float(0.9)), TopValue)
	assert.Contains(t, GetColorLabel(schema.Float(0.6)), HighValue)
	assert.Contains(t, GetColorLabel(schema.Float(0.3)), ModerateValue)
	assert.Contains(t, GetColorLabel(schema.Float(0.1)), LowValue)
	assert.Contains(t, GetColorLabel(nil), schema.NotAvailable)
}

func TestSelectOutputFile(t *testing.T) {
	t.Run("empty path is stdout", func(t *testing.T) {
		f, err := SelectOutputFile("")
		require.NoError(t, err)
		assert.Equal(t, os.Stdout, f)
	})

	t.Run("path creates file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.csv")
		f, err := SelectOutputFile(path)
		require.NoError(t, err)
		defer func() { _ = f.Close() }()
		assert.FileExists(t, path)
	})
}

func TestTruncateName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		expected string
	}{
		{"short name untouched", "Ontario", 20, "Ontario"},
		{"long name truncated", "Newfoundland and Labrador", 12, "Newfoundl..."},
		{"tiny width untouched", "Quebec", 3, "Quebec"},
		{"unicode safe", "Québec-Montréal", 8, "Québe..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TruncateName(tt.input, tt.maxWidth))
		})
	}
}

func TestParseBoolString(t *testing.T) {
	tests := []struct {
		input     string
		expected  bool
		expectErr bool
	}{
		{"yes", true, false},
		{"TRUE", true, false},
		{"1", true, false},
		{"no", false, false},
		{"False", false, false},
		{"0", false, false},
		{"maybe", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBoolString(tt.input)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
