package scale

import (
	"math"
	"testing"

	"github.com/huangsam/finmap/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func values(vs ...float64) []*float64 {
	out := make([]*float64, len(vs))
	for i := range vs {
		out[i] = schema.Float(vs[i])
	}
	return out
}

func TestNewDomain(t *testing.T) {
	d := NewDomain([]*float64{schema.Float(5), nil, schema.Float(math.NaN()), schema.Float(-3)})
	assert.Equal(t, -3.0, d.Min)
	assert.Equal(t, 5.0, d.Max)
	assert.Equal(t, 2, d.Count)
	assert.True(t, d.HasNull)
	assert.False(t, d.Empty())
	assert.False(t, d.Degenerate())

	empty := NewDomain(nil)
	assert.True(t, empty.Empty())
	assert.Nil(t, empty.Position(schema.Float(1)))
}

func TestScaleEndpoints(t *testing.T) {
	s, err := New(values(100, 150, 200), "YlGnBu", 9, "#ffffff")
	require.NoError(t, err)

	assert.Equal(t, "#ffffd9", s.Hex(schema.Float(100)))
	assert.Equal(t, "#41b6c4", s.Hex(schema.Float(150)))
	assert.Equal(t, "#081d58", s.Hex(schema.Float(200)))
	assert.Equal(t, "#ffffff", s.Hex(nil))

	// Out of range values clamp to the ends
	assert.Equal(t, "#ffffd9", s.Hex(schema.Float(-1000)))
	assert.Equal(t, "#081d58", s.Hex(schema.Float(1e9)))
}

func TestScaleMonotonic(t *testing.T) {
	s, err := New(values(0, 1000), "YlGnBu", 9, "#ffffff")
	require.NoError(t, err)

	prev := -1.0
	for v := 0.0; v <= 1000; v += 37 {
		p := s.Position(schema.Float(v))
		require.NotNil(t, p)
		assert.GreaterOrEqual(t, *p, prev)
		prev = *p
	}
}

func TestScaleDegenerate(t *testing.T) {
	t.Run("all equal", func(t *testing.T) {
		s, err := New(values(42, 42), "YlGnBu", 9, "#ffffff")
		require.NoError(t, err)
		assert.Equal(t, "#41b6c4", s.Hex(schema.Float(42)))
		assert.Equal(t, 0.5, *s.Position(schema.Float(42)))
	})

	t.Run("empty", func(t *testing.T) {
		s, err := New([]*float64{nil, nil}, "YlGnBu", 9, "#ffffff")
		require.NoError(t, err)
		assert.Equal(t, FallbackColor, s.Hex(schema.Float(10)))
		assert.Equal(t, "#ffffff", s.Hex(nil))
		assert.Nil(t, s.Position(schema.Float(10)))
	})
}

func TestScaleInvalidPalette(t *testing.T) {
	_, err := New(values(1), "NotAPalette", 9, "#ffffff")
	assert.Error(t, err)

	_, err = NewGraduated(values(1), "YlGnBu", 2, "#ffffff")
	assert.Error(t, err)
}

func TestInterpolate(t *testing.T) {
	s, err := New(values(0, 1), "Greys", 3, "#ffffff")
	require.NoError(t, err)
	lo, hi := s.Hex(schema.Float(0)), s.Hex(schema.Float(1))
	mid := s.Hex(schema.Float(0.25))
	assert.NotEqual(t, lo, mid)
	assert.NotEqual(t, hi, mid)
}

func TestGraduated(t *testing.T) {
	g, err := NewGraduated([]*float64{schema.Float(0), schema.Float(60), nil, schema.Float(59.9)}, "YlGnBu", 6, "#ffffff")
	require.NoError(t, err)
	assert.Equal(t, 6, g.Classes())

	tests := []struct {
		name  string
		input *float64
		class int
		color string
	}{
		{"minimum", schema.Float(0), 0, "#ffffcc"},
		{"second class", schema.Float(15), 1, "#c7e9b4"},
		{"middle", schema.Float(35), 3, "#41b6c4"},
		{"just below max", schema.Float(59.9), 5, "#253494"},
		{"maximum", schema.Float(60), 5, "#253494"},
		{"null", nil, -1, "#ffffff"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.class, g.Class(tt.input))
			assert.Equal(t, tt.color, g.Hex(tt.input))
		})
	}
}

func TestGraduatedLegend(t *testing.T) {
	t.Run("classes", func(t *testing.T) {
		g, err := NewGraduated([]*float64{schema.Float(0), schema.Float(60), nil}, "YlGnBu", 6, "#ffffff")
		require.NoError(t, err)
		legend := g.Legend(schema.LegendCaption)
		assert.Equal(t, "Investment Levels ($)", legend.Caption)
		require.Len(t, legend.Entries, 6)
		assert.Equal(t, schema.LegendEntry{Color: "#ffffcc", Label: "0 - 10"}, legend.Entries[0])
		assert.Equal(t, "50 - 60", legend.Entries[5].Label)
		require.NotNil(t, legend.NoData)
		assert.Equal(t, "#ffffff", legend.NoData.Color)

		// No-data color never collides with a class color
		for _, e := range legend.Entries {
			assert.NotEqual(t, legend.NoData.Color, e.Color)
		}
	})

	t.Run("degenerate", func(t *testing.T) {
		g, err := NewGraduated(values(7, 7), "YlGnBu", 6, "#ffffff")
		require.NoError(t, err)
		legend := g.Legend(schema.LegendCaption)
		require.Len(t, legend.Entries, 1)
		assert.Equal(t, "7", legend.Entries[0].Label)
		assert.Equal(t, "#41b6c4", legend.Entries[0].Color)
		assert.Nil(t, legend.NoData)
	})

	t.Run("empty", func(t *testing.T) {
		g, err := NewGraduated([]*float64{nil}, "YlGnBu", 6, "#ffffff")
		require.NoError(t, err)
		legend := g.Legend(schema.LegendCaption)
		require.Len(t, legend.Entries, 1)
		assert.Equal(t, FallbackColor, legend.Entries[0].Color)
		assert.NotNil(t, legend.NoData)
		assert.Equal(t, FallbackColor, g.Hex(schema.Float(3)))
	})
}
