package core

import (
	"encoding/json"
	"testing"

	"github.com/huangsam/finmap/core/scale"
	"github.com/huangsam/finmap/internal/contract"
	"github.com/huangsam/finmap/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func joinedTwoRegions(t *testing.T) []schema.JoinedRegion {
	t.Helper()
	result, err := JoinRegions(twoRegions(t), twoRegionRecords(), contract.DefaultConfig())
	require.NoError(t, err)
	require.Empty(t, DeriveCentroids(result.Regions))
	return result.Regions
}

func TestDeriveCentroids(t *testing.T) {
	regions := joinedTwoRegions(t)
	require.NotNil(t, regions[0].Centroid)
	assert.InDelta(t, 0.5, regions[0].Centroid.Lat, 1e-9)
	assert.InDelta(t, 0.5, regions[0].Centroid.Lon, 1e-9)
	assert.InDelta(t, 2.5, regions[1].Centroid.Lon, 1e-9)
}

func TestDeriveCentroids_Degenerate(t *testing.T) {
	dot := geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{{{1, 1}, {1, 1}, {1, 1}, {1, 1}}})
	regions := []schema.JoinedRegion{
		{Region: schema.Region{Name: "Null"}},
		{Region: schema.Region{Name: "Empty", Geometry: geom.NewMultiPolygon(geom.XY)}},
		{Region: schema.Region{Name: "Dot", Geometry: dot}},
	}
	errs := DeriveCentroids(regions)
	assert.Len(t, errs, 3)
	for _, r := range regions {
		assert.Nil(t, r.Centroid, r.Name)
	}
}

func TestComposeLayers(t *testing.T) {
	cfg := contract.DefaultConfig()
	regions := joinedTwoRegions(t)
	s, err := scale.New(investments(regions), cfg.Palette, cfg.PaletteColors, cfg.NoDataColor)
	require.NoError(t, err)

	doc, err := ComposeLayers(cfg, regions, s.ColorFunc())
	require.NoError(t, err)

	assert.Equal(t, MapTitle, doc.Title)
	assert.Equal(t, [2]float64{56.1304, -106.3468}, doc.View.Center)
	assert.Equal(t, 4, doc.View.Zoom)

	// Choropleth: one class for a single value, white for null
	choro := doc.Choropleth.Data.Features
	require.Len(t, choro, 2)
	assert.Equal(t, "#41b6c4", choro[0].Properties.Fill)
	assert.Equal(t, "#ffffff", choro[1].Properties.Fill)
	assert.Equal(t, 0.7, doc.Choropleth.FillOpacity)
	assert.Equal(t, 0.2, doc.Choropleth.LineOpacity)
	assert.Equal(t, "Investment Levels ($)", doc.Choropleth.Legend.Caption)
	require.NotNil(t, doc.Choropleth.Legend.NoData)

	// Overlay: fill from the injected color function, fixed stroke
	overlay := doc.Overlay.Data.Features
	require.Len(t, overlay, 2)
	assert.Equal(t, s.Hex(schema.Float(150)), overlay[0].Properties.Fill)
	assert.Equal(t, "#ffffff", overlay[1].Properties.Fill)
	assert.Equal(t, schema.OverlayStyle{Color: "black", Weight: 1, DashArray: "5, 5", FillOpacity: 0.6}, doc.Overlay.Style)
	assert.Equal(t, "Province:", doc.Overlay.TooltipAlias)

	var g map[string]any
	require.NoError(t, json.Unmarshal(overlay[0].Geometry, &g))
	assert.Equal(t, "Polygon", g["type"])

	// Heatmap: only the region with investment
	assert.Equal(t, 15, doc.Heatmap.Radius)
	require.Len(t, doc.Heatmap.Points, 1)
	assert.InDelta(t, 0.5, doc.Heatmap.Points[0][0], 1e-9)
	assert.InDelta(t, 0.5, doc.Heatmap.Points[0][1], 1e-9)
	assert.Equal(t, 150.0, doc.Heatmap.Points[0][2])

	assert.NotNil(t, doc.Markers.Markers)
	assert.Empty(t, doc.Markers.Markers)
}

func TestComposeLayers_InjectedColorFunc(t *testing.T) {
	cfg := contract.DefaultConfig()
	regions := joinedTwoRegions(t)
	constant := func(*float64) string { return "#123456" }

	doc, err := ComposeLayers(cfg, regions, constant)
	require.NoError(t, err)
	for _, f := range doc.Overlay.Data.Features {
		assert.Equal(t, "#123456", f.Properties.Fill)
	}
}

func TestComposeLayers_NoCentroidNoHeat(t *testing.T) {
	cfg := contract.DefaultConfig()
	regions := []schema.JoinedRegion{
		{Region: schema.Region{Name: "Ghost"}, Investment: schema.Float(10), Matched: true},
	}
	doc, err := ComposeLayers(cfg, regions, func(*float64) string { return "#000000" })
	require.NoError(t, err)
	assert.Empty(t, doc.Heatmap.Points)
	require.Len(t, doc.Choropleth.Data.Features, 1)
	assert.Equal(t, json.RawMessage("null"), doc.Choropleth.Data.Features[0].Geometry)
}
