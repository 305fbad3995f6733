// Package schema holds the data model shared across loading, joining and rendering.
package schema

import (
	"encoding/json"

	"github.com/twpayne/go-geom"
)

// Region is one named geographic feature from the geometry dataset.
type Region struct {
	Name       string         `json:"name"`
	Geometry   geom.T         `json:"-"`
	Properties map[string]any `json:"-"`
}

// MetricRecord is one row of the metrics table.
// Row is the 1-based data row in the source and serves as the stable tie-breaker.
type MetricRecord struct {
	Region     string   `json:"region"`
	Year       int      `json:"year"`
	Investment *float64 `json:"investment"`
	Income     *float64 `json:"income"`
	Row        int      `json:"row"`
}

// LatLon is a point in map order (latitude first).
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// JoinedRegion is a Region enriched with the metric record chosen by the join policy.
type JoinedRegion struct {
	Region
	Investment *float64 `json:"investment"`
	Income     *float64 `json:"income"`
	Year       *int     `json:"year"`
	Matched    bool     `json:"matched"`
	Centroid   *LatLon  `json:"centroid"`
}

// JoinResult carries the joined regions plus what could not be paired.
type JoinResult struct {
	Regions          []JoinedRegion
	UnmatchedRegions []string // geometry names without metrics
	OrphanMetrics    []string // metric names without geometry
}

// ChartDocument is an embeddable SVG fragment for one region.
type ChartDocument struct {
	Region string `json:"region"`
	Points int    `json:"points"`
	Empty  bool   `json:"empty"`
	Width  int    `json:"width"`
	SVG    string `json:"-"`
}

// ColorFunc maps a (possibly null) investment to a CSS hex color.
type ColorFunc func(v *float64) string

// MapDocument is the full composition handed to the serializer.
type MapDocument struct {
	Title      string          `json:"title"`
	View       MapView         `json:"view"`
	Tiles      TileLayer       `json:"tiles"`
	Choropleth ChoroplethLayer `json:"choropleth"`
	Overlay    OverlayLayer    `json:"overlay"`
	Heatmap    HeatmapLayer    `json:"heatmap"`
	Markers    MarkerLayer     `json:"markers"`
}

// MapView is the initial viewport.
type MapView struct {
	Center [2]float64 `json:"center"`
	Zoom   int        `json:"zoom"`
}

// TileLayer is the base map tile source.
type TileLayer struct {
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
}

// FeatureCollection mirrors the GeoJSON object consumed by Leaflet.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a GeoJSON feature with precomputed style properties.
type Feature struct {
	Type       string            `json:"type"`
	Properties FeatureProperties `json:"properties"`
	Geometry   json.RawMessage   `json:"geometry"`
}

// FeatureProperties are the per-feature values the page script reads.
type FeatureProperties struct {
	Name       string   `json:"name"`
	Fill       string   `json:"fill"`
	Investment *float64 `json:"investment"`
}

// ChoroplethLayer is the bottom layer with a graduated fill and a legend.
type ChoroplethLayer struct {
	Name        string            `json:"name"`
	Data        FeatureCollection `json:"data"`
	FillOpacity float64           `json:"fillOpacity"`
	LineOpacity float64           `json:"lineOpacity"`
	Legend      Legend            `json:"legend"`
}

// Legend describes the choropleth classes.
type Legend struct {
	Caption string        `json:"caption"`
	Entries []LegendEntry `json:"entries"`
	NoData  *LegendEntry  `json:"noData,omitempty"`
}

// LegendEntry is one swatch in the legend.
type LegendEntry struct {
	Color string `json:"color"`
	Label string `json:"label"`
}

// OverlayLayer is the per-feature styled layer with hover tooltips.
type OverlayLayer struct {
	Name         string            `json:"name"`
	Data         FeatureCollection `json:"data"`
	Style        OverlayStyle      `json:"style"`
	TooltipAlias string            `json:"tooltipAlias"`
}

// OverlayStyle is the fixed stroke applied to every overlay feature.
type OverlayStyle struct {
	Color       string  `json:"color"`
	Weight      float64 `json:"weight"`
	DashArray   string  `json:"dashArray"`
	FillOpacity float64 `json:"fillOpacity"`
}

// HeatmapLayer holds [lat, lon, weight] triples.
type HeatmapLayer struct {
	Name   string       `json:"name"`
	Radius int          `json:"radius"`
	Points [][3]float64 `json:"points"`
}

// MarkerLayer holds one marker per region with a valid centroid.
type MarkerLayer struct {
	Name          string   `json:"name"`
	PopupMaxWidth int      `json:"popupMaxWidth"`
	Markers       []Marker `json:"markers"`
}

// Marker is a point with its popup HTML.
type Marker struct {
	Name  string  `json:"name"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Popup string  `json:"popup"`
}

// MetricsStatus represents the status of the metrics store.
type MetricsStatus struct {
	Backend      string `json:"backend"`
	Connected    bool   `json:"connected"`
	Version      uint   `json:"version"`
	TotalRecords int64  `json:"total_records"`
	Regions      int64  `json:"regions"`
	MinYear      *int   `json:"min_year"`
	MaxYear      *int   `json:"max_year"`
}

// RegionSummary is one row of the joined-regions export.
// Position is the investment's place in the observed range (0..1), nil without data.
type RegionSummary struct {
	Name       string   `json:"name"`
	Matched    bool     `json:"matched"`
	Year       *int     `json:"year"`
	Investment *float64 `json:"investment"`
	Income     *float64 `json:"income"`
	Centroid   *LatLon  `json:"centroid"`
	Color      string   `json:"color"`
	Position   *float64 `json:"position"`
}

// RegionReport is the joined-regions export with the join diagnostics.
type RegionReport struct {
	Regions          []RegionSummary `json:"regions"`
	UnmatchedRegions []string        `json:"unmatched_regions"`
	OrphanMetrics    []string        `json:"orphan_metrics"`
}
