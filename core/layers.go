package core

import (
	"fmt"

	"github.com/huangsam/finmap/core/scale"
	"github.com/huangsam/finmap/internal/contract"
	"github.com/huangsam/finmap/internal/geometry"
	"github.com/huangsam/finmap/schema"
)

// Map title and layer names shown in the layer control.
const (
	MapTitle       = "Interactive Geospatial Finance Map"
	ChoroplethName = "Investment Choropleth"
	OverlayName    = "Investment Overlay"
	HeatmapName    = "Investment Heatmap"
	MarkersName    = "Region Details"
)

// Fixed layer styling.
const (
	choroplethFillOpacity = 0.7
	choroplethLineOpacity = 0.2
	overlayStroke         = "black"
	overlayWeight         = 1
	overlayDashArray      = "5, 5"
	overlayFillOpacity    = 0.6
)

// DeriveCentroids attaches a centroid to every region whose geometry allows one.
// Failures are logged and returned; the affected regions keep a nil centroid.
func DeriveCentroids(regions []schema.JoinedRegion) []error {
	var errs []error
	for i := range regions {
		c, err := geometry.Centroid(regions[i].Name, regions[i].Geometry)
		if err != nil {
			contract.LogWarn("Skipping centroid", err)
			errs = append(errs, err)
			continue
		}
		regions[i].Centroid = &c
	}
	return errs
}

// ComposeLayers builds the choropleth, the styled overlay and the heatmap.
// The overlay fill comes from colorFunc; markers are left for AssemblePopups.
func ComposeLayers(cfg *contract.Config, regions []schema.JoinedRegion, colorFunc schema.ColorFunc) (*schema.MapDocument, error) {
	investments := make([]*float64, len(regions))
	for i, r := range regions {
		investments[i] = r.Investment
	}
	graduated, err := scale.NewGraduated(investments, cfg.Palette, cfg.LegendClasses, cfg.NoDataColor)
	if err != nil {
		return nil, fmt.Errorf("failed to build legend classes: %w", err)
	}

	choropleth := schema.FeatureCollection{Type: "FeatureCollection", Features: make([]schema.Feature, 0, len(regions))}
	overlay := schema.FeatureCollection{Type: "FeatureCollection", Features: make([]schema.Feature, 0, len(regions))}
	heat := make([][3]float64, 0, len(regions))

	for _, r := range regions {
		raw, err := geometry.EncodeGeoJSON(r.Geometry)
		if err != nil {
			return nil, &schema.RenderError{Region: r.Name, Reason: "cannot encode geometry", Err: err}
		}
		choropleth.Features = append(choropleth.Features, schema.Feature{
			Type:       "Feature",
			Properties: schema.FeatureProperties{Name: r.Name, Fill: graduated.Hex(r.Investment), Investment: r.Investment},
			Geometry:   raw,
		})
		overlay.Features = append(overlay.Features, schema.Feature{
			Type:       "Feature",
			Properties: schema.FeatureProperties{Name: r.Name, Fill: colorFunc(r.Investment), Investment: r.Investment},
			Geometry:   raw,
		})
		if r.Investment != nil && r.Centroid != nil {
			heat = append(heat, [3]float64{r.Centroid.Lat, r.Centroid.Lon, *r.Investment})
		}
	}

	return &schema.MapDocument{
		Title: MapTitle,
		View:  schema.MapView{Center: cfg.Center, Zoom: cfg.Zoom},
		Tiles: schema.TileLayer{URL: cfg.TileURL, Attribution: cfg.Attribution},
		Choropleth: schema.ChoroplethLayer{
			Name:        ChoroplethName,
			Data:        choropleth,
			FillOpacity: choroplethFillOpacity,
			LineOpacity: choroplethLineOpacity,
			Legend:      graduated.Legend(schema.LegendCaption),
		},
		Overlay: schema.OverlayLayer{
			Name: OverlayName,
			Data: overlay,
			Style: schema.OverlayStyle{
				Color:       overlayStroke,
				Weight:      overlayWeight,
				DashArray:   overlayDashArray,
				FillOpacity: overlayFillOpacity,
			},
			TooltipAlias: schema.TooltipAlias,
		},
		Heatmap: schema.HeatmapLayer{Name: HeatmapName, Radius: cfg.HeatRadius, Points: heat},
		Markers: schema.MarkerLayer{Name: MarkersName, Markers: []schema.Marker{}},
	}, nil
}
