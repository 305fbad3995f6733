// Package geometry loads region boundaries from GeoJSON and derives their centroids.
package geometry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/huangsam/finmap/schema"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/xy"
)

// maxDecimalDigits bounds coordinate precision when geometry is re-encoded for the page.
const maxDecimalDigits = 6

var nullGeometry = []byte("null")

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string          `json:"type"`
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

// LoadRegions reads a GeoJSON FeatureCollection and returns its regions in file order.
func LoadRegions(path, nameProperty string) ([]schema.Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &schema.LoadError{Path: path, Reason: "cannot read geometry file", Err: err}
	}
	return ParseRegions(path, data, nameProperty)
}

// ParseRegions decodes a FeatureCollection already held in memory.
// Path is only used to label errors.
func ParseRegions(path string, data []byte, nameProperty string) ([]schema.Region, error) {
	var fc featureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, &schema.LoadError{Path: path, Reason: "invalid GeoJSON", Err: err}
	}
	if fc.Type != "FeatureCollection" {
		return nil, &schema.LoadError{Path: path, Reason: fmt.Sprintf("expected a FeatureCollection, got %q", fc.Type)}
	}

	regions := make([]schema.Region, 0, len(fc.Features))
	seen := make(map[string]int, len(fc.Features))
	for i, f := range fc.Features {
		name, err := featureName(f, nameProperty)
		if err != nil {
			return nil, &schema.LoadError{Path: path, Reason: fmt.Sprintf("feature %d", i), Err: err}
		}
		if first, dup := seen[name]; dup {
			return nil, &schema.LoadError{Path: path, Reason: fmt.Sprintf("duplicate region name %q in features %d and %d", name, first, i)}
		}
		seen[name] = i

		g, err := decodeGeometry(f.Geometry)
		if err != nil {
			return nil, &schema.LoadError{Path: path, Reason: fmt.Sprintf("feature %q", name), Err: err}
		}
		regions = append(regions, schema.Region{Name: name, Geometry: g, Properties: f.Properties})
	}
	return regions, nil
}

// featureName extracts the join key from the feature properties.
func featureName(f feature, nameProperty string) (string, error) {
	raw, ok := f.Properties[nameProperty]
	if !ok || raw == nil {
		return "", fmt.Errorf("missing %q property", nameProperty)
	}
	name, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("property %q must be a string, got %T", nameProperty, raw)
	}
	if strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("property %q is empty", nameProperty)
	}
	return name, nil
}

// decodeGeometry accepts Polygon, MultiPolygon or null.
func decodeGeometry(raw json.RawMessage) (geom.T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, nullGeometry) {
		return nil, nil
	}
	var g geom.T
	if err := geojson.Unmarshal(trimmed, &g); err != nil {
		return nil, err
	}
	switch g.(type) {
	case *geom.Polygon, *geom.MultiPolygon, nil:
		return g, nil
	default:
		return nil, fmt.Errorf("unsupported geometry type %T, want Polygon or MultiPolygon", g)
	}
}

// Centroid returns the area-weighted centroid of a polygonal geometry in map order.
func Centroid(name string, g geom.T) (c schema.LatLon, err error) {
	if g == nil || g.Empty() {
		return c, &schema.RenderError{Region: name, Reason: "empty geometry"}
	}

	// go-geom indexes the first coordinate of every polygon it visits.
	if mp, ok := g.(*geom.MultiPolygon); ok {
		g, err = dropEmptyPolygons(mp)
		if err != nil {
			return c, &schema.RenderError{Region: name, Reason: "cannot clean multipolygon", Err: err}
		}
	}
	defer func() {
		if r := recover(); r != nil {
			err = &schema.RenderError{Region: name, Reason: fmt.Sprintf("centroid failed: %v", r)}
		}
	}()

	coord, err := xy.Centroid(g)
	if err != nil {
		return c, &schema.RenderError{Region: name, Reason: "centroid failed", Err: err}
	}
	lon, lat := coord.X(), coord.Y()
	if !finite(lon) || !finite(lat) {
		return c, &schema.RenderError{Region: name, Reason: "degenerate geometry has no area"}
	}
	return schema.LatLon{Lat: lat, Lon: lon}, nil
}

func dropEmptyPolygons(mp *geom.MultiPolygon) (geom.T, error) {
	out := geom.NewMultiPolygon(mp.Layout())
	for i := 0; i < mp.NumPolygons(); i++ {
		p := mp.Polygon(i)
		if p.Empty() {
			continue
		}
		if err := out.Push(p); err != nil {
			return nil, err
		}
	}
	if out.NumPolygons() == 0 {
		return nil, errors.New("no non-empty polygons")
	}
	return out, nil
}

// EncodeGeoJSON re-encodes a geometry for embedding; nil becomes null.
func EncodeGeoJSON(g geom.T) (json.RawMessage, error) {
	if g == nil {
		return json.RawMessage(nullGeometry), nil
	}
	data, err := geojson.Marshal(g, geojson.EncodeGeometryWithMaxDecimalDigits(maxDecimalDigits))
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
