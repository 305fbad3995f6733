// Package scale maps investment values onto ColorBrewer gradients.
package scale

import (
	"fmt"
	"image/color"
	"math"

	"github.com/huangsam/finmap/schema"
	"gonum.org/v1/plot/palette/brewer"
)

// FallbackColor is used for every value when no investment is known at all.
const FallbackColor = "#bdbdbd"

// Domain is the observed range of the non-null values.
type Domain struct {
	Min, Max float64
	Count    int  // non-null values
	HasNull  bool // at least one null or non-finite value
}

// NewDomain scans values, skipping nulls and non-finite numbers.
func NewDomain(values []*float64) Domain {
	d := Domain{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, v := range values {
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			d.HasNull = true
			continue
		}
		d.Count++
		d.Min = math.Min(d.Min, *v)
		d.Max = math.Max(d.Max, *v)
	}
	if d.Count == 0 {
		d.Min, d.Max = 0, 0
	}
	return d
}

// Empty reports whether there are no usable values.
func (d Domain) Empty() bool { return d.Count == 0 }

// Degenerate reports whether every usable value is the same.
func (d Domain) Degenerate() bool { return d.Count > 0 && d.Min == d.Max }

// Position places v within [Min, Max] as 0..1.
// Degenerate domains put every value at the midpoint; nulls and empty domains yield nil.
func (d Domain) Position(v *float64) *float64 {
	if v == nil || d.Empty() || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	if d.Degenerate() {
		return schema.Float(0.5)
	}
	p := (*v - d.Min) / (d.Max - d.Min)
	return schema.Float(math.Max(0, math.Min(1, p)))
}

// Scale is a continuous piecewise-linear gradient over a Domain.
type Scale struct {
	domain Domain
	stops  []color.RGBA
	noData string
}

// New builds a continuous scale from a sequential brewer palette with n stops.
func New(values []*float64, paletteName string, n int, noData string) (*Scale, error) {
	stops, err := paletteColors(paletteName, n)
	if err != nil {
		return nil, err
	}
	return &Scale{domain: NewDomain(values), stops: stops, noData: noData}, nil
}

// Domain returns the range the scale was built over.
func (s *Scale) Domain() Domain { return s.domain }

// Position is the value's place along the gradient (0..1), nil when unknown.
func (s *Scale) Position(v *float64) *float64 { return s.domain.Position(v) }

// Hex maps v to a #rrggbb color.
func (s *Scale) Hex(v *float64) string {
	if s.domain.Empty() {
		if v == nil {
			return s.noData
		}
		return FallbackColor
	}
	p := s.domain.Position(v)
	if p == nil {
		return s.noData
	}
	return toHex(interpolate(s.stops, *p))
}

// ColorFunc exposes the scale as a pure function value.
func (s *Scale) ColorFunc() schema.ColorFunc { return s.Hex }

func paletteColors(name string, n int) ([]color.RGBA, error) {
	p, err := brewer.GetPalette(brewer.TypeSequential, name, n)
	if err != nil {
		return nil, fmt.Errorf("palette %s/%d: %w", name, n, err)
	}
	colors := p.Colors()
	out := make([]color.RGBA, len(colors))
	for i, c := range colors {
		out[i] = color.RGBAModel.Convert(c).(color.RGBA)
	}
	return out, nil
}

func interpolate(stops []color.RGBA, p float64) color.RGBA {
	if len(stops) == 1 {
		return stops[0]
	}
	t := p * float64(len(stops)-1)
	i := int(math.Floor(t))
	if i >= len(stops)-1 {
		return stops[len(stops)-1]
	}
	frac := t - float64(i)
	a, b := stops[i], stops[i+1]
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*frac))
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 0xff}
}

func toHex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
