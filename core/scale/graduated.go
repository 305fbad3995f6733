package scale

import (
	"fmt"
	"image/color"
	"math"

	"github.com/huangsam/finmap/schema"
)

// NoDataLabel is the legend text for regions without investment data.
const NoDataLabel = "No data"

// Graduated assigns values to equal-width classes, one palette color per class.
type Graduated struct {
	domain Domain
	colors []color.RGBA
	noData string
}

// NewGraduated builds a classed scale with the given number of classes.
// The palette must offer exactly that many colors.
func NewGraduated(values []*float64, paletteName string, classes int, noData string) (*Graduated, error) {
	colors, err := paletteColors(paletteName, classes)
	if err != nil {
		return nil, err
	}
	return &Graduated{domain: NewDomain(values), colors: colors, noData: noData}, nil
}

// Classes returns the number of classes.
func (g *Graduated) Classes() int { return len(g.colors) }

// Class returns the 0-based class of v, or -1 when v is null or the domain is empty.
func (g *Graduated) Class(v *float64) int {
	p := g.domain.Position(v)
	if p == nil {
		return -1
	}
	if g.domain.Degenerate() {
		return len(g.colors) / 2
	}
	return min(int(math.Floor(*p*float64(len(g.colors)))), len(g.colors)-1)
}

// Hex maps v to its class color.
func (g *Graduated) Hex(v *float64) string {
	if v == nil {
		return g.noData
	}
	if g.domain.Empty() {
		return FallbackColor
	}
	c := g.Class(v)
	if c < 0 {
		return g.noData
	}
	return toHex(g.colors[c])
}

// ColorFunc exposes the classes as a pure function value.
func (g *Graduated) ColorFunc() schema.ColorFunc { return g.Hex }

// Legend describes each class as a labeled swatch.
// A no-data swatch is added when any input value was null.
func (g *Graduated) Legend(caption string) schema.Legend {
	legend := schema.Legend{Caption: caption, Entries: []schema.LegendEntry{}}
	d := g.domain
	switch {
	case d.Empty():
		legend.Entries = append(legend.Entries, schema.LegendEntry{Color: FallbackColor, Label: schema.NotAvailable})
	case d.Degenerate():
		mid := d.Min
		legend.Entries = append(legend.Entries, schema.LegendEntry{Color: g.Hex(&mid), Label: schema.FormatNumber(&mid)})
	default:
		width := (d.Max - d.Min) / float64(len(g.colors))
		for i, c := range g.colors {
			lo := d.Min + width*float64(i)
			hi := d.Min + width*float64(i+1)
			if i == len(g.colors)-1 {
				hi = d.Max
			}
			legend.Entries = append(legend.Entries, schema.LegendEntry{
				Color: toHex(c),
				Label: fmt.Sprintf("%s - %s", schema.FormatNumber(&lo), schema.FormatNumber(&hi)),
			})
		}
	}
	if d.HasNull {
		legend.NoData = &schema.LegendEntry{Color: g.noData, Label: NoDataLabel}
	}
	return legend
}
