package core

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"slices"
	"strings"

	"github.com/huangsam/finmap/schema"
	"github.com/samber/lo"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Dark chart palette.
var (
	chartBackground = drawing.ColorFromHex("111111")
	chartForeground = drawing.ColorFromHex("f2f5fa")
	chartGrid       = drawing.ColorFromHex("283442")
	chartLine       = drawing.ColorFromHex("636efa")
)

const (
	maxYearTicks   = 8
	desiredYTicks  = 5
	chartFontSize  = 9
	chartTitleSize = 11
)

// chartPoint is one plotted (year, investment) pair.
type chartPoint struct {
	year       int
	investment float64
}

// chartPoints selects a region's plottable records in (Year, Row) order.
func chartPoints(name string, records []schema.MetricRecord) []chartPoint {
	rows := lo.Filter(records, func(r schema.MetricRecord, _ int) bool {
		return r.Region == name && r.Investment != nil && !math.IsNaN(*r.Investment) && !math.IsInf(*r.Investment, 0)
	})
	slices.SortStableFunc(rows, func(a, b schema.MetricRecord) int {
		if a.Year != b.Year {
			return a.Year - b.Year
		}
		return a.Row - b.Row
	})
	return lo.Map(rows, func(r schema.MetricRecord, _ int) chartPoint {
		return chartPoint{year: r.Year, investment: *r.Investment}
	})
}

// GenerateRegionChart renders the investment history of one region as an SVG fragment.
// A region without usable records gets a placeholder chart rather than an error.
func GenerateRegionChart(name string, records []schema.MetricRecord, width, height int) (schema.ChartDocument, error) {
	doc := schema.ChartDocument{Region: name, Width: width}
	points := chartPoints(name, records)
	doc.Points = len(points)

	var graph chart.Chart
	if len(points) == 0 {
		doc.Empty = true
		graph = placeholderChart(name)
	} else {
		graph = lineChart(name, points)
	}
	graph.Width = width
	graph.Height = height

	var buf bytes.Buffer
	if err := graph.Render(chart.SVG, &buf); err != nil {
		return doc, &schema.RenderError{Region: name, Reason: "chart rendering failed", Err: err}
	}
	doc.SVG = svgFragment(buf.String())
	return doc, nil
}

func lineChart(name string, points []chartPoint) chart.Chart {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = float64(p.year)
		ys[i] = p.investment
	}

	minYear, maxYear := points[0].year, points[len(points)-1].year
	if minYear == maxYear {
		minYear--
		maxYear++
	}
	yMin, yMax := niceAxisBounds(slices.Min(ys), slices.Max(ys))

	return chart.Chart{
		Title:      fmt.Sprintf("%s: %s", schema.ChartTitle, html.EscapeString(name)),
		TitleStyle: chart.Style{FontColor: chartForeground, FontSize: chartTitleSize},
		Background: chart.Style{
			FillColor: chartBackground,
			Padding:   chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 12},
		},
		Canvas: chart.Style{FillColor: chartBackground},
		XAxis: chart.XAxis{
			Name:      schema.ChartXAxis,
			NameStyle: chart.Style{FontColor: chartForeground, FontSize: chartFontSize},
			Style:     chart.Style{FontColor: chartForeground, StrokeColor: chartGrid, FontSize: chartFontSize},
			Range:     &chart.ContinuousRange{Min: float64(minYear), Max: float64(maxYear)},
			Ticks:     yearTicks(minYear, maxYear),
		},
		YAxis: chart.YAxis{
			Name:           schema.ChartYAxis,
			NameStyle:      chart.Style{FontColor: chartForeground, FontSize: chartFontSize},
			Style:          chart.Style{FontColor: chartForeground, StrokeColor: chartGrid, FontSize: chartFontSize},
			Range:          &chart.ContinuousRange{Min: yMin, Max: yMax},
			Ticks:          moneyTicks(yMin, yMax, desiredYTicks),
			GridMajorStyle: chart.Style{StrokeColor: chartGrid, StrokeWidth: 1},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    name,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: chartLine,
					StrokeWidth: 2,
					DotColor:    chartLine,
					DotWidth:    4,
				},
			},
		},
	}
}

// placeholderChart draws an empty frame titled with the missing-data message.
func placeholderChart(name string) chart.Chart {
	return chart.Chart{
		Title:      fmt.Sprintf("No investment data: %s", html.EscapeString(name)),
		TitleStyle: chart.Style{FontColor: chartForeground, FontSize: chartTitleSize},
		Background: chart.Style{FillColor: chartBackground, Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 12}},
		Canvas:     chart.Style{FillColor: chartBackground},
		XAxis:      chart.XAxis{Style: chart.Style{Hidden: true}},
		YAxis:      chart.YAxis{Style: chart.Style{Hidden: true}},
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 1},
				Style:   chart.Style{StrokeColor: drawing.ColorTransparent, StrokeWidth: 0},
			},
		},
	}
}

// niceAxisBounds widens [low, high] by a margin and rounds to the span's magnitude.
// Flat series get a window around the single value.
func niceAxisBounds(low, high float64) (float64, float64) {
	if high <= low {
		pad := math.Max(1, math.Abs(low)*0.1)
		return low - pad, high + pad
	}
	span := high - low
	a, b := low-span*0.05, high+span*0.05
	mag := math.Pow(10, math.Floor(math.Log10(span)))
	if mag > 0 && !math.IsInf(mag, 0) {
		a = math.Floor(a/mag) * mag
		b = math.Ceil(b/mag) * mag
	}
	return a, b
}

// yearTicks labels integer years, thinning to at most maxYearTicks.
func yearTicks(minYear, maxYear int) []chart.Tick {
	step := max(1, int(math.Ceil(float64(maxYear-minYear)/float64(maxYearTicks))))
	var ticks []chart.Tick
	for y := minYear; y <= maxYear; y += step {
		ticks = append(ticks, chart.Tick{Value: float64(y), Label: fmt.Sprintf("%d", y)})
	}
	return ticks
}

// moneyTicks picks round steps (1, 2, 2.5, 5 x 10^k) closest to n ticks.
func moneyTicks(low, high float64, n int) []chart.Tick {
	span := high - low
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(n-1))))
	best, bestScore := mag, math.MaxFloat64
	for _, c := range []float64{1, 2, 2.5, 5, 10} {
		step := c * mag
		score := math.Abs(math.Ceil(span/step) - float64(n))
		if score < bestScore {
			best, bestScore = step, score
		}
	}
	var ticks []chart.Tick
	for v := math.Ceil(low/best) * best; v <= high+best/1e6; v += best {
		value := v
		ticks = append(ticks, chart.Tick{Value: value, Label: schema.FormatMoney(&value)})
	}
	return ticks
}

// svgFragment drops anything before the root element so the chart embeds inline.
func svgFragment(s string) string {
	if i := strings.Index(s, "<svg"); i > 0 {
		return s[i:]
	}
	return s
}
