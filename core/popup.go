package core

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"sync"

	"github.com/huangsam/finmap/internal/contract"
	"github.com/huangsam/finmap/schema"
	"github.com/schollz/progressbar/v3"
)

var popupTemplate = template.Must(template.New("popup").Parse(`<div class="region-popup">
<h4>{{.Name}}</h4>
<p>Investment: {{.Investment}}</p>
<p>Income: {{.Income}}</p>
{{- if .Chart}}
<div class="region-chart" style="width: {{.ChartWidth}}px">{{.Chart}}</div>
{{- end}}
</div>`))

type popupView struct {
	Name       string
	Investment string
	Income     string
	Chart      template.HTML
	ChartWidth int
}

// BuildPopup renders the popup fragment for one region. The chart may be nil.
func BuildPopup(region schema.JoinedRegion, chart *schema.ChartDocument) (string, error) {
	view := popupView{
		Name:       region.Name,
		Investment: schema.FormatMoney(region.Investment),
		Income:     schema.FormatMoney(region.Income),
	}
	if chart != nil {
		view.Chart = template.HTML(chart.SVG) // chart titles are escaped before rendering
		view.ChartWidth = chart.Width
	}
	var buf bytes.Buffer
	if err := popupTemplate.Execute(&buf, view); err != nil {
		return "", &schema.RenderError{Region: region.Name, Reason: "popup template failed", Err: err}
	}
	return buf.String(), nil
}

// AssemblePopups builds one marker per region with a centroid, in region order.
// Charts are rendered by cfg.Workers goroutines.
func AssemblePopups(ctx context.Context, cfg *contract.Config, regions []schema.JoinedRegion, records []schema.MetricRecord) ([]schema.Marker, error) {
	targets := make([]schema.JoinedRegion, 0, len(regions))
	for _, r := range regions {
		if r.Centroid == nil {
			contract.LogWarn("Skipping popup", &schema.RenderError{Region: r.Name, Reason: "no centroid"})
			continue
		}
		targets = append(targets, r)
	}

	var bar *progressbar.ProgressBar
	if cfg.Progress && len(targets) > 0 {
		bar = progressbar.NewOptions(len(targets),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("Rendering charts"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	markers := make([]schema.Marker, len(targets))
	jobs := make(chan int, len(targets))
	var wg sync.WaitGroup

	for range max(1, cfg.Workers) {
		wg.Go(func() {
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				// Each worker writes to a unique index, so no locking is needed
				markers[i] = buildMarker(cfg, targets[i], records)
				if bar != nil {
					_ = bar.Add(1)
				}
			}
		})
	}
	for i := range targets {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if bar != nil {
		_ = bar.Finish()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return markers, nil
}

// buildMarker renders the chart and popup for one region, degrading to a
// chart-less popup if rendering fails.
func buildMarker(cfg *contract.Config, region schema.JoinedRegion, records []schema.MetricRecord) schema.Marker {
	marker := schema.Marker{Name: region.Name, Lat: region.Centroid.Lat, Lon: region.Centroid.Lon}

	var chart *schema.ChartDocument
	doc, err := GenerateRegionChart(region.Name, records, cfg.ChartWidth, cfg.ChartHeight)
	if err != nil {
		contract.LogWarn("Omitting chart", err)
	} else {
		chart = &doc
	}

	popup, err := BuildPopup(region, chart)
	if err != nil {
		contract.LogWarn("Omitting popup", err)
		popup = fmt.Sprintf("<b>%s</b>", template.HTMLEscapeString(region.Name))
	}
	marker.Popup = popup
	return marker
}
