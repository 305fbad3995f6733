// Package core has the map pipeline: joining, scaling, layering, charting and popups.
package core

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/huangsam/finmap/core/scale"
	"github.com/huangsam/finmap/internal/contract"
	"github.com/huangsam/finmap/internal/geometry"
	"github.com/huangsam/finmap/internal/metrics"
	"github.com/huangsam/finmap/internal/metricstore"
	"github.com/huangsam/finmap/internal/outwriter"
	"github.com/huangsam/finmap/internal/snapshot"
	"github.com/huangsam/finmap/schema"
)

// ExecutorFunc defines the function signature for executing different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config) error

// Pipeline holds the loaded and joined inputs shared by every command.
type Pipeline struct {
	Records []schema.MetricRecord
	Join    schema.JoinResult
}

// OpenMetricsSource returns the file source, or the SQL store when a backend is configured.
// The returned close function is always safe to call.
func OpenMetricsSource(cfg *contract.Config) (contract.MetricsSource, func() error, error) {
	if cfg.MetricsBackend == schema.NoneBackend {
		return metrics.NewFileSource(cfg), func() error { return nil }, nil
	}
	store, err := metricstore.Open(cfg.MetricsBackend, cfg.MetricsDBConnect)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

// Prepare loads geometry and metrics, joins them and derives centroids.
func Prepare(ctx context.Context, cfg *contract.Config, source contract.MetricsSource) (*Pipeline, error) {
	regions, err := geometry.LoadRegions(cfg.GeometryPath, cfg.NameProperty)
	if err != nil {
		return nil, err
	}
	records, err := source.LoadMetrics(ctx)
	if err != nil {
		return nil, err
	}
	contract.LogInfo("📂 Loaded %d regions from %s and %d metric records from %s",
		len(regions), cfg.GeometryPath, len(records), source.Describe())

	join, err := JoinRegions(regions, records, cfg)
	if err != nil {
		return nil, err
	}
	reportJoin(join)
	DeriveCentroids(join.Regions)
	return &Pipeline{Records: records, Join: join}, nil
}

// reportJoin logs the regions that could not be paired.
func reportJoin(join schema.JoinResult) {
	if n := len(join.UnmatchedRegions); n > 0 {
		contract.LogWarn("Regions without metrics", fmt.Errorf("%d: %s", n, strings.Join(join.UnmatchedRegions, ", ")))
	}
	if n := len(join.OrphanMetrics); n > 0 {
		contract.LogWarn("Metric regions without geometry", fmt.Errorf("%d: %s", n, strings.Join(join.OrphanMetrics, ", ")))
	}
}

// BuildMap composes every layer and popup for a prepared pipeline.
func BuildMap(ctx context.Context, cfg *contract.Config, p *Pipeline) (*schema.MapDocument, error) {
	s, err := scale.New(investments(p.Join.Regions), cfg.Palette, cfg.PaletteColors, cfg.NoDataColor)
	if err != nil {
		return nil, fmt.Errorf("failed to build color scale: %w", err)
	}
	doc, err := ComposeLayers(cfg, p.Join.Regions, s.ColorFunc())
	if err != nil {
		return nil, err
	}
	markers, err := AssemblePopups(ctx, cfg, p.Join.Regions, p.Records)
	if err != nil {
		return nil, err
	}
	doc.Markers.Markers = markers
	doc.Markers.PopupMaxWidth = cfg.ChartWidth + popupPadding
	return doc, nil
}

// popupPadding leaves room around the chart inside a popup.
const popupPadding = 40

func investments(regions []schema.JoinedRegion) []*float64 {
	out := make([]*float64, len(regions))
	for i, r := range regions {
		out[i] = r.Investment
	}
	return out
}

// ExecuteRender runs the full pipeline and writes the HTML map.
// It serves as the main entry point for the root command.
func ExecuteRender(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	source, closeSource, err := OpenMetricsSource(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeSource() }()

	p, err := Prepare(ctx, cfg, source)
	if err != nil {
		return err
	}
	doc, err := BuildMap(ctx, cfg, p)
	if err != nil {
		return err
	}
	if err := outwriter.NewOutWriter().WriteMap(doc, cfg.OutputPath); err != nil {
		return err
	}
	contract.LogInfo("⏱️  Rendered %d regions and %d popups in %v", len(p.Join.Regions), len(doc.Markers.Markers), time.Since(start).Round(time.Millisecond))
	fmt.Printf("Interactive map saved as %s\n", cfg.OutputPath)
	return nil
}

// ExecuteRegions prints the joined regions with their colors and centroids.
func ExecuteRegions(ctx context.Context, cfg *contract.Config) error {
	source, closeSource, err := OpenMetricsSource(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeSource() }()

	p, err := Prepare(ctx, cfg, source)
	if err != nil {
		return err
	}
	report, err := BuildRegionReport(cfg, p.Join)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteRegions(report, cfg)
}

// ExecuteChart writes the chart of a single region as SVG.
func ExecuteChart(ctx context.Context, cfg *contract.Config, region string) error {
	source, closeSource, err := OpenMetricsSource(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeSource() }()

	records, err := source.LoadMetrics(ctx)
	if err != nil {
		return err
	}
	doc, err := GenerateRegionChart(region, records, cfg.ChartWidth, cfg.ChartHeight)
	if err != nil {
		return err
	}
	if doc.Empty {
		contract.LogWarn("Empty chart", fmt.Errorf("no investment data for region %q", region))
	}
	return outwriter.NewOutWriter().WriteChart(doc, cfg.OutputFile)
}

// ExecuteMetricsImport loads a metrics file and stores it in the configured backend.
// The schema is migrated to the latest version first.
func ExecuteMetricsImport(ctx context.Context, cfg *contract.Config, path string, replace bool) error {
	if cfg.MetricsBackend == schema.NoneBackend {
		return fmt.Errorf("metrics import requires --metrics-backend (sqlite, mysql, postgresql)")
	}
	source := metrics.NewFileSource(cfg)
	source.Path = path
	records, err := source.LoadMetrics(ctx)
	if err != nil {
		return err
	}

	if err := metricstore.Migrate(cfg.MetricsBackend, cfg.MetricsDBConnect, -1, os.Stderr); err != nil {
		return err
	}
	store, err := metricstore.Open(cfg.MetricsBackend, cfg.MetricsDBConnect)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	n, err := store.ImportRecords(ctx, records, replace)
	if err != nil {
		return err
	}
	contract.LogInfo("💾 Imported %d metric records from %s into the %s", n, path, store.Describe())
	return nil
}

// ExecuteMetricsMigrate migrates the metrics store schema to targetVersion (-1 for latest).
func ExecuteMetricsMigrate(_ context.Context, cfg *contract.Config, targetVersion int) error {
	return metricstore.Migrate(cfg.MetricsBackend, cfg.MetricsDBConnect, targetVersion, os.Stdout)
}

// ExecuteMetricsStatus prints the metrics store status.
func ExecuteMetricsStatus(ctx context.Context, cfg *contract.Config) error {
	store, err := metricstore.Open(cfg.MetricsBackend, cfg.MetricsDBConnect)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	status, err := store.GetStatus(ctx)
	if err != nil {
		return err
	}
	metricstore.PrintStatus(os.Stdout, status)
	return nil
}

// ExecuteMetricsExport prints the metric records of the configured source.
func ExecuteMetricsExport(ctx context.Context, cfg *contract.Config) error {
	source, closeSource, err := OpenMetricsSource(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeSource() }()

	records, err := source.LoadMetrics(ctx)
	if err != nil {
		return err
	}
	return outwriter.NewOutWriter().WriteMetrics(records, cfg)
}

// ExecuteSnapshot captures a PNG of a rendered map file.
func ExecuteSnapshot(ctx context.Context, cfg *contract.Config, htmlPath string) error {
	if htmlPath == "" {
		htmlPath = cfg.OutputPath
	}
	opts := snapshot.Options{Wait: cfg.SnapshotWait}
	if err := snapshot.Capture(ctx, htmlPath, cfg.SnapshotFile, opts); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "📸 Saved snapshot of %s to %s\n", htmlPath, cfg.SnapshotFile)
	return nil
}
