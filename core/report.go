package core

import (
	"fmt"

	"github.com/huangsam/finmap/core/scale"
	"github.com/huangsam/finmap/internal/contract"
	"github.com/huangsam/finmap/schema"
)

// BuildRegionReport summarizes joined regions with their choropleth color and
// relative investment position.
func BuildRegionReport(cfg *contract.Config, join schema.JoinResult) (*schema.RegionReport, error) {
	values := investments(join.Regions)
	graduated, err := scale.NewGraduated(values, cfg.Palette, cfg.LegendClasses, cfg.NoDataColor)
	if err != nil {
		return nil, fmt.Errorf("failed to build legend classes: %w", err)
	}
	domain := scale.NewDomain(values)

	report := &schema.RegionReport{
		Regions:          make([]schema.RegionSummary, 0, len(join.Regions)),
		UnmatchedRegions: nonNil(join.UnmatchedRegions),
		OrphanMetrics:    nonNil(join.OrphanMetrics),
	}
	for _, r := range join.Regions {
		report.Regions = append(report.Regions, schema.RegionSummary{
			Name:       r.Name,
			Matched:    r.Matched,
			Year:       r.Year,
			Investment: r.Investment,
			Income:     r.Income,
			Centroid:   r.Centroid,
			Color:      graduated.Hex(r.Investment),
			Position:   domain.Position(r.Investment),
		})
	}
	return report, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
