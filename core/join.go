package core

import (
	"fmt"

	"github.com/huangsam/finmap/internal/contract"
	"github.com/huangsam/finmap/schema"
	"github.com/samber/lo"
)

// JoinRegions pairs every region with at most one metric record, chosen by the
// configured join policy. Output follows the order of regions.
func JoinRegions(regions []schema.Region, records []schema.MetricRecord, cfg *contract.Config) (schema.JoinResult, error) {
	byRegion := lo.GroupBy(records, func(r schema.MetricRecord) string { return r.Region })
	result := schema.JoinResult{Regions: make([]schema.JoinedRegion, 0, len(regions))}

	for _, region := range regions {
		rec, err := selectRecord(region.Name, byRegion[region.Name], cfg)
		if err != nil {
			return schema.JoinResult{}, err
		}
		if rec == nil {
			result.UnmatchedRegions = append(result.UnmatchedRegions, region.Name)
			if cfg.Unmatched == schema.ExcludeUnmatched {
				continue
			}
			result.Regions = append(result.Regions, schema.JoinedRegion{Region: region})
			continue
		}
		result.Regions = append(result.Regions, schema.JoinedRegion{
			Region:     region,
			Investment: rec.Investment,
			Income:     rec.Income,
			Year:       schema.Int(rec.Year),
			Matched:    true,
		})
	}

	known := lo.SliceToMap(regions, func(r schema.Region) (string, struct{}) { return r.Name, struct{}{} })
	names := lo.Uniq(lo.Map(records, func(r schema.MetricRecord, _ int) string { return r.Region }))
	result.OrphanMetrics = lo.Filter(names, func(name string, _ int) bool {
		_, ok := known[name]
		return !ok
	})
	return result, nil
}

// selectRecord applies the join policy to one region's candidates.
// A nil record with a nil error means the region is unmatched.
func selectRecord(name string, candidates []schema.MetricRecord, cfg *contract.Config) (*schema.MetricRecord, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	var ties []schema.MetricRecord
	switch cfg.JoinPolicy {
	case schema.SingleJoin:
		if len(candidates) > 1 {
			return nil, &schema.JoinError{Region: name, Reason: fmt.Sprintf("expected exactly one record, found %d", len(candidates))}
		}
		ties = candidates
	case schema.YearJoin:
		ties = lo.Filter(candidates, func(r schema.MetricRecord, _ int) bool { return r.Year == cfg.Year })
		if len(ties) == 0 {
			return nil, nil
		}
	default:
		latest := lo.MaxBy(candidates, func(a, b schema.MetricRecord) bool { return a.Year > b.Year }).Year
		ties = lo.Filter(candidates, func(r schema.MetricRecord, _ int) bool { return r.Year == latest })
	}

	chosen := lo.MinBy(ties, func(a, b schema.MetricRecord) bool { return a.Row < b.Row })
	if len(ties) > 1 {
		if cfg.Strict {
			return nil, &schema.JoinError{Region: name, Reason: fmt.Sprintf("%d records tie for year %d", len(ties), chosen.Year)}
		}
		contract.LogWarn("Ambiguous metrics", fmt.Errorf("region %q has %d records for year %d, using row %d", name, len(ties), chosen.Year, chosen.Row))
	}
	return &chosen, nil
}
