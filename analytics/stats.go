package analytics

import (
	"github.com/rs/zerolog"

	"regional-pulse/models"
)

// Band is the display category of a region derived from its negative ratio.
type Band string

const (
	BandNoData          Band = "no-data"
	BandNegativeRisk    Band = "negative-risk"
	BandNeutral         Band = "neutral"
	BandPositiveLeaning Band = "positive-leaning"
)

// Thresholds of the neutral band, in percent. Renderers depend on them.
const (
	NeutralLow  = 50.0
	NeutralHigh = 51.0
)

// ClassifyBand maps a region's totals onto a band.
func ClassifyBand(totalCount int, negativeRatio float64) Band {
	switch {
	case totalCount == 0:
		return BandNoData
	case negativeRatio > NeutralHigh:
		return BandNegativeRisk
	case negativeRatio < NeutralLow:
		return BandPositiveLeaning
	default:
		return BandNeutral
	}
}

// Color is the map fill color of the band.
func (b Band) Color() string {
	switch b {
	case BandNegativeRisk:
		return "#FF0000"
	case BandNeutral:
		return "#FFFFFF"
	case BandPositiveLeaning:
		return "#0000FF"
	default:
		return "#CCCCCC"
	}
}

// Label is the legend text of the band.
func (b Band) Label() string {
	switch b {
	case BandNegativeRisk:
		return "부정 위험 (부정 비율 > 51%)"
	case BandNeutral:
		return "중립 지역 (50% ~ 51%)"
	case BandPositiveLeaning:
		return "긍정 우세 (부정 비율 < 50%)"
	default:
		return "데이터 없음"
	}
}

// Bands lists every band in legend order.
func Bands() []Band {
	return []Band{BandNegativeRisk, BandNeutral, BandPositiveLeaning, BandNoData}
}

// RegionStat is the per-region projection consumed by the map.
type RegionStat struct {
	Region        string  `json:"region"`
	TotalCount    int     `json:"total_count"`
	PositiveCount int     `json:"positive_count"`
	NegativeCount int     `json:"negative_count"`
	NegativeRatio float64 `json:"negative_ratio"`
	Band          Band    `json:"band"`
}

// RegionReport is the result of one aggregation pass.
type RegionReport struct {
	Stats         map[string]RegionStat
	Unmapped      int
	MissingRegion int
	Unscored      int
}

// AggregatorOptions tune how records are counted.
type AggregatorOptions struct {
	// CountUnscored makes unscored records count toward total_count.
	CountUnscored bool
}

// Aggregator computes RegionStats over a record snapshot. It keeps no state
// between calls.
type Aggregator struct {
	normalizer *RegionNormalizer
	opts       AggregatorOptions
	logger     zerolog.Logger
}

func NewAggregator(normalizer *RegionNormalizer, opts AggregatorOptions, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		normalizer: normalizer,
		opts:       opts,
		logger:     logger,
	}
}

// Aggregate returns the stats of every canonical region, or an empty map
// for an empty snapshot.
func (a *Aggregator) Aggregate(records []models.NewsRecord) map[string]RegionStat {
	return a.AggregateReport(records).Stats
}

// AggregateReport is Aggregate plus the counts of excluded records.
func (a *Aggregator) AggregateReport(records []models.NewsRecord) RegionReport {
	report := RegionReport{Stats: make(map[string]RegionStat)}
	if len(records) == 0 {
		return report
	}

	for _, name := range a.normalizer.Regions() {
		report.Stats[name] = RegionStat{Region: name, Band: BandNoData}
	}

	for _, rec := range records {
		label, ok := rec.RegionLabel()
		if !ok {
			report.MissingRegion++
			continue
		}
		canonical, ok := a.normalizer.Normalize(label)
		if !ok {
			report.Unmapped++
			continue
		}

		stat := report.Stats[canonical]
		score, scored := rec.Score()
		if !scored {
			report.Unscored++
			if a.opts.CountUnscored {
				stat.TotalCount++
				report.Stats[canonical] = stat
			}
			continue
		}

		stat.TotalCount++
		switch {
		case score > 0:
			stat.PositiveCount++
		case score < 0:
			stat.NegativeCount++
		}
		report.Stats[canonical] = stat
	}

	for name, stat := range report.Stats {
		stat.NegativeRatio = negativeRatio(stat.NegativeCount, stat.TotalCount)
		stat.Band = ClassifyBand(stat.TotalCount, stat.NegativeRatio)
		report.Stats[name] = stat
	}

	if report.Unmapped > 0 || report.MissingRegion > 0 {
		a.logger.Debug().
			Int("records", len(records)).
			Int("unmapped", report.Unmapped).
			Int("missing_region", report.MissingRegion).
			Msg("Records excluded from region aggregation")
	}

	return report
}

func negativeRatio(negative, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(negative) / float64(total) * 100
}
