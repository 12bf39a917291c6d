// Package profile computes per-column descriptive statistics and
// data-quality warnings over a cleaned table.
package profile

import (
	"fmt"
	"math"
	"sort"

	"datalens/domain/table"
	"datalens/internal/config"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Profiler derives an InsightSummary and warnings from a table. Thresholds
// come from configuration; every threshold comparison is strictly greater
// than, so a statistic landing exactly on a threshold does not flag.
type Profiler struct {
	cfg config.ProfileConfig
}

// New creates a profiler with the given thresholds
func New(cfg config.ProfileConfig) *Profiler {
	return &Profiler{cfg: cfg}
}

// Summarize profiles every column and collects warnings, ordered by column
// position and then by warning kind.
func (p *Profiler) Summarize(t *table.Table) (*table.InsightSummary, []table.Warning, error) {
	summary := &table.InsightSummary{
		RowCount:     t.RowCount(),
		ColumnCount:  t.ColumnCount(),
		MissingCells: t.MissingCells(),
	}
	warnings := []table.Warning{}

	for _, col := range t.Columns {
		profile := table.ColumnProfile{
			Name:     col.Name,
			Type:     col.Type,
			Missing:  col.MissingCount,
			Distinct: col.DistinctCount,
		}

		if col.Type == table.TypeNumeric {
			numeric, colWarnings, err := p.profileNumeric(t, col.Name)
			if err != nil {
				return nil, nil, fmt.Errorf("profiling column %q: %w", col.Name, err)
			}
			profile.Numeric = numeric
			warnings = append(warnings, colWarnings...)
		} else {
			profile.TopValues = p.topValues(t, col.Name)
			if w, flagged := p.cardinalityWarning(t, col); flagged {
				warnings = append(warnings, w)
			}
		}

		summary.Profiles = append(summary.Profiles, profile)
	}

	summary.Insights = buildInsights(t, summary)
	return summary, warnings, nil
}

// profileNumeric computes descriptive statistics for one numeric column and
// its outlier and skew warnings
func (p *Profiler) profileNumeric(t *table.Table, name string) (*table.NumericStats, []table.Warning, error) {
	values, err := t.NumericValues(name)
	if err != nil {
		return nil, nil, err
	}
	if len(values) == 0 {
		return &table.NumericStats{}, nil, nil
	}

	mean, err := stats.Mean(values)
	if err != nil {
		return nil, nil, err
	}
	min, err := stats.Min(values)
	if err != nil {
		return nil, nil, err
	}
	max, err := stats.Max(values)
	if err != nil {
		return nil, nil, err
	}
	median, err := stats.Median(values)
	if err != nil {
		return nil, nil, err
	}
	q1, err := stats.Percentile(values, 25)
	if err != nil {
		return nil, nil, err
	}
	q3, err := stats.Percentile(values, 75)
	if err != nil {
		return nil, nil, err
	}

	// Sample standard deviation; a single observation has none
	stdDev := 0.0
	if len(values) > 1 {
		stdDev, err = stats.StandardDeviationSample(values)
		if err != nil {
			return nil, nil, err
		}
	}

	skewness := 0.0
	if len(values) >= 3 && stdDev > 0 {
		skewness = stat.Skew(values, nil)
	}

	numeric := &table.NumericStats{
		Count:    len(values),
		Mean:     mean,
		StdDev:   stdDev,
		Min:      min,
		Q1:       q1,
		Median:   median,
		Q3:       q3,
		Max:      max,
		Skewness: skewness,
	}

	var warnings []table.Warning
	if outliers := p.countOutliers(values, q1, q3); outliers > 0 {
		warnings = append(warnings, table.Warning{
			Kind:      table.WarningOutlier,
			Column:    name,
			Statistic: float64(outliers),
			Message:   fmt.Sprintf("Column %q contains %d potential outliers.", name, outliers),
		})
	}
	if math.Abs(skewness) > p.cfg.SkewThreshold {
		warnings = append(warnings, table.Warning{
			Kind:      table.WarningSkew,
			Column:    name,
			Statistic: skewness,
			Message:   fmt.Sprintf("Column %q appears to be skewed (skewness %.2f).", name, skewness),
		})
	}
	return numeric, warnings, nil
}

// countOutliers counts values strictly outside the IQR fences
func (p *Profiler) countOutliers(values []float64, q1, q3 float64) int {
	iqr := q3 - q1
	lower := q1 - p.cfg.OutlierIQRMult*iqr
	upper := q3 + p.cfg.OutlierIQRMult*iqr

	count := 0
	for _, v := range values {
		if v < lower || v > upper {
			count++
		}
	}
	return count
}

// cardinalityWarning flags a non-numeric column whose distinct/rows ratio
// strictly exceeds the configured threshold
func (p *Profiler) cardinalityWarning(t *table.Table, col table.Column) (table.Warning, bool) {
	if t.RowCount() == 0 {
		return table.Warning{}, false
	}
	ratio := float64(col.DistinctCount) / float64(t.RowCount())
	if ratio > p.cfg.CardinalityRatio {
		return table.Warning{
			Kind:      table.WarningHighCardinality,
			Column:    col.Name,
			Statistic: ratio,
			Message: fmt.Sprintf("Column %q has high cardinality (%d unique values in %d rows).",
				col.Name, col.DistinctCount, t.RowCount()),
		}, true
	}
	return table.Warning{}, false
}

// topValues returns the N most frequent values of a column, most frequent
// first, ties broken by value
func (p *Profiler) topValues(t *table.Table, name string) []table.ValueCount {
	values, err := t.Values(name)
	if err != nil || len(values) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, v := range values {
		counts[v]++
	}

	ranked := make([]table.ValueCount, 0, len(counts))
	for v, n := range counts {
		ranked = append(ranked, table.ValueCount{Value: v, Count: n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Value < ranked[j].Value
	})

	if len(ranked) > p.cfg.TopValues {
		ranked = ranked[:p.cfg.TopValues]
	}
	return ranked
}
