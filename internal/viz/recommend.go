package viz

import (
	"strings"

	"datalens/domain/chart"
	"datalens/domain/core"
	"datalens/domain/table"
)

// pieCardinalityLimit is the most slices a recommended pie may have
const pieCardinalityLimit = 10

var timeKeywords = []string{"year", "date", "month", "time"}

// Recommend picks a default chart kind for the given column pair:
//
//	numeric metric alone                  -> histogram
//	numeric metric x numeric dimension    -> scatter
//	numeric metric x datetime dimension   -> line
//	numeric metric x categorical:
//	    time keyword in dimension name    -> line
//	    <= 10 distinct values             -> pie
//	    otherwise                         -> bar
//
// Anything else has no recommendation.
func Recommend(t *table.Table, metric, dimension string) (chart.Kind, error) {
	metricCol, err := t.Column(metric)
	if err != nil {
		return "", err
	}
	if metricCol.Type != table.TypeNumeric {
		return "", core.ErrNoRecommendation
	}

	if dimension == "" {
		return chart.KindHistogram, nil
	}

	dimensionCol, err := t.Column(dimension)
	if err != nil {
		return "", err
	}

	switch dimensionCol.Type {
	case table.TypeNumeric:
		return chart.KindScatter, nil
	case table.TypeDatetime:
		return chart.KindLine, nil
	default:
		if hasTimeKeyword(dimension) {
			return chart.KindLine, nil
		}
		if dimensionCol.DistinctCount <= pieCardinalityLimit {
			return chart.KindPie, nil
		}
		return chart.KindBar, nil
	}
}

func hasTimeKeyword(name string) bool {
	lower := strings.ToLower(name)
	for _, word := range timeKeywords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
