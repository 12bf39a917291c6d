package profile

import (
	"fmt"

	"datalens/domain/table"
)

// buildInsights produces the narrative one-liners shown on the dashboard
// and in the exported report
func buildInsights(t *table.Table, summary *table.InsightSummary) []string {
	insights := []string{
		fmt.Sprintf("The dataset contains %d rows and %d columns.", summary.RowCount, summary.ColumnCount),
	}

	if summary.MissingCells == 0 {
		insights = append(insights, "There are no missing values after cleaning.")
	} else {
		insights = append(insights,
			fmt.Sprintf("There are %d missing values remaining.", summary.MissingCells))
	}

	for _, p := range summary.Profiles {
		switch {
		case p.Numeric != nil && p.Numeric.Count > 0:
			insights = append(insights, fmt.Sprintf(
				"'%s' has an average of %.2f, with values ranging from %g to %g.",
				p.Name, p.Numeric.Mean, p.Numeric.Min, p.Numeric.Max))
		case len(p.TopValues) > 0:
			insights = append(insights, fmt.Sprintf(
				"The most frequent value in '%s' is '%s'.", p.Name, p.TopValues[0].Value))
		}
	}

	return insights
}
