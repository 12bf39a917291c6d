package viz

import (
	"errors"
	"fmt"
	"testing"

	"datalens/domain/chart"
	"datalens/domain/core"
	"datalens/domain/table"
)

// testTable builds a dataset exercising every branch of the recommender:
// two numeric columns, a datetime column, a time-named categorical column,
// a low-cardinality categorical and a high-cardinality categorical.
func testTable() *table.Table {
	t := table.New([]string{"sales", "qty", "shipped", "order_year", "region", "sku"})
	types := []table.ColumnType{
		table.TypeNumeric, table.TypeNumeric, table.TypeDatetime,
		table.TypeCategorical, table.TypeCategorical, table.TypeCategorical,
	}
	for i := range t.Columns {
		t.Columns[i].Type = types[i]
	}

	regions := []string{"North", "South", "East"}
	for i := 0; i < 12; i++ {
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", (i+1)*10),
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("2024-01-%02d", i+1),
			fmt.Sprintf("%d", 2013+i),
			regions[i%len(regions)],
			fmt.Sprintf("SKU-%04d", i),
		})
	}
	t.RefreshColumnStats()
	return t
}

func TestRecommend(t *testing.T) {
	tbl := testTable()

	tests := []struct {
		name      string
		metric    string
		dimension string
		expected  chart.Kind
	}{
		{"numeric alone is a histogram", "sales", "", chart.KindHistogram},
		{"numeric pair is a scatter", "sales", "qty", chart.KindScatter},
		{"datetime dimension is a line", "sales", "shipped", chart.KindLine},
		{"time keyword in the name is a line", "sales", "order_year", chart.KindLine},
		{"low-cardinality categorical is a pie", "sales", "region", chart.KindPie},
		{"high-cardinality categorical is a bar", "sales", "sku", chart.KindBar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, err := Recommend(tbl, tt.metric, tt.dimension)
			if err != nil {
				t.Fatalf("Recommend failed: %v", err)
			}
			if kind != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, kind)
			}
		})
	}
}

func TestRecommendRejectsNonNumericMetric(t *testing.T) {
	tbl := testTable()

	_, err := Recommend(tbl, "region", "")
	if !errors.Is(err, core.ErrNoRecommendation) {
		t.Errorf("Expected ErrNoRecommendation for categorical metric, got %v", err)
	}
}

func TestRecommendUnknownColumn(t *testing.T) {
	tbl := testTable()

	_, err := Recommend(tbl, "nope", "")
	if !errors.Is(err, core.ErrColumnNotFound) {
		t.Errorf("Expected ErrColumnNotFound, got %v", err)
	}

	_, err = Recommend(tbl, "sales", "nope")
	if !errors.Is(err, core.ErrColumnNotFound) {
		t.Errorf("Expected ErrColumnNotFound for dimension, got %v", err)
	}
}
