// Package chart defines the supported chart kinds and the compatibility
// rules between chart kinds and column types.
package chart

import (
	"fmt"
	"time"

	"datalens/domain/core"
	"datalens/domain/table"
)

// Kind identifies one of the supported chart types
type Kind string

const (
	KindBar       Kind = "bar"
	KindLine      Kind = "line"
	KindArea      Kind = "area"
	KindHistogram Kind = "histogram"
	KindPie       Kind = "pie"
	KindBox       Kind = "box"
	KindScatter   Kind = "scatter"
)

// Kinds lists all supported chart kinds in display order
func Kinds() []Kind {
	return []Kind{KindBar, KindLine, KindArea, KindHistogram, KindPie, KindBox, KindScatter}
}

// ParseKind validates a chart kind string
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", core.NewInvalidChartRequestError(fmt.Sprintf("unknown chart kind %q", s))
}

// Request describes one chart to render: a kind, a metric column and an
// optional dimension column. Histogram takes no dimension; box treats the
// dimension as an optional grouping.
type Request struct {
	Kind      Kind   `json:"kind"`
	Metric    string `json:"metric"`
	Dimension string `json:"dimension,omitempty"`
}

// Title returns the display title for the request
func (r Request) Title() string {
	if r.Dimension != "" {
		return fmt.Sprintf("%s by %s", r.Metric, r.Dimension)
	}
	return r.Metric
}

// Validate checks the request against the table's column types. An
// incompatible combination yields core.ErrInvalidChartRequest; an unknown
// column yields core.ErrColumnNotFound.
func (r Request) Validate(t *table.Table) error {
	if r.Metric == "" {
		return core.NewInvalidChartRequestError("metric column is required")
	}
	metric, err := t.Column(r.Metric)
	if err != nil {
		return err
	}

	var dimension *table.Column
	if r.Dimension != "" {
		dimension, err = t.Column(r.Dimension)
		if err != nil {
			return err
		}
	}

	switch r.Kind {
	case KindHistogram:
		if metric.Type != table.TypeNumeric {
			return core.NewInvalidChartRequestError(
				fmt.Sprintf("histogram requires a numeric metric, %q is %s", r.Metric, metric.Type))
		}
		if dimension != nil {
			return core.NewInvalidChartRequestError("histogram takes no dimension column")
		}
		return nil

	case KindScatter:
		if dimension == nil {
			return core.NewInvalidChartRequestError("scatter requires a dimension column")
		}
		if metric.Type != table.TypeNumeric || dimension.Type != table.TypeNumeric {
			return core.NewInvalidChartRequestError(
				fmt.Sprintf("scatter requires two numeric columns, got %s and %s", metric.Type, dimension.Type))
		}
		return nil

	case KindBox:
		if metric.Type != table.TypeNumeric {
			return core.NewInvalidChartRequestError(
				fmt.Sprintf("box requires a numeric metric, %q is %s", r.Metric, metric.Type))
		}
		if dimension != nil && dimension.Type == table.TypeNumeric {
			return core.NewInvalidChartRequestError("box grouping column must be categorical")
		}
		return nil

	case KindBar, KindLine, KindArea, KindPie:
		if metric.Type != table.TypeNumeric {
			return core.NewInvalidChartRequestError(
				fmt.Sprintf("%s requires a numeric metric, %q is %s", r.Kind, r.Metric, metric.Type))
		}
		if dimension == nil {
			return core.NewInvalidChartRequestError(fmt.Sprintf("%s requires a dimension column", r.Kind))
		}
		if dimension.Type == table.TypeNumeric && r.Kind == KindPie {
			return core.NewInvalidChartRequestError("pie dimension must be categorical")
		}
		return nil

	default:
		return core.NewInvalidChartRequestError(fmt.Sprintf("unknown chart kind %q", r.Kind))
	}
}

// Chart is the persisted record for one rendered chart artifact
type Chart struct {
	ID        core.ChartID   `json:"id" db:"id"`
	DatasetID core.DatasetID `json:"dataset_id" db:"dataset_id"`
	Kind      Kind           `json:"kind" db:"kind"`
	Metric    string         `json:"metric" db:"metric"`
	Dimension string         `json:"dimension" db:"dimension"`
	Title     string         `json:"title" db:"title"`
	FilePath  string         `json:"file_path" db:"file_path"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// NewChart creates a chart record for a request against a dataset
func NewChart(datasetID core.DatasetID, req Request) *Chart {
	return &Chart{
		ID:        core.ChartID(core.NewID()),
		DatasetID: datasetID,
		Kind:      req.Kind,
		Metric:    req.Metric,
		Dimension: req.Dimension,
		Title:     req.Title(),
		CreatedAt: time.Now(),
	}
}
