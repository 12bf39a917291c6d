package table

import "fmt"

// CleaningReport records what the cleaner changed
type CleaningReport struct {
	DuplicatesRemoved int            `json:"duplicates_removed"`
	FilledByColumn    map[string]int `json:"filled_by_column"`
}

// TotalFilled returns the total number of cells the cleaner filled
func (r CleaningReport) TotalFilled() int {
	total := 0
	for _, n := range r.FilledByColumn {
		total += n
	}
	return total
}

// ValueCount is a categorical value with its frequency
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// NumericStats holds descriptive statistics for a numeric column
type NumericStats struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Q1       float64 `json:"q1"`
	Median   float64 `json:"median"`
	Q3       float64 `json:"q3"`
	Max      float64 `json:"max"`
	Skewness float64 `json:"skewness"`
}

// IQR returns the interquartile range
func (s NumericStats) IQR() float64 {
	return s.Q3 - s.Q1
}

// ColumnProfile is the per-column slice of an InsightSummary. Exactly one of
// Numeric or TopValues is populated, depending on the column type.
type ColumnProfile struct {
	Name      string        `json:"name"`
	Type      ColumnType    `json:"type"`
	Missing   int           `json:"missing"`
	Distinct  int           `json:"distinct"`
	Numeric   *NumericStats `json:"numeric,omitempty"`
	TopValues []ValueCount  `json:"top_values,omitempty"`
}

// InsightSummary aggregates per-column profiles with narrative insights
type InsightSummary struct {
	RowCount     int             `json:"row_count"`
	ColumnCount  int             `json:"column_count"`
	MissingCells int             `json:"missing_cells"`
	Profiles     []ColumnProfile `json:"profiles"`
	Insights     []string        `json:"insights"`
}

// Profile returns the profile for the named column, or nil
func (s *InsightSummary) Profile(name string) *ColumnProfile {
	for i := range s.Profiles {
		if s.Profiles[i].Name == name {
			return &s.Profiles[i]
		}
	}
	return nil
}

// WarningKind tags a data-quality finding
type WarningKind string

const (
	WarningOutlier         WarningKind = "outlier"
	WarningSkew            WarningKind = "skew"
	WarningHighCardinality WarningKind = "high_cardinality"
)

// Warning is a single data-quality finding with its supporting statistic
type Warning struct {
	Kind      WarningKind `json:"kind"`
	Column    string      `json:"column"`
	Statistic float64     `json:"statistic"`
	Message   string      `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s", w.Kind, w.Message)
}
