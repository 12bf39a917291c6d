package report

import (
	"fmt"
	"io"

	"datalens/domain/table"

	"github.com/xuri/excelize/v2"
)

// WriteSummaryWorkbook writes the insight summary and warnings as an Excel
// workbook with one sheet per section
func WriteSummaryWorkbook(summary *table.InsightSummary, warnings []table.Warning, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	const statsSheet = "Summary"
	f.SetSheetName("Sheet1", statsSheet)

	headers := []string{"Column", "Type", "Missing", "Distinct", "Count", "Mean", "Std Dev", "Min", "Q1", "Median", "Q3", "Max", "Skewness", "Top Values"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(statsSheet, cell, h)
	}

	for rowIdx, p := range summary.Profiles {
		row := rowIdx + 2
		set := func(col int, value interface{}) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			f.SetCellValue(statsSheet, cell, value)
		}
		set(1, p.Name)
		set(2, string(p.Type))
		set(3, p.Missing)
		set(4, p.Distinct)
		if p.Numeric != nil {
			set(5, p.Numeric.Count)
			set(6, p.Numeric.Mean)
			set(7, p.Numeric.StdDev)
			set(8, p.Numeric.Min)
			set(9, p.Numeric.Q1)
			set(10, p.Numeric.Median)
			set(11, p.Numeric.Q3)
			set(12, p.Numeric.Max)
			set(13, p.Numeric.Skewness)
		}
		if len(p.TopValues) > 0 {
			top := ""
			for i, vc := range p.TopValues {
				if i > 0 {
					top += ", "
				}
				top += fmt.Sprintf("%s (%d)", vc.Value, vc.Count)
			}
			set(14, top)
		}
	}

	const warningsSheet = "Warnings"
	if _, err := f.NewSheet(warningsSheet); err != nil {
		return fmt.Errorf("failed to create warnings sheet: %w", err)
	}
	for i, h := range []string{"Kind", "Column", "Statistic", "Message"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(warningsSheet, cell, h)
	}
	for i, warning := range warnings {
		row := i + 2
		values := []interface{}{string(warning.Kind), warning.Column, warning.Statistic, warning.Message}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(warningsSheet, cell, v)
		}
	}

	return f.Write(w)
}
