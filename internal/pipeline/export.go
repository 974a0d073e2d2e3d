package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"certmail/internal"
)

// ExportReportToXLSX writes the skipped and failed rows of a job run so they
// can be fixed in the participant sheet and re-run.
func ExportReportToXLSX(job string, report internal.JobReport, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headers := []string{"run_id", "job", "row_no", "name", "file", "outcome", "reason", "detail"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	r := 2
	write := func(outcome string, row internal.RowOutcome) {
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}
		set(1, report.RunID)
		set(2, job)
		set(3, row.RowNo)
		set(4, row.Name)
		set(5, row.File)
		set(6, outcome)
		set(7, string(row.Reason))
		set(8, row.Detail)
		r++
	}
	for _, row := range report.Skipped {
		write("skipped", row)
	}
	for _, row := range report.Failed {
		write("failed", row)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
