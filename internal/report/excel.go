// Package report renders batch scheduling results to a spreadsheet.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"flowsched/pkg/domain"
)

// RunSummary is one algorithm's aggregate outcome over a batch run (or the
// average of several runs, matching the original workload driver's
// across-runs averaging).
type RunSummary struct {
	Algorithm    string
	Order        string
	FlowsTotal   float64
	AdmittedAvg  float64
	RejectedAvg  float64
	AdmittedRate float64
}

// BatchDetail is a single run's full admission detail, written when the
// caller wants per-flow visibility rather than just the averaged summary.
type BatchDetail struct {
	Algorithm string
	Admitted  []domain.SuccessRecord
	Rejected  []domain.FailureRecord
}

// Write renders summaries and optional per-run details into an xlsx file at path.
func Write(path, sheetName string, summaries []RunSummary, details []BatchDetail) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // best effort close after Write below already flushed content

	f.DeleteSheet("Sheet1") //nolint:errcheck // default sheet removal, nothing to recover from

	if sheetName == "" {
		sheetName = "Batch"
	}
	if err := writeSummarySheet(f, sheetName, summaries); err != nil {
		return err
	}
	for _, d := range details {
		if err := writeDetailSheet(f, d); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}

func writeSummarySheet(f *excelize.File, sheetName string, summaries []RunSummary) error {
	f.NewSheet(sheetName) //nolint:errcheck // index unused, sheet created by name below

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}

	row := 1
	f.SetCellValue(sheetName, cellAddr("A", row), "Deadline-Aware Scheduling Summary")
	f.MergeCell(sheetName, cellAddr("A", row), cellAddr("E", row)) //nolint:errcheck // cosmetic merge
	row += 2

	headers := []string{"Algorithm", "Order", "Flows", "Admitted (avg)", "Rejected (avg)", "Admission Rate"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cellAddr(string(rune('A'+i)), row), h)
	}
	f.SetCellStyle(sheetName, cellAddr("A", row), cellAddr("F", row), headerStyle) //nolint:errcheck // style application, not load-bearing
	row++

	for _, s := range summaries {
		f.SetCellValue(sheetName, cellAddr("A", row), s.Algorithm)
		f.SetCellValue(sheetName, cellAddr("B", row), s.Order)
		f.SetCellValue(sheetName, cellAddr("C", row), s.FlowsTotal)
		f.SetCellValue(sheetName, cellAddr("D", row), s.AdmittedAvg)
		f.SetCellValue(sheetName, cellAddr("E", row), s.RejectedAvg)
		f.SetCellValue(sheetName, cellAddr("F", row), s.AdmittedRate)
		row++
	}

	f.SetColWidth(sheetName, "A", "F", 18) //nolint:errcheck // cosmetic column sizing
	return nil
}

func writeDetailSheet(f *excelize.File, d BatchDetail) error {
	sheetName := d.Algorithm + " Detail"
	f.NewSheet(sheetName) //nolint:errcheck // index unused, sheet created by name below

	headers := []string{"Src", "Dst", "Size (Mbit)", "Arrival", "Deadline", "Outcome", "Finish Time", "Reason"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cellAddr(string(rune('A'+i)), 1), h)
	}

	row := 2
	for _, rec := range d.Admitted {
		f.SetCellValue(sheetName, cellAddr("A", row), rec.Flow.Src)
		f.SetCellValue(sheetName, cellAddr("B", row), rec.Flow.Dst)
		f.SetCellValue(sheetName, cellAddr("C", row), rec.Flow.SizeMbit)
		f.SetCellValue(sheetName, cellAddr("D", row), rec.Flow.Arrival)
		f.SetCellValue(sheetName, cellAddr("E", row), rec.Flow.EndTime())
		f.SetCellValue(sheetName, cellAddr("F", row), "admitted")
		f.SetCellValue(sheetName, cellAddr("G", row), rec.FinishTime)
		row++
	}
	for _, rec := range d.Rejected {
		f.SetCellValue(sheetName, cellAddr("A", row), rec.Flow.Src)
		f.SetCellValue(sheetName, cellAddr("B", row), rec.Flow.Dst)
		f.SetCellValue(sheetName, cellAddr("C", row), rec.Flow.SizeMbit)
		f.SetCellValue(sheetName, cellAddr("D", row), rec.Flow.Arrival)
		f.SetCellValue(sheetName, cellAddr("E", row), rec.Flow.EndTime())
		f.SetCellValue(sheetName, cellAddr("F", row), "rejected")
		f.SetCellValue(sheetName, cellAddr("H", row), string(rec.Reason))
		row++
	}

	f.SetColWidth(sheetName, "A", "H", 16) //nolint:errcheck // cosmetic column sizing
	return nil
}

func cellAddr(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
