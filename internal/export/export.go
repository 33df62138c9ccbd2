// Package export writes stored results to an Excel workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/abhisek/lexiscreen/internal/record"
)

// Sheet names. The summary uses the workbook's default sheet.
const (
	SheetResults   = "Sheet1"
	SheetQuestions = "Questions"
)

// ResultHeader is the header row of the results sheet.
var ResultHeader = []any{
	"ID", "Test", "Title", "Age Band", "Taken At",
	"Accuracy %", "Partial Accuracy %", "Average Time (s)", "Time Score %",
	"Risk Level", "Correct", "Total", "Risk Factors",
}

// QuestionHeader is the header row of the questions sheet.
var QuestionHeader = []any{
	"Result ID", "Test", "Question", "Kind", "Difficulty",
	"Correct", "Partial Score", "Max Score", "Time (s)",
}

// Workbook builds a workbook with one summary row per record and one row
// per answered question. The caller must close the returned file.
func Workbook(recs []*record.Record) (*excelize.File, error) {
	f := excelize.NewFile()

	if _, err := f.NewSheet(SheetQuestions); err != nil {
		f.Close()
		return nil, fmt.Errorf("create questions sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetResults, "A1", &ResultHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write results header: %w", err)
	}
	if err := f.SetSheetRow(SheetQuestions, "A1", &QuestionHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write questions header: %w", err)
	}

	qRow := 2
	for i, r := range recs {
		row := []any{
			r.ID, r.Test, r.Title, r.AgeBand, r.TakenAt.UTC().Format(time.RFC3339),
			r.AccuracyPercent, r.PartialAccuracyPercent, r.AverageTimeSeconds, r.TimeScorePercent,
			r.RiskLevel.String(), r.CorrectAnswers, r.TotalQuestions, joinFactors(r.RiskFactors),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetSheetRow(SheetResults, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("write result %s: %w", r.ID, err)
		}

		for _, qr := range r.QuestionResults {
			qrow := []any{
				r.ID, r.Test, qr.QuestionIndex + 1, string(qr.Kind), string(qr.Difficulty),
				qr.IsCorrect, qr.PartialScore, qr.MaxScore, qr.TimeSpentSeconds,
			}
			cell, err := excelize.CoordinatesToCellName(1, qRow)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetSheetRow(SheetQuestions, cell, &qrow); err != nil {
				f.Close()
				return nil, fmt.Errorf("write question row: %w", err)
			}
			qRow++
		}
	}
	return f, nil
}

// Write encodes the workbook for recs as .xlsx to w.
func Write(w io.Writer, recs []*record.Record) error {
	f, err := Workbook(recs)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteFile saves the workbook for recs at path.
func WriteFile(path string, recs []*record.Record) error {
	f, err := Workbook(recs)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func joinFactors(factors []string) string {
	out := ""
	for i, f := range factors {
		if i > 0 {
			out += "; "
		}
		out += f
	}
	return out
}
