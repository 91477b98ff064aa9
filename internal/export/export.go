// Package export renders student results as an XLSX workbook or JSON.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/pavelanni/radiance/internal/model"
)

// Workbook sheet names.
const (
	ReportsSheet   = "Reports"
	QuestionsSheet = "Questions"
)

const timeLayout = "2006-01-02 15:04:05"

var (
	reportHeaders = []any{
		"Student ID", "Name", "Email", "Track", "Attempts", "Average Score",
		"Latest Score", "Correct", "Total", "Weak Topics", "Strong Topics",
		"Completed At", "Time Spent (s)",
	}
	questionHeaders = []any{
		"Student ID", "Name", "Question #", "Subject", "Topic", "Prompt",
		"Selected", "Correct Option", "Result",
	}
)

// Build assembles the export document.
func Build(track model.Track, results []model.StudentResult, now time.Time) model.ReportExport {
	if results == nil {
		results = []model.StudentResult{}
	}
	return model.ReportExport{
		GeneratedAt: now.UTC(),
		Track:       track,
		Results:     results,
	}
}

// WriteJSON writes the export as indented JSON with a trailing newline.
func WriteJSON(w io.Writer, exp model.ReportExport) error {
	data, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// WriteXLSX writes the export as a workbook with one row per student on
// the Reports sheet and one row per answered question on the Questions
// sheet. Students without a report get a Reports row with blank scores.
func WriteXLSX(w io.Writer, exp model.ReportExport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ReportsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(QuestionsSheet); err != nil {
		return fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	if err := setRow(f, ReportsSheet, 1, reportHeaders); err != nil {
		return err
	}
	if err := setRow(f, QuestionsSheet, 1, questionHeaders); err != nil {
		return err
	}

	qRow := 2
	for i, r := range exp.Results {
		if err := setRow(f, ReportsSheet, i+2, reportRow(r)); err != nil {
			return err
		}
		if r.Latest == nil {
			continue
		}
		for n, q := range r.Latest.PerQuestionResults {
			if err := setRow(f, QuestionsSheet, qRow, questionRow(r, n+1, q)); err != nil {
				return err
			}
			qRow++
		}
	}

	idx, err := f.GetSheetIndex(ReportsSheet)
	if err != nil {
		return fmt.Errorf("find sheet: %w", err)
	}
	f.SetActiveSheet(idx)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func reportRow(r model.StudentResult) []any {
	row := []any{r.UserID, r.Name, r.Email, string(r.Track), r.Attempts, r.AverageScore}
	if r.Latest == nil {
		return append(row, "", "", "", "", "", "", "")
	}
	l := r.Latest
	return append(row,
		l.ScorePercent,
		l.CorrectAnswers,
		l.TotalQuestions,
		strings.Join(l.WeakTopics, ", "),
		strings.Join(l.StrongTopics, ", "),
		l.CompletedAt.UTC().Format(timeLayout),
		l.TimeSpentSeconds,
	)
}

func questionRow(r model.StudentResult, n int, q model.QuestionResult) []any {
	result := "Incorrect"
	switch {
	case q.IsCorrect:
		result = "Correct"
	case q.SelectedOption == "":
		result = "Unanswered"
	}
	return []any{r.UserID, r.Name, n, q.Subject, q.Topic, q.Prompt, q.SelectedOption, q.CorrectOption, result}
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
