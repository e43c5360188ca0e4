// Package export writes ranked matches to spreadsheet reports.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spigell/jobfit/internal/matching"
	"github.com/spigell/jobfit/internal/resume"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	rankedSheet  = "Ranked Jobs"
	detailsSheet = "Details"
)

var rankedHeaders = []string{"Rank", "Best fit", "Title", "Company", "Location", "Match", "Skills", "Experience", "Matched skills", "Missing skills", "URL"}

// Report is the content of an exported workbook.
type Report struct {
	Resume      *resume.Resume
	Matches     []matching.JobMatch
	Improvement *matching.Improvement
	Generated   time.Time
}

// WriteFile saves the report to path, adding the .xlsx extension when missing.
func WriteFile(report Report, path string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	f, err := build(report)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return path, nil
}

// Write streams the report workbook to w.
func Write(report Report, w io.Writer) error {
	f, err := build(report)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func build(report Report) (*excelize.File, error) {
	if report.Resume == nil {
		return nil, fmt.Errorf("report requires a resume")
	}
	if report.Generated.IsZero() {
		report.Generated = time.Now()
	}

	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	for _, name := range []string{rankedSheet, detailsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	steps := []struct {
		name string
		fn   func(*excelize.File, int, Report) error
	}{
		{summarySheet, writeSummary},
		{rankedSheet, writeRanked},
		{detailsSheet, writeDetails},
	}
	for _, s := range steps {
		if err := s.fn(f, header, report); err != nil {
			return nil, fmt.Errorf("filling sheet %s: %w", s.name, err)
		}
	}

	return f, nil
}

func writeSummary(f *excelize.File, header int, report Report) error {
	r := report.Resume

	if err := f.SetColWidth(summarySheet, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "B", "B", 70); err != nil {
		return err
	}

	skills := make([]string, 0, len(r.Skills))
	for _, s := range r.Skills {
		skills = append(skills, s.Name)
	}

	rows := [][]any{
		{"Job match report", ""},
		{"Candidate", r.Name},
		{"Generated", report.Generated.Format("2006-01-02 15:04:05")},
		{"Experience (years)", r.TotalExperienceYears},
		{"Skills", strings.Join(skills, ", ")},
		{"Jobs ranked", len(report.Matches)},
	}

	if len(report.Matches) > 0 {
		var total float64
		for _, m := range report.Matches {
			total += m.MatchScore
		}
		rows = append(rows,
			[]any{"Best match", fmt.Sprintf("%.1f", report.Matches[0].MatchScore)},
			[]any{"Average match", fmt.Sprintf("%.1f", total/float64(len(report.Matches)))},
		)
	}

	if imp := report.Improvement; imp != nil {
		rows = append(rows,
			[]any{"", ""},
			[]any{"Skills to add", strings.Join(imp.MissingSkills, ", ")},
			[]any{"Potential improvement", fmt.Sprintf("%.2f", imp.ImprovementScore)},
		)
		for _, s := range imp.Suggestions() {
			rows = append(rows, []any{"Suggestion", s})
		}
	}

	for i, row := range rows {
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(summarySheet, cell, v); err != nil {
				return err
			}
		}
	}

	return f.SetCellStyle(summarySheet, "A1", "B1", header)
}

func writeRanked(f *excelize.File, header int, report Report) error {
	for i, h := range rankedHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(rankedSheet, cell, h); err != nil {
			return err
		}
	}

	last, err := excelize.CoordinatesToCellName(len(rankedHeaders), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(rankedSheet, "A1", last, header); err != nil {
		return err
	}
	if err := f.SetColWidth(rankedSheet, "C", "D", 30); err != nil {
		return err
	}
	if err := f.SetColWidth(rankedSheet, "I", "J", 40); err != nil {
		return err
	}

	for i, m := range report.Matches {
		bestFit := ""
		if m.BestFit {
			bestFit = "yes"
		}

		values := []any{
			i + 1,
			bestFit,
			m.Job.Title,
			m.Job.Company,
			m.Job.Location,
			m.MatchScore,
			m.SkillMatchScore,
			m.ExperienceMatchScore,
			strings.Join(m.MatchedSkills, ", "),
			strings.Join(m.MissingSkills, ", "),
			m.Job.URL,
		}

		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(rankedSheet, cell, v); err != nil {
				return err
			}
		}
	}

	return f.SetPanes(rankedSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeDetails(f *excelize.File, header int, report Report) error {
	headers := []string{"Rank", "Title", "Reasoning", "Suggestions"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(detailsSheet, cell, h); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(detailsSheet, "A1", "D1", header); err != nil {
		return err
	}
	if err := f.SetColWidth(detailsSheet, "C", "D", 80); err != nil {
		return err
	}

	wrap, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return err
	}

	for i, m := range report.Matches {
		row := i + 2
		values := []any{i + 1, m.Job.Title, m.Reasoning, strings.Join(m.Suggestions, "\n")}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(detailsSheet, cell, v); err != nil {
				return err
			}
		}
		if err := f.SetCellStyle(detailsSheet, fmt.Sprintf("A%d", row), fmt.Sprintf("D%d", row), wrap); err != nil {
			return err
		}
	}

	return nil
}
