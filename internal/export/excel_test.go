package export

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/spigell/jobfit/internal/jobs"
	"github.com/spigell/jobfit/internal/matching"
	"github.com/spigell/jobfit/internal/resume"
	"github.com/xuri/excelize/v2"
)

func sampleReport() Report {
	return Report{
		Resume: &resume.Resume{
			ID:                   "r1",
			Name:                 "Jane Doe",
			Skills:               []resume.Skill{{Name: "Go"}, {Name: "SQL"}},
			TotalExperienceYears: 4,
		},
		Matches: []matching.JobMatch{
			{
				Job:           jobs.Listing{ID: "j1", Title: "Go Developer", Company: "Acme", URL: "https://example.com/j1"},
				MatchScore:    91.5,
				MatchedSkills: []string{"go", "sql"},
				MissingSkills: []string{},
				Reasoning:     "You have a strong match.",
				BestFit:       true,
			},
			{
				Job:           jobs.Listing{ID: "j2", Title: "Rust Developer", Company: "Beta"},
				MatchScore:    40,
				MissingSkills: []string{"rust"},
				Reasoning:     "You have a moderate match.",
				Suggestions:   []string{"Consider adding experience with: rust"},
			},
		},
		Improvement: &matching.Improvement{MissingSkills: []string{"docker"}, ImprovementScore: 12.5},
		Generated:   time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestWriteFile(t *testing.T) {
	t.Parallel()

	path, err := WriteFile(sampleReport(), filepath.Join(t.TempDir(), "report"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Ext(path) != ".xlsx" {
		t.Fatalf("expected .xlsx extension, got %s", path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	want := []string{summarySheet, rankedSheet, detailsSheet}
	got := f.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("expected sheets %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected sheets %v, got %v", want, got)
		}
	}

	checks := []struct {
		sheet, cell, want string
	}{
		{summarySheet, "B2", "Jane Doe"},
		{summarySheet, "B5", "Go, SQL"},
		{rankedSheet, "C2", "Go Developer"},
		{rankedSheet, "B2", "yes"},
		{rankedSheet, "J3", "rust"},
		{detailsSheet, "D3", "Consider adding experience with: rust"},
	}
	for _, c := range checks {
		v, err := f.GetCellValue(c.sheet, c.cell)
		if err != nil {
			t.Fatalf("reading %s!%s: %v", c.sheet, c.cell, err)
		}
		if v != c.want {
			t.Fatalf("%s!%s: expected %q, got %q", c.sheet, c.cell, c.want, v)
		}
	}
}

func TestWrite(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Write(sampleReport(), &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("expected workbook bytes")
	}

	if err := Write(Report{}, &buf); err == nil {
		t.Fatal("expected an error for a report without resume")
	}
}
