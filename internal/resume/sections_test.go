package resume

import (
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
}

func TestExtractSection(t *testing.T) {
	t.Parallel()

	section := ExtractSection(sampleResume, ExperienceHeadings)
	if section == "" {
		t.Fatalf("expected experience section")
	}
	if section[:len("Acme Corp")] != "Acme Corp" {
		t.Fatalf("unexpected section start: %q", section)
	}

	education := ExtractSection(sampleResume, EducationHeadings)
	if education != "State University\nBachelor of Science in Computer Science\n2011 - 2015" {
		t.Fatalf("unexpected education section: %q", education)
	}

	if got := ExtractSection("no headings at all", ExperienceHeadings); got != "" {
		t.Fatalf("expected empty section, got %q", got)
	}
}

func TestExtractSectionAliases(t *testing.T) {
	t.Parallel()

	text := "Employment History:\nInitech - Analyst\nREFERENCES\nupon request"
	if got := ExtractSection(text, ExperienceHeadings); got != "Initech - Analyst" {
		t.Fatalf("unexpected section: %q", got)
	}
}

func TestExtractSectionKeepsAcronymEntries(t *testing.T) {
	t.Parallel()

	text := "EXPERIENCE\nIBM\nJan 2015 - Dec 2018\n• Mainframe tooling\n\nEDUCATION\nMIT\nBachelor of Science in Physics\n2011 - 2015\nSKILLS\nGo"

	p := NewSectionParser(fixedClock)

	experience := p.ParseExperience(ExtractSection(text, ExperienceHeadings))
	if len(experience) != 1 || experience[0].Company != "IBM" || experience[0].StartDate != "Jan 2015" {
		t.Fatalf("unexpected experience: %+v", experience)
	}

	education := ExtractSection(text, EducationHeadings)
	if education != "MIT\nBachelor of Science in Physics\n2011 - 2015" {
		t.Fatalf("unexpected education section: %q", education)
	}

	entries := p.ParseEducation(education)
	if len(entries) != 1 || entries[0].Institution != "MIT" || entries[0].FieldOfStudy != "Physics" {
		t.Fatalf("unexpected education: %+v", entries)
	}
}

func TestIsHeading(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want bool
	}{
		{"EXPERIENCE", true},
		{"SKILLS:", true},
		{"CV", true},
		{"WORK HISTORY", true},
		{"MIT", false},
		{"IBM", false},
		{"Acme Corp", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isHeading(tt.line); got != tt.want {
			t.Errorf("isHeading(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestParseExperience(t *testing.T) {
	t.Parallel()

	p := NewSectionParser(fixedClock)
	entries := p.ParseExperience(ExtractSection(sampleResume, ExperienceHeadings))

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
	}

	first := entries[0]
	if first.Company != "Acme Corp" || first.Title != "Senior Engineer" {
		t.Fatalf("unexpected first entry: %+v", first)
	}
	if first.StartDate != "Jan 2019" || first.EndDate != Present {
		t.Fatalf("unexpected dates: %q - %q", first.StartDate, first.EndDate)
	}
	if first.DurationMonths == nil || *first.DurationMonths != 60 {
		t.Fatalf("expected 60 months, got %v", first.DurationMonths)
	}
	if first.Description != "Built billing services in Go\nMigrated workloads to Kubernetes" {
		t.Fatalf("unexpected description: %q", first.Description)
	}

	second := entries[1]
	if second.Company != "Globex" || second.Title != "Developer" {
		t.Fatalf("unexpected second entry: %+v", second)
	}
	if second.DurationMonths == nil || *second.DurationMonths != 36 {
		t.Fatalf("expected 36 months, got %v", second.DurationMonths)
	}
}

func TestParseExperienceEdgeCases(t *testing.T) {
	t.Parallel()

	p := NewSectionParser(fixedClock)

	tests := []struct {
		name    string
		section string
		check   func(t *testing.T, entries []Experience)
	}{
		{
			name:    "empty section",
			section: "",
			check: func(t *testing.T, entries []Experience) {
				if len(entries) != 0 {
					t.Fatalf("expected no entries, got %+v", entries)
				}
			},
		},
		{
			name:    "bullets before any header are ignored",
			section: "• orphan bullet\nInitech\n• real bullet",
			check: func(t *testing.T, entries []Experience) {
				if len(entries) != 1 || entries[0].Description != "real bullet" {
					t.Fatalf("unexpected entries: %+v", entries)
				}
				if entries[0].Company != "Initech" || entries[0].Title != "" {
					t.Fatalf("unexpected header split: %+v", entries[0])
				}
			},
		},
		{
			name:    "missing dates leave nil duration",
			section: "Initech - Analyst\n• reports",
			check: func(t *testing.T, entries []Experience) {
				if entries[0].DurationMonths != nil {
					t.Fatalf("expected nil duration, got %v", *entries[0].DurationMonths)
				}
			},
		},
		{
			name:    "dates on header line",
			section: "Hooli - SRE (Feb 2020 – Current)",
			check: func(t *testing.T, entries []Experience) {
				e := entries[0]
				if e.Company != "Hooli" || e.Title != "SRE" {
					t.Fatalf("unexpected header split: %+v", e)
				}
				if e.EndDate != Current || e.DurationMonths == nil || *e.DurationMonths != 48 {
					t.Fatalf("unexpected dates: %+v", e)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tt.check(t, p.ParseExperience(tt.section))
		})
	}
}

func TestParseEducation(t *testing.T) {
	t.Parallel()

	p := NewSectionParser(fixedClock)
	entries := p.ParseEducation(ExtractSection(sampleResume, EducationHeadings))

	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %+v", entries)
	}

	e := entries[0]
	if e.Institution != "State University" {
		t.Fatalf("unexpected institution: %q", e.Institution)
	}
	if e.Degree != "Bachelor of Science in Computer Science" || e.FieldOfStudy != "Computer Science" {
		t.Fatalf("unexpected degree: %+v", e)
	}
	if e.StartDate != "2011" || e.EndDate != "2015" {
		t.Fatalf("unexpected dates: %+v", e)
	}
}

func TestParseEducationInlineHeader(t *testing.T) {
	t.Parallel()

	p := NewSectionParser(fixedClock)
	entries := p.ParseEducation("MIT - MBA 2016 - 2018\nStanford - PhD in Physics 2018 - Present")

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", entries)
	}
	if entries[0].Institution != "MIT" || entries[0].Degree != "MBA" || entries[0].EndDate != "2018" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].FieldOfStudy != "Physics" || entries[1].EndDate != Present {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}

func TestTotalYears(t *testing.T) {
	t.Parallel()

	sixty, twelve := 60, 12
	entries := []Experience{{DurationMonths: &sixty}, {DurationMonths: &twelve}, {}}
	if got := TotalYears(entries, ""); got != 6 {
		t.Fatalf("expected 6 years, got %v", got)
	}

	if got := TotalYears(nil, "Worked 2012 through 2020"); got != 8 {
		t.Fatalf("expected year span fallback of 8, got %v", got)
	}

	if got := TotalYears(nil, "Graduated 2020, certified 2021"); got != 0 {
		t.Fatalf("expected spans shorter than two years to be ignored, got %v", got)
	}
}
