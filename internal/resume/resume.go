package resume

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels used in date ranges for ongoing positions.
const (
	Present = "Present"
	Current = "Current"
)

// Resume is the structured profile extracted from resume text.
type Resume struct {
	ID                   string       `json:"id"`
	Name                 string       `json:"name"`
	Contact              Contact      `json:"contact"`
	Summary              string       `json:"summary,omitempty"`
	Skills               []Skill      `json:"skills"`
	Experience           []Experience `json:"experience"`
	Education            []Education  `json:"education"`
	TotalExperienceYears float64      `json:"total_experience_years"`
}

// Contact holds optional contact details. Absent values are nil.
type Contact struct {
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	LinkedIn *string `json:"linkedin,omitempty"`
	GitHub   *string `json:"github,omitempty"`
}

// Skill is a normalized skill mention.
type Skill struct {
	Name       string   `json:"name"`
	Category   string   `json:"category,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Experience is a single work history entry.
type Experience struct {
	Company        string `json:"company"`
	Title          string `json:"title"`
	StartDate      string `json:"start_date,omitempty"`
	EndDate        string `json:"end_date,omitempty"`
	Description    string `json:"description,omitempty"`
	DurationMonths *int   `json:"duration_months,omitempty"`
}

// Education is a single education entry.
type Education struct {
	Institution  string `json:"institution"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"field_of_study,omitempty"`
	StartDate    string `json:"start_date,omitempty"`
	EndDate      string `json:"end_date,omitempty"`
}

// Validate checks the invariants every resume must hold.
func (r *Resume) Validate() error {
	if r == nil {
		return errors.New("resume is required")
	}

	if r.TotalExperienceYears < 0 {
		return fmt.Errorf("total experience years must not be negative, got %v", r.TotalExperienceYears)
	}

	seen := make(map[string]struct{}, len(r.Skills))
	for _, s := range r.Skills {
		key := strings.ToLower(strings.TrimSpace(s.Name))
		if key == "" {
			return errors.New("skill name must not be empty")
		}
		if _, ok := seen[key]; ok {
			return fmt.Errorf("duplicate skill %q", s.Name)
		}
		seen[key] = struct{}{}

		if s.Confidence != nil && (*s.Confidence < 0 || *s.Confidence > 1) {
			return fmt.Errorf("skill %q confidence %v is out of [0, 1]", s.Name, *s.Confidence)
		}
	}

	for i, exp := range r.Experience {
		if exp.DurationMonths != nil && *exp.DurationMonths < 0 {
			return fmt.Errorf("experience #%d has negative duration", i)
		}
	}

	return nil
}

// SkillNames returns lower-cased skill names in resume order.
func (r *Resume) SkillNames() []string {
	names := make([]string, 0, len(r.Skills))
	for _, s := range r.Skills {
		names = append(names, strings.ToLower(s.Name))
	}
	return names
}

// HasSkill reports whether the resume lists the skill, ignoring case.
func (r *Resume) HasSkill(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range r.Skills {
		if strings.ToLower(s.Name) == name {
			return true
		}
	}
	return false
}

// Text flattens the profile into a single document for embedding.
func (r *Resume) Text() string {
	parts := make([]string, 0, 4+len(r.Experience)+len(r.Education))

	if r.Name != "" {
		parts = append(parts, r.Name)
	}
	if r.Summary != "" {
		parts = append(parts, r.Summary)
	}
	if len(r.Skills) > 0 {
		names := make([]string, 0, len(r.Skills))
		for _, s := range r.Skills {
			names = append(names, s.Name)
		}
		parts = append(parts, "Skills: "+strings.Join(names, ", "))
	}
	for _, exp := range r.Experience {
		line := fmt.Sprintf("%s at %s", exp.Title, exp.Company)
		if exp.Description != "" {
			line += "\n" + exp.Description
		}
		parts = append(parts, line)
	}
	for _, edu := range r.Education {
		parts = append(parts, fmt.Sprintf("%s at %s", edu.Degree, edu.Institution))
	}

	return strings.Join(parts, "\n\n")
}
