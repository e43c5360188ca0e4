package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Field names accepted by Listings.Exclude.
const (
	ListingIDField      = "ID"
	ListingCompanyField = "Company"
)

// Experience levels of a listing.
const (
	LevelEntry  = "Entry"
	LevelMid    = "Mid"
	LevelSenior = "Senior"
)

// Listing is a job posting.
type Listing struct {
	ID                 string   `json:"id" mapstructure:"id"`
	Title              string   `json:"title" mapstructure:"title"`
	Company            string   `json:"company" mapstructure:"company"`
	Location           string   `json:"location,omitempty" mapstructure:"location"`
	Description        string   `json:"description,omitempty" mapstructure:"description"`
	RequiredSkills     []string `json:"required_skills" mapstructure:"required_skills"`
	PreferredSkills    []string `json:"preferred_skills" mapstructure:"preferred_skills"`
	ExperienceRequired int      `json:"experience_required" mapstructure:"experience_required"`
	ExperienceLevel    string   `json:"experience_level,omitempty" mapstructure:"experience_level"`
	Remote             bool     `json:"remote,omitempty" mapstructure:"remote"`
	URL                string   `json:"url,omitempty" mapstructure:"url"`
	Source             string   `json:"source,omitempty" mapstructure:"source"`
	SalaryMin          *int     `json:"salary_min,omitempty" mapstructure:"salary_min"`
	SalaryMax          *int     `json:"salary_max,omitempty" mapstructure:"salary_max"`
}

// Listings is an ordered collection of job postings.
type Listings struct {
	Items []*Listing
}

// Validate checks listing invariants.
func (l *Listing) Validate() error {
	if l == nil {
		return errors.New("listing is required")
	}
	if strings.TrimSpace(l.ID) == "" {
		return errors.New("listing id is required")
	}
	if strings.TrimSpace(l.Title) == "" {
		return fmt.Errorf("listing %s: title is required", l.ID)
	}
	if l.ExperienceRequired < 0 {
		return fmt.Errorf("listing %s: experience_required must not be negative, got %d", l.ID, l.ExperienceRequired)
	}
	if l.SalaryMin != nil && l.SalaryMax != nil && *l.SalaryMin > *l.SalaryMax {
		return fmt.Errorf("listing %s: salary_min is greater than salary_max", l.ID)
	}
	return nil
}

// Normalize lower-cases and trims skill names, dropping empty and duplicate entries.
func (l *Listing) Normalize() {
	l.RequiredSkills = normalizeSkills(l.RequiredSkills)
	l.PreferredSkills = normalizeSkills(l.PreferredSkills)
}

// Skills returns required and preferred skills without duplicates.
func (l *Listing) Skills() []string {
	return normalizeSkills(append(append([]string{}, l.RequiredSkills...), l.PreferredSkills...))
}

// Level returns the stated experience level or derives one from the required years.
func (l *Listing) Level() string {
	switch strings.ToLower(strings.TrimSpace(l.ExperienceLevel)) {
	case "entry", "junior":
		return LevelEntry
	case "mid", "middle":
		return LevelMid
	case "senior", "lead":
		return LevelSenior
	}
	return LevelForYears(float64(l.ExperienceRequired))
}

// Text flattens the listing into a single document for embedding.
func (l *Listing) Text() string {
	return fmt.Sprintf("Title: %s\nCompany: %s\nDescription: %s", l.Title, l.Company, l.Description)
}

// LevelForYears maps years of experience to a level: up to 2 is Entry, 5 and more is Senior.
func LevelForYears(years float64) string {
	switch {
	case years <= 2:
		return LevelEntry
	case years < 5:
		return LevelMid
	default:
		return LevelSenior
	}
}

func (l *Listing) field(name string) string {
	switch name {
	case ListingIDField:
		return l.ID
	case ListingCompanyField:
		return l.Company
	default:
		return ""
	}
}

// Len returns the number of listings.
func (v *Listings) Len() int {
	if v == nil {
		return 0
	}
	return len(v.Items)
}

// FindByID returns the listing with id or nil.
func (v *Listings) FindByID(id string) *Listing {
	for _, l := range v.Items {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// Exclude removes listings whose field equals one of values (case-insensitive)
// and returns the removed ones.
func (v *Listings) Exclude(field string, values []string) []*Listing {
	if len(values) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		set[strings.ToLower(strings.TrimSpace(value))] = struct{}{}
	}

	kept := v.Items[:0]
	var removed []*Listing
	for _, l := range v.Items {
		if _, ok := set[strings.ToLower(l.field(field))]; ok {
			removed = append(removed, l)
			continue
		}
		kept = append(kept, l)
	}
	v.Items = kept

	return removed
}

// Keep retains only listings for which keep returns true and returns the removed ones.
func (v *Listings) Keep(keep func(*Listing) bool) []*Listing {
	kept := v.Items[:0]
	var removed []*Listing
	for _, l := range v.Items {
		if keep(l) {
			kept = append(kept, l)
			continue
		}
		removed = append(removed, l)
	}
	v.Items = kept

	return removed
}

// Values returns a copy of the listings as values.
func (v *Listings) Values() []Listing {
	out := make([]Listing, 0, v.Len())
	for _, l := range v.Items {
		out = append(out, *l)
	}
	return out
}

// DumpToTmpFile writes the listings as JSON into a temporary file and returns its name.
func (v *Listings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "jobs_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v.Items); err != nil {
		return "", err
	}
	return file.Name(), nil
}

func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
