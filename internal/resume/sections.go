package resume

import (
	"regexp"
	"strings"
	"time"
)

// Section heading aliases.
var (
	ExperienceHeadings = []string{"EXPERIENCE", "WORK EXPERIENCE", "EMPLOYMENT HISTORY", "PROFESSIONAL EXPERIENCE"}
	EducationHeadings  = []string{"EDUCATION", "ACADEMIC BACKGROUND", "EDUCATIONAL BACKGROUND"}
)

const month = `(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)[a-z]*\.?`

var (
	entryHeaderPattern    = regexp.MustCompile(`^[A-Z][a-zA-Z\s]+`)
	experienceDatePattern = regexp.MustCompile(`(?i)\b(` + month + `\s+\d{4})\s*(?:-|–|—|to)\s*(` + month + `\s+\d{4}|Present|Current)\b`)
	educationDatePattern  = regexp.MustCompile(`(?i)\b((?:19|20)\d{2})\s*(?:-|–|—)\s*((?:19|20)\d{2}|Present|Current)\b`)
	degreePattern         = regexp.MustCompile(`(?:\b(?:Bachelor|Master|PhD|MBA|MD|JD)\b|\bPh\.D\.|\b[BM]\.[SA]\.)`)
	fieldOfStudyPattern   = regexp.MustCompile(`(?i)\bin\s+([A-Za-z][A-Za-z &,/-]+)$`)
	anyYearPattern        = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
)

var bulletPrefixes = []string{"•", "●", "▪", "◦", "* ", "- "}

// entryState is the state of the line scanner while walking a section.
type entryState int

const (
	stateNoEntry entryState = iota
	stateInEntry
)

// lineKind classifies a single trimmed line of a section.
type lineKind int

const (
	lineBlank lineKind = iota
	lineBullet
	lineDate
	lineDegree
	lineHeader
	lineOther
)

// SectionParser splits resume sections into structured entries.
type SectionParser struct {
	now func() time.Time
}

// NewSectionParser returns a parser that resolves Present/Current against now.
func NewSectionParser(now func() time.Time) *SectionParser {
	if now == nil {
		now = time.Now
	}
	return &SectionParser{now: now}
}

// ExtractSection returns the body following the first heading that matches one of the
// aliases, up to the next ALL-CAPS heading or the end of text. Aliases are tried in order.
func ExtractSection(text string, aliases []string) string {
	lines := strings.Split(text, "\n")

	for _, alias := range aliases {
		for i, line := range lines {
			heading := strings.TrimSuffix(strings.TrimSpace(line), ":")
			if !strings.EqualFold(strings.TrimSpace(heading), alias) {
				continue
			}

			var body []string
			for _, next := range lines[i+1:] {
				if isHeading(strings.TrimSpace(next)) {
					break
				}
				body = append(body, next)
			}

			return strings.TrimSpace(strings.Join(body, "\n"))
		}
	}

	return ""
}

// ParseExperience walks an experience section and returns its entries.
//
// Transitions:
//   - header line: flush the open entry (if any) and open a new one (NoEntry|InEntry -> InEntry)
//   - date line: set dates on the open entry; ignored in NoEntry
//   - bullet line: append to the open entry description; ignored in NoEntry
//   - blank and other lines: no transition
//
// The open entry is flushed at the end of the section.
func (p *SectionParser) ParseExperience(section string) []Experience {
	var (
		entries []Experience
		current Experience
		state   = stateNoEntry
	)

	flush := func() {
		if state == stateInEntry {
			current.DurationMonths = p.durationMonths(current.StartDate, current.EndDate)
			entries = append(entries, current)
		}
	}

	for _, raw := range strings.Split(section, "\n") {
		line := strings.TrimSpace(raw)

		switch classify(line, experienceDatePattern, false) {
		case lineHeader:
			flush()
			current = newExperience(line)
			state = stateInEntry
		case lineDate:
			if state == stateInEntry {
				current.StartDate, current.EndDate = dateRange(experienceDatePattern, line)
			}
		case lineBullet:
			if state == stateInEntry {
				current.Description = appendLine(current.Description, stripBullet(line))
			}
		}
	}
	flush()

	return entries
}

// ParseEducation walks an education section with the same state machine as
// ParseExperience. Degree lines fill the degree of the open entry instead of
// starting a new one.
func (p *SectionParser) ParseEducation(section string) []Education {
	var (
		entries []Education
		current Education
		state   = stateNoEntry
	)

	flush := func() {
		if state == stateInEntry {
			entries = append(entries, current)
		}
	}

	for _, raw := range strings.Split(section, "\n") {
		line := strings.TrimSpace(raw)

		kind := classify(line, educationDatePattern, true)
		if kind == lineDegree && (state == stateNoEntry || current.Degree != "") {
			kind = lineHeader
		}

		switch kind {
		case lineHeader:
			flush()
			current = newEducation(line)
			state = stateInEntry
		case lineDegree:
			current.Degree, current.FieldOfStudy = splitDegree(withoutDates(educationDatePattern, line))
			if start, end := dateRange(educationDatePattern, line); start != "" {
				current.StartDate, current.EndDate = start, end
			}
		case lineDate:
			if state == stateInEntry {
				current.StartDate, current.EndDate = dateRange(educationDatePattern, line)
			}
		}
	}
	flush()

	return entries
}

// TotalYears sums entry durations. When no entry has a duration it falls back to the
// span between the earliest and latest years mentioned in text, counted only when
// the span is at least two years.
func TotalYears(entries []Experience, text string) float64 {
	months := 0
	known := false
	for _, e := range entries {
		if e.DurationMonths != nil {
			months += *e.DurationMonths
			known = true
		}
	}
	if known {
		return float64(months) / 12
	}

	years := anyYearPattern.FindAllString(text, -1)
	if len(years) < 2 {
		return 0
	}

	lo, hi := 9999, 0
	for _, y := range years {
		v := atoi(y)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if span := hi - lo; span >= 2 {
		return float64(span)
	}

	return 0
}

func classify(line string, datePattern *regexp.Regexp, education bool) lineKind {
	if line == "" {
		return lineBlank
	}
	if isBullet(line) {
		return lineBullet
	}
	if datePattern.MatchString(line) && !hasText(withoutDates(datePattern, line)) {
		return lineDate
	}
	if education && degreePattern.MatchString(line) {
		return lineDegree
	}
	if entryHeaderPattern.MatchString(line) {
		return lineHeader
	}
	return lineOther
}

func newExperience(line string) Experience {
	var e Experience
	e.StartDate, e.EndDate = dateRange(experienceDatePattern, line)

	company, title := splitHeader(withoutDates(experienceDatePattern, line))
	e.Company = company
	e.Title = title

	return e
}

func newEducation(line string) Education {
	var e Education
	e.StartDate, e.EndDate = dateRange(educationDatePattern, line)

	institution, degree := splitHeader(withoutDates(educationDatePattern, line))
	e.Institution = institution
	if degree != "" {
		e.Degree, e.FieldOfStudy = splitDegree(degree)
	}

	return e
}

// splitHeader splits "Company - Title" into its parts. Without a separator the whole
// line is the primary field.
func splitHeader(line string) (string, string) {
	parts := strings.SplitN(line, " - ", 2)
	primary := strings.Trim(strings.TrimSpace(parts[0]), ",|()")
	if len(parts) == 1 {
		return primary, ""
	}
	return primary, strings.Trim(strings.TrimSpace(parts[1]), ",|-–() ")
}

func splitDegree(line string) (string, string) {
	degree := strings.Trim(strings.TrimSpace(line), ",|-– ")
	m := fieldOfStudyPattern.FindStringSubmatch(degree)
	if m == nil {
		return degree, ""
	}
	return degree, strings.TrimSpace(m[1])
}

func dateRange(pattern *regexp.Regexp, line string) (string, string) {
	m := pattern.FindStringSubmatch(line)
	if m == nil {
		return "", ""
	}
	return strings.TrimSpace(m[1]), normalizeSentinel(strings.TrimSpace(m[2]))
}

func withoutDates(pattern *regexp.Regexp, line string) string {
	return strings.TrimSpace(pattern.ReplaceAllString(line, ""))
}

func normalizeSentinel(s string) string {
	switch {
	case strings.EqualFold(s, Present):
		return Present
	case strings.EqualFold(s, Current):
		return Current
	default:
		return s
	}
}

// durationMonths is (end year - start year) * 12. Present and Current resolve to the
// current year. Nil when either year cannot be read.
func (p *SectionParser) durationMonths(start, end string) *int {
	startYear, ok := yearOf(start)
	if !ok {
		return nil
	}

	var endYear int
	if end == Present || end == Current {
		endYear = p.now().Year()
	} else if endYear, ok = yearOf(end); !ok {
		return nil
	}

	months := (endYear - startYear) * 12
	if months < 0 {
		return nil
	}
	return &months
}

func yearOf(s string) (int, bool) {
	m := anyYearPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	return atoi(m), true
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

func isBullet(line string) bool {
	for _, prefix := range bulletPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

func stripBullet(line string) string {
	for _, prefix := range bulletPrefixes {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	return line
}

func hasText(s string) bool {
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return false
}

func appendLine(text, line string) string {
	if line == "" {
		return text
	}
	if text == "" {
		return line
	}
	return text + "\n" + line
}
