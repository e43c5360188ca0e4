package resume

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spigell/jobfit/internal/ai"
)

const maxNameLength = 50

// minHeadingLetters is the shortest unknown ALL-CAPS line taken as a heading.
// Shorter lines such as MIT or IBM name an employer or a school.
const minHeadingLetters = 5

var (
	emailPattern    = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern    = regexp.MustCompile(`(\+\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
	linkedinPattern = regexp.MustCompile(`(?i)linkedin\.com/in/[\w-]+`)
	githubPattern   = regexp.MustCompile(`(?i)github\.com/[\w-]+`)

	headingPattern = regexp.MustCompile(`^[A-Z][A-Z &/]+:?$`)
)

var summaryHeadings = []string{"PROFESSIONAL SUMMARY", "SUMMARY", "PROFILE", "OBJECTIVE", "ABOUT ME"}

var knownHeadings = headingSet(
	summaryHeadings,
	ExperienceHeadings,
	EducationHeadings,
	[]string{"CV", "BIO", "SKILLS", "TECHNICAL SKILLS", "PROJECTS", "CERTIFICATIONS", "LANGUAGES", "AWARDS", "INTERESTS", "PUBLICATIONS", "REFERENCES", "CONTACT"},
)

func headingSet(groups ...[]string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, group := range groups {
		for _, h := range group {
			set[h] = struct{}{}
		}
	}
	return set
}

// Fields are the header-level attributes of a resume.
type Fields struct {
	Name    string
	Contact Contact
	Summary string
}

// ExtractFields pulls name, contact details and summary out of resume text.
// A PERSON entity wins over the first-line heuristic for the name. It never fails:
// anything that cannot be found stays empty.
func ExtractFields(text string, entities []ai.Entity) Fields {
	return Fields{
		Name:    extractName(text, entities),
		Contact: extractContact(text),
		Summary: extractSummary(text),
	}
}

func extractName(text string, entities []ai.Entity) string {
	if name := strings.TrimSpace(ai.FirstPerson(entities)); name != "" {
		return name
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) < maxNameLength {
			return line
		}
		return ""
	}

	return ""
}

func extractContact(text string) Contact {
	var c Contact

	if m := emailPattern.FindString(text); m != "" {
		c.Email = &m
	}
	if m := phonePattern.FindString(text); m != "" {
		m = strings.TrimSpace(m)
		c.Phone = &m
	}
	if m := linkedinPattern.FindString(text); m != "" {
		url := "https://" + m
		c.LinkedIn = &url
	}
	if m := githubPattern.FindString(text); m != "" {
		url := "https://" + m
		c.GitHub = &url
	}

	return c
}

// extractSummary returns the paragraph following a summary heading. Inline text after
// "Summary:" is kept. Lines are joined with a single space.
func extractSummary(text string) string {
	lines := strings.Split(text, "\n")

	for i, line := range lines {
		rest, ok := summaryHeading(line)
		if !ok {
			continue
		}

		var parts []string
		if rest != "" {
			parts = append(parts, rest)
		}

		for _, next := range lines[i+1:] {
			next = strings.TrimSpace(next)
			if next == "" {
				if len(parts) == 0 {
					continue
				}
				break
			}
			if isHeading(next) {
				break
			}
			parts = append(parts, next)
		}

		return strings.Join(parts, " ")
	}

	return ""
}

func summaryHeading(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	upper := strings.ToUpper(trimmed)

	for _, h := range summaryHeadings {
		if !strings.HasPrefix(upper, h) {
			continue
		}
		rest := strings.TrimSpace(trimmed[len(h):])
		if rest == "" {
			return "", true
		}
		if strings.HasPrefix(rest, ":") {
			return strings.TrimSpace(rest[1:]), true
		}
	}

	return "", false
}

// isHeading reports whether a trimmed line looks like an ALL-CAPS section heading.
func isHeading(line string) bool {
	if !headingPattern.MatchString(line) {
		return false
	}

	name := strings.TrimSpace(strings.TrimSuffix(line, ":"))
	if _, ok := knownHeadings[name]; ok {
		return true
	}

	letters := 0
	for _, r := range name {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters >= minHeadingLetters
}
