package matching

import (
	"fmt"
	"strings"

	"github.com/spigell/jobfit/internal/jobs"
)

const (
	reasonTopMatched = 5
	reasonTopMissing = 3
)

var levelRank = map[string]int{jobs.LevelEntry: 0, jobs.LevelMid: 1, jobs.LevelSenior: 2}

// Strength labels a match score: strong from 80, good from 60, moderate from 40.
func Strength(score float64) string {
	switch {
	case score >= 80:
		return "strong"
	case score >= 60:
		return "good"
	case score >= 40:
		return "moderate"
	default:
		return "limited"
	}
}

// Reasoning explains a match in plain text.
func Reasoning(m *JobMatch, resumeYears float64) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You have a %s match (%.1f%%) with this %s position at %s. ",
		Strength(m.MatchScore), m.MatchScore, m.Job.Title, m.Job.Company)

	if n := len(m.MatchedSkills); n > 0 {
		b.WriteString("Your skills in ")
		b.WriteString(strings.Join(head(m.MatchedSkills, reasonTopMatched), ", "))
		if n > reasonTopMatched {
			fmt.Fprintf(&b, " and %d more", n-reasonTopMatched)
		}
		b.WriteString(" align well with the job requirements. ")
	}

	if n := len(m.MissingSkills); n > 0 {
		b.WriteString("To improve your match, consider developing skills in ")
		b.WriteString(strings.Join(head(m.MissingSkills, reasonTopMissing), ", "))
		if n > reasonTopMissing {
			fmt.Fprintf(&b, " and %d more areas", n-reasonTopMissing)
		}
		b.WriteString(". ")
	}

	b.WriteString(experienceSentence(m.Job.Level(), jobs.LevelForYears(resumeYears)))

	return strings.TrimSpace(b.String())
}

func experienceSentence(jobLevel, resumeLevel string) string {
	label := strings.ToLower(jobLevel) + "-level"

	switch {
	case levelRank[resumeLevel] < levelRank[jobLevel]:
		return fmt.Sprintf("This %s position may require more experience than your profile indicates.", label)
	case levelRank[resumeLevel] > levelRank[jobLevel]:
		return fmt.Sprintf("Your experience exceeds what this %s position asks for.", label)
	default:
		return fmt.Sprintf("Your experience level is well-suited for this %s position.", label)
	}
}

func head(list []string, n int) []string {
	if len(list) <= n {
		return list
	}
	return list[:n]
}
