package matching

import (
	"math"
	"strings"

	"github.com/spigell/jobfit/internal/jobs"
	"github.com/spigell/jobfit/internal/resume"
)

// Mode names the formula a match was scored with.
type Mode string

const (
	// ModeSkills weighs skill overlap and experience (60/40).
	ModeSkills Mode = "skills"
	// ModeSemantic weighs embedding similarity and skill overlap (70/30).
	ModeSemantic Mode = "semantic"
)

const (
	requiredWeight   = 0.7
	preferredWeight  = 0.3
	skillWeight      = 0.6
	experienceWeight = 0.4

	noRequiredRate  = 1.0
	noPreferredRate = 0.5
)

// JobMatch is the explainable result of scoring one job against a resume.
type JobMatch struct {
	Job                  jobs.Listing `json:"job"`
	MatchScore           float64      `json:"match_score"`
	SkillMatchScore      float64      `json:"skill_match_score"`
	ExperienceMatchScore float64      `json:"experience_match_score"`
	MatchedSkills        []string     `json:"matched_skills"`
	MissingSkills        []string     `json:"missing_skills"`
	Reasoning            string       `json:"reasoning"`
	BestFit              bool         `json:"best_fit"`
	Mode                 Mode         `json:"mode"`
	SemanticSimilarity   *float64     `json:"semantic_similarity,omitempty"`
	Suggestions          []string     `json:"suggestions,omitempty"`
}

// SkillBreakdown is the lexical part of a skills-mode score.
type SkillBreakdown struct {
	RequiredRate  float64
	PreferredRate float64
	Score         float64
	Matched       []string
	Missing       []string
}

// SkillScore compares resume skills with the required and preferred skills of a job.
// All names are compared lower-cased. A job without required skills has required rate
// 1.0 and without preferred skills preferred rate 0.5. Matched skills keep job order
// (required first); missing skills are the required skills absent from the resume.
func SkillScore(resumeSkills, required, preferred []string) SkillBreakdown {
	have := toSet(resumeSkills)
	required = normalize(required)
	preferred = normalize(preferred)

	var b SkillBreakdown
	matched := make(map[string]struct{})

	b.RequiredRate = noRequiredRate
	if len(required) > 0 {
		hits := 0
		for _, s := range required {
			if _, ok := have[s]; ok {
				hits++
				b.Matched = appendUnique(b.Matched, matched, s)
				continue
			}
			b.Missing = append(b.Missing, s)
		}
		b.RequiredRate = float64(hits) / float64(len(required))
	}

	b.PreferredRate = noPreferredRate
	if len(preferred) > 0 {
		hits := 0
		for _, s := range preferred {
			if _, ok := have[s]; ok {
				hits++
				b.Matched = appendUnique(b.Matched, matched, s)
			}
		}
		b.PreferredRate = float64(hits) / float64(len(preferred))
	}

	b.Score = (requiredWeight*b.RequiredRate + preferredWeight*b.PreferredRate) * 100
	if b.Matched == nil {
		b.Matched = []string{}
	}
	if b.Missing == nil {
		b.Missing = []string{}
	}

	return b
}

// ExperienceScore rates how close the resume experience is to the required years.
// It is 100 for an exact match and decreases in bands with the absolute difference.
// Past three years it stays at 60 or below and never goes under 40, so a larger
// difference never scores higher.
func ExperienceScore(resumeYears float64, required int) float64 {
	diff := math.Abs(resumeYears - float64(required))

	switch {
	case diff == 0:
		return 100
	case diff <= 1:
		return 90
	case diff <= 2:
		return 75
	case diff <= 3:
		return 60
	default:
		return math.Min(60, math.Max(40, 100-10*diff))
	}
}

// OverallScore combines skill and experience scores 60/40, rounded to one decimal.
func OverallScore(skill, experience float64) float64 {
	return round1(clamp(skillWeight*skill + experienceWeight*experience))
}

// Score computes a skills-mode match of r against job.
func Score(r *resume.Resume, job jobs.Listing) JobMatch {
	skills := SkillScore(r.SkillNames(), job.RequiredSkills, job.PreferredSkills)
	experience := ExperienceScore(r.TotalExperienceYears, job.ExperienceRequired)

	m := JobMatch{
		Job:                  job,
		MatchScore:           OverallScore(skills.Score, experience),
		SkillMatchScore:      round1(skills.Score),
		ExperienceMatchScore: round1(experience),
		MatchedSkills:        skills.Matched,
		MissingSkills:        skills.Missing,
		Mode:                 ModeSkills,
	}
	m.Reasoning = Reasoning(&m, r.TotalExperienceYears)

	return m
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func normalize(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		out = appendUnique(out, seen, s)
	}
	return out
}

func toSet(skills []string) map[string]struct{} {
	set := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		set[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	return set
}

func appendUnique(list []string, seen map[string]struct{}, s string) []string {
	if _, ok := seen[s]; ok {
		return list
	}
	seen[s] = struct{}{}
	return append(list, s)
}
