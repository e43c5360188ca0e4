package matching

import (
	"math"
	"sort"

	"github.com/spigell/jobfit/internal/jobs"
	"github.com/spigell/jobfit/internal/resume"
)

// SuggestionPolicy tunes SuggestImprovements.
type SuggestionPolicy struct {
	// MinFrequency is the number of listings a skill must exceed to be suggested.
	MinFrequency int `mapstructure:"min-frequency"`
	// MaxSkills caps the suggested skills.
	MaxSkills int `mapstructure:"max-skills"`
	// SampleSize is the number of leading listings the improvement score averages over.
	// The sum is always divided by SampleSize, even when fewer listings are available.
	SampleSize int `mapstructure:"sample-size"`
}

// DefaultSuggestionPolicy returns the default policy: skills seen in more than 5
// listings, at most 10 of them, improvement averaged over 20 listings.
func DefaultSuggestionPolicy() SuggestionPolicy {
	return SuggestionPolicy{MinFrequency: 5, MaxSkills: 10, SampleSize: 20}
}

func (p SuggestionPolicy) withDefaults() SuggestionPolicy {
	d := DefaultSuggestionPolicy()
	if p.MinFrequency < 0 {
		p.MinFrequency = d.MinFrequency
	}
	if p.MaxSkills <= 0 {
		p.MaxSkills = d.MaxSkills
	}
	if p.SampleSize <= 0 {
		p.SampleSize = d.SampleSize
	}
	return p
}

var (
	formattingSuggestions = []string{
		"Use bullet points for skills and experience to improve readability",
		"Include quantifiable achievements in your experience section",
		"Ensure your contact information is clearly visible at the top",
		"Use a clean, ATS-friendly format with standard section headings",
		"Tailor your resume summary to match your target job roles",
	}

	contentSuggestions = []string{
		"Add a skills section that clearly lists your technical and soft skills",
		"Quantify your achievements with metrics and specific results",
		"Include relevant projects that showcase your skills",
		"Tailor your experience descriptions to highlight relevant skills",
		"Use industry-specific keywords throughout your resume",
	}
)

// Improvement lists what a resume could add to match more jobs.
type Improvement struct {
	MissingSkills         []string `json:"missing_skills"`
	ImprovementScore      float64  `json:"improvement_score"`
	FormattingSuggestions []string `json:"formatting_suggestions"`
	ContentSuggestions    []string `json:"content_suggestions"`
}

// Suggestions returns all textual suggestions, content first.
func (i Improvement) Suggestions() []string {
	out := make([]string, 0, len(i.ContentSuggestions)+len(i.FormattingSuggestions))
	out = append(out, i.ContentSuggestions...)
	return append(out, i.FormattingSuggestions...)
}

type skillFrequency struct {
	name  string
	count int
}

// SuggestImprovements finds skills common across listings that the resume lacks and
// estimates how much adding them would raise the average skill overlap, in percent
// points rounded to two decimals.
func (rk *Ranker) SuggestImprovements(r *resume.Resume, listings []jobs.Listing) Improvement {
	return SuggestImprovements(r, listings, rk.policy)
}

// SuggestImprovements is the policy driven implementation behind Ranker.SuggestImprovements.
func SuggestImprovements(r *resume.Resume, listings []jobs.Listing, policy SuggestionPolicy) Improvement {
	policy = policy.withDefaults()
	have := toSet(r.SkillNames())

	counts := make(map[string]*skillFrequency)
	var ordered []*skillFrequency
	for _, job := range listings {
		for _, s := range job.Skills() {
			f, ok := counts[s]
			if !ok {
				f = &skillFrequency{name: s}
				counts[s] = f
				ordered = append(ordered, f)
			}
			f.count++
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].count > ordered[j].count
	})

	missing := []string{}
	for _, f := range ordered {
		if len(missing) == policy.MaxSkills {
			break
		}
		if _, ok := have[f.name]; ok || f.count <= policy.MinFrequency {
			continue
		}
		missing = append(missing, f.name)
	}

	potential := toSet(missing)
	for s := range have {
		potential[s] = struct{}{}
	}

	sample := listings
	if len(sample) > policy.SampleSize {
		sample = sample[:policy.SampleSize]
	}

	var current, improved float64
	for _, job := range sample {
		jobSkills := job.Skills()
		if len(jobSkills) == 0 {
			continue
		}
		current += coverage(have, jobSkills)
		improved += coverage(potential, jobSkills)
	}

	current /= float64(policy.SampleSize)
	improved /= float64(policy.SampleSize)

	return Improvement{
		MissingSkills:         missing,
		ImprovementScore:      math.Round((improved-current)*100*100) / 100,
		FormattingSuggestions: append([]string(nil), formattingSuggestions...),
		ContentSuggestions:    append([]string(nil), contentSuggestions...),
	}
}

func coverage(have map[string]struct{}, jobSkills []string) float64 {
	hits := 0
	for _, s := range jobSkills {
		if _, ok := have[s]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(jobSkills))
}
