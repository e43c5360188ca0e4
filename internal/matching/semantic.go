package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spigell/jobfit/internal/embedding"
	"github.com/spigell/jobfit/internal/jobs"
	"github.com/spigell/jobfit/internal/logger"
	"github.com/spigell/jobfit/internal/resume"
	"go.uber.org/zap"
)

const (
	similarityWeight = 0.7
	overlapWeight    = 0.3

	suggestBelow        = 0.7
	weakSimilarity      = 0.6
	weakOverlap         = 0.5
	suggestTopMissing   = 3
	manyMissingSkills   = 3
	msgHighlightRelated = "Consider highlighting more relevant experience in your resume that matches the job description."
)

// ErrNoEmbedder is returned by semantic scoring when the scorer has no embedder.
var ErrNoEmbedder = errors.New("semantic scoring requires an embedder")

// DescriptionSkills finds skills in a job description.
type DescriptionSkills interface {
	Lexical(text string) []resume.Skill
}

// Scorer computes semantic matches. Skills-mode scoring is the package level Score.
type Scorer struct {
	embedder    embedding.Embedder
	description DescriptionSkills
	logger      *zap.Logger
}

// NewScorer returns a scorer. The embedder may be nil when only skills mode is used;
// description is consulted for listings that name no skills and may be nil too.
func NewScorer(embedder embedding.Embedder, description DescriptionSkills, log *zap.Logger) *Scorer {
	return &Scorer{
		embedder:    embedder,
		description: description,
		logger:      logger.WithFields(log),
	}
}

// SemanticScore blends similarity and skill overlap 70/30 into a 0..100 score with one decimal.
func SemanticScore(similarity, overlapRate float64) float64 {
	return round1(clamp((similarityWeight*similarity + overlapWeight*overlapRate) * 100))
}

// Overlap returns the share of job skills present in the resume together with the
// matched and missing skills in job order. An empty job skill list has overlap 0.
func Overlap(resumeSkills, jobSkills []string) (float64, []string, []string) {
	have := toSet(resumeSkills)
	jobSkills = normalize(jobSkills)

	matched := []string{}
	missing := []string{}
	for _, s := range jobSkills {
		if _, ok := have[s]; ok {
			matched = append(matched, s)
			continue
		}
		missing = append(missing, s)
	}

	if len(jobSkills) == 0 {
		return 0, matched, missing
	}
	return float64(len(matched)) / float64(len(jobSkills)), matched, missing
}

// Score is the skills-mode score of r against job.
func (s *Scorer) Score(r *resume.Resume, job jobs.Listing) JobMatch {
	return Score(r, job)
}

// ScoreSemantic embeds the resume and the job and scores them in semantic mode.
func (s *Scorer) ScoreSemantic(ctx context.Context, r *resume.Resume, job jobs.Listing) (JobMatch, error) {
	if s.embedder == nil {
		return JobMatch{}, ErrNoEmbedder
	}

	vectors, err := embedding.EmbedAll(ctx, s.embedder, []string{r.Text(), job.Text()})
	if err != nil {
		return JobMatch{}, fmt.Errorf("embedding resume and job %s: %w", job.ID, err)
	}

	return s.semanticMatch(r, job, embedding.Similarity(vectors[0], vectors[1])), nil
}

func (s *Scorer) semanticMatch(r *resume.Resume, job jobs.Listing, similarity float64) JobMatch {
	rate, matched, missing := Overlap(r.SkillNames(), s.jobSkills(job))
	experience := ExperienceScore(r.TotalExperienceYears, job.ExperienceRequired)

	m := JobMatch{
		Job:                  job,
		MatchScore:           SemanticScore(similarity, rate),
		SkillMatchScore:      round1(rate * 100),
		ExperienceMatchScore: round1(experience),
		MatchedSkills:        matched,
		MissingSkills:        missing,
		Mode:                 ModeSemantic,
		SemanticSimilarity:   &similarity,
		Suggestions:          matchSuggestions(similarity, rate, missing),
	}
	m.Reasoning = Reasoning(&m, r.TotalExperienceYears)

	s.logger.Debug("semantic match",
		append(logger.JobFields(r.ID, job.ID),
			zap.Float64("similarity", similarity),
			zap.Float64("overlap", rate),
			zap.Float64("score", m.MatchScore),
		)...,
	)

	return m
}

func (s *Scorer) jobSkills(job jobs.Listing) []string {
	if listed := job.Skills(); len(listed) > 0 || s.description == nil {
		return listed
	}

	found := s.description.Lexical(job.Title + "\n" + job.Description)
	out := make([]string, 0, len(found))
	for _, skill := range found {
		out = append(out, strings.ToLower(skill.Name))
	}
	return out
}

// matchSuggestions advises on a semantic match scoring below 70.
func matchSuggestions(similarity, overlap float64, missing []string) []string {
	var out []string

	if similarityWeight*similarity+overlapWeight*overlap >= suggestBelow {
		return out
	}

	if similarity < weakSimilarity {
		out = append(out, msgHighlightRelated)
	}
	if overlap < weakOverlap && len(missing) > 0 {
		out = append(out, "Consider adding experience with: "+strings.Join(head(missing, suggestTopMissing), ", "))
	}
	if len(missing) > manyMissingSkills {
		out = append(out, fmt.Sprintf("There are %d skills mentioned in the job that you could highlight or acquire.", len(missing)))
	}

	return out
}
