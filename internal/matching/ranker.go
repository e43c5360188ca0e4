package matching

import (
	"context"
	"fmt"
	"sort"

	"github.com/spigell/jobfit/internal/embedding"
	"github.com/spigell/jobfit/internal/jobs"
	"github.com/spigell/jobfit/internal/logger"
	"github.com/spigell/jobfit/internal/resume"
	"go.uber.org/zap"
)

// BestFitCount is how many top matches are flagged as best fit.
const BestFitCount = 3

// Ranker orders jobs by match score.
type Ranker struct {
	scorer *Scorer
	policy SuggestionPolicy
	logger *zap.Logger
}

// NewRanker returns a ranker. A nil scorer limits the ranker to skills mode.
func NewRanker(scorer *Scorer, policy SuggestionPolicy, log *zap.Logger) *Ranker {
	if scorer == nil {
		scorer = NewScorer(nil, nil, log)
	}
	return &Ranker{scorer: scorer, policy: policy.withDefaults(), logger: logger.WithFields(log)}
}

// Rank scores every job in skills mode and returns the topK best matches. topK <= 0
// keeps all of them. Equal scores keep input order.
func (rk *Ranker) Rank(r *resume.Resume, listings []jobs.Listing, topK int) []JobMatch {
	matches := make([]JobMatch, 0, len(listings))
	for _, job := range listings {
		matches = append(matches, Score(r, job))
	}

	return rk.finish(r, matches, topK)
}

// RankSemantic is Rank in semantic mode. All texts are embedded in one batch when the
// embedder supports it; scores are the same as scoring each job with ScoreSemantic.
func (rk *Ranker) RankSemantic(ctx context.Context, r *resume.Resume, listings []jobs.Listing, topK int) ([]JobMatch, error) {
	if rk.scorer.embedder == nil {
		return nil, ErrNoEmbedder
	}

	texts := make([]string, 0, len(listings)+1)
	texts = append(texts, r.Text())
	for _, job := range listings {
		texts = append(texts, job.Text())
	}

	vectors, err := embedding.EmbedAll(ctx, rk.scorer.embedder, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding %d texts: %w", len(texts), err)
	}

	matches := make([]JobMatch, 0, len(listings))
	for i, job := range listings {
		similarity := embedding.Similarity(vectors[0], vectors[i+1])
		matches = append(matches, rk.scorer.semanticMatch(r, job, similarity))
	}

	return rk.finish(r, matches, topK), nil
}

// RankMode dispatches to Rank or RankSemantic.
func (rk *Ranker) RankMode(ctx context.Context, mode Mode, r *resume.Resume, listings []jobs.Listing, topK int) ([]JobMatch, error) {
	switch mode {
	case ModeSkills, "":
		return rk.Rank(r, listings, topK), nil
	case ModeSemantic:
		return rk.RankSemantic(ctx, r, listings, topK)
	default:
		return nil, fmt.Errorf("unknown matching mode %q", mode)
	}
}

// finish sorts matches by score, truncates to topK and flags the best fits.
func (rk *Ranker) finish(r *resume.Resume, matches []JobMatch, topK int) []JobMatch {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchScore > matches[j].MatchScore
	})

	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}

	for i := 0; i < len(matches) && i < BestFitCount; i++ {
		matches[i].BestFit = true
	}

	rk.logger.Debug("jobs ranked",
		zap.String(logger.FieldResumeID, r.ID),
		zap.Int("matches", len(matches)),
	)

	return matches
}
