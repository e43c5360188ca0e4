package resume

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spigell/jobfit/internal/ai"
	"github.com/spigell/jobfit/internal/logger"
	"go.uber.org/zap"
)

// SkillExtractor turns resume text and optional tagger output into a deduplicated skill list.
type SkillExtractor interface {
	FromEntities(text string, entities []ai.Entity) []Skill
}

// ParserDeps aggregates collaborators of the parser. Only Skills is required.
type ParserDeps struct {
	Skills SkillExtractor
	Tagger ai.Tagger
	Logger *zap.Logger
	Now    func() time.Time
	NewID  func() string
}

// Parser builds a Resume out of plain resume text.
type Parser struct {
	skills   SkillExtractor
	tagger   ai.Tagger
	sections *SectionParser
	newID    func() string
	logger   *zap.Logger
}

// NewParser validates deps and returns a parser.
func NewParser(deps ParserDeps) (*Parser, error) {
	if deps.Skills == nil {
		return nil, errors.New("skill extractor is required")
	}

	if deps.NewID == nil {
		deps.NewID = uuid.NewString
	}

	return &Parser{
		skills:   deps.Skills,
		tagger:   deps.Tagger,
		sections: NewSectionParser(deps.Now),
		newID:    deps.NewID,
		logger:   logger.WithFields(deps.Logger),
	}, nil
}

// Parse extracts a Resume from text. Missing fields stay empty; the only errors are
// context cancellation and an invariant violation of the produced resume.
func (p *Parser) Parse(ctx context.Context, text string) (*Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	entities := p.tag(ctx, text)

	fields := ExtractFields(text, entities)
	experience := p.sections.ParseExperience(ExtractSection(text, ExperienceHeadings))
	education := p.sections.ParseEducation(ExtractSection(text, EducationHeadings))

	r := &Resume{
		ID:                   p.newID(),
		Name:                 fields.Name,
		Contact:              fields.Contact,
		Summary:              fields.Summary,
		Skills:               p.skills.FromEntities(text, entities),
		Experience:           experience,
		Education:            education,
		TotalExperienceYears: TotalYears(experience, text),
	}

	if r.Experience == nil {
		r.Experience = []Experience{}
	}
	if r.Education == nil {
		r.Education = []Education{}
	}
	if r.Skills == nil {
		r.Skills = []Skill{}
	}

	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("parsed resume is invalid: %w", err)
	}

	p.logger.Debug("resume parsed",
		zap.String(logger.FieldResumeID, r.ID),
		zap.Int("skills", len(r.Skills)),
		zap.Int("experience", len(r.Experience)),
		zap.Int("education", len(r.Education)),
		zap.Float64("total_experience_years", r.TotalExperienceYears),
	)

	return r, nil
}

func (p *Parser) tag(ctx context.Context, text string) []ai.Entity {
	if p.tagger == nil {
		return nil
	}

	entities, err := p.tagger.Tag(ctx, text)
	if err != nil {
		p.logger.Warn("tagging resume text failed, using heuristics only", zap.Error(err))
		return nil
	}

	return entities
}
