package resume

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spigell/jobfit/internal/ai"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubSkills struct {
	entities []ai.Entity
}

func (s *stubSkills) FromEntities(text string, entities []ai.Entity) []Skill {
	s.entities = entities
	var out []Skill
	if strings.Contains(text, "Go") {
		out = append(out, Skill{Name: "Go", Category: "programming"})
	}
	return out
}

type stubTagger struct {
	entities []ai.Entity
	err      error
}

func (s stubTagger) Tag(context.Context, string) ([]ai.Entity, error) {
	return s.entities, s.err
}

func newTestParser(t *testing.T, deps ParserDeps) *Parser {
	t.Helper()

	if deps.Skills == nil {
		deps.Skills = &stubSkills{}
	}
	deps.Now = fixedClock
	deps.NewID = func() string { return "resume-1" }

	p, err := NewParser(deps)
	if err != nil {
		t.Fatalf("creating parser: %v", err)
	}
	return p
}

func TestParse(t *testing.T) {
	t.Parallel()

	p := newTestParser(t, ParserDeps{})

	r, err := p.Parse(context.Background(), strings.ReplaceAll(sampleResume, "\n", "\r\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.ID != "resume-1" || r.Name != "Jane Doe" {
		t.Fatalf("unexpected identity: %q %q", r.ID, r.Name)
	}
	if len(r.Experience) != 2 || len(r.Education) != 1 || len(r.Skills) != 1 {
		t.Fatalf("unexpected sections: %+v", r)
	}
	if r.TotalExperienceYears != 8 {
		t.Fatalf("expected 8 years, got %v", r.TotalExperienceYears)
	}
}

func TestParseEmptyText(t *testing.T) {
	t.Parallel()

	p := newTestParser(t, ParserDeps{})

	r, err := p.Parse(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Skills == nil || r.Experience == nil || r.Education == nil {
		t.Fatalf("expected empty, non-nil collections: %+v", r)
	}
	if r.TotalExperienceYears != 0 {
		t.Fatalf("expected zero years, got %v", r.TotalExperienceYears)
	}
}

func TestParseUsesTaggerOnce(t *testing.T) {
	t.Parallel()

	skills := &stubSkills{}
	tagger := stubTagger{entities: []ai.Entity{{Text: "Jane Q. Doe", Label: ai.LabelPerson, Confidence: 0.99}}}
	p := newTestParser(t, ParserDeps{Skills: skills, Tagger: tagger})

	r, err := p.Parse(context.Background(), sampleResume)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Name != "Jane Q. Doe" {
		t.Fatalf("expected tagged name, got %q", r.Name)
	}
	if len(skills.entities) != 1 {
		t.Fatalf("expected entities to be passed to the skill extractor")
	}
}

func TestParseTaggerFailure(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.WarnLevel)
	p := newTestParser(t, ParserDeps{Tagger: stubTagger{err: errors.New("boom")}, Logger: zap.New(core)})

	r, err := p.Parse(context.Background(), sampleResume)
	if err != nil {
		t.Fatalf("tagger errors must not fail parsing: %v", err)
	}
	if r.Name != "Jane Doe" {
		t.Fatalf("expected heuristic name, got %q", r.Name)
	}
	if observed.FilterMessage("tagging resume text failed, using heuristics only").Len() != 1 {
		t.Fatalf("expected warning to be logged")
	}
}

func TestParseCancelled(t *testing.T) {
	t.Parallel()

	p := newTestParser(t, ParserDeps{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Parse(ctx, sampleResume); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNewParserRequiresSkills(t *testing.T) {
	if _, err := NewParser(ParserDeps{}); err == nil {
		t.Fatalf("expected error without skill extractor")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	bad := 1.5
	negative := -3

	tests := []struct {
		name   string
		resume Resume
	}{
		{name: "negative years", resume: Resume{TotalExperienceYears: -1}},
		{name: "duplicate skills", resume: Resume{Skills: []Skill{{Name: "Go"}, {Name: "go"}}}},
		{name: "confidence out of range", resume: Resume{Skills: []Skill{{Name: "Go", Confidence: &bad}}}},
		{name: "negative duration", resume: Resume{Experience: []Experience{{DurationMonths: &negative}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if err := tt.resume.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestResumeText(t *testing.T) {
	t.Parallel()

	r := Resume{
		Name:       "Jane",
		Summary:    "Engineer",
		Skills:     []Skill{{Name: "Go"}, {Name: "Docker"}},
		Experience: []Experience{{Company: "Acme", Title: "SRE", Description: "on-call"}},
		Education:  []Education{{Institution: "MIT", Degree: "BSc"}},
	}

	expect := "Jane\n\nEngineer\n\nSkills: Go, Docker\n\nSRE at Acme\non-call\n\nBSc at MIT"
	if got := r.Text(); got != expect {
		t.Fatalf("unexpected text:\n%s", got)
	}

	if !r.HasSkill(" DOCKER ") {
		t.Fatalf("expected case-insensitive skill lookup")
	}
}
