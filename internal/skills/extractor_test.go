package skills

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/spigell/jobfit/internal/ai"
	"github.com/spigell/jobfit/internal/lexicon"
	"github.com/spigell/jobfit/internal/resume"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubTagger struct {
	entities []ai.Entity
	err      error
	calls    int
}

func (s *stubTagger) Tag(_ context.Context, _ string) ([]ai.Entity, error) {
	s.calls++
	return s.entities, s.err
}

func names(skills []resume.Skill) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		out = append(out, s.Name)
	}
	return out
}

func TestLexicalExtraction(t *testing.T) {
	t.Parallel()

	e := New(lexicon.Default(), nil, 0, nil)

	got := e.Extract(context.Background(), "Built REST APIs in Go and Python, deployed with Docker and CI/CD. Some C++ too.")

	expect := []string{"Python", "C++", "Go", "Docker", "Ci/Cd", "Rest"}
	if strings.Join(names(got), ",") != strings.Join(expect, ",") {
		t.Fatalf("expected %v, got %v", expect, names(got))
	}

	for _, s := range got {
		if s.Confidence == nil || *s.Confidence != 1.0 {
			t.Fatalf("expected confidence 1.0 for %s", s.Name)
		}
	}

	if got[0].Category != "programming" || got[3].Category != "cloud" {
		t.Fatalf("unexpected categories: %+v", got)
	}
}

func TestExtractionIsCaseInsensitiveAndIdempotent(t *testing.T) {
	t.Parallel()

	e := New(lexicon.Default(), nil, 0, nil)
	text := "Kubernetes, React, PostgreSQL"

	lower := e.Extract(context.Background(), strings.ToLower(text))
	upper := e.Extract(context.Background(), strings.ToUpper(text))
	again := e.Extract(context.Background(), text)

	if strings.Join(names(lower), ",") != strings.Join(names(upper), ",") {
		t.Fatalf("case changed the result: %v vs %v", names(lower), names(upper))
	}
	if strings.Join(names(again), ",") != strings.Join(names(lower), ",") {
		t.Fatalf("repeated extraction differs: %v vs %v", names(again), names(lower))
	}
}

func TestTaggerCandidates(t *testing.T) {
	t.Parallel()

	tagger := &stubTagger{entities: []ai.Entity{
		{Text: "docker", Label: ai.LabelProduct, Confidence: 0.9},
		{Text: "Airflow", Label: ai.LabelProduct, Confidence: 0.8},
		{Text: "airflow", Label: ai.LabelOrg, Confidence: 0.95},
		{Text: "Snowflake", Label: ai.LabelOrg, Confidence: 0.5},
		{Text: "distributed stream processing systems", Label: ai.LabelNounChunk, Confidence: 0.9},
		{Text: "event sourcing", Label: ai.LabelNounChunk, Confidence: 0.75},
		{Text: "John Smith", Label: ai.LabelPerson, Confidence: 0.99},
	}}

	e := New(lexicon.Default(), tagger, 0, nil)
	got := e.Extract(context.Background(), "Docker, Airflow, Snowflake")

	expect := []string{"Docker", "Airflow", "Event Sourcing"}
	if strings.Join(names(got), ",") != strings.Join(expect, ",") {
		t.Fatalf("expected %v, got %v", expect, names(got))
	}

	if *got[0].Confidence != 1.0 {
		t.Fatalf("lexical match must keep confidence 1.0, got %v", *got[0].Confidence)
	}
	if *got[1].Confidence != 0.95 {
		t.Fatalf("expected higher tagger confidence to win, got %v", *got[1].Confidence)
	}
	if got[1].Category != lexicon.GeneralCategory {
		t.Fatalf("expected general category, got %q", got[1].Category)
	}
}

func TestTaggerFailureFallsBackToLexicon(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.WarnLevel)
	tagger := &stubTagger{err: errors.New("quota exceeded")}

	e := New(lexicon.Default(), tagger, 0, zap.New(core))
	got := e.Extract(context.Background(), "python")

	if len(got) != 1 || got[0].Name != "Python" {
		t.Fatalf("expected lexical result, got %v", names(got))
	}
	if observed.Len() != 1 {
		t.Fatalf("expected a warning, got %d entries", observed.Len())
	}
}

func TestCustomThreshold(t *testing.T) {
	t.Parallel()

	tagger := &stubTagger{entities: []ai.Entity{{Text: "Snowflake", Label: ai.LabelOrg, Confidence: 0.5}}}
	e := New(lexicon.Default(), tagger, 0.4, nil)

	if got := e.Extract(context.Background(), "snowflake"); len(got) != 1 {
		t.Fatalf("expected candidate above custom threshold, got %v", names(got))
	}
}

func TestTitle(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"python":       "Python",
		"c++":          "C++",
		"ci/cd":        "Ci/Cd",
		"scikit-learn": "Scikit-Learn",
		"EVENT stream": "Event Stream",
	}

	for in, expect := range tests {
		if got := Title(in); got != expect {
			t.Fatalf("Title(%q) = %q, expected %q", in, got, expect)
		}
	}
}
