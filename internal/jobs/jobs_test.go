package jobs

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestFileSourceJSON(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "jobs.json", `[
		{"id": "1", "title": "Go Developer", "company": "Acme", "required_skills": ["Go", " docker ", "go"], "experience_required": "3", "salary_min": 100},
		{"id": "2", "title": "Data Engineer", "company": "Globex", "required_skills": "python, spark", "preferred_skills": ["Airflow"]}
	]`)

	listings, err := NewFileSource(path, nil).List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if listings.Len() != 2 {
		t.Fatalf("expected 2 listings, got %d", listings.Len())
	}

	first := listings.FindByID("1")
	if strings.Join(first.RequiredSkills, ",") != "go,docker" {
		t.Fatalf("expected normalized skills, got %v", first.RequiredSkills)
	}
	if first.ExperienceRequired != 3 {
		t.Fatalf("expected weakly typed experience, got %d", first.ExperienceRequired)
	}
	if first.SalaryMin == nil || *first.SalaryMin != 100 {
		t.Fatalf("unexpected salary: %v", first.SalaryMin)
	}
	if first.Source != "jobs.json" {
		t.Fatalf("expected default source, got %q", first.Source)
	}

	second := listings.FindByID("2")
	if strings.Join(second.RequiredSkills, ",") != "python,spark" {
		t.Fatalf("expected comma separated skills to be split, got %v", second.RequiredSkills)
	}
	if strings.Join(second.Skills(), ",") != "python,spark,airflow" {
		t.Fatalf("unexpected merged skills: %v", second.Skills())
	}
}

func TestFileSourceYAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "jobs.yaml", `jobs:
  - id: a
    title: SRE
    company: Hooli
    required_skills: [kubernetes, terraform]
    experience_required: 5
    experience_level: senior
    remote: true
`)

	listings, err := NewFileSource(path, nil).List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	l := listings.Items[0]
	if l.Title != "SRE" || !l.Remote || l.Level() != LevelSenior {
		t.Fatalf("unexpected listing: %+v", l)
	}
}

func TestFileSourceRejectsInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{name: "negative experience", content: `[{"id": "1", "title": "Dev", "experience_required": -1}]`},
		{name: "missing title", content: `[{"id": "1"}]`},
		{name: "missing id", content: `[{"title": "Dev"}]`},
		{name: "salary range", content: `[{"id": "1", "title": "Dev", "salary_min": 10, "salary_max": 5}]`},
		{name: "wrong document", content: `{"vacancies": []}`},
		{name: "broken json", content: `[{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := writeFile(t, "jobs.json", tt.content)
			if _, err := NewFileSource(path, nil).List(context.Background()); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestHTTPSource(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		defer gz.Close()
		_ = json.NewEncoder(gz).Encode(map[string]any{
			"items": []map[string]any{{"id": "7", "title": "Backend", "company": "Initech", "required_skills": []string{"Go"}}},
		})
	}))
	defer server.Close()

	source, err := NewHTTPSource(server.URL, "secret", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	listings, err := source.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if listings.Len() != 1 || listings.Items[0].RequiredSkills[0] != "go" {
		t.Fatalf("unexpected listings: %+v", listings.Items)
	}

	unauthorized, _ := NewHTTPSource(server.URL, "", nil)
	if _, err := unauthorized.List(context.Background()); err == nil {
		t.Fatalf("expected bad status error")
	}
}

func TestListingsExcludeAndKeep(t *testing.T) {
	t.Parallel()

	listings := &Listings{Items: []*Listing{
		{ID: "1", Company: "Acme"},
		{ID: "2", Company: "Globex"},
		{ID: "3", Company: "acme"},
	}}

	removed := listings.Exclude(ListingCompanyField, []string{"ACME"})
	if len(removed) != 2 || listings.Len() != 1 || listings.Items[0].ID != "2" {
		t.Fatalf("unexpected exclude result: removed=%d left=%+v", len(removed), listings.Items)
	}

	removed = listings.Keep(func(l *Listing) bool { return l.ID != "2" })
	if len(removed) != 1 || listings.Len() != 0 {
		t.Fatalf("unexpected keep result")
	}
}

func TestExcludedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "exclude.json")

	excluded, err := ExcludedFromFile(path)
	if err != nil || len(excluded.Items) != 0 {
		t.Fatalf("expected empty list for missing file, got %v %v", excluded, err)
	}

	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	listings := &Listings{Items: []*Listing{{ID: "1", Company: "Acme"}, {ID: "2"}}}
	excluded.Append(listings.ToExcluded(now))
	excluded.Append(listings.ToExcluded(now))

	if err := excluded.ToFile(path); err != nil {
		t.Fatalf("writing exclude file: %v", err)
	}

	loaded, err := ExcludedFromFile(path)
	if err != nil {
		t.Fatalf("reading exclude file: %v", err)
	}
	if strings.Join(loaded.IDs(), ",") != "1,2" {
		t.Fatalf("expected deduplicated ids, got %v", loaded.IDs())
	}
	if !loaded.Items[0].ExcludedAt.Equal(now) {
		t.Fatalf("unexpected timestamp: %v", loaded.Items[0].ExcludedAt)
	}
}

func TestLevelForYears(t *testing.T) {
	t.Parallel()

	tests := map[float64]string{0: LevelEntry, 2: LevelEntry, 2.5: LevelMid, 4.9: LevelMid, 5: LevelSenior, 12: LevelSenior}
	for years, expect := range tests {
		if got := LevelForYears(years); got != expect {
			t.Fatalf("LevelForYears(%v) = %s, expected %s", years, got, expect)
		}
	}
}
