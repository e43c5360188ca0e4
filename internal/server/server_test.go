package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spigell/jobfit/internal/embedding"
	"github.com/spigell/jobfit/internal/jobs"
	"github.com/spigell/jobfit/internal/matching"
	"github.com/spigell/jobfit/internal/resume"
	"github.com/spigell/jobfit/internal/storage"
	"go.uber.org/zap"
)

type stubParser struct{}

func (stubParser) Parse(_ context.Context, text string) (*resume.Resume, error) {
	r := &resume.Resume{ID: "r1", Name: strings.SplitN(text, "\n", 2)[0], TotalExperienceYears: 3}
	if strings.Contains(text, "Go") {
		r.Skills = append(r.Skills, resume.Skill{Name: "go"})
	}
	return r, nil
}

var testListings = []jobs.Listing{
	{ID: "j1", Title: "Go Developer", Company: "Acme", RequiredSkills: []string{"go"}, ExperienceRequired: 3},
	{ID: "j2", Title: "Rust Developer", Company: "Beta", RequiredSkills: []string{"rust"}, ExperienceRequired: 3},
	{ID: "j3", Title: "Designer", Company: "Gamma", RequiredSkills: []string{"figma"}, ExperienceRequired: 8},
}

func newTestServer(t *testing.T, scorer *matching.Scorer) (*Server, storage.Store) {
	t.Helper()

	store := storage.NewMemory()
	s, err := New(Deps{
		Parser: stubParser{},
		Ranker: matching.NewRanker(scorer, matching.DefaultSuggestionPolicy(), zap.NewNop()),
		Jobs:   jobs.StaticSource{Listings: testListings},
		Store:  store,
		Logger: zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("creating server: %v", err)
	}
	return s, store
}

func upload(t *testing.T, filename, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/resume/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func do(t *testing.T, s *Server, req *http.Request, wantStatus int, out any) {
	t.Helper()

	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected status %d, got %d: %s", req.Method, req.URL.Path, wantStatus, resp.StatusCode, body)
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			t.Fatalf("decoding response %s: %v", body, err)
		}
	}
}

func TestNewRequiresDeps(t *testing.T) {
	t.Parallel()

	if _, err := New(Deps{}); err == nil {
		t.Fatal("expected an error without dependencies")
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, nil)

	var got map[string]string
	do(t, s, httptest.NewRequest(http.MethodGet, "/api/health", nil), http.StatusOK, &got)
	if got["status"] != "ok" {
		t.Fatalf("unexpected health response %v", got)
	}
}

func TestUploadAndMatch(t *testing.T) {
	t.Parallel()

	s, store := newTestServer(t, nil)

	var r resume.Resume
	do(t, s, upload(t, "cv.txt", "Jane Doe\nSKILLS\nGo"), http.StatusCreated, &r)
	if r.ID != "r1" || r.Name != "Jane Doe" {
		t.Fatalf("unexpected resume %+v", r)
	}

	var fetched resume.Resume
	do(t, s, httptest.NewRequest(http.MethodGet, "/api/resume/r1", nil), http.StatusOK, &fetched)
	if fetched.Name != "Jane Doe" {
		t.Fatalf("unexpected stored resume %+v", fetched)
	}

	var matches []matching.JobMatch
	do(t, s, httptest.NewRequest(http.MethodGet, "/api/matching/r1/jobs?limit=2", nil), http.StatusOK, &matches)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Job.ID != "j1" || !matches[0].BestFit {
		t.Fatalf("expected j1 as the best fit, got %+v", matches[0])
	}

	saved, err := store.GetMatches(context.Background(), "r1")
	if err != nil || len(saved) != 2 {
		t.Fatalf("expected stored matches, got %v, %v", saved, err)
	}

	var imp matching.Improvement
	do(t, s, httptest.NewRequest(http.MethodGet, "/api/resume/r1/improvement", nil), http.StatusOK, &imp)
	if len(imp.FormattingSuggestions) == 0 || len(imp.ContentSuggestions) == 0 {
		t.Fatalf("expected suggestions, got %+v", imp)
	}
}

func TestSemanticMatching(t *testing.T) {
	t.Parallel()

	embedder, err := embedding.NewHashing(64)
	if err != nil {
		t.Fatal(err)
	}

	s, _ := newTestServer(t, matching.NewScorer(embedder, nil, zap.NewNop()))
	do(t, s, upload(t, "cv.md", "Jane Doe\nGo developer"), http.StatusCreated, nil)

	var matches []matching.JobMatch
	do(t, s, httptest.NewRequest(http.MethodGet, "/api/matching/r1/jobs?mode=semantic", nil), http.StatusOK, &matches)
	if len(matches) != len(testListings) {
		t.Fatalf("expected %d matches, got %d", len(testListings), len(matches))
	}
	for _, m := range matches {
		if m.Mode != matching.ModeSemantic {
			t.Fatalf("expected semantic mode, got %q", m.Mode)
		}
	}
}

func TestErrors(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, nil)
	do(t, s, upload(t, "cv.txt", "Jane Doe"), http.StatusCreated, nil)

	tests := []struct {
		name   string
		req    *http.Request
		status int
	}{
		{name: "unsupported format", req: upload(t, "cv.rtf", "text"), status: http.StatusBadRequest},
		{name: "empty document", req: upload(t, "cv.txt", "   "), status: http.StatusUnprocessableEntity},
		{name: "unknown resume", req: httptest.NewRequest(http.MethodGet, "/api/resume/nope", nil), status: http.StatusNotFound},
		{name: "unknown resume improvement", req: httptest.NewRequest(http.MethodGet, "/api/resume/nope/improvement", nil), status: http.StatusNotFound},
		{name: "unknown job", req: httptest.NewRequest(http.MethodGet, "/api/jobs/nope", nil), status: http.StatusNotFound},
		{name: "limit out of range", req: httptest.NewRequest(http.MethodGet, "/api/matching/r1/jobs?limit=100", nil), status: http.StatusBadRequest},
		{name: "semantic without embedder", req: httptest.NewRequest(http.MethodGet, "/api/matching/r1/jobs?mode=semantic", nil), status: http.StatusBadRequest},
		{name: "unknown mode", req: httptest.NewRequest(http.MethodGet, "/api/matching/r1/jobs?mode=magic", nil), status: http.StatusBadRequest},
		{name: "missing file", req: httptest.NewRequest(http.MethodPost, "/api/resume/upload", nil), status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		var got errorResponse
		do(t, s, tt.req, tt.status, &got)
		if got.Message == "" {
			t.Fatalf("%s: expected an error message", tt.name)
		}
	}
}

func TestListJobs(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer(t, nil)

	tests := []struct {
		query string
		want  []string
	}{
		{query: "", want: []string{"j1", "j2", "j3"}},
		{query: "?limit=1&offset=1", want: []string{"j2"}},
		{query: "?offset=10", want: []string{}},
	}

	for _, tt := range tests {
		var got []jobs.Listing
		do(t, s, httptest.NewRequest(http.MethodGet, "/api/jobs"+tt.query, nil), http.StatusOK, &got)
		if len(got) != len(tt.want) {
			t.Fatalf("%q: expected %v, got %d listings", tt.query, tt.want, len(got))
		}
		for i := range got {
			if got[i].ID != tt.want[i] {
				t.Fatalf("%q: expected %v at %d, got %s", tt.query, tt.want[i], i, got[i].ID)
			}
		}
	}

	var job jobs.Listing
	do(t, s, httptest.NewRequest(http.MethodGet, "/api/jobs/j2", nil), http.StatusOK, &job)
	if job.Company != "Beta" {
		t.Fatalf("unexpected job %+v", job)
	}
}
