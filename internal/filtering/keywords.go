package filtering

import (
	"context"
	"strings"

	"github.com/spigell/jobfit/internal/jobs"
)

type keywordsFilter struct {
	toggle
	keywords []string
}

// NewKeywords keeps listings whose title, description or skills mention any keyword.
func NewKeywords(keywords []string) Filter {
	normalized := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			normalized = append(normalized, k)
		}
	}

	f := &keywordsFilter{keywords: normalized}
	if len(normalized) == 0 {
		f.Disable("no keywords configured")
	}
	return f
}

func (f *keywordsFilter) Name() string { return "keywords" }

func (f *keywordsFilter) Validate(*Config) error { return nil }

func (f *keywordsFilter) Apply(_ context.Context, _ Deps, v *jobs.Listings) (*jobs.Listings, Step, error) {
	initial := v.Len()
	removed := v.Keep(func(l *jobs.Listing) bool {
		haystack := strings.ToLower(l.Title + "\n" + l.Description + "\n" + strings.Join(l.Skills(), " "))
		for _, k := range f.keywords {
			if strings.Contains(haystack, k) {
				return true
			}
		}
		return false
	})
	return v, Step{Initial: initial, Dropped: len(removed), Left: v.Len()}, nil
}
