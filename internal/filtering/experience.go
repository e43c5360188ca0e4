package filtering

import (
	"context"
	"fmt"

	"github.com/spigell/jobfit/internal/jobs"
)

type experienceFilter struct {
	toggle
	limit *int
}

// NewExperience drops listings that ask for more years than maxYears.
func NewExperience(maxYears *int) Filter {
	f := &experienceFilter{limit: maxYears}
	if maxYears == nil {
		f.Disable("max experience is not set")
	}
	return f
}

func (f *experienceFilter) Name() string { return "experience" }

func (f *experienceFilter) Validate(*Config) error {
	if f.limit != nil && *f.limit < 0 {
		return fmt.Errorf("max experience must not be negative, got %d", *f.limit)
	}
	return nil
}

func (f *experienceFilter) Apply(_ context.Context, _ Deps, v *jobs.Listings) (*jobs.Listings, Step, error) {
	initial := v.Len()
	removed := v.Keep(func(l *jobs.Listing) bool { return l.ExperienceRequired <= *f.limit })
	return v, Step{Initial: initial, Dropped: len(removed), Left: v.Len()}, nil
}
