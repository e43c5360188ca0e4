package filtering

import (
	"context"
	"fmt"

	"github.com/spigell/jobfit/internal/jobs"
)

type excludeFileFilter struct {
	toggle
	path string
}

// NewExcludeFile creates a filter that removes listings recorded in an exclude file.
func NewExcludeFile(path string) Filter {
	f := &excludeFileFilter{path: path}
	if path == "" {
		f.Disable("exclude file is not set")
	}
	return f
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Validate(*Config) error { return nil }

func (f *excludeFileFilter) Apply(_ context.Context, _ Deps, v *jobs.Listings) (*jobs.Listings, Step, error) {
	initial := v.Len()

	excluded, err := jobs.ExcludedFromFile(f.path)
	if err != nil {
		return v, Step{}, fmt.Errorf("getting excluded jobs from file: %w", err)
	}

	removed := v.Exclude(jobs.ListingIDField, excluded.IDs())

	return v, Step{Initial: initial, Dropped: len(removed), Left: v.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"path": f.path},
	}
}
