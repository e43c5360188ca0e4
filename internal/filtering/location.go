package filtering

import (
	"context"
	"strconv"
	"strings"

	"github.com/spigell/jobfit/internal/jobs"
)

type locationFilter struct {
	toggle
	locations  []string
	remoteOnly bool
}

// NewLocation keeps listings whose location contains one of locations. Remote listings
// always pass the location check; with remoteOnly only remote listings are kept.
func NewLocation(locations []string, remoteOnly bool) Filter {
	normalized := make([]string, 0, len(locations))
	for _, l := range locations {
		if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
			normalized = append(normalized, l)
		}
	}

	f := &locationFilter{locations: normalized, remoteOnly: remoteOnly}
	if len(normalized) == 0 && !remoteOnly {
		f.Disable("no locations configured")
	}
	return f
}

func (f *locationFilter) Name() string { return "location" }

func (f *locationFilter) Validate(*Config) error { return nil }

func (f *locationFilter) Apply(_ context.Context, _ Deps, v *jobs.Listings) (*jobs.Listings, Step, error) {
	initial := v.Len()
	removed := v.Keep(f.keep)
	return v, Step{Initial: initial, Dropped: len(removed), Left: v.Len()}, nil
}

func (f *locationFilter) keep(l *jobs.Listing) bool {
	remote := l.Remote || strings.Contains(strings.ToLower(l.Location), "remote")
	if f.remoteOnly {
		return remote
	}
	if remote {
		return true
	}

	location := strings.ToLower(l.Location)
	for _, want := range f.locations {
		if strings.Contains(location, want) {
			return true
		}
	}
	return false
}

func (f *locationFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{
			"locations":   strings.Join(f.locations, ","),
			"remote_only": strconv.FormatBool(f.remoteOnly),
		},
	}
}
