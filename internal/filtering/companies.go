package filtering

import (
	"context"
	"strings"

	"github.com/spigell/jobfit/internal/jobs"
	"go.uber.org/zap"
)

type companiesFilter struct {
	toggle
	companies []string
}

// NewExcludedCompanies creates a filter that removes listings of the given companies.
func NewExcludedCompanies(companies []string) Filter {
	f := &companiesFilter{companies: companies}
	if len(companies) == 0 {
		f.Disable("no companies configured")
	}
	return f
}

func (f *companiesFilter) Name() string { return "companies" }

func (f *companiesFilter) Validate(*Config) error { return nil }

func (f *companiesFilter) Apply(_ context.Context, deps Deps, v *jobs.Listings) (*jobs.Listings, Step, error) {
	initial := v.Len()
	removed := v.Exclude(jobs.ListingCompanyField, f.companies)

	if len(removed) > 0 {
		deps.Logger.Debug("excluding listings by company",
			zap.Strings("excluded_jobs", ids(removed)),
			zap.Int("jobs_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(removed), Left: v.Len()}, nil
}

func (f *companiesFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"companies": strings.Join(f.companies, ",")},
	}
}

func ids(listings []*jobs.Listing) []string {
	out := make([]string, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.ID)
	}
	return out
}
