package filtering

import (
	"context"
	"fmt"

	"github.com/spigell/jobfit/internal/jobs"
	"go.uber.org/zap"
)

// Filter represents a single filtering step applied to job listings.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, v *jobs.Listings) (*jobs.Listings, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains the prefilter settings.
type Config struct {
	ExcludeCompanies []string `mapstructure:"exclude-companies"`
	ExcludeFile      string   `mapstructure:"exclude-file"`
	Locations        []string `mapstructure:"locations"`
	RemoteOnly       bool     `mapstructure:"remote-only"`
	Keywords         []string `mapstructure:"keywords"`
	MaxExperience    *int     `mapstructure:"max-experience"`
	// Skip lists filter names to keep disabled regardless of the settings above.
	Skip []string `mapstructure:"skip"`
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

// statusProvider is implemented by filters that can supply detailed status information.
type statusProvider interface {
	Status() Status
}

// toggle carries the enabled state shared by all filters.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

// Steps returns the standard filter chain for cfg. Filters without settings disable themselves.
func Steps(cfg *Config) []Filter {
	if cfg == nil {
		cfg = &Config{}
	}

	return []Filter{
		NewExcludeFile(cfg.ExcludeFile),
		NewExcludedCompanies(cfg.ExcludeCompanies),
		NewLocation(cfg.Locations, cfg.RemoteOnly),
		NewExperience(cfg.MaxExperience),
		NewKeywords(cfg.Keywords),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially and returns the remaining listings.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, v *jobs.Listings) (*jobs.Listings, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !step.IsEnabled() {
			deps.Logger.Debug("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, deps, v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		deps.Logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		v = next
	}

	return v, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}
