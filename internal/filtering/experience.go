package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/resume-ats/internal/applications"
)

type minExperienceFilter struct {
	toggle
	years *int
}

// NewMinExperience creates a filter that keeps applications whose candidate
// has at least the configured years of experience.
func NewMinExperience() Filter {
	return &minExperienceFilter{}
}

func (f *minExperienceFilter) Name() string { return "min_experience" }

func (f *minExperienceFilter) Validate(cfg *Config) error {
	f.years = nil
	if cfg == nil || cfg.MinExperience == nil {
		return nil
	}
	if *cfg.MinExperience < 0 {
		return fmt.Errorf("min experience must not be negative, got %d", *cfg.MinExperience)
	}
	years := *cfg.MinExperience
	f.years = &years
	return nil
}

func (f *minExperienceFilter) Apply(_ context.Context, deps Deps, v *applications.Applications) (*applications.Applications, Step, error) {
	initial := v.Len()
	if f.years == nil {
		return v, passThrough(v), nil
	}

	excluded := v.Keep(func(app *applications.Application) bool {
		if app.Candidate == nil {
			return false
		}
		years, ok := app.Candidate.Years()
		return ok && years >= *f.years
	})
	if len(excluded) > 0 {
		deps.Logger.Info("excluding applications below minimum experience",
			zap.Int("min_years", *f.years),
			zap.Strings("excluded_applications", excluded),
			zap.Int("applications_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

func (f *minExperienceFilter) Status() Status {
	details := map[string]string{}
	if f.years != nil {
		details["min_years"] = strconv.Itoa(*f.years)
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
