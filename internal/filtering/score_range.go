package filtering

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/resume-ats/internal/applications"
)

type scoreRangeFilter struct {
	toggle
	min *float64
	max *float64
}

// NewScoreRange creates a filter that keeps scored applications within the
// configured bounds.
func NewScoreRange() Filter {
	return &scoreRangeFilter{}
}

func (f *scoreRangeFilter) Name() string { return "score_range" }

func (f *scoreRangeFilter) Validate(cfg *Config) error {
	f.min, f.max = nil, nil
	if cfg == nil {
		return nil
	}
	f.min, f.max = cfg.MinScore, cfg.MaxScore
	if f.min != nil && f.max != nil && *f.min > *f.max {
		return fmt.Errorf("min score %.2f is greater than max score %.2f", *f.min, *f.max)
	}
	return nil
}

func (f *scoreRangeFilter) Apply(_ context.Context, deps Deps, v *applications.Applications) (*applications.Applications, Step, error) {
	initial := v.Len()
	if f.min == nil && f.max == nil {
		return v, passThrough(v), nil
	}

	excluded := v.Keep(func(app *applications.Application) bool {
		if app.TotalScore == nil {
			return false
		}
		score := *app.TotalScore
		if f.min != nil && score < *f.min {
			return false
		}
		if f.max != nil && score > *f.max {
			return false
		}
		return true
	})
	if len(excluded) > 0 {
		deps.Logger.Info("excluding applications outside of the score range",
			zap.Strings("excluded_applications", excluded),
			zap.Int("applications_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

func (f *scoreRangeFilter) Status() Status {
	details := map[string]string{}
	if f.min != nil {
		details["min_score"] = strconv.FormatFloat(*f.min, 'f', 2, 64)
	}
	if f.max != nil {
		details["max_score"] = strconv.FormatFloat(*f.max, 'f', 2, 64)
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
