package filtering

import (
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-ats/internal/applications"
)

type skillsFilter struct {
	toggle
	skills []string
}

// NewSkills creates a filter that keeps applications whose candidate has every
// required skill, either in the profile or anywhere in the résumé text.
func NewSkills() Filter {
	return &skillsFilter{}
}

func (f *skillsFilter) Name() string { return "skills" }

func (f *skillsFilter) Validate(cfg *Config) error {
	f.skills = nil
	if cfg == nil {
		return nil
	}
	for _, entry := range cfg.Skills {
		for _, skill := range strings.Split(entry, ",") {
			skill = strings.ToLower(strings.TrimSpace(skill))
			if skill != "" && !slices.Contains(f.skills, skill) {
				f.skills = append(f.skills, skill)
			}
		}
	}
	return nil
}

func (f *skillsFilter) Apply(_ context.Context, deps Deps, v *applications.Applications) (*applications.Applications, Step, error) {
	initial := v.Len()
	if len(f.skills) == 0 {
		return v, passThrough(v), nil
	}

	excluded := v.Keep(func(app *applications.Application) bool {
		return app.Candidate != nil && hasSkills(app.Candidate, f.skills)
	})
	if len(excluded) > 0 {
		deps.Logger.Info("excluding applications missing required skills",
			zap.Strings("skills", f.skills),
			zap.Strings("excluded_applications", excluded),
			zap.Int("applications_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

func (f *skillsFilter) Status() Status {
	details := map[string]string{}
	if len(f.skills) > 0 {
		details["skills"] = strings.Join(f.skills, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}

func hasSkills(c *applications.Candidate, required []string) bool {
	profileSkills := c.Skills()
	text := strings.ToLower(c.ExtractedText)
	for _, skill := range required {
		if slices.Contains(profileSkills, skill) || strings.Contains(text, skill) {
			continue
		}
		return false
	}
	return true
}
