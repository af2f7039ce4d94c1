package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-ats/internal/applications"
)

type statusFilter struct {
	toggle
	status string
}

// NewStatus creates a filter that keeps applications with the configured status.
func NewStatus() Filter {
	return &statusFilter{}
}

func (f *statusFilter) Name() string { return "status" }

func (f *statusFilter) Validate(cfg *Config) error {
	f.status = ""
	if cfg == nil {
		return nil
	}
	status := strings.ToLower(strings.TrimSpace(cfg.Status))
	if status != "" && !applications.ValidStatus(status) {
		return fmt.Errorf("unknown status %q, expected one of %s", cfg.Status, strings.Join(applications.Statuses(), ", "))
	}
	f.status = status
	return nil
}

func (f *statusFilter) Apply(_ context.Context, deps Deps, v *applications.Applications) (*applications.Applications, Step, error) {
	initial := v.Len()
	if f.status == "" {
		return v, passThrough(v), nil
	}

	excluded := v.Keep(func(app *applications.Application) bool {
		return app.Status == f.status
	})
	if len(excluded) > 0 {
		deps.Logger.Info("excluding applications by status",
			zap.String("status", f.status),
			zap.Strings("excluded_applications", excluded),
			zap.Int("applications_left", v.Len()),
		)
	}

	return v, Step{Initial: initial, Dropped: len(excluded), Left: v.Len()}, nil
}

func (f *statusFilter) Status() Status {
	details := map[string]string{}
	if f.status != "" {
		details["status"] = f.status
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
