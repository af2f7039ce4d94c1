package applications

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/resume-ats/internal/scoring"
)

const (
	StatusNew         = "new"
	StatusReviewed    = "reviewed"
	StatusShortlisted = "shortlisted"
	StatusRejected    = "rejected"
)

const (
	SortScoreDesc = "score_desc"
	SortScoreAsc  = "score_asc"
)

var statuses = [...]string{StatusNew, StatusReviewed, StatusShortlisted, StatusRejected}

// Statuses lists the known application statuses.
func Statuses() []string {
	out := statuses
	return out[:]
}

func ValidStatus(status string) bool {
	return slices.Contains(statuses[:], status)
}

// Application links a candidate to a job description together with the last
// computed score.
type Application struct {
	ID               string             `json:"id"`
	Candidate        *Candidate         `json:"candidate"`
	JobDescriptionID string             `json:"job_description_id"`
	Status           string             `json:"status"`
	TotalScore       *float64           `json:"total_score"`
	Breakdown        *scoring.Breakdown `json:"score_breakdown,omitempty"`
	ReviewedBy       string             `json:"reviewed_by,omitempty"`
	ReviewedAt       *time.Time         `json:"reviewed_at,omitempty"`
	Notes            []ReviewNote       `json:"notes,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

// ReviewNote is a free-text remark a reviewer left on an application.
type ReviewNote struct {
	ID        string    `json:"id"`
	Author    string    `json:"author_name"`
	Text      string    `json:"note_text"`
	CreatedAt time.Time `json:"created_at"`
}

func New(candidate *Candidate, jd *JobDescription) *Application {
	app := &Application{
		ID:        uuid.NewString(),
		Candidate: candidate,
		Status:    StatusNew,
		CreatedAt: time.Now().UTC(),
	}
	if jd != nil {
		app.JobDescriptionID = jd.ID
	}
	return app
}

// Evaluate scores the application candidate against jd and stores the result.
func (a *Application) Evaluate(jd *JobDescription, overrides *scoring.WeightOverrides) scoring.Result {
	var candidate scoring.Candidate
	if a.Candidate != nil {
		candidate = a.Candidate.Record()
	}

	result := scoring.Score(candidate, jd.Record(), overrides)

	total := result.TotalScore
	breakdown := result.Breakdown
	a.TotalScore = &total
	a.Breakdown = &breakdown

	return result
}

// Review moves the application to status on behalf of reviewer.
func (a *Application) Review(status, reviewer string, at time.Time) error {
	if !ValidStatus(status) {
		return fmt.Errorf("unknown application status %q", status)
	}
	a.Status = status
	a.ReviewedBy = reviewer
	reviewedAt := at.UTC()
	a.ReviewedAt = &reviewedAt
	return nil
}

// AddNote appends a note by author. Both author and text are required and
// stored trimmed.
func (a *Application) AddNote(author, text string, at time.Time) (ReviewNote, error) {
	author = strings.TrimSpace(author)
	text = strings.TrimSpace(text)
	if author == "" || text == "" {
		return ReviewNote{}, errors.New("note author and text are required")
	}

	note := ReviewNote{
		ID:        uuid.NewString(),
		Author:    author,
		Text:      text,
		CreatedAt: at.UTC(),
	}
	a.Notes = append(a.Notes, note)
	return note, nil
}

func (a *Application) candidateName() string {
	if a.Candidate == nil {
		return ""
	}
	return a.Candidate.FullName
}

type Applications struct {
	Items []*Application `json:"items"`
}

func (v *Applications) Len() int {
	return len(v.Items)
}

func (v *Applications) FindByID(id string) *Application {
	for _, app := range v.Items {
		if app.ID == id {
			return app
		}
	}
	return nil
}

// FindByCandidateName returns the first application whose candidate has the
// given full name.
func (v *Applications) FindByCandidateName(name string) *Application {
	for _, app := range v.Items {
		if app.candidateName() == name {
			return app
		}
	}
	return nil
}

// Keep leaves only the applications accepted by keep, preserving order, and
// returns the ids of the removed ones.
func (v *Applications) Keep(keep func(*Application) bool) []string {
	var excluded []string
	kept := v.Items[:0]
	for _, app := range v.Items {
		if keep(app) {
			kept = append(kept, app)
			continue
		}
		excluded = append(excluded, app.ID)
	}
	clear(v.Items[len(kept):])
	v.Items = kept
	return excluded
}

// SortByScore orders applications by total score. Unscored applications go
// last for score_desc and first for score_asc. Ties keep their order.
func (v *Applications) SortByScore(order string) error {
	var desc bool
	switch order {
	case "", SortScoreDesc:
		desc = true
	case SortScoreAsc:
	default:
		return fmt.Errorf("unknown sort order %q", order)
	}

	slices.SortStableFunc(v.Items, func(a, b *Application) int {
		switch {
		case a.TotalScore == nil && b.TotalScore == nil:
			return 0
		case a.TotalScore == nil:
			if desc {
				return 1
			}
			return -1
		case b.TotalScore == nil:
			if desc {
				return -1
			}
			return 1
		}

		if desc {
			return cmpFloat(*b.TotalScore, *a.TotalScore)
		}
		return cmpFloat(*a.TotalScore, *b.TotalScore)
	})
	return nil
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func (v *Applications) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "applications_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// ReportByStatus groups a short summary of every application by its status.
func (v *Applications) ReportByStatus() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, app := range v.Items {
		entry := map[string]string{
			"id":    app.ID,
			"name":  app.candidateName(),
			"score": formatScore(app.TotalScore),
		}
		if app.Candidate != nil {
			if app.Candidate.Email != "" {
				entry["email"] = app.Candidate.Email
			}
			if app.Candidate.ResumeFilename != "" {
				entry["resume"] = app.Candidate.ResumeFilename
			}
		}
		if app.Breakdown != nil && len(app.Breakdown.Skills.Missing) > 0 {
			entry["missing"] = fmt.Sprint(app.Breakdown.Skills.Missing)
		}
		if app.ReviewedBy != "" {
			entry["reviewed_by"] = app.ReviewedBy
		}
		if len(app.Notes) > 0 {
			entry["notes"] = strconv.Itoa(len(app.Notes))
		}
		report[app.Status] = append(report[app.Status], entry)
	}
	return report
}

func formatScore(score *float64) string {
	if score == nil {
		return "unscored"
	}
	return strconv.FormatFloat(*score, 'f', 2, 64)
}
