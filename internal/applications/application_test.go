package applications

import (
	"encoding/json"
	"os"
	"slices"
	"testing"
	"time"
)

func scored(name string, score *float64) *Application {
	app := New(&Candidate{FullName: name}, nil)
	app.TotalScore = score
	return app
}

func score(v float64) *float64 { return &v }

func names(v *Applications) []string {
	out := make([]string, 0, v.Len())
	for _, app := range v.Items {
		out = append(out, app.candidateName())
	}
	return out
}

func TestSortByScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		order  string
		expect []string
	}{
		{name: "default is descending", order: "", expect: []string{"b", "c", "d", "a", "e"}},
		{name: "descending puts unscored last", order: SortScoreDesc, expect: []string{"b", "c", "d", "a", "e"}},
		{name: "ascending puts unscored first", order: SortScoreAsc, expect: []string{"a", "e", "d", "c", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			apps := &Applications{Items: []*Application{
				scored("a", nil),
				scored("b", score(90)),
				scored("c", score(55.5)),
				scored("d", score(10)),
				scored("e", nil),
			}}

			if err := apps.SortByScore(tt.order); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := names(apps); !slices.Equal(got, tt.expect) {
				t.Fatalf("expected order %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestSortByScoreKeepsTies(t *testing.T) {
	t.Parallel()

	apps := &Applications{Items: []*Application{
		scored("first", score(50)),
		scored("second", score(50)),
		scored("top", score(70)),
	}}
	if err := apps.SortByScore(SortScoreDesc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expect := []string{"top", "first", "second"}
	if got := names(apps); !slices.Equal(got, expect) {
		t.Fatalf("expected order %v, got %v", expect, got)
	}
}

func TestSortByScoreUnknownOrder(t *testing.T) {
	t.Parallel()

	apps := &Applications{}
	if err := apps.SortByScore("name_asc"); err == nil {
		t.Fatalf("expected error for unknown sort order")
	}
}

func TestKeep(t *testing.T) {
	t.Parallel()

	a, b, c := scored("a", score(10)), scored("b", score(80)), scored("c", nil)
	apps := &Applications{Items: []*Application{a, b, c}}

	excluded := apps.Keep(func(app *Application) bool {
		return app.TotalScore != nil && *app.TotalScore > 50
	})

	if !slices.Equal(excluded, []string{a.ID, c.ID}) {
		t.Fatalf("unexpected excluded ids: %v", excluded)
	}
	if apps.Len() != 1 || apps.Items[0] != b {
		t.Fatalf("expected only b to be left, got %v", names(apps))
	}
	if apps.FindByID(a.ID) != nil {
		t.Fatalf("excluded application is still found")
	}
	if apps.FindByID(b.ID) != b {
		t.Fatalf("kept application is not found")
	}
}

func TestEvaluateStoresResult(t *testing.T) {
	t.Parallel()

	jd := NewJobDescription("Backend", "Python Flask PostgreSQL 3 years Bachelor")
	candidate := NewCandidate("Jane Doe", "/tmp/resumes/jane.txt")
	candidate.ExtractedText = "Python Flask PostgreSQL 4 years Bachelor"

	app := New(candidate, jd)
	if app.Status != StatusNew {
		t.Fatalf("expected new status, got %q", app.Status)
	}
	if app.JobDescriptionID != jd.ID {
		t.Fatalf("expected job description id %q, got %q", jd.ID, app.JobDescriptionID)
	}
	if candidate.ResumeFilename != "jane.txt" {
		t.Fatalf("unexpected resume filename %q", candidate.ResumeFilename)
	}

	result := app.Evaluate(jd, nil)
	if app.TotalScore == nil || *app.TotalScore != result.TotalScore {
		t.Fatalf("expected stored total score %v, got %v", result.TotalScore, app.TotalScore)
	}
	if result.TotalScore <= 90 {
		t.Fatalf("expected a strong match, got %v", result.TotalScore)
	}
	if app.Breakdown == nil || app.Breakdown.Experience.CandidateYears == nil {
		t.Fatalf("expected breakdown with candidate years")
	}
}

func TestReview(t *testing.T) {
	t.Parallel()

	app := New(&Candidate{FullName: "Ann"}, nil)
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.FixedZone("X", 3600))

	if err := app.Review(StatusShortlisted, "hr@example.com", at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if app.Status != StatusShortlisted || app.ReviewedBy != "hr@example.com" {
		t.Fatalf("review not applied: %+v", app)
	}
	if app.ReviewedAt == nil || !app.ReviewedAt.Equal(at) || app.ReviewedAt.Location() != time.UTC {
		t.Fatalf("unexpected reviewed at: %v", app.ReviewedAt)
	}

	if err := app.Review("hired", "hr@example.com", at); err == nil {
		t.Fatalf("expected error for unknown status")
	}
	if app.Status != StatusShortlisted {
		t.Fatalf("status changed on failed review: %q", app.Status)
	}
}

func TestAddNote(t *testing.T) {
	t.Parallel()

	app := New(&Candidate{FullName: "Ann"}, nil)
	at := time.Date(2024, 5, 2, 9, 30, 0, 0, time.FixedZone("X", -7200))

	note, err := app.AddNote("  Lead  ", " strong system design ", at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if note.Author != "Lead" || note.Text != "strong system design" || note.ID == "" {
		t.Fatalf("unexpected note: %+v", note)
	}
	if !note.CreatedAt.Equal(at) || note.CreatedAt.Location() != time.UTC {
		t.Fatalf("unexpected created at: %v", note.CreatedAt)
	}

	for _, bad := range [][2]string{{"", "text"}, {"Lead", "   "}} {
		if _, err := app.AddNote(bad[0], bad[1], at); err == nil {
			t.Fatalf("expected error for author %q text %q", bad[0], bad[1])
		}
	}
	if len(app.Notes) != 1 || app.Notes[0] != note {
		t.Fatalf("unexpected notes: %+v", app.Notes)
	}
}

func TestReportByStatus(t *testing.T) {
	t.Parallel()

	ann := scored("Ann", score(81.5))
	ann.Candidate.Email = "ann@example.com"
	bob := scored("Bob", nil)
	if err := bob.Review(StatusRejected, "lead", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := bob.AddNote("lead", "no go experience", time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	report := (&Applications{Items: []*Application{ann, bob}}).ReportByStatus()

	newEntries := report[StatusNew]
	if len(newEntries) != 1 {
		t.Fatalf("expected 1 new entry, got %d", len(newEntries))
	}
	if newEntries[0]["score"] != "81.50" || newEntries[0]["email"] != "ann@example.com" {
		t.Fatalf("unexpected entry: %v", newEntries[0])
	}

	rejected := report[StatusRejected]
	if len(rejected) != 1 {
		t.Fatalf("expected 1 rejected entry, got %d", len(rejected))
	}
	if rejected[0]["score"] != "unscored" || rejected[0]["reviewed_by"] != "lead" || rejected[0]["notes"] != "1" {
		t.Fatalf("unexpected entry: %v", rejected[0])
	}
}

func TestDumpToTmpFile(t *testing.T) {
	t.Parallel()

	apps := &Applications{Items: []*Application{scored("Ann", score(12))}}
	path, err := apps.DumpToTmpFile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { os.Remove(path) })

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read dump: %v", err)
	}

	var decoded Applications
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode dump: %v", err)
	}
	if decoded.Len() != 1 || decoded.Items[0].Candidate.FullName != "Ann" || *decoded.Items[0].TotalScore != 12 {
		t.Fatalf("unexpected dump content: %s", data)
	}
}

func TestStatuses(t *testing.T) {
	t.Parallel()

	got := Statuses()
	got[0] = "mutated"
	if !ValidStatus(StatusNew) {
		t.Fatalf("statuses must not be mutable through Statuses")
	}
	if ValidStatus("mutated") || ValidStatus("") {
		t.Fatalf("unexpected valid status")
	}
}
