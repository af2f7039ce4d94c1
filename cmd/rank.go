package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-ats/internal/applications"
	"github.com/spigell/resume-ats/internal/filtering"
	"github.com/spigell/resume-ats/internal/logger"
	"github.com/spigell/resume-ats/internal/processing"
	"github.com/spigell/resume-ats/internal/resumefile"
	"github.com/spigell/resume-ats/internal/source"
)

const (
	PromptShowRanking    = "Show ranking"
	PromptReportByStatus = "Report by status"
	PromptShowBreakdown  = "Show score breakdown of a candidate"
	PromptChangeStatus   = "Change status of a candidate"
	PromptAddNote        = "Add a review note"
	PromptDumpToFile     = "Dump applications to file"
	PromptExit           = "Exit"
	PromptBack           = "back"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{
		PromptShowRanking,
		PromptReportByStatus,
		PromptShowBreakdown,
		PromptChangeStatus,
		PromptAddNote,
		PromptDumpToFile,
		PromptExit,
	},
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Process configured candidates and rank them against the job description",
	Run: func(cmd *cobra.Command, _ []string) {
		rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().BoolP("yes", "y", false, "print the ranking and exit without the interactive menu")
	rankCmd.Flags().BoolP("force", "f", false, "re-extract text and profiles even when they are already known")
	rankCmd.Flags().String("reviewer", "", "default reviewer name for status changes and notes")

	viper.BindPFlag("reviewer", rankCmd.Flags().Lookup("reviewer"))
}

// RankEntry is one line of the printed ranking.
type RankEntry struct {
	Rank       int      `json:"rank"`
	ID         string   `json:"application_id"`
	Name       string   `json:"name"`
	Status     string   `json:"status"`
	ReviewedBy string   `json:"reviewed_by,omitempty"`
	TotalScore *float64 `json:"total_score"`
	Matched    []string `json:"matched,omitempty"`
	Missing    []string `json:"missing,omitempty"`
}

// rank is the main command for the cli.
func rank(cmd *cobra.Command) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume-ats", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if force, _ := cmd.Flags().GetBool("force"); force {
		if config.Processing == nil {
			config.Processing = &ProcessingConfig{}
		}
		config.Processing.Force = true
	}

	apps, err := buildRanking(ctx, config, resumefile.New(logger), logger)
	if err != nil {
		logger.Fatal("ranking candidates", zap.Error(err))
	}

	if apps.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no applications left after filters"))
		return
	}

	out := cmd.OutOrStdout()

	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		if err := printRanking(out, apps); err != nil {
			logger.Fatal("printing ranking", zap.Error(err))
		}
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		logger.Info("current list of applications", zap.Int("count", apps.Len()))

		if err := handleAction(action, out, logger, apps); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

// buildRanking processes every configured candidate, scores it against the
// job description and returns the filtered, ordered applications.
func buildRanking(ctx context.Context, config *Config, reader *resumefile.Reader, log *zap.Logger) (*applications.Applications, error) {
	jdText, err := source.Load(ctx, reader, source.Source{
		Name:  "job description",
		File:  config.JobDescription.File,
		Value: config.JobDescription.Text,
	})
	if err != nil {
		return nil, err
	}
	jd := applications.NewJobDescription(config.JobDescription.Title, jdText)
	jdLog := logger.WithFields(log, logger.JobDescriptionFields(jd.ID, jd.Title)...)

	candidates := make([]*applications.Candidate, 0, len(config.Candidates))
	withResume := make([]*applications.Candidate, 0, len(config.Candidates))
	for _, cc := range config.Candidates {
		c := applications.NewCandidate(cc.FullName, cc.Resume)
		c.Email = cc.Email
		c.Phone = cc.Phone
		c.ExtractedText = cc.Text
		c.Profile = cc.Profile

		candidates = append(candidates, c)
		if c.ResumePath != "" {
			withResume = append(withResume, c)
		}
	}

	proc := config.processing()
	jobs, err := processing.New(reader, log).ProcessAll(ctx, withResume, proc.Force, proc.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("processing candidates: %w", err)
	}
	for _, job := range jobs {
		if job.Status == processing.JobFailed {
			jdLog.Warn("candidate will be scored without a processed résumé",
				zap.String("candidate_id", job.EntityID),
				zap.String("error", job.ErrorMessage),
			)
		}
	}

	overrides := config.weightOverrides()
	now := time.Now()
	apps := &applications.Applications{}
	for i, c := range candidates {
		app := applications.New(c, jd)
		if err := restoreReview(app, config.Candidates[i], now); err != nil {
			return nil, fmt.Errorf("candidate %q: %w", c.FullName, err)
		}
		result := app.Evaluate(jd, overrides)
		apps.Items = append(apps.Items, app)

		logger.WithCandidateFields(jdLog, c.ID, c.FullName, c.ResumeFilename).
			Debug("candidate scored", zap.String("status", app.Status), zap.Float64("total_score", result.TotalScore))
	}

	jdLog.Info("candidates scored", zap.Int("count", apps.Len()))

	apps, err = filtering.Run(ctx, config.filteringConfig(), filtering.Deps{Logger: jdLog}, filtering.Default(), apps)
	if err != nil {
		return nil, fmt.Errorf("filtering applications: %w", err)
	}

	if err := apps.SortByScore(config.sortOrder()); err != nil {
		return nil, err
	}

	return apps, nil
}

// restoreReview applies the status and notes a candidate already has in the
// config. Candidates without a status stay new.
func restoreReview(app *applications.Application, cc *CandidateConfig, at time.Time) error {
	if cc.Status != "" {
		if err := app.Review(cc.Status, cc.ReviewedBy, at); err != nil {
			return err
		}
	}
	for _, n := range cc.Notes {
		if _, err := app.AddNote(n.Author, n.Text, at); err != nil {
			return err
		}
	}
	return nil
}

// reviewApplication moves app to status on behalf of reviewer and records
// note when it is not blank.
func reviewApplication(app *applications.Application, status, reviewer, note string, at time.Time) error {
	if err := app.Review(status, reviewer, at); err != nil {
		return err
	}
	if strings.TrimSpace(note) == "" {
		return nil
	}
	_, err := app.AddNote(reviewer, note, at)
	return err
}

func ranking(apps *applications.Applications) []RankEntry {
	entries := make([]RankEntry, 0, apps.Len())
	for i, app := range apps.Items {
		entry := RankEntry{
			Rank:       i + 1,
			ID:         app.ID,
			Status:     app.Status,
			ReviewedBy: app.ReviewedBy,
			TotalScore: app.TotalScore,
		}
		if app.Candidate != nil {
			entry.Name = app.Candidate.FullName
		}
		if app.Breakdown != nil {
			entry.Matched = app.Breakdown.Skills.Matched
			entry.Missing = app.Breakdown.Skills.Missing
		}
		entries = append(entries, entry)
	}
	return entries
}

func printRanking(out io.Writer, apps *applications.Applications) error {
	return writeJSON(out, ranking(apps))
}

func handleAction(action string, out io.Writer, logger *zap.Logger, apps *applications.Applications) error {
	switch action {
	case PromptShowRanking:
		return printRanking(out, apps)
	case PromptReportByStatus:
		pretty, _ := json.MarshalIndent(apps.ReportByStatus(), "", "  ")
		logger.Info(string(pretty), zap.Int("applications count", apps.Len()))
		return nil
	case PromptShowBreakdown:
		return showBreakdown(out, apps)
	case PromptChangeStatus:
		return changeStatus(logger, apps)
	case PromptAddNote:
		return addNote(logger, apps)
	case PromptDumpToFile:
		filename, err := apps.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// selectApplication asks for a candidate from the current ranking. It returns
// nil when the user goes back.
func selectApplication(apps *applications.Applications) (*applications.Application, error) {
	items := make([]string, 0, apps.Len()+1)
	for _, entry := range ranking(apps) {
		items = append(items, fmt.Sprintf("%d. %s (%s, %s)", entry.Rank, entry.Name, formatTotal(entry.TotalScore), entry.Status))
	}

	candidatePrompt := promptui.Select{
		Label: "Choose a candidate and press ENTER",
		Items: append(items, PromptBack),
	}

	idx, selected, err := candidatePrompt.Run()
	if err != nil {
		return nil, err
	}
	if selected == PromptBack {
		return nil, nil
	}
	return apps.Items[idx], nil
}

func showBreakdown(out io.Writer, apps *applications.Applications) error {
	app, err := selectApplication(apps)
	if err != nil || app == nil {
		return err
	}

	return writeJSON(out, map[string]any{
		"application_id": app.ID,
		"name":           app.Candidate.FullName,
		"status":         app.Status,
		"total_score":    app.TotalScore,
		"breakdown":      app.Breakdown,
		"notes":          app.Notes,
	})
}

func changeStatus(logger *zap.Logger, apps *applications.Applications) error {
	app, err := selectApplication(apps)
	if err != nil || app == nil {
		return err
	}

	statusPrompt := promptui.Select{
		Label: fmt.Sprintf("New status for %s (now %s)", app.Candidate.FullName, app.Status),
		Items: append(applications.Statuses(), PromptBack),
	}
	_, status, err := statusPrompt.Run()
	if err != nil {
		return err
	}
	if status == PromptBack {
		return nil
	}

	reviewer, err := promptReviewer()
	if err != nil {
		return err
	}

	note, err := (&promptui.Prompt{Label: "Note (optional)"}).Run()
	if err != nil {
		return err
	}

	if err := reviewApplication(app, status, reviewer, note, time.Now()); err != nil {
		return err
	}

	logger.Info("application status changed",
		zap.String("application_id", app.ID),
		zap.String("status", app.Status),
		zap.String("reviewed_by", app.ReviewedBy),
	)
	return nil
}

func addNote(logger *zap.Logger, apps *applications.Applications) error {
	app, err := selectApplication(apps)
	if err != nil || app == nil {
		return err
	}

	author, err := promptReviewer()
	if err != nil {
		return err
	}

	text, err := (&promptui.Prompt{Label: "Note", Validate: required}).Run()
	if err != nil {
		return err
	}

	note, err := app.AddNote(author, text, time.Now())
	if err != nil {
		return err
	}

	logger.Info("review note added",
		zap.String("application_id", app.ID),
		zap.String("note_id", note.ID),
		zap.String("author", note.Author),
	)
	return nil
}

func promptReviewer() (string, error) {
	reviewerPrompt := promptui.Prompt{
		Label:    "Reviewer",
		Default:  viper.GetString("reviewer"),
		Validate: required,
	}
	return reviewerPrompt.Run()
}

func required(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("value is required")
	}
	return nil
}

func formatTotal(score *float64) string {
	if score == nil {
		return "unscored"
	}
	return fmt.Sprintf("%.2f", *score)
}
