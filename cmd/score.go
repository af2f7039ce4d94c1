package cmd

import (
	"context"
	"fmt"
	"io"
	"maps"
	"math"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/resume-ats/internal/logger"
	"github.com/spigell/resume-ats/internal/profile"
	"github.com/spigell/resume-ats/internal/resumefile"
	"github.com/spigell/resume-ats/internal/scoring"
	"github.com/spigell/resume-ats/internal/source"
)

type scoreOptions struct {
	jdFile     string
	jdText     string
	resume     string
	resumeText string
	name       string
	profile    string
	weights    map[string]string
}

var scoreOpts scoreOptions

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a single résumé against a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		logger := newLogger()

		if err := score(cmd.Context(), cmd.OutOrStdout(), resumefile.New(logger), logger, scoreOpts); err != nil {
			logger.Fatal("scoring candidate", zap.Error(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVar(&scoreOpts.jdFile, "jd", "", "job description file")
	scoreCmd.Flags().StringVar(&scoreOpts.jdText, "jd-text", "", "job description text, used when --jd is not set")
	scoreCmd.Flags().StringVar(&scoreOpts.resume, "resume", "", "résumé file (.pdf, .docx or text)")
	scoreCmd.Flags().StringVar(&scoreOpts.resumeText, "resume-text", "", "résumé text, used when --resume is not set")
	scoreCmd.Flags().StringVar(&scoreOpts.name, "name", "", "candidate full name")
	scoreCmd.Flags().StringVar(&scoreOpts.profile, "profile", "", "candidate profile as a JSON object; extracted from the résumé when empty")
	scoreCmd.Flags().StringToStringVar(&scoreOpts.weights, "weights", nil, "weight overrides, e.g. skills=0.6,keywords=0.1")
}

func score(ctx context.Context, out io.Writer, reader source.Reader, log *zap.Logger, opts scoreOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	overrides, err := parseWeightFlags(opts.weights)
	if err != nil {
		return err
	}

	jdText, err := source.Load(ctx, reader, source.Source{Name: "job description", File: opts.jdFile, Value: opts.jdText})
	if err != nil {
		return err
	}

	resumeText, err := source.Load(ctx, reader, source.Source{Name: "resume", File: opts.resume, Value: opts.resumeText})
	if err != nil {
		return err
	}

	candidate := scoring.Candidate{
		FullName:      opts.name,
		ExtractedText: resumeText,
	}
	if opts.resume != "" {
		candidate.ResumeFilename = filepath.Base(opts.resume)
	}
	if strings.TrimSpace(opts.profile) != "" {
		candidate.Profile = opts.profile
		if scoring.ResolveProfile(opts.profile) == nil {
			log.Warn("ignoring malformed profile", zap.String("profile", opts.profile))
		}
	} else {
		candidate.Profile = profile.Extract(resumeText)
	}

	result := scoring.Score(candidate, scoring.JobDescription{Text: jdText}, overrides)

	log.Info("candidate scored",
		append(logger.CandidateFields("", candidate.FullName, candidate.ResumeFilename),
			zap.Float64("total_score", result.TotalScore),
		)...,
	)

	return writeJSON(out, result)
}

// parseWeightFlags turns k=v flag pairs into weight overrides. Unlike the
// scorer itself it rejects unknown factors and values that are not
// finite non-negative numbers.
func parseWeightFlags(flags map[string]string) (*scoring.WeightOverrides, error) {
	if len(flags) == 0 {
		return nil, nil
	}

	raw := make(map[string]any, len(flags))
	for _, key := range slices.Sorted(maps.Keys(flags)) {
		name := strings.ToLower(strings.TrimSpace(key))
		if !isFactor(name) {
			return nil, fmt.Errorf("unknown weight %q", key)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(flags[key]), 64)
		if err != nil {
			return nil, fmt.Errorf("weight %q: %w", key, err)
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, fmt.Errorf("weight %q must be a finite number", key)
		}
		if value < 0 {
			return nil, fmt.Errorf("weight %q must not be negative", key)
		}
		raw[name] = value
	}

	overrides := scoring.ParseWeightOverrides(raw)
	return &overrides, nil
}
