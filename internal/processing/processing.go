// Package processing reads candidate résumés and extracts their profiles,
// tracking every attempt as a job.
package processing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/resume-ats/internal/applications"
	"github.com/spigell/resume-ats/internal/logger"
	"github.com/spigell/resume-ats/internal/profile"
)

const (
	JobQueued     = "queued"
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobFailed     = "failed"
)

const EntityCandidate = "candidate"

const defaultConcurrency = 4

// ErrNoResume is returned for candidates without a résumé path.
var ErrNoResume = errors.New("candidate has no resume")

// Job records a single processing attempt.
type Job struct {
	ID           string     `json:"id"`
	EntityType   string     `json:"entity_type"`
	EntityID     string     `json:"entity_id"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TextReader turns a résumé file into text.
type TextReader interface {
	ReadText(ctx context.Context, path string) (string, error)
}

type Processor struct {
	reader TextReader
	logger *zap.Logger
	now    func() time.Time
}

func New(reader TextReader, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{
		reader: reader,
		logger: log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Process reads the candidate résumé and extracts its profile. Text and
// profile already present on the candidate are only replaced when force is
// set. A failed attempt is returned as a failed job together with the error.
func (p *Processor) Process(ctx context.Context, c *applications.Candidate, force bool) (*Job, error) {
	job := &Job{
		ID:         uuid.NewString(),
		EntityType: EntityCandidate,
		EntityID:   c.ID,
		Status:     JobQueued,
		CreatedAt:  p.now(),
	}

	log := logger.WithCandidateFields(p.logger, c.ID, c.FullName, c.ResumeFilename).
		With(zap.String("job_id", job.ID))

	started := p.now()
	job.Status = JobProcessing
	job.StartedAt = &started
	log.Debug("processing candidate", zap.Bool("force", force))

	text, err := p.read(ctx, c)
	if err != nil {
		p.fail(job, err)
		log.Warn("candidate processing failed", zap.Error(err))
		return job, fmt.Errorf("process candidate %s: %w", c.ID, err)
	}

	if force || c.ExtractedText == "" {
		c.ExtractedText = text
	}
	if force || c.Profile == nil {
		c.Profile = profile.Extract(text)
	}

	completed := p.now()
	job.Status = JobCompleted
	job.CompletedAt = &completed
	log.Info("candidate processed", logger.TextPreview(text))

	return job, nil
}

func (p *Processor) read(ctx context.Context, c *applications.Candidate) (string, error) {
	if strings.TrimSpace(c.ResumePath) == "" {
		return "", ErrNoResume
	}
	return p.reader.ReadText(ctx, c.ResumePath)
}

func (p *Processor) fail(job *Job, err error) {
	completed := p.now()
	job.Status = JobFailed
	job.ErrorMessage = err.Error()
	job.CompletedAt = &completed
}

// ProcessAll processes candidates with at most concurrency attempts in
// flight. Failed candidates are recorded on their jobs and do not stop the
// batch. The returned jobs follow the order of candidates; a candidate left
// unprocessed because ctx was cancelled has a nil job.
func (p *Processor) ProcessAll(ctx context.Context, candidates []*applications.Candidate, force bool, concurrency int) ([]*Job, error) {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	jobs := make([]*Job, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, c := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// The error is already recorded on the job.
			jobs[i], _ = p.Process(gctx, c, force)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return jobs, err
	}

	failed := 0
	for _, job := range jobs {
		if job.Status == JobFailed {
			failed++
		}
	}
	p.logger.Info("candidates processed",
		zap.Int("total", len(jobs)),
		zap.Int("failed", failed),
	)

	return jobs, nil
}
