// Package applications holds candidates, job descriptions and the
// applications that tie them together.
package applications

import (
	"path/filepath"

	"github.com/google/uuid"

	"github.com/spigell/resume-ats/internal/scoring"
	"github.com/spigell/resume-ats/internal/textutil"
)

type Candidate struct {
	ID             string `json:"id"`
	FullName       string `json:"full_name"`
	Email          string `json:"email,omitempty"`
	Phone          string `json:"phone,omitempty"`
	ResumeFilename string `json:"resume_filename,omitempty"`
	ResumePath     string `json:"resume_path,omitempty"`
	ExtractedText  string `json:"extracted_text,omitempty"`
	// Profile accepts the same shapes as scoring.Candidate.Profile.
	Profile any `json:"profile_json,omitempty"`
}

func NewCandidate(fullName, resumePath string) *Candidate {
	c := &Candidate{
		ID:         uuid.NewString(),
		FullName:   fullName,
		ResumePath: resumePath,
	}
	if resumePath != "" {
		c.ResumeFilename = filepath.Base(resumePath)
	}
	return c
}

// Record returns the scorer's view of the candidate.
func (c *Candidate) Record() scoring.Candidate {
	return scoring.Candidate{
		FullName:       c.FullName,
		ResumeFilename: c.ResumeFilename,
		ExtractedText:  c.ExtractedText,
		Profile:        c.Profile,
	}
}

// HasProfile reports whether the candidate carries a usable profile.
func (c *Candidate) HasProfile() bool {
	return scoring.ResolveProfile(c.Profile) != nil
}

// Skills returns the normalised profile skills.
func (c *Candidate) Skills() []string {
	p := scoring.ResolveProfile(c.Profile)
	if p == nil {
		return nil
	}
	return p.Skills
}

// Years returns the numeric profile years, falling back to years mentioned in
// the extracted text.
func (c *Candidate) Years() (int, bool) {
	if p := scoring.ResolveProfile(c.Profile); p != nil && p.YearsExperience != nil {
		return *p.YearsExperience, true
	}
	return textutil.ExtractYears(c.ExtractedText)
}

type JobDescription struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

func NewJobDescription(title, text string) *JobDescription {
	return &JobDescription{
		ID:    uuid.NewString(),
		Title: title,
		Text:  text,
	}
}

// Record returns the scorer's view of the job description. A nil receiver
// yields an empty description.
func (jd *JobDescription) Record() scoring.JobDescription {
	if jd == nil {
		return scoring.JobDescription{}
	}
	return scoring.JobDescription{Title: jd.Title, Text: jd.Text}
}
