package cmd

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
job-description:
  title: Backend Engineer
  text: Python Flask PostgreSQL 3 years Bachelor
scoring:
  weights:
    skills: 0.6
    keywords: 0
processing:
  concurrency: 2
candidates:
  - full-name: Jane Doe
    email: jane@example.com
    text: Python Flask PostgreSQL 4 years Bachelor
    profile:
      skills: [python, docker]
      years_experience: 4
    status: shortlisted
    reviewed-by: lead
    notes:
      - author: lead
        text: strong on databases
  - full-name: John Roe
    resume: resumes/john.pdf
filters:
  min-score: 10
  status: new
  skills: [python]
  min-experience: 1
  sort: score_asc
`

func readConfig(t *testing.T, data string) (*Config, error) {
	t.Helper()

	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(data)))
	return decodeConfig(v)
}

func TestDecodeConfig(t *testing.T) {
	t.Parallel()

	config, err := readConfig(t, sampleConfig)
	require.NoError(t, err)

	assert.Equal(t, "Backend Engineer", config.JobDescription.Title)
	require.Len(t, config.Candidates, 2)
	assert.Equal(t, "Jane Doe", config.Candidates[0].FullName)
	assert.Equal(t, "resumes/john.pdf", config.Candidates[1].Resume)
	assert.Equal(t, "shortlisted", config.Candidates[0].Status)
	assert.Equal(t, "lead", config.Candidates[0].ReviewedBy)
	require.Len(t, config.Candidates[0].Notes, 1)
	assert.Equal(t, "strong on databases", config.Candidates[0].Notes[0].Text)
	assert.Empty(t, config.Candidates[1].Status)
	assert.Equal(t, 2, config.processing().Concurrency)
	assert.Equal(t, "score_asc", config.sortOrder())

	prof, ok := config.Candidates[0].Profile.(map[string]any)
	require.True(t, ok, "profile must decode as an object, got %T", config.Candidates[0].Profile)
	assert.Contains(t, prof, "years_experience")

	overrides := config.weightOverrides()
	require.NotNil(t, overrides)
	require.NotNil(t, overrides.Skills)
	assert.InDelta(t, 0.6, *overrides.Skills, 1e-9)
	require.NotNil(t, overrides.Keywords)
	assert.Zero(t, *overrides.Keywords)
	assert.Nil(t, overrides.Experience)

	fc := config.filteringConfig()
	require.NotNil(t, fc)
	require.NotNil(t, fc.MinScore)
	assert.InDelta(t, 10.0, *fc.MinScore, 1e-9)
	assert.Nil(t, fc.MaxScore)
	assert.Equal(t, "new", fc.Status)
	assert.Equal(t, []string{"python"}, fc.Skills)
	require.NotNil(t, fc.MinExperience)
	assert.Equal(t, 1, *fc.MinExperience)
}

func TestDecodeConfigMinimal(t *testing.T) {
	t.Parallel()

	config, err := readConfig(t, `
job-description:
  file: jd.txt
candidates:
  - full-name: Ann
    resume: ann.docx
`)
	require.NoError(t, err)
	assert.Nil(t, config.weightOverrides())
	assert.Nil(t, config.filteringConfig())
	assert.Empty(t, config.sortOrder())
	assert.Equal(t, ProcessingConfig{}, config.processing())
}

func TestDecodeConfigValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config string
		expect string
	}{
		{
			name:   "missing job description",
			config: "candidates:\n  - full-name: Ann\n    text: go\n",
			expect: "JobDescription",
		},
		{
			name:   "job description without text or file",
			config: "job-description:\n  title: x\ncandidates:\n  - full-name: Ann\n    text: go\n",
			expect: "File",
		},
		{
			name:   "no candidates",
			config: "job-description:\n  text: go\n",
			expect: "Candidates",
		},
		{
			name:   "candidate without resume or text",
			config: "job-description:\n  text: go\ncandidates:\n  - full-name: Ann\n",
			expect: "Resume",
		},
		{
			name:   "candidate without name",
			config: "job-description:\n  text: go\ncandidates:\n  - text: go\n",
			expect: "FullName",
		},
		{
			name:   "bad email",
			config: "job-description:\n  text: go\ncandidates:\n  - full-name: Ann\n    text: go\n    email: nope\n",
			expect: "Email",
		},
		{
			name:   "unknown status",
			config: "job-description:\n  text: go\ncandidates:\n  - full-name: Ann\n    text: go\nfilters:\n  status: hired\n",
			expect: "Status",
		},
		{
			name:   "unknown candidate status",
			config: "job-description:\n  text: go\ncandidates:\n  - full-name: Ann\n    text: go\n    status: hired\n",
			expect: "Candidates[0].Status",
		},
		{
			name:   "note without author",
			config: "job-description:\n  text: go\ncandidates:\n  - full-name: Ann\n    text: go\n    notes:\n      - text: fine\n",
			expect: "Author",
		},
		{
			name:   "unknown sort",
			config: "job-description:\n  text: go\ncandidates:\n  - full-name: Ann\n    text: go\nfilters:\n  sort: name\n",
			expect: "Sort",
		},
		{
			name:   "score out of range",
			config: "job-description:\n  text: go\ncandidates:\n  - full-name: Ann\n    text: go\nfilters:\n  max-score: 120\n",
			expect: "MaxScore",
		},
		{
			name:   "inverted score range",
			config: "job-description:\n  text: go\ncandidates:\n  - full-name: Ann\n    text: go\nfilters:\n  min-score: 80\n  max-score: 20\n",
			expect: "greater than",
		},
		{
			name:   "negative concurrency",
			config: "job-description:\n  text: go\ncandidates:\n  - full-name: Ann\n    text: go\nprocessing:\n  concurrency: -1\n",
			expect: "Concurrency",
		},
		{
			name:   "unknown weight",
			config: "job-description:\n  text: go\ncandidates:\n  - full-name: Ann\n    text: go\nscoring:\n  weights:\n    culture: 1\n",
			expect: "unknown scoring weight",
		},
		{
			name:   "non numeric weight",
			config: "job-description:\n  text: go\ncandidates:\n  - full-name: Ann\n    text: go\nscoring:\n  weights:\n    skills: high\n",
			expect: "must be a number",
		},
		{
			name:   "non finite weight",
			config: "job-description:\n  text: go\ncandidates:\n  - full-name: Ann\n    text: go\nscoring:\n  weights:\n    skills: .nan\n",
			expect: "must be a number",
		},
		{
			name:   "negative weight",
			config: "job-description:\n  text: go\ncandidates:\n  - full-name: Ann\n    text: go\nscoring:\n  weights:\n    skills: -1\n",
			expect: "must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := readConfig(t, tt.config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expect)
		})
	}
}
