// Package profile derives a coarse candidate profile from raw résumé text.
package profile

import (
	"slices"
	"strings"

	"github.com/spigell/resume-ats/internal/textutil"
)

// vocabulary is the fixed list of technology terms recognised in résumés. It is
// kept sorted so extracted skills come out in lexicographic order.
var vocabulary = [...]string{
	"aws",
	"django",
	"docker",
	"flask",
	"git",
	"javascript",
	"kubernetes",
	"mysql",
	"postgresql",
	"python",
	"react",
	"sql",
	"typescript",
}

// Profile is the structured summary of a résumé.
type Profile struct {
	Skills          []string `json:"skills"`
	YearsExperience *int     `json:"years_experience"`
	Education       *string  `json:"education"`
}

// Vocabulary returns a copy of the recognised skill terms.
func Vocabulary() []string {
	terms := vocabulary
	return terms[:]
}

// Extract builds a Profile from raw résumé text. Skills are vocabulary terms
// found anywhere in the text (substring match), years come from the first
// "<n> years" phrase and education is the highest-priority level mentioned.
func Extract(text string) Profile {
	lowered := strings.ToLower(text)

	skills := make([]string, 0)
	for _, term := range vocabulary {
		if strings.Contains(lowered, term) {
			skills = append(skills, term)
		}
	}
	slices.Sort(skills)

	p := Profile{Skills: skills}

	if years, ok := textutil.ExtractYears(lowered); ok {
		p.YearsExperience = &years
	}

	if level, ok := textutil.DetectEducation(lowered); ok {
		p.Education = &level
	}

	return p
}
