// Package scoring computes how well a candidate matches a job description.
//
// The score is a weighted sum of four factors, each in the 0-100 range:
// skills (required terms found in the candidate), experience (years against
// the stated requirement), education (required level mentioned by the
// candidate) and keywords (token overlap). All functions are pure and safe
// for concurrent use.
package scoring

import (
	"strconv"
	"strings"

	"github.com/spigell/resume-ats/internal/textutil"
)

// maxRequiredTerms caps how many distinct job description tokens are treated
// as required skill terms.
const maxRequiredTerms = 20

// Result is the outcome of scoring one candidate against one job description.
type Result struct {
	TotalScore float64   `json:"total_score"`
	Breakdown  Breakdown `json:"breakdown"`
}

// Breakdown explains a Result factor by factor.
type Breakdown struct {
	Weights    Weights             `json:"weights"`
	Skills     SkillsBreakdown     `json:"skills"`
	Experience ExperienceBreakdown `json:"experience"`
	Education  EducationBreakdown  `json:"education"`
	Keywords   KeywordsBreakdown   `json:"keywords"`
}

type SkillsBreakdown struct {
	Score   float64  `json:"score"`
	Matched []string `json:"matched"`
	Missing []string `json:"missing"`
}

type ExperienceBreakdown struct {
	Score          float64 `json:"score"`
	RequiredYears  *int    `json:"required_years"`
	CandidateYears *int    `json:"candidate_years"`
}

type EducationBreakdown struct {
	Score    float64 `json:"score"`
	Required *string `json:"required"`
}

type KeywordsBreakdown struct {
	Score float64 `json:"score"`
}

// Score matches candidate against jd. Overrides may be nil to use the default
// weights. Malformed optional input never fails the call; it only lowers the
// affected factor.
func Score(candidate Candidate, jd JobDescription, overrides *WeightOverrides) Result {
	weights := overrides.Normalize()

	prof := ResolveProfile(candidate.Profile)
	candidateText := compositeText(candidate, prof)
	candidateTerms := textutil.TokenSet(candidateText)

	skillScore, skills := scoreSkills(jd.Text, candidateTerms, prof)
	experienceScore, experience := scoreExperience(jd.Text, candidateText, prof)
	educationScore, education := scoreEducation(jd.Text, candidateText)
	keywordScore := scoreKeywords(textutil.TokenSet(jd.Text), candidateTerms)

	total := weights.Skills*skillScore +
		weights.Experience*experienceScore +
		weights.Education*educationScore +
		weights.Keywords*keywordScore

	return Result{
		TotalScore: round2(total),
		Breakdown: Breakdown{
			Weights:    weights,
			Skills:     skills,
			Experience: experience,
			Education:  education,
			Keywords:   KeywordsBreakdown{Score: round2(keywordScore)},
		},
	}
}

func scoreSkills(jdText string, candidateTerms map[string]struct{}, prof *CandidateProfile) (float64, SkillsBreakdown) {
	required := textutil.UniqueTokens(jdText, maxRequiredTerms)

	b := SkillsBreakdown{
		Matched: make([]string, 0, len(required)),
		Missing: make([]string, 0),
	}
	for _, term := range required {
		if _, ok := candidateTerms[term]; ok {
			b.Matched = append(b.Matched, term)
		} else {
			b.Missing = append(b.Missing, term)
		}
	}

	score := ratio(len(b.Matched), len(required))

	if prof != nil && len(prof.Skills) > 0 && len(required) > 0 {
		profileSkills := prof.SkillSet()
		matches := 0
		for _, term := range required {
			if _, ok := profileSkills[term]; ok {
				matches++
			}
		}
		score = max(score, ratio(matches, len(required)))
	}

	b.Score = round2(score)
	return score, b
}

func scoreExperience(jdText, candidateText string, prof *CandidateProfile) (float64, ExperienceBreakdown) {
	var b ExperienceBreakdown

	if required, ok := textutil.ExtractYears(jdText); ok {
		b.RequiredYears = &required
	}

	if prof != nil && prof.YearsExperience != nil {
		years := *prof.YearsExperience
		b.CandidateYears = &years
	} else if years, ok := textutil.ExtractYears(candidateText); ok {
		b.CandidateYears = &years
	}

	var score float64
	switch {
	case b.RequiredYears == nil:
		score = 100
	case b.CandidateYears == nil:
		score = 0
	case *b.RequiredYears <= 0:
		score = 100
	default:
		fraction := float64(*b.CandidateYears) / float64(*b.RequiredYears)
		score = min(max(fraction, 0), 1) * 100
	}

	b.Score = round2(score)
	return score, b
}

func scoreEducation(jdText, candidateText string) (float64, EducationBreakdown) {
	var b EducationBreakdown

	required, ok := textutil.DetectEducation(jdText)
	if !ok {
		b.Score = 100
		return 100, b
	}
	b.Required = &required

	var score float64
	if strings.Contains(strings.ToLower(candidateText), required) {
		score = 100
	}

	b.Score = score
	return score, b
}

func scoreKeywords(jdTerms, candidateTerms map[string]struct{}) float64 {
	intersection := 0
	for term := range jdTerms {
		if _, ok := candidateTerms[term]; ok {
			intersection++
		}
	}
	union := len(jdTerms) + len(candidateTerms) - intersection
	return ratio(intersection, union)
}

// ratio returns part/whole as a percentage, or 0 when whole is zero.
func ratio(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// round2 rounds v to two decimals based on its exact binary value, so 2.675
// becomes 2.67.
func round2(v float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return rounded
}
