package scoring

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/spigell/resume-ats/internal/profile"
)

// Candidate is the scorer's view of a candidate.
type Candidate struct {
	FullName       string `json:"full_name,omitempty"`
	ResumeFilename string `json:"resume_filename,omitempty"`
	ExtractedText  string `json:"extracted_text,omitempty"`
	// Profile may be a profile.Profile (or pointer to one), a decoded JSON
	// object, a JSON-encoded object as string, []byte or json.RawMessage, or
	// nil. Anything else is treated as no profile.
	Profile any `json:"profile_json,omitempty"`
}

// JobDescription is the scorer's view of a job description. Text is the only
// signal used for scoring.
type JobDescription struct {
	Title string `json:"title,omitempty"`
	Text  string `json:"text"`
}

// CandidateProfile is a caller-supplied profile normalised for scoring.
type CandidateProfile struct {
	// Skills are trimmed, lowercased and never empty strings.
	Skills []string
	// YearsExperience is set only when the supplied value was numeric.
	YearsExperience *int
	// Education is the supplied education value as text, empty when absent.
	Education string

	yearsLiteral string
	hasYears     bool
}

// SkillSet returns the profile skills as a set.
func (p *CandidateProfile) SkillSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Skills))
	for _, s := range p.Skills {
		set[s] = struct{}{}
	}
	return set
}

// rawProfile is the accepted shape of a decoded profile object. Years stay
// untyped because any value is echoed into the composite text while only
// numbers count as experience.
type rawProfile struct {
	Skills          []any   `mapstructure:"skills"`
	YearsExperience any     `mapstructure:"years_experience"`
	Education       *string `mapstructure:"education"`
}

// ResolveProfile normalises a profile in any of the shapes accepted by
// Candidate.Profile. It returns nil when the value is absent or malformed.
func ResolveProfile(v any) *CandidateProfile {
	switch val := v.(type) {
	case nil:
		return nil
	case profile.Profile:
		return fromExtracted(val)
	case *profile.Profile:
		if val == nil {
			return nil
		}
		return fromExtracted(*val)
	case *CandidateProfile:
		return val
	case string:
		return fromJSON([]byte(val))
	case []byte:
		return fromJSON(val)
	case json.RawMessage:
		return fromJSON(val)
	case map[string]any:
		return fromMap(val)
	default:
		return nil
	}
}

func fromExtracted(p profile.Profile) *CandidateProfile {
	cp := &CandidateProfile{Skills: normalizeSkills(p.Skills)}
	if p.YearsExperience != nil {
		years := *p.YearsExperience
		cp.YearsExperience = &years
		cp.yearsLiteral = strconv.Itoa(years)
		cp.hasYears = true
	}
	if p.Education != nil {
		cp.Education = *p.Education
	}
	return cp
}

func fromJSON(data []byte) *CandidateProfile {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		return nil
	}

	m, ok := decoded.(map[string]any)
	if !ok {
		return nil
	}
	return fromMap(m)
}

func fromMap(m map[string]any) *CandidateProfile {
	var raw rawProfile
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     &raw,
		DecodeHook: scalarToString,
		MatchName: func(mapKey, fieldName string) bool {
			return mapKey == fieldName
		},
	})
	if err != nil {
		return nil
	}
	// A field of the wrong shape is reported and left unset while the other
	// fields are still decoded.
	_ = dec.Decode(m)

	cp := &CandidateProfile{}

	values := make([]string, 0, len(raw.Skills))
	for _, s := range raw.Skills {
		if s == nil {
			continue
		}
		values = append(values, literal(s))
	}
	cp.Skills = normalizeSkills(values)

	if raw.YearsExperience != nil {
		cp.yearsLiteral = literal(raw.YearsExperience)
		cp.hasYears = true
		if years, ok := integer(raw.YearsExperience); ok {
			cp.YearsExperience = &years
		}
	}

	if raw.Education != nil {
		cp.Education = *raw.Education
	}

	return cp
}

// scalarToString lets a non-string education value decode as its text form.
func scalarToString(from, to reflect.Kind, data any) (any, error) {
	if to != reflect.String || from == reflect.String {
		return data, nil
	}
	return literal(data), nil
}

func normalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// integer truncates numeric values towards zero. Booleans and strings are not
// numeric.
func integer(v any) (int, bool) {
	f := numeric(v)
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return 0, false
	}
	return int(*f), true
}

func literal(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// compositeText joins every free-text field of the candidate with the profile
// folded back in, so profile data takes part in token matching.
func compositeText(c Candidate, p *CandidateProfile) string {
	parts := []string{c.FullName, c.ResumeFilename, c.ExtractedText}
	if p != nil {
		parts = append(parts, p.Skills...)
		if p.hasYears {
			parts = append(parts, p.yearsLiteral+" years")
		}
		if p.Education != "" {
			parts = append(parts, p.Education)
		}
	}
	return strings.Join(parts, " ")
}
