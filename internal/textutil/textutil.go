// Package textutil holds the text heuristics shared by the profile extractor
// and the scorer: tokenization, years-of-experience parsing and education
// level detection.
package textutil

import (
	"regexp"
	"strconv"
	"strings"
)

// Education levels in detection priority order.
const (
	EducationPhD      = "phd"
	EducationMaster   = "master"
	EducationBachelor = "bachelor"
)

var (
	tokenPattern = regexp.MustCompile(`[a-z0-9+#.]+`)
	yearsPattern = regexp.MustCompile(`(\d{1,2})\s*\+?\s*years?`)

	educationPriority = [...]string{EducationPhD, EducationMaster, EducationBachelor}

	stopWords = map[string]struct{}{
		"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
		"by": {}, "for": {}, "from": {}, "in": {}, "is": {}, "it": {}, "of": {},
		"on": {}, "or": {}, "that": {}, "the": {}, "to": {}, "with": {},
	}
)

// Tokenize returns the lowercase tokens of text in occurrence order.
// Duplicates are kept; single-character tokens and stop words are dropped.
func Tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(raw))
	for _, token := range raw {
		if len(token) < 2 {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// UniqueTokens returns at most limit distinct tokens of text in order of
// first occurrence. A non-positive limit means no limit.
func UniqueTokens(text string, limit int) []string {
	seen := make(map[string]struct{})
	terms := make([]string, 0)
	for _, token := range Tokenize(text) {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		terms = append(terms, token)
		if limit > 0 && len(terms) == limit {
			break
		}
	}
	return terms
}

// TokenSet returns the distinct tokens of text.
func TokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range Tokenize(text) {
		set[token] = struct{}{}
	}
	return set
}

// ExtractYears returns the number in the first "<n> years" phrase of text,
// where n has one or two digits and may be followed by "+".
func ExtractYears(text string) (int, bool) {
	match := yearsPattern.FindStringSubmatch(strings.ToLower(text))
	if match == nil {
		return 0, false
	}
	years, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return years, true
}

// DetectEducation returns the highest-priority education level mentioned in
// text. Priority is phd, master, bachelor regardless of position in text.
func DetectEducation(text string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, level := range educationPriority {
		if strings.Contains(lowered, level) {
			return level, true
		}
	}
	return "", false
}

// EducationLevels returns the recognised education levels in priority order.
func EducationLevels() []string {
	levels := educationPriority
	return levels[:]
}
