package scoring

import (
	"encoding/json"
	"math"
	"strconv"
)

// Factor names used in weight overrides and the score breakdown.
const (
	FactorSkills     = "skills"
	FactorExperience = "experience"
	FactorEducation  = "education"
	FactorKeywords   = "keywords"
)

// Weights defines the relative importance of each scoring factor.
type Weights struct {
	Skills     float64 `json:"skills"`
	Experience float64 `json:"experience"`
	Education  float64 `json:"education"`
	Keywords   float64 `json:"keywords"`
}

// DefaultWeights returns the default weight distribution. It sums to 1.0.
func DefaultWeights() Weights {
	return Weights{
		Skills:     0.45,
		Experience: 0.25,
		Education:  0.10,
		Keywords:   0.20,
	}
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Skills + w.Experience + w.Education + w.Keywords
}

// WeightOverrides replaces individual default weights. Nil fields keep the
// default value.
type WeightOverrides struct {
	Skills     *float64 `json:"skills,omitempty"`
	Experience *float64 `json:"experience,omitempty"`
	Education  *float64 `json:"education,omitempty"`
	Keywords   *float64 `json:"keywords,omitempty"`
}

// ParseWeightOverrides picks numeric values for the four known factors out of
// an arbitrary mapping. Unknown keys, non-numeric and non-finite values are
// ignored.
func ParseWeightOverrides(raw map[string]any) WeightOverrides {
	var o WeightOverrides
	if raw == nil {
		return o
	}
	o.Skills = numeric(raw[FactorSkills])
	o.Experience = numeric(raw[FactorExperience])
	o.Education = numeric(raw[FactorEducation])
	o.Keywords = numeric(raw[FactorKeywords])
	return o
}

// Normalize merges the overrides over the defaults and scales the result so
// the weights sum to 1.0. When the merged sum is not a positive finite number
// the defaults are returned as they are.
func (o *WeightOverrides) Normalize() Weights {
	w := DefaultWeights()
	if o != nil {
		if o.Skills != nil {
			w.Skills = *o.Skills
		}
		if o.Experience != nil {
			w.Experience = *o.Experience
		}
		if o.Education != nil {
			w.Education = *o.Education
		}
		if o.Keywords != nil {
			w.Keywords = *o.Keywords
		}
	}

	total := w.Sum()
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return DefaultWeights()
	}

	return Weights{
		Skills:     w.Skills / total,
		Experience: w.Experience / total,
		Education:  w.Education / total,
		Keywords:   w.Keywords / total,
	}
}

func numeric(v any) *float64 {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int32:
		f = float64(val)
	case int64:
		f = float64(val)
	case uint:
		f = float64(val)
	case uint32:
		f = float64(val)
	case uint64:
		f = float64(val)
	case json.Number:
		parsed, err := strconv.ParseFloat(val.String(), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
