package scoring

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestNormalizeDefaults(t *testing.T) {
	t.Parallel()

	var nilOverrides *WeightOverrides
	for _, o := range []*WeightOverrides{nilOverrides, {}} {
		w := o.Normalize()
		assert.InDelta(t, 1.0, w.Sum(), 1e-9)
		assert.InDelta(t, 0.45, w.Skills, 1e-9)
		assert.InDelta(t, 0.25, w.Experience, 1e-9)
		assert.InDelta(t, 0.10, w.Education, 1e-9)
		assert.InDelta(t, 0.20, w.Keywords, 1e-9)
	}
}

func TestNormalizePreservesProportions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		overrides WeightOverrides
		expect    Weights
	}{
		{
			name:      "all overridden",
			overrides: WeightOverrides{Skills: ptr(2.0), Experience: ptr(1.0), Education: ptr(1.0), Keywords: ptr(0.0)},
			expect:    Weights{Skills: 0.5, Experience: 0.25, Education: 0.25, Keywords: 0},
		},
		{
			name:      "subset overridden",
			overrides: WeightOverrides{Skills: ptr(1.0)},
			expect:    Weights{Skills: 1 / 1.55, Experience: 0.25 / 1.55, Education: 0.10 / 1.55, Keywords: 0.20 / 1.55},
		},
		{
			name:      "only keywords",
			overrides: WeightOverrides{Skills: ptr(0.0), Experience: ptr(0.0), Education: ptr(0.0), Keywords: ptr(7.0)},
			expect:    Weights{Keywords: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := tt.overrides.Normalize()
			assert.InDelta(t, 1.0, w.Sum(), 1e-6)
			assert.InDelta(t, tt.expect.Skills, w.Skills, 1e-9)
			assert.InDelta(t, tt.expect.Experience, w.Experience, 1e-9)
			assert.InDelta(t, tt.expect.Education, w.Education, 1e-9)
			assert.InDelta(t, tt.expect.Keywords, w.Keywords, 1e-9)
		})
	}
}

func TestNormalizeFallsBackOnNonPositiveSum(t *testing.T) {
	t.Parallel()

	zero := WeightOverrides{Skills: ptr(0.0), Experience: ptr(0.0), Education: ptr(0.0), Keywords: ptr(0.0)}
	assert.Equal(t, DefaultWeights(), zero.Normalize())

	negative := WeightOverrides{Skills: ptr(-5.0)}
	assert.Equal(t, DefaultWeights(), negative.Normalize())

	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		nonFinite := WeightOverrides{Skills: ptr(v)}
		assert.Equal(t, DefaultWeights(), nonFinite.Normalize(), "skills weight %v", v)
	}

	overflow := WeightOverrides{Skills: ptr(math.MaxFloat64), Keywords: ptr(math.MaxFloat64)}
	assert.Equal(t, DefaultWeights(), overflow.Normalize())
}

func TestParseWeightOverridesDropsNonFinite(t *testing.T) {
	t.Parallel()

	o := ParseWeightOverrides(map[string]any{
		"skills":     math.NaN(),
		"experience": math.Inf(1),
		"education":  float32(math.Inf(-1)),
		"keywords":   json.Number("NaN"),
	})
	assert.Equal(t, WeightOverrides{}, o)

	w := o.Normalize()
	assert.InDelta(t, 1.0, w.Sum(), 1e-9)
	assert.InDelta(t, 0.45, w.Skills, 1e-9)
}

func TestParseWeightOverrides(t *testing.T) {
	t.Parallel()

	o := ParseWeightOverrides(map[string]any{
		"skills":     1,
		"experience": "high",
		"education":  true,
		"keywords":   json.Number("0.5"),
		"culture":    3.0,
	})

	require.NotNil(t, o.Skills)
	assert.InDelta(t, 1.0, *o.Skills, 1e-9)
	assert.Nil(t, o.Experience)
	assert.Nil(t, o.Education)
	require.NotNil(t, o.Keywords)
	assert.InDelta(t, 0.5, *o.Keywords, 1e-9)

	assert.Equal(t, WeightOverrides{}, ParseWeightOverrides(nil))
}
