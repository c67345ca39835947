package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghrelinlab/posemetrics/schema"
)

func TestDescribe(t *testing.T) {
	t.Run("empty group", func(t *testing.T) {
		gs := Describe("saline", nil)
		assert.Equal(t, 0, gs.N)
		assert.True(t, schema.IsMissing(gs.Mean))
		assert.True(t, schema.IsMissing(gs.SEM))
		assert.False(t, gs.Defined())
	})

	t.Run("single value", func(t *testing.T) {
		gs := Describe("saline", []float64{4.2})
		assert.Equal(t, 1, gs.N)
		assert.InDelta(t, 4.2, gs.Mean, 1e-9)
		assert.True(t, schema.IsMissing(gs.SEM))
	})

	t.Run("several values", func(t *testing.T) {
		gs := Describe("saline", []float64{1, 2, 3})
		assert.Equal(t, 3, gs.N)
		assert.InDelta(t, 2, gs.Mean, 1e-9)
		// Sample stddev 1 over sqrt(3).
		assert.InDelta(t, 1/math.Sqrt(3), gs.SEM, 1e-9)
		assert.True(t, gs.Defined())
	})
}

func TestCompareGroups(t *testing.T) {
	params := schema.FeatureParams{Window: 5, Threshold: 0.5}

	t.Run("separated groups", func(t *testing.T) {
		got := CompareGroups(schema.FeatureVelocityPerMin, params,
			"saline", []float64{1, 2, 3}, "ghrelin", []float64{4, 5, 6})
		require.NotNil(t, got.Comparison)

		assert.InDelta(t, 2, got.Base.Mean, 1e-9)
		assert.InDelta(t, 5, got.Target.Mean, 1e-9)
		// Equal variances of 1: t = -3 / sqrt(2/3), df = 4.
		assert.InDelta(t, -3/math.Sqrt(2.0/3), got.Comparison.TStat, 1e-9)
		assert.InDelta(t, 4, got.Comparison.DF, 1e-9)
		assert.InDelta(t, 0.02131, got.Comparison.PValue, 1e-4)
		assert.InDelta(t, -3, got.Comparison.CohenD, 1e-9)
	})

	t.Run("swapping groups flips sign but not p", func(t *testing.T) {
		ab := CompareGroups(schema.FeatureVelocityPerMin, params,
			"a", []float64{1, 2, 3}, "b", []float64{4, 5, 6})
		ba := CompareGroups(schema.FeatureVelocityPerMin, params,
			"b", []float64{4, 5, 6}, "a", []float64{1, 2, 3})
		require.NotNil(t, ab.Comparison)
		require.NotNil(t, ba.Comparison)

		assert.InDelta(t, -ab.Comparison.TStat, ba.Comparison.TStat, 1e-12)
		assert.InDelta(t, ab.Comparison.PValue, ba.Comparison.PValue, 1e-12)
		assert.InDelta(t, -ab.Comparison.CohenD, ba.Comparison.CohenD, 1e-12)
	})

	t.Run("identical groups", func(t *testing.T) {
		got := CompareGroups(schema.FeatureVelocityPerMin, params,
			"a", []float64{1, 2, 3}, "b", []float64{1, 2, 3})
		require.NotNil(t, got.Comparison)
		assert.InDelta(t, 0, got.Comparison.TStat, 1e-12)
		assert.InDelta(t, 1, got.Comparison.PValue, 1e-9)
	})

	t.Run("too few trials yields no test", func(t *testing.T) {
		got := CompareGroups(schema.FeatureVelocityPerMin, params,
			"a", []float64{1}, "b", []float64{4, 5, 6})
		assert.Nil(t, got.Comparison)
		// Descriptive stats still come through.
		assert.Equal(t, 1, got.Base.N)
		assert.InDelta(t, 5, got.Target.Mean, 1e-9)
	})

	t.Run("empty groups yield no test", func(t *testing.T) {
		got := CompareGroups(schema.FeatureVelocityPerMin, params, "a", nil, "b", nil)
		assert.Nil(t, got.Comparison)
		assert.True(t, schema.IsMissing(got.Base.Mean))
	})

	t.Run("both groups constant yields no test", func(t *testing.T) {
		got := CompareGroups(schema.FeatureVelocityPerMin, params,
			"a", []float64{2, 2, 2}, "b", []float64{5, 5, 5})
		assert.Nil(t, got.Comparison)
	})
}

func TestSignificanceLabelAgainstWelch(t *testing.T) {
	got := CompareGroups(schema.FeatureVelocityPerMin, schema.FeatureParams{},
		"a", []float64{1, 2, 3}, "b", []float64{4, 5, 6})
	require.NotNil(t, got.Comparison)
	assert.Equal(t, "*", schema.SignificanceLabel(got.Comparison.PValue))
	assert.Equal(t, "-", schema.SignificanceLabel(schema.Missing()))
}
