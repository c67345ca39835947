package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghrelinlab/posemetrics/schema"
)

func circlePoints(radius, omega, frameRate float64, n int) []schema.NormPoint {
	points := make([]schema.NormPoint, n)
	for i := range points {
		theta := omega * float64(i) / frameRate
		points[i] = validPoint(0.5+radius*math.Cos(theta), 0.5+radius*math.Sin(theta))
	}
	return points
}

func curvatureParams() schema.FeatureParams {
	return schema.FeatureParams{
		Window:         2,
		Threshold:      0.5,
		SpeedThreshold: 1e-2,
		MinDuration:    1,
		ReferencePart:  "Midback",
	}
}

func TestCurvatureSeriesCircle(t *testing.T) {
	radius := 0.3
	points := circlePoints(radius, 2, 30, 200)
	params := curvatureParams()

	curvatures := CurvatureSeries(points, 30, params)
	require.Len(t, curvatures, 200)

	// Boundary frames lack a full stencil.
	assert.True(t, schema.IsMissing(curvatures[0]))
	assert.True(t, schema.IsMissing(curvatures[199]))

	// A circular path has curvature 1/r everywhere.
	for _, k := range curvatures[1:199] {
		assert.InDelta(t, 1/radius, k, 0.02*(1/radius))
	}
}

func TestCurvatureSeriesStraightLine(t *testing.T) {
	points := make([]schema.NormPoint, 50)
	for i := range points {
		points[i] = validPoint(float64(i)*0.02, 0.3)
	}
	curvatures := CurvatureSeries(points, 30, curvatureParams())
	for _, k := range curvatures[1:49] {
		assert.InDelta(t, 0, k, 1e-9)
	}
}

func TestCurvatureSeriesSlowFramesAreMissing(t *testing.T) {
	points := make([]schema.NormPoint, 50)
	for i := range points {
		points[i] = validPoint(0.5, 0.5) // stationary: no tangent to speak of
	}
	curvatures := CurvatureSeries(points, 30, curvatureParams())
	for _, k := range curvatures {
		assert.True(t, schema.IsMissing(k))
	}
}

func TestCurvatureSeriesDropoutBreaksStencil(t *testing.T) {
	points := circlePoints(0.3, 2, 30, 20)
	points[10] = invalidPoint()

	curvatures := CurvatureSeries(points, 30, curvatureParams())
	// The invalid frame and any frame whose stencil touches it are undefined.
	assert.True(t, schema.IsMissing(curvatures[9]))
	assert.True(t, schema.IsMissing(curvatures[10]))
	assert.True(t, schema.IsMissing(curvatures[11]))
	assert.False(t, schema.IsMissing(curvatures[5]))
}

func TestCurvatureComputerCircle(t *testing.T) {
	radius := 0.3
	points := circlePoints(radius, 2, 30, 200)
	trial := schema.Trial{ID: 11, FrameRate: 30}

	feature, err := CurvatureComputer{}.Compute(trackOf("Midback", points), trial, curvatureParams())
	require.NoError(t, err)

	assert.Equal(t, schema.FeatureCurvatureMean, feature.Feature)
	// Smoothing nudges the points slightly off the circle, so the bound is looser.
	assert.InDelta(t, 1/radius, feature.Value, 0.05*(1/radius))
}

func TestCurvatureComputerNoDefinedFrames(t *testing.T) {
	points := make([]schema.NormPoint, 60)
	for i := range points {
		points[i] = validPoint(0.5, 0.5)
	}
	trial := schema.Trial{FrameRate: 30}

	feature, err := CurvatureComputer{}.Compute(trackOf("Midback", points), trial, curvatureParams())
	require.NoError(t, err)

	assert.True(t, schema.IsMissing(feature.Value))
	assert.Equal(t, "no frame with defined curvature", feature.Diagnostics.Reason)
}

func TestCurvatureBins(t *testing.T) {
	radius := 0.3
	points := circlePoints(radius, 2, 30, 91)
	trial := schema.Trial{ID: 4, FrameRate: 30}
	params := curvatureParams()
	params.BinSeconds = 1

	series, err := CurvatureBins(trackOf("Midback", points), trial, params)
	require.NoError(t, err)

	assert.Equal(t, int64(4), series.TrialID)
	assert.Equal(t, schema.FeatureCurvatureMean, series.Feature)
	require.Len(t, series.Values, 4) // 91 frames at 30 fps, 1 s bins
	for _, v := range series.Values[:3] {
		assert.InDelta(t, 1/radius, v, 0.1*(1/radius))
	}

	_, err = CurvatureBins(trackOf("Head", points), trial, params)
	require.Error(t, err)
}

func TestCurvatureComputerShortTrial(t *testing.T) {
	points := circlePoints(0.3, 2, 30, 10)
	trial := schema.Trial{FrameRate: 30}

	feature, err := CurvatureComputer{}.Compute(trackOf("Midback", points), trial, curvatureParams())
	require.NoError(t, err)

	assert.True(t, schema.IsMissing(feature.Value))
	assert.Contains(t, feature.Diagnostics.Reason, "below minimum")
}
