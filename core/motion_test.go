package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghrelinlab/posemetrics/schema"
)

func validPoint(x, y float64) schema.NormPoint {
	return schema.NormPoint{X: x, Y: y, Valid: true}
}

func invalidPoint() schema.NormPoint {
	return schema.NormPoint{X: schema.Missing(), Y: schema.Missing(), Valid: false}
}

func trackOf(landmark string, points []schema.NormPoint) *schema.NormalizedTrack {
	return &schema.NormalizedTrack{
		Landmarks: []string{landmark},
		Samples:   map[string][]schema.NormPoint{landmark: points},
		Threshold: 0.5,
	}
}

func motionParams() schema.FeatureParams {
	return schema.FeatureParams{
		Window:        1,
		Threshold:     0.5,
		MinDuration:   1,
		BinSeconds:    60,
		ReferencePart: "Midback",
	}
}

func TestVelocityComputerConstantMotion(t *testing.T) {
	n := 91
	points := make([]schema.NormPoint, n)
	for i := range points {
		points[i] = validPoint(float64(i)*0.01, 0.5)
	}
	trial := schema.Trial{ID: 7, FrameRate: 30}

	feature, err := VelocityComputer{}.Compute(trackOf("Midback", points), trial, motionParams())
	require.NoError(t, err)

	distance := float64(n-1) * 0.01
	duration := float64(n) / 30
	assert.InDelta(t, distance/duration*60, feature.Value, 1e-9)
	assert.Equal(t, n, feature.Diagnostics.FramesUsed)
	assert.InDelta(t, duration, feature.Diagnostics.DurationSec, 1e-9)
}

func TestVelocityComputerStationaryIsZero(t *testing.T) {
	points := make([]schema.NormPoint, 60)
	for i := range points {
		points[i] = validPoint(0.5, 0.5)
	}
	trial := schema.Trial{FrameRate: 30}

	feature, err := VelocityComputer{}.Compute(trackOf("Midback", points), trial, motionParams())
	require.NoError(t, err)

	// A resting animal moved zero arena widths. That is a measurement, not a gap.
	assert.False(t, schema.IsMissing(feature.Value))
	assert.Zero(t, feature.Value)
}

func TestVelocityComputerShortTrialIsMissing(t *testing.T) {
	points := []schema.NormPoint{validPoint(0, 0), validPoint(0.1, 0)}
	trial := schema.Trial{FrameRate: 30}

	feature, err := VelocityComputer{}.Compute(trackOf("Midback", points), trial, motionParams())
	require.NoError(t, err)

	assert.True(t, schema.IsMissing(feature.Value))
	assert.Contains(t, feature.Diagnostics.Reason, "below minimum")
}

func TestVelocityComputerMissingLandmark(t *testing.T) {
	points := []schema.NormPoint{validPoint(0, 0)}
	_, err := VelocityComputer{}.Compute(trackOf("Head", points), schema.Trial{FrameRate: 30}, motionParams())
	require.Error(t, err)
}

func TestDistanceComputerSkipsDropouts(t *testing.T) {
	points := make([]schema.NormPoint, 0, 64)
	for i := range 30 {
		points = append(points, validPoint(float64(i)*0.01, 0))
	}
	// A dropout in the middle: the jump across it must not count as travel.
	points = append(points, invalidPoint(), invalidPoint())
	for i := range 30 {
		points = append(points, validPoint(0.9+float64(i)*0.01, 0))
	}
	trial := schema.Trial{FrameRate: 30}

	feature, err := DistanceComputer{}.Compute(trackOf("Midback", points), trial, motionParams())
	require.NoError(t, err)
	assert.InDelta(t, 58*0.01, feature.Value, 1e-9)
	assert.Equal(t, 60, feature.Diagnostics.FramesUsed)
}

func TestClipToTimeLimit(t *testing.T) {
	points := make([]schema.NormPoint, 45)
	for i := range points {
		points[i] = validPoint(float64(i), 0)
	}

	assert.Len(t, ClipToTimeLimit(points, 30, 1), 30)
	assert.Len(t, ClipToTimeLimit(points, 30, 0), 45)
	assert.Len(t, ClipToTimeLimit(points, 30, 10), 45)
}

func TestSmoothSeries(t *testing.T) {
	points := []schema.NormPoint{
		validPoint(0, 0),
		validPoint(1, 0),
		invalidPoint(),
		validPoint(3, 0),
		validPoint(4, 0),
	}
	got := SmoothSeries(points, 3)

	// The window averages only valid neighbors.
	assert.InDelta(t, 0.5, got[0].X, 1e-9)
	assert.InDelta(t, 0.5, got[1].X, 1e-9)
	assert.InDelta(t, 3.5, got[3].X, 1e-9)
	// A dropout stays a dropout.
	assert.False(t, got[2].Valid)
	assert.True(t, schema.IsMissing(got[2].X))
}

func TestSmoothSeriesWindowOneIsIdentity(t *testing.T) {
	points := []schema.NormPoint{validPoint(1, 2), validPoint(3, 4)}
	assert.Equal(t, points, SmoothSeries(points, 1))
}

func TestFrameSpeeds(t *testing.T) {
	points := []schema.NormPoint{
		validPoint(0, 0),
		validPoint(0.01, 0),
		invalidPoint(),
		validPoint(0.05, 0),
	}
	speeds := FrameSpeeds(points, 30)
	require.Len(t, speeds, 3)

	assert.InDelta(t, 0.3, speeds[0], 1e-9)
	assert.True(t, schema.IsMissing(speeds[1]))
	assert.True(t, schema.IsMissing(speeds[2]))

	assert.Nil(t, FrameSpeeds(points[:1], 30))
}

func TestBinnedMeans(t *testing.T) {
	speeds := []float64{1, 2, 3, schema.Missing(), schema.Missing(), schema.Missing(), 6}
	// One-second bins at 3 fps: [1 2 3] [NaN NaN NaN] [6].
	bins := BinnedMeans(speeds, 3, 1)
	require.Len(t, bins, 3)

	assert.InDelta(t, 2, bins[0], 1e-9)
	assert.True(t, schema.IsMissing(bins[1]), "an all-dropout bin is missing, never zero")
	assert.InDelta(t, 6, bins[2], 1e-9)

	assert.Nil(t, BinnedMeans(nil, 3, 1))
	assert.Nil(t, BinnedMeans(speeds, 3, 0))
}

func TestMotionSeries(t *testing.T) {
	points := make([]schema.NormPoint, 91)
	for i := range points {
		points[i] = validPoint(float64(i)*0.01, 0)
	}
	trial := schema.Trial{ID: 3, FrameRate: 30}
	params := motionParams()
	params.BinSeconds = 1

	series, err := MotionSeries(trackOf("Midback", points), trial, params)
	require.NoError(t, err)

	assert.Equal(t, int64(3), series.TrialID)
	assert.Equal(t, schema.FeatureVelocityPerMin, series.Feature)
	require.Len(t, series.Values, 3)
	for _, v := range series.Values {
		assert.InDelta(t, 0.3, v, 1e-9)
	}
}

func TestValidDuration(t *testing.T) {
	points := []schema.NormPoint{validPoint(0, 0), invalidPoint(), validPoint(1, 1)}
	assert.InDelta(t, 2.0/30, validDuration(points, 30), 1e-9)
	assert.Zero(t, validDuration(points, 0))
}

func TestTotalPathLengthEmpty(t *testing.T) {
	total, used := TotalPathLength(nil)
	assert.Zero(t, total)
	assert.Zero(t, used)
	assert.False(t, math.IsNaN(total))
}
