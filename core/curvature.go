package core

import (
	"fmt"
	"math"

	"github.com/ghrelinlab/posemetrics/internal/contract"
	"github.com/ghrelinlab/posemetrics/schema"
)

// curvatureEps guards the curvature denominator. Below this the trajectory
// has no usable tangent and curvature is undefined.
const curvatureEps = 1e-12

// CurvatureComputer reduces a trial to the mean path curvature of the
// reference landmark.
type CurvatureComputer struct{}

var _ contract.FeatureComputer = CurvatureComputer{}

func (CurvatureComputer) Name() schema.FeatureName { return schema.FeatureCurvatureMean }

func (CurvatureComputer) Compute(track *schema.NormalizedTrack, trial schema.Trial, params schema.FeatureParams) (schema.TrialFeature, error) {
	feature := schema.TrialFeature{TrialID: trial.ID, Feature: schema.FeatureCurvatureMean}
	points, ok := track.Series(params.ReferencePart)
	if !ok {
		return feature, fmt.Errorf("%w: landmark %q not tracked", contract.ErrMalformedSchema, params.ReferencePart)
	}
	points = ClipToTimeLimit(points, trial.FrameRate, params.TimeLimit)
	points = SmoothSeries(points, params.Window)

	duration := validDuration(points, trial.FrameRate)
	_, framesUsed := TotalPathLength(points)
	feature.Diagnostics = schema.TrialDiagnostics{FramesUsed: framesUsed, DurationSec: duration}
	if duration < params.MinDuration {
		feature.Value = schema.Missing()
		feature.Diagnostics.Reason = fmt.Sprintf("usable duration %.2fs below minimum %.2fs", duration, params.MinDuration)
		return feature, nil
	}

	curvatures := CurvatureSeries(points, trial.FrameRate, params)
	sum := 0.0
	n := 0
	for _, k := range curvatures {
		if schema.IsMissing(k) {
			continue
		}
		sum += k
		n++
	}
	if n == 0 {
		feature.Value = schema.Missing()
		feature.Diagnostics.Reason = "no frame with defined curvature"
		return feature, nil
	}
	feature.Value = sum / float64(n)
	return feature, nil
}

// CurvatureSeries computes per-frame path curvature
//
//	k = |x'y'' - y'x''| / (x'^2 + y'^2)^1.5
//
// using central finite differences over half the configured window. A frame's
// curvature is defined only when the full stencil is valid, the instantaneous
// speed clears the speed threshold, and the denominator is not degenerate.
// Slow frames are reported missing rather than clamped: near-zero tangents
// make curvature numerically meaningless, and folding them in as zeros would
// bias group means toward straightness.
func CurvatureSeries(points []schema.NormPoint, frameRate float64, params schema.FeatureParams) []float64 {
	curvatures := make([]float64, len(points))
	for i := range curvatures {
		curvatures[i] = schema.Missing()
	}
	half := max(params.Window/2, 1)
	if frameRate <= 0 || len(points) <= 2*half {
		return curvatures
	}
	dt := 1 / frameRate

	for i := half; i < len(points)-half; i++ {
		prev, cur, next := points[i-half], points[i], points[i+half]
		if !prev.Valid || !cur.Valid || !next.Valid {
			continue
		}
		h := float64(half) * dt
		dx := (next.X - prev.X) / (2 * h)
		dy := (next.Y - prev.Y) / (2 * h)
		ddx := (next.X - 2*cur.X + prev.X) / (h * h)
		ddy := (next.Y - 2*cur.Y + prev.Y) / (h * h)

		speed := math.Hypot(dx, dy)
		if speed < params.SpeedThreshold {
			continue
		}
		denom := math.Pow(dx*dx+dy*dy, 1.5)
		if denom < curvatureEps {
			continue
		}
		curvatures[i] = math.Abs(dx*ddy-dy*ddx) / denom
	}
	return curvatures
}

// CurvatureBins builds the per-bin mean curvature series for a trial,
// mirroring what the curvature computer reduces to a scalar.
func CurvatureBins(track *schema.NormalizedTrack, trial schema.Trial, params schema.FeatureParams) (schema.FeatureSeries, error) {
	points, ok := track.Series(params.ReferencePart)
	if !ok {
		return schema.FeatureSeries{}, fmt.Errorf("%w: landmark %q not tracked", contract.ErrMalformedSchema, params.ReferencePart)
	}
	points = ClipToTimeLimit(points, trial.FrameRate, params.TimeLimit)
	points = SmoothSeries(points, params.Window)
	curvatures := CurvatureSeries(points, trial.FrameRate, params)
	return schema.FeatureSeries{
		TrialID:    trial.ID,
		Feature:    schema.FeatureCurvatureMean,
		Params:     params,
		BinSeconds: params.BinSeconds,
		Values:     BinnedMeans(curvatures, trial.FrameRate, params.BinSeconds),
	}, nil
}
