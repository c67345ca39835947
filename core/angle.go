package core

import (
	"fmt"
	"math"

	"github.com/ghrelinlab/posemetrics/internal/contract"
	"github.com/ghrelinlab/posemetrics/schema"
)

// MisalignmentComputer reduces a trial to the mean angle between the head
// direction and the body axis, in degrees within [0, 180].
type MisalignmentComputer struct{}

var _ contract.FeatureComputer = MisalignmentComputer{}

func (MisalignmentComputer) Name() schema.FeatureName { return schema.FeatureMisalignment }

func (MisalignmentComputer) Compute(track *schema.NormalizedTrack, trial schema.Trial, params schema.FeatureParams) (schema.TrialFeature, error) {
	return angleFeature(track, trial, params, schema.FeatureMisalignment,
		[]string{params.HeadPart, params.NeckPart, params.TailPart},
		func(frame map[string]schema.NormPoint) float64 {
			head, neck, tail := frame[params.HeadPart], frame[params.NeckPart], frame[params.TailPart]
			// Head vector from the neck, body axis from tail base to head.
			return vectorAngleDeg(head.X-neck.X, head.Y-neck.Y, head.X-tail.X, head.Y-tail.Y)
		})
}

// TailBendComputer reduces a trial to the mean spine bend at the mid landmark:
// 0 degrees for a straight spine, growing with flexion.
type TailBendComputer struct{}

var _ contract.FeatureComputer = TailBendComputer{}

func (TailBendComputer) Name() schema.FeatureName { return schema.FeatureTailBend }

func (TailBendComputer) Compute(track *schema.NormalizedTrack, trial schema.Trial, params schema.FeatureParams) (schema.TrialFeature, error) {
	return angleFeature(track, trial, params, schema.FeatureTailBend,
		[]string{params.NeckPart, params.MidPart, params.TailPart},
		func(frame map[string]schema.NormPoint) float64 {
			neck, mid, tail := frame[params.NeckPart], frame[params.MidPart], frame[params.TailPart]
			inner := vectorAngleDeg(neck.X-mid.X, neck.Y-mid.Y, tail.X-mid.X, tail.Y-mid.Y)
			if schema.IsMissing(inner) {
				return inner
			}
			return 180 - inner
		})
}

// angleFeature is the shared reduction for per-frame angle features: clip,
// walk frames where every required landmark is valid, evaluate, average.
// Angle features do not smooth; averaging positions across frames would
// understate fast postural changes.
func angleFeature(track *schema.NormalizedTrack, trial schema.Trial, params schema.FeatureParams, name schema.FeatureName, landmarks []string, eval func(map[string]schema.NormPoint) float64) (schema.TrialFeature, error) {
	feature := schema.TrialFeature{TrialID: trial.ID, Feature: name}
	series := make(map[string][]schema.NormPoint, len(landmarks))
	frames := math.MaxInt
	for _, landmark := range landmarks {
		points, ok := track.Series(landmark)
		if !ok {
			return feature, fmt.Errorf("%w: landmark %q not tracked", contract.ErrMalformedSchema, landmark)
		}
		points = ClipToTimeLimit(points, trial.FrameRate, params.TimeLimit)
		series[landmark] = points
		frames = min(frames, len(points))
	}

	sum := 0.0
	used := 0
	frame := make(map[string]schema.NormPoint, len(landmarks))
	for i := range frames {
		allValid := true
		for _, landmark := range landmarks {
			p := series[landmark][i]
			if !p.Valid {
				allValid = false
				break
			}
			frame[landmark] = p
		}
		if !allValid {
			continue
		}
		v := eval(frame)
		if schema.IsMissing(v) {
			continue
		}
		sum += v
		used++
	}

	duration := 0.0
	if trial.FrameRate > 0 {
		duration = float64(used) / trial.FrameRate
	}
	feature.Diagnostics = schema.TrialDiagnostics{FramesUsed: used, DurationSec: duration}
	if duration < params.MinDuration {
		feature.Value = schema.Missing()
		feature.Diagnostics.Reason = fmt.Sprintf("usable duration %.2fs below minimum %.2fs", duration, params.MinDuration)
		return feature, nil
	}
	if used == 0 {
		feature.Value = schema.Missing()
		feature.Diagnostics.Reason = "no frame with a defined angle"
		return feature, nil
	}
	feature.Value = sum / float64(used)
	return feature, nil
}

// AngularVelocityComputer reduces a trial to the mean absolute angular
// velocity of the body axis in radians per second. Heading is unwrapped
// within runs of consecutive valid frames only; a dropout resets the run so
// no spurious rotation is invented across the gap.
type AngularVelocityComputer struct{}

var _ contract.FeatureComputer = AngularVelocityComputer{}

func (AngularVelocityComputer) Name() schema.FeatureName { return schema.FeatureAngVelBody }

func (AngularVelocityComputer) Compute(track *schema.NormalizedTrack, trial schema.Trial, params schema.FeatureParams) (schema.TrialFeature, error) {
	feature := schema.TrialFeature{TrialID: trial.ID, Feature: schema.FeatureAngVelBody}
	headSeries, ok := track.Series(params.HeadPart)
	if !ok {
		return feature, fmt.Errorf("%w: landmark %q not tracked", contract.ErrMalformedSchema, params.HeadPart)
	}
	tailSeries, ok := track.Series(params.TailPart)
	if !ok {
		return feature, fmt.Errorf("%w: landmark %q not tracked", contract.ErrMalformedSchema, params.TailPart)
	}
	headSeries = ClipToTimeLimit(headSeries, trial.FrameRate, params.TimeLimit)
	tailSeries = ClipToTimeLimit(tailSeries, trial.FrameRate, params.TimeLimit)
	frames := min(len(headSeries), len(tailSeries))
	if trial.FrameRate <= 0 {
		feature.Value = schema.Missing()
		feature.Diagnostics.Reason = "frame rate unknown"
		return feature, nil
	}

	headings := make([]float64, frames)
	for i := range frames {
		head, tail := headSeries[i], tailSeries[i]
		if !head.Valid || !tail.Valid {
			headings[i] = schema.Missing()
			continue
		}
		headings[i] = math.Atan2(head.Y-tail.Y, head.X-tail.X)
	}

	sum := 0.0
	used := 0
	for i := 1; i < frames; i++ {
		if schema.IsMissing(headings[i-1]) || schema.IsMissing(headings[i]) {
			continue
		}
		delta := wrapAngle(headings[i] - headings[i-1])
		sum += math.Abs(delta) * trial.FrameRate
		used++
	}

	duration := float64(used) / trial.FrameRate
	feature.Diagnostics = schema.TrialDiagnostics{FramesUsed: used, DurationSec: duration}
	if duration < params.MinDuration {
		feature.Value = schema.Missing()
		feature.Diagnostics.Reason = fmt.Sprintf("usable duration %.2fs below minimum %.2fs", duration, params.MinDuration)
		return feature, nil
	}
	if used == 0 {
		feature.Value = schema.Missing()
		feature.Diagnostics.Reason = "no consecutive frames with a defined heading"
		return feature, nil
	}
	feature.Value = sum / float64(used)
	return feature, nil
}

// vectorAngleDeg returns the angle between two vectors in degrees, in
// [0, 180]. Degenerate (zero-length) vectors yield the missing value.
func vectorAngleDeg(ax, ay, bx, by float64) float64 {
	na := math.Hypot(ax, ay)
	nb := math.Hypot(bx, by)
	if na == 0 || nb == 0 {
		return schema.Missing()
	}
	cos := (ax*bx + ay*by) / (na * nb)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// wrapAngle maps an angle difference into (-pi, pi].
func wrapAngle(theta float64) float64 {
	for theta <= -math.Pi {
		theta += 2 * math.Pi
	}
	for theta > math.Pi {
		theta -= 2 * math.Pi
	}
	return theta
}
