package core

import (
	"fmt"
	"math"

	"github.com/ghrelinlab/posemetrics/internal/contract"
	"github.com/ghrelinlab/posemetrics/schema"
)

// VelocityComputer reduces a trial to its mean locomotion velocity in
// arena-widths per minute.
type VelocityComputer struct{}

var _ contract.FeatureComputer = VelocityComputer{}

func (VelocityComputer) Name() schema.FeatureName { return schema.FeatureVelocityPerMin }

func (VelocityComputer) Compute(track *schema.NormalizedTrack, trial schema.Trial, params schema.FeatureParams) (schema.TrialFeature, error) {
	feature := schema.TrialFeature{TrialID: trial.ID, Feature: schema.FeatureVelocityPerMin}
	points, err := referenceSeries(track, trial, params)
	if err != nil {
		return feature, err
	}
	distance, framesUsed := TotalPathLength(points)
	duration := validDuration(points, trial.FrameRate)
	feature.Diagnostics = schema.TrialDiagnostics{
		FramesUsed:    framesUsed,
		DurationSec:   duration,
		TotalDistance: distance,
	}
	if duration < params.MinDuration {
		feature.Value = schema.Missing()
		feature.Diagnostics.Reason = fmt.Sprintf("usable duration %.2fs below minimum %.2fs", duration, params.MinDuration)
		return feature, nil
	}
	feature.Value = distance / duration * 60
	return feature, nil
}

// DistanceComputer reduces a trial to its total path length in arena widths.
type DistanceComputer struct{}

var _ contract.FeatureComputer = DistanceComputer{}

func (DistanceComputer) Name() schema.FeatureName { return schema.FeatureTotalDistance }

func (DistanceComputer) Compute(track *schema.NormalizedTrack, trial schema.Trial, params schema.FeatureParams) (schema.TrialFeature, error) {
	feature := schema.TrialFeature{TrialID: trial.ID, Feature: schema.FeatureTotalDistance}
	points, err := referenceSeries(track, trial, params)
	if err != nil {
		return feature, err
	}
	distance, framesUsed := TotalPathLength(points)
	duration := validDuration(points, trial.FrameRate)
	feature.Diagnostics = schema.TrialDiagnostics{
		FramesUsed:    framesUsed,
		DurationSec:   duration,
		TotalDistance: distance,
	}
	if duration < params.MinDuration {
		feature.Value = schema.Missing()
		feature.Diagnostics.Reason = fmt.Sprintf("usable duration %.2fs below minimum %.2fs", duration, params.MinDuration)
		return feature, nil
	}
	feature.Value = distance
	return feature, nil
}

// referenceSeries prepares the reference landmark for motion features: clip to
// the time limit, then smooth. A stationary animal is a legitimate zero, not a
// missing value, so no movement gate is applied here.
func referenceSeries(track *schema.NormalizedTrack, trial schema.Trial, params schema.FeatureParams) ([]schema.NormPoint, error) {
	points, ok := track.Series(params.ReferencePart)
	if !ok {
		return nil, fmt.Errorf("%w: landmark %q not tracked", contract.ErrMalformedSchema, params.ReferencePart)
	}
	points = ClipToTimeLimit(points, trial.FrameRate, params.TimeLimit)
	return SmoothSeries(points, params.Window), nil
}

// ClipToTimeLimit truncates a series to the first limit seconds. A limit of
// zero keeps the whole trial.
func ClipToTimeLimit(points []schema.NormPoint, frameRate, limit float64) []schema.NormPoint {
	if limit <= 0 || frameRate <= 0 {
		return points
	}
	maxFrames := int(limit * frameRate)
	if maxFrames >= len(points) {
		return points
	}
	return points[:maxFrames]
}

// SmoothSeries applies a centered moving average of the given window to the
// valid frames of a series. Invalid frames stay invalid and are excluded from
// neighboring windows, so a tracking dropout never bleeds into its neighbors.
func SmoothSeries(points []schema.NormPoint, window int) []schema.NormPoint {
	if window <= 1 {
		return points
	}
	half := window / 2
	out := make([]schema.NormPoint, len(points))
	for i, p := range points {
		if !p.Valid {
			out[i] = schema.NormPoint{X: schema.Missing(), Y: schema.Missing(), Valid: false}
			continue
		}
		var sumX, sumY float64
		n := 0
		for j := max(0, i-half); j <= min(len(points)-1, i+half); j++ {
			if !points[j].Valid {
				continue
			}
			sumX += points[j].X
			sumY += points[j].Y
			n++
		}
		out[i] = schema.NormPoint{X: sumX / float64(n), Y: sumY / float64(n), Valid: true}
	}
	return out
}

// FrameSpeeds returns the per-step speed series of a landmark. Entry i is the
// speed between frames i and i+1 in arena widths per second, or missing when
// either endpoint is invalid.
func FrameSpeeds(points []schema.NormPoint, frameRate float64) []float64 {
	if len(points) < 2 {
		return nil
	}
	speeds := make([]float64, len(points)-1)
	for i := range speeds {
		a, b := points[i], points[i+1]
		if !a.Valid || !b.Valid {
			speeds[i] = schema.Missing()
			continue
		}
		speeds[i] = math.Hypot(b.X-a.X, b.Y-a.Y) * frameRate
	}
	return speeds
}

// TotalPathLength sums the distance between consecutive valid frames and
// reports how many frames contributed. Steps across a dropout are skipped
// rather than bridged, which slightly undercounts distance but never invents
// movement.
func TotalPathLength(points []schema.NormPoint) (float64, int) {
	total := 0.0
	used := 0
	for i := 1; i < len(points); i++ {
		if !points[i].Valid {
			continue
		}
		used++
		if !points[i-1].Valid {
			continue
		}
		total += math.Hypot(points[i].X-points[i-1].X, points[i].Y-points[i-1].Y)
	}
	if len(points) > 0 && points[0].Valid {
		used++
	}
	return total, used
}

// BinnedMeans reduces a per-frame or per-step value series into fixed-width
// time bins. Each bin holds the mean of its defined values; a bin with no
// defined value is reported missing, never zero.
func BinnedMeans(values []float64, frameRate, binSeconds float64) []float64 {
	if binSeconds <= 0 || frameRate <= 0 || len(values) == 0 {
		return nil
	}
	perBin := int(binSeconds * frameRate)
	if perBin < 1 {
		perBin = 1
	}
	bins := make([]float64, 0, len(values)/perBin+1)
	for start := 0; start < len(values); start += perBin {
		end := min(start+perBin, len(values))
		sum := 0.0
		n := 0
		for _, v := range values[start:end] {
			if schema.IsMissing(v) {
				continue
			}
			sum += v
			n++
		}
		if n == 0 {
			bins = append(bins, schema.Missing())
		} else {
			bins = append(bins, sum/float64(n))
		}
	}
	return bins
}

// MotionSeries builds the per-minute binned speed series for a trial,
// mirroring what the velocity computer reduces to a scalar.
func MotionSeries(track *schema.NormalizedTrack, trial schema.Trial, params schema.FeatureParams) (schema.FeatureSeries, error) {
	points, err := referenceSeries(track, trial, params)
	if err != nil {
		return schema.FeatureSeries{}, err
	}
	speeds := FrameSpeeds(points, trial.FrameRate)
	return schema.FeatureSeries{
		TrialID:    trial.ID,
		Feature:    schema.FeatureVelocityPerMin,
		Params:     params,
		BinSeconds: params.BinSeconds,
		Values:     BinnedMeans(speeds, trial.FrameRate, params.BinSeconds),
	}, nil
}

// validDuration measures the usable time span of a series: the count of valid
// frames converted to seconds.
func validDuration(points []schema.NormPoint, frameRate float64) float64 {
	if frameRate <= 0 {
		return 0
	}
	n := 0
	for _, p := range points {
		if p.Valid {
			n++
		}
	}
	return float64(n) / frameRate
}
