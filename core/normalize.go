package core

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ghrelinlab/posemetrics/schema"
)

// affine is a 2D axis-aligned affine transform mapping raw pixel coordinates
// into the unit square.
type affine struct {
	scaleX, scaleY   float64
	offsetX, offsetY float64
}

func (a affine) apply(p schema.Point) (float64, float64) {
	return (p.X - a.offsetX) * a.scaleX, (p.Y - a.offsetY) * a.scaleY
}

// Normalize maps a raw coordinate track into arena-relative space and applies
// confidence gating. Every sample with confidence below the threshold becomes
// an invalid frame; invalid frames are never interpolated and every downstream
// computation must skip them.
//
// The transform is derived from the median positions of the arena corner
// landmarks. When fewer than two corners are tracked the arena extent is
// unknown, so the track's own bounding box over valid samples stands in. A
// single shared transform is used for all landmarks: per-landmark scaling
// would distort inter-landmark angles.
func Normalize(track *schema.CoordinateTrack, arena schema.Arena, threshold float64) *schema.NormalizedTrack {
	tf := arenaTransform(track, arena, threshold)

	normalized := &schema.NormalizedTrack{
		Landmarks: make([]string, 0, len(track.Landmarks)),
		Samples:   make(map[string][]schema.NormPoint, len(track.Landmarks)),
		Threshold: threshold,
	}
	corners := cornerSet(arena)
	for _, landmark := range track.Landmarks {
		if corners[landmark] {
			continue
		}
		raw := track.Samples[landmark]
		points := make([]schema.NormPoint, len(raw))
		for i, p := range raw {
			if p.Confidence < threshold || math.IsNaN(p.X) || math.IsNaN(p.Y) {
				points[i] = schema.NormPoint{X: schema.Missing(), Y: schema.Missing(), Valid: false}
				continue
			}
			x, y := tf.apply(p)
			points[i] = schema.NormPoint{X: x, Y: y, Valid: true}
		}
		normalized.Landmarks = append(normalized.Landmarks, landmark)
		normalized.Samples[landmark] = points
	}
	return normalized
}

// arenaTransform derives the raw-to-unit-square transform.
func arenaTransform(track *schema.CoordinateTrack, arena schema.Arena, threshold float64) affine {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	found := 0
	for _, corner := range arena.CornerLandmarks {
		samples, ok := track.Samples[corner]
		if !ok {
			continue
		}
		x, y, ok := medianPosition(samples, threshold)
		if !ok {
			continue
		}
		found++
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}

	if found < 2 {
		// Arena extent unknown; fall back to the extent of the animal's own
		// valid samples across all non-corner landmarks.
		minX, minY = math.Inf(1), math.Inf(1)
		maxX, maxY = math.Inf(-1), math.Inf(-1)
		corners := cornerSet(arena)
		for landmark, samples := range track.Samples {
			if corners[landmark] {
				continue
			}
			for _, p := range samples {
				if p.Confidence < threshold || math.IsNaN(p.X) || math.IsNaN(p.Y) {
					continue
				}
				minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
				minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
			}
		}
	}

	spanX, spanY := maxX-minX, maxY-minY
	if spanX <= 0 || math.IsInf(spanX, 0) {
		spanX = 1
	}
	if spanY <= 0 || math.IsInf(spanY, 0) {
		spanY = 1
	}
	return affine{scaleX: 1 / spanX, scaleY: 1 / spanY, offsetX: minX, offsetY: minY}
}

// medianPosition returns the median x and y of all samples at or above the
// confidence threshold. Corner markers are static, so the median is robust
// against the occasional tracking glitch.
func medianPosition(samples []schema.Point, threshold float64) (float64, float64, bool) {
	xs := make([]float64, 0, len(samples))
	ys := make([]float64, 0, len(samples))
	for _, p := range samples {
		if p.Confidence < threshold || math.IsNaN(p.X) || math.IsNaN(p.Y) {
			continue
		}
		xs = append(xs, p.X)
		ys = append(ys, p.Y)
	}
	if len(xs) == 0 {
		return 0, 0, false
	}
	sort.Float64s(xs)
	sort.Float64s(ys)
	return stat.Quantile(0.5, stat.Empirical, xs, nil), stat.Quantile(0.5, stat.Empirical, ys, nil), true
}

func cornerSet(arena schema.Arena) map[string]bool {
	set := make(map[string]bool, len(arena.CornerLandmarks))
	for _, corner := range arena.CornerLandmarks {
		set[corner] = true
	}
	return set
}
