package core

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/ghrelinlab/posemetrics/internal/contract"
	"github.com/ghrelinlab/posemetrics/internal/trackstore"
	"github.com/ghrelinlab/posemetrics/schema"
)

// Default sweep grids, used when the flags leave a grid empty.
var (
	DefaultSweepWindows         = []int{3, 5, 7, 9}
	DefaultSweepSpeedThresholds = []float64{5e-3, 1e-2, 2e-2}
)

// sweepBanner is the status line announcing how many grid points the sweep
// will evaluate, printed before the long prefetch-and-grid run.
func sweepBanner(cfg *contract.Config) string {
	windows := len(cfg.SweepWindows)
	if windows == 0 {
		windows = len(DefaultSweepWindows)
	}
	speeds := len(cfg.SweepSpeedThresholds)
	if speeds == 0 {
		speeds = len(DefaultSweepSpeedThresholds)
	}
	n := windows * speeds
	if cfg.UseEmojis {
		return fmt.Sprintf("🧪 Sweeping %d parameter combinations...", n)
	}
	return fmt.Sprintf("Sweeping %d parameter combinations...", n)
}

// sweepTrial is a prefetched, normalized trial. Normalization depends only on
// the confidence threshold and the arena, neither of which is swept, so it is
// done once per trial rather than once per grid point.
type sweepTrial struct {
	trial schema.Trial
	track *schema.NormalizedTrack
}

// SweepSeparation evaluates the configured feature comparison over the full
// window by speed-threshold grid and returns the points ranked by group
// separation. Tracks are fetched and normalized once up front; the grid then
// runs entirely in memory.
func SweepSeparation(ctx context.Context, cfg *contract.Config, access *trackstore.DataAccess) ([]schema.SweepPoint, error) {
	windows := cfg.SweepWindows
	if len(windows) == 0 {
		windows = DefaultSweepWindows
	}
	speeds := cfg.SweepSpeedThresholds
	if len(speeds) == 0 {
		speeds = DefaultSweepSpeedThresholds
	}

	base, err := prefetchGroup(ctx, cfg, access, cfg.BaseGroup)
	if err != nil {
		return nil, err
	}
	target, err := prefetchGroup(ctx, cfg, access, cfg.TargetGroup)
	if err != nil {
		return nil, err
	}

	points := make([]schema.SweepPoint, 0, len(windows)*len(speeds))
	for _, window := range windows {
		for _, speed := range speeds {
			params := cfg.Params
			params.Window = window
			params.SpeedThreshold = speed

			result := CompareGroups(cfg.Feature, params,
				cfg.BaseGroup.Label, groupValues(cfg, base, params),
				cfg.TargetGroup.Label, groupValues(cfg, target, params))

			points = append(points, schema.SweepPoint{
				Params: params,
				Result: result,
				Score:  result.Base.Mean - result.Target.Mean,
			})
		}
	}

	// Largest absolute separation first; ties keep grid order.
	sort.SliceStable(points, func(i, j int) bool {
		si, sj := math.Abs(points[i].Score), math.Abs(points[j].Score)
		if math.IsNaN(sj) {
			return !math.IsNaN(si)
		}
		if math.IsNaN(si) {
			return false
		}
		return si > sj
	})
	return points, nil
}

// prefetchGroup lists a group's trials and loads their normalized tracks.
// Per-trial fetch failures are skipped, matching batch semantics.
func prefetchGroup(ctx context.Context, cfg *contract.Config, access *trackstore.DataAccess, group contract.GroupSpec) ([]sweepTrial, error) {
	trials, err := access.Catalog.List(ctx, group.Filter)
	if err != nil {
		return nil, err
	}
	prefetched := make([]sweepTrial, 0, len(trials))
	for _, trial := range trials {
		track, err := access.Tracks.Fetch(ctx, trial.ID)
		if err != nil {
			reportTrialError(trial.ID, err)
			continue
		}
		prefetched = append(prefetched, sweepTrial{
			trial: trial,
			track: Normalize(track, cfg.Arena, cfg.Params.Threshold),
		})
	}
	return prefetched, nil
}

// groupValues computes the defined per-trial feature values of a prefetched
// group under one grid point's parameters.
func groupValues(cfg *contract.Config, group []sweepTrial, params schema.FeatureParams) []float64 {
	computer, err := NewComputer(cfg.Feature)
	if err != nil {
		return nil
	}
	values := make([]float64, 0, len(group))
	for _, st := range group {
		feature, err := computer.Compute(st.track, st.trial, params)
		if err != nil {
			reportTrialError(st.trial.ID, err)
			continue
		}
		if !schema.IsMissing(feature.Value) {
			values = append(values, feature.Value)
		}
	}
	return values
}
