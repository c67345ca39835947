// Package core has normalization, feature computation and group statistics.
package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ghrelinlab/posemetrics/internal/contract"
	"github.com/ghrelinlab/posemetrics/internal/trackstore"
	"github.com/ghrelinlab/posemetrics/schema"
)

// NewComputer returns the feature computer for a feature name.
func NewComputer(name schema.FeatureName) (contract.FeatureComputer, error) {
	switch name {
	case schema.FeatureVelocityPerMin:
		return VelocityComputer{}, nil
	case schema.FeatureTotalDistance:
		return DistanceComputer{}, nil
	case schema.FeatureCurvatureMean:
		return CurvatureComputer{}, nil
	case schema.FeatureMisalignment:
		return MisalignmentComputer{}, nil
	case schema.FeatureTailBend:
		return TailBendComputer{}, nil
	case schema.FeatureAngVelBody:
		return AngularVelocityComputer{}, nil
	default:
		return nil, fmt.Errorf("unknown feature %q", name)
	}
}

// TrialSeries builds the binned time series behind a feature's scalar, for
// the features that have one. Angle features are per-posture summaries and
// carry no series.
func TrialSeries(track *schema.NormalizedTrack, trial schema.Trial, cfg *contract.Config) (schema.FeatureSeries, error) {
	switch cfg.Feature {
	case schema.FeatureVelocityPerMin:
		return MotionSeries(track, trial, cfg.Params)
	case schema.FeatureCurvatureMean:
		return CurvatureBins(track, trial, cfg.Params)
	default:
		return schema.FeatureSeries{}, fmt.Errorf("feature %q has no binned series", cfg.Feature)
	}
}

// ComputeSeriesBatch builds the binned series for every trial in a set.
// Per-trial failures are warned about and skipped, like ComputeBatch.
func ComputeSeriesBatch(ctx context.Context, cfg *contract.Config, access *trackstore.DataAccess, trials []schema.Trial) []schema.FeatureSeries {
	out := make([]schema.FeatureSeries, 0, len(trials))
	for _, trial := range trials {
		track, err := access.Tracks.Fetch(ctx, trial.ID)
		if err != nil {
			reportTrialError(trial.ID, err)
			continue
		}
		series, err := TrialSeries(Normalize(track, cfg.Arena, cfg.Params.Threshold), trial, cfg)
		if err != nil {
			reportTrialError(trial.ID, err)
			continue
		}
		out = append(out, series)
	}
	return out
}

// ComputeBatch runs one feature computer over a set of trials using a bounded
// worker pool. Each worker owns its trial's track, normalized track and
// result; the only shared resource is the track source's connection pool.
// Per-trial failures are warned about and skipped; they never abort the batch.
func ComputeBatch(ctx context.Context, cfg *contract.Config, access *trackstore.DataAccess, trials []schema.Trial) []schema.TrialFeature {
	computer, err := NewComputer(cfg.Feature)
	if err != nil {
		contract.LogWarn("cannot compute batch", err)
		return nil
	}

	trialCh := make(chan schema.Trial, len(trials))
	resultCh := make(chan schema.TrialFeature, len(trials))
	var wg sync.WaitGroup

	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for trial := range trialCh {
				feature, err := computeTrial(ctx, cfg, access, computer, trial)
				if err != nil {
					reportTrialError(trial.ID, err)
					continue
				}
				resultCh <- feature
			}
		}()
	}

	for _, trial := range trials {
		trialCh <- trial
	}
	close(trialCh)

	// Aggregation is a barrier: group statistics only make sense once every
	// contributing trial has finished.
	wg.Wait()
	close(resultCh)

	// Restore catalog order so downstream output is reproducible.
	byID := make(map[int64]schema.TrialFeature, len(trials))
	for feature := range resultCh {
		byID[feature.TrialID] = feature
	}
	results := make([]schema.TrialFeature, 0, len(byID))
	for _, trial := range trials {
		if feature, ok := byID[trial.ID]; ok {
			results = append(results, feature)
		}
	}
	return results
}

// computeTrial runs the full per-trial pipeline: fetch, normalize, compute.
func computeTrial(ctx context.Context, cfg *contract.Config, access *trackstore.DataAccess, computer contract.FeatureComputer, trial schema.Trial) (schema.TrialFeature, error) {
	track, err := access.Tracks.Fetch(ctx, trial.ID)
	if err != nil {
		return schema.TrialFeature{}, err
	}
	normalized := Normalize(track, cfg.Arena, cfg.Params.Threshold)
	if normalized.FrameCount() == 0 {
		return schema.TrialFeature{}, fmt.Errorf("%w: track has no frames", contract.ErrInsufficientValidFrames)
	}
	return computer.Compute(normalized, trial, cfg.Params)
}

// reportTrialError logs a skipped trial with its taxonomy bucket.
func reportTrialError(trialID int64, err error) {
	switch {
	case errors.Is(err, contract.ErrTrialNotFound):
		contract.LogWarn(fmt.Sprintf("trial %d skipped (no track)", trialID), err)
	case errors.Is(err, contract.ErrMalformedSchema):
		contract.LogWarn(fmt.Sprintf("trial %d skipped (malformed source)", trialID), err)
	case errors.Is(err, contract.ErrInsufficientValidFrames):
		contract.LogWarn(fmt.Sprintf("trial %d skipped (empty track)", trialID), err)
	default:
		contract.LogWarn(fmt.Sprintf("trial %d skipped", trialID), err)
	}
}

// Values extracts the defined scalar values from a batch, dropping missing
// ones. Group statistics only see defined values; diagnostics keep the rest.
func Values(features []schema.TrialFeature) []float64 {
	out := make([]float64, 0, len(features))
	for _, f := range features {
		if !schema.IsMissing(f.Value) {
			out = append(out, f.Value)
		}
	}
	return out
}
