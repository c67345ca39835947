package core

import (
	"context"
	"fmt"
	"time"

	"github.com/ghrelinlab/posemetrics/internal/contract"
	"github.com/ghrelinlab/posemetrics/internal/outwriter"
	"github.com/ghrelinlab/posemetrics/internal/trackstore"
	"github.com/ghrelinlab/posemetrics/schema"
)

// ExecutorFunc defines the function signature for executing different analysis modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config) error

// ExecuteFeatures computes the selected feature for every trial in the base
// group and prints the per-trial values. With --save and a relational
// backend, each value is also persisted; with --series the binned time
// series is printed instead of the scalar.
// It serves as the main entry point for the 'features' mode.
func ExecuteFeatures(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	access, err := trackstore.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = access.Close() }()

	trials, err := access.Catalog.List(ctx, cfg.BaseGroup.Filter)
	if err != nil {
		return err
	}
	if cfg.ShowSeries {
		series := ComputeSeriesBatch(ctx, cfg, access, trials)
		return outwriter.PrintFeatureSeries(series, cfg.BaseGroup.Label, cfg, time.Since(start))
	}

	features := ComputeBatch(ctx, cfg, access, trials)
	if cfg.SaveFeatures {
		saveFeatures(ctx, cfg, access, features)
	}
	duration := time.Since(start)
	return outwriter.PrintTrialFeatures(features, cfg.BaseGroup.Label, cfg, duration)
}

// ExecuteCompare computes the selected feature for both treatment groups and
// prints the groupwise comparison.
// It serves as the main entry point for the 'compare' mode.
func ExecuteCompare(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	access, err := trackstore.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = access.Close() }()

	result, err := runGroupComparison(ctx, cfg, access, cfg.Params)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintComparisonResult(result, cfg, duration)
}

// ExecuteSweep evaluates the group comparison over a grid of window and
// speed-threshold values and prints the grid ranked by group separation.
// It serves as the main entry point for the 'sweep' mode.
func ExecuteSweep(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	access, err := trackstore.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = access.Close() }()

	if cfg.Output == schema.TextOut {
		fmt.Println(sweepBanner(cfg))
	}
	points, err := SweepSeparation(ctx, cfg, access)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	return outwriter.PrintSweepResults(points, cfg, duration)
}

// ExecuteCatalog lists the trials each group filter selects, so an analyst
// can sanity-check group membership before spending compute on a comparison.
// It serves as the main entry point for the 'catalog' mode.
func ExecuteCatalog(ctx context.Context, cfg *contract.Config) error {
	start := time.Now()
	access, err := trackstore.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = access.Close() }()

	rows := make([]schema.CatalogRow, 0)
	for _, group := range []contract.GroupSpec{cfg.BaseGroup, cfg.TargetGroup} {
		trials, err := access.Catalog.List(ctx, group.Filter)
		if err != nil {
			return err
		}
		for _, trial := range trials {
			rows = append(rows, schema.CatalogRow{Trial: trial, Group: group.Label})
		}
	}
	if cfg.ExportPrefix != "" {
		if err := outwriter.ExportCatalogCSV(rows, cfg.ExportPrefix); err != nil {
			return err
		}
	}
	duration := time.Since(start)
	return outwriter.PrintCatalogRows(rows, cfg, duration)
}

// runGroupComparison is the shared compare core: list both groups, compute
// both batches, reduce to one comparison row.
func runGroupComparison(ctx context.Context, cfg *contract.Config, access *trackstore.DataAccess, params schema.FeatureParams) (schema.GroupComparison, error) {
	runCfg := cfg.WithParams(params)

	baseTrials, err := access.Catalog.List(ctx, cfg.BaseGroup.Filter)
	if err != nil {
		return schema.GroupComparison{}, fmt.Errorf("listing %s trials: %w", cfg.BaseGroup.Label, err)
	}
	targetTrials, err := access.Catalog.List(ctx, cfg.TargetGroup.Filter)
	if err != nil {
		return schema.GroupComparison{}, fmt.Errorf("listing %s trials: %w", cfg.TargetGroup.Label, err)
	}

	baseFeatures := ComputeBatch(ctx, runCfg, access, baseTrials)
	targetFeatures := ComputeBatch(ctx, runCfg, access, targetTrials)
	if cfg.SaveFeatures {
		saveFeatures(ctx, runCfg, access, baseFeatures)
		saveFeatures(ctx, runCfg, access, targetFeatures)
	}

	result := CompareGroups(
		cfg.Feature, params,
		cfg.BaseGroup.Label, Values(baseFeatures),
		cfg.TargetGroup.Label, Values(targetFeatures),
	)
	if result.Comparison == nil {
		contract.LogWarn("comparison undefined, descriptive statistics only", contract.ErrDegenerateGroup)
	}
	return result, nil
}

// saveFeatures persists computed values through the feature store. Persistence
// failures are warnings; the analysis output is already in hand, and one bad
// row must not stop the remaining trials from being saved.
func saveFeatures(ctx context.Context, cfg *contract.Config, access *trackstore.DataAccess, features []schema.TrialFeature) {
	for _, feature := range features {
		if err := access.Features.SaveTrialFeature(ctx, feature, cfg.Params); err != nil {
			contract.LogWarn(fmt.Sprintf("cannot save feature for trial %d", feature.TrialID), err)
			continue
		}
	}
}
