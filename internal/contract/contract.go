// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/ghrelinlab/posemetrics/schema"
)

// TrackSource resolves a trial identifier to its raw coordinate track.
// Implementations must produce identical in-memory tracks regardless of the
// underlying storage, so downstream components stay source-agnostic.
type TrackSource interface {
	// Fetch returns the per-frame coordinate track for a trial.
	// Returns ErrTrialNotFound when the identifier has no matching track.
	Fetch(ctx context.Context, trialID int64) (*schema.CoordinateTrack, error)
}

// TrialCatalog resolves trial metadata matching an experimental condition.
type TrialCatalog interface {
	// List returns trials matching the filter, in deterministic catalog order.
	List(ctx context.Context, filter schema.ConditionFilter) ([]schema.Trial, error)

	// Get returns the metadata for a single trial.
	// Returns ErrTrialNotFound when the identifier is unknown.
	Get(ctx context.Context, trialID int64) (schema.Trial, error)
}

// FeatureStore persists computed per-trial feature scalars. Stores backed by
// the file adapter are no-ops.
type FeatureStore interface {
	// SaveTrialFeature upserts one computed scalar for a trial.
	SaveTrialFeature(ctx context.Context, feature schema.TrialFeature, params schema.FeatureParams) error
}

// FeatureComputer reduces a normalized track to a scalar feature value for
// one trial. Implementations are pure: no state survives a call.
type FeatureComputer interface {
	// Name identifies the feature this computer produces.
	Name() schema.FeatureName

	// Compute derives the trial scalar from a normalized track.
	// A missing result is reported as a NaN value with a diagnostic reason,
	// never as an error; errors are reserved for malformed input.
	Compute(track *schema.NormalizedTrack, trial schema.Trial, params schema.FeatureParams) (schema.TrialFeature, error)
}
