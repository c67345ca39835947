package contract

import "errors"

// Error taxonomy for the pipeline. Per-trial conditions are reported and
// skipped; only schema-level misconfiguration aborts a batch.
var (
	// ErrConnectionUnavailable means the relational store could not be
	// reached. Recovered locally by falling back to the file adapter.
	ErrConnectionUnavailable = errors.New("relational store unavailable")

	// ErrTrialNotFound means a requested identifier has no matching track or
	// metadata row. Reported per trial; the batch continues.
	ErrTrialNotFound = errors.New("trial not found")

	// ErrMalformedSchema means a required column is absent from a track or
	// metadata source. Fatal for that trial only.
	ErrMalformedSchema = errors.New("malformed schema")

	// ErrInsufficientValidFrames means a feature computer could not satisfy
	// its stencil or landmark requirements for a whole trial.
	ErrInsufficientValidFrames = errors.New("insufficient valid frames")

	// ErrDegenerateGroup means fewer than two trials contributed to a group,
	// so pairwise comparison fields are undefined.
	ErrDegenerateGroup = errors.New("degenerate group")
)
