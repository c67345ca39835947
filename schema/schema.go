// Package schema has models, constants and shared types for all parts of posemetrics.
package schema

import "math"

// Trial represents one recorded session of a single animal. Trials are created
// by the ingestion tooling and are read-only inside this pipeline.
type Trial struct {
	ID          int64     // Unique trial identifier
	VideoName   string    // Source video the track was extracted from
	Task        string    // Task label (e.g. LightOnly)
	Treatment   Treatment // Treatment/dose label; None for untreated controls
	Strain      string    // Strain or cohort label
	TrackRef    string    // Path (or key) of the per-frame coordinate track
	FrameRate   float64   // Frames per second of the source video
	TrialLength float64   // Trial length in seconds, 0 when unknown
}

// Point is a single landmark sample: raw pixel coordinates plus the
// detector-reported likelihood in [0,1].
type Point struct {
	X          float64
	Y          float64
	Confidence float64
}

// CoordinateTrack is the raw per-frame output of the pose tracker for one
// trial. Samples are stored per landmark, one entry per frame, so frame index
// i of every landmark refers to the same video frame.
type CoordinateTrack struct {
	Landmarks []string           // Landmark names in source column order
	Samples   map[string][]Point // Per-landmark samples, one per frame
}

// FrameCount returns the number of frames in the track.
func (t *CoordinateTrack) FrameCount() int {
	for _, s := range t.Samples {
		return len(s)
	}
	return 0
}

// Series returns the sample series for a landmark.
func (t *CoordinateTrack) Series(landmark string) ([]Point, bool) {
	s, ok := t.Samples[landmark]
	return s, ok
}

// HasLandmark reports whether the track carries the given landmark.
func (t *CoordinateTrack) HasLandmark(landmark string) bool {
	_, ok := t.Samples[landmark]
	return ok
}

// NormPoint is an arena-relative landmark sample. Invalid samples keep their
// frame slot so time alignment with the raw track is preserved.
type NormPoint struct {
	X     float64
	Y     float64
	Valid bool
}

// NormalizedTrack mirrors CoordinateTrack after arena normalization and
// confidence filtering. Frame counts are identical to the source track.
type NormalizedTrack struct {
	Landmarks []string
	Samples   map[string][]NormPoint
	Threshold float64 // Confidence threshold the track was filtered with
}

// FrameCount returns the number of frames in the track.
func (t *NormalizedTrack) FrameCount() int {
	for _, s := range t.Samples {
		return len(s)
	}
	return 0
}

// Series returns the normalized series for a landmark.
func (t *NormalizedTrack) Series(landmark string) ([]NormPoint, bool) {
	s, ok := t.Samples[landmark]
	return s, ok
}

// ValidCount returns how many frames of a landmark survived filtering.
func (t *NormalizedTrack) ValidCount(landmark string) int {
	n := 0
	for _, p := range t.Samples[landmark] {
		if p.Valid {
			n++
		}
	}
	return n
}

// Arena describes the arena boundary used to map pixel coordinates into the
// unit square. Corners are listed in the marker order of the rig:
// Corner1 top-right, Corner2 top-left, Corner3 bottom-left, Corner4 bottom-right.
type Arena struct {
	CornerLandmarks []string // Corner marker landmark names, empty for min-max fallback
}

// FeatureParams holds every tunable a feature computer accepts. Callers sweep
// these externally; the computers never bake them in.
type FeatureParams struct {
	Window          int     `json:"window"`           // Smoothing / finite-difference window in frames
	Threshold       float64 `json:"threshold"`        // Confidence threshold for normalization
	SpeedThreshold  float64 `json:"speed_threshold"`  // Speed below which curvature is undefined
	TimeLimit       float64 `json:"time_limit"`       // Upper bound in seconds, 0 = whole trial
	BinSeconds      float64 `json:"bin_seconds"`      // Time bin width for binned series
	MinDuration     float64 `json:"min_duration"`     // Minimum usable duration in seconds
	ReferencePart   string  `json:"reference_part"`   // Landmark used for motion/curvature
	HeadPart        string  `json:"head_part"`        // Head landmark for angle features
	NeckPart        string  `json:"neck_part"`        // Neck landmark for angle features
	MidPart         string  `json:"mid_part"`         // Mid-spine landmark for tail bend
	TailPart        string  `json:"tail_part"`        // Tail base landmark for angle features
}

// FeatureSeries is an ordered sequence of scalar values for one trial, one
// value per frame or per time bin. Missing values are NaN.
type FeatureSeries struct {
	TrialID    int64         `json:"trial_id"`
	Feature    FeatureName   `json:"feature"`
	Params     FeatureParams `json:"params"`
	BinSeconds float64       `json:"bin_seconds"` // 0 means per-frame
	Values     []float64     `json:"values"`
}

// TrialFeature is the scalar reduction of one feature for one trial. A NaN
// value means the feature could not be computed; Diagnostics says why.
type TrialFeature struct {
	TrialID     int64            `json:"trial_id"`
	Feature     FeatureName      `json:"feature"`
	Value       float64          `json:"value"`
	Diagnostics TrialDiagnostics `json:"diagnostics"`
}

// TrialDiagnostics carries per-trial bookkeeping for a computed feature.
type TrialDiagnostics struct {
	FramesUsed    int     `json:"frames_used"`
	DurationSec   float64 `json:"duration_s"`
	TotalDistance float64 `json:"total_distance"`
	Reason        string  `json:"reason,omitempty"` // Set when Value is NaN
}

// Missing is the explicit missing value used throughout feature series.
func Missing() float64 { return math.NaN() }

// IsMissing reports whether a feature value is the explicit missing marker.
func IsMissing(v float64) bool { return math.IsNaN(v) }
