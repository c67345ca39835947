package schema

// Custom string types for type safety.
type (
	// FeatureName identifies a derived behavioral feature.
	FeatureName string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the relational backend for trial storage.
	DatabaseBackend string
)

// All behavioral features computed by the pipeline.
const (
	FeatureVelocityPerMin FeatureName = "velocity_per_min" // Mean speed, arena units per minute
	FeatureTotalDistance  FeatureName = "total_distance"   // Cumulative path length, arena units
	FeatureCurvatureMean  FeatureName = "curvature_mean"   // Mean trajectory curvature
	FeatureMisalignment   FeatureName = "head_body_misalignment"
	FeatureTailBend       FeatureName = "tail_bend_index"
	FeatureAngVelBody     FeatureName = "ang_vel_body" // Body-axis angular velocity, rad/s
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All relational backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none" // skip straight to the file adapter
)

// AllFeatures lists every feature in render order.
var AllFeatures = []FeatureName{
	FeatureVelocityPerMin,
	FeatureTotalDistance,
	FeatureCurvatureMean,
	FeatureMisalignment,
	FeatureTailBend,
	FeatureAngVelBody,
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidFeatures lists all computable features.
var ValidFeatures = map[FeatureName]struct{}{
	FeatureVelocityPerMin: {},
	FeatureTotalDistance:  {},
	FeatureCurvatureMean:  {},
	FeatureMisalignment:   {},
	FeatureTailBend:       {},
	FeatureAngVelBody:     {},
}

// ValidDatabaseBackends lists all valid relational backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// Default landmark names produced by the tracking rig.
const (
	DefaultReferencePart = "Midback"
	DefaultHeadPart      = "Head"
	DefaultNeckPart      = "Neck"
	DefaultMidPart       = "Lowerback"
	DefaultTailPart      = "Tailbase"
)

// DefaultCornerLandmarks are the arena boundary markers tracked in every video.
var DefaultCornerLandmarks = []string{"Corner1", "Corner2", "Corner3", "Corner4"}
