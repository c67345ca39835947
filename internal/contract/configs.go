package contract

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/ghrelinlab/posemetrics/schema"
)

// Default values for configuration.
const (
	DefaultThreshold      = 0.5    // Confidence threshold for landmark samples
	DefaultWindow         = 5      // Smoothing / finite-difference window, frames
	DefaultSpeedThreshold = 1e-2   // Curvature undefined below this speed
	DefaultTimeLimit      = 1200.0 // Seconds of track to analyze
	DefaultBinSeconds     = 60.0   // Per-minute binning
	DefaultMinDuration    = 5.0    // Trials shorter than this yield missing
	DefaultFrameRate      = 30.0   // Used when trial metadata omits frame_rate
	DefaultPrecision      = 3
	DefaultConnectTimeout = 3 * time.Second
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// GroupSpec names one treatment group and the condition filter that selects
// its trials.
type GroupSpec struct {
	Label  string
	Filter schema.ConditionFilter
}

// Config holds the runtime configuration for a batch run.
// This struct is the final, validated config; raw inputs live in ConfigRawInput.
type Config struct {
	Backend        schema.DatabaseBackend
	DBConnect      string // Please use env var as this is plaintext
	DataDir        string // Fallback root for flat-file catalog and tracks
	ConnectTimeout time.Duration

	Feature schema.FeatureName
	Params  schema.FeatureParams
	Arena   schema.Arena

	BaseGroup   GroupSpec
	TargetGroup GroupSpec

	Workers      int
	Output       schema.OutputMode
	OutputFile   string
	Precision    int
	Width        int // Terminal width override (0 = auto-detect)
	UseEmojis    bool
	UseColors    bool
	SaveFeatures bool
	ShowSeries   bool // Print binned per-trial series instead of scalars
	ExportPrefix string // CSV prefix for catalog exports, empty disables

	// Sweep grids; only consulted by the sweep command.
	SweepWindows         []int
	SweepSpeedThresholds []float64
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	Backend        string `mapstructure:"backend"`
	DBConnect      string `mapstructure:"db-connect"`
	DataDir        string `mapstructure:"data-dir"`
	ConnectTimeout string `mapstructure:"connect-timeout"`

	Feature        string  `mapstructure:"feature"`
	Bodypart       string  `mapstructure:"bodypart"`
	Threshold      float64 `mapstructure:"threshold"`
	Window         int     `mapstructure:"window"`
	SpeedThreshold float64 `mapstructure:"speed-threshold"`
	TimeLimit      float64 `mapstructure:"time-limit"`
	BinSeconds     float64 `mapstructure:"bin-seconds"`
	MinDuration    float64 `mapstructure:"min-duration"`
	NoArenaCorners bool    `mapstructure:"no-arena-corners"`

	Task            string `mapstructure:"task"`
	Strain          string `mapstructure:"strain"`
	BaseLabel       string `mapstructure:"base-label"`
	BaseTreatment   string `mapstructure:"base-treatment"`
	TargetLabel     string `mapstructure:"target-label"`
	TargetTreatment string `mapstructure:"target-treatment"`

	Workers      int    `mapstructure:"workers"`
	Output       string `mapstructure:"output"`
	OutputFile   string `mapstructure:"output-file"`
	Precision    int    `mapstructure:"precision"`
	Width        int    `mapstructure:"width"`
	Emoji        string `mapstructure:"emoji"`
	Color        string `mapstructure:"color"`
	Save         bool   `mapstructure:"save"`
	Series       bool   `mapstructure:"series"`
	ExportPrefix string `mapstructure:"export-prefix"`

	// --- Fields from sweepCmd.Flags() ---
	Windows         string `mapstructure:"windows"`
	SpeedThresholds string `mapstructure:"speed-thresholds"`
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and populates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateStorageInputs(cfg, input); err != nil {
		return err
	}
	if err := validateFeatureInputs(cfg, input); err != nil {
		return err
	}
	if err := processGroups(cfg, input); err != nil {
		return err
	}
	if err := processSweepGrids(cfg, input); err != nil {
		return err
	}
	return validateOutputInputs(cfg, input)
}

// validateStorageInputs resolves the relational backend and the file fallback.
func validateStorageInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Backend = schema.DatabaseBackend(strings.ToLower(input.Backend))
	if _, ok := schema.ValidDatabaseBackends[cfg.Backend]; !ok {
		return fmt.Errorf("invalid backend '%s'. must be sqlite, mysql, postgresql, none", input.Backend)
	}
	cfg.DBConnect = input.DBConnect
	if err := ValidateDatabaseConnectionString(cfg.Backend, cfg.DBConnect); err != nil {
		return err
	}

	cfg.DataDir = input.DataDir
	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}
	// The fallback root missing is the one batch-fatal storage condition:
	// with neither a database nor files there is nothing to analyze.
	if info, err := os.Stat(cfg.DataDir); err != nil || !info.IsDir() {
		return fmt.Errorf("data directory %q does not exist or is not a directory", cfg.DataDir)
	}

	cfg.ConnectTimeout = DefaultConnectTimeout
	if input.ConnectTimeout != "" {
		d, err := time.ParseDuration(input.ConnectTimeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid connect-timeout %q", input.ConnectTimeout)
		}
		cfg.ConnectTimeout = d
	}
	return nil
}

// validateFeatureInputs resolves the feature selection and its parameters.
func validateFeatureInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Feature = schema.FeatureName(strings.ToLower(input.Feature))
	if _, ok := schema.ValidFeatures[cfg.Feature]; !ok {
		return fmt.Errorf("invalid feature '%s'", input.Feature)
	}

	if input.Threshold < 0 || input.Threshold > 1 {
		return fmt.Errorf("threshold must be within [0,1], got %v", input.Threshold)
	}
	if input.Window < 1 {
		return fmt.Errorf("window must be >= 1, got %d", input.Window)
	}
	if input.BinSeconds <= 0 {
		return fmt.Errorf("bin-seconds must be positive, got %v", input.BinSeconds)
	}
	if input.TimeLimit < 0 {
		return fmt.Errorf("time-limit must be >= 0, got %v", input.TimeLimit)
	}

	ref := input.Bodypart
	if ref == "" {
		ref = schema.DefaultReferencePart
	}
	cfg.Params = schema.FeatureParams{
		Window:         input.Window,
		Threshold:      input.Threshold,
		SpeedThreshold: input.SpeedThreshold,
		TimeLimit:      input.TimeLimit,
		BinSeconds:     input.BinSeconds,
		MinDuration:    input.MinDuration,
		ReferencePart:  ref,
		HeadPart:       schema.DefaultHeadPart,
		NeckPart:       schema.DefaultNeckPart,
		MidPart:        schema.DefaultMidPart,
		TailPart:       schema.DefaultTailPart,
	}

	cfg.Arena = schema.Arena{CornerLandmarks: schema.DefaultCornerLandmarks}
	if input.NoArenaCorners {
		cfg.Arena = schema.Arena{}
	}
	return nil
}

// processGroups builds the two condition filters for groupwise comparison.
func processGroups(cfg *Config, input *ConfigRawInput) error {
	baseFilter := schema.ParseTreatmentFilter(input.BaseTreatment)
	targetFilter := schema.ParseTreatmentFilter(input.TargetTreatment)

	baseLabel := input.BaseLabel
	if baseLabel == "" {
		baseLabel = baseFilter.String()
	}
	targetLabel := input.TargetLabel
	if targetLabel == "" {
		targetLabel = targetFilter.String()
	}
	if baseLabel == targetLabel {
		return fmt.Errorf("base and target groups must have distinct labels, both are %q", baseLabel)
	}

	cfg.BaseGroup = GroupSpec{
		Label:  baseLabel,
		Filter: schema.ConditionFilter{Task: input.Task, Treatment: baseFilter, Strain: input.Strain},
	}
	cfg.TargetGroup = GroupSpec{
		Label:  targetLabel,
		Filter: schema.ConditionFilter{Task: input.Task, Treatment: targetFilter, Strain: input.Strain},
	}
	return nil
}

// processSweepGrids parses the comma-separated sweep grids.
func processSweepGrids(cfg *Config, input *ConfigRawInput) error {
	var err error
	if cfg.SweepWindows, err = ParseIntList(input.Windows); err != nil {
		return fmt.Errorf("invalid windows grid: %w", err)
	}
	if cfg.SweepSpeedThresholds, err = ParseFloatList(input.SpeedThresholds); err != nil {
		return fmt.Errorf("invalid speed-thresholds grid: %w", err)
	}
	for _, w := range cfg.SweepWindows {
		if w < 1 {
			return fmt.Errorf("sweep window must be >= 1, got %d", w)
		}
	}
	return nil
}

// validateOutputInputs resolves rendering and concurrency knobs.
func validateOutputInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output '%s'. must be text, csv, json, parquet", input.Output)
	}
	cfg.OutputFile = input.OutputFile
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	cfg.Workers = input.Workers
	if cfg.Workers < 1 {
		cfg.Workers = DefaultWorkers
	}
	cfg.Precision = input.Precision
	if cfg.Precision < 0 {
		cfg.Precision = DefaultPrecision
	}
	cfg.Width = input.Width
	cfg.UseEmojis = strings.EqualFold(input.Emoji, "yes")
	cfg.UseColors = !strings.EqualFold(input.Color, "no")
	cfg.SaveFeatures = input.Save
	cfg.ShowSeries = input.Series
	cfg.ExportPrefix = input.ExportPrefix
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection
// strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") && !strings.HasPrefix(connStr, "postgres://") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' or use the postgres:// URL form")
		}
	}
	return nil
}

// WithParams returns a copy of the Config carrying different feature
// parameters. Sweeps use this to keep each grid point isolated.
func (c *Config) WithParams(p schema.FeatureParams) *Config {
	clone := *c
	clone.Params = p
	return &clone
}
