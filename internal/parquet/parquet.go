// Package parquet provides data structures and functions for exporting
// behavioral analysis data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/ghrelinlab/posemetrics/schema"
)

// TrialFeatureRecord represents one computed feature value for one trial.
// This struct maps to the dlc_features database table.
type TrialFeatureRecord struct {
	// TrialID references the trial the value was computed for
	TrialID int64 `parquet:"trial_id,snappy"`

	// Feature is the feature name
	Feature string `parquet:"feature,snappy"`

	// Value is the scalar feature value (nullable; null means not computable)
	Value *float64 `parquet:"value,optional,snappy"`

	// FramesUsed is the number of frames that contributed to the value
	FramesUsed int32 `parquet:"frames_used,snappy"`

	// DurationSec is the usable duration of the trial in seconds
	DurationSec float64 `parquet:"duration_s,snappy"`

	// Reason explains a null value (nullable)
	Reason *string `parquet:"reason,optional,snappy"`

	// Params contains the JSON-encoded feature parameters
	Params string `parquet:"params,snappy"`

	// ComputedAt is when the batch ran
	ComputedAt time.Time `parquet:"computed_at,snappy"`
}

// GroupComparisonRecord represents one groupwise comparison row: two group
// summaries plus the Welch test. Test columns are nullable because a
// degenerate group (n < 2) yields no comparison.
type GroupComparisonRecord struct {
	Feature    string   `parquet:"feature,snappy"`
	BaseGroup  string   `parquet:"base_group,snappy"`
	BaseN      int32    `parquet:"base_n,snappy"`
	BaseMean   *float64 `parquet:"base_mean,optional,snappy"`
	BaseSEM    *float64 `parquet:"base_sem,optional,snappy"`
	TargetGrp  string   `parquet:"target_group,snappy"`
	TargetN    int32    `parquet:"target_n,snappy"`
	TargetMean *float64 `parquet:"target_mean,optional,snappy"`
	TargetSEM  *float64 `parquet:"target_sem,optional,snappy"`
	TStat      *float64 `parquet:"t_stat,optional,snappy"`
	DF         *float64 `parquet:"df,optional,snappy"`
	PValue     *float64 `parquet:"p_value,optional,snappy"`
	CohenD     *float64 `parquet:"cohen_d,optional,snappy"`
	Params     string   `parquet:"params,snappy"`
}

// SweepRecord represents one grid point of a parameter sweep.
type SweepRecord struct {
	Window         int32    `parquet:"window,snappy"`
	SpeedThreshold float64  `parquet:"speed_threshold,snappy"`
	Score          *float64 `parquet:"score,optional,snappy"`
	PValue         *float64 `parquet:"p_value,optional,snappy"`
	CohenD         *float64 `parquet:"cohen_d,optional,snappy"`
	BaseN          int32    `parquet:"base_n,snappy"`
	TargetN        int32    `parquet:"target_n,snappy"`
}

// WriteTrialFeaturesParquet writes a slice of TrialFeatureRecord structs to a Parquet file.
func WriteTrialFeaturesParquet(data []TrialFeatureRecord, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteGroupComparisonsParquet writes a slice of GroupComparisonRecord structs to a Parquet file.
func WriteGroupComparisonsParquet(data []GroupComparisonRecord, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteSweepParquet writes a slice of SweepRecord structs to a Parquet file.
func WriteSweepParquet(data []SweepRecord, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet creates the output file and streams records through a generic
// writer whose schema is inferred from the struct tags.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	return nil
}

// ConvertTrialFeatures converts schema.TrialFeature values for Parquet export.
func ConvertTrialFeatures(features []schema.TrialFeature, params schema.FeatureParams) []TrialFeatureRecord {
	encoded, _ := json.Marshal(params)
	now := time.Now()
	result := make([]TrialFeatureRecord, len(features))
	for i, f := range features {
		result[i] = TrialFeatureRecord{
			TrialID:     f.TrialID,
			Feature:     string(f.Feature),
			Value:       nullableFloat(f.Value),
			FramesUsed:  int32(f.Diagnostics.FramesUsed),
			DurationSec: f.Diagnostics.DurationSec,
			Reason:      nullableString(f.Diagnostics.Reason),
			Params:      string(encoded),
			ComputedAt:  now,
		}
	}
	return result
}

// ConvertGroupComparison converts a schema.GroupComparison for Parquet export.
func ConvertGroupComparison(result schema.GroupComparison) []GroupComparisonRecord {
	encoded, _ := json.Marshal(result.Params)
	record := GroupComparisonRecord{
		Feature:    string(result.Feature),
		BaseGroup:  result.Base.Group,
		BaseN:      int32(result.Base.N),
		BaseMean:   nullableFloat(result.Base.Mean),
		BaseSEM:    nullableFloat(result.Base.SEM),
		TargetGrp:  result.Target.Group,
		TargetN:    int32(result.Target.N),
		TargetMean: nullableFloat(result.Target.Mean),
		TargetSEM:  nullableFloat(result.Target.SEM),
		Params:     string(encoded),
	}
	if c := result.Comparison; c != nil {
		record.TStat = nullableFloat(c.TStat)
		record.DF = nullableFloat(c.DF)
		record.PValue = nullableFloat(c.PValue)
		record.CohenD = nullableFloat(c.CohenD)
	}
	return []GroupComparisonRecord{record}
}

// ConvertSweepPoints converts schema.SweepPoint values for Parquet export.
func ConvertSweepPoints(points []schema.SweepPoint) []SweepRecord {
	result := make([]SweepRecord, len(points))
	for i, p := range points {
		record := SweepRecord{
			Window:         int32(p.Params.Window),
			SpeedThreshold: p.Params.SpeedThreshold,
			Score:          nullableFloat(p.Score),
			BaseN:          int32(p.Result.Base.N),
			TargetN:        int32(p.Result.Target.N),
		}
		if c := p.Result.Comparison; c != nil {
			record.PValue = nullableFloat(c.PValue)
			record.CohenD = nullableFloat(c.CohenD)
		}
		result[i] = record
	}
	return result
}

func nullableFloat(v float64) *float64 {
	if schema.IsMissing(v) {
		return nil
	}
	return &v
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
