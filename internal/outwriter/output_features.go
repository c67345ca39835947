package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/ghrelinlab/posemetrics/internal/contract"
	"github.com/ghrelinlab/posemetrics/internal/parquet"
	"github.com/ghrelinlab/posemetrics/schema"
)

// PrintTrialFeatures outputs per-trial feature values, dispatching on the
// configured output format.
func PrintTrialFeatures(features []schema.TrialFeature, group string, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, features)
		}, "JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeTrialFeaturesCSV(w, features, group, fmtFloat, intFmt)
		}, "CSV")
	case schema.ParquetOut:
		if err := parquet.WriteTrialFeaturesParquet(parquet.ConvertTrialFeatures(features, cfg.Params), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Printf("Wrote Parquet to %s\n", cfg.OutputFile)
		return nil
	default:
		return writeTrialFeaturesTable(features, group, cfg, fmtFloat, intFmt, duration)
	}
}

// writeTrialFeaturesTable writes the per-trial values in a human-readable table.
func writeTrialFeaturesTable(features []schema.TrialFeature, group string, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	table := tablewriter.NewWriter(os.Stdout)

	table.Header([]string{"Trial", "Value", "Frames", "Duration(s)", "Note"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	defined := 0
	for _, f := range features {
		if !schema.IsMissing(f.Value) {
			defined++
		}
		data = append(data, []string{
			strconv.FormatInt(f.TrialID, 10),
			fmtFloat(f.Value),
			fmt.Sprintf(intFmt, f.Diagnostics.FramesUsed),
			fmtFloat(f.Diagnostics.DurationSec),
			f.Diagnostics.Reason,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Printf("Group %s: %d trials, %d with a defined %s value\n", group, len(features), defined, cfg.Feature)
	fmt.Printf("Analysis completed in %v using %d workers.\n", duration, cfg.Workers)
	return nil
}

// writeTrialFeaturesCSV writes the per-trial values in CSV format.
func writeTrialFeaturesCSV(w io.Writer, features []schema.TrialFeature, group string, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"trial_id", "group", "feature", "value", "frames_used", "duration_s", "reason"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, f := range features {
			row := []string{
				strconv.FormatInt(f.TrialID, 10),
				group,
				string(f.Feature),
				fmtFloat(f.Value),
				fmt.Sprintf(intFmt, f.Diagnostics.FramesUsed),
				fmtFloat(f.Diagnostics.DurationSec),
				f.Diagnostics.Reason,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
