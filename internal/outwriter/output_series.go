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
	"github.com/ghrelinlab/posemetrics/schema"
)

// PrintFeatureSeries outputs per-trial binned series, dispatching on the
// configured output format. Parquet degrades to CSV; the ragged per-trial
// rows do not fit a fixed columnar schema.
func PrintFeatureSeries(series []schema.FeatureSeries, group string, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, series)
		}, "JSON")
	case schema.CSVOut, schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeFeatureSeriesCSV(w, series, group, fmtFloat)
		}, "CSV")
	default:
		return writeFeatureSeriesTable(series, group, cfg, fmtFloat, duration)
	}
}

// writeFeatureSeriesTable writes one row per bin in a human-readable table.
func writeFeatureSeriesTable(series []schema.FeatureSeries, group string, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(os.Stdout)

	table.Header([]string{"Trial", "Bin", "Start(s)", "Value"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, s := range series {
		for i, v := range s.Values {
			data = append(data, []string{
				strconv.FormatInt(s.TrialID, 10),
				strconv.Itoa(i),
				fmtFloat(float64(i) * s.BinSeconds),
				fmtFloat(v),
			})
		}
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Printf("Group %s: %d trials with a binned %s series (bin=%gs)\n", group, len(series), cfg.Feature, cfg.Params.BinSeconds)
	fmt.Printf("Analysis completed in %v using %d workers.\n", duration, cfg.Workers)
	return nil
}

// writeFeatureSeriesCSV writes one row per bin in long CSV format.
func writeFeatureSeriesCSV(w io.Writer, series []schema.FeatureSeries, group string, fmtFloat func(float64) string) error {
	header := []string{"trial_id", "group", "feature", "bin_index", "bin_start_s", "value"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range series {
			for i, v := range s.Values {
				row := []string{
					strconv.FormatInt(s.TrialID, 10),
					group,
					string(s.Feature),
					strconv.Itoa(i),
					fmtFloat(float64(i) * s.BinSeconds),
					fmtFloat(v),
				}
				if err := cw.Write(row); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
