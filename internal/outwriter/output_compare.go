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

// PrintComparisonResult outputs a groupwise comparison, dispatching on the
// configured output format.
func PrintComparisonResult(result schema.GroupComparison, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeComparisonCSV(w, result, fmtFloat)
		}, "CSV")
	case schema.ParquetOut:
		if err := parquet.WriteGroupComparisonsParquet(parquet.ConvertGroupComparison(result), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Wrote Parquet to %s\n", cfg.OutputFile)
		return nil
	default:
		return writeComparisonTable(result, cfg, fmtFloat, duration)
	}
}

// writeComparisonTable writes the two group summaries and the Welch test in a
// human-readable table.
func writeComparisonTable(result schema.GroupComparison, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(os.Stdout)

	table.Header([]string{"Group", "N", "Mean", "SEM"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	data := [][]string{
		{result.Base.Group, strconv.Itoa(result.Base.N), fmtFloat(result.Base.Mean), fmtFloat(result.Base.SEM)},
		{result.Target.Group, strconv.Itoa(result.Target.N), fmtFloat(result.Target.Mean), fmtFloat(result.Target.SEM)},
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Printf("Feature: %s (window=%d, threshold=%.2f, speed-threshold=%g)\n",
		result.Feature, result.Params.Window, result.Params.Threshold, result.Params.SpeedThreshold)
	if c := result.Comparison; c != nil {
		signif := schema.SignificanceLabel(c.PValue)
		if cfg.UseColors {
			signif = contract.GetColorSignificance(c.PValue)
		}
		fmt.Printf("Welch t=%s (df=%s), p=%s %s, Cohen's d=%s\n",
			fmtFloat(c.TStat), fmtFloat(c.DF), fmtFloat(c.PValue), signif, fmtFloat(c.CohenD))
	} else {
		fmt.Println("No test: a group has fewer than two usable trials or no variance.")
	}
	fmt.Printf("Analysis completed in %v using %d workers.\n", duration, cfg.Workers)
	return nil
}

// writeComparisonCSV writes the comparison as one wide CSV row.
func writeComparisonCSV(w io.Writer, result schema.GroupComparison, fmtFloat func(float64) string) error {
	header := []string{
		"feature",
		"base_group", "base_n", "base_mean", "base_sem",
		"target_group", "target_n", "target_mean", "target_sem",
		"t_stat", "df", "p_value", "cohen_d", "significance",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		tStat, df, pValue, cohenD, signif := "NA", "NA", "NA", "NA", "-"
		if c := result.Comparison; c != nil {
			tStat, df = fmtFloat(c.TStat), fmtFloat(c.DF)
			pValue, cohenD = fmtFloat(c.PValue), fmtFloat(c.CohenD)
			signif = schema.SignificanceLabel(c.PValue)
		}
		row := []string{
			string(result.Feature),
			result.Base.Group, strconv.Itoa(result.Base.N), fmtFloat(result.Base.Mean), fmtFloat(result.Base.SEM),
			result.Target.Group, strconv.Itoa(result.Target.N), fmtFloat(result.Target.Mean), fmtFloat(result.Target.SEM),
			tStat, df, pValue, cohenD, signif,
		}
		return cw.Write(row)
	})
}
