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

// PrintSweepResults outputs the ranked parameter sweep grid, dispatching on
// the configured output format.
func PrintSweepResults(points []schema.SweepPoint, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, points)
		}, "JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSweepCSV(w, points, fmtFloat, intFmt)
		}, "CSV")
	case schema.ParquetOut:
		if err := parquet.WriteSweepParquet(parquet.ConvertSweepPoints(points), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Printf("Wrote Parquet to %s\n", cfg.OutputFile)
		return nil
	default:
		return writeSweepTable(points, cfg, fmtFloat, intFmt, duration)
	}
}

// writeSweepTable writes the grid points in a human-readable table, best
// separation first.
func writeSweepTable(points []schema.SweepPoint, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration) error {
	table := tablewriter.NewWriter(os.Stdout)

	table.Header([]string{"Rank", "Window", "SpeedThresh", "Separation", "P", "Signif", "Cohen's d"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, p := range points {
		pValue, cohenD := "NA", "NA"
		signif := "-"
		if c := p.Result.Comparison; c != nil {
			pValue, cohenD = fmtFloat(c.PValue), fmtFloat(c.CohenD)
			if cfg.UseColors {
				signif = contract.GetColorSignificance(c.PValue)
			} else {
				signif = schema.SignificanceLabel(c.PValue)
			}
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			fmt.Sprintf(intFmt, p.Params.Window),
			fmt.Sprintf("%g", p.Params.SpeedThreshold),
			fmtFloat(p.Score),
			pValue,
			signif,
			cohenD,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Printf("Swept %d grid points for %s.\n", len(points), cfg.Feature)
	fmt.Printf("Analysis completed in %v using %d workers.\n", duration, cfg.Workers)
	return nil
}

// writeSweepCSV writes the grid points in CSV format.
func writeSweepCSV(w io.Writer, points []schema.SweepPoint, fmtFloat func(float64) string, intFmt string) error {
	header := []string{"rank", "window", "speed_threshold", "score", "p_value", "cohen_d", "base_n", "target_n"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for i, p := range points {
			pValue, cohenD := "NA", "NA"
			if c := p.Result.Comparison; c != nil {
				pValue, cohenD = fmtFloat(c.PValue), fmtFloat(c.CohenD)
			}
			row := []string{
				strconv.Itoa(i + 1),
				fmt.Sprintf(intFmt, p.Params.Window),
				fmt.Sprintf("%g", p.Params.SpeedThreshold),
				fmtFloat(p.Score),
				pValue,
				cohenD,
				strconv.Itoa(p.Result.Base.N),
				strconv.Itoa(p.Result.Target.N),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}
