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

// PrintCatalogRows outputs the trials each group filter selected, dispatching
// on the configured output format. Parquet is not offered here; the catalog
// is metadata, not a computed result.
func PrintCatalogRows(rows []schema.CatalogRow, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, _ := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, rows)
		}, "JSON")
	case schema.CSVOut, schema.ParquetOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCatalogCSV(w, rows, fmtFloat)
		}, "CSV")
	default:
		return writeCatalogTable(rows, cfg, fmtFloat, duration)
	}
}

// ExportCatalogCSV writes one CSV file per group, named <prefix>_<group>.csv.
// The per-group files feed external plotting and record-keeping workflows.
func ExportCatalogCSV(rows []schema.CatalogRow, prefix string) error {
	fmtFloat, _ := createFormatters(contract.DefaultPrecision)
	groups := make(map[string][]schema.CatalogRow)
	order := make([]string, 0, 2)
	for _, row := range rows {
		if _, ok := groups[row.Group]; !ok {
			order = append(order, row.Group)
		}
		groups[row.Group] = append(groups[row.Group], row)
	}
	for _, group := range order {
		path := fmt.Sprintf("%s_%s.csv", prefix, group)
		if err := writeWithFile(path, func(w io.Writer) error {
			return writeCatalogCSV(w, groups[group], fmtFloat)
		}, "CSV"); err != nil {
			return err
		}
	}
	return nil
}

// writeCatalogTable writes the selected trials in a human-readable table.
func writeCatalogTable(rows []schema.CatalogRow, cfg *contract.Config, fmtFloat func(float64) string, duration time.Duration) error {
	table := tablewriter.NewWriter(os.Stdout)

	table.Header([]string{"ID", "Group", "Video", "Task", "Treatment", "Strain", "FPS", "Length(s)"})
	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	nameWidth := getMaxTableNameWidth(cfg)
	var data [][]string
	for _, row := range rows {
		t := row.Trial
		data = append(data, []string{
			strconv.FormatInt(t.ID, 10),
			row.Group,
			contract.TruncateName(t.VideoName, nameWidth),
			t.Task,
			t.Treatment.String(),
			t.Strain,
			fmtFloat(t.FrameRate),
			fmtFloat(t.TrialLength),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Printf("Selected %d trials across both groups.\n", len(rows))
	fmt.Printf("Catalog listed in %v.\n", duration)
	return nil
}

// writeCatalogCSV writes the selected trials in CSV format.
func writeCatalogCSV(w io.Writer, rows []schema.CatalogRow, fmtFloat func(float64) string) error {
	header := []string{"trial_id", "group", "video_name", "task", "treatment", "strain", "frame_rate", "trial_length", "track_ref"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, row := range rows {
			t := row.Trial
			rec := []string{
				strconv.FormatInt(t.ID, 10),
				row.Group,
				t.VideoName,
				t.Task,
				t.Treatment.String(),
				t.Strain,
				fmtFloat(t.FrameRate),
				fmtFloat(t.TrialLength),
				t.TrackRef,
			}
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}
