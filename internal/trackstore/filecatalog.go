package trackstore

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ghrelinlab/posemetrics/internal/contract"
	"github.com/ghrelinlab/posemetrics/schema"
)

// FileCatalog serves trial metadata from delimited files under a data
// directory. Cohorts may be partitioned into several dlc_table*.csv files;
// they are concatenated (in lexical file order) into one logical table, so
// catalog order stays deterministic.
type FileCatalog struct {
	root   string
	trials []schema.Trial
	byID   map[int64]int
}

var _ contract.TrialCatalog = &FileCatalog{} // Compile-time check

// NewFileCatalog loads every dlc_table*.csv under root. A missing or empty
// data directory is batch-fatal: without it the fallback path has no data.
func NewFileCatalog(root string) (*FileCatalog, error) {
	matches, err := filepath.Glob(filepath.Join(root, "dlc_table*.csv"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no dlc_table*.csv files under %q", root)
	}
	sort.Strings(matches)

	cat := &FileCatalog{root: root, byID: make(map[int64]int)}
	for _, path := range matches {
		if err := cat.loadFile(path); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return cat, nil
}

// List returns trials matching the filter in catalog order.
func (c *FileCatalog) List(_ context.Context, filter schema.ConditionFilter) ([]schema.Trial, error) {
	var out []schema.Trial
	for _, tr := range c.trials {
		if filter.Matches(tr) {
			out = append(out, tr)
		}
	}
	return out, nil
}

// Get returns the metadata for a single trial.
func (c *FileCatalog) Get(_ context.Context, trialID int64) (schema.Trial, error) {
	idx, ok := c.byID[trialID]
	if !ok {
		return schema.Trial{}, fmt.Errorf("%w: trial %d", contract.ErrTrialNotFound, trialID)
	}
	return c.trials[idx], nil
}

// Root returns the catalog's data directory.
func (c *FileCatalog) Root() string { return c.root }

func (c *FileCatalog) loadFile(path string) error {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	cr := csv.NewReader(f)
	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("%w: empty metadata file", contract.ErrMalformedSchema)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	idIdx, ok := col["id"]
	if !ok {
		return fmt.Errorf("%w: metadata file missing 'id' column", contract.ErrMalformedSchema)
	}

	get := func(rec []string, name string) string {
		if i, ok := col[name]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("metadata row read failed: %w", err)
		}
		id, err := strconv.ParseInt(get(rec, "id"), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: bad id value %q", contract.ErrMalformedSchema, rec[idIdx])
		}

		tr := schema.Trial{
			ID:        id,
			VideoName: get(rec, "video_name"),
			Task:      get(rec, "task"),
			Treatment: schema.TreatmentFromColumn(get(rec, "modulation")),
			TrackRef:  get(rec, "csv_file_path"),
			FrameRate: contract.DefaultFrameRate,
		}
		// Older cohort files label the column genotype rather than strain.
		if tr.Strain = get(rec, "strain"); tr.Strain == "" {
			tr.Strain = get(rec, "genotype")
		}
		if v, err := strconv.ParseFloat(get(rec, "frame_rate"), 64); err == nil && v > 0 {
			tr.FrameRate = v
		}
		if v, err := strconv.ParseFloat(get(rec, "trial_length"), 64); err == nil {
			tr.TrialLength = v
		}

		c.byID[id] = len(c.trials)
		c.trials = append(c.trials, tr)
	}
}
