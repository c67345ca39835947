package trackstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ghrelinlab/posemetrics/internal/contract"
	"github.com/ghrelinlab/posemetrics/schema"
)

// Fetch returns the coordinate track for a trial. Tracks ingested into the
// frames table are read directly; trials that only carry a csv_file_path
// reference are read from that file. Either way the in-memory shape is
// identical to the file adapter's.
func (s *Store) Fetch(ctx context.Context, trialID int64) (*schema.CoordinateTrack, error) {
	track, err := s.fetchFromFrames(ctx, trialID)
	if err == nil {
		return track, nil
	}
	if !errors.Is(err, contract.ErrTrialNotFound) {
		return nil, err
	}

	// No ingested frames; follow the metadata reference if there is one.
	trial, err := s.Get(ctx, trialID)
	if err != nil {
		return nil, err
	}
	if trial.TrackRef == "" {
		return nil, fmt.Errorf("%w: trial %d has no ingested frames and no track reference", contract.ErrTrialNotFound, trialID)
	}
	f, err := os.Open(filepath.Clean(trial.TrackRef))
	if err != nil {
		return nil, fmt.Errorf("%w: track file %q for trial %d: %v", contract.ErrTrialNotFound, trial.TrackRef, trialID, err)
	}
	defer func() { _ = f.Close() }()
	return ParseTrackCSV(f)
}

// fetchFromFrames reads a wide per-frame table whose landmark set is
// discovered from the column names ({landmark}_x, _y, _likelihood).
func (s *Store) fetchFromFrames(ctx context.Context, trialID int64) (*schema.CoordinateTrack, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE trial_id = ? ORDER BY frame_idx", framesTable)
	rows, err := s.db.QueryContext(ctx, s.bind(query), trialID)
	if err != nil {
		return nil, fmt.Errorf("frame query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	landmarks, colIdx, err := landmarksFromColumns(cols)
	if err != nil {
		return nil, err
	}

	track := &schema.CoordinateTrack{
		Landmarks: landmarks,
		Samples:   make(map[string][]schema.Point, len(landmarks)),
	}

	values := make([]any, len(cols))
	holders := make([]float64, len(cols))
	for i := range values {
		values[i] = &holders[i]
	}
	// trial_id and frame_idx are scanned into the same float holders and ignored.

	n := 0
	for rows.Next() {
		if err := rows.Scan(values...); err != nil {
			return nil, fmt.Errorf("frame scan failed: %w", err)
		}
		for _, lm := range landmarks {
			idx := colIdx[lm]
			track.Samples[lm] = append(track.Samples[lm], schema.Point{
				X:          holders[idx],
				Y:          holders[idx+1],
				Confidence: holders[idx+2],
			})
		}
		n++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: no frames for trial %d", contract.ErrTrialNotFound, trialID)
	}
	return track, nil
}

// landmarksFromColumns extracts the landmark names and the index of each
// landmark's x column. Every landmark must carry x, y and likelihood columns
// in that order; anything else is a malformed schema.
func landmarksFromColumns(cols []string) ([]string, map[string]int, error) {
	var landmarks []string
	colIdx := make(map[string]int)
	for i, c := range cols {
		name, ok := strings.CutSuffix(c, "_x")
		if !ok {
			continue
		}
		if i+2 >= len(cols) || cols[i+1] != name+"_y" || cols[i+2] != name+"_likelihood" {
			return nil, nil, fmt.Errorf("%w: landmark %q must have contiguous _x, _y, _likelihood columns", contract.ErrMalformedSchema, name)
		}
		landmarks = append(landmarks, name)
		colIdx[name] = i
	}
	if len(landmarks) == 0 {
		return nil, nil, fmt.Errorf("%w: no landmark columns found", contract.ErrMalformedSchema)
	}
	return landmarks, colIdx, nil
}
