package trackstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ghrelinlab/posemetrics/internal/contract"
	"github.com/ghrelinlab/posemetrics/schema"
)

// trialColumns is the projection shared by List and Get.
const trialColumns = "id, video_name, task, modulation, strain, csv_file_path, frame_rate, trial_length"

// List returns trials matching the condition filter, ordered by id so
// aggregation order is reproducible across runs. Task and strain are matched
// in SQL; the treatment filter is applied after scanning, on the Treatment
// parsed by schema.TreatmentFromColumn, so the store and the file adapter
// agree on which modulation cells ('', 'NA', 'null', any case) mean untreated.
func (s *Store) List(ctx context.Context, filter schema.ConditionFilter) ([]schema.Trial, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 2)

	if filter.Task != "" {
		where = append(where, "task = ?")
		args = append(args, filter.Task)
	}
	if filter.Strain != "" {
		where = append(where, "strain = ?")
		args = append(args, filter.Strain)
	}

	query := fmt.Sprintf("SELECT %s FROM %s", trialColumns, trialsTable)
	for i, w := range where {
		if i == 0 {
			query += " WHERE " + w
		} else {
			query += " AND " + w
		}
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, s.bind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("trial query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var trials []schema.Trial
	for rows.Next() {
		tr, err := scanTrial(rows)
		if err != nil {
			return nil, err
		}
		if !filter.Treatment.Matches(tr.Treatment) {
			continue
		}
		trials = append(trials, tr)
	}
	return trials, rows.Err()
}

// Get returns the metadata row for a single trial.
func (s *Store) Get(ctx context.Context, trialID int64) (schema.Trial, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", trialColumns, trialsTable)
	row := s.db.QueryRowContext(ctx, s.bind(query), trialID)
	tr, err := scanTrial(row)
	if errors.Is(err, sql.ErrNoRows) {
		return schema.Trial{}, fmt.Errorf("%w: trial %d", contract.ErrTrialNotFound, trialID)
	}
	return tr, err
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrial(row rowScanner) (schema.Trial, error) {
	var tr schema.Trial
	var modulation, videoName, trackRef sql.NullString
	var frameRate, trialLength sql.NullFloat64

	err := row.Scan(&tr.ID, &videoName, &tr.Task, &modulation, &tr.Strain, &trackRef, &frameRate, &trialLength)
	if err != nil {
		return schema.Trial{}, err
	}
	tr.VideoName = videoName.String
	tr.Treatment = schema.TreatmentFromColumn(modulation.String)
	tr.TrackRef = trackRef.String
	if frameRate.Valid && frameRate.Float64 > 0 {
		tr.FrameRate = frameRate.Float64
	} else {
		tr.FrameRate = contract.DefaultFrameRate
	}
	if trialLength.Valid {
		tr.TrialLength = trialLength.Float64
	}
	return tr, nil
}
