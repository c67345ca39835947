package trackstore

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ghrelinlab/posemetrics/internal/contract"
	"github.com/ghrelinlab/posemetrics/schema"
)

// ParseTrackCSV reads a per-frame coordinate track. Two layouts are accepted:
//
//   - the tracker's native export: three header rows (scorer, bodyparts,
//     coords) with a leading frame-index column;
//   - a flat single header of {landmark}_x, {landmark}_y,
//     {landmark}_likelihood columns.
//
// Row order is frame order in both layouts.
func ParseTrackCSV(r io.Reader) (*schema.CoordinateTrack, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	first, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: empty track file", contract.ErrMalformedSchema)
	}

	if len(first) > 0 && strings.EqualFold(first[0], "scorer") {
		return parseTrackerExport(cr)
	}
	return parseFlatTrack(cr, first)
}

// parseTrackerExport handles the three-header-row layout. The first column of
// every row is the frame index and is skipped.
func parseTrackerExport(cr *csv.Reader) (*schema.CoordinateTrack, error) {
	bodyparts, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing bodyparts header row", contract.ErrMalformedSchema)
	}
	coords, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing coords header row", contract.ErrMalformedSchema)
	}
	if len(bodyparts) != len(coords) {
		return nil, fmt.Errorf("%w: bodyparts/coords header rows disagree", contract.ErrMalformedSchema)
	}

	track := &schema.CoordinateTrack{Samples: make(map[string][]schema.Point)}
	colIdx := make(map[string]int)
	for i := 1; i+2 < len(bodyparts); i += 3 {
		name := bodyparts[i]
		if coords[i] != "x" || coords[i+1] != "y" || coords[i+2] != "likelihood" {
			return nil, fmt.Errorf("%w: landmark %q columns must be x, y, likelihood", contract.ErrMalformedSchema, name)
		}
		track.Landmarks = append(track.Landmarks, name)
		colIdx[name] = i
	}
	if len(track.Landmarks) == 0 {
		return nil, fmt.Errorf("%w: no landmark columns found", contract.ErrMalformedSchema)
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("track row read failed: %w", err)
		}
		for _, lm := range track.Landmarks {
			idx := colIdx[lm]
			p, err := pointAt(rec, idx)
			if err != nil {
				return nil, err
			}
			track.Samples[lm] = append(track.Samples[lm], p)
		}
	}
	return track, nil
}

// parseFlatTrack handles the flat {landmark}_x/_y/_likelihood layout.
func parseFlatTrack(cr *csv.Reader, header []string) (*schema.CoordinateTrack, error) {
	landmarks, colIdx, err := landmarksFromColumns(header)
	if err != nil {
		return nil, err
	}
	track := &schema.CoordinateTrack{
		Landmarks: landmarks,
		Samples:   make(map[string][]schema.Point, len(landmarks)),
	}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("track row read failed: %w", err)
		}
		for _, lm := range landmarks {
			p, err := pointAt(rec, colIdx[lm])
			if err != nil {
				return nil, err
			}
			track.Samples[lm] = append(track.Samples[lm], p)
		}
	}
	return track, nil
}

func pointAt(rec []string, idx int) (schema.Point, error) {
	if idx+2 >= len(rec) {
		return schema.Point{}, fmt.Errorf("%w: short row, want at least %d fields", contract.ErrMalformedSchema, idx+3)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(rec[idx]), 64)
	if err != nil {
		return schema.Point{}, fmt.Errorf("%w: bad x value %q", contract.ErrMalformedSchema, rec[idx])
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(rec[idx+1]), 64)
	if err != nil {
		return schema.Point{}, fmt.Errorf("%w: bad y value %q", contract.ErrMalformedSchema, rec[idx+1])
	}
	conf, err := strconv.ParseFloat(strings.TrimSpace(rec[idx+2]), 64)
	if err != nil {
		return schema.Point{}, fmt.Errorf("%w: bad likelihood value %q", contract.ErrMalformedSchema, rec[idx+2])
	}
	return schema.Point{X: x, Y: y, Confidence: conf}, nil
}
