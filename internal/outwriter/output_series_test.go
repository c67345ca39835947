package outwriter

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghrelinlab/posemetrics/schema"
)

func TestWriteFeatureSeriesCSV(t *testing.T) {
	fmtFloat, _ := createFormatters(2)
	series := []schema.FeatureSeries{
		{
			TrialID:    1,
			Feature:    schema.FeatureVelocityPerMin,
			BinSeconds: 60,
			Values:     []float64{0.31, schema.Missing(), 0.27},
		},
	}

	var b strings.Builder
	require.NoError(t, writeFeatureSeriesCSV(&b, series, "untreated", fmtFloat))

	records, err := csv.NewReader(strings.NewReader(b.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, []string{"trial_id", "group", "feature", "bin_index", "bin_start_s", "value"}, records[0])
	assert.Equal(t, []string{"1", "untreated", "velocity_per_min", "0", "0.00", "0.31"}, records[1])
	// A dropout bin renders as NA at its time offset.
	assert.Equal(t, "60.00", records[2][4])
	assert.Equal(t, "NA", records[2][5])
	assert.Equal(t, "120.00", records[3][4])
}
