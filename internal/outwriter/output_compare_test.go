package outwriter

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghrelinlab/posemetrics/schema"
)

func comparisonFixture(withTest bool) schema.GroupComparison {
	result := schema.GroupComparison{
		Feature: schema.FeatureVelocityPerMin,
		Params:  schema.FeatureParams{Window: 5, Threshold: 0.5, SpeedThreshold: 1e-2},
		Base:    schema.GroupStat{Group: "untreated", N: 6, Mean: 12.4, SEM: 0.8},
		Target:  schema.GroupStat{Group: "ghrelin", N: 6, Mean: 18.9, SEM: 1.1},
	}
	if withTest {
		result.Comparison = &schema.Comparison{TStat: -4.78, DF: 9.2, PValue: 0.00091, CohenD: -2.76}
	}
	return result
}

func TestWriteComparisonCSV(t *testing.T) {
	fmtFloat, _ := createFormatters(4)

	t.Run("with test", func(t *testing.T) {
		var b strings.Builder
		require.NoError(t, writeComparisonCSV(&b, comparisonFixture(true), fmtFloat))

		records, err := csv.NewReader(strings.NewReader(b.String())).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 2)

		header, row := records[0], records[1]
		assert.Equal(t, "feature", header[0])
		assert.Equal(t, "significance", header[13])

		assert.Equal(t, "velocity_per_min", row[0])
		assert.Equal(t, "untreated", row[1])
		assert.Equal(t, "6", row[2])
		assert.Equal(t, "12.4000", row[3])
		assert.Equal(t, "-4.7800", row[9])
		assert.Equal(t, "0.0009", row[11])
		assert.Equal(t, "***", row[13])
	})

	t.Run("without test", func(t *testing.T) {
		var b strings.Builder
		require.NoError(t, writeComparisonCSV(&b, comparisonFixture(false), fmtFloat))

		records, err := csv.NewReader(strings.NewReader(b.String())).ReadAll()
		require.NoError(t, err)
		row := records[1]

		// Descriptive columns stay filled, test columns degrade to NA.
		assert.Equal(t, "18.9000", row[7])
		assert.Equal(t, "NA", row[9])
		assert.Equal(t, "NA", row[11])
		assert.Equal(t, "-", row[13])
	})
}
