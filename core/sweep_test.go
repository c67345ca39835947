package core

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghrelinlab/posemetrics/internal/contract"
	"github.com/ghrelinlab/posemetrics/internal/trackstore"
)

// writeSweepDir lays out two resting untreated trials and two ghrelin trials
// that cross the arena at different paces.
func writeSweepDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	catalog := `id,video_name,task,modulation,frame_rate,csv_file_path
1,of_001.mp4,openfield,NA,30,trial_1.csv
2,of_002.mp4,openfield,ghrelin,30,trial_2.csv
3,of_003.mp4,openfield,NA,30,trial_3.csv
4,of_004.mp4,openfield,ghrelin,30,trial_4.csv
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dlc_table_cohort1.csv"), []byte(catalog), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trial_1.csv"), []byte(flatTrackCSV(50, 0, 61)), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trial_2.csv"), []byte(flatTrackCSV(0, 2, 61)), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trial_3.csv"), []byte(flatTrackCSV(80, 0, 61)), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trial_4.csv"), []byte(flatTrackCSV(0, 2, 91)), 0o600))
	return dir
}

func TestSweepSeparation(t *testing.T) {
	dir := writeSweepDir(t)
	cfg := batchConfig(dir)
	cfg.SweepWindows = []int{1, 3}
	cfg.SweepSpeedThresholds = []float64{1e-2, 2e-2}
	ctx := context.Background()

	access, err := trackstore.Connect(ctx, cfg)
	require.NoError(t, err)
	defer access.Close()

	points, err := SweepSeparation(ctx, cfg, access)
	require.NoError(t, err)
	require.Len(t, points, 4)

	for _, pt := range points {
		assert.Contains(t, []int{1, 3}, pt.Params.Window)
		assert.Contains(t, []float64{1e-2, 2e-2}, pt.Params.SpeedThreshold)
		// The swept parameters never disturb the fixed ones.
		assert.InDelta(t, 0.5, pt.Params.Threshold, 1e-12)

		require.NotNil(t, pt.Result.Comparison, "two usable trials per group support a test")
		assert.Equal(t, "untreated", pt.Result.Base.Group)
		assert.Equal(t, "ghrelin", pt.Result.Target.Group)
		assert.Equal(t, 2, pt.Result.Base.N)
		assert.Equal(t, 2, pt.Result.Target.N)

		// Resting base against moving target: separation is negative.
		assert.InDelta(t, pt.Result.Base.Mean-pt.Result.Target.Mean, pt.Score, 1e-12)
		assert.Less(t, pt.Score, 0.0)
	}

	for i := 1; i < len(points); i++ {
		assert.GreaterOrEqual(t, math.Abs(points[i-1].Score), math.Abs(points[i].Score),
			"points must come ranked by absolute separation")
	}
}

func TestSweepSeparationDefaultGrids(t *testing.T) {
	dir := writeSweepDir(t)
	cfg := batchConfig(dir)
	ctx := context.Background()

	access, err := trackstore.Connect(ctx, cfg)
	require.NoError(t, err)
	defer access.Close()

	points, err := SweepSeparation(ctx, cfg, access)
	require.NoError(t, err)
	assert.Len(t, points, len(DefaultSweepWindows)*len(DefaultSweepSpeedThresholds))
}

func TestSweepBanner(t *testing.T) {
	t.Run("default grids", func(t *testing.T) {
		cfg := &contract.Config{}
		assert.Equal(t, "Sweeping 12 parameter combinations...", sweepBanner(cfg))
	})
	t.Run("explicit grids with emojis", func(t *testing.T) {
		cfg := &contract.Config{
			UseEmojis:            true,
			SweepWindows:         []int{3, 5},
			SweepSpeedThresholds: []float64{1e-2},
		}
		assert.Equal(t, "🧪 Sweeping 2 parameter combinations...", sweepBanner(cfg))
	})
}

func TestSweepSeparationBadFilter(t *testing.T) {
	// An empty data dir fails at prefetch, not silently.
	cfg := batchConfig(t.TempDir())
	_, err := trackstore.Connect(context.Background(), cfg)
	require.Error(t, err)
}
