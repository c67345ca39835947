package trackstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghrelinlab/posemetrics/internal/contract"
	"github.com/ghrelinlab/posemetrics/schema"
)

const catalogCSV = `id,video_name,task,health,genotype,modulation,trial_length,frame_rate,csv_file_path
1,of_001.mp4,openfield,healthy,C57BL/6,NA,1200,30,trial_1.csv
2,of_002.mp4,openfield,healthy,C57BL/6,ghrelin,1200,30,
3,hc_001.mp4,homecage,healthy,ob/ob,,600,25,trial_3.csv
`

func writeCatalogDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dlc_table_cohort1.csv"), []byte(catalogCSV), 0o600))
	return dir
}

func TestFileCatalogList(t *testing.T) {
	dir := writeCatalogDir(t)
	cat, err := NewFileCatalog(dir)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("any treatment", func(t *testing.T) {
		trials, err := cat.List(ctx, schema.ConditionFilter{Treatment: schema.AnyTreatment()})
		require.NoError(t, err)
		assert.Len(t, trials, 3)
	})

	t.Run("untreated only", func(t *testing.T) {
		trials, err := cat.List(ctx, schema.ConditionFilter{Treatment: schema.OnlyUntreated()})
		require.NoError(t, err)
		require.Len(t, trials, 2)
		// Both NA and the empty cell mean untreated.
		assert.Equal(t, int64(1), trials[0].ID)
		assert.Equal(t, int64(3), trials[1].ID)
	})

	t.Run("named treatment", func(t *testing.T) {
		trials, err := cat.List(ctx, schema.ConditionFilter{Treatment: schema.TreatmentEquals("ghrelin")})
		require.NoError(t, err)
		require.Len(t, trials, 1)
		assert.Equal(t, int64(2), trials[0].ID)
	})

	t.Run("task and strain filters", func(t *testing.T) {
		trials, err := cat.List(ctx, schema.ConditionFilter{
			Task:      "homecage",
			Strain:    "ob/ob",
			Treatment: schema.AnyTreatment(),
		})
		require.NoError(t, err)
		require.Len(t, trials, 1)
		assert.Equal(t, "hc_001.mp4", trials[0].VideoName)
	})
}

func TestFileCatalogGet(t *testing.T) {
	cat, err := NewFileCatalog(writeCatalogDir(t))
	require.NoError(t, err)
	ctx := context.Background()

	trial, err := cat.Get(ctx, 3)
	require.NoError(t, err)
	// genotype column stands in for strain in older cohort files.
	assert.Equal(t, "ob/ob", trial.Strain)
	assert.InDelta(t, 25.0, trial.FrameRate, 1e-9)
	assert.InDelta(t, 600.0, trial.TrialLength, 1e-9)

	_, err = cat.Get(ctx, 99)
	require.ErrorIs(t, err, contract.ErrTrialNotFound)
}

func TestNewFileCatalogMissingData(t *testing.T) {
	_, err := NewFileCatalog(t.TempDir())
	require.Error(t, err)
}

func TestFileSourceFetch(t *testing.T) {
	dir := writeCatalogDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trial_1.csv"), []byte(flatTrack), 0o600))
	// Trial 2 has no track reference; the conventional name applies.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "trial_2.csv"), []byte(flatTrack), 0o600))

	cat, err := NewFileCatalog(dir)
	require.NoError(t, err)
	src := NewFileSource(dir, cat)
	ctx := context.Background()

	t.Run("referenced track", func(t *testing.T) {
		track, err := src.Fetch(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{"Head", "Tailbase"}, track.Landmarks)
	})

	t.Run("conventional name fallback", func(t *testing.T) {
		track, err := src.Fetch(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, track.FrameCount())
	})

	t.Run("missing file reports not found", func(t *testing.T) {
		_, err := src.Fetch(ctx, 3)
		require.ErrorIs(t, err, contract.ErrTrialNotFound)
	})

	t.Run("unknown trial reports not found", func(t *testing.T) {
		_, err := src.Fetch(ctx, 42)
		require.ErrorIs(t, err, contract.ErrTrialNotFound)
	})
}
