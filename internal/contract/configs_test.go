package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghrelinlab/posemetrics/schema"
)

// validInput returns a raw input that passes every validator, rooted at a
// real temp directory.
func validInput(t *testing.T) *ConfigRawInput {
	t.Helper()
	return &ConfigRawInput{
		Backend:         "none",
		DataDir:         t.TempDir(),
		Feature:         "velocity_per_min",
		Threshold:       0.5,
		Window:          5,
		SpeedThreshold:  1e-2,
		TimeLimit:       1200,
		BinSeconds:      60,
		MinDuration:     5,
		BaseTreatment:   "none",
		TargetTreatment: "ghrelin",
		Workers:         4,
		Output:          "text",
		Precision:       3,
		Color:           "yes",
	}
}

func TestProcessAndValidate(t *testing.T) {
	t.Run("success minimal", func(t *testing.T) {
		cfg := &Config{}
		input := validInput(t)

		err := ProcessAndValidate(cfg, input)
		require.NoError(t, err)
		assert.Equal(t, schema.NoneBackend, cfg.Backend)
		assert.Equal(t, schema.FeatureVelocityPerMin, cfg.Feature)
		assert.Equal(t, schema.DefaultReferencePart, cfg.Params.ReferencePart)
		assert.Equal(t, DefaultConnectTimeout, cfg.ConnectTimeout)
		assert.Equal(t, "none", cfg.BaseGroup.Label)
		assert.Equal(t, "ghrelin", cfg.TargetGroup.Label)
		assert.True(t, cfg.UseColors)
		assert.NotEmpty(t, cfg.Arena.CornerLandmarks)
	})

	t.Run("failure invalid backend", func(t *testing.T) {
		input := validInput(t)
		input.Backend = "oracle"
		require.Error(t, ProcessAndValidate(&Config{}, input))
	})

	t.Run("failure missing data dir", func(t *testing.T) {
		input := validInput(t)
		input.DataDir = "/nonexistent/posemetrics-data"
		require.Error(t, ProcessAndValidate(&Config{}, input))
	})

	t.Run("failure invalid feature", func(t *testing.T) {
		input := validInput(t)
		input.Feature = "dance_quality"
		require.Error(t, ProcessAndValidate(&Config{}, input))
	})

	t.Run("failure threshold out of range", func(t *testing.T) {
		input := validInput(t)
		input.Threshold = 1.5
		require.Error(t, ProcessAndValidate(&Config{}, input))
	})

	t.Run("failure zero window", func(t *testing.T) {
		input := validInput(t)
		input.Window = 0
		require.Error(t, ProcessAndValidate(&Config{}, input))
	})

	t.Run("failure identical group labels", func(t *testing.T) {
		input := validInput(t)
		input.BaseTreatment = "ghrelin"
		input.TargetTreatment = "ghrelin"
		require.Error(t, ProcessAndValidate(&Config{}, input))
	})

	t.Run("labels default to filters", func(t *testing.T) {
		cfg := &Config{}
		input := validInput(t)
		input.BaseLabel = "control"
		input.TargetLabel = "treated"

		require.NoError(t, ProcessAndValidate(cfg, input))
		assert.Equal(t, "control", cfg.BaseGroup.Label)
		assert.Equal(t, "treated", cfg.TargetGroup.Label)
	})

	t.Run("failure parquet without output file", func(t *testing.T) {
		input := validInput(t)
		input.Output = "parquet"
		require.Error(t, ProcessAndValidate(&Config{}, input))
	})

	t.Run("parquet with output file", func(t *testing.T) {
		input := validInput(t)
		input.Output = "parquet"
		input.OutputFile = "out.parquet"
		require.NoError(t, ProcessAndValidate(&Config{}, input))
	})

	t.Run("connect timeout parsed", func(t *testing.T) {
		cfg := &Config{}
		input := validInput(t)
		input.ConnectTimeout = "500ms"
		require.NoError(t, ProcessAndValidate(cfg, input))
		assert.Equal(t, 500*time.Millisecond, cfg.ConnectTimeout)
	})

	t.Run("failure negative connect timeout", func(t *testing.T) {
		input := validInput(t)
		input.ConnectTimeout = "-3s"
		require.Error(t, ProcessAndValidate(&Config{}, input))
	})

	t.Run("sweep grids parsed", func(t *testing.T) {
		cfg := &Config{}
		input := validInput(t)
		input.Windows = "3,5,9"
		input.SpeedThresholds = "0.005, 0.02"
		require.NoError(t, ProcessAndValidate(cfg, input))
		assert.Equal(t, []int{3, 5, 9}, cfg.SweepWindows)
		assert.Equal(t, []float64{0.005, 0.02}, cfg.SweepSpeedThresholds)
	})

	t.Run("failure sweep window below one", func(t *testing.T) {
		input := validInput(t)
		input.Windows = "0,5"
		require.Error(t, ProcessAndValidate(&Config{}, input))
	})

	t.Run("no arena corners", func(t *testing.T) {
		cfg := &Config{}
		input := validInput(t)
		input.NoArenaCorners = true
		require.NoError(t, ProcessAndValidate(cfg, input))
		assert.Empty(t, cfg.Arena.CornerLandmarks)
	})
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		name        string
		backend     schema.DatabaseBackend
		connStr     string
		expectError bool
	}{
		{name: "sqlite needs nothing", backend: schema.SQLiteBackend, connStr: "", expectError: false},
		{name: "none needs nothing", backend: schema.NoneBackend, connStr: "", expectError: false},
		{name: "mysql empty", backend: schema.MySQLBackend, connStr: "", expectError: true},
		{name: "mysql missing tcp", backend: schema.MySQLBackend, connStr: "user:pass@host/db", expectError: true},
		{name: "mysql valid", backend: schema.MySQLBackend, connStr: "user:pass@tcp(localhost:3306)/trials", expectError: false},
		{name: "postgres empty", backend: schema.PostgreSQLBackend, connStr: "", expectError: true},
		{name: "postgres key-value form", backend: schema.PostgreSQLBackend, connStr: "host=localhost user=lab dbname=trials", expectError: false},
		{name: "postgres url form", backend: schema.PostgreSQLBackend, connStr: "postgres://lab@localhost/trials", expectError: false},
		{name: "postgres bad form", backend: schema.PostgreSQLBackend, connStr: "localhost:5432", expectError: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDatabaseConnectionString(tt.backend, tt.connStr)
			if tt.expectError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestWithParams(t *testing.T) {
	cfg := &Config{Params: schema.FeatureParams{Window: 5}}
	clone := cfg.WithParams(schema.FeatureParams{Window: 9})
	assert.Equal(t, 9, clone.Params.Window)
	assert.Equal(t, 5, cfg.Params.Window, "original must stay untouched")
}
