// Package cmd defines the command-line interface for posemetrics.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ghrelinlab/posemetrics/internal/contract"
	"github.com/ghrelinlab/posemetrics/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(featuresCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the db subcommands to the parent db command
	dbCmd.AddCommand(dbMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("backend", string(schema.NoneBackend), "Trial database backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("data-dir", ".", "Directory holding dlc_table*.csv catalogs and track CSV files")
	rootCmd.PersistentFlags().String("connect-timeout", "", "Database connect timeout before falling back to files (e.g. 3s)")
	rootCmd.PersistentFlags().StringP("feature", "F", string(schema.FeatureVelocityPerMin), "Behavioral feature to compute")
	rootCmd.PersistentFlags().String("bodypart", "", "Reference landmark for motion features (default midback)")
	rootCmd.PersistentFlags().Float64("threshold", contract.DefaultThreshold, "Confidence threshold below which a sample is invalid")
	rootCmd.PersistentFlags().Int("window", contract.DefaultWindow, "Smoothing / finite-difference window in frames")
	rootCmd.PersistentFlags().Float64("speed-threshold", contract.DefaultSpeedThreshold, "Speed below which curvature is undefined")
	rootCmd.PersistentFlags().Float64("time-limit", contract.DefaultTimeLimit, "Seconds of track to analyze (0 = whole trial)")
	rootCmd.PersistentFlags().Float64("bin-seconds", contract.DefaultBinSeconds, "Time bin width for binned speed series")
	rootCmd.PersistentFlags().Float64("min-duration", contract.DefaultMinDuration, "Minimum usable duration in seconds")
	rootCmd.PersistentFlags().Bool("no-arena-corners", false, "Skip corner markers and normalize by track extent")
	rootCmd.PersistentFlags().String("task", "", "Filter trials by task name")
	rootCmd.PersistentFlags().String("strain", "", "Filter trials by strain/genotype")
	rootCmd.PersistentFlags().String("base-label", "", "Display label for the base group")
	rootCmd.PersistentFlags().String("base-treatment", "none", "Base group treatment: any, none, or a treatment label")
	rootCmd.PersistentFlags().String("target-label", "", "Display label for the target group")
	rootCmd.PersistentFlags().String("target-treatment", "any", "Target group treatment: any, none, or a treatment label")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored significance labels (yes/no)")
	rootCmd.PersistentFlags().String("emoji", "no", "Enable emoji in stderr messages (yes/no)")
	rootCmd.PersistentFlags().Bool("save", false, "Persist computed feature values to the trial database")
	rootCmd.PersistentFlags().String("export-prefix", "", "Write per-group catalog CSVs with this filename prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of featuresCmd to Viper
	featuresCmd.Flags().Bool("series", false, "Print binned per-trial series instead of scalar values")
	if err := viper.BindPFlags(featuresCmd.Flags()); err != nil {
		contract.LogFatal("Error binding features flags", err)
	}

	// Bind all flags of sweepCmd to Viper
	sweepCmd.Flags().String("windows", "", "Comma-separated window grid (e.g. 3,5,7,9)")
	sweepCmd.Flags().String("speed-thresholds", "", "Comma-separated speed-threshold grid (e.g. 0.005,0.01,0.02)")
	if err := viper.BindPFlags(sweepCmd.Flags()); err != nil {
		contract.LogFatal("Error binding sweep flags", err)
	}

	// Bind all flags of dbMigrateCmd to Viper
	dbMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(dbMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding db migrate flags", err)
	}
}
