package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ghrelinlab/posemetrics/internal/contract"
	"github.com/ghrelinlab/posemetrics/schema"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "posemetrics",
	Short:              "Turn animal pose tracks into trial-level behavioral metrics.",
	Long:               `Posemetrics reduces landmark coordinate tracks to behavioral features and compares treatment groups with Welch's t-test.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".posemetrics") // Name of config file (without extension)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")     // Look in the current directory
		viper.AddConfigPath("$HOME") // Look in the home directory
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("POSEMETRICS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("backend", schema.NoneBackend)
	viper.SetDefault("db-connect", "")
	viper.SetDefault("data-dir", ".")
	viper.SetDefault("feature", schema.FeatureVelocityPerMin)
	viper.SetDefault("threshold", contract.DefaultThreshold)
	viper.SetDefault("window", contract.DefaultWindow)
	viper.SetDefault("speed-threshold", contract.DefaultSpeedThreshold)
	viper.SetDefault("time-limit", contract.DefaultTimeLimit)
	viper.SetDefault("bin-seconds", contract.DefaultBinSeconds)
	viper.SetDefault("min-duration", contract.DefaultMinDuration)
	viper.SetDefault("base-treatment", "none")
	viper.SetDefault("target-treatment", "any")
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("color", "yes")
}

// sharedSetup unmarshals config and runs validation.
func sharedSetup(_ context.Context, _ *cobra.Command, _ []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	// This function populates the global 'cfg' from 'input'.
	return contract.ProcessAndValidate(cfg, input)
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
