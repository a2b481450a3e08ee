// Package cmd implements the arenasim CLI: running battles, batch win-rate
// sweeps, serving the HTTP API and browsing stored traces.
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// dataPath is the template directory, set via --data.
var dataPath string

// dbPath is the SQLite battle store, set via --db. Empty disables storage.
var dbPath string

// verbose raises the log level to debug.
var verbose bool

// rootCmd is the top-level cobra command.
var rootCmd = &cobra.Command{
	Use:   "arenasim",
	Short: "Deterministic auto-battler combat simulator",
	Long:  "Simulate auto-battler combats between two rosters on a hex board and inspect the resulting traces.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// .env may carry ARENASIM_DATA / ARENASIM_DB; flags still win.
	_ = godotenv.Load()

	defaultData := os.Getenv("ARENASIM_DATA")
	if defaultData == "" {
		defaultData = "data"
	}
	defaultDB := os.Getenv("ARENASIM_DB")

	rootCmd.PersistentFlags().StringVar(&dataPath, "data", defaultData, "path to the template data directory")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "path to the SQLite battle store (empty = disabled)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(tracesCmd)
	rootCmd.AddCommand(unitsCmd)
}

// newLogger builds the console logger the CLI commands share.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(output).With().Timestamp().Logger().Level(level)
}
