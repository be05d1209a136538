package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "dataq",
	Short: "Interactive natural-language data analysis over a read-only warehouse",
	Long: `dataq turns a free-form analysis task into safe, read-only SQL against a
columnar warehouse, runs it, and composes a findings report.

It never executes a statement it cannot prove read-only, caps every query
with a row limit, and spills oversized results to an external store instead
of holding them in memory.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		envPath := filepath.Join(configDir, ".env")
		if err := godotenv.Load(envPath); err != nil {
			slog.Debug("no .env file loaded", "path", envPath, "error", err)
		}
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", envOr("CONFIG_DIR", "./deploy/config"),
		"path to configuration directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", envOr("LOG_LEVEL", "info"),
		"log level: debug, info, warn, error")
	cobra.OnInitialize(initLogging)
}

var logLevel string

func initLogging() {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
