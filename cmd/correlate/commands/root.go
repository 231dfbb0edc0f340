// Package commands implements the correlate CLI.
package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/driftradius/correlator/internal/logging"
	"github.com/spf13/cobra"
)

const Version = "0.1.0"

var logLevelFlags []string

var rootCmd = &cobra.Command{
	Use:     "correlate",
	Short:   "Cross-layer drift correlation and impact analysis",
	Long:    `correlate analyzes a pull request's drift results and file list and produces a correlation and impact report.`,
	Version: Version,
}

// Execute runs the CLI's root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&logLevelFlags, "log-level",
		[]string{"info"},
		"Log level for packages. Use 'default=level' for default, or 'package.name=level' for per-package.\n"+
			"Examples: --log-level debug (all), --log-level graph=debug --log-level strategy=warn")

	rootCmd.AddCommand(runCmd)
}

// HandleError prints the error and exits 1.
func HandleError(err error, msg string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
		os.Exit(1)
	}
}

func setupLog(flags []string) error {
	defaultLevel, packageLevels, err := parseLogLevelFlags(flags)
	if err != nil {
		return err
	}
	return logging.Initialize(defaultLevel, packageLevels)
}

// parseLogLevelFlags parses "debug", "default=info", "graph=debug"
// style flags into a default level and a per-package override map.
func parseLogLevelFlags(flags []string) (string, map[string]string, error) {
	result := make(map[string]string)

	for _, flag := range flags {
		if !strings.Contains(flag, "=") {
			result["default"] = flag
			continue
		}
		parts := strings.SplitN(flag, "=", 2)
		result[parts[0]] = parts[1]
	}

	defaultLevel := "info"
	if level, ok := result["default"]; ok {
		defaultLevel = level
		delete(result, "default")
	}

	if err := validateLogLevel(defaultLevel); err != nil {
		return "", nil, err
	}
	for pkg, level := range result {
		if err := validateLogLevel(level); err != nil {
			return "", nil, fmt.Errorf("invalid log level for package %q: %w", pkg, err)
		}
	}

	return defaultLevel, result, nil
}

func validateLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug", "info", "warn", "error", "fatal":
		return nil
	default:
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error, fatal)", level)
	}
}
