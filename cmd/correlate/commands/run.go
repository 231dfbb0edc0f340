package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/driftradius/correlator/internal/artifact"
	"github.com/driftradius/correlator/internal/config"
	"github.com/driftradius/correlator/internal/engine"
	"github.com/driftradius/correlator/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var (
	driftResultsPath string
	filesPath        string
	configPath       string
	outputPath       string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the correlation engine over a drift-result set and file list",
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&driftResultsPath, "drift-results", "", "path to a JSON array of drift results (required)")
	runCmd.Flags().StringVar(&filesPath, "files", "", "path to a JSON array of changed files")
	runCmd.Flags().StringVar(&configPath, "config", "", "path to a YAML engine config (defaults are used if omitted)")
	runCmd.Flags().StringVar(&outputPath, "output", "", "path to write the JSON report (stdout if omitted)")
	_ = runCmd.MarkFlagRequired("drift-results")
}

func runRun(cmd *cobra.Command, args []string) error {
	if err := setupLog(logLevelFlags); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	driftResults, err := readJSON[[]artifact.DriftResult](driftResultsPath)
	if err != nil {
		return fmt.Errorf("read drift results: %w", err)
	}

	var files []artifact.FileChange
	if filesPath != "" {
		files, err = readJSON[[]artifact.FileChange](filesPath)
		if err != nil {
			return fmt.Errorf("read file list: %w", err)
		}
	}

	cfg := config.Defaults()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	m := metrics.NewMetrics(prometheus.NewRegistry())
	eng := engine.New(m)

	rep, err := eng.Run(context.Background(), engine.Input{
		DriftResults: driftResults,
		Files:        files,
		Config:       cfg,
	})
	if err != nil {
		return fmt.Errorf("run engine: %w", err)
	}

	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if outputPath == "" {
		_, err = cmd.OutOrStdout().Write(append(out, '\n'))
		return err
	}
	return os.WriteFile(outputPath, out, 0o644)
}

func readJSON[T any](path string) (T, error) {
	var out T
	data, err := os.ReadFile(path)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, err
	}
	return out, nil
}
