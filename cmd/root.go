package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/citruslab/go-frc-metrics/internal/config"
	"github.com/citruslab/go-frc-metrics/internal/defense"
	"github.com/citruslab/go-frc-metrics/internal/pipeline"
	"github.com/citruslab/go-frc-metrics/internal/storage"
)

var (
	cfgPath string
	dbFlag  string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "frcmetrics",
	Short: "FRC scouting match analytics tool",
	Long: "Compute per-robot match metrics from consolidated scouting timelines\n" +
		"and attribute defensive impact between opposing robots.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbFlag, "db", "", "path to SQLite database (overrides config)")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(defenseCmd)
	rootCmd.AddCommand(baselineCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(watchCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if dbFlag != "" {
		cfg.DBPath = dbFlag
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(logger)
	return nil
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func openStore() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

func newPipeline(db *storage.DB) *pipeline.Pipeline {
	points := defense.Points{Cargo: cfg.CargoPoints, Panel: cfg.PanelPoints}
	return pipeline.New(db, points, logger)
}
