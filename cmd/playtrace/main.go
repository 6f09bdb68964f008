// playtrace - Game achievement telemetry analyzer
// Classifies and partitions player achievement traces, then hands the
// derived sub-logs to a process mining engine for discovery and
// conformance checking.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/playtrace/playtrace/pkg/analysis"
	"github.com/playtrace/playtrace/pkg/config"
	"github.com/playtrace/playtrace/pkg/games"
	"github.com/playtrace/playtrace/pkg/importer"
	"github.com/playtrace/playtrace/pkg/mining"
	"github.com/playtrace/playtrace/pkg/report"
	"github.com/playtrace/playtrace/pkg/stats"
	"github.com/playtrace/playtrace/pkg/telemetry"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// CLI flags
var (
	verbose    bool
	logsDir    string
	outDir     string
	gamesFile  string
	engine     string
	jobs       int
	xlsxOut    bool
	commonOnly bool

	// Fetch flags
	s3Bucket string
	s3Region string
	s3Prefix string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "playtrace",
	Short: "playtrace - Analyze game achievement telemetry",
	Long: `playtrace classifies per-player achievement traces by completion,
ordering correctness, cheating, review sentiment and progress level, and
reports statistics over the derived sub-logs.

Data is read from the logs directory using the scraper's file layout:
  <GAME>_achievement_logs.csv
  <GAME>_player_stats.json
  <GAME>_common_achievements.json`,
	Version: fmt.Sprintf("%s (%s)", version, commit),
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&logsDir, "logs-dir", "", "Directory with achievement logs and player stats")
	rootCmd.PersistentFlags().StringVar(&outDir, "out-dir", "", "Directory for report output")
	rootCmd.PersistentFlags().StringVar(&gamesFile, "games-file", "", "YAML file overriding the built-in game registry")
	rootCmd.PersistentFlags().StringVar(&engine, "engine", "", "CSV import engine (native, duckdb)")
	rootCmd.PersistentFlags().IntVar(&jobs, "jobs", 0, "Concurrent games (0 = from config)")

	for _, cmd := range []*cobra.Command{analyzeCmd, compareCmd, bottlenecksCmd, levelsCmd, cheatersCmd} {
		cmd.Flags().BoolVar(&xlsxOut, "xlsx", false, "Also export results as an XLSX workbook")
	}
	analyzeCmd.Flags().BoolVar(&commonOnly, "common", false, "Reduce logs to the game's common achievements before discovery")

	fetchCmd.Flags().StringVar(&s3Bucket, "bucket", "", "S3 bucket holding the telemetry bundles")
	fetchCmd.Flags().StringVar(&s3Region, "region", "", "AWS region")
	fetchCmd.Flags().StringVar(&s3Prefix, "prefix", "", "Key prefix inside the bucket")

	rootCmd.AddCommand(analyzeCmd, compareCmd, bottlenecksCmd, levelsCmd,
		cheatersCmd, noiseCmd, playtimeCmd, fetchCmd, watchCmd, gamesCmd)
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// loadConfig merges config files, env and flags.
func loadConfig() *config.Config {
	cfg := config.Global().Get()
	if logsDir != "" {
		cfg.Paths.LogsDir = logsDir
	}
	if outDir != "" {
		cfg.Paths.OutDir = outDir
	}
	if gamesFile != "" {
		cfg.Paths.GamesFile = gamesFile
	}
	if engine != "" {
		cfg.Importer.Engine = engine
	}
	if jobs > 0 {
		cfg.Analysis.Jobs = jobs
	}
	return cfg
}

// loadRegistry builds the game registry, applying file overrides.
func loadRegistry(cfg *config.Config) (*games.Registry, error) {
	registry := games.Builtin()
	if cfg.Paths.GamesFile != "" {
		if err := registry.LoadFile(cfg.Paths.GamesFile); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// newAnalyzer wires an Analyzer from the effective configuration. The
// returned shutdown function flushes telemetry, if enabled.
func newAnalyzer(ctx context.Context, cfg *config.Config) (*analysis.Analyzer, func(context.Context) error, error) {
	registry, err := loadRegistry(cfg)
	if err != nil {
		return nil, nil, err
	}

	reports, err := report.NewWriter(cfg.Paths.OutDir)
	if err != nil {
		return nil, nil, err
	}

	importCfg := importer.DefaultConfig()
	importCfg.Engine = importer.Engine(cfg.Importer.Engine)
	if cfg.Importer.Delimiter != "" {
		importCfg.Delimiter = cfg.Importer.Delimiter[0]
	}
	if cfg.Importer.TimestampFormat != "" {
		importCfg.TimestampFormat = cfg.Importer.TimestampFormat
	}

	shutdown := func(context.Context) error { return nil }
	if cfg.Telemetry.Enabled {
		otlpCfg := telemetry.DefaultOTLPConfig("playtrace")
		otlpCfg.Endpoint = cfg.Telemetry.Endpoint
		otlpCfg.ServiceVersion = version
		shutdown, err = telemetry.InitOTLP(ctx, otlpCfg)
		if err != nil {
			return nil, nil, err
		}
	}

	return &analysis.Analyzer{
		Registry:   registry,
		Data:       stats.NewDir(cfg.Paths.LogsDir),
		Engine:     mining.Disabled{},
		Reports:    reports,
		Import:     importCfg,
		Jobs:       cfg.Analysis.Jobs,
		CommonOnly: commonOnly,
	}, shutdown, nil
}
