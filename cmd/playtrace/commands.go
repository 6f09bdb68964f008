package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/playtrace/playtrace/pkg/config"
	"github.com/playtrace/playtrace/pkg/levels"
	"github.com/playtrace/playtrace/pkg/report"
	s3storage "github.com/playtrace/playtrace/pkg/storage/s3"
	"github.com/playtrace/playtrace/pkg/tui"
	"github.com/playtrace/playtrace/pkg/watch"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [games...]",
	Short: "Discover typical playthrough models and their fitness",
	Long: `Discover a process model per game, on sequence-validated traces when
the game tracks progress achievements, and record token-replay fitness.

Requires a configured process mining engine.

Examples:
  playtrace analyze
  playtrace analyze GRIS HADES`,
	RunE: runAnalyze,
}

var compareCmd = &cobra.Command{
	Use:   "compare [games...]",
	Short: "Compare fitness across review sentiment and completion",
	Long: `Discover models for the positive/negative review sub-logs of each
game, plus finished (first playthrough only) and unfinished sub-logs for
games with an end achievement, and record the fitness of each.

Requires a configured process mining engine.`,
	RunE: runCompare,
}

var bottlenecksCmd = &cobra.Command{
	Use:   "bottlenecks [games...]",
	Short: "Find level bottlenecks of games with progress achievements",
	Long: `Partition unfinished players by the last level they reached and
compute median performance directly-follows graphs over the progress
achievements. Games with a level-marker allow-list additionally get a
window-restricted graph over the final level.

Requires a configured process mining engine; use "playtrace levels" for
the partition alone.`,
	RunE: runBottlenecks,
}

var levelsCmd = &cobra.Command{
	Use:   "levels [games...]",
	Short: "Partition unfinished players by the level they reached",
	RunE:  runLevels,
}

var cheatersCmd = &cobra.Command{
	Use:   "cheaters [games...]",
	Short: "Report players whose achievements share one timestamp",
	RunE:  runCheaters,
}

var noiseCmd = &cobra.Command{
	Use:   "noise <game>",
	Short: "Compare unfit, incorrect and cheating traces of one game",
	Args:  cobra.ExactArgs(1),
	RunE:  runNoise,
}

var playtimeCmd = &cobra.Command{
	Use:   "playtime <game>",
	Short: "Show the average playtime of one game",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlaytime,
}

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List the registered game definitions",
	RunE:  runGames,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [games...]",
	Short: "Download telemetry bundles from S3 into the logs directory",
	Long: `Download each game's achievement log, player stats and common
achievements from the configured S3 bucket into the logs directory.

Examples:
  playtrace fetch --bucket telemetry-bundles
  playtrace fetch --bucket telemetry-bundles GRIS HADES`,
	RunE: runFetch,
}

var watchCmd = &cobra.Command{
	Use:   "watch [games...]",
	Short: "Re-run cheater and level analyses when a log changes",
	RunE:  runWatch,
}

// resolveNames expands an empty argument list to every registered game.
func resolveNames(cfg *config.Config, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	registry, err := loadRegistry(cfg)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, def := range registry.All() {
		names = append(names, def.Name)
	}
	return names, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg := loadConfig()
	analyzer, shutdown, err := newAnalyzer(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	if verbose {
		tui.PrintHeader(version)
	}
	start := time.Now()

	fitness, err := analyzer.TypicalPlaythrough(ctx, args)
	if err != nil {
		return err
	}
	if err := analyzer.Reports.TypicalPlaythroughFitness(fitness); err != nil {
		return err
	}
	if err := analyzer.Reports.Manifest(); err != nil {
		return err
	}

	tui.PrintFitness("TYPICAL PLAYTHROUGH FITNESS", fitness)
	tui.PrintDone("analyze", analyzer.Reports.RunID(), time.Since(start))
	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg := loadConfig()
	analyzer, shutdown, err := newAnalyzer(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	start := time.Now()
	records, err := analyzer.Comparison(ctx, args)
	if err != nil {
		return err
	}
	if err := analyzer.Reports.ComparisonFitness(records); err != nil {
		return err
	}
	if xlsxOut {
		if err := analyzer.Reports.Workbook("comparison.xlsx", records, nil, nil); err != nil {
			return err
		}
	}
	if err := analyzer.Reports.Manifest(); err != nil {
		return err
	}

	tui.PrintComparison(records)
	tui.PrintDone("compare", analyzer.Reports.RunID(), time.Since(start))
	return nil
}

func runBottlenecks(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg := loadConfig()
	if len(args) == 0 {
		args = cfg.Analysis.BottleneckGames
	}

	analyzer, shutdown, err := newAnalyzer(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	start := time.Now()
	breakdowns, err := analyzer.Bottlenecks(ctx, args)
	if err != nil {
		return err
	}
	return finishLevels("bottlenecks", analyzer.Reports, breakdowns, start)
}

func runLevels(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg := loadConfig()
	analyzer, shutdown, err := newAnalyzer(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	start := time.Now()
	breakdowns, err := analyzer.LevelPartitions(ctx, args)
	if err != nil {
		return err
	}
	return finishLevels("levels", analyzer.Reports, breakdowns, start)
}

func finishLevels(what string, reports *report.Writer, breakdowns map[string]levels.Breakdown, start time.Time) error {
	if xlsxOut {
		if err := reports.Workbook(what+".xlsx", nil, nil, breakdowns); err != nil {
			return err
		}
	}
	if err := reports.Manifest(); err != nil {
		return err
	}

	for game, b := range breakdowns {
		tui.PrintBreakdown(game, b)
	}
	tui.PrintDone(what, reports.RunID(), time.Since(start))
	return nil
}

func runCheaters(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg := loadConfig()
	analyzer, shutdown, err := newAnalyzer(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	start := time.Now()
	cheaters, err := analyzer.CheaterStatistics(ctx, args)
	if err != nil {
		return err
	}
	if err := analyzer.Reports.CheaterStatistics(cheaters); err != nil {
		return err
	}
	if xlsxOut {
		if err := analyzer.Reports.Workbook("cheaters.xlsx", nil, cheaters, nil); err != nil {
			return err
		}
	}
	if err := analyzer.Reports.Manifest(); err != nil {
		return err
	}

	tui.PrintCheaters(cheaters)
	tui.PrintDone("cheaters", analyzer.Reports.RunID(), time.Since(start))
	return nil
}

func runNoise(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg := loadConfig()
	analyzer, shutdown, err := newAnalyzer(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	noise, err := analyzer.NoiseDetection(ctx, args[0])
	if err != nil {
		return err
	}
	tui.PrintNoise(noise)
	return nil
}

func runPlaytime(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg := loadConfig()
	analyzer, shutdown, err := newAnalyzer(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	avg, err := analyzer.AveragePlaytime(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s average playtime: %.1f hours\n", args[0], avg)
	return nil
}

func runGames(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	registry, err := loadRegistry(cfg)
	if err != nil {
		return err
	}

	for _, def := range registry.All() {
		fmt.Printf("%-22s id=%-8d end=%-24q progress=%d markers=%d\n",
			def.Name, def.ID, def.EndAchievement,
			len(def.MainAchievements), len(def.LevelMarkers))
	}
	return nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg := loadConfig()
	if s3Bucket != "" {
		cfg.S3.Bucket = s3Bucket
	}
	if s3Region != "" {
		cfg.S3.Region = s3Region
	}
	if s3Prefix != "" {
		cfg.S3.Prefix = s3Prefix
	}

	names, err := resolveNames(cfg, args)
	if err != nil {
		return err
	}

	s3cfg := s3storage.DefaultConfig(cfg.S3.Bucket, cfg.S3.Region)
	s3cfg.Prefix = cfg.S3.Prefix
	s3cfg.Endpoint = cfg.S3.Endpoint
	if cfg.S3.Timeout > 0 {
		s3cfg.DownloadTimeout = cfg.S3.Timeout
	}

	client, err := s3storage.NewClient(ctx, s3cfg)
	if err != nil {
		return err
	}

	bar := tui.ShowProgress(int64(len(names)), "fetching")
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, name := range names {
		name := name
		g.Go(func() error {
			if err := client.FetchGame(ctx, cfg.Paths.LogsDir, name); err != nil {
				return err
			}
			bar.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("fetched %d games into %s\n", len(names), cfg.Paths.LogsDir)
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext()
	defer stop()

	cfg := loadConfig()
	names, err := resolveNames(cfg, args)
	if err != nil {
		return err
	}

	analyzer, shutdown, err := newAnalyzer(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdown(context.Background())

	watcher, err := watch.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	watched := 0
	for _, name := range names {
		if err := watcher.WatchGame(name, analyzer.Data.LogPath(name)); err != nil {
			// Games without a local log yet are skipped, not fatal.
			if verbose {
				tui.PrintError(err)
			}
			continue
		}
		watched++
	}
	if watched == 0 {
		return fmt.Errorf("no achievement logs found in %s", cfg.Paths.LogsDir)
	}

	watcher.OnChange = func(game string) error {
		cheaters, err := analyzer.CheaterStatistics(ctx, []string{game})
		if err != nil {
			return err
		}
		tui.PrintCheaters(cheaters)

		def, err := analyzer.Registry.Get(game)
		if err != nil {
			return err
		}
		if def.HasProgress() && def.HasEndAchievement() {
			breakdowns, err := analyzer.LevelPartitions(ctx, []string{game})
			if err != nil {
				return err
			}
			tui.PrintBreakdown(game, breakdowns[game])
		}
		return analyzer.Reports.CheaterStatistics(cheaters)
	}
	watcher.OnError = func(game string, err error) {
		tui.PrintError(fmt.Errorf("%s: %w", game, err))
	}

	fmt.Printf("watching %d achievement logs in %s\n", watched, cfg.Paths.LogsDir)
	err = watcher.Run(ctx)
	if err == context.Canceled {
		return nil
	}
	return err
}
