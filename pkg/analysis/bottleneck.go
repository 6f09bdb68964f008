package analysis

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/playtrace/playtrace/internal/model"
	"github.com/playtrace/playtrace/pkg/filters"
	"github.com/playtrace/playtrace/pkg/games"
	"github.com/playtrace/playtrace/pkg/levels"
	"github.com/playtrace/playtrace/pkg/mining"
)

// DefaultBottleneckGames are the games the bottleneck analysis covers
// unless the caller selects others. All four track progress
// achievements.
var DefaultBottleneckGames = []string{"GRIS", "HADES", "BLACK_MIRROR", "PER_ASPERA"}

// LevelPartitions partitions each game's unfinished players by the last
// level they reached, writes the breakdown report and returns the
// breakdowns. Engine-free; usable without a process mining engine.
func (a *Analyzer) LevelPartitions(ctx context.Context, names []string) (map[string]levels.Breakdown, error) {
	ctx, span := tracer.Start(ctx, "level_partitions")
	defer span.End()

	if len(names) == 0 {
		names = DefaultBottleneckGames
	}
	defs, err := a.resolve(names)
	if err != nil {
		return nil, err
	}

	breakdowns := make(map[string]levels.Breakdown)
	for _, game := range defs {
		b, _, err := a.partitionGame(ctx, game)
		if err != nil {
			return nil, fmt.Errorf("analysis: levels %s: %w", game.Name, err)
		}
		breakdowns[game.Name] = b
	}

	span.SetAttributes(attribute.Int("games", len(breakdowns)))
	return breakdowns, nil
}

// Bottlenecks runs LevelPartitions plus a median performance DFG per
// game. Games with a level-marker allow-list additionally get a
// window-restricted DFG over the final level, with the windowed sub-log
// persisted as parquet.
func (a *Analyzer) Bottlenecks(ctx context.Context, names []string) (map[string]levels.Breakdown, error) {
	ctx, span := tracer.Start(ctx, "bottlenecks")
	defer span.End()

	if len(names) == 0 {
		names = DefaultBottleneckGames
	}
	defs, err := a.resolve(names)
	if err != nil {
		return nil, err
	}

	// Sequential on purpose: each game writes several report files and
	// the writer tracks them for the manifest.
	breakdowns := make(map[string]levels.Breakdown)
	for _, game := range defs {
		b, err := a.bottleneckGame(ctx, game)
		if err != nil {
			return nil, fmt.Errorf("analysis: bottlenecks %s: %w", game.Name, err)
		}
		breakdowns[game.Name] = b
	}

	span.SetAttributes(attribute.Int("games", len(breakdowns)))
	return breakdowns, nil
}

// partitionGame imports one game, reduces it to sequence-valid progress
// events, partitions its unfinished players by level, and writes the
// breakdown report. The progress-reduced log is returned for DFG
// computation.
func (a *Analyzer) partitionGame(ctx context.Context, game games.Definition) (levels.Breakdown, *model.EventLog, error) {
	if !game.HasProgress() {
		return levels.Breakdown{}, nil, filters.ErrNoProgressAchievements
	}

	log, err := a.importGame(ctx, game)
	if err != nil {
		return levels.Breakdown{}, nil, err
	}

	log, err = filters.IncorrectTraces(log, game)
	if err != nil {
		return levels.Breakdown{}, nil, err
	}
	log, err = filters.MainAchievements(log, game)
	if err != nil {
		return levels.Breakdown{}, nil, err
	}

	unfinished, err := filters.ByCompletion(log, game, false)
	if err != nil {
		return levels.Breakdown{}, nil, err
	}

	players, err := a.Data.PlayerStats(game.Name)
	if err != nil {
		return levels.Breakdown{}, nil, err
	}

	breakdown, err := levels.DivideUnfinishedByLevels(unfinished, game, players)
	if err != nil {
		return levels.Breakdown{}, nil, err
	}
	if err := a.Reports.LevelBreakdown(game.Name, breakdown); err != nil {
		return levels.Breakdown{}, nil, err
	}
	return breakdown, log, nil
}

func (a *Analyzer) bottleneckGame(ctx context.Context, game games.Definition) (levels.Breakdown, error) {
	if len(game.LevelMarkers) > 0 {
		raw, err := a.importGame(ctx, game)
		if err != nil {
			return levels.Breakdown{}, err
		}
		if err := a.lastLevelWindow(ctx, raw, game); err != nil {
			return levels.Breakdown{}, err
		}
	}

	breakdown, progressLog, err := a.partitionGame(ctx, game)
	if err != nil {
		return levels.Breakdown{}, err
	}

	dfg, err := a.Engine.PerformanceDFG(ctx, progressLog, mining.AggregationMedian)
	if err != nil {
		return levels.Breakdown{}, err
	}
	if err := a.Reports.PerformanceDFG(game.Name, "level_bottlenecks", dfg); err != nil {
		return levels.Breakdown{}, err
	}
	return breakdown, nil
}

// lastLevelWindow restricts traces to the window between the last two
// progress achievements and computes a performance DFG over it.
func (a *Analyzer) lastLevelWindow(ctx context.Context, log *model.EventLog, game games.Definition) error {
	n := len(game.MainAchievements)
	if n < 2 {
		return filters.ErrNoProgressAchievements
	}
	start, end := game.MainAchievements[n-2], game.MainAchievements[n-1]

	window := filters.ByLevelWindow(log, start, end, game.LevelMarkers)
	if err := a.Reports.SubLog(game.Name+"_one_level_window.parquet", window); err != nil {
		return err
	}

	dfg, err := a.Engine.PerformanceDFG(ctx, window, mining.AggregationMedian)
	if err != nil {
		return err
	}
	return a.Reports.PerformanceDFG(game.Name, "one_level_bottleneck", dfg)
}
