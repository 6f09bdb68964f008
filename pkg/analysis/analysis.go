// Package analysis composes the importer, filters, level partitioner and
// the external process mining engine into the analyses the project
// reports on: typical playthroughs, review/completion comparison,
// bottlenecks, cheater statistics and noise detection.
package analysis

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/playtrace/playtrace/internal/model"
	"github.com/playtrace/playtrace/pkg/filters"
	"github.com/playtrace/playtrace/pkg/games"
	"github.com/playtrace/playtrace/pkg/importer"
	"github.com/playtrace/playtrace/pkg/mining"
	"github.com/playtrace/playtrace/pkg/report"
	"github.com/playtrace/playtrace/pkg/stats"
)

var tracer = otel.Tracer("playtrace/analysis")

// Analyzer runs the batch analyses. Each analysis is a pure composition
// of filters over freshly imported logs; games are independent, so they
// may be processed concurrently up to Jobs workers.
type Analyzer struct {
	Registry *games.Registry
	Data     *stats.Dir
	Engine   mining.Engine
	Reports  *report.Writer
	Import   importer.Config

	// Jobs bounds per-game concurrency. Zero or one means sequential.
	Jobs int

	// CommonOnly reduces each log to the game's common achievements
	// before model discovery.
	CommonOnly bool
}

func (a *Analyzer) jobs() int {
	if a.Jobs < 1 {
		return 1
	}
	return a.Jobs
}

// importGame loads the achievement log for one game. Events stamped
// before Steam introduced achievements carry garbage clocks and are
// dropped wholesale with their trace.
func (a *Analyzer) importGame(ctx context.Context, game games.Definition) (*model.EventLog, error) {
	log, err := importer.Import(ctx, a.Data.LogPath(game.Name), a.Import)
	if err != nil {
		return nil, fmt.Errorf("analysis: import %s: %w", game.Name, err)
	}
	return filters.ByDate(log, filters.DefaultStartDate), nil
}

// discoverFitness mines a model from the log and evaluates token-based
// fitness against it.
func (a *Analyzer) discoverFitness(ctx context.Context, log *model.EventLog) (float64, error) {
	m, err := a.Engine.Discover(ctx, log, mining.DefaultDiscoveryParams(log.Len()))
	if err != nil {
		return 0, err
	}
	return a.Engine.Fitness(ctx, log, m, mining.FitnessTokenBased)
}

// forEachGame runs fn for every named game, bounded by Jobs. An empty
// names slice means every registered game.
func (a *Analyzer) forEachGame(ctx context.Context, names []string, fn func(ctx context.Context, game games.Definition) error) error {
	defs, err := a.resolve(names)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.jobs())
	for _, def := range defs {
		def := def
		g.Go(func() error {
			return fn(ctx, def)
		})
	}
	return g.Wait()
}

func (a *Analyzer) resolve(names []string) ([]games.Definition, error) {
	if len(names) == 0 {
		return a.Registry.All(), nil
	}
	defs := make([]games.Definition, 0, len(names))
	for _, name := range names {
		def, err := a.Registry.Get(name)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// TypicalPlaythrough discovers a process model per game, on sequence-
// validated traces when the game tracks progress, and returns token
// fitness per game.
func (a *Analyzer) TypicalPlaythrough(ctx context.Context, names []string) (map[string]float64, error) {
	ctx, span := tracer.Start(ctx, "typical_playthrough")
	defer span.End()

	var mu sync.Mutex
	fitness := make(map[string]float64)

	err := a.forEachGame(ctx, names, func(ctx context.Context, game games.Definition) error {
		log, err := a.importGame(ctx, game)
		if err != nil {
			return err
		}

		if game.HasProgress() {
			log, err = filters.IncorrectTraces(log, game)
			if err != nil {
				return err
			}
		}
		if a.CommonOnly {
			log, err = filters.CommonAchievements(log, game, a.Data)
			if err != nil {
				return err
			}
		}

		f, err := a.discoverFitness(ctx, log)
		if err != nil {
			return fmt.Errorf("analysis: %s: %w", game.Name, err)
		}

		mu.Lock()
		fitness[game.Name] = f
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("games", len(fitness)))
	return fitness, nil
}

// Comparison discovers models for the positive/negative review sub-logs
// of each game, plus finished/unfinished sub-logs when the game has an
// end achievement, and returns the fitness of each.
func (a *Analyzer) Comparison(ctx context.Context, names []string) (map[string]report.ComparisonRecord, error) {
	ctx, span := tracer.Start(ctx, "comparison")
	defer span.End()

	var mu sync.Mutex
	records := make(map[string]report.ComparisonRecord)

	err := a.forEachGame(ctx, names, func(ctx context.Context, game games.Definition) error {
		log, err := a.importGame(ctx, game)
		if err != nil {
			return err
		}

		if game.HasProgress() {
			log, err = filters.IncorrectTraces(log, game)
			if err != nil {
				return err
			}
		}

		players, err := a.Data.PlayerStats(game.Name)
		if err != nil {
			return err
		}

		rec, err := a.compareGame(ctx, log, game, players)
		if err != nil {
			return fmt.Errorf("analysis: %s: %w", game.Name, err)
		}

		mu.Lock()
		records[game.Name] = rec
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("games", len(records)))
	return records, nil
}

func (a *Analyzer) compareGame(ctx context.Context, log *model.EventLog, game games.Definition, players stats.PlayerLookup) (report.ComparisonRecord, error) {
	var rec report.ComparisonRecord

	positive, err := filters.ByReviews(log, players, true)
	if err != nil {
		return rec, err
	}
	negative, err := filters.ByReviews(log, players, false)
	if err != nil {
		return rec, err
	}

	if rec.PositiveFitness, err = a.discoverFitness(ctx, positive); err != nil {
		return rec, err
	}
	if rec.NegativeFitness, err = a.discoverFitness(ctx, negative); err != nil {
		return rec, err
	}

	if !game.HasEndAchievement() {
		return rec, nil
	}

	finished, err := filters.ByCompletion(log, game, true)
	if err != nil {
		return rec, err
	}
	finished, err = filters.FirstPlaythrough(finished, game)
	if err != nil {
		return rec, err
	}
	unfinished, err := filters.ByCompletion(log, game, false)
	if err != nil {
		return rec, err
	}

	if rec.FinishedFitness, err = a.discoverFitness(ctx, finished); err != nil {
		return rec, err
	}
	if rec.UnfinishedFitness, err = a.discoverFitness(ctx, unfinished); err != nil {
		return rec, err
	}
	return rec, nil
}
