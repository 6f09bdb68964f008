package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"go.opentelemetry.io/otel/attribute"

	"github.com/playtrace/playtrace/pkg/filters"
	"github.com/playtrace/playtrace/pkg/games"
	"github.com/playtrace/playtrace/pkg/logset"
	"github.com/playtrace/playtrace/pkg/report"
)

// CheaterStatistics classifies every trace of every game as cheating or
// not and returns the cheater percentage and case ids per game.
func (a *Analyzer) CheaterStatistics(ctx context.Context, names []string) (map[string]report.CheaterStats, error) {
	ctx, span := tracer.Start(ctx, "cheater_statistics")
	defer span.End()

	var mu sync.Mutex
	out := make(map[string]report.CheaterStats)

	err := a.forEachGame(ctx, names, func(ctx context.Context, game games.Definition) error {
		log, err := a.importGame(ctx, game)
		if err != nil {
			return err
		}

		cheaterLog := filters.CheatingPlayers(log, true)

		percentage := 0.0
		if log.Len() > 0 {
			percentage = math.Round(float64(cheaterLog.Len())/float64(log.Len())*100*100) / 100
		}

		ids := make([]string, 0, cheaterLog.Len())
		for id := range logset.CaseIDs(cheaterLog) {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		mu.Lock()
		out[game.Name] = report.CheaterStats{Percentage: percentage, Cheaters: ids}
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("analysis: cheater statistics: %w", err)
	}

	span.SetAttributes(attribute.Int("games", len(out)))
	return out, nil
}

// AveragePlaytime returns the mean playtime over a game's player stats.
func (a *Analyzer) AveragePlaytime(game string) (float64, error) {
	def, err := a.Registry.Get(game)
	if err != nil {
		return 0, err
	}
	players, err := a.Data.PlayerStats(def.Name)
	if err != nil {
		return 0, err
	}
	return players.AveragePlaytime(), nil
}
