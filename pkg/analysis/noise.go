package analysis

import (
	"context"
	"fmt"

	"github.com/playtrace/playtrace/internal/model"
	"github.com/playtrace/playtrace/pkg/filters"
	"github.com/playtrace/playtrace/pkg/logset"
	"github.com/playtrace/playtrace/pkg/mining"
)

// NoiseReport compares the three trace classifications for one game:
// conformance (token replay), sequence correctness and cheating. The
// overlap counts show how much each manual classifier agrees with the
// model-based one.
type NoiseReport struct {
	Game  string
	Total int

	FitCount         int
	CorrectCount     int
	NonCheatingCount int

	UnfitCount     int
	IncorrectCount int
	CheaterCount   int

	// UnfitNotIncorrect counts unfit traces the sequence validator
	// accepted, IncorrectNotUnfit the converse, CheatersNotUnfit
	// cheating traces token replay considered fit.
	UnfitNotIncorrect int
	IncorrectNotUnfit int
	CheatersNotUnfit  int
}

// NoiseDetection discovers a deliberately permissive model (low cleaning
// threshold, minimum activity count of one) for the game, replays the
// log against it and compares unfit, incorrect and cheating traces.
func (a *Analyzer) NoiseDetection(ctx context.Context, game string) (NoiseReport, error) {
	ctx, span := tracer.Start(ctx, "noise_detection")
	defer span.End()

	def, err := a.Registry.Get(game)
	if err != nil {
		return NoiseReport{}, err
	}
	if !def.HasProgress() {
		return NoiseReport{}, fmt.Errorf("analysis: noise detection %s: %w", game, filters.ErrNoProgressAchievements)
	}

	log, err := a.importGame(ctx, def)
	if err != nil {
		return NoiseReport{}, err
	}

	params := mining.DiscoveryParams{
		DependencyThresh: 0.99,
		CleaningThresh:   0.05,
		MinActCount:      1,
	}
	m, err := a.Engine.Discover(ctx, log, params)
	if err != nil {
		return NoiseReport{}, fmt.Errorf("analysis: noise detection %s: %w", game, err)
	}
	replayed, err := a.Engine.Replay(ctx, log, m)
	if err != nil {
		return NoiseReport{}, fmt.Errorf("analysis: noise detection %s: %w", game, err)
	}

	fitLog, err := filters.ByTraceFitness(log, replayed)
	if err != nil {
		return NoiseReport{}, err
	}
	correctLog, err := filters.IncorrectTraces(log, def)
	if err != nil {
		return NoiseReport{}, err
	}
	noCheaterLog := filters.CheatingPlayers(log, false)

	unfitIDs := complementIDs(log, fitLog)
	incorrectIDs := complementIDs(log, correctLog)
	cheaterIDs := complementIDs(log, noCheaterLog)

	return NoiseReport{
		Game:              def.Name,
		Total:             log.Len(),
		FitCount:          fitLog.Len(),
		CorrectCount:      correctLog.Len(),
		NonCheatingCount:  noCheaterLog.Len(),
		UnfitCount:        len(unfitIDs),
		IncorrectCount:    len(incorrectIDs),
		CheaterCount:      len(cheaterIDs),
		UnfitNotIncorrect: countNotIn(unfitIDs, incorrectIDs),
		IncorrectNotUnfit: countNotIn(incorrectIDs, unfitIDs),
		CheatersNotUnfit:  countNotIn(cheaterIDs, unfitIDs),
	}, nil
}

// complementIDs returns the case ids of traces in log but not in sub.
func complementIDs(log, sub *model.EventLog) map[string]struct{} {
	return logset.CaseIDs(logset.Difference(log, sub))
}

func countNotIn(ids, other map[string]struct{}) int {
	n := 0
	for id := range ids {
		if _, ok := other[id]; !ok {
			n++
		}
	}
	return n
}
