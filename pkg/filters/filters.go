// Package filters implements the rule-based predicates that derive
// sub-logs from an achievement event log.
//
// Every filter is a pure function of its input log (plus, where noted,
// injected game config or player stats) and returns a new log; inputs are
// never mutated. Trace order in every derived log is the relative order
// of surviving traces in the input.
package filters

import (
	"errors"

	"github.com/playtrace/playtrace/internal/model"
	"github.com/playtrace/playtrace/pkg/games"
	"github.com/playtrace/playtrace/pkg/stats"
)

var (
	// ErrNoEndAchievement is returned when a completion-based filter is
	// requested for a game without an end achievement.
	ErrNoEndAchievement = errors.New("filters: game has no end achievement")

	// ErrNoProgressAchievements is returned when a sequence or level
	// filter is requested for a game without progress achievements.
	ErrNoProgressAchievements = errors.New("filters: game has no progress achievements")

	// ErrMissingEndEvent is returned by the first-playthrough truncator
	// when a trace violates its finished-players precondition.
	ErrMissingEndEvent = errors.New("filters: trace does not contain the end achievement")
)

// ByActivities keeps (positive) or drops (negative) events whose activity
// is in allowed. It operates at event granularity: traces that lose all
// events are retained as empty traces.
func ByActivities(log *model.EventLog, allowed []string, positive bool) *model.EventLog {
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}

	out := model.NewLogLike(log)
	for _, t := range log.Traces {
		nt := model.Trace{CaseID: t.CaseID}
		for _, e := range t.Events {
			if _, ok := set[e.Activity]; ok == positive {
				nt.Events = append(nt.Events, e)
			}
		}
		out.Append(nt)
	}
	return out
}

// ContainingActivities keeps traces that contain (positive) or do not
// contain (negative) at least one event whose activity is in activities.
func ContainingActivities(log *model.EventLog, activities []string, positive bool) *model.EventLog {
	set := make(map[string]struct{}, len(activities))
	for _, a := range activities {
		set[a] = struct{}{}
	}

	out := model.NewLogLike(log)
	for _, t := range log.Traces {
		contains := false
		for _, e := range t.Events {
			if _, ok := set[e.Activity]; ok {
				contains = true
				break
			}
		}
		if contains == positive {
			out.Append(t)
		}
	}
	return out
}

// CommonAchievements keeps only events whose activity is one of the
// game's precomputed common achievements.
func CommonAchievements(log *model.EventLog, game games.Definition, lookup stats.CommonLookup) (*model.EventLog, error) {
	names, err := lookup.CommonAchievements(game.Name)
	if err != nil {
		return nil, err
	}
	return ByActivities(log, names, true), nil
}

// MainAchievements keeps only events whose activity is one of the game's
// progress achievements.
func MainAchievements(log *model.EventLog, game games.Definition) (*model.EventLog, error) {
	if !game.HasProgress() {
		return nil, ErrNoProgressAchievements
	}
	return ByActivities(log, game.MainAchievements, true), nil
}

// ByCompletion keeps traces of players that did (finished) or did not
// finish the game, judged by the presence of the end achievement.
func ByCompletion(log *model.EventLog, game games.Definition, finished bool) (*model.EventLog, error) {
	if !game.HasEndAchievement() {
		return nil, ErrNoEndAchievement
	}
	return ContainingActivities(log, []string{game.EndAchievement}, finished), nil
}
