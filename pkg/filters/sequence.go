package filters

import (
	"github.com/playtrace/playtrace/internal/model"
	"github.com/playtrace/playtrace/pkg/games"
)

// IncorrectTraces drops traces that defy normal game behaviour: progress
// achievements out of order, or two progress achievements sharing one
// timestamp.
//
// Per trace, events are scanned in order. Non-progress events are ignored.
// Each progress event must be exactly the next expected achievement of
// game.MainAchievements and carry a timestamp not seen on an earlier
// progress event of the same trace; any violation discards the whole
// trace. Trailing achievements are not required, so a trace that stops
// early (or never unlocks a progress achievement at all) passes.
func IncorrectTraces(log *model.EventLog, game games.Definition) (*model.EventLog, error) {
	if !game.HasProgress() {
		return nil, ErrNoProgressAchievements
	}

	main := game.MainAchievements
	mainSet := make(map[string]struct{}, len(main))
	for _, a := range main {
		mainSet[a] = struct{}{}
	}

	out := model.NewLogLike(log)
	for _, t := range log.Traces {
		if sequenceValid(t, main, mainSet) {
			out.Append(t)
		}
	}
	return out, nil
}

func sequenceValid(t model.Trace, main []string, mainSet map[string]struct{}) bool {
	expected := 0
	seen := make(map[int64]struct{})

	for _, e := range t.Events {
		if _, ok := mainSet[e.Activity]; !ok {
			continue
		}
		// A progress achievement past the end of the sequence can
		// never be the expected one.
		if expected >= len(main) || e.Activity != main[expected] {
			return false
		}
		ts := e.Timestamp.UnixNano()
		if _, dup := seen[ts]; dup {
			return false
		}
		seen[ts] = struct{}{}
		expected++
	}
	return true
}
